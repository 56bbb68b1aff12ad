// Package runtime provides the execution context for fcmm commands.
//
// It encapsulates shared dependencies and configuration needed by actions,
// such as the settings, logger, filesystem, clock and the session directory.
// Nothing in fcmm reads these from globals.
package runtime
