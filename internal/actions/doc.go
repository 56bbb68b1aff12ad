// Package actions implements the fcmm commands.
//
// Each command (init, add-pkg, add-cfg, add-dev, add-temp, rollback, check,
// merge, help, cd) has an Options struct and an Action function, and is
// registered in a Registry together with its parameter schema. Dispatch
// looks a command up, validates its parameters and turns the outcome into a
// Result carrying a status code.
//
// Key patterns:
//   - Actions accept runtime.Context which provides settings, output and the filesystem
//   - Branch-mutating commands start with a common preamble (prepare) that
//     checks the repository and brings master and lb-pkg up to date
//   - Branch changes go through engine.Engine, which restores the active branch
//
// Dependencies:
//   - engine: branch primitives
//   - git: repository queries and plain git operations
//   - config: .fcmm4git metadata
//   - backup: archives taken before destructive init steps
package actions
