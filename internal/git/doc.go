// Package git provides low-level Git operations for fcmm.
//
// Reads go through go-git where it can answer without a process:
//   - Branch and tag existence, tag peeling
//   - Active branch, including an unborn HEAD
//   - Commit ancestry for base-commit checks
//
// Every mutation runs the git executable through a CommandRunner bound to an
// explicit working directory. This package should be the only place where
// git commands are executed.
package git
