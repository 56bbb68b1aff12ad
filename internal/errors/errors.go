// Package errors provides sentinel errors and custom error types for fcmm.
// Use errors.Is() and errors.As() to check for specific error types, and
// KindOf to classify an error into the result codes reported to the user.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// ErrNotOnBranch indicates that HEAD is not on a branch
	ErrNotOnBranch = errors.New("not on a branch")

	// ErrNotFcmmRepo indicates the directory is not a git repository carrying .fcmm4git
	ErrNotFcmmRepo = errors.New("not an fcmm repository")

	// ErrDirtyTree indicates uncommitted changes in the working tree
	ErrDirtyTree = errors.New("working tree has uncommitted changes")

	// ErrBranchExists indicates that a branch to be created already exists
	ErrBranchExists = errors.New("branch exists")

	// ErrBranchNotFound indicates that a branch does not exist
	ErrBranchNotFound = errors.New("branch not found")

	// ErrTagNotFound indicates that a tag does not exist
	ErrTagNotFound = errors.New("tag not found")

	// ErrCommitNotFound indicates that a revision does not name a commit
	ErrCommitNotFound = errors.New("commit not found")

	// ErrSameBranch indicates identical source and destination branches
	ErrSameBranch = errors.New("source and destination branch are the same")

	// ErrAlreadyInitialized indicates that init found existing, diverging fcmm metadata
	ErrAlreadyInitialized = errors.New("repository already initialized")

	// ErrProtectedBranch indicates a rollback of master or lb-pkg without force
	ErrProtectedBranch = errors.New("branch is protected")

	// ErrRemoteNotEmpty indicates init found history on the remote without force
	ErrRemoteNotEmpty = errors.New("remote repository is not empty")

	// ErrWorkPathInside indicates a temp or backup path inside the directory init would replace
	ErrWorkPathInside = errors.New("work path inside the repository directory")

	// ErrCheckFailed indicates a failed base-commit check
	ErrCheckFailed = errors.New("base commit check failed")

	// ErrUnknownCommand indicates a command name missing from the registry
	ErrUnknownCommand = errors.New("unknown command")

	// ErrNotImplemented indicates a command whose execution is not available
	ErrNotImplemented = errors.New("not implemented")
)

// Kind classifies an error into one of the result classes.
type Kind int

const (
	// KindNone is the kind of a successful result
	KindNone Kind = iota
	// KindParameter covers missing, unknown, or badly valued parameters
	KindParameter
	// KindState covers repository state that forbids the operation
	KindState
	// KindExecution covers failures of the underlying git process and unexpected faults
	KindExecution
)

// Code returns the status code reported for the kind.
func (k Kind) Code() int {
	return int(k)
}

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindParameter:
		return "parameter error"
	case KindState:
		return "state error"
	case KindExecution:
		return "execution error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is an error carrying a Kind, a user facing message, and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewParameterError creates a KindParameter error.
func NewParameterError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindParameter, Msg: fmt.Sprintf(format, args...)}
}

// NewStateError creates a KindState error wrapping one of the sentinel errors.
func NewStateError(sentinel error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindState, Msg: fmt.Sprintf(format, args...), Err: sentinel}
}

// NewExecutionError creates a KindExecution error wrapping cause.
func NewExecutionError(cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindExecution, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the Kind of err. Errors without an explicit kind are execution errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, ErrUnknownCommand) {
		return KindParameter
	}
	return KindExecution
}

// BranchNotFoundError represents an error when a branch is not found
type BranchNotFoundError struct {
	BranchName string
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch %s does not exist", e.BranchName)
}

// Is returns true if the target error is ErrBranchNotFound
func (e *BranchNotFoundError) Is(target error) bool {
	return target == ErrBranchNotFound
}

// NewBranchNotFoundError creates a StateError for a missing branch
func NewBranchNotFoundError(branchName string) *Error {
	return &Error{Kind: KindState, Err: &BranchNotFoundError{BranchName: branchName}}
}

// TagNotFoundError represents an error when a tag is not found
type TagNotFoundError struct {
	TagName string
}

func (e *TagNotFoundError) Error() string {
	return fmt.Sprintf("tag %s does not exist", e.TagName)
}

// Is returns true if the target error is ErrTagNotFound
func (e *TagNotFoundError) Is(target error) bool {
	return target == ErrTagNotFound
}

// NewTagNotFoundError creates a StateError for a missing tag
func NewTagNotFoundError(tagName string) *Error {
	return &Error{Kind: KindState, Err: &TagNotFoundError{TagName: tagName}}
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Dir     string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, dir, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Dir:     dir,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}
