package engine

import (
	"context"
	"time"

	"fcmm.dev/fcmm/internal/git"
)

// Source selects how a branch is created. Tag wins over Commit, Commit over
// Branch, and Bare applies only when none of them is set.
type Source struct {
	Tag    string
	Branch string
	Commit string
	Bare   bool
}

// BranchWriter creates and replaces branches, pushing the result to the remote.
type BranchWriter interface {
	AddBranch(ctx context.Context, newBranch string, src Source) error
	OverwriteBranch(ctx context.Context, dest string, src Source) error
	RollbackToTag(ctx context.Context, branch, tag string) error
	RollbackToCommit(ctx context.Context, branch, commit string) error
	BackupBranch(ctx context.Context, branch, operator string) (string, error)
	// OnBranch checks out branch, runs fn and returns to the original branch
	OnBranch(ctx context.Context, branch string, fn func() error) error
}

// SyncManager brings local branches up to date with the remote.
type SyncManager interface {
	SyncBranch(ctx context.Context, name string) (isNewLocal bool, err error)
}

// Engine is the composite of all branch operations.
type Engine interface {
	BranchWriter
	SyncManager
	Handle() *git.RepoHandle
}

// Logger receives progress lines.
type Logger interface {
	Info(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// Options configures an engine.
type Options struct {
	// Remote is the remote branches are pushed to; "origin" when empty
	Remote string
	// Now is the clock for backup names; time.Now when nil
	Now    func() time.Time
	Logger Logger
}
