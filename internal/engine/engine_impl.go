package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	fcmmerrors "fcmm.dev/fcmm/internal/errors"
	"fcmm.dev/fcmm/internal/git"
)

// BareCommitMessage is the message of the single commit on a bare branch.
const BareCommitMessage = "add bare branch by fcmm"

const timestampLayout = "20060102150405"

// engineImpl is the git-backed Engine
type engineImpl struct {
	h      *git.RepoHandle
	remote string
	now    func() time.Time
	log    Logger
}

// NewEngine creates an engine working on h
func NewEngine(h *git.RepoHandle, opts Options) Engine {
	e := &engineImpl{
		h:      h,
		remote: opts.Remote,
		now:    opts.Now,
		log:    opts.Logger,
	}
	if e.remote == "" {
		e.remote = "origin"
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.log == nil {
		e.log = nopLogger{}
	}
	return e
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Debug(string, ...interface{}) {}

// Handle returns the repository the engine works on
func (e *engineImpl) Handle() *git.RepoHandle {
	return e.h
}

// withRestore runs fn and checks the branch that was active on entry out
// again afterwards. A detached or unborn HEAD on entry is left alone.
func (e *engineImpl) withRestore(ctx context.Context, fn func() error) (err error) {
	original, activeErr := git.ActiveBranch(e.h)
	if activeErr != nil || !git.BranchExists(e.h, original) {
		original = ""
	}

	defer func() {
		if original == "" {
			return
		}
		current, _ := git.ActiveBranch(e.h)
		if current == original {
			return
		}
		if restoreErr := git.CheckoutBranch(ctx, e.h, original); restoreErr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to return to %s: %w", original, restoreErr))
		}
	}()

	return fn()
}

// AddBranch creates newBranch from src and pushes it
func (e *engineImpl) AddBranch(ctx context.Context, newBranch string, src Source) error {
	if git.BranchExists(e.h, newBranch) {
		return fcmmerrors.NewStateError(fcmmerrors.ErrBranchExists, "branch %s already exists", newBranch)
	}
	if err := e.checkSource(ctx, src); err != nil {
		return err
	}

	return e.withRestore(ctx, func() error {
		if err := e.create(ctx, newBranch, src); err != nil {
			return err
		}
		if err := git.PushBranch(ctx, e.h, e.remote, newBranch, false); err != nil {
			return err
		}
		e.log.Info("created branch %s", newBranch)
		return nil
	})
}

// OverwriteBranch replaces dest with a branch created from src and force-pushes it
func (e *engineImpl) OverwriteBranch(ctx context.Context, dest string, src Source) error {
	if err := e.checkSource(ctx, src); err != nil {
		return err
	}
	if src.Branch == dest && src.Tag == "" && src.Commit == "" {
		return fcmmerrors.NewStateError(fcmmerrors.ErrSameBranch, "cannot overwrite %s with itself", dest)
	}

	return e.withRestore(ctx, func() error {
		if git.BranchExists(e.h, dest) {
			if active, err := git.ActiveBranch(e.h); err == nil && active == dest {
				if err := git.CheckoutDetached(ctx, e.h, "HEAD"); err != nil {
					return err
				}
			}
			if err := git.DeleteBranch(ctx, e.h, dest); err != nil {
				return err
			}
		}
		if err := e.create(ctx, dest, src); err != nil {
			return err
		}
		if err := git.PushBranch(ctx, e.h, e.remote, dest, true); err != nil {
			return err
		}
		e.log.Info("overwrote branch %s", dest)
		return nil
	})
}

// RollbackToTag hard-resets branch to tag and force-pushes it
func (e *engineImpl) RollbackToTag(ctx context.Context, branch, tag string) error {
	if !git.TagExists(e.h, tag) {
		return fcmmerrors.NewTagNotFoundError(tag)
	}
	return e.rollback(ctx, branch, tag)
}

// RollbackToCommit hard-resets branch to commit and force-pushes it
func (e *engineImpl) RollbackToCommit(ctx context.Context, branch, commit string) error {
	if _, err := git.ResolveCommit(ctx, e.h, commit); err != nil {
		return fcmmerrors.NewStateError(fcmmerrors.ErrCommitNotFound, "commit %s does not exist", commit)
	}
	return e.rollback(ctx, branch, commit)
}

func (e *engineImpl) rollback(ctx context.Context, branch, rev string) error {
	if !git.BranchExists(e.h, branch) {
		return fcmmerrors.NewBranchNotFoundError(branch)
	}

	return e.withRestore(ctx, func() error {
		if err := git.CheckoutBranch(ctx, e.h, branch); err != nil {
			return err
		}
		if err := git.HardReset(ctx, e.h, rev); err != nil {
			return err
		}
		if err := git.PushBranch(ctx, e.h, e.remote, branch, true); err != nil {
			return err
		}
		e.log.Info("rolled back %s to %s", branch, rev)
		return nil
	})
}

// BackupBranch copies branch to a tb-bak- branch and returns its name
func (e *engineImpl) BackupBranch(ctx context.Context, branch, operator string) (string, error) {
	name := BackupBranchName(branch, e.now().Format(timestampLayout), operator)
	if err := e.AddBranch(ctx, name, Source{Branch: branch}); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", branch, err)
	}
	return name, nil
}

// OnBranch runs fn with branch checked out
func (e *engineImpl) OnBranch(ctx context.Context, branch string, fn func() error) error {
	if !git.BranchExists(e.h, branch) {
		return fcmmerrors.NewBranchNotFoundError(branch)
	}
	return e.withRestore(ctx, func() error {
		if err := git.CheckoutBranch(ctx, e.h, branch); err != nil {
			return err
		}
		return fn()
	})
}

// SyncBranch updates name from the remote, creating it locally when missing
func (e *engineImpl) SyncBranch(ctx context.Context, name string) (isNewLocal bool, err error) {
	err = e.withRestore(ctx, func() error {
		var syncErr error
		isNewLocal, syncErr = git.GetRemoteBranch(ctx, e.h, e.remote, name)
		return syncErr
	})
	return isNewLocal, err
}

// checkSource verifies the refs src names before anything is changed.
func (e *engineImpl) checkSource(ctx context.Context, src Source) error {
	switch {
	case src.Tag != "":
		if !git.TagExists(e.h, src.Tag) {
			return fcmmerrors.NewTagNotFoundError(src.Tag)
		}
	case src.Commit != "":
		if _, err := git.ResolveCommit(ctx, e.h, src.Commit); err != nil {
			return fcmmerrors.NewStateError(fcmmerrors.ErrCommitNotFound, "commit %s does not exist", src.Commit)
		}
	case src.Branch != "":
		if !git.BranchExists(e.h, src.Branch) {
			return fcmmerrors.NewBranchNotFoundError(src.Branch)
		}
	case src.Bare:
		if !git.BranchExists(e.h, MasterBranch) {
			return fcmmerrors.NewBranchNotFoundError(MasterBranch)
		}
	default:
		return fcmmerrors.NewParameterError("no source given: need a tag, a commit, a branch or bare")
	}
	return nil
}

// create makes name from src without pushing it.
func (e *engineImpl) create(ctx context.Context, name string, src Source) error {
	switch {
	case src.Tag != "":
		return git.CreateBranch(ctx, e.h, name, src.Tag)
	case src.Commit != "":
		return git.CreateBranch(ctx, e.h, name, src.Commit)
	case src.Branch != "":
		return git.CreateBranch(ctx, e.h, name, src.Branch)
	default:
		return e.createBare(ctx, name)
	}
}

// createBare makes an orphan branch off master holding one empty commit.
func (e *engineImpl) createBare(ctx context.Context, name string) error {
	if err := git.CheckoutBranch(ctx, e.h, MasterBranch); err != nil {
		return err
	}
	if err := git.CheckoutOrphan(ctx, e.h, name); err != nil {
		return err
	}
	if err := git.ClearWorkTree(ctx, e.h); err != nil {
		return err
	}
	return git.Commit(ctx, e.h, BareCommitMessage, true)
}
