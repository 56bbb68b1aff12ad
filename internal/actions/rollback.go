package actions

import (
	"context"
	"fmt"

	"fcmm.dev/fcmm/internal/engine"
	fcmmerrors "fcmm.dev/fcmm/internal/errors"
	"fcmm.dev/fcmm/internal/git"
	"fcmm.dev/fcmm/internal/params"
	"fcmm.dev/fcmm/internal/runtime"
)

var rollbackCommand = Command{
	Name:    "rollback",
	Summary: "roll a branch back to a tag or commit",
	Usage: `rollback -b <branch> (-t <tag> | -c <commit>) [-f] [-nb]
  master and lb-pkg are hard reset to the tag or commit and force pushed,
  which needs -force because every clone of them has to follow. Other
  branches are reset from the baseline at the tag or commit.
  -b, -branch <branch>   branch to roll back
  -t, -tag <tag>         target tag
  -c, -commit <commit>   target commit
  -f, -force             allow rolling back master or lb-pkg
  -nb, -nobak            do not back up the branch first`,
	Schema: params.Schema{
		Required: [][2]string{{"b", "branch"}},
		Flags:    []params.Flag{branchFlag, tagFlag, commitFlag, forceFlag, noBakFlag},
	},
	Handler: func(ctx context.Context, rctx *runtime.Context, args Args) (string, error) {
		return RollbackAction(ctx, rctx, RollbackOptions{
			Branch:   flagValue(args.Params, branchFlag),
			Tag:      flagValue(args.Params, tagFlag),
			Commit:   flagValue(args.Params, commitFlag),
			Force:    flagSet(args.Params, forceFlag),
			NoBackup: flagSet(args.Params, noBakFlag),
		})
	},
}

// RollbackOptions contains options for the rollback command
type RollbackOptions struct {
	Branch   string
	Tag      string
	Commit   string
	Force    bool
	NoBackup bool
}

// RollbackAction resets a branch to a tag or commit. The protection of master
// and lb-pkg is checked before the repository is looked at.
func RollbackAction(ctx context.Context, rctx *runtime.Context, opts RollbackOptions) (string, error) {
	if opts.Tag == "" && opts.Commit == "" {
		return "", fcmmerrors.NewParameterError("must supply parameter -t / -tag or -c / -commit")
	}
	if engine.IsProtected(opts.Branch) && !opts.Force {
		return "", fcmmerrors.NewStateError(fcmmerrors.ErrProtectedBranch,
			"%s is protected, use -force to roll it back", opts.Branch)
	}

	s, err := prepare(ctx, rctx)
	if err != nil {
		return "", err
	}
	target := git.BaseRef{Tag: opts.Tag, Commit: opts.Commit}

	exists, err := s.ensureLocal(ctx, rctx, opts.Branch)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fcmmerrors.NewBranchNotFoundError(opts.Branch)
	}

	if !engine.IsProtected(opts.Branch) {
		baseline := s.baseline()
		if err := requireOnBranch(s, baseline, target); err != nil {
			return "", err
		}
		if err := s.backupFirst(ctx, rctx, opts.Branch, opts.NoBackup); err != nil {
			return "", err
		}
		src := engine.Source{Branch: baseline, Tag: opts.Tag, Commit: opts.Commit}
		if err := s.engine.OverwriteBranch(ctx, opts.Branch, src); err != nil {
			return "", asExecution(err, "failed to roll back %s", opts.Branch)
		}
		return fmt.Sprintf("Rolled back %s to %s of %s.", rctx.Styles.Branch(opts.Branch), target, baseline), nil
	}

	if err := requireOnBranch(s, opts.Branch, target); err != nil {
		return "", err
	}
	if err := s.backupFirst(ctx, rctx, opts.Branch, opts.NoBackup); err != nil {
		return "", err
	}
	if opts.Tag != "" {
		err = s.engine.RollbackToTag(ctx, opts.Branch, opts.Tag)
	} else {
		err = s.engine.RollbackToCommit(ctx, opts.Branch, opts.Commit)
	}
	if err != nil {
		return "", asExecution(err, "failed to roll back %s", opts.Branch)
	}
	return fmt.Sprintf("Rolled back %s to %s.", rctx.Styles.Branch(opts.Branch), target), nil
}
