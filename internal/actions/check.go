package actions

import (
	"context"
	"fmt"

	fcmmerrors "fcmm.dev/fcmm/internal/errors"
	"fcmm.dev/fcmm/internal/git"
	"fcmm.dev/fcmm/internal/params"
	"fcmm.dev/fcmm/internal/runtime"
)

var checkCommand = Command{
	Name:    "check",
	Summary: "check that a branch contains a commit of another branch",
	Usage: `check -b <branch> [-s <source>] [-t <tag> | -c <commit>]
  Pass when the history of <branch> contains the tip of <source>, or the
  given tag or commit. <source> defaults to the baseline. Nothing is changed.
  -b, -branch <branch>   branch to check
  -s, -source <branch>   branch whose tip must be contained
  -t, -tag <tag>         tag that must be contained
  -c, -commit <commit>   commit that must be contained`,
	Schema: params.Schema{
		Required: [][2]string{{"b", "branch"}},
		Flags:    []params.Flag{branchFlag, sourceFlag, tagFlag, commitFlag},
	},
	Handler: func(ctx context.Context, rctx *runtime.Context, args Args) (string, error) {
		return CheckAction(ctx, rctx, CheckOptions{
			Branch: flagValue(args.Params, branchFlag),
			Source: flagValue(args.Params, sourceFlag),
			Tag:    flagValue(args.Params, tagFlag),
			Commit: flagValue(args.Params, commitFlag),
		})
	},
}

// CheckOptions contains options for the check command
type CheckOptions struct {
	Branch string
	Source string
	Tag    string
	Commit string
}

// CheckAction verifies that Branch derives from the requested base. A failed
// check is a StateError wrapping ErrCheckFailed.
func CheckAction(ctx context.Context, rctx *runtime.Context, opts CheckOptions) (string, error) {
	s, err := openSession(ctx, rctx)
	if err != nil {
		return "", err
	}

	base := git.BaseRef{Branch: opts.Source, Tag: opts.Tag, Commit: opts.Commit}
	if base.Branch == "" {
		base.Branch = s.baseline()
	}

	exists, err := s.ensureLocal(ctx, rctx, opts.Branch)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fcmmerrors.NewBranchNotFoundError(opts.Branch)
	}
	if base.Tag == "" && base.Commit == "" {
		exists, err := s.ensureLocal(ctx, rctx, base.Branch)
		if err != nil {
			return "", err
		}
		if !exists {
			return "", fcmmerrors.NewBranchNotFoundError(base.Branch)
		}
	}
	if err := requireOnBranch(s, opts.Branch, base); err != nil {
		return "", err
	}

	return rctx.Styles.Success(fmt.Sprintf("%s contains %s.", opts.Branch, base)), nil
}
