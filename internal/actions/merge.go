package actions

import (
	"context"

	fcmmerrors "fcmm.dev/fcmm/internal/errors"
	"fcmm.dev/fcmm/internal/git"
	"fcmm.dev/fcmm/internal/params"
	"fcmm.dev/fcmm/internal/runtime"
)

var mergeCommand = Command{
	Name:    "merge",
	Summary: "merge a branch into another (not available yet)",
	Usage: `merge -s <source> [-b <branch>] [-t <tag>]
  Resolve the merge of <source> (or a tag of it) into <branch>, which
  defaults to the baseline. Executing the merge is not available yet.
  -s, -source <branch>   branch to merge
  -b, -branch <branch>   branch to merge into
  -t, -tag <tag>         merge this tag of <source>`,
	Schema: params.Schema{
		Required: [][2]string{{"s", "source"}},
		Flags:    []params.Flag{sourceFlag, branchFlag, tagFlag},
	},
	Handler: func(ctx context.Context, rctx *runtime.Context, args Args) (string, error) {
		return MergeAction(ctx, rctx, MergeOptions{
			Source: flagValue(args.Params, sourceFlag),
			Branch: flagValue(args.Params, branchFlag),
			Tag:    flagValue(args.Params, tagFlag),
		})
	},
}

// MergeOptions contains options for the merge command
type MergeOptions struct {
	Source string
	Branch string
	Tag    string
}

// MergeAction resolves its parameters against the repository and then fails
// with ErrNotImplemented.
func MergeAction(ctx context.Context, rctx *runtime.Context, opts MergeOptions) (string, error) {
	s, err := openSession(ctx, rctx)
	if err != nil {
		return "", err
	}

	dest := opts.Branch
	if dest == "" {
		dest = s.baseline()
	}
	for _, branch := range []string{opts.Source, dest} {
		if !git.BranchExists(s.handle, branch) {
			return "", fcmmerrors.NewBranchNotFoundError(branch)
		}
	}
	if opts.Tag != "" {
		if err := requireOnBranch(s, opts.Source, git.BaseRef{Tag: opts.Tag}); err != nil {
			return "", err
		}
	}

	from := git.BaseRef{Branch: opts.Source, Tag: opts.Tag}
	return "", fcmmerrors.NewExecutionError(fcmmerrors.ErrNotImplemented, "merge of %s into %s", from, dest)
}
