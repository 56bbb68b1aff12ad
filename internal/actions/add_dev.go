package actions

import (
	"context"

	"fcmm.dev/fcmm/internal/engine"
	fcmmerrors "fcmm.dev/fcmm/internal/errors"
	"fcmm.dev/fcmm/internal/git"
	"fcmm.dev/fcmm/internal/params"
	"fcmm.dev/fcmm/internal/runtime"
)

var typeFlag = params.Flag{Short: "y", Long: "type", Value: params.AnyValue}

var addDevCommand = Command{
	Name:    "add-dev",
	Summary: "create or reset a topic branch tb-<type>-<name>",
	Usage: `add-dev -n <name> [-y <type>] [-t <tag> | -c <commit> | -s <branch>] [-f] [-nb]
  Create tb-<type>-<name> from the baseline (lb-pkg when present, otherwise
  master), optionally at a tag or commit of the baseline, or as a copy of
  another topic branch.
  -n, -name <name>       branch name
  -y, -type <type>       branch type, fea by default
  -t, -tag <tag>         start at this tag of the baseline
  -c, -commit <commit>   start at this commit of the baseline
  -s, -source <branch>   copy this tb- branch (the tb- prefix is optional)
  -f, -force             reset an existing branch
  -nb, -nobak            do not back up the branch before resetting it`,
	Schema: params.Schema{
		Required: [][2]string{{"n", "name"}},
		Flags:    []params.Flag{nameFlag, typeFlag, tagFlag, commitFlag, sourceFlag, forceFlag, noBakFlag},
	},
	Handler: func(ctx context.Context, rctx *runtime.Context, args Args) (string, error) {
		return AddDevAction(ctx, rctx, AddDevOptions{
			Name:     flagValue(args.Params, nameFlag),
			Type:     args.Params.Value(typeFlag.Short, typeFlag.Long, rctx.Settings.DefaultDevType),
			Tag:      flagValue(args.Params, tagFlag),
			Commit:   flagValue(args.Params, commitFlag),
			Source:   flagValue(args.Params, sourceFlag),
			Force:    flagSet(args.Params, forceFlag),
			NoBackup: flagSet(args.Params, noBakFlag),
		})
	},
}

// AddDevOptions contains options for the add-dev command
type AddDevOptions struct {
	Name     string
	Type     string
	Tag      string
	Commit   string
	Source   string
	Force    bool
	NoBackup bool
}

// AddDevAction establishes tb-<type>-<name>.
func AddDevAction(ctx context.Context, rctx *runtime.Context, opts AddDevOptions) (string, error) {
	if opts.Source != "" && (opts.Tag != "" || opts.Commit != "") {
		return "", fcmmerrors.NewParameterError("-source cannot be combined with -tag or -commit")
	}
	if opts.Type == "" {
		opts.Type = engine.DefaultDevType
	}
	if err := validateNames(opts.Name, opts.Type); err != nil {
		return "", err
	}

	s, err := prepare(ctx, rctx)
	if err != nil {
		return "", err
	}

	var src engine.Source
	if opts.Source != "" {
		srcBranch := opts.Source
		if !engine.IsTopicBranch(srcBranch) {
			srcBranch = engine.TopicPrefix + srcBranch
		}
		if _, err := s.ensureLocal(ctx, rctx, srcBranch); err != nil {
			return "", err
		}
		src = engine.Source{Branch: srcBranch}
	} else {
		baseline := s.baseline()
		src = engine.Source{Branch: baseline, Tag: opts.Tag, Commit: opts.Commit}
		if opts.Tag != "" || opts.Commit != "" {
			if err := requireOnBranch(s, baseline, git.BaseRef{Tag: opts.Tag, Commit: opts.Commit}); err != nil {
				return "", err
			}
		}
	}

	return s.establish(ctx, rctx, establishOptions{
		Dest:     engine.DevBranchName(opts.Type, opts.Name),
		Source:   src,
		Force:    opts.Force,
		NoBackup: opts.NoBackup,
	})
}
