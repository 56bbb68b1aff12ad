package actions

import (
	"context"

	"fcmm.dev/fcmm/internal/engine"
	"fcmm.dev/fcmm/internal/params"
	"fcmm.dev/fcmm/internal/runtime"
)

var addCfgCommand = Command{
	Name:    "add-cfg",
	Summary: "create or reset a configuration branch lb-cfg-<name>",
	Usage: `add-cfg -n <name> [-s <source>] [-f] [-nb]
  Create lb-cfg-<name> as a copy of another configuration branch, or as a
  bare branch with no history.
  -n, -name <name>     configuration name
  -s, -source <name>   copy lb-cfg-<name> (the lb-cfg- prefix is optional)
  -f, -force           reset an existing branch
  -nb, -nobak          do not back up the branch before resetting it`,
	Schema: params.Schema{
		Required: [][2]string{{"n", "name"}},
		Flags:    []params.Flag{nameFlag, sourceFlag, forceFlag, noBakFlag},
	},
	Handler: func(ctx context.Context, rctx *runtime.Context, args Args) (string, error) {
		return AddCfgAction(ctx, rctx, AddCfgOptions{
			Name:     flagValue(args.Params, nameFlag),
			Source:   flagValue(args.Params, sourceFlag),
			Force:    flagSet(args.Params, forceFlag),
			NoBackup: flagSet(args.Params, noBakFlag),
		})
	},
}

// AddCfgOptions contains options for the add-cfg command
type AddCfgOptions struct {
	Name     string
	Source   string
	Force    bool
	NoBackup bool
}

// AddCfgAction establishes lb-cfg-<name>.
func AddCfgAction(ctx context.Context, rctx *runtime.Context, opts AddCfgOptions) (string, error) {
	if err := validateNames(opts.Name); err != nil {
		return "", err
	}
	s, err := prepare(ctx, rctx)
	if err != nil {
		return "", err
	}

	src := engine.Source{Bare: true}
	if opts.Source != "" {
		srcBranch := opts.Source
		if !engine.IsCfgBranch(srcBranch) {
			srcBranch = engine.CfgBranchName(srcBranch)
		}
		if _, err := s.ensureLocal(ctx, rctx, srcBranch); err != nil {
			return "", err
		}
		src = engine.Source{Branch: srcBranch}
	}

	return s.establish(ctx, rctx, establishOptions{
		Dest:     engine.CfgBranchName(opts.Name),
		Source:   src,
		Force:    opts.Force,
		NoBackup: opts.NoBackup,
	})
}
