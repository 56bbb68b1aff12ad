package actions

import (
	"context"

	"fcmm.dev/fcmm/internal/engine"
	"fcmm.dev/fcmm/internal/params"
	"fcmm.dev/fcmm/internal/runtime"
)

var bareFlag = params.Flag{Short: "bare", Long: "bare"}

var addTempCommand = Command{
	Name:    "add-temp",
	Summary: "create or reset a personal branch tb-dev-<name>",
	Usage: `add-temp -n <name> [-bare] [-f] [-nb]
  Create tb-dev-<name> from the branch that is checked out, or as a bare
  branch with no history.
  -n, -name <name>   branch name
  -bare              create a branch with no history
  -f, -force         reset an existing branch
  -nb, -nobak        do not back up the branch before resetting it`,
	Schema: params.Schema{
		Required: [][2]string{{"n", "name"}},
		Flags:    []params.Flag{nameFlag, bareFlag, forceFlag, noBakFlag},
	},
	Handler: func(ctx context.Context, rctx *runtime.Context, args Args) (string, error) {
		return AddTempAction(ctx, rctx, AddTempOptions{
			Name:     flagValue(args.Params, nameFlag),
			Bare:     flagSet(args.Params, bareFlag),
			Force:    flagSet(args.Params, forceFlag),
			NoBackup: flagSet(args.Params, noBakFlag),
		})
	},
}

// AddTempOptions contains options for the add-temp command
type AddTempOptions struct {
	Name     string
	Bare     bool
	Force    bool
	NoBackup bool
}

// AddTempAction establishes tb-dev-<name>.
func AddTempAction(ctx context.Context, rctx *runtime.Context, opts AddTempOptions) (string, error) {
	if err := validateNames(opts.Name); err != nil {
		return "", err
	}
	s, err := prepare(ctx, rctx)
	if err != nil {
		return "", err
	}

	src := engine.Source{Branch: s.original}
	if opts.Bare {
		src = engine.Source{Bare: true}
	}

	return s.establish(ctx, rctx, establishOptions{
		Dest:     engine.TempBranchName(opts.Name),
		Source:   src,
		Force:    opts.Force,
		NoBackup: opts.NoBackup,
	})
}
