package actions

import (
	"context"
	"fmt"

	fcmmerrors "fcmm.dev/fcmm/internal/errors"
	"fcmm.dev/fcmm/internal/runtime"
)

var cdCommand = Command{
	Name:    "cd",
	Summary: "change the directory fcmm works in",
	Usage: `cd [path]
  Change the directory later commands work in. Relative paths are taken from
  the current one; without a path the current directory is shown.`,
	Positional: true,
	Handler: func(_ context.Context, rctx *runtime.Context, args Args) (string, error) {
		return CdAction(rctx, CdOptions{Path: args.Raw})
	},
}

// CdOptions contains options for the cd command
type CdOptions struct {
	Path string
}

// CdAction moves the session directory.
func CdAction(rctx *runtime.Context, opts CdOptions) (string, error) {
	if opts.Path != "" {
		if err := rctx.Chdir(opts.Path); err != nil {
			return "", fcmmerrors.NewParameterError("cannot change directory: %v", err)
		}
	}
	return fmt.Sprintf("Current directory: %s", rctx.Dir), nil
}
