// Package cli exposes the command registry as a cobra command tree and as an
// interactive shell.
package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"fcmm.dev/fcmm/internal/actions"
	"fcmm.dev/fcmm/internal/runtime"
)

// NewRootCmd creates the root cobra command. Every registered command becomes a
// subcommand that receives its arguments unparsed, so fcmm's single-dash flags
// reach the parameter validator as typed. Without arguments the root command
// starts the interactive shell.
func NewRootCmd(rctx *runtime.Context, registry *actions.Registry) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fcmm",
		Short: "fcmm keeps git branches in the FCMM layout",
		Long: `fcmm keeps git branches in the FCMM layout: master, the package line lb-pkg,
configuration lines lb-cfg-<name> and topic branches tb-<type>-<name>.

Run fcmm without arguments for an interactive shell.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableFlagParsing: true,
		Args:               cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return NewShell(rctx, registry).Run(cmd.Context())
			}
			switch args[0] {
			case "-h", "-help", "--help":
				return dispatch(cmd.Context(), rctx, registry, "help", args[1:])
			}
			// not a registered command; let the registry report it
			return dispatch(cmd.Context(), rctx, registry, args[0], args[1:])
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	for _, command := range registry.Commands() {
		sub := newCommandCmd(rctx, registry, command)
		if command.Name == "help" {
			rootCmd.SetHelpCommand(sub)
			continue
		}
		rootCmd.AddCommand(sub)
	}

	return rootCmd
}

// newCommandCmd wraps one registered command.
func newCommandCmd(rctx *runtime.Context, registry *actions.Registry, command actions.Command) *cobra.Command {
	return &cobra.Command{
		Use:                command.Name,
		Short:              command.Summary,
		Long:               command.Usage,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatch(cmd.Context(), rctx, registry, command.Name, args)
		},
	}
}

func dispatch(ctx context.Context, rctx *runtime.Context, registry *actions.Registry, name string, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	res := registry.Dispatch(ctx, rctx, name, strings.Join(args, " "))
	report(rctx, res)
	if !res.OK() {
		return &ExitError{Code: res.Code, Err: res.Err}
	}
	return nil
}

// report prints a result: the message on success, the styled message on failure.
func report(rctx *runtime.Context, res actions.Result) {
	if res.OK() {
		if res.Message != "" {
			rctx.Splog.Info("%s", res.Message)
		}
		return
	}
	rctx.Splog.Error("%s", rctx.Styles.Failure(res.Message))
}
