package actions

import (
	"context"
	"fmt"
	"strings"

	"fcmm.dev/fcmm/internal/output"
	"fcmm.dev/fcmm/internal/runtime"
)

func helpCommand(r *Registry) Command {
	return Command{
		Name:    "help",
		Summary: "list the commands, or show how to use one",
		Usage: `help [command]
  Without a command, list every command. Every command also accepts -h / -help.`,
		Positional: true,
		Handler: func(_ context.Context, rctx *runtime.Context, args Args) (string, error) {
			return HelpAction(rctx, r, HelpOptions{Command: firstWord(args.Raw)})
		},
	}
}

// HelpOptions contains options for the help command
type HelpOptions struct {
	Command string
}

// HelpAction returns the usage of one command, or a table of all of them.
func HelpAction(rctx *runtime.Context, r *Registry, opts HelpOptions) (string, error) {
	if opts.Command != "" {
		cmd, err := r.Lookup(opts.Command)
		if err != nil {
			return "", err
		}
		return cmd.Usage, nil
	}

	cmds := r.Commands()
	rows := make([]output.Row, 0, len(cmds))
	for _, cmd := range cmds {
		rows = append(rows, output.Row{Name: cmd.Name, Description: cmd.Summary})
	}
	table := output.Table(rctx.Styles, [2]string{"COMMAND", "DESCRIPTION"}, rows)
	return fmt.Sprintf("%s\nRun help <command> or <command> -h for the parameters of a command.", table), nil
}

func firstWord(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
