package actions

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	fcmmerrors "fcmm.dev/fcmm/internal/errors"
	"fcmm.dev/fcmm/internal/params"
	"fcmm.dev/fcmm/internal/runtime"
)

// Args is what a handler receives: the raw parameter string and its split form.
type Args struct {
	Raw    string
	Params params.Map
}

// Handler runs a command and returns the message shown on success.
type Handler func(ctx context.Context, rctx *runtime.Context, args Args) (string, error)

// Command is one entry of the registry.
type Command struct {
	Name    string
	Summary string
	Usage   string
	Schema  params.Schema
	// Positional commands take bare words (help, cd) and skip schema validation
	Positional bool
	Handler    Handler
}

// Registry maps command names to commands.
type Registry struct {
	commands map[string]Command
	names    []string
}

// NewRegistry returns a registry holding every fcmm command.
func NewRegistry() *Registry {
	r := &Registry{commands: make(map[string]Command)}
	r.Register(cdCommand)
	r.Register(helpCommand(r))
	r.Register(initCommand)
	r.Register(addPkgCommand)
	r.Register(addCfgCommand)
	r.Register(addDevCommand)
	r.Register(addTempCommand)
	r.Register(rollbackCommand)
	r.Register(checkCommand)
	r.Register(mergeCommand)
	return r
}

// Register adds cmd, replacing a command of the same name.
func (r *Registry) Register(cmd Command) {
	if _, ok := r.commands[cmd.Name]; !ok {
		r.names = append(r.names, cmd.Name)
	}
	r.commands[cmd.Name] = cmd
}

// Lookup returns the named command or an error wrapping ErrUnknownCommand.
func (r *Registry) Lookup(name string) (Command, error) {
	cmd, ok := r.commands[name]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q, run help for the list of commands", fcmmerrors.ErrUnknownCommand, name)
	}
	return cmd, nil
}

// Commands returns the registered commands in registration order.
func (r *Registry) Commands() []Command {
	cmds := make([]Command, 0, len(r.names))
	for _, name := range r.names {
		cmds = append(cmds, r.commands[name])
	}
	return cmds
}

// Dispatch runs the named command with the raw parameter string. A help flag
// returns the command usage. Panics are turned into execution failures.
func (r *Registry) Dispatch(ctx context.Context, rctx *runtime.Context, name, raw string) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			rctx.Splog.Debug("panic in %s: %v\n%s", name, p, debug.Stack())
			res = failure(fcmmerrors.NewExecutionError(fmt.Errorf("%v", p),
				"execute %q failed", strings.TrimSpace(name+" "+raw)))
		}
	}()

	cmd, err := r.Lookup(name)
	if err != nil {
		return failure(err)
	}

	args := Args{Raw: strings.TrimSpace(raw), Params: params.Split(raw)}
	if args.Params.IsHelp() {
		return success(cmd.Usage)
	}
	if !cmd.Positional {
		if err := params.Validate(params.Tokens(raw), cmd.Schema); err != nil {
			return failure(err)
		}
	}

	rctx.Splog.Debug("run %s %s in %s", name, args.Raw, rctx.Dir)
	message, err := cmd.Handler(ctx, rctx, args)
	if err != nil {
		return failure(err)
	}
	return success(message)
}
