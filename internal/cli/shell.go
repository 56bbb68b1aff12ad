package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/mattn/go-isatty"

	"fcmm.dev/fcmm/internal/actions"
	"fcmm.dev/fcmm/internal/runtime"
)

// Prompt is the shell prompt.
const Prompt = "FCMM>"

// LineReader returns the next line typed at the shell, or io.EOF when input ends.
type LineReader func(prompt string) (string, error)

// Shell reads commands one line at a time and dispatches them against the
// registry. The session directory carries over between lines, so cd affects
// every later command.
type Shell struct {
	rctx     *runtime.Context
	registry *actions.Registry
	read     LineReader
}

// NewShell creates a shell reading from the terminal, or from stdin line by
// line when stdin is not a terminal.
func NewShell(rctx *runtime.Context, registry *actions.Registry) *Shell {
	return NewShellWithReader(rctx, registry, defaultReader(os.Stdin))
}

// NewShellWithReader creates a shell reading lines from read.
func NewShellWithReader(rctx *runtime.Context, registry *actions.Registry, read LineReader) *Shell {
	return &Shell{rctx: rctx, registry: registry, read: read}
}

// Run loops until exit, end of input or an interrupt. Failed commands are
// reported and the loop continues.
func (s *Shell) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.rctx.Splog.Info("fcmm shell in %s. Type help for the commands, exit to leave.", s.rctx.Dir)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := s.read(Prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, terminal.InterruptErr) {
			return nil
		}
		if err != nil {
			return err
		}

		name, raw := splitCommand(line)
		switch name {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		report(s.rctx, s.registry.Dispatch(ctx, s.rctx, name, raw))
	}
}

func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	name, raw, _ := strings.Cut(line, " ")
	return name, strings.TrimSpace(raw)
}

func defaultReader(in *os.File) LineReader {
	if isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd()) {
		return surveyReader
	}
	return ScannerReader(in)
}

func surveyReader(prompt string) (string, error) {
	var line string
	if err := survey.AskOne(&survey.Input{Message: prompt}, &line); err != nil {
		return "", err
	}
	return line, nil
}

// ScannerReader reads lines from r without prompting.
func ScannerReader(r io.Reader) LineReader {
	scanner := bufio.NewScanner(r)
	return func(string) (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return scanner.Text(), nil
	}
}
