package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	fcmmerrors "fcmm.dev/fcmm/internal/errors"
)

// Logger receives a debug line for every git invocation.
type Logger interface {
	Debug(format string, args ...interface{})
}

// CommandRunner handles execution of git commands in one working directory.
// The directory is always passed to the child process; the process-wide
// working directory is never changed.
type CommandRunner struct {
	workingDir string
	timeout    time.Duration
	env        []string
	logger     Logger
}

// RunnerOption configures a CommandRunner.
type RunnerOption func(*CommandRunner)

// WithTimeout bounds every invocation. Zero means no bound.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *CommandRunner) { r.timeout = d }
}

// WithEnv appends environment variables to every invocation.
func WithEnv(env ...string) RunnerOption {
	return func(r *CommandRunner) { r.env = append(r.env, env...) }
}

// WithLogger logs every invocation at debug level.
func WithLogger(l Logger) RunnerOption {
	return func(r *CommandRunner) { r.logger = l }
}

// NewCommandRunner creates a new CommandRunner
func NewCommandRunner(workingDir string, opts ...RunnerOption) *CommandRunner {
	r := &CommandRunner{workingDir: workingDir}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir returns the directory commands run in.
func (r *CommandRunner) Dir() string {
	return r.workingDir
}

// InDir returns a runner with the same options bound to dir.
func (r *CommandRunner) InDir(dir string) *CommandRunner {
	c := *r
	c.workingDir = dir
	c.env = append([]string(nil), r.env...)
	return &c
}

// Run executes a git command with the given context and returns the trimmed output
func (r *CommandRunner) Run(ctx context.Context, args ...string) (string, error) {
	return r.runInternal(ctx, true, args...)
}

// RunRaw executes a git command and returns the raw output (no trimming)
func (r *CommandRunner) RunRaw(ctx context.Context, args ...string) (string, error) {
	return r.runInternal(ctx, false, args...)
}

// runInternal runs git in the runner's directory, bounded by the runner timeout
func (r *CommandRunner) runInternal(ctx context.Context, trim bool, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if _, ok := ctx.Deadline(); !ok && r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	if r.logger != nil {
		r.logger.Debug("execute git %s (in %s)", strings.Join(args, " "), r.workingDir)
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = ctx.Err()
		}
		if r.logger != nil {
			r.logger.Debug("git %s failed: %s", strings.Join(args, " "), strings.TrimSpace(stderr.String()))
		}
		return "", fcmmerrors.NewGitCommandError("git", args, r.workingDir, stdout.String(), stderr.String(), err)
	}
	if trim {
		return strings.TrimSpace(stdout.String()), nil
	}
	return stdout.String(), nil
}
