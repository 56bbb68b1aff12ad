package runtime

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/spf13/afero"

	"fcmm.dev/fcmm/internal/config"
	"fcmm.dev/fcmm/internal/git"
	"fcmm.dev/fcmm/internal/output"
)

// TimestampLayout formats timestamps in backup names.
const TimestampLayout = "20060102150405"

// Context provides access to settings and output for commands
type Context struct {
	Settings *config.Settings
	Splog    *output.Splog
	Styles   *output.Styles
	Fs       afero.Fs
	// Dir is the session directory commands operate on
	Dir string
	// Now is the clock used for backup names
	Now func() time.Time
	// GitEnv is added to the environment of every git process
	GitEnv []string
}

// NewContext creates a context on the real filesystem rooted at the process
// working directory.
func NewContext(settings *config.Settings, splog *output.Splog) (*Context, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewContextInDir(settings, splog, dir), nil
}

// NewContextInDir creates a context rooted at dir.
func NewContextInDir(settings *config.Settings, splog *output.Splog, dir string) *Context {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	if splog == nil {
		splog = output.NewSplog()
	}
	return &Context{
		Settings: settings,
		Splog:    splog,
		Styles:   output.NewStyles(splog.Writer()),
		Fs:       afero.NewOsFs(),
		Dir:      dir,
		Now:      time.Now,
	}
}

// RunnerOptions returns the options every git runner of this context uses.
func (c *Context) RunnerOptions() []git.RunnerOption {
	opts := []git.RunnerOption{git.WithLogger(c.Splog)}
	if c.Settings.GitTimeout > 0 {
		opts = append(opts, git.WithTimeout(c.Settings.GitTimeout))
	}
	if len(c.GitEnv) > 0 {
		opts = append(opts, git.WithEnv(c.GitEnv...))
	}
	return opts
}

// Probe opens the session directory exactly.
func (c *Context) Probe() (*git.RepoHandle, error) {
	return git.Probe(c.Dir, c.RunnerOptions()...)
}

// Discover opens the repository containing the session directory.
func (c *Context) Discover() (*git.RepoHandle, error) {
	return git.Discover(c.Dir, c.RunnerOptions()...)
}

// Runner returns a git runner bound to dir.
func (c *Context) Runner(dir string) *git.CommandRunner {
	return git.NewCommandRunner(dir, c.RunnerOptions()...)
}

// Timestamp formats the current time for backup names.
func (c *Context) Timestamp() string {
	return c.Now().Format(TimestampLayout)
}

var unsafeOperatorChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Operator returns the configured operator or git's user.name, made safe for a
// branch name. Empty when neither is set.
func (c *Context) Operator(ctx context.Context, h *git.RepoHandle) string {
	op := c.Settings.Operator
	if op == "" && h != nil {
		op = git.UserName(ctx, h.Git)
	}
	return unsafeOperatorChars.ReplaceAllString(op, "_")
}

// ResolvePath makes path absolute relative to the session directory.
func (c *Context) ResolvePath(path string) string {
	if path == "" {
		return c.Dir
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.Dir, path)
}

// Chdir moves the session to path. The process working directory is not changed.
func (c *Context) Chdir(path string) error {
	target := c.ResolvePath(path)
	ok, err := afero.DirExists(c.Fs, target)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", target, err)
	}
	if !ok {
		return fmt.Errorf("%s is not a directory", target)
	}
	c.Dir = target
	return nil
}

// ScratchDir returns a fresh directory path under the temp path. It is not created.
func (c *Context) ScratchDir(id string) string {
	return filepath.Join(c.Settings.TempPath, id)
}
