package actions

import (
	"context"
	"errors"
	"fmt"

	"fcmm.dev/fcmm/internal/config"
	"fcmm.dev/fcmm/internal/engine"
	fcmmerrors "fcmm.dev/fcmm/internal/errors"
	"fcmm.dev/fcmm/internal/git"
	"fcmm.dev/fcmm/internal/runtime"
)

// session is what a command body works with after the preamble.
type session struct {
	handle   *git.RepoHandle
	meta     *config.Metadata
	original string
	engine   engine.Engine
}

// baseline is lb-pkg when the repository has one, master otherwise.
func (s *session) baseline() string {
	return engine.BaselineBranch(s.meta.HasPkg)
}

func newEngine(rctx *runtime.Context, h *git.RepoHandle) engine.Engine {
	return engine.NewEngine(h, engine.Options{
		Remote: rctx.Settings.Remote,
		Now:    rctx.Now,
		Logger: rctx.Splog,
	})
}

// openSession resolves the repository and its metadata without touching any branch.
// Branches created bare carry no .fcmm4git, so master's copy is used then.
func openSession(ctx context.Context, rctx *runtime.Context) (*session, error) {
	h, err := rctx.Discover()
	if err != nil {
		return nil, fcmmerrors.NewExecutionError(err, "failed to open %s", rctx.Dir)
	}
	if !h.IsRepo() {
		return nil, fcmmerrors.NewStateError(fcmmerrors.ErrNotFcmmRepo, "%s is not a git repository", rctx.Dir)
	}
	meta, err := config.ReadMetadata(rctx.Fs, h.WorkDir)
	if err != nil && git.BranchExists(h, engine.MasterBranch) {
		if data, showErr := git.ShowFile(ctx, h, engine.MasterBranch, config.MetadataFileName); showErr == nil {
			meta, err = config.ParseMetadata(data)
		}
	}
	if err != nil {
		return nil, fcmmerrors.NewStateError(fcmmerrors.ErrNotFcmmRepo,
			"%s is not an fcmm repository (run init first): %v", h.WorkDir, err)
	}
	return &session{handle: h, meta: meta, engine: newEngine(rctx, h)}, nil
}

// prepare is the preamble of every branch-mutating command except init. It
// rejects a dirty tree, pulls master, syncs lb-pkg when the repository has
// one, and leaves the originally active branch checked out.
func prepare(ctx context.Context, rctx *runtime.Context) (*session, error) {
	s, err := openSession(ctx, rctx)
	if err != nil {
		return nil, err
	}

	dirty, err := git.IsDirty(ctx, s.handle)
	if err != nil {
		return nil, fcmmerrors.NewExecutionError(err, "failed to check the working tree")
	}
	if dirty {
		return nil, fcmmerrors.NewStateError(fcmmerrors.ErrDirtyTree,
			"%s has uncommitted changes, commit or stash them first", s.handle.WorkDir)
	}

	s.original, err = git.ActiveBranch(s.handle)
	if err != nil {
		return nil, fcmmerrors.NewStateError(fcmmerrors.ErrNotOnBranch, "check out a branch first")
	}

	if _, err := s.engine.SyncBranch(ctx, engine.MasterBranch); err != nil {
		return nil, fcmmerrors.NewExecutionError(err, "failed to update %s", engine.MasterBranch)
	}
	if s.meta.HasPkg {
		isNew, err := s.engine.SyncBranch(ctx, engine.PkgBranch)
		switch {
		case err != nil && isNew:
			rctx.Splog.Warn("%s is not on the remote yet: %v", rctx.Styles.Branch(engine.PkgBranch), err)
		case err != nil:
			return nil, fcmmerrors.NewExecutionError(err, "failed to update %s", engine.PkgBranch)
		}
	}

	return s, nil
}

// ensureLocal makes a branch that only exists on the remote available locally.
// It reports whether the branch exists afterwards.
func (s *session) ensureLocal(ctx context.Context, rctx *runtime.Context, branch string) (bool, error) {
	if git.BranchExists(s.handle, branch) {
		return true, nil
	}
	onRemote, err := git.RemoteBranchExists(ctx, s.handle, rctx.Settings.Remote, branch)
	if err != nil {
		return false, fcmmerrors.NewExecutionError(err, "failed to query the remote")
	}
	if !onRemote {
		return false, nil
	}
	if _, err := s.engine.SyncBranch(ctx, branch); err != nil {
		return false, fcmmerrors.NewExecutionError(err, "failed to fetch %s", branch)
	}
	return true, nil
}

// backupFirst copies branch to a tb-bak- branch unless backups are turned off
// in the settings or by noBackup.
func (s *session) backupFirst(ctx context.Context, rctx *runtime.Context, branch string, noBackup bool) error {
	if !rctx.Settings.BackupBefore || noBackup {
		return nil
	}
	name, err := s.engine.BackupBranch(ctx, branch, rctx.Operator(ctx, s.handle))
	if err != nil {
		return asExecution(err, "backup of %s failed", branch)
	}
	rctx.Splog.Info("Backed up %s to %s.", rctx.Styles.Branch(branch), rctx.Styles.Branch(name))
	return nil
}

// establishOptions describes a create-or-reset of one branch.
type establishOptions struct {
	Dest     string
	Source   engine.Source
	Force    bool
	NoBackup bool
}

// establish creates opts.Dest from opts.Source, or, when it already exists and
// Force is set, backs it up and overwrites it.
func (s *session) establish(ctx context.Context, rctx *runtime.Context, opts establishOptions) (string, error) {
	if opts.Source.Branch == opts.Dest && opts.Source.Tag == "" && opts.Source.Commit == "" {
		return "", fcmmerrors.NewStateError(fcmmerrors.ErrSameBranch, "cannot create %s from itself", opts.Dest)
	}

	exists, err := s.ensureLocal(ctx, rctx, opts.Dest)
	if err != nil {
		return "", err
	}

	if !exists {
		if err := s.engine.AddBranch(ctx, opts.Dest, opts.Source); err != nil {
			return "", asExecution(err, "failed to create %s", opts.Dest)
		}
		return fmt.Sprintf("Created %s from %s.", rctx.Styles.Branch(opts.Dest), describeSource(opts.Source)), nil
	}

	if !opts.Force {
		return "", fcmmerrors.NewStateError(fcmmerrors.ErrBranchExists,
			"branch %s already exists, use -force to reset it", opts.Dest)
	}
	if err := s.backupFirst(ctx, rctx, opts.Dest, opts.NoBackup); err != nil {
		return "", err
	}
	if err := s.engine.OverwriteBranch(ctx, opts.Dest, opts.Source); err != nil {
		return "", asExecution(err, "failed to reset %s", opts.Dest)
	}
	return fmt.Sprintf("Reset %s from %s.", rctx.Styles.Branch(opts.Dest), describeSource(opts.Source)), nil
}

func describeSource(src engine.Source) string {
	switch {
	case src.Tag != "":
		return "tag " + src.Tag
	case src.Commit != "":
		return "commit " + src.Commit
	case src.Branch != "":
		return src.Branch
	default:
		return "nothing (bare)"
	}
}

// asExecution keeps typed errors as they are and marks everything else as an
// execution failure.
func asExecution(err error, format string, args ...interface{}) error {
	var typed *fcmmerrors.Error
	if errors.As(err, &typed) {
		return err
	}
	return fcmmerrors.NewExecutionError(err, format, args...)
}

// validateNames rejects user given branch name parts before any repository access.
func validateNames(names ...string) error {
	for _, name := range names {
		if err := engine.ValidateName(name); err != nil {
			return fcmmerrors.NewParameterError("invalid name: %v", err)
		}
	}
	return nil
}
