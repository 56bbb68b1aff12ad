package actions

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"fcmm.dev/fcmm/internal/backup"
	"fcmm.dev/fcmm/internal/config"
	"fcmm.dev/fcmm/internal/engine"
	fcmmerrors "fcmm.dev/fcmm/internal/errors"
	"fcmm.dev/fcmm/internal/git"
	"fcmm.dev/fcmm/internal/params"
	"fcmm.dev/fcmm/internal/runtime"
)

// Values of the init -base parameter.
const (
	BaseLocal  = "local"
	BaseRemote = "remote"
)

// AlreadySynced is the message of an init that found nothing to do.
const AlreadySynced = "already synced"

var initCommand = Command{
	Name:    "init",
	Summary: "bind the current directory to a remote as an fcmm repository",
	Usage: `init -b local|remote -u <url> [-v <tag>] [-m <message>] [-f] [-r] [-n]
  -b, -base local    the local directory wins: its files are committed on top
                     of the remote master (or replace it with -reset)
  -b, -base remote   the remote wins: the local directory is archived to the
                     backup path and replaced by a clone of the remote
  -u, -url <url>     remote repository
  -v, -version <tag> tag the initial commit
  -m, -msg <message> commit message
  -f, -force         allow overwriting a remote that already has history
  -r, -reset         start a new history, force pushing over the remote
  -n, -nopkg         do not create lb-pkg`,
	Schema: params.Schema{
		Required: [][2]string{{"b", "base"}, {"u", "url"}},
		Flags: []params.Flag{
			{Short: "b", Long: "base", Value: params.OneOf, Allowed: []string{BaseLocal, BaseRemote}},
			{Short: "u", Long: "url", Value: params.AnyValue},
			{Short: "v", Long: "version", Value: params.AnyValue},
			{Short: "m", Long: "msg", Value: params.AnyValue},
			forceFlag,
			{Short: "r", Long: "reset"},
			{Short: "n", Long: "nopkg"},
		},
	},
	Handler: func(ctx context.Context, rctx *runtime.Context, args Args) (string, error) {
		p := args.Params
		return InitAction(ctx, rctx, InitOptions{
			Base:    p.Value("b", "base", ""),
			URL:     p.Value("u", "url", ""),
			Version: p.Value("v", "version", ""),
			Message: p.Value("m", "msg", rctx.Settings.CommitMessage),
			Force:   flagSet(p, forceFlag),
			Reset:   p.Has("r", "reset"),
			NoPkg:   p.Has("n", "nopkg"),
		})
	},
}

// InitOptions contains options for the init command
type InitOptions struct {
	Base    string
	URL     string
	Version string
	Message string
	Force   bool
	Reset   bool
	NoPkg   bool
}

// bootstrap holds the state of one init run. scratch is the parent of the
// remote clone and is removed when init ends.
type bootstrap struct {
	rctx      *runtime.Context
	opts      InitOptions
	local     *git.RepoHandle
	name      string
	scratch   string
	forcePush bool
}

// InitAction reconciles the current directory with the remote at opts.URL and
// records it as an fcmm repository. Nothing already pushed is undone when a
// later step fails.
func InitAction(ctx context.Context, rctx *runtime.Context, opts InitOptions) (msg string, err error) {
	if opts.Message == "" {
		opts.Message = config.DefaultSettings().CommitMessage
	}
	local, err := rctx.Probe()
	if err != nil {
		return "", fcmmerrors.NewExecutionError(err, "failed to open %s", rctx.Dir)
	}
	if err := checkWorkPaths(rctx, local.WorkDir); err != nil {
		return "", err
	}

	b := &bootstrap{
		rctx:    rctx,
		opts:    opts,
		local:   local,
		name:    git.RemoteName(opts.URL),
		scratch: rctx.ScratchDir(uuid.NewString()),
	}
	defer func() {
		if rmErr := rctx.Fs.RemoveAll(b.scratch); rmErr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to remove %s: %w", b.scratch, rmErr))
		}
	}()

	switch opts.Base {
	case BaseLocal:
		if config.HasMetadata(rctx.Fs, local.WorkDir) {
			return b.checkSynced(ctx)
		}
		err = b.fromLocal(ctx)
	case BaseRemote:
		err = b.fromRemote(ctx)
	default:
		return "", fcmmerrors.NewParameterError("unknown base %q, use %s or %s", opts.Base, BaseLocal, BaseRemote)
	}
	if err != nil {
		return "", err
	}
	return b.finish(ctx)
}

// fromLocal makes the local directory the new head of the remote master.
func (b *bootstrap) fromLocal(ctx context.Context) error {
	remote, err := b.cloneRemote(ctx)
	if err != nil {
		return err
	}
	remoteEmpty := git.IsBare(remote)
	if !remoteEmpty {
		if !b.opts.Force {
			return fcmmerrors.NewStateError(fcmmerrors.ErrRemoteNotEmpty,
				"%s already has history, use -force to commit over it", b.opts.URL)
		}
		if err := b.archive(remote.WorkDir, fmt.Sprintf("%s.bak.%s.tar", b.name, b.rctx.Timestamp())); err != nil {
			return err
		}
	}

	switch {
	case b.opts.Reset:
		return b.resetLocal(ctx)
	case remoteEmpty:
		return b.bindLocal(ctx)
	default:
		return b.graftLocal(ctx, remote)
	}
}

// resetLocal starts a fresh history in the local directory; the push that
// follows replaces the remote master.
func (b *bootstrap) resetLocal(ctx context.Context) error {
	if err := b.archiveLocalGit(); err != nil {
		return err
	}
	if err := b.rctx.Fs.RemoveAll(b.gitDir()); err != nil {
		return fcmmerrors.NewExecutionError(err, "failed to remove %s", b.gitDir())
	}
	if err := git.Init(ctx, b.local); err != nil {
		return fcmmerrors.NewExecutionError(err, "git init failed")
	}
	if err := git.SetRemote(ctx, b.local, b.rctx.Settings.Remote, b.opts.URL); err != nil {
		return fcmmerrors.NewExecutionError(err, "failed to set the remote")
	}
	b.forcePush = true
	return nil
}

// bindLocal points the local directory at an empty remote.
func (b *bootstrap) bindLocal(ctx context.Context) error {
	if !b.local.IsRepo() {
		if err := git.Init(ctx, b.local); err != nil {
			return fcmmerrors.NewExecutionError(err, "git init failed")
		}
	}
	if err := git.SetRemote(ctx, b.local, b.rctx.Settings.Remote, b.opts.URL); err != nil {
		return fcmmerrors.NewExecutionError(err, "failed to set the remote")
	}
	return onMaster(ctx, b.local)
}

// graftLocal puts the local files on top of the remote history: the clone's
// tracked files are removed, the local files copied in, and the clone's .git
// replaces the local one.
func (b *bootstrap) graftLocal(ctx context.Context, remote *git.RepoHandle) error {
	if err := onMaster(ctx, remote); err != nil {
		return err
	}
	if err := git.ClearWorkTree(ctx, remote); err != nil {
		return fcmmerrors.NewExecutionError(err, "failed to clear the clone")
	}
	if err := backup.CopyTree(b.rctx.Fs, b.local.WorkDir, remote.WorkDir, ".git"); err != nil {
		return fcmmerrors.NewExecutionError(err, "failed to copy local files")
	}
	if err := git.StageAll(ctx, remote); err != nil {
		return fcmmerrors.NewExecutionError(err, "failed to stage local files")
	}

	if err := b.archiveLocalGit(); err != nil {
		return err
	}
	if err := backup.MoveTree(b.rctx.Fs, filepath.Join(remote.WorkDir, ".git"), b.gitDir()); err != nil {
		return fcmmerrors.NewExecutionError(err, "failed to move the repository into %s", b.local.WorkDir)
	}
	if err := b.local.Refresh(); err != nil {
		return fcmmerrors.NewExecutionError(err, "failed to open %s", b.local.WorkDir)
	}
	return nil
}

// fromRemote replaces the local directory with a clone of the remote.
func (b *bootstrap) fromRemote(ctx context.Context) error {
	remote, err := b.cloneRemote(ctx)
	if err != nil {
		return err
	}
	if err := onMaster(ctx, remote); err != nil {
		return err
	}

	fs := b.rctx.Fs
	empty, err := backup.IsEmptyDir(fs, b.local.WorkDir)
	if err != nil {
		return fcmmerrors.NewExecutionError(err, "failed to read %s", b.local.WorkDir)
	}
	if !empty {
		if err := b.archive(b.local.WorkDir, fmt.Sprintf("%s.%s.tar", b.name, b.rctx.Timestamp())); err != nil {
			return err
		}
		if err := backup.ClearDir(fs, b.local.WorkDir); err != nil {
			return fcmmerrors.NewExecutionError(err, "failed to empty %s", b.local.WorkDir)
		}
	}
	if err := backup.CopyTree(fs, remote.WorkDir, b.local.WorkDir); err != nil {
		return fcmmerrors.NewExecutionError(err, "failed to copy the clone into %s", b.local.WorkDir)
	}
	if err := b.local.Refresh(); err != nil {
		return fcmmerrors.NewExecutionError(err, "failed to open %s", b.local.WorkDir)
	}
	return nil
}

// finish records the metadata, commits, tags and pushes master, then resets
// lb-pkg from it unless NoPkg is set.
func (b *bootstrap) finish(ctx context.Context) (string, error) {
	fs := b.rctx.Fs
	h := b.local
	if config.HasMetadata(fs, h.WorkDir) {
		return AlreadySynced, nil
	}

	meta := &config.Metadata{RemoteURL: b.opts.URL, HasPkg: !b.opts.NoPkg}
	if err := config.WriteMetadata(fs, h.WorkDir, meta); err != nil {
		return "", fcmmerrors.NewExecutionError(err, "failed to write metadata")
	}
	if err := git.StageAll(ctx, h); err != nil {
		return "", fcmmerrors.NewExecutionError(err, "failed to stage files")
	}
	if err := git.Commit(ctx, h, b.opts.Message, false); err != nil {
		return "", fcmmerrors.NewExecutionError(err, "commit failed")
	}

	remote := b.rctx.Settings.Remote
	if b.opts.Version != "" {
		if git.TagExists(h, b.opts.Version) {
			if err := git.DeleteTag(ctx, h, b.opts.Version); err != nil {
				return "", fcmmerrors.NewExecutionError(err, "failed to replace tag %s", b.opts.Version)
			}
		}
		if err := git.CreateAnnotatedTag(ctx, h, b.opts.Version, b.opts.Message); err != nil {
			return "", fcmmerrors.NewExecutionError(err, "failed to tag %s", b.opts.Version)
		}
	}
	if err := git.PushBranch(ctx, h, remote, engine.MasterBranch, b.forcePush); err != nil {
		return "", fcmmerrors.NewExecutionError(err, "failed to push %s", engine.MasterBranch)
	}
	if b.opts.Version != "" {
		if err := git.PushTag(ctx, h, remote, b.opts.Version, true); err != nil {
			return "", fcmmerrors.NewExecutionError(err, "failed to push tag %s", b.opts.Version)
		}
	}

	if !b.opts.NoPkg {
		eng := newEngine(b.rctx, h)
		if err := eng.OverwriteBranch(ctx, engine.PkgBranch, engine.Source{Branch: engine.MasterBranch}); err != nil {
			return "", asExecution(err, "failed to create %s", engine.PkgBranch)
		}
	}

	return fmt.Sprintf("Initialized %s with %s as base.", b.local.WorkDir, b.opts.Base), nil
}

// checkSynced answers an init of a directory that already has metadata: it
// succeeds without pushing when the metadata matches the options and master
// is level with the remote.
func (b *bootstrap) checkSynced(ctx context.Context) (string, error) {
	h := b.local
	diverged := fcmmerrors.NewStateError(fcmmerrors.ErrAlreadyInitialized,
		"%s is already an fcmm repository with different settings", h.WorkDir)

	meta, err := config.ReadMetadata(b.rctx.Fs, h.WorkDir)
	if err != nil || !h.IsRepo() {
		return "", diverged
	}
	if meta.RemoteURL != b.opts.URL || meta.HasPkg == b.opts.NoPkg {
		return "", diverged
	}
	if b.opts.Version != "" {
		ok, err := git.CheckBaseCommit(h, engine.MasterBranch, git.BaseRef{Tag: b.opts.Version})
		if err != nil || !ok {
			return "", diverged
		}
	}

	remote := b.rctx.Settings.Remote
	if err := git.Fetch(ctx, h, remote, engine.MasterBranch); err != nil {
		return "", fcmmerrors.NewExecutionError(err, "failed to fetch %s", engine.MasterBranch)
	}
	localTip, err := git.ResolveCommit(ctx, h, engine.MasterBranch)
	if err != nil {
		return "", diverged
	}
	remoteTip, err := git.ResolveCommit(ctx, h, remote+"/"+engine.MasterBranch)
	if err != nil || remoteTip != localTip {
		return "", diverged
	}
	return AlreadySynced, nil
}

// cloneRemote clones the remote into the scratch directory.
func (b *bootstrap) cloneRemote(ctx context.Context) (*git.RepoHandle, error) {
	if err := b.rctx.Fs.MkdirAll(b.scratch, 0750); err != nil {
		return nil, fcmmerrors.NewExecutionError(err, "failed to create %s", b.scratch)
	}
	name := b.name
	if name == "" {
		name = "remote"
	}
	h, err := git.Clone(ctx, b.rctx.Runner(b.scratch), b.opts.URL, filepath.Join(b.scratch, name))
	if err != nil {
		return nil, fcmmerrors.NewExecutionError(err, "failed to clone %s", b.opts.URL)
	}
	return h, nil
}

func (b *bootstrap) gitDir() string {
	return filepath.Join(b.local.WorkDir, ".git")
}

// archiveLocalGit saves the local .git, if any, before it is replaced.
func (b *bootstrap) archiveLocalGit() error {
	exists, err := afero.DirExists(b.rctx.Fs, b.gitDir())
	if err != nil || !exists {
		return err
	}
	return b.archive(b.gitDir(), fmt.Sprintf("%s.%s.tar", b.name, b.rctx.Timestamp()))
}

func (b *bootstrap) archive(dir, fileName string) error {
	a, err := backup.ArchiveDir(b.rctx.Fs, dir, filepath.Join(b.rctx.Settings.BackupPath, fileName))
	if err != nil {
		return fcmmerrors.NewExecutionError(err, "failed to back up %s", dir)
	}
	b.rctx.Splog.Info("Backed up %s to %s.", dir, a)
	return nil
}

// checkWorkPaths refuses temp and backup paths inside dir: init archives,
// clears and stages dir, which would take the archives and the clone with it.
func checkWorkPaths(rctx *runtime.Context, dir string) error {
	settings := rctx.Settings
	for _, p := range []struct{ key, path string }{
		{"temp_path", settings.TempPath},
		{"backup_path", settings.BackupPath},
	} {
		if p.path == "" {
			continue
		}
		if isWithin(dir, rctx.ResolvePath(p.path)) {
			return fcmmerrors.NewStateError(fcmmerrors.ErrWorkPathInside,
				"%s %s is inside %s, move it out before running init", p.key, p.path, dir)
		}
	}
	return nil
}

func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// onMaster makes master the checked out branch, creating it from HEAD when
// the repository has history and renaming the unborn branch when it has none.
func onMaster(ctx context.Context, h *git.RepoHandle) error {
	if active, err := git.ActiveBranch(h); err == nil && active == engine.MasterBranch {
		return nil
	}
	var err error
	switch {
	case git.BranchExists(h, engine.MasterBranch):
		err = git.CheckoutBranch(ctx, h, engine.MasterBranch)
	case h.Repo.HasHistory():
		err = git.CheckoutBranch(ctx, h, engine.MasterBranch)
		if err != nil {
			err = git.CheckoutNewBranch(ctx, h, engine.MasterBranch, "HEAD", false)
		}
	default:
		err = git.SetHeadBranch(ctx, h, engine.MasterBranch)
	}
	if err != nil {
		return fcmmerrors.NewExecutionError(err, "failed to switch %s to %s", h.WorkDir, engine.MasterBranch)
	}
	return nil
}
