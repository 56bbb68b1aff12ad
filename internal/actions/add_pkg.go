package actions

import (
	"context"
	"fmt"

	"fcmm.dev/fcmm/internal/config"
	"fcmm.dev/fcmm/internal/engine"
	fcmmerrors "fcmm.dev/fcmm/internal/errors"
	"fcmm.dev/fcmm/internal/git"
	"fcmm.dev/fcmm/internal/params"
	"fcmm.dev/fcmm/internal/runtime"
)

// Flags shared by several commands.
var (
	forceFlag  = params.Flag{Short: "f", Long: "force"}
	noBakFlag  = params.Flag{Short: "nb", Long: "nobak"}
	tagFlag    = params.Flag{Short: "t", Long: "tag", Value: params.AnyValue}
	commitFlag = params.Flag{Short: "c", Long: "commit", Value: params.AnyValue}
	nameFlag   = params.Flag{Short: "n", Long: "name", Value: params.AnyValue}
	sourceFlag = params.Flag{Short: "s", Long: "source", Value: params.AnyValue}
	branchFlag = params.Flag{Short: "b", Long: "branch", Value: params.AnyValue}
)

func flagValue(p params.Map, f params.Flag) string {
	return p.Value(f.Short, f.Long, "")
}

func flagSet(p params.Map, f params.Flag) bool {
	return p.Has(f.Short, f.Long)
}

var addPkgCommand = Command{
	Name:    "add-pkg",
	Summary: "create or reset the lb-pkg baseline from master",
	Usage: `add-pkg [-t <tag>] [-f] [-nb]
  Create lb-pkg from master, or from a tag on master. An existing lb-pkg is
  only reset with -force and is backed up to a tb-bak- branch first.
  -t, -tag <tag>   start lb-pkg at this tag instead of the tip of master
  -f, -force       reset an existing lb-pkg
  -nb, -nobak      do not back up lb-pkg before resetting it`,
	Schema: params.Schema{Flags: []params.Flag{tagFlag, forceFlag, noBakFlag}},
	Handler: func(ctx context.Context, rctx *runtime.Context, args Args) (string, error) {
		return AddPkgAction(ctx, rctx, AddPkgOptions{
			Tag:      flagValue(args.Params, tagFlag),
			Force:    flagSet(args.Params, forceFlag),
			NoBackup: flagSet(args.Params, noBakFlag),
		})
	},
}

// AddPkgOptions contains options for the add-pkg command
type AddPkgOptions struct {
	Tag      string
	Force    bool
	NoBackup bool
}

// AddPkgAction establishes lb-pkg from master. The first time, has_pkg is
// switched on in .fcmm4git and committed to master before lb-pkg is created.
func AddPkgAction(ctx context.Context, rctx *runtime.Context, opts AddPkgOptions) (string, error) {
	s, err := prepare(ctx, rctx)
	if err != nil {
		return "", err
	}

	src := engine.Source{Branch: engine.MasterBranch, Tag: opts.Tag}
	if opts.Tag != "" {
		if err := requireOnBranch(s, engine.MasterBranch, git.BaseRef{Tag: opts.Tag}); err != nil {
			return "", err
		}
	}

	exists, err := s.ensureLocal(ctx, rctx, engine.PkgBranch)
	if err != nil {
		return "", err
	}
	if !exists && !s.meta.HasPkg {
		if err := enablePkg(ctx, rctx, s); err != nil {
			return "", err
		}
	}

	return s.establish(ctx, rctx, establishOptions{
		Dest:     engine.PkgBranch,
		Source:   src,
		Force:    opts.Force,
		NoBackup: opts.NoBackup,
	})
}

// enablePkg sets has_pkg in .fcmm4git on master, commits and pushes it.
func enablePkg(ctx context.Context, rctx *runtime.Context, s *session) error {
	err := s.engine.OnBranch(ctx, engine.MasterBranch, func() error {
		meta := *s.meta
		meta.HasPkg = true
		if err := config.WriteMetadata(rctx.Fs, s.handle.WorkDir, &meta); err != nil {
			return err
		}
		if err := git.StagePaths(ctx, s.handle, config.MetadataFileName); err != nil {
			return err
		}
		// nothing to commit when master already records has_pkg
		staged, err := git.HasStagedChanges(ctx, s.handle)
		if err != nil {
			return err
		}
		if staged {
			if err := git.Commit(ctx, s.handle, fmt.Sprintf("set has_pkg in %s by fcmm", config.MetadataFileName), false); err != nil {
				return err
			}
		}
		return git.PushBranch(ctx, s.handle, rctx.Settings.Remote, engine.MasterBranch, false)
	})
	if err != nil {
		return asExecution(err, "failed to record lb-pkg in %s", config.MetadataFileName)
	}
	s.meta.HasPkg = true
	return nil
}

// requireOnBranch fails unless base names a commit in the history of branch.
func requireOnBranch(s *session, branch string, base git.BaseRef) error {
	if base.Tag != "" && !git.TagExists(s.handle, base.Tag) {
		return fcmmerrors.NewTagNotFoundError(base.Tag)
	}
	if base.Tag == "" && base.Commit != "" {
		if _, err := s.handle.Repo.RevisionCommit(base.Commit); err != nil {
			return fcmmerrors.NewStateError(fcmmerrors.ErrCommitNotFound, "commit %s does not exist", base.Commit)
		}
	}
	ok, err := git.CheckBaseCommit(s.handle, branch, base)
	if err != nil {
		return fcmmerrors.NewExecutionError(err, "failed to check %s", branch)
	}
	if !ok {
		return fcmmerrors.NewStateError(fcmmerrors.ErrCheckFailed, "%s is not in the history of %s", base, branch)
	}
	return nil
}
