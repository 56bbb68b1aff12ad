package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fcmm.dev/fcmm/internal/engine"
	fcmmerrors "fcmm.dev/fcmm/internal/errors"
	"fcmm.dev/fcmm/internal/git"
	"fcmm.dev/fcmm/testhelpers"
)

var fixedNow = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

func newEngine(t *testing.T, scene *testhelpers.Scene) engine.Engine {
	t.Helper()
	h, err := git.Probe(scene.Dir, git.WithEnv(testhelpers.GitEnv()...))
	require.NoError(t, err)
	return engine.NewEngine(h, engine.Options{Now: fixedNow})
}

// remoteScene has master pushed to origin, a V1.0 tag on the first commit and
// a second commit on master. tb-fea-work is checked out.
func remoteScene(t *testing.T) *testhelpers.Scene {
	t.Helper()
	return testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
		if err := testhelpers.RemoteSceneSetup(s); err != nil {
			return err
		}
		if err := s.Repo.CreateTag("V1.0"); err != nil {
			return err
		}
		if err := s.Repo.CreateChangeAndCommit("2", "2"); err != nil {
			return err
		}
		if err := s.Repo.PushBranch("origin", "master"); err != nil {
			return err
		}
		return s.Repo.CreateAndCheckoutBranch("tb-fea-work")
	})
}

func TestAddBranch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("from tag", func(t *testing.T) {
		t.Parallel()
		scene := remoteScene(t)
		eng := newEngine(t, scene)

		require.NoError(t, eng.AddBranch(ctx, "lb-pkg", engine.Source{Tag: "V1.0", Branch: "master"}))
		testhelpers.ExpectCurrentBranch(t, scene.Repo, "tb-fea-work")
		testhelpers.ExpectRemoteBranch(t, scene.Repo, "origin", "lb-pkg", "V1.0")
	})

	t.Run("from branch", func(t *testing.T) {
		t.Parallel()
		scene := remoteScene(t)
		eng := newEngine(t, scene)

		require.NoError(t, eng.AddBranch(ctx, "lb-cfg-a", engine.Source{Branch: "master"}))
		testhelpers.ExpectCurrentBranch(t, scene.Repo, "tb-fea-work")
		testhelpers.ExpectRemoteBranch(t, scene.Repo, "origin", "lb-cfg-a", "master")
	})

	t.Run("from commit", func(t *testing.T) {
		t.Parallel()
		scene := remoteScene(t)
		eng := newEngine(t, scene)
		first, err := scene.Repo.GetRevision("master~1")
		require.NoError(t, err)

		require.NoError(t, eng.AddBranch(ctx, "tb-fea-old", engine.Source{Branch: "master", Commit: first}))
		testhelpers.ExpectRemoteBranch(t, scene.Repo, "origin", "tb-fea-old", first)
	})

	t.Run("bare", func(t *testing.T) {
		t.Parallel()
		scene := remoteScene(t)
		eng := newEngine(t, scene)

		require.NoError(t, eng.AddBranch(ctx, "lb-cfg-empty", engine.Source{Bare: true}))
		testhelpers.ExpectCurrentBranch(t, scene.Repo, "tb-fea-work")
		testhelpers.ExpectCommits(t, scene.Repo, "lb-cfg-empty", []string{engine.BareCommitMessage})
		files, err := scene.Repo.RunGitCommandAndGetOutput("ls-tree", "-r", "--name-only", "lb-cfg-empty")
		require.NoError(t, err)
		require.Empty(t, files)
		testhelpers.ExpectRemoteBranch(t, scene.Repo, "origin", "lb-cfg-empty", "lb-cfg-empty")
	})

	t.Run("missing tag aborts before any change", func(t *testing.T) {
		t.Parallel()
		scene := remoteScene(t)
		eng := newEngine(t, scene)

		err := eng.AddBranch(ctx, "lb-pkg", engine.Source{Tag: "V9"})
		require.ErrorIs(t, err, fcmmerrors.ErrTagNotFound)
		require.Equal(t, fcmmerrors.KindState, fcmmerrors.KindOf(err))
		testhelpers.ExpectBranches(t, scene.Repo, []string{"master", "tb-fea-work"})
	})

	t.Run("no strategy", func(t *testing.T) {
		t.Parallel()
		scene := remoteScene(t)
		eng := newEngine(t, scene)

		err := eng.AddBranch(ctx, "lb-pkg", engine.Source{})
		require.Equal(t, fcmmerrors.KindParameter, fcmmerrors.KindOf(err))
	})

	t.Run("existing branch", func(t *testing.T) {
		t.Parallel()
		scene := remoteScene(t)
		eng := newEngine(t, scene)

		err := eng.AddBranch(ctx, "master", engine.Source{Tag: "V1.0"})
		require.ErrorIs(t, err, fcmmerrors.ErrBranchExists)
	})

	t.Run("push failure still restores the branch", func(t *testing.T) {
		t.Parallel()
		scene := remoteScene(t)
		require.NoError(t, scene.Repo.RunGitCommand("remote", "set-url", "origin", scene.Path("gone.git")))
		eng := newEngine(t, scene)

		err := eng.AddBranch(ctx, "lb-cfg-a", engine.Source{Bare: true})
		require.Error(t, err)
		require.Equal(t, fcmmerrors.KindExecution, fcmmerrors.KindOf(err))
		testhelpers.ExpectCurrentBranch(t, scene.Repo, "tb-fea-work")
	})
}

func TestOverwriteBranch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("replaces the checked out branch", func(t *testing.T) {
		t.Parallel()
		scene := remoteScene(t)
		require.NoError(t, scene.Repo.CreateChangeAndCommit("work", "work"))
		require.NoError(t, scene.Repo.PushBranch("origin", "tb-fea-work"))
		eng := newEngine(t, scene)

		require.NoError(t, eng.OverwriteBranch(ctx, "tb-fea-work", engine.Source{Tag: "V1.0"}))
		testhelpers.ExpectCurrentBranch(t, scene.Repo, "tb-fea-work")
		testhelpers.ExpectRemoteBranch(t, scene.Repo, "origin", "tb-fea-work", "V1.0")
	})

	t.Run("creates a missing branch", func(t *testing.T) {
		t.Parallel()
		scene := remoteScene(t)
		eng := newEngine(t, scene)

		require.NoError(t, eng.OverwriteBranch(ctx, "lb-pkg", engine.Source{Branch: "master"}))
		testhelpers.ExpectRemoteBranch(t, scene.Repo, "origin", "lb-pkg", "master")
	})

	t.Run("unresolved tag keeps the destination", func(t *testing.T) {
		t.Parallel()
		scene := remoteScene(t)
		eng := newEngine(t, scene)

		err := eng.OverwriteBranch(ctx, "tb-fea-work", engine.Source{Tag: "V9"})
		require.ErrorIs(t, err, fcmmerrors.ErrTagNotFound)
		testhelpers.ExpectBranches(t, scene.Repo, []string{"master", "tb-fea-work"})
	})

	t.Run("itself", func(t *testing.T) {
		t.Parallel()
		scene := remoteScene(t)
		eng := newEngine(t, scene)

		err := eng.OverwriteBranch(ctx, "master", engine.Source{Branch: "master"})
		require.ErrorIs(t, err, fcmmerrors.ErrSameBranch)
	})
}

func TestRollback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("to tag", func(t *testing.T) {
		t.Parallel()
		scene := remoteScene(t)
		eng := newEngine(t, scene)

		require.NoError(t, eng.RollbackToTag(ctx, "master", "V1.0"))
		testhelpers.ExpectCurrentBranch(t, scene.Repo, "tb-fea-work")
		testhelpers.ExpectRemoteBranch(t, scene.Repo, "origin", "master", "V1.0")
	})

	t.Run("to commit", func(t *testing.T) {
		t.Parallel()
		scene := remoteScene(t)
		eng := newEngine(t, scene)
		first, err := scene.Repo.GetRevision("master~1")
		require.NoError(t, err)

		require.NoError(t, eng.RollbackToCommit(ctx, "master", first[:12]))
		testhelpers.ExpectRemoteBranch(t, scene.Repo, "origin", "master", first)
	})

	t.Run("unknown tag aborts", func(t *testing.T) {
		t.Parallel()
		scene := remoteScene(t)
		eng := newEngine(t, scene)
		before, err := scene.Repo.GetRevision("master")
		require.NoError(t, err)

		err = eng.RollbackToTag(ctx, "master", "V9")
		require.ErrorIs(t, err, fcmmerrors.ErrTagNotFound)
		after, err := scene.Repo.GetRevision("master")
		require.NoError(t, err)
		require.Equal(t, before, after)
	})

	t.Run("unknown commit aborts", func(t *testing.T) {
		t.Parallel()
		scene := remoteScene(t)
		eng := newEngine(t, scene)

		err := eng.RollbackToCommit(ctx, "master", "0123456789abcdef0123456789abcdef01234567")
		require.ErrorIs(t, err, fcmmerrors.ErrCommitNotFound)
	})
}

func TestBackupBranch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	scene := remoteScene(t)
	eng := newEngine(t, scene)

	name, err := eng.BackupBranch(ctx, "master", "alice")
	require.NoError(t, err)
	require.Equal(t, "tb-bak-master-20240102030405-by-alice", name)
	testhelpers.ExpectRemoteBranch(t, scene.Repo, "origin", name, "master")
	testhelpers.ExpectCurrentBranch(t, scene.Repo, "tb-fea-work")
}

func TestSyncBranch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	scene := remoteScene(t)
	require.NoError(t, scene.Repo.CreateBranch("lb-pkg"))
	require.NoError(t, scene.Repo.PushBranch("origin", "lb-pkg"))

	clone, err := testhelpers.NewGitRepoFromURL(scene.Path("clone"), scene.Remote)
	require.NoError(t, err)
	require.NoError(t, clone.CreateAndCheckoutBranch("tb-dev-x"))
	h, err := git.Probe(clone.Dir, git.WithEnv(testhelpers.GitEnv()...))
	require.NoError(t, err)
	eng := engine.NewEngine(h, engine.Options{})

	isNew, err := eng.SyncBranch(ctx, "lb-pkg")
	require.NoError(t, err)
	require.True(t, isNew)
	testhelpers.ExpectCurrentBranch(t, clone, "tb-dev-x")

	isNew, err = eng.SyncBranch(ctx, "lb-pkg")
	require.NoError(t, err)
	require.False(t, isNew)
	testhelpers.ExpectCurrentBranch(t, clone, "tb-dev-x")
}

func TestOnBranch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	scene := remoteScene(t)
	eng := newEngine(t, scene)

	var seen string
	require.NoError(t, eng.OnBranch(ctx, "master", func() error {
		var err error
		seen, err = scene.Repo.CurrentBranchName()
		return err
	}))
	require.Equal(t, "master", seen)
	testhelpers.ExpectCurrentBranch(t, scene.Repo, "tb-fea-work")

	err := eng.OnBranch(ctx, "missing", func() error { return nil })
	require.ErrorIs(t, err, fcmmerrors.ErrBranchNotFound)
}
