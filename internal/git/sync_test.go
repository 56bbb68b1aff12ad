package git_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"fcmm.dev/fcmm/internal/git"
	"fcmm.dev/fcmm/testhelpers"
)

func TestGetRemoteBranch(t *testing.T) {
	t.Parallel()

	t.Run("creates a local branch tracking the remote", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("lb-pkg"))
		require.NoError(t, scene.Repo.PushBranch("origin", "lb-pkg"))

		clone, err := testhelpers.NewGitRepoFromURL(scene.Path("clone"), scene.Remote)
		require.NoError(t, err)
		h := probe(t, clone.Dir)

		isNew, err := git.GetRemoteBranch(context.Background(), h, "origin", "lb-pkg")
		require.NoError(t, err)
		require.True(t, isNew)
		testhelpers.ExpectCurrentBranch(t, clone, "lb-pkg")
	})

	t.Run("pulls an existing local branch", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
		clone, err := testhelpers.NewGitRepoFromURL(scene.Path("clone"), scene.Remote)
		require.NoError(t, err)

		require.NoError(t, scene.Repo.CreateChangeAndCommit("2", "2"))
		require.NoError(t, scene.Repo.PushBranch("origin", "master"))

		h := probe(t, clone.Dir)
		isNew, err := git.GetRemoteBranch(context.Background(), h, "origin", "master")
		require.NoError(t, err)
		require.False(t, isNew)

		want, err := scene.Repo.GetRevision("master")
		require.NoError(t, err)
		got, err := clone.GetRevision("master")
		require.NoError(t, err)
		require.Equal(t, want, got)
	})

	t.Run("missing remote branch is reported as new", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
		h := probe(t, scene.Dir)

		isNew, err := git.GetRemoteBranch(context.Background(), h, "origin", "lb-pkg")
		require.Error(t, err)
		require.True(t, isNew)
		testhelpers.ExpectCurrentBranch(t, scene.Repo, "master")
	})
}

func TestBranchMutations(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
	h := probe(t, scene.Dir)
	ctx := context.Background()

	require.NoError(t, git.CreateBranch(ctx, h, "lb-cfg-a", "master"))
	require.NoError(t, git.PushBranch(ctx, h, "origin", "lb-cfg-a", false))
	testhelpers.ExpectRemoteBranch(t, scene.Repo, "origin", "lb-cfg-a", "master")

	require.NoError(t, git.CheckoutOrphan(ctx, h, "lb-cfg-bare"))
	require.NoError(t, git.ClearWorkTree(ctx, h))
	require.NoError(t, git.Commit(ctx, h, "empty", true))
	ok, err := git.CheckBaseCommit(h, "lb-cfg-bare", git.BaseRef{Branch: "master"})
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, git.CheckoutBranch(ctx, h, "master"))
	require.NoError(t, git.DeleteBranch(ctx, h, "lb-cfg-bare"))
	require.False(t, git.BranchExists(h, "lb-cfg-bare"))

	require.NoError(t, git.CreateAnnotatedTag(ctx, h, "V1.0", "release"))
	require.NoError(t, git.PushTag(ctx, h, "origin", "V1.0", true))
	require.NoError(t, git.DeleteTag(ctx, h, "V1.0"))
	require.False(t, git.TagExists(h, "V1.0"))
}

func TestInitAndClone(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
	ctx := context.Background()

	h := probe(t, scene.Path("fresh"))
	require.NoError(t, os.MkdirAll(h.WorkDir, 0750))
	require.NoError(t, git.Init(ctx, h))
	require.True(t, h.IsRepo())
	branch, err := git.ActiveBranch(h)
	require.NoError(t, err)
	require.Equal(t, "master", branch)

	require.NoError(t, git.SetHeadBranch(ctx, h, "trunk"))
	branch, err = git.ActiveBranch(h)
	require.NoError(t, err)
	require.Equal(t, "trunk", branch)
	require.NoError(t, git.SetHeadBranch(ctx, h, "master"))

	require.NoError(t, git.SetRemote(ctx, h, "origin", scene.Remote))
	require.Equal(t, scene.Remote, git.RemoteURL(ctx, h, "origin"))
	require.NoError(t, git.SetRemote(ctx, h, "origin", scene.Remote))

	clone, err := git.Clone(ctx, h.Git, scene.Remote, scene.Path("clone"))
	require.NoError(t, err)
	require.True(t, git.BranchExists(clone, "master"))
	require.False(t, git.IsBare(clone))
}
