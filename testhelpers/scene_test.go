package testhelpers_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"fcmm.dev/fcmm/testhelpers"
)

func TestSceneStartsOnMaster(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)

	testhelpers.ExpectCurrentBranch(t, scene.Repo, "master")
	testhelpers.ExpectBranches(t, scene.Repo, []string{"master"})
	testhelpers.ExpectCommits(t, scene.Repo, "master", []string{"1"})
}

func TestRemoteScene(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)

	require.NotEmpty(t, scene.Remote)
	testhelpers.ExpectRemoteBranch(t, scene.Repo, "origin", "master", "master")

	clone, err := testhelpers.NewGitRepoFromURL(scene.Path("clone"), scene.Remote)
	require.NoError(t, err)
	testhelpers.ExpectCurrentBranch(t, clone, "master")
}

func TestBareRemoteStartsEmpty(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, nil)

	remote, err := testhelpers.NewBareRepo(scene.Path("empty.git"))
	require.NoError(t, err)

	branches, err := scene.Repo.ListRemoteBranches(remote)
	require.NoError(t, err)
	require.Empty(t, branches)
}
