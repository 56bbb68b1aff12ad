package git_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"fcmm.dev/fcmm/internal/git"
	"fcmm.dev/fcmm/testhelpers"
)

func probe(t *testing.T, dir string) *git.RepoHandle {
	t.Helper()
	h, err := git.Probe(dir, git.WithEnv(testhelpers.GitEnv()...))
	require.NoError(t, err)
	return h
}

func TestProbe(t *testing.T) {
	t.Parallel()

	t.Run("plain directory has no repository", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		h := probe(t, dir)
		require.False(t, h.IsRepo())
		require.Equal(t, filepath.Dir(h.WorkDir), h.ParentDir)
		require.True(t, git.IsBare(h))
	})

	t.Run("subdirectory is not probed as the repository", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		sub := filepath.Join(scene.Dir, "sub")
		require.NoError(t, os.MkdirAll(sub, 0750))

		require.False(t, probe(t, sub).IsRepo())

		h, err := git.Discover(sub)
		require.NoError(t, err)
		require.True(t, h.IsRepo())
		require.Equal(t, scene.Dir, h.WorkDir)
	})

	t.Run("fresh repository is bare until its first commit", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewScene(t, nil)
		h := probe(t, scene.Dir)
		require.True(t, h.IsRepo())
		require.True(t, git.IsBare(h))

		branch, err := git.ActiveBranch(h)
		require.NoError(t, err)
		require.Equal(t, "master", branch)

		require.NoError(t, scene.Repo.CreateChangeAndCommit("1", "1"))
		require.False(t, git.IsBare(h))
	})
}

func TestActiveBranch(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	h := probe(t, scene.Dir)

	require.NoError(t, scene.Repo.CreateAndCheckoutBranch("tb-fea-x"))
	branch, err := git.ActiveBranch(h)
	require.NoError(t, err)
	require.Equal(t, "tb-fea-x", branch)

	require.NoError(t, scene.Repo.CheckoutDetached("master"))
	_, err = git.ActiveBranch(h)
	require.Error(t, err)
}

func TestIsDirty(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	h := probe(t, scene.Dir)
	ctx := context.Background()

	dirty, err := git.IsDirty(ctx, h)
	require.NoError(t, err)
	require.False(t, dirty)

	// untracked files do not count
	require.NoError(t, os.WriteFile(filepath.Join(scene.Dir, "new.txt"), []byte("x"), 0600))
	dirty, err = git.IsDirty(ctx, h)
	require.NoError(t, err)
	require.False(t, dirty)

	require.NoError(t, scene.Repo.CreateChange("changed", "1", true))
	dirty, err = git.IsDirty(ctx, h)
	require.NoError(t, err)
	require.True(t, dirty)
}

func TestHasStagedChanges(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	h := probe(t, scene.Dir)
	ctx := context.Background()

	staged, err := git.HasStagedChanges(ctx, h)
	require.NoError(t, err)
	require.False(t, staged)

	require.NoError(t, scene.Repo.CreateChange("unstaged", "1", true))
	staged, err = git.HasStagedChanges(ctx, h)
	require.NoError(t, err)
	require.False(t, staged)

	require.NoError(t, git.StageAll(ctx, h))
	staged, err = git.HasStagedChanges(ctx, h)
	require.NoError(t, err)
	require.True(t, staged)
}

func TestBranchAndTagQueries(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	h := probe(t, scene.Dir)

	require.NoError(t, scene.Repo.CreateTag("V1.0"))
	require.NoError(t, scene.Repo.CreateLightweightTag("light"))
	require.NoError(t, scene.Repo.CreateBranch("lb-pkg"))

	require.True(t, git.BranchExists(h, "master"))
	require.True(t, git.BranchExists(h, "lb-pkg"))
	require.False(t, git.BranchExists(h, "lb-cfg-a"))
	require.True(t, git.TagExists(h, "V1.0"))
	require.False(t, git.TagExists(h, "V2.0"))

	head, err := scene.Repo.GetCurrentSHA()
	require.NoError(t, err)

	sha, err := git.ResolveTag(h, "V1.0")
	require.NoError(t, err)
	require.Equal(t, head, sha)

	sha, err = git.ResolveTag(h, "light")
	require.NoError(t, err)
	require.Equal(t, head, sha)

	_, err = git.ResolveTag(h, "V2.0")
	require.Error(t, err)

	sha, err = git.ResolveCommit(context.Background(), h, head[:8])
	require.NoError(t, err)
	require.Equal(t, head, sha)
}

func TestRemoteName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"https://host/group/proj.git":     "proj",
		"https://host/group/proj.git/":    "proj",
		"https://host/group/proj":         "proj",
		"  https://host/group/proj.git  ": "proj",
		"git@host:proj.git":               "proj",
		"git@host:group/proj.git":         "proj",
		"/srv/git/proj.git":               "proj",
		"proj":                            "proj",
	}
	for url, want := range cases {
		require.Equal(t, want, git.RemoteName(url), url)
	}

	// deterministic
	require.Equal(t, git.RemoteName("https://h/a/b.git"), git.RemoteName("https://h/a/b.git"))
}

func TestCheckBaseCommit(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
	h := probe(t, scene.Dir)

	require.NoError(t, scene.Repo.CreateTag("V1.0"))
	base, err := scene.Repo.GetCurrentSHA()
	require.NoError(t, err)

	require.NoError(t, scene.Repo.CreateAndCheckoutBranch("tb-fea-a"))
	require.NoError(t, scene.Repo.CreateChangeAndCommit("a", "a"))

	require.NoError(t, scene.Repo.CheckoutBranch("master"))
	require.NoError(t, scene.Repo.CreateChangeAndCommit("2", "2"))
	require.NoError(t, scene.Repo.CreateTag("V2.0"))

	cases := []struct {
		name   string
		branch string
		base   git.BaseRef
		want   bool
	}{
		{"tag reachable", "tb-fea-a", git.BaseRef{Tag: "V1.0"}, true},
		{"later tag not reachable", "tb-fea-a", git.BaseRef{Tag: "V2.0"}, false},
		{"commit reachable", "tb-fea-a", git.BaseRef{Commit: base}, true},
		{"abbreviated commit", "tb-fea-a", git.BaseRef{Commit: base[:10]}, true},
		{"tag wins over branch", "tb-fea-a", git.BaseRef{Branch: "master", Tag: "V1.0"}, true},
		{"diverged branch", "tb-fea-a", git.BaseRef{Branch: "master"}, false},
		{"branch equals itself", "master", git.BaseRef{Branch: "master"}, true},
		{"missing tag", "tb-fea-a", git.BaseRef{Tag: "nope"}, false},
		{"missing branch", "tb-missing", git.BaseRef{Tag: "V1.0"}, false},
		{"missing commit", "tb-fea-a", git.BaseRef{Commit: "0123456789abcdef0123456789abcdef01234567"}, false},
		{"no base given", "tb-fea-a", git.BaseRef{}, false},
	}
	for _, tc := range cases {
		ok, err := git.CheckBaseCommit(h, tc.branch, tc.base)
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.want, ok, tc.name)
	}
}

func TestRemoteBranchExists(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, testhelpers.RemoteSceneSetup)
	h := probe(t, scene.Dir)
	ctx := context.Background()

	ok, err := git.RemoteBranchExists(ctx, h, "origin", "master")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = git.RemoteBranchExists(ctx, h, "origin", "lb-pkg")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUserName(t *testing.T) {
	t.Parallel()
	scene := testhelpers.NewScene(t, nil)
	h := probe(t, scene.Dir)
	require.Equal(t, "Test User", git.UserName(context.Background(), h.Git))
}
