package testhelpers

import (
	"os"
	"path/filepath"
	"testing"
)

// Scene represents a test scene with a temporary directory and Git repository.
// Scenes never change the process working directory, so they are safe in
// parallel tests.
type Scene struct {
	Dir    string
	Repo   *GitRepo
	Remote string // bare repository registered as origin, if any
	root   string
}

// SceneSetup is a function type for setting up a scene.
type SceneSetup func(*Scene) error

// NewScene creates a new test scene in a temporary directory. The repository
// lives in <tmp>/repo so sibling directories (remotes, backups) stay inside
// the scene. Cleanup is registered with t.Cleanup().
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()

	root, err := os.MkdirTemp("", "fcmm-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	// macOS hands out /var paths that resolve through a symlink
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	t.Cleanup(func() {
		if os.Getenv("DEBUG") == "" {
			_ = os.RemoveAll(root)
		}
	})

	dir := filepath.Join(root, "repo")
	repo, err := NewGitRepo(dir)
	if err != nil {
		t.Fatalf("Failed to create Git repo: %v", err)
	}

	scene := &Scene{
		Dir:  dir,
		Repo: repo,
		root: root,
	}

	if setup != nil {
		if err := setup(scene); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}

	return scene
}

// Path returns a path inside the scene's temporary root, next to the repository.
func (s *Scene) Path(elem ...string) string {
	return filepath.Join(append([]string{s.root}, elem...)...)
}

// BasicSceneSetup is a setup function that creates a basic scene with a single commit.
func BasicSceneSetup(scene *Scene) error {
	return scene.Repo.CreateChangeAndCommit("1", "1")
}

// RemoteSceneSetup commits once, registers a bare origin and pushes master to it.
func RemoteSceneSetup(scene *Scene) error {
	if err := BasicSceneSetup(scene); err != nil {
		return err
	}
	remote, err := scene.Repo.CreateBareRemote("origin")
	if err != nil {
		return err
	}
	scene.Remote = remote
	return scene.Repo.PushBranch("origin", "master")
}
