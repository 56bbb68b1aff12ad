package git

import (
	"fmt"
	"path/filepath"
)

// RepoHandle is the repository a command works on.
// Repo is nil when WorkDir is not (yet) a git repository.
type RepoHandle struct {
	WorkDir   string
	ParentDir string
	Repo      *Repository
	Git       *CommandRunner
}

// Probe opens the repository rooted exactly at path. A path that is not a
// repository yields a handle with a nil Repo, not an error.
func Probe(path string, opts ...RunnerOption) (*RepoHandle, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	h := &RepoHandle{
		WorkDir:   absPath,
		ParentDir: filepath.Dir(absPath),
		Git:       NewCommandRunner(absPath, opts...),
	}
	if repo, err := OpenRepository(absPath); err == nil {
		h.Repo = repo
	}
	return h, nil
}

// Discover opens the repository containing path, walking up to the worktree
// root. WorkDir is set to that root.
func Discover(path string, opts ...RunnerOption) (*RepoHandle, error) {
	repo, err := DiscoverRepository(path)
	if err != nil {
		return Probe(path, opts...)
	}

	root := repo.GetRepoRoot()
	return &RepoHandle{
		WorkDir:   root,
		ParentDir: filepath.Dir(root),
		Repo:      repo,
		Git:       NewCommandRunner(root, opts...),
	}, nil
}

// IsRepo reports whether the handle points at a git repository.
func (h *RepoHandle) IsRepo() bool {
	return h.Repo != nil
}

// Name is the base name of the working directory.
func (h *RepoHandle) Name() string {
	return filepath.Base(h.WorkDir)
}

// Refresh reopens the repository, e.g. after git init or after .git was replaced.
func (h *RepoHandle) Refresh() error {
	repo, err := OpenRepository(h.WorkDir)
	if err != nil {
		h.Repo = nil
		return err
	}
	h.Repo = repo
	return nil
}

func (h *RepoHandle) requireRepo() (*Repository, error) {
	if h.Repo == nil {
		if err := h.Refresh(); err != nil {
			return nil, fmt.Errorf("%s is not a git repository: %w", h.WorkDir, err)
		}
	}
	return h.Repo, nil
}
