package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	fcmmerrors "fcmm.dev/fcmm/internal/errors"
)

// Repository wraps a go-git repository
type Repository struct {
	*git.Repository
	path string
}

// OpenRepository opens the git repository rooted exactly at path.
func OpenRepository(path string) (*Repository, error) {
	return openRepository(path, false)
}

// DiscoverRepository opens the git repository containing path, searching parents.
func DiscoverRepository(path string) (*Repository, error) {
	return openRepository(path, true)
}

func openRepository(path string, detect bool) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := git.PlainOpenWithOptions(absPath, &git.PlainOpenOptions{
		DetectDotGit: detect,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	root := absPath
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}

	return &Repository{
		Repository: repo,
		path:       root,
	}, nil
}

// GetRepoRoot returns the root directory of the repository
func (r *Repository) GetRepoRoot() string {
	return r.path
}

// GetBranchNames returns all local branch names
func (r *Repository) GetBranchNames() ([]string, error) {
	branches, err := r.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to get branches: %w", err)
	}

	var names []string
	err = branches.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name().IsBranch() {
			names = append(names, ref.Name().Short())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate branches: %w", err)
	}

	return names, nil
}

// GetCurrentBranch returns the branch HEAD points at. It also answers for an
// unborn branch, e.g. right after git init.
func (r *Repository) GetCurrentBranch() (string, error) {
	head, err := r.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return "", fcmmerrors.ErrNotOnBranch
	}

	return head.Target().Short(), nil
}

// HasBranch reports whether refs/heads/<name> exists
func (r *Repository) HasBranch(name string) bool {
	_, err := r.Reference(plumbing.NewBranchReferenceName(name), false)
	return err == nil
}

// HasTag reports whether refs/tags/<name> exists
func (r *Repository) HasTag(name string) bool {
	_, err := r.Tag(name)
	return err == nil
}

// TagCommit returns the commit a tag points at, peeling annotated tags.
func (r *Repository) TagCommit(name string) (*object.Commit, error) {
	ref, err := r.Tag(name)
	if err != nil {
		if errors.Is(err, git.ErrTagNotFound) {
			return nil, fcmmerrors.NewTagNotFoundError(name)
		}
		return nil, fmt.Errorf("failed to read tag %s: %w", name, err)
	}

	tagObj, err := r.TagObject(ref.Hash())
	switch {
	case err == nil:
		commit, err := tagObj.Commit()
		if err != nil {
			return nil, fmt.Errorf("tag %s does not point at a commit: %w", name, err)
		}
		return commit, nil
	case errors.Is(err, plumbing.ErrObjectNotFound):
		// lightweight tag
		return r.CommitObject(ref.Hash())
	default:
		return nil, fmt.Errorf("failed to read tag object %s: %w", name, err)
	}
}

// BranchCommit returns the tip commit of a local branch.
func (r *Repository) BranchCommit(name string) (*object.Commit, error) {
	ref, err := r.Reference(plumbing.NewBranchReferenceName(name), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, fcmmerrors.NewBranchNotFoundError(name)
		}
		return nil, fmt.Errorf("failed to read branch %s: %w", name, err)
	}
	return r.CommitObject(ref.Hash())
}

// RevisionCommit resolves a revision (full or abbreviated hash, branch, tag) to a commit.
func (r *Repository) RevisionCommit(rev string) (*object.Commit, error) {
	rev = strings.TrimSpace(rev)
	hash, err := r.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revision %s: %w", rev, err)
	}
	return r.CommitObject(*hash)
}

// HasHistory reports whether HEAD resolves to a commit.
func (r *Repository) HasHistory() bool {
	_, err := r.Head()
	return err == nil
}

// IsBareStorage reports whether the repository has no working tree.
func (r *Repository) IsBareStorage() bool {
	cfg, err := r.Config()
	if err != nil {
		return false
	}
	return cfg.Core.IsBare
}
