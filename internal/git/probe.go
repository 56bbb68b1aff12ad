package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	fcmmerrors "fcmm.dev/fcmm/internal/errors"
)

// IsDirty reports uncommitted changes to tracked files. Untracked files are ignored.
func IsDirty(ctx context.Context, h *RepoHandle) (bool, error) {
	output, err := h.Git.Run(ctx, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return false, fmt.Errorf("failed to get status: %w", err)
	}
	return output != "", nil
}

// ActiveBranch returns the checked out branch name.
func ActiveBranch(h *RepoHandle) (string, error) {
	repo, err := h.requireRepo()
	if err != nil {
		return "", err
	}
	return repo.GetCurrentBranch()
}

// BranchExists reports whether a local branch exists.
func BranchExists(h *RepoHandle, name string) bool {
	repo, err := h.requireRepo()
	if err != nil {
		return false
	}
	return repo.HasBranch(name)
}

// TagExists reports whether a tag exists.
func TagExists(h *RepoHandle, name string) bool {
	repo, err := h.requireRepo()
	if err != nil {
		return false
	}
	return repo.HasTag(name)
}

// ResolveTag returns the commit hash a tag points at.
func ResolveTag(h *RepoHandle, name string) (string, error) {
	repo, err := h.requireRepo()
	if err != nil {
		return "", err
	}
	commit, err := repo.TagCommit(name)
	if err != nil {
		return "", err
	}
	return commit.Hash.String(), nil
}

// ResolveCommit expands a revision to a full commit hash.
func ResolveCommit(ctx context.Context, h *RepoHandle, rev string) (string, error) {
	output, err := h.Git.Run(ctx, "rev-parse", "--verify", "--quiet", rev+"^{commit}")
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", rev, err)
	}
	return output, nil
}

// IsBare reports whether the repository has bare storage or no committed history.
func IsBare(h *RepoHandle) bool {
	repo, err := h.requireRepo()
	if err != nil {
		return true
	}
	return repo.IsBareStorage() || !repo.HasHistory()
}

// RemoteBranchExists asks the remote whether it carries the branch.
func RemoteBranchExists(ctx context.Context, h *RepoHandle, remote, name string) (bool, error) {
	output, err := h.Git.Run(ctx, "ls-remote", "--heads", remote, name)
	if err != nil {
		return false, fmt.Errorf("failed to list remote %s: %w", remote, err)
	}
	for _, line := range strings.Split(output, "\n") {
		if strings.HasSuffix(strings.TrimSpace(line), "refs/heads/"+name) {
			return true, nil
		}
	}
	return false, nil
}

// RemoteName derives the repository name from a remote url, e.g.
// "https://host/group/proj.git/" gives "proj" and "git@host:proj.git" gives "proj".
func RemoteName(url string) string {
	name := strings.TrimRight(strings.TrimSpace(url), "/")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, ".git")
}

// UserName returns git config user.name as seen from the runner directory, or "" when unset.
func UserName(ctx context.Context, runner *CommandRunner) string {
	output, err := runner.Run(ctx, "config", "user.name")
	if err != nil {
		return ""
	}
	return output
}

// BaseRef names the commit a base check compares against. Tag wins over
// Commit, which wins over Branch.
type BaseRef struct {
	Branch string
	Tag    string
	Commit string
}

func (b BaseRef) String() string {
	switch {
	case b.Tag != "":
		return "tag " + b.Tag
	case b.Commit != "":
		return "commit " + b.Commit
	default:
		return "branch " + b.Branch
	}
}

// CheckBaseCommit reports whether the base commit is reachable from (or equal
// to) the tip of checkBranch. Refs that cannot be resolved give false.
func CheckBaseCommit(h *RepoHandle, checkBranch string, base BaseRef) (bool, error) {
	repo, err := h.requireRepo()
	if err != nil {
		return false, err
	}

	tip, err := repo.BranchCommit(checkBranch)
	if err != nil {
		return false, ignoreNotFound(err)
	}

	var target *object.Commit
	switch {
	case base.Tag != "":
		target, err = repo.TagCommit(base.Tag)
	case base.Commit != "":
		target, err = repo.RevisionCommit(base.Commit)
	case base.Branch != "":
		target, err = repo.BranchCommit(base.Branch)
	default:
		return false, nil
	}
	if err != nil {
		return false, ignoreNotFound(err)
	}

	if target.Hash == tip.Hash {
		return true, nil
	}
	ok, err := target.IsAncestor(tip)
	if err != nil {
		return false, fmt.Errorf("failed to walk history of %s: %w", checkBranch, err)
	}
	return ok, nil
}

// ignoreNotFound drops errors about refs that do not exist.
func ignoreNotFound(err error) error {
	if errors.Is(err, fcmmerrors.ErrBranchNotFound) || errors.Is(err, fcmmerrors.ErrTagNotFound) {
		return nil
	}
	if errors.Is(err, plumbing.ErrReferenceNotFound) || errors.Is(err, plumbing.ErrObjectNotFound) {
		return nil
	}
	return err
}
