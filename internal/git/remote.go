package git

import (
	"context"
	"fmt"
	"path/filepath"
)

// PushBranch pushes a branch to remote, overwriting the remote branch when force is set
func PushBranch(ctx context.Context, h *RepoHandle, remote, branchName string, force bool) error {
	args := []string{"push", "-q", "-u"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, remote, branchName)

	if _, err := h.Git.Run(ctx, args...); err != nil {
		return fmt.Errorf("failed to push branch %s: %w", branchName, err)
	}
	return nil
}

// PushTag pushes a tag, replacing a same-named tag on the remote when force is set
func PushTag(ctx context.Context, h *RepoHandle, remote, tag string, force bool) error {
	args := []string{"push", "-q"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, remote, "refs/tags/"+tag)

	if _, err := h.Git.Run(ctx, args...); err != nil {
		return fmt.Errorf("failed to push tag %s: %w", tag, err)
	}
	return nil
}

// Fetch fetches refs from remote. With no refs it fetches the configured refspecs.
func Fetch(ctx context.Context, h *RepoHandle, remote string, refs ...string) error {
	args := append([]string{"fetch", "-q", remote}, refs...)
	if _, err := h.Git.Run(ctx, args...); err != nil {
		return fmt.Errorf("failed to fetch from %s: %w", remote, err)
	}
	return nil
}

// Pull merges remote/branchName into the checked out branch
func Pull(ctx context.Context, h *RepoHandle, remote, branchName string) error {
	_, err := h.Git.Run(ctx, "pull", "-q", "--no-rebase", remote, branchName)
	if err != nil {
		return fmt.Errorf("failed to pull %s from %s: %w", branchName, remote, err)
	}
	return nil
}

// RemoteURL returns the configured url of remote, or "" when it is not configured
func RemoteURL(ctx context.Context, h *RepoHandle, remote string) string {
	output, err := h.Git.Run(ctx, "remote", "get-url", remote)
	if err != nil {
		return ""
	}
	return output
}

// SetRemote points remote at url, adding it when missing
func SetRemote(ctx context.Context, h *RepoHandle, remote, url string) error {
	verb := "set-url"
	if RemoteURL(ctx, h, remote) == "" {
		verb = "add"
	}
	if _, err := h.Git.Run(ctx, "remote", verb, remote, url); err != nil {
		return fmt.Errorf("failed to %s remote %s: %w", verb, remote, err)
	}
	return nil
}

// Init creates a repository in the handle's directory with master as the initial branch
func Init(ctx context.Context, h *RepoHandle) error {
	_, err := h.Git.Run(ctx, "-c", "init.defaultBranch=master", "init", "-q")
	if err != nil {
		return fmt.Errorf("failed to init repository in %s: %w", h.WorkDir, err)
	}
	return h.Refresh()
}

// Clone clones url into dest and returns a handle on the clone. The runner's
// options are kept.
func Clone(ctx context.Context, runner *CommandRunner, url, dest string) (*RepoHandle, error) {
	parent := runner.InDir(filepath.Dir(dest))
	if _, err := parent.Run(ctx, "clone", "-q", url, dest); err != nil {
		return nil, fmt.Errorf("failed to clone %s: %w", url, err)
	}

	h := &RepoHandle{
		WorkDir:   dest,
		ParentDir: filepath.Dir(dest),
		Git:       runner.InDir(dest),
	}
	if err := h.Refresh(); err != nil {
		return nil, err
	}
	return h, nil
}
