package git

import (
	"context"
	"fmt"
)

// StageAll stages every change in the working tree, including deletions
func StageAll(ctx context.Context, h *RepoHandle) error {
	_, err := h.Git.Run(ctx, "add", "-A")
	if err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}

// StagePaths stages the given paths
func StagePaths(ctx context.Context, h *RepoHandle, paths ...string) error {
	args := append([]string{"add", "--"}, paths...)
	if _, err := h.Git.Run(ctx, args...); err != nil {
		return fmt.Errorf("failed to stage %v: %w", paths, err)
	}
	return nil
}

// HasStagedChanges reports whether the index differs from HEAD
func HasStagedChanges(ctx context.Context, h *RepoHandle) (bool, error) {
	output, err := h.Git.Run(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return false, fmt.Errorf("failed to diff index: %w", err)
	}
	return output != "", nil
}

// Commit records the index with message. allowEmpty permits a commit with no changes.
func Commit(ctx context.Context, h *RepoHandle, message string, allowEmpty bool) error {
	args := []string{"commit", "-q", "-m", message}
	if allowEmpty {
		args = append(args, "--allow-empty")
	}
	if _, err := h.Git.Run(ctx, args...); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// DeleteTag deletes a local tag
func DeleteTag(ctx context.Context, h *RepoHandle, tag string) error {
	_, err := h.Git.Run(ctx, "tag", "-d", tag)
	if err != nil {
		return fmt.Errorf("failed to delete tag %s: %w", tag, err)
	}
	return nil
}

// CreateAnnotatedTag tags HEAD with an annotated tag
func CreateAnnotatedTag(ctx context.Context, h *RepoHandle, tag, message string) error {
	_, err := h.Git.Run(ctx, "tag", "-a", tag, "-m", message)
	if err != nil {
		return fmt.Errorf("failed to create tag %s: %w", tag, err)
	}
	return nil
}

// ShowFile returns the content of path as committed at rev.
func ShowFile(ctx context.Context, h *RepoHandle, rev, path string) ([]byte, error) {
	output, err := h.Git.RunRaw(ctx, "show", rev+":"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s at %s: %w", path, rev, err)
	}
	return []byte(output), nil
}
