package git

import (
	"context"
	"fmt"
)

// CheckoutBranch checks out an existing branch
func CheckoutBranch(ctx context.Context, h *RepoHandle, branchName string) error {
	_, err := h.Git.Run(ctx, "checkout", branchName)
	if err != nil {
		return fmt.Errorf("failed to checkout branch %s: %w", branchName, err)
	}
	return nil
}

// CheckoutDetached checks out a revision in detached HEAD state
func CheckoutDetached(ctx context.Context, h *RepoHandle, rev string) error {
	_, err := h.Git.Run(ctx, "checkout", "--detach", rev)
	if err != nil {
		return fmt.Errorf("failed to checkout %s in detached state: %w", rev, err)
	}
	return nil
}

// CheckoutNewBranch creates branchName at startPoint (HEAD when empty) and checks it out.
// With reset an existing branch of that name is moved instead (checkout -B).
func CheckoutNewBranch(ctx context.Context, h *RepoHandle, branchName, startPoint string, reset bool) error {
	flag := "-b"
	if reset {
		flag = "-B"
	}
	args := []string{"checkout", flag, branchName}
	if startPoint != "" {
		args = append(args, startPoint)
	}
	if _, err := h.Git.Run(ctx, args...); err != nil {
		return fmt.Errorf("failed to create and checkout branch %s: %w", branchName, err)
	}
	return nil
}

// CheckoutOrphan starts a branch with no history
func CheckoutOrphan(ctx context.Context, h *RepoHandle, branchName string) error {
	_, err := h.Git.Run(ctx, "checkout", "--orphan", branchName)
	if err != nil {
		return fmt.Errorf("failed to create orphan branch %s: %w", branchName, err)
	}
	return nil
}

// CreateBranch creates a branch at startPoint without checking it out
func CreateBranch(ctx context.Context, h *RepoHandle, branchName, startPoint string) error {
	_, err := h.Git.Run(ctx, "branch", branchName, startPoint)
	if err != nil {
		return fmt.Errorf("failed to create branch %s at %s: %w", branchName, startPoint, err)
	}
	return nil
}

// DeleteBranch deletes a branch
func DeleteBranch(ctx context.Context, h *RepoHandle, branchName string) error {
	_, err := h.Git.Run(ctx, "branch", "-D", branchName)
	if err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", branchName, err)
	}
	return nil
}

// ClearWorkTree removes every tracked file from the index and the working tree
func ClearWorkTree(ctx context.Context, h *RepoHandle) error {
	_, err := h.Git.Run(ctx, "rm", "-r", "-f", "-q", "--ignore-unmatch", ".")
	if err != nil {
		return fmt.Errorf("failed to clear work tree: %w", err)
	}
	return nil
}

// HardReset performs a hard reset to a specific revision
func HardReset(ctx context.Context, h *RepoHandle, rev string) error {
	_, err := h.Git.Run(ctx, "reset", "--hard", rev)
	if err != nil {
		return fmt.Errorf("failed to hard reset to %s: %w", rev, err)
	}
	return nil
}

// SetHeadBranch points HEAD at branchName without touching the index or the
// working tree. Used to rename the unborn branch of a fresh repository.
func SetHeadBranch(ctx context.Context, h *RepoHandle, branchName string) error {
	_, err := h.Git.Run(ctx, "symbolic-ref", "HEAD", "refs/heads/"+branchName)
	if err != nil {
		return fmt.Errorf("failed to point HEAD at %s: %w", branchName, err)
	}
	return h.Refresh()
}
