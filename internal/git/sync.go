package git

import (
	"context"
	"fmt"
)

// GetRemoteBranch brings a local branch up to date with remote. An existing
// local branch is checked out and pulled; a missing one is fetched and created
// tracking remote/name, with isNewLocal set. The previously active branch is
// not restored.
func GetRemoteBranch(ctx context.Context, h *RepoHandle, remote, name string) (isNewLocal bool, err error) {
	if BranchExists(h, name) {
		if err := CheckoutBranch(ctx, h, name); err != nil {
			return false, err
		}
		return false, Pull(ctx, h, remote, name)
	}

	if err := Fetch(ctx, h, remote, name); err != nil {
		return true, err
	}
	if err := CheckoutNewBranch(ctx, h, name, fmt.Sprintf("%s/%s", remote, name), false); err != nil {
		return true, err
	}
	return true, nil
}
