// Package testhelpers provides testing utilities for fcmm, including a scene
// system, Git repository helpers, and custom assertions.
package testhelpers

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// ExpectBranches asserts that the repository has exactly the expected local branches.
func ExpectBranches(t *testing.T, repo *GitRepo, expected []string) {
	t.Helper()

	branches, err := repo.GetLocalBranches()
	require.NoError(t, err, "Failed to list branches")

	sort.Strings(branches)
	want := append([]string(nil), expected...)
	sort.Strings(want)

	require.Equal(t, want, branches, "Branches do not match")
}

// ExpectCurrentBranch asserts the checked out branch.
func ExpectCurrentBranch(t *testing.T, repo *GitRepo, expected string) {
	t.Helper()

	branch, err := repo.CurrentBranchName()
	require.NoError(t, err, "Failed to read current branch")
	require.Equal(t, expected, branch, "Current branch does not match")
}

// ExpectRemoteBranch asserts that remote carries branch at the same commit as the local ref.
func ExpectRemoteBranch(t *testing.T, repo *GitRepo, remote, branch, localRef string) {
	t.Helper()

	remoteSHA, err := repo.GetRemoteBranchSHA(remote, branch)
	require.NoError(t, err)
	require.NotEmpty(t, remoteSHA, "remote %s has no branch %s", remote, branch)

	localSHA, err := repo.GetRevision(localRef)
	require.NoError(t, err)
	require.Equal(t, localSHA, remoteSHA, "remote %s/%s is not at %s", remote, branch, localRef)
}

// ExpectBranchPrefix asserts exactly count local branches start with prefix and returns them.
func ExpectBranchPrefix(t *testing.T, repo *GitRepo, prefix string, count int) []string {
	t.Helper()

	branches, err := repo.GetLocalBranches()
	require.NoError(t, err)

	var matched []string
	for _, b := range branches {
		if strings.HasPrefix(b, prefix) {
			matched = append(matched, b)
		}
	}
	require.Len(t, matched, count, "branches with prefix %s: %v", prefix, branches)
	return matched
}

// ExpectCommits asserts the most recent commit subjects on branch.
func ExpectCommits(t *testing.T, repo *GitRepo, branch string, expected []string) {
	t.Helper()

	output, err := repo.RunGitCommandAndGetOutput("log", "--format=%s", branch)
	require.NoError(t, err, "Failed to list commits")

	commits := splitLines(output)
	if len(commits) < len(expected) {
		require.Fail(t, "Not enough commits", "Expected %d commits, got %d", len(expected), len(commits))
		return
	}
	require.Equal(t, expected, commits[:len(expected)], "Commits do not match")
}
