package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBranchNames(t *testing.T) {
	t.Parallel()

	require.Equal(t, "lb-cfg-prod", CfgBranchName("prod"))
	require.Equal(t, "tb-fea-login", DevBranchName("fea", "login"))
	require.Equal(t, "tb-dev-spike", TempBranchName("spike"))
	require.Equal(t, "tb-bak-lb-pkg-20240101120000", BackupBranchName("lb-pkg", "20240101120000", ""))
	require.Equal(t, "tb-bak-master-20240101120000-by-alice", BackupBranchName("master", "20240101120000", "alice"))

	require.Equal(t, "lb-pkg", BaselineBranch(true))
	require.Equal(t, "master", BaselineBranch(false))

	require.True(t, IsProtected("master"))
	require.True(t, IsProtected("lb-pkg"))
	require.False(t, IsProtected("lb-cfg-a"))

	require.True(t, IsCfgBranch("lb-cfg-a"))
	require.False(t, IsCfgBranch("lb-cfg-"))
	require.True(t, IsTopicBranch("tb-fea-a"))
	require.False(t, IsTopicBranch("master"))
}

func TestValidateName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"login", "v1.2", "team/login", "a_b-c", "x"} {
		require.NoError(t, ValidateName(name), name)
	}

	for _, name := range []string{
		"",
		"has space",
		"semi;colon",
		"-flag",
		".hidden",
		"/root",
		"trailing/",
		"trailing.",
		"a..b",
		"a//b",
		"a/.b",
		"index.lock",
		"ümlaut",
		strings.Repeat("a", MaxNameLength+1),
	} {
		require.Error(t, ValidateName(name), name)
	}
}
