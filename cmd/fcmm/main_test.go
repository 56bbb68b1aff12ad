package main

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"fcmm.dev/fcmm/testhelpers"
)

func TestMain(m *testing.M) {
	testhelpers.TestMain(m)
}

func runBinary(t *testing.T, dir string, args ...string) (string, int) {
	t.Helper()
	home := t.TempDir()
	cmd := exec.Command(testhelpers.GetSharedBinaryPath(t), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"HOME="+home,
		"FCMM_CONFIG="+filepath.Join(home, "missing.yaml"),
		"FCMM_TEMP_PATH="+filepath.Join(home, "temp"),
		"FCMM_BACKUP_PATH="+filepath.Join(home, "backup"),
	)
	cmd.Env = append(cmd.Env, testhelpers.GitEnv()...)
	out, err := cmd.CombinedOutput()
	var exit *exec.ExitError
	if errors.As(err, &exit) {
		return string(out), exit.ExitCode()
	}
	require.NoError(t, err)
	return string(out), 0
}

func TestBinary(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	out, code := runBinary(t, dir, "help")
	require.Equal(t, 0, code, out)
	require.Contains(t, out, "add-pkg")

	out, code = runBinary(t, dir, "push")
	require.Equal(t, 1, code, out)
	require.Contains(t, out, "unknown command")

	out, code = runBinary(t, dir, "add-temp", "-n", "x")
	require.Equal(t, 2, code, out)

	out, code = runBinary(t, dir, "rollback", "-b", "lb-pkg", "-c", "abc")
	require.Equal(t, 2, code, out)
	require.Contains(t, out, "-force")

	_, err := os.Stat(filepath.Join(dir, ".git"))
	require.True(t, os.IsNotExist(err))
}
