package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadSettings(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		t.Setenv(ConfigEnv, "")
		path := filepath.Join(t.TempDir(), "missing.yaml")

		s, err := LoadSettings(path)
		require.NoError(t, err)
		require.Equal(t, "origin", s.Remote)
		require.True(t, s.BackupBefore)
		require.Equal(t, "fea", s.DefaultDevType)
		require.Equal(t, time.Duration(0), s.GitTimeout)
		require.NotEmpty(t, s.TempPath)
		require.NotEmpty(t, s.BackupPath)
	})

	t.Run("file values", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "fcmm.yaml")
		content := `temp_path: ` + filepath.Join(dir, "tmp") + `
backup_path: ` + filepath.Join(dir, "bak") + `
backup_before: false
remote: upstream
operator: alice
git_timeout: 30s
default_dev_type: bug
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		s, err := LoadSettings(path)
		require.NoError(t, err)
		require.Equal(t, filepath.Join(dir, "tmp"), s.TempPath)
		require.Equal(t, filepath.Join(dir, "bak"), s.BackupPath)
		require.False(t, s.BackupBefore)
		require.Equal(t, "upstream", s.Remote)
		require.Equal(t, "alice", s.Operator)
		require.Equal(t, 30*time.Second, s.GitTimeout)
		require.Equal(t, "bug", s.DefaultDevType)

		require.NoError(t, s.EnsureDirs())
		require.DirExists(t, s.TempPath)
		require.DirExists(t, s.BackupPath)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "fcmm.yaml")
		require.NoError(t, os.WriteFile(path, []byte("operator: alice\n"), 0600))
		t.Setenv("FCMM_OPERATOR", "bob")
		t.Setenv("FCMM_BACKUP_BEFORE", "false")

		s, err := LoadSettings(path)
		require.NoError(t, err)
		require.Equal(t, "bob", s.Operator)
		require.False(t, s.BackupBefore)
	})

	t.Run("config path from the environment", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte("remote: mirror\n"), 0600))
		t.Setenv(ConfigEnv, path)

		s, err := LoadSettings("")
		require.NoError(t, err)
		require.Equal(t, "mirror", s.Remote)
	})

	t.Run("relative paths are made absolute", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "fcmm.yaml")
		require.NoError(t, os.WriteFile(path, []byte("temp_path: tmp\nbackup_path: ./bak\nlog_file: fcmm.log\n"), 0600))

		s, err := LoadSettings(path)
		require.NoError(t, err)
		cwd, err := os.Getwd()
		require.NoError(t, err)
		require.Equal(t, filepath.Join(cwd, "tmp"), s.TempPath)
		require.Equal(t, filepath.Join(cwd, "bak"), s.BackupPath)
		require.Equal(t, filepath.Join(cwd, "fcmm.log"), s.LogFile)
	})

	t.Run("home relative paths", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		path := filepath.Join(t.TempDir(), "fcmm.yaml")
		require.NoError(t, os.WriteFile(path, []byte("backup_path: ~/fcmm-bak\n"), 0600))

		s, err := LoadSettings(path)
		require.NoError(t, err)
		require.Equal(t, filepath.Join(home, "fcmm-bak"), s.BackupPath)
		require.Empty(t, s.LogFile)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fcmm.yaml")
		require.NoError(t, os.WriteFile(path, []byte("remote: [unclosed\n"), 0600))

		_, err := LoadSettings(path)
		require.Error(t, err)
	})
}
