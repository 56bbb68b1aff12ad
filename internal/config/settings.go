package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ConfigEnv names an explicit settings file, overriding the search path.
const ConfigEnv = "FCMM_CONFIG"

// Settings holds the tool settings.
type Settings struct {
	TempPath       string        `mapstructure:"temp_path"`
	BackupPath     string        `mapstructure:"backup_path"`
	BackupBefore   bool          `mapstructure:"backup_before"`
	Remote         string        `mapstructure:"remote"`
	Operator       string        `mapstructure:"operator"`
	LogFile        string        `mapstructure:"log_file"`
	GitTimeout     time.Duration `mapstructure:"git_timeout"`
	Debug          bool          `mapstructure:"debug"`
	DefaultDevType string        `mapstructure:"default_dev_type"`
	CommitMessage  string        `mapstructure:"commit_message"`
}

// DefaultSettings returns the settings used when no file or environment overrides them.
func DefaultSettings() *Settings {
	home := userDataDir()
	return &Settings{
		TempPath:       filepath.Join(home, "temp"),
		BackupPath:     filepath.Join(home, "backup"),
		BackupBefore:   true,
		Remote:         "origin",
		DefaultDevType: "fea",
		CommitMessage:  "init by fcmm",
	}
}

// LoadSettings reads settings from path, or when path is empty from $FCMM_CONFIG
// or fcmm.yaml in ".", "$HOME/.fcmm". FCMM_* environment variables override the file.
// A missing file is not an error.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()

	defaults := DefaultSettings()
	v.SetDefault("temp_path", defaults.TempPath)
	v.SetDefault("backup_path", defaults.BackupPath)
	v.SetDefault("backup_before", defaults.BackupBefore)
	v.SetDefault("remote", defaults.Remote)
	v.SetDefault("operator", "")
	v.SetDefault("log_file", "")
	v.SetDefault("git_timeout", time.Duration(0))
	v.SetDefault("debug", false)
	v.SetDefault("default_dev_type", defaults.DefaultDevType)
	v.SetDefault("commit_message", defaults.CommitMessage)

	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join("$HOME", ".fcmm"))
		v.SetConfigName("fcmm")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("FCMM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	settings := &Settings{}
	err := v.Unmarshal(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	for _, p := range []*string{&settings.TempPath, &settings.BackupPath, &settings.LogFile} {
		if *p, err = absPath(expandHome(*p)); err != nil {
			return nil, fmt.Errorf("failed to resolve settings path: %w", err)
		}
	}
	return settings, nil
}

// EnsureDirs creates the temp and backup directories.
func (s *Settings) EnsureDirs() error {
	for _, dir := range []string{s.TempPath, s.BackupPath} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	// an explicit file that does not exist
	return errors.Is(err, fs.ErrNotExist)
}

func userDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "fcmm")
	}
	return filepath.Join(home, ".fcmm")
}

// absPath resolves path against the working directory. Empty stays empty.
func absPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	return filepath.Abs(path)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
