package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	sharedBinaryPath string
	sharedBinaryDir  string
	binaryOnce       sync.Once
	binaryErr        error
)

// GetSharedBinaryPath returns the fcmm binary, building it on first access.
// It fails the test when the build fails.
func GetSharedBinaryPath(t *testing.T) string {
	t.Helper()
	binaryOnce.Do(func() {
		sharedBinaryPath, sharedBinaryDir, binaryErr = buildBinary()
	})
	if binaryErr != nil {
		t.Fatalf("Failed to build fcmm binary: %v", binaryErr)
	}
	return sharedBinaryPath
}

// TestMain runs the package tests and removes the shared binary afterwards.
func TestMain(m *testing.M) {
	code := m.Run()
	if sharedBinaryDir != "" {
		_ = os.RemoveAll(sharedBinaryDir)
	}
	os.Exit(code)
}

// buildBinary builds the fcmm binary and returns its path and temp directory.
func buildBinary() (string, string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", "", fmt.Errorf("failed to get working directory: %w", err)
	}

	moduleRoot := findModuleRoot(wd)
	if moduleRoot == "" {
		return "", "", fmt.Errorf("could not find module root (go.mod) starting from %s", wd)
	}

	tmpDir, err := os.MkdirTemp("", "fcmm-test-binary-*")
	if err != nil {
		return "", "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	binaryPath := filepath.Join(tmpDir, "fcmm")

	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/fcmm")
	cmd.Dir = moduleRoot
	output, err := cmd.CombinedOutput()
	if err != nil {
		_ = os.RemoveAll(tmpDir) // Ignore cleanup errors
		return "", "", fmt.Errorf("failed to build: %s: %w", string(output), err)
	}

	return binaryPath, tmpDir, nil
}

// findModuleRoot walks up the directory tree from startDir to find the module root
// (directory containing go.mod file).
func findModuleRoot(startDir string) string {
	dir := startDir
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
