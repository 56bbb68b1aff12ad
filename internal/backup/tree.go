package backup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// IsEmptyDir reports whether dir is missing or has no entries.
func IsEmptyDir(fs afero.Fs, dir string) (bool, error) {
	exists, err := afero.DirExists(fs, dir)
	if err != nil || !exists {
		return true, err
	}
	return afero.IsEmpty(fs, dir)
}

// ClearDir removes every entry of dir except the names in keep. dir itself stays.
func ClearDir(fs afero.Fs, dir string, keep ...string) error {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return fmt.Errorf("read %q: %w", dir, err)
	}

	kept := make(map[string]bool, len(keep))
	for _, k := range keep {
		kept[k] = true
	}

	var errs error
	for _, entry := range entries {
		if kept[entry.Name()] {
			continue
		}
		errs = multierr.Append(errs, fs.RemoveAll(filepath.Join(dir, entry.Name())))
	}
	if errs != nil {
		return fmt.Errorf("clear %q: %w", dir, errs)
	}
	return nil
}

// CopyTree copies the tree under src into dst, creating dst when needed.
// Top-level entries of src named in skip are left out. Existing files are overwritten.
func CopyTree(fs afero.Fs, src, dst string, skip ...string) error {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[filepath.Join(src, s)] = true
	}

	return afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if skipped[path] {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case info.IsDir():
			return fs.MkdirAll(target, info.Mode().Perm()|0700)
		case info.Mode()&os.ModeSymlink != 0:
			return copyLink(fs, path, target)
		case info.Mode().IsRegular():
			return copyFile(fs, path, target, info.Mode().Perm())
		default:
			return nil
		}
	})
}

// MoveTree moves src to dst, replacing dst. Across filesystems the tree is
// copied and src removed.
func MoveTree(fs afero.Fs, src, dst string) error {
	if err := fs.RemoveAll(dst); err != nil {
		return fmt.Errorf("remove %q: %w", dst, err)
	}
	if err := fs.Rename(src, dst); err == nil {
		return nil
	}
	if err := CopyTree(fs, src, dst); err != nil {
		return fmt.Errorf("copy %q to %q: %w", src, dst, err)
	}
	return fs.RemoveAll(src)
}

func copyFile(fs afero.Fs, src, dst string, perm os.FileMode) (err error) {
	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("open %q: %w", src, err)
	}
	defer in.Close()

	// a read-only file (git objects) cannot be truncated in place
	if err := fs.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("replace %q: %w", dst, err)
	}

	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create %q: %w", dst, err)
	}
	defer func() { err = multierr.Append(err, out.Close()) }()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %q: %w", src, err)
	}
	return nil
}

func copyLink(fs afero.Fs, src, dst string) error {
	reader, ok := fs.(afero.LinkReader)
	if !ok {
		return nil
	}
	linker, ok := fs.(afero.Linker)
	if !ok {
		return nil
	}
	target, err := reader.ReadlinkIfPossible(src)
	if err != nil {
		return fmt.Errorf("read link %q: %w", src, err)
	}
	_ = fs.Remove(dst)
	return linker.SymlinkIfPossible(target, dst)
}
