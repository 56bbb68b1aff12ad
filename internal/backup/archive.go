package backup

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/go-units"
	"github.com/spf13/afero"
)

// Archive describes a written archive.
type Archive struct {
	Path  string
	Files int
	Size  int64
}

func (a Archive) String() string {
	return fmt.Sprintf("%s (%d files, %s)", a.Path, a.Files, units.HumanSize(float64(a.Size)))
}

// ArchiveDir writes the tree under srcDir to destPath as a gzip-compressed tar.
// Entries are stored under the base name of srcDir. The archive is written to a
// temporary file next to destPath and renamed into place when complete.
func ArchiveDir(fs afero.Fs, srcDir, destPath string) (Archive, error) {
	if err := fs.MkdirAll(filepath.Dir(destPath), 0750); err != nil {
		return Archive{}, fmt.Errorf("ensuring backup directory for %q: %w", destPath, err)
	}

	fi, err := afero.TempFile(fs, filepath.Dir(destPath), ".fcmm-archive")
	if err != nil {
		return Archive{}, fmt.Errorf("create archive for %q: %w", srcDir, err)
	}
	tmpName := fi.Name()
	defer func() {
		_ = fi.Close()
		_ = fs.Remove(tmpName)
	}()

	files, err := writeTar(fs, srcDir, fi)
	if err != nil {
		return Archive{}, err
	}
	if err := fi.Close(); err != nil {
		return Archive{}, fmt.Errorf("close archive %q: %w", destPath, err)
	}
	if err := fs.Rename(tmpName, destPath); err != nil {
		return Archive{}, fmt.Errorf("move archive into %q: %w", destPath, err)
	}

	info, err := fs.Stat(destPath)
	if err != nil {
		return Archive{}, fmt.Errorf("stat archive %q: %w", destPath, err)
	}
	return Archive{Path: destPath, Files: files, Size: info.Size()}, nil
}

func writeTar(fs afero.Fs, srcDir string, w io.Writer) (int, error) {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	root := filepath.Base(srcDir)
	files := 0
	err := afero.Walk(fs, srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(filepath.Join(root, rel))

		link := ""
		if info.Mode()&os.ModeSymlink != 0 {
			reader, ok := fs.(afero.LinkReader)
			if !ok {
				return nil
			}
			if link, err = reader.ReadlinkIfPossible(path); err != nil {
				return fmt.Errorf("read link %q: %w", path, err)
			}
		}

		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return fmt.Errorf("header for %q: %w", path, err)
		}
		hdr.Name = name
		if info.IsDir() && !strings.HasSuffix(hdr.Name, "/") {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("write header for %q: %w", path, err)
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		f, err := fs.Open(path)
		if err != nil {
			return fmt.Errorf("open %q: %w", path, err)
		}
		defer f.Close()
		if _, err := io.Copy(tw, f); err != nil {
			return fmt.Errorf("archive %q: %w", path, err)
		}
		files++
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err := tw.Close(); err != nil {
		return 0, fmt.Errorf("finish tar: %w", err)
	}
	if err := gz.Close(); err != nil {
		return 0, fmt.Errorf("finish gzip: %w", err)
	}
	return files, nil
}

// ListArchive returns the entry names of an archive written by ArchiveDir.
func ListArchive(fs afero.Fs, path string) ([]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %q: %w", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("read archive %q: %w", path, err)
	}
	defer gz.Close()

	var names []string
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return names, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read archive %q: %w", path, err)
		}
		names = append(names, hdr.Name)
	}
}
