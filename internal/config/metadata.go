package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"
)

// MetadataFileName is the metadata file at the repository root.
const MetadataFileName = ".fcmm4git"

// Metadata is the content of .fcmm4git.
type Metadata struct {
	RemoteURL string `json:"remote_url"`
	HasPkg    bool   `json:"has_pkg"`
}

// metadataFile is the on-disk form. has_pkg is written as "true"/"false";
// a JSON bool is accepted on read.
type metadataFile struct {
	RemoteURL string          `json:"remote_url"`
	HasPkg    json.RawMessage `json:"has_pkg"`
}

// MetadataPath returns the metadata path for a repository root.
func MetadataPath(repoRoot string) string {
	return filepath.Join(repoRoot, MetadataFileName)
}

// HasMetadata reports whether repoRoot carries a metadata file.
func HasMetadata(fs afero.Fs, repoRoot string) bool {
	ok, err := afero.Exists(fs, MetadataPath(repoRoot))
	return err == nil && ok
}

// ReadMetadata reads the metadata of repoRoot. Comments and trailing commas are tolerated.
func ReadMetadata(fs afero.Fs, repoRoot string) (*Metadata, error) {
	data, err := afero.ReadFile(fs, MetadataPath(repoRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no %s in %s: %w", MetadataFileName, repoRoot, err)
		}
		return nil, fmt.Errorf("failed to read %s: %w", MetadataFileName, err)
	}
	return ParseMetadata(data)
}

// ParseMetadata decodes the content of a metadata file.
func ParseMetadata(data []byte) (*Metadata, error) {
	var raw metadataFile
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", MetadataFileName, err)
	}

	hasPkg, err := parseFlag(raw.HasPkg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: has_pkg: %w", MetadataFileName, err)
	}

	return &Metadata{RemoteURL: raw.RemoteURL, HasPkg: hasPkg}, nil
}

// WriteMetadata writes meta to repoRoot, replacing any existing file.
func WriteMetadata(fs afero.Fs, repoRoot string, meta *Metadata) error {
	raw := struct {
		RemoteURL string `json:"remote_url"`
		HasPkg    string `json:"has_pkg"`
	}{
		RemoteURL: meta.RemoteURL,
		HasPkg:    strconv.FormatBool(meta.HasPkg),
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	data = append(data, '\n')

	if err := afero.WriteFile(fs, MetadataPath(repoRoot), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", MetadataFileName, err)
	}
	return nil
}

func parseFlag(raw json.RawMessage) (bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false, err
	}
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}
