// Package meta implements the persisted installation metadata: the small
// record inside every target directory describing which vendor, version and
// package checksum is currently installed there.
package meta

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/javup/pkg/errors"
	"github.com/glorpus-work/javup/pkg/fsutil"
	version "github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"
)

const (
	// Dir is the name of the metadata directory within a target directory.
	// It also hosts the download cache and the extraction staging area.
	Dir = ".javup"

	// FileName is the name of the metadata file within the metadata directory.
	FileName = "meta.yaml"

	// checksumLen is the length of a hex encoded SHA-256 checksum.
	checksumLen = 64
)

// Metadata describes the currently installed package of a target directory.
type Metadata struct {
	// Vendor is the id of the vendor the package came from.
	Vendor string
	// Version is the version of the installed package.
	Version *version.Version
	// Checksum is the lowercase hex SHA-256 checksum of the downloaded package.
	Checksum string
	// Props holds additional free-form properties.
	Props map[string]string
}

// metadataFile is the on-disk representation. The schema is strict: files
// with unknown fields are rejected, forward compatibility is explicitly not
// supported.
type metadataFile struct {
	Vendor   string            `yaml:"vendor"`
	Version  string            `yaml:"version"`
	Checksum string            `yaml:"checksum"`
	Props    map[string]string `yaml:"props,omitempty"`
}

// New creates a Metadata record. The checksum is normalized to lowercase.
func New(vendor string, v *version.Version, checksum string) *Metadata {
	return &Metadata{
		Vendor:   vendor,
		Version:  v,
		Checksum: strings.ToLower(checksum),
		Props:    map[string]string{},
	}
}

// FilePath returns the location of the metadata file for the given target
// directory.
func FilePath(targetDir string) string {
	return filepath.Join(targetDir, Dir, FileName)
}

// Load reads the metadata record from the given path. A missing file is
// reported as ErrMetadataNotFound, everything the strict schema rejects as
// ErrMetadataParse.
func Load(path string) (*Metadata, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, errors.ErrMetadataNotFound)
		}
		return nil, errors.Wrapf(err, "failed to open metadata file %s", path)
	}
	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw metadataFile
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, errors.ErrMetadataParse)
	}

	return raw.toMetadata(path)
}

func (f *metadataFile) toMetadata(path string) (*Metadata, error) {
	if f.Vendor == "" {
		return nil, fmt.Errorf("%s: missing vendor: %w", path, errors.ErrMetadataParse)
	}

	parsed, err := version.NewVersion(f.Version)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid version %q: %w", path, f.Version, errors.ErrMetadataParse)
	}

	if !validChecksum(f.Checksum) {
		return nil, fmt.Errorf("%s: invalid checksum %q: %w", path, f.Checksum, errors.ErrMetadataParse)
	}

	props := f.Props
	if props == nil {
		props = map[string]string{}
	}

	return &Metadata{
		Vendor:   f.Vendor,
		Version:  parsed,
		Checksum: f.Checksum,
		Props:    props,
	}, nil
}

// validChecksum reports whether s is a 64 character lowercase hex string.
func validChecksum(s string) bool {
	if len(s) != checksumLen {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Save writes the metadata record to the given path, overwriting any previous
// file. The record is fully serialized before the file is touched so a
// marshalling failure never leaves a partially written file behind.
func (m *Metadata) Save(path string) error {
	raw := metadataFile{
		Vendor:   m.Vendor,
		Version:  m.Version.String(),
		Checksum: m.Checksum,
	}
	if len(m.Props) > 0 {
		raw.Props = m.Props
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&raw); err != nil {
		return errors.Wrap(err, "failed to encode metadata")
	}
	if err := encoder.Close(); err != nil {
		return errors.Wrap(err, "failed to encode metadata")
	}

	if err := fsutil.EnsureFileDir(path); err != nil {
		return errors.Wrapf(err, "failed to create metadata directory for %s", path)
	}

	return os.WriteFile(path, buf.Bytes(), fsutil.FileModeDefault)
}
