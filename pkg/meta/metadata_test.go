package meta

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glorpus-work/javup/pkg/errors"
	version "github.com/hashicorp/go-version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChecksum = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), Dir, FileName)

	md := New("eclipse", version.Must(version.NewVersion("17.0.9")), strings.ToUpper(testChecksum))
	md.Props["k"] = "v"
	require.NoError(t, md.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "eclipse", loaded.Vendor)
	assert.True(t, loaded.Version.Equal(md.Version))
	assert.Equal(t, testChecksum, loaded.Checksum)
	assert.Equal(t, map[string]string{"k": "v"}, loaded.Props)
}

func TestSaveOmitsEmptyProps(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	md := New("azul", version.Must(version.NewVersion("21.0.1")), testChecksum)
	require.NoError(t, md.Save(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "props")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope", FileName))
	assert.ErrorIs(t, err, errors.ErrMetadataNotFound)
}

func TestLoadRejectsBadContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "unknown field",
			content: "vendor: eclipse\nversion: 17.0.9\nchecksum: " + testChecksum +
				"\nfuture_field: surprise\n",
		},
		{
			name:    "not yaml",
			content: "{{{{",
		},
		{
			name:    "missing vendor",
			content: "version: 17.0.9\nchecksum: " + testChecksum + "\n",
		},
		{
			name:    "unparsable version",
			content: "vendor: eclipse\nversion: not-a-version\nchecksum: " + testChecksum + "\n",
		},
		{
			name:    "checksum too short",
			content: "vendor: eclipse\nversion: 17.0.9\nchecksum: abcd\n",
		},
		{
			name: "checksum not lowercase hex",
			content: "vendor: eclipse\nversion: 17.0.9\nchecksum: " +
				strings.ToUpper(testChecksum) + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path)
			assert.ErrorIs(t, err, errors.ErrMetadataParse)
		})
	}
}

func TestSaveOverwritesPreviousFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	first := New("eclipse", version.Must(version.NewVersion("17.0.8")), testChecksum)
	require.NoError(t, first.Save(path))

	second := New("eclipse", version.Must(version.NewVersion("17.0.9")), testChecksum)
	require.NoError(t, second.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "17.0.9", loaded.Version.String())
}

func TestFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("/opt/jdk", Dir, FileName), FilePath("/opt/jdk"))
}
