package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glorpus-work/javup/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sha256Hex(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestNewManager(t *testing.T) {
	tests := []struct {
		name       string
		userAgent  string
		expectedUA string
	}{
		{name: "default user agent", expectedUA: "javup/1.0"},
		{name: "custom user agent", userAgent: "test-agent/1.0", expectedUA: "test-agent/1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(time.Second, tt.userAgent)
			require.NotNil(t, m)
			assert.Equal(t, tt.expectedUA, m.userAgent)
		})
	}
}

func TestFetch_Success(t *testing.T) {
	payload := []byte("archive bytes")
	var gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	dir := t.TempDir()
	m := NewManager(5*time.Second, "")

	path, err := m.Fetch(context.Background(), Item{
		URL:      mustParseURL(t, server.URL),
		Checksum: sha256Hex(payload),
		Ext:      "tar.gz",
	}, Options{Dir: dir})

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, sha256Hex(payload)+".tar.gz"), path)
	assert.Equal(t, "application/octet-stream", gotAccept)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, content)
}

func TestFetch_ReusesCachedFile(t *testing.T) {
	payload := []byte("cached archive")
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	dir := t.TempDir()
	m := NewManager(5*time.Second, "")
	item := Item{URL: mustParseURL(t, server.URL), Checksum: sha256Hex(payload), Ext: "zip"}

	_, err := m.Fetch(context.Background(), item, Options{Dir: dir})
	require.NoError(t, err)
	_, err = m.Fetch(context.Background(), item, Options{Dir: dir})
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load(), "second fetch must not hit the network")
}

func TestFetch_UppercaseChecksumAccepted(t *testing.T) {
	payload := []byte("case insensitive")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	m := NewManager(5*time.Second, "")
	_, err := m.Fetch(context.Background(), Item{
		URL:      mustParseURL(t, server.URL),
		Checksum: "0X" + sha256Hex(payload)[2:], // keep length, mix case below
	}, Options{Dir: t.TempDir()})
	// an actually wrong checksum still fails
	assert.Error(t, err)

	path, err := m.Fetch(context.Background(), Item{
		URL:      mustParseURL(t, server.URL),
		Checksum: toUpper(sha256Hex(payload)),
	}, Options{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func toUpper(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

func TestFetch_ChecksumMismatchDeletesFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("unexpected bytes"))
	}))
	defer server.Close()

	dir := t.TempDir()
	expected := sha256Hex([]byte("what we wanted"))
	m := NewManager(5*time.Second, "")

	_, err := m.Fetch(context.Background(), Item{
		URL:      mustParseURL(t, server.URL),
		Checksum: expected,
		Ext:      "tar.gz",
	}, Options{Dir: dir})

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrChecksumMismatch)
	assert.NoFileExists(t, filepath.Join(dir, expected+".tar.gz"),
		"mismatched download must be removed so a retry re-fetches")
}

func TestFetch_RetriesTransientFailures(t *testing.T) {
	payload := []byte("eventually fine")
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	m := NewManager(5*time.Second, "")
	path, err := m.Fetch(context.Background(), Item{
		URL:      mustParseURL(t, server.URL),
		Checksum: sha256Hex(payload),
	}, Options{Dir: t.TempDir()})

	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetch_InvalidArguments(t *testing.T) {
	m := NewManager(time.Second, "")

	_, err := m.Fetch(context.Background(), Item{
		URL:      mustParseURL(t, "http://example.invalid"),
		Checksum: "abc",
	}, Options{Dir: "relative/dir"})
	assert.ErrorIs(t, err, errors.ErrInvalidPath)

	_, err = m.Fetch(context.Background(), Item{Checksum: "abc"}, Options{Dir: t.TempDir()})
	assert.ErrorIs(t, err, errors.ErrDownloadFailed)

	_, err = m.Fetch(context.Background(), Item{
		URL: mustParseURL(t, "http://example.invalid"),
	}, Options{Dir: t.TempDir()})
	assert.ErrorIs(t, err, errors.ErrDownloadFailed)
}

func TestChecksum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	sum, err := Checksum(path)
	require.NoError(t, err)
	assert.Equal(t, sha256Hex([]byte("abc")), sum)

	_, err = Checksum(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
