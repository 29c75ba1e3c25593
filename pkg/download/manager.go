package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glorpus-work/javup/internal/logger"
	pkgerrors "github.com/glorpus-work/javup/pkg/errors"
	"github.com/glorpus-work/javup/pkg/fsutil"
)

const (
	// maxAttempts bounds the retries for transient network failures.
	maxAttempts = 3
	// initialBackoff is the delay before the first retry; it doubles per attempt.
	initialBackoff = 500 * time.Millisecond
)

// ManagerImpl is an HTTP download manager with mandatory checksum
// verification and a content-addressed cache: the destination filename is the
// expected checksum plus the archive extension, so a finished download can be
// recognized and reused on the next run without a network call.
type ManagerImpl struct {
	client    *http.Client
	userAgent string
}

// NewManager creates a new download manager with the given timeout and user agent.
func NewManager(timeout time.Duration, userAgent string) *ManagerImpl {
	if userAgent == "" {
		userAgent = "javup/1.0"
	}
	return &ManagerImpl{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch downloads a single item and returns the path to the downloaded file.
func (m *ManagerImpl) Fetch(ctx context.Context, item Item, opts Options) (string, error) {
	if opts.Dir == "" || !filepath.IsAbs(opts.Dir) {
		return "", fmt.Errorf("download dir must be absolute: %s: %w", opts.Dir, pkgerrors.ErrInvalidPath)
	}
	if item.URL == nil {
		return "", fmt.Errorf("nil URL: %w", pkgerrors.ErrDownloadFailed)
	}
	expected := normalizeHex(item.Checksum)
	if expected == "" {
		return "", fmt.Errorf("missing checksum for %s: %w", item.URL, pkgerrors.ErrDownloadFailed)
	}

	absPath := filepath.Join(opts.Dir, destFilename(expected, item.Ext))

	// a complete earlier download is reused as-is
	if reusable(absPath, expected) {
		logger.Debug("reusing cached download", logger.Fields{"path": absPath})
		return absPath, nil
	}

	if err := fsutil.EnsureDir(opts.Dir); err != nil {
		return "", pkgerrors.Wrap(err, "could not create download dir")
	}

	var lastErr error
	backoff := initialBackoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		computed, err := m.fetchOnce(ctx, item, absPath)
		if err == nil {
			if computed != expected {
				// poisoned cache entries would re-fail every run, drop them
				_ = os.Remove(absPath)
				return "", fmt.Errorf("downloaded %s, expected %s: %w", computed, expected, pkgerrors.ErrChecksumMismatch)
			}
			return absPath, nil
		}

		lastErr = err
		if attempt == maxAttempts {
			break
		}
		logger.Warn("download failed, retrying",
			logger.Fields{"url": item.URL.String(), "attempt": attempt, "err": err.Error()})
		select {
		case <-ctx.Done():
			return "", pkgerrors.Wrap(ctx.Err(), "download aborted")
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return "", lastErr
}

// fetchOnce performs a single GET request, streaming the body to absPath
// through a write-through hasher. It returns the computed checksum so the
// caller can verify it without a second read of the file.
func (m *ManagerImpl) fetchOnce(ctx context.Context, item Item, absPath string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.URL.String(), http.NoBody)
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/octet-stream")
	req.Header.Set("User-Agent", m.userAgent)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(err, "download failed")
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d: %w", resp.StatusCode, pkgerrors.ErrDownloadFailed)
	}

	dest, err := fsutil.CreateFilePerm(absPath, fsutil.FileModeDefault)
	if err != nil {
		return "", pkgerrors.Wrap(err, "could not create download file")
	}

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(dest, hasher), resp.Body)
	if err != nil {
		_ = dest.Close()
		return "", pkgerrors.Wrap(err, "could not write file")
	}
	if err := dest.Close(); err != nil {
		return "", pkgerrors.Wrap(err, "could not close file")
	}
	logger.Debug("download complete", logger.Fields{"path": absPath, "bytes": written})

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// destFilename derives the content-addressed filename for a download.
func destFilename(checksum, ext string) string {
	if ext == "" {
		return checksum
	}
	return checksum + "." + strings.TrimPrefix(ext, ".")
}

// reusable reports whether absPath already holds a file with the expected
// checksum.
func reusable(absPath, expected string) bool {
	st, err := os.Stat(absPath)
	if err != nil || st.Size() == 0 {
		return false
	}
	computed, err := Checksum(absPath)
	return err == nil && computed == expected
}

// Checksum calculates the hex encoded SHA-256 checksum of the given file.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", pkgerrors.Wrap(err, "open for checksum")
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", pkgerrors.Wrap(err, "hashing")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func normalizeHex(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
