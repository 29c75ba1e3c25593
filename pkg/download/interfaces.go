package download

import (
	"context"
	"net/url"
)

// Manager defines the interface for downloading remote package archives with
// integrity verification.
type Manager interface {
	// Fetch downloads a single item to its content-addressed location within
	// opts.Dir and returns the absolute local file path. A file that is
	// already present with a matching checksum is reused without touching
	// the network.
	Fetch(ctx context.Context, item Item, opts Options) (string, error)
}

// Item represents one remote package archive to download.
type Item struct {
	URL      *url.URL // source URL to download
	Checksum string   // expected hex encoded SHA-256 checksum, required
	Ext      string   // archive extension without leading dot, e.g. "tar.gz"
}

// Options control the behavior of the download manager.
type Options struct {
	Dir string // destination directory. Must be absolute.
}
