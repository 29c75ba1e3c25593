package provision

import (
	"context"
	"net/url"
)

// Provisioner replaces the runtime installation in a target directory with a
// freshly downloaded release.
type Provisioner interface {
	// Provide downloads, verifies, unpacks and swaps in the release described
	// by req. On return the target directory holds the new installation, or
	// an error and the old installation is untouched (a failed swap is the
	// one step that cannot be rolled back).
	Provide(ctx context.Context, req Request) error
}

// Request describes one release to install into a target directory.
type Request struct {
	// TargetDir is the absolute path of the installation directory.
	TargetDir string
	// URL of the archive to download.
	URL *url.URL
	// Checksum is the expected hex encoded SHA-256 checksum of the archive.
	Checksum string
	// Ext is the archive extension without leading dot ("tar.gz" or "zip").
	Ext string
}
