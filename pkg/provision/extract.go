package provision

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/javup/internal/logger"
	pkgerrors "github.com/glorpus-work/javup/pkg/errors"
	"github.com/glorpus-work/javup/pkg/fsutil"
	"github.com/mholt/archives"
)

// extractStripped unpacks the archive at archivePath into destDir with the
// wrapper directory removed. Vendor archives wrap the installation in a
// single versioned top-level directory (jdk-21.0.4+7/...), so the first path
// component of every entry is dropped. Entries directly at the archive root
// and entries with unsafe names are skipped.
func extractStripped(ctx context.Context, archivePath, destDir string) error {
	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return pkgerrors.Wrap(err, "could not open archive")
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	if err := fsutil.EnsureDir(destDir); err != nil {
		return pkgerrors.Wrap(err, "could not create staging dir")
	}

	return fs.WalkDir(fsys, ".", func(entryPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		return extractEntry(fsys, entryPath, destDir, d)
	})
}

// extractEntry writes a single archive entry to destDir under its stripped
// name, or skips it.
func extractEntry(fsys fs.FS, entryPath, destDir string, d fs.DirEntry) error {
	stripped, ok := stripWrapper(entryPath)
	if !ok {
		if entryPath != "." && !d.IsDir() {
			logger.Warn("skipping unusual archive entry", logger.Fields{"name": entryPath})
		}
		return nil
	}
	if !filepath.IsLocal(filepath.FromSlash(stripped)) {
		logger.Warn("skipping dangerous archive entry", logger.Fields{"name": entryPath})
		return nil
	}

	targetPath := filepath.Join(destDir, filepath.FromSlash(stripped))

	if d.IsDir() {
		return fsutil.EnsureDir(targetPath)
	}

	info, err := d.Info()
	if err != nil {
		return pkgerrors.Wrapf(err, "could not stat archive entry %s", entryPath)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return writeSymlink(fsys, entryPath, targetPath)
	}
	return writeRegularFile(fsys, entryPath, targetPath, info)
}

// stripWrapper removes the first path component of a slash separated archive
// entry name. The second return is false for the root entry and for entries
// with fewer than two components, which have no place in the stripped tree.
func stripWrapper(entryPath string) (string, bool) {
	cleaned := path.Clean(entryPath)
	if cleaned == "." || cleaned == "/" {
		return "", false
	}
	parts := strings.SplitN(cleaned, "/", 2)
	if len(parts) < 2 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// writeSymlink recreates a symlink entry. The link target is stored as the
// file contents by the archive filesystem.
func writeSymlink(fsys fs.FS, entryPath, targetPath string) error {
	src, err := fsys.Open(entryPath)
	if err != nil {
		return pkgerrors.Wrapf(err, "could not read symlink %s", entryPath)
	}
	defer func() { _ = src.Close() }()

	linkTarget, err := io.ReadAll(src)
	if err != nil {
		return pkgerrors.Wrapf(err, "could not read symlink target %s", entryPath)
	}

	if err := fsutil.EnsureFileDir(targetPath); err != nil {
		return pkgerrors.Wrapf(err, "could not create parent for %s", entryPath)
	}
	_ = os.Remove(targetPath)
	return os.Symlink(string(linkTarget), targetPath)
}

// writeRegularFile copies a file entry to targetPath, preserving its mode.
func writeRegularFile(fsys fs.FS, entryPath, targetPath string, info fs.FileInfo) error {
	src, err := fsys.Open(entryPath)
	if err != nil {
		return pkgerrors.Wrapf(err, "could not open archive entry %s", entryPath)
	}
	defer func() { _ = src.Close() }()

	if err := fsutil.EnsureFileDir(targetPath); err != nil {
		return pkgerrors.Wrapf(err, "could not create parent for %s", entryPath)
	}

	perm := info.Mode().Perm()
	if perm == 0 {
		perm = fsutil.FileModeDefault
	}
	dst, err := fsutil.CreateFilePerm(targetPath, perm)
	if err != nil {
		return pkgerrors.Wrapf(err, "could not create %s", targetPath)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return pkgerrors.Wrapf(err, "could not extract %s", entryPath)
	}
	return dst.Close()
}
