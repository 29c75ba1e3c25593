// Package provision implements the local half of an update: downloading the
// archive into the metadata directory, probing whether the current
// installation is busy, unpacking into a staging directory next to the
// download and swapping the staged tree into place.
package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/javup/internal/logger"
	"github.com/glorpus-work/javup/pkg/download"
	pkgerrors "github.com/glorpus-work/javup/pkg/errors"
	"github.com/glorpus-work/javup/pkg/fsutil"
	"github.com/glorpus-work/javup/pkg/meta"
	"github.com/glorpus-work/javup/pkg/platform"
)

// ProvisionerImpl provisions runtime installations using a download manager
// for archive retrieval. Everything transient (downloads, staging trees)
// lives inside the target's metadata directory so a crash never leaves
// clutter outside it.
type ProvisionerImpl struct {
	downloader download.Manager
}

// New creates a provisioner on top of the given download manager.
func New(downloader download.Manager) *ProvisionerImpl {
	return &ProvisionerImpl{downloader: downloader}
}

// Provide implements Provisioner.
func (p *ProvisionerImpl) Provide(ctx context.Context, req Request) error {
	if req.TargetDir == "" || !filepath.IsAbs(req.TargetDir) {
		return fmt.Errorf("target dir must be absolute: %s: %w", req.TargetDir, pkgerrors.ErrInvalidPath)
	}
	checksum := strings.ToLower(strings.TrimSpace(req.Checksum))

	metadataDir := filepath.Join(req.TargetDir, meta.Dir)
	archivePath, err := p.downloader.Fetch(ctx, download.Item{
		URL:      req.URL,
		Checksum: checksum,
		Ext:      req.Ext,
	}, download.Options{Dir: metadataDir})
	if err != nil {
		return err
	}

	// Probing before unpacking avoids wasted work on a busy installation.
	if err := probeBusy(req.TargetDir, checksum); err != nil {
		return err
	}

	staging := filepath.Join(metadataDir, checksum)
	if err := fsutil.RemoveTree(staging); err != nil {
		return pkgerrors.Wrap(err, "could not clear staging dir")
	}
	if err := extractStripped(ctx, archivePath, staging); err != nil {
		return err
	}
	if err := verifyInstallation(staging); err != nil {
		return err
	}

	if err := swap(req.TargetDir, staging); err != nil {
		return err
	}

	if err := fsutil.RemoveTree(staging); err != nil {
		logger.Warn("failed to delete staging dir", logger.Fields{"path": staging, "err": err.Error()})
	}
	if err := os.Remove(archivePath); err != nil {
		logger.Warn("failed to delete archive", logger.Fields{"path": archivePath, "err": err.Error()})
	}

	return nil
}

// probeBusy checks whether the current installation is in use by renaming its
// lib directory away and back. A running JVM holds files under lib open, which
// makes the rename fail on Windows; elsewhere it is a cheap no-op. A missing
// lib directory (fresh target) passes.
func probeBusy(targetDir, checksum string) error {
	lib := filepath.Join(targetDir, "lib")
	if _, err := os.Stat(lib); err != nil {
		return nil
	}

	probe := lib + "." + checksum
	if err := os.Rename(lib, probe); err != nil {
		return fmt.Errorf("%v: %w", err, pkgerrors.ErrInstallationBusy)
	}
	if err := os.Rename(probe, lib); err != nil {
		return pkgerrors.Wrap(err, "could not revert busy probe")
	}
	return nil
}

// verifyInstallation checks that the staged tree looks like a runtime by
// requiring the java launcher under bin.
func verifyInstallation(staging string) error {
	launcher := "java"
	if platform.HostOS() == platform.OSWindows {
		launcher += ".exe"
	}
	if _, err := os.Stat(filepath.Join(staging, "bin", launcher)); err != nil {
		return fmt.Errorf("missing bin/%s in unpacked archive: %w", launcher, pkgerrors.ErrIntegrity)
	}
	return nil
}

// swap replaces the contents of targetDir with the staged tree. The metadata
// directory is preserved; everything else is deleted, then the staged entries
// are renamed in. Renames stay on one filesystem because staging lives inside
// the target.
func swap(targetDir, staging string) error {
	entries, err := os.ReadDir(targetDir)
	if err != nil {
		return pkgerrors.Wrap(err, "could not read target dir")
	}
	for _, entry := range entries {
		if entry.Name() == meta.Dir {
			continue
		}
		path := filepath.Join(targetDir, entry.Name())
		if err := fsutil.RemoveTree(path); err != nil {
			return pkgerrors.Wrap(err, "could not delete old installation")
		}
	}

	staged, err := os.ReadDir(staging)
	if err != nil {
		return pkgerrors.Wrap(err, "could not read staging dir")
	}
	for _, entry := range staged {
		from := filepath.Join(staging, entry.Name())
		to := filepath.Join(targetDir, entry.Name())
		if err := fsutil.Move(from, to); err != nil {
			return pkgerrors.Wrap(err, "could not move new installation")
		}
	}

	return nil
}
