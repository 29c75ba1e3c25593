//go:generate mockgen -destination=./mocks/controller.go -package=mocks . Querier,Provisioner,Notifier

// Package controller drives the update of a single installation from local
// metadata to a freshly provisioned runtime: load what is installed, query
// what is published, decide, provision, persist.
package controller

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/glorpus-work/javup/internal/logger"
	"github.com/glorpus-work/javup/pkg/config"
	pkgerrors "github.com/glorpus-work/javup/pkg/errors"
	"github.com/glorpus-work/javup/pkg/hook"
	"github.com/glorpus-work/javup/pkg/meta"
	"github.com/glorpus-work/javup/pkg/notify"
	"github.com/glorpus-work/javup/pkg/provision"
	"github.com/glorpus-work/javup/pkg/vars"
	"github.com/glorpus-work/javup/pkg/vendor"
	version "github.com/hashicorp/go-version"
)

// Querier is the subset of the vendor querier used by the controller.
type Querier interface {
	Query(ctx context.Context, req vendor.Request) (*vendor.Descriptor, error)
}

// Provisioner is the subset of the provisioner used by the controller.
type Provisioner interface {
	Provide(ctx context.Context, req provision.Request) error
}

// Notifier is the subset of the notify runner used by the controller.
type Notifier interface {
	Run(cmd notify.Command, expander *vars.Expander)
}

// Event represents a simple progress notification.
type Event struct {
	Phase string // processing|up-to-date|updated|dry-run|skipped|failed
	Path  string
	Msg   string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

// Outcome classifies the result of processing one installation.
type Outcome string

// Possible outcomes.
const (
	OutcomeSkipped  Outcome = "skipped"
	OutcomeUpToDate Outcome = "up-to-date"
	OutcomeUpdated  Outcome = "updated"
	OutcomeDryRun   Outcome = "dry-run"
	OutcomeFailed   Outcome = "failed"
)

// Result is the outcome of processing one installation.
type Result struct {
	Outcome Outcome
	// Path is the absolute installation directory.
	Path string
	// OldVersion is the previously installed version, nil for a fresh target.
	OldVersion *version.Version
	// NewVersion is the version now installed (or that would be, on dry-run).
	NewVersion *version.Version
	// Reason explains skips.
	Reason string
	// Err carries the failure for OutcomeFailed.
	Err error
}

// Controller processes installations. All collaborators are injected; the
// zero value is not usable.
type Controller struct {
	// QuerierFor returns the metadata querier for a vendor.
	QuerierFor func(v vendor.Vendor) Querier
	// Provisioner downloads and swaps in releases.
	Provisioner Provisioner
	// Notifier spawns the configured notify commands.
	Notifier Notifier
	// Hooks carries progress callbacks.
	Hooks Hooks
	// BaseDir anchors relative installation directories and hook scripts.
	BaseDir string
	// DryRun stops before anything is modified.
	DryRun bool
}

func (c *Controller) emit(e Event) {
	if c.Hooks.OnEvent != nil {
		c.Hooks.OnEvent(e)
	}
}

// Process runs the update state machine for one installation. Failures are
// part of the result, not an error return: one broken target must never stop
// the others.
func (c *Controller) Process(ctx context.Context, cfg *config.InstallationConfig) *Result {
	path := cfg.TargetDir(c.BaseDir)

	if !cfg.IsEnabled() {
		c.emit(Event{Phase: "skipped", Path: path, Msg: "disabled"})
		return &Result{Outcome: OutcomeSkipped, Path: path, Reason: "disabled"}
	}

	v, err := vendor.Parse(cfg.Vendor)
	if err != nil {
		c.emit(Event{Phase: "skipped", Path: path, Msg: "unsupported vendor " + cfg.Vendor})
		return &Result{Outcome: OutcomeSkipped, Path: path, Reason: fmt.Sprintf("unsupported vendor %q", cfg.Vendor)}
	}

	installed, err := c.loadMetadata(path, v)
	if err != nil {
		return c.failed(cfg, v, path, nil, err)
	}
	var oldVersion *version.Version
	if installed != nil {
		oldVersion = installed.Version
	}
	c.emit(Event{Phase: "processing", Path: path, Msg: versionString(oldVersion)})

	result := c.process(ctx, cfg, v, path, installed)
	switch result.Outcome {
	case OutcomeUpdated:
		c.emit(Event{Phase: "updated", Path: path, Msg: versionString(result.NewVersion)})
		c.notifyUpdate(cfg, v, path, result.OldVersion, result.NewVersion)
		c.notifySuccess(cfg, v, path, result.OldVersion, result.NewVersion)
	case OutcomeUpToDate:
		c.emit(Event{Phase: "up-to-date", Path: path, Msg: versionString(result.OldVersion)})
		c.notifySuccess(cfg, v, path, result.OldVersion, result.NewVersion)
	case OutcomeDryRun:
		c.emit(Event{Phase: "dry-run", Path: path, Msg: versionString(result.NewVersion)})
	case OutcomeFailed:
		// failed() already reported
	}
	return result
}

// process runs the decision pipeline once skipping and metadata loading are
// out of the way.
func (c *Controller) process(ctx context.Context, cfg *config.InstallationConfig, v vendor.Vendor, path string, installed *meta.Metadata) *Result {
	var oldVersion *version.Version
	if installed != nil {
		oldVersion = installed.Version
	}

	hooks, err := c.loadHooks(cfg, path)
	if err != nil {
		return c.failed(cfg, v, path, oldVersion, err)
	}

	latest, err := c.QuerierFor(v).Query(ctx, vendor.Request{
		Arch:        cfg.Architecture,
		OS:          cfg.OS,
		PackageType: cfg.Type,
		Version:     string(cfg.Version),
	})
	if err != nil {
		return c.failed(cfg, v, path, oldVersion, err)
	}
	checksum := strings.ToLower(strings.TrimSpace(latest.Checksum))

	if !needsUpdate(installed, latest.Version, checksum) {
		logger.Debug("no download necessary", logger.Fields{"path": path})
		return &Result{Outcome: OutcomeUpToDate, Path: path, OldVersion: oldVersion, NewVersion: oldVersion}
	}

	if c.DryRun {
		return &Result{Outcome: OutcomeDryRun, Path: path, OldVersion: oldVersion, NewVersion: latest.Version}
	}

	hookCtx := hook.HookContext{
		Vendor:     v.ID(),
		Directory:  path,
		OldVersion: versionString(oldVersion),
		NewVersion: latest.Version.String(),
	}
	if err := hooks.Execute(hook.PreUpdate, hookCtx); err != nil {
		return c.failed(cfg, v, path, oldVersion, err)
	}

	archiveURL, err := url.Parse(latest.URL)
	if err != nil {
		return c.failed(cfg, v, path, oldVersion, pkgerrors.Wrap(err, "invalid download URL"))
	}
	if err := c.Provisioner.Provide(ctx, provision.Request{
		TargetDir: path,
		URL:       archiveURL,
		Checksum:  checksum,
		Ext:       latest.Ext,
	}); err != nil {
		return c.failed(cfg, v, path, oldVersion, err)
	}

	record := meta.New(v.ID(), latest.Version, checksum)
	if err := record.Save(meta.FilePath(path)); err != nil {
		return c.failed(cfg, v, path, oldVersion, err)
	}

	if err := hooks.Execute(hook.PostUpdate, hookCtx); err != nil {
		logger.Error("post-update hook failed", logger.Fields{"path": path, "err": err.Error()})
	}

	return &Result{Outcome: OutcomeUpdated, Path: path, OldVersion: oldVersion, NewVersion: latest.Version}
}

// failed reports and packages a failure.
func (c *Controller) failed(cfg *config.InstallationConfig, v vendor.Vendor, path string, oldVersion *version.Version, err error) *Result {
	c.emit(Event{Phase: "failed", Path: path, Msg: err.Error()})
	c.notifyFailure(cfg, v, path, oldVersion, err)
	return &Result{Outcome: OutcomeFailed, Path: path, OldVersion: oldVersion, Err: err}
}

// loadMetadata loads the persisted metadata of a target. A missing file is a
// fresh target; a file from a different vendor or a broken file is an error.
func (c *Controller) loadMetadata(path string, v vendor.Vendor) (*meta.Metadata, error) {
	installed, err := meta.Load(meta.FilePath(path))
	if err != nil {
		if stderrors.Is(err, pkgerrors.ErrMetadataNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if installed.Vendor != v.ID() {
		return nil, fmt.Errorf("expected %s, got %s: %w", v.ID(), installed.Vendor, pkgerrors.ErrVendorMismatch)
	}
	return installed, nil
}

// loadHooks builds the hook manager for one target from the configured
// script paths and the scripts inside the target's metadata directory.
func (c *Controller) loadHooks(cfg *config.InstallationConfig, path string) (hook.Manager, error) {
	manager := hook.NewTengoExecutor()
	if err := addConfiguredHook(manager, hook.PreUpdate, cfg.Hooks.PreUpdate, c.BaseDir); err != nil {
		return nil, err
	}
	if err := addConfiguredHook(manager, hook.PostUpdate, cfg.Hooks.PostUpdate, c.BaseDir); err != nil {
		return nil, err
	}
	if err := hook.LoadFromTargetDir(manager, path); err != nil {
		return nil, err
	}
	return manager, nil
}

// needsUpdate is the decision rule: fresh target, newer remote version or a
// changed checksum for the same version.
func needsUpdate(installed *meta.Metadata, latest *version.Version, checksum string) bool {
	if installed == nil {
		return true
	}
	if latest.GreaterThan(installed.Version) {
		return true
	}
	return checksum != installed.Checksum
}

// versionString renders a version for reporting, with "n/a" for none.
func versionString(v *version.Version) string {
	if v == nil {
		return "n/a"
	}
	return v.String()
}
