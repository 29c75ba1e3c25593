package controller

import (
	"os"
	"path/filepath"

	"github.com/glorpus-work/javup/internal/logger"
	"github.com/glorpus-work/javup/pkg/config"
	pkgerrors "github.com/glorpus-work/javup/pkg/errors"
	"github.com/glorpus-work/javup/pkg/hook"
	"github.com/glorpus-work/javup/pkg/notify"
	"github.com/glorpus-work/javup/pkg/vars"
	"github.com/glorpus-work/javup/pkg/vendor"
	version "github.com/hashicorp/go-version"
)

// notifyFailure runs the configured on-failure commands.
func (c *Controller) notifyFailure(cfg *config.InstallationConfig, v vendor.Vendor, path string, oldVersion *version.Version, failure error) {
	if len(cfg.OnFailure) == 0 {
		return
	}
	env := c.notifyEnv(cfg, v, path, oldVersion, nil)
	env["JU_ERROR"] = failure.Error()
	c.runCommands(cfg.OnFailure, notify.KindFailure, env)
}

// notifySuccess runs the configured on-success commands.
func (c *Controller) notifySuccess(cfg *config.InstallationConfig, v vendor.Vendor, path string, oldVersion, newVersion *version.Version) {
	if len(cfg.OnSuccess) == 0 {
		return
	}
	c.runCommands(cfg.OnSuccess, notify.KindSuccess, c.notifyEnv(cfg, v, path, oldVersion, newVersion))
}

// notifyUpdate runs the configured on-update commands.
func (c *Controller) notifyUpdate(cfg *config.InstallationConfig, v vendor.Vendor, path string, oldVersion, newVersion *version.Version) {
	if len(cfg.OnUpdate) == 0 {
		return
	}
	c.runCommands(cfg.OnUpdate, notify.KindUpdate, c.notifyEnv(cfg, v, path, oldVersion, newVersion))
}

// notifyEnv assembles the JU_* variables handed to notify commands.
func (c *Controller) notifyEnv(cfg *config.InstallationConfig, v vendor.Vendor, path string, oldVersion, newVersion *version.Version) map[string]string {
	env := map[string]string{
		"JU_ARCH":        cfg.Architecture,
		"JU_DIRECTORY":   path,
		"JU_TYPE":        cfg.Type,
		"JU_VENDOR_ID":   v.ID(),
		"JU_VENDOR_NAME": v.Name(),
	}
	if oldVersion != nil {
		env["JU_OLD_VERSION"] = oldVersion.String()
	}
	if newVersion != nil {
		env["JU_NEW_VERSION"] = newVersion.String()
	}
	return env
}

// runCommands spawns every command with a strict expander that resolves the
// JU_* values both as ${env.JU_*} tokens and through the child environment.
func (c *Controller) runCommands(commands []config.CommandConfig, kind notify.Kind, env map[string]string) {
	static := vars.NewStatic()
	for key, value := range env {
		static.Set("env."+key, value)
	}
	expander := vars.NewExpander(static, vars.OSEnv{})

	for _, command := range commands {
		c.Notifier.Run(notify.Command{
			Path: command.Path,
			Args: command.Args,
			Dir:  command.Directory,
			Env:  env,
			Kind: kind,
		}, expander)
	}
}

// addConfiguredHook loads a hook script referenced from the configuration,
// relative to the config file unless absolute.
func addConfiguredHook(manager hook.Manager, hookType hook.HookType, scriptPath, baseDir string) error {
	if scriptPath == "" {
		return nil
	}
	if !filepath.IsAbs(scriptPath) {
		scriptPath = filepath.Join(baseDir, scriptPath)
	}
	content, err := os.ReadFile(scriptPath)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrHookLoad, err.Error())
	}
	manager.AddHook(hook.Hook{Type: hookType, Content: string(content)})
	logger.Debug("loaded configured hook", logger.Fields{"type": string(hookType), "path": scriptPath})
	return nil
}
