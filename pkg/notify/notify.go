// Package notify spawns user configured notification commands around update
// results. Commands run detached and fire-and-forget: a notification that
// fails to start is logged, never propagated, because notifications must not
// influence the update outcome.
package notify

import (
	"os"
	"os/exec"
	"sort"

	"github.com/glorpus-work/javup/internal/logger"
	pkgerrors "github.com/glorpus-work/javup/pkg/errors"
	"github.com/glorpus-work/javup/pkg/vars"
)

// Kind categorizes a notification.
type Kind string

// Notification kinds.
const (
	KindSuccess Kind = "success"
	KindFailure Kind = "failure"
	KindUpdate  Kind = "update"
)

// Command describes one notification command. Path, arguments, working
// directory and environment values are variable templates, expanded strictly
// right before the spawn: an unresolvable variable aborts the command.
type Command struct {
	// Path to the executable, possibly containing ${name} tokens.
	Path string
	// Args for the executable, each possibly containing ${name} tokens.
	Args []string
	// Dir is the working directory for the executable. Empty inherits ours.
	Dir string
	// Env holds extra environment variables. Values may contain tokens.
	Env map[string]string
	// Kind of the notification, used for log context only.
	Kind Kind
}

// Runner spawns notification commands.
type Runner interface {
	// Run expands and spawns the command. Failures are logged, not returned.
	Run(cmd Command, expander *vars.Expander)
}

// RunnerImpl spawns notification commands as detached child processes with
// stdin, stdout and stderr disconnected.
type RunnerImpl struct{}

// NewRunner creates a notification runner.
func NewRunner() *RunnerImpl {
	return &RunnerImpl{}
}

// Run implements Runner.
func (r *RunnerImpl) Run(cmd Command, expander *vars.Expander) {
	if err := r.spawn(cmd, expander); err != nil {
		logger.Error("failed to execute notify command",
			logger.Fields{"path": cmd.Path, "kind": string(cmd.Kind), "err": err.Error()})
	}
}

// spawn expands the command and starts it without waiting for completion.
func (r *RunnerImpl) spawn(cmd Command, expander *vars.Expander) error {
	path, err := expander.Expand(cmd.Path)
	if err != nil {
		return pkgerrors.Wrap(err, "expand path")
	}

	args := make([]string, 0, len(cmd.Args))
	for _, arg := range cmd.Args {
		expanded, err := expander.Expand(arg)
		if err != nil {
			return pkgerrors.Wrap(err, "expand arg")
		}
		args = append(args, expanded)
	}

	proc := exec.Command(path, args...)

	if cmd.Dir != "" {
		dir, err := expander.Expand(cmd.Dir)
		if err != nil {
			return pkgerrors.Wrap(err, "expand dir")
		}
		proc.Dir = dir
	}

	env, err := buildEnv(cmd.Env, expander)
	if err != nil {
		return err
	}
	proc.Env = env

	// nil stdio attaches the null device, so the child cannot block on us
	if err := proc.Start(); err != nil {
		return pkgerrors.Wrap(err, "spawn")
	}
	return proc.Process.Release()
}

// buildEnv merges the expanded extra variables over the current process
// environment, in stable order.
func buildEnv(extra map[string]string, expander *vars.Expander) ([]string, error) {
	if len(extra) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(extra))
	for key := range extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	env := os.Environ()
	for _, key := range keys {
		value, err := expander.Expand(extra[key])
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "expand env %s", key)
		}
		env = append(env, key+"="+value)
	}
	return env, nil
}
