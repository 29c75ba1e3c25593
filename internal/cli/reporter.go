package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/glorpus-work/javup/pkg/controller"
	version "github.com/hashicorp/go-version"
)

// reporter renders controller events and results as per-installation lines.
// Results come in from pool workers concurrently, so every write is locked to
// keep lines intact.
type reporter struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	display *Display
}

func newReporter(out, errOut io.Writer, display *Display) *reporter {
	return &reporter{out: out, errOut: errOut, display: display}
}

// onEvent reports the start of processing; the remaining phases are rendered
// from the final result.
func (r *reporter) onEvent(e controller.Event) {
	if e.Phase != "processing" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "Processing installation at %s [%s]\n", r.display.Path(e.Path), r.display.Info(e.Msg))
}

// onResult reports the outcome of one installation.
func (r *reporter) onResult(result *controller.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.display.Path(result.Path)
	oldVersion := r.display.Info(formatVersion(result.OldVersion))

	switch result.Outcome {
	case controller.OutcomeSkipped:
		fmt.Fprintf(r.out, "%s processing installation at %s -> %s\n", r.display.Attention("NOT"), path, result.Reason)
	case controller.OutcomeUpToDate:
		fmt.Fprintf(r.out, "Processed installation at %s [%s]\n", path, oldVersion)
	case controller.OutcomeUpdated:
		newVersion := r.display.Info(formatVersion(result.NewVersion))
		fmt.Fprintf(r.out, "Processed installation at %s [%s -> %s]\n", path, oldVersion, newVersion)
	case controller.OutcomeDryRun:
		newVersion := r.display.Info(formatVersion(result.NewVersion))
		fmt.Fprintf(r.out, "dry-run: %s processing installation at %s [%s -> %s]\n",
			r.display.Attention("NOT"), path, oldVersion, newVersion)
	case controller.OutcomeFailed:
		fmt.Fprintf(r.errOut, "Failed to process installation at %s!\n\t%s\n",
			path, r.display.Attention("err = "+result.Err.Error()))
	}
}

// formatVersion renders a version with "n/a" for none.
func formatVersion(v *version.Version) string {
	if v == nil {
		return "n/a"
	}
	return v.String()
}
