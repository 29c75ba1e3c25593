package hook

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/javup/pkg/errors"
	"github.com/glorpus-work/javup/pkg/meta"
)

// scriptExtension is the only supported hook script extension.
const scriptExtension = ".tengo"

// LoadFromTargetDir loads the hook scripts of one installation into the
// manager. Scripts live at <targetDir>/<metadata dir>/hooks/<hook-type>.tengo;
// a missing hooks directory means no hooks.
func LoadFromTargetDir(manager Manager, targetDir string) error {
	hooksDir := filepath.Join(targetDir, meta.Dir, "hooks")
	entries, err := os.ReadDir(hooksDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(errors.ErrHookLoad, err.Error())
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != scriptExtension {
			continue
		}

		hookType := HookType(strings.TrimSuffix(entry.Name(), scriptExtension))
		switch hookType {
		case PreUpdate, PostUpdate:
		default:
			continue
		}

		content, err := os.ReadFile(filepath.Join(hooksDir, entry.Name()))
		if err != nil {
			return errors.Wrap(errors.ErrHookLoad, err.Error())
		}
		manager.AddHook(Hook{Type: hookType, Content: string(content)})
	}

	return nil
}
