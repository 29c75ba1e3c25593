// Package hook runs user supplied Tengo scripts around the update of an
// installation. Scripts live inside the target's metadata directory and can
// veto an update by assigning an error to the err variable.
package hook

// HookType represents the type of hook.
type HookType string

// Supported hook types.
const (
	PreUpdate  HookType = "pre-update"
	PostUpdate HookType = "post-update"
)

// Hook represents a hook script with its type and content.
type Hook struct {
	Type    HookType
	Content string
}

// HookContext contains information passed to hooks.
type HookContext struct {
	Vendor     string
	Directory  string
	OldVersion string
	NewVersion string
	Vars       map[string]interface{}
}

// Manager defines the interface for managing hooks.
type Manager interface {
	// Execute runs the specified hook type with the given context.
	Execute(hookType HookType, ctx HookContext) error

	// AddHook adds a new hook.
	AddHook(hook Hook)

	// HasHook checks if a hook of the specified type exists.
	HasHook(hookType HookType) bool
}
