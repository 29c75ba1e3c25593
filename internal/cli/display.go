package cli

import "github.com/charmbracelet/lipgloss"

// Display bundles the styles used for terminal reporting. Passing a Display
// around instead of consulting global color state keeps styling a decision of
// the caller (tests and --no-color simply use a plain one).
type Display struct {
	path      lipgloss.Style
	info      lipgloss.Style
	attention lipgloss.Style
}

// NewDisplay creates a Display. With noColor all styles are plain.
func NewDisplay(noColor bool) *Display {
	if noColor {
		plain := lipgloss.NewStyle()
		return &Display{path: plain, info: plain, attention: plain}
	}
	return &Display{
		path:      lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		info:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		attention: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}

// Path styles a filesystem path.
func (d *Display) Path(s string) string { return d.path.Render(s) }

// Info styles a value the user asked for, like a version.
func (d *Display) Info(s string) string { return d.info.Render(s) }

// Attention styles text that needs the user's attention.
func (d *Display) Attention(s string) string { return d.attention.Render(s) }
