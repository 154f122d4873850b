// Package style holds the colors and markers used when log records are printed for people.
package style

import "github.com/charmbracelet/lipgloss"

// Level colors.
var (
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
	Slate  = lipgloss.Color("#667085")
)

// Record markers.
const (
	Cross   = "✗"
	Warning = "!"
)
