package ui

import "fmt"

// ANSI256 color codes matching the Ayu palette.
const (
	colorWarn  = 214 // orange
	colorMuted = 245 // medium gray
)

var noColor bool

// RenderWarning returns s in the warning (orange) color.
func RenderWarning(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorWarn, s)
}

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorMuted, s)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
