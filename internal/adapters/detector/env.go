// Package detector provides environment detection for log format selection.
package detector

import (
	"os"

	"golang.org/x/term"
)

// Format is the record format used by the logger.
type Format string

const (
	// FormatAuto picks a format from the environment.
	FormatAuto Format = "auto"
	// FormatPretty renders colored, human-readable lines.
	FormatPretty Format = "pretty"
	// FormatJSON renders one JSON object per record.
	FormatJSON Format = "json"
	// FormatActions renders GitHub Actions workflow commands.
	FormatActions Format = "actions"
)

// ParseFormat maps a user-supplied format name to a Format.
// An empty name is treated as auto.
func ParseFormat(name string) (Format, bool) {
	switch Format(name) {
	case FormatAuto, "":
		return FormatAuto, true
	case FormatPretty, FormatJSON, FormatActions:
		return Format(name), true
	default:
		return "", false
	}
}

// DetectFormat returns the recommended format for the current process.
func DetectFormat() Format {
	return detect(os.Getenv, term.IsTerminal(int(os.Stderr.Fd())))
}

func detect(getenv func(string) string, stderrIsTTY bool) Format {
	if getenv("GITHUB_ACTIONS") == "true" {
		return FormatActions
	}

	ci := getenv("CI")
	isCI := ci == "true" || ci == "1"

	// Piped output outside CI usually feeds a log collector.
	if !stderrIsTTY && !isCI {
		return FormatJSON
	}
	return FormatPretty
}
