package logger

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// messager describes an error that can report its own message without the chain.
// zerr.Error implements it.
type messager interface {
	Message() string
}

// metadataer describes an error carrying structured metadata.
type metadataer interface {
	Metadata() map[string]any
}

// ErrorEntry is one link of an error chain prepared for display.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// collectErrorEntries walks the chain of zerr errors. The first non-zerr error
// ends the walk and contributes its full Error() text.
// Links with an empty message only carry metadata and are folded into the next entry.
func collectErrorEntries(err error) []ErrorEntry {
	var entries []ErrorEntry
	var pending map[string]any

	for current := err; current != nil; {
		m, ok := current.(messager)
		if !ok {
			entries = append(entries, ErrorEntry{Message: current.Error(), Metadata: pending})
			break
		}

		meta := map[string]any{}
		maps.Copy(meta, pending)
		if md, ok := current.(metadataer); ok {
			maps.Copy(meta, md.Metadata())
		}

		if m.Message() == "" {
			pending = meta
			current = errors.Unwrap(current)
			continue
		}

		entries = append(entries, ErrorEntry{Message: m.Message(), Metadata: meta})
		pending = nil
		current = errors.Unwrap(current)
	}

	return entries
}

// formatErrorEntries renders entries as:
//
//	Error: <message>
//	       key: value
//
//	  Caused by:
//	    → <cause>
func formatErrorEntries(entries []ErrorEntry) string {
	var lines []string

	for i, entry := range entries {
		msgLines := strings.Split(entry.Message, "\n")

		if i == 0 {
			lines = append(lines, "Error: "+msgLines[0])
			for _, line := range msgLines[1:] {
				lines = append(lines, "       "+line)
			}
			lines = append(lines, formatMetadata(entry.Metadata, "       ")...)
			continue
		}

		if i == 1 {
			lines = append(lines, "", "  Caused by:")
		}
		lines = append(lines, "    → "+msgLines[0])
		for _, line := range msgLines[1:] {
			lines = append(lines, "      "+line)
		}
		lines = append(lines, formatMetadata(entry.Metadata, "      ")...)
	}

	return strings.Join(lines, "\n")
}

func formatMetadata(meta map[string]any, indent string) []string {
	lines := make([]string, 0, len(meta))
	for _, key := range slices.Sorted(maps.Keys(meta)) {
		lines = append(lines, fmt.Sprintf("%s%s: %v", indent, key, meta[key]))
	}
	return lines
}
