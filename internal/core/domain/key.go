package domain

import (
	"fmt"
	"strings"
)

const (
	// MaxKeyLength is the longest key the cache store accepts.
	MaxKeyLength = 512

	// MaxKeyCount is the most keys (primary plus fallbacks) a single restore may try.
	MaxKeyCount = 10
)

// ValidateKeys checks the primary key and fallback keys of a restore or save.
func ValidateKeys(primary string, fallbacks []string) error {
	keys := make([]string, 0, len(fallbacks)+1)
	keys = append(keys, primary)
	keys = append(keys, fallbacks...)

	if len(keys) > MaxKeyCount {
		return NewValidationError(fmt.Sprintf("Key Validation Error: Keys are limited to a maximum of %d.", MaxKeyCount))
	}

	for _, key := range keys {
		if err := ValidateKey(key); err != nil {
			return err
		}
	}
	return nil
}

// ValidateKey checks a single key.
func ValidateKey(key string) error {
	if len(key) > MaxKeyLength {
		return NewValidationError(fmt.Sprintf(
			"Key Validation Error: %s cannot be larger than %d characters.", key, MaxKeyLength,
		))
	}
	if strings.Contains(key, ",") {
		return NewValidationError(fmt.Sprintf("Key Validation Error: %s cannot contain commas.", key))
	}
	return nil
}

// ValidatePaths checks that a save was given something to cache.
func ValidatePaths(paths []string) error {
	if len(paths) == 0 {
		return NewValidationError("Path Validation Error: At least one directory or file path is required")
	}
	return nil
}

// IsExactKeyMatch reports whether the matched key is the requested key.
// The comparison ignores case, the same way the cache service treats keys.
func IsExactKeyMatch(key, matched string) bool {
	return matched != "" && strings.EqualFold(key, matched)
}
