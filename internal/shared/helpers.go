// Package shared provides small helpers used across multiple packages
// in the orgtasks codebase.
package shared

import (
	"path/filepath"
	"strings"
)

// recordIDLength is the length of a full platform record identifier.
const recordIDLength = 18

// RecordIDFromIdentity extracts the trailing 18-character record id
// from an identity URL returned by the identity endpoint.
func RecordIDFromIdentity(identity string) string {
	if len(identity) <= recordIDLength {
		return identity
	}
	return identity[len(identity)-recordIDLength:]
}

// FileTitle returns a file name without its extension.
func FileTitle(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
