package device

import (
	"strings"
	"unicode"
)

// CleanName strips trailing NUL padding and surrounding whitespace from a raw GAP name.
func CleanName(raw []byte) string {
	return strings.TrimSpace(strings.TrimRight(string(raw), "\x00"))
}

// IsValidDeviceName rejects values that are unlikely to be a human-readable device name,
// such as binary payloads read from an arbitrary characteristic.
func IsValidDeviceName(name string) bool {
	if len(name) < 3 || len(name) > 32 {
		return false
	}

	// Must contain at least one letter
	for _, r := range name {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
