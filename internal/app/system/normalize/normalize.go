// Package normalize canonicalizes user-supplied identifiers before they are
// stored or used in lookups.
package normalize

import (
	"net/mail"
	"strings"
)

// Email trims surrounding whitespace and lowercases the address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidEmail reports whether s (after normalization) is a bare address
// such as "user@example.com". Display-name forms are rejected.
func ValidEmail(s string) bool {
	s = Email(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && addr.Name == ""
}
