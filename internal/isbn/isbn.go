// file: internal/isbn/isbn.go
// version: 1.0.0
// guid: 77297e49-dfbc-4a70-9075-acc3adf6e060

// Package isbn canonicalizes scanned or typed book identifiers.
//
// A canonical identifier is either 13 digits or 9 digits followed by a
// digit or an upper-case X. Only canonical identifiers are used as cache
// keys or as provider query parameters.
package isbn

import (
	"errors"
	"log"
	"strings"
	"unicode"
)

// ErrInvalidIdentifier is returned when input does not normalize to a
// canonical 10 or 13 character identifier.
var ErrInvalidIdentifier = errors.New("invalid book identifier")

// Normalize trims the input, keeps only digits and the letter X (any case)
// and upper-cases the result. Length is not checked.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'x' || r == 'X':
			b.WriteRune('X')
		}
	}
	return b.String()
}

// IsValid reports whether raw normalizes to a canonical identifier.
func IsValid(raw string) bool {
	return isCanonicalForm(Normalize(raw))
}

// IsCanonical reports whether s is already in canonical form, without
// applying any normalization.
func IsCanonical(s string) bool {
	return isCanonicalForm(s)
}

// Canonicalize normalizes raw and validates the result.
func Canonicalize(raw string) (string, error) {
	normalized := Normalize(raw)
	if !isCanonicalForm(normalized) {
		if strings.TrimSpace(raw) != "" {
			log.Printf("[DEBUG] isbn: rejecting %q (normalized %q, length %d)", raw, normalized, len(normalized))
		}
		return "", ErrInvalidIdentifier
	}
	return normalized, nil
}

func isCanonicalForm(s string) bool {
	switch len(s) {
	case 13:
		return allDigits(s)
	case 10:
		last := rune(s[9])
		return allDigits(s[:9]) && (unicode.IsDigit(last) || last == 'X')
	default:
		return false
	}
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
