package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	DefaultMaxIdentifierLength = 128
	DefaultMaxLineLength       = 64 * 1024
)

// Destination identifiers: alphanumeric, underscore, hyphen and dot
var identifierRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// ErrInputTooLong indicates the input string exceeds the maximum allowed length.
var ErrInputTooLong = errors.New("input exceeds maximum length")

// ErrInvalidChars indicates the input string contains disallowed characters.
var ErrInvalidChars = errors.New("input contains invalid characters")

// IsValidIdentifier checks a destination identifier.
func IsValidIdentifier(id string, maxLength int) error {
	if len(id) > maxLength {
		return fmt.Errorf("%w: got %d, max %d", ErrInputTooLong, len(id), maxLength)
	}
	if !identifierRegex.MatchString(id) {
		return fmt.Errorf("%w: allowed alphanumeric, underscore, hyphen, dot", ErrInvalidChars)
	}
	return nil
}

// SanitizeLine removes control characters (tabs become spaces) so external
// input cannot forge extra log lines or terminal escapes. The result is cut
// to at most maxLength bytes on a rune boundary.
func SanitizeLine(s string, maxLength int) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\t':
			return ' '
		case r == unicode.ReplacementChar, !unicode.IsPrint(r) && r != ' ':
			return -1
		}
		return r
	}, s)
	if len(s) <= maxLength {
		return s
	}
	cut := maxLength
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
