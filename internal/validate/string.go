// Package validate provides input validation for the identifiers and free
// text that end up in result paths, storage keys and rendered pages.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// String validation errors
var (
	ErrStringTooShort    = errors.New("string is too short")
	ErrStringTooLong     = errors.New("string is too long")
	ErrInvalidCharacters = errors.New("string contains invalid characters")
	ErrEmpty             = errors.New("string is empty")
	ErrReservedName      = errors.New("string is a reserved path name")
)

// StringConstraints defines validation constraints for a string.
type StringConstraints struct {
	MinLength      int            // Minimum length (0 = no minimum)
	MaxLength      int            // Maximum length (0 = no maximum)
	AllowedPattern *regexp.Regexp // Optional regex pattern for allowed characters
	AllowEmpty     bool           // Whether empty strings are allowed
	TrimSpace      bool           // Whether to trim whitespace before validation
}

// String validates a string against the given constraints.
// Returns the validated (and optionally trimmed) string and an error if validation fails.
func String(s string, constraints StringConstraints) (string, error) {
	if constraints.TrimSpace {
		s = strings.TrimSpace(s)
	}

	if s == "" {
		if !constraints.AllowEmpty {
			return "", ErrEmpty
		}
		return s, nil
	}

	// Character count, not byte count
	length := utf8.RuneCountInString(s)

	if constraints.MinLength > 0 && length < constraints.MinLength {
		return "", fmt.Errorf("%w: got %d chars, need at least %d", ErrStringTooShort, length, constraints.MinLength)
	}

	if constraints.MaxLength > 0 && length > constraints.MaxLength {
		return "", fmt.Errorf("%w: got %d chars, maximum is %d", ErrStringTooLong, length, constraints.MaxLength)
	}

	if constraints.AllowedPattern != nil && !constraints.AllowedPattern.MatchString(s) {
		return "", fmt.Errorf("%w: does not match required pattern", ErrInvalidCharacters)
	}

	return s, nil
}

// pathComponentPattern rejects separators and control characters.
var pathComponentPattern = regexp.MustCompile(`^[^/\\\x00-\x1f]+$`)

// Length limits for stored values.
const (
	MaxPathComponentLength = 255
	MaxFeedbackLength      = 5000
)

// PathComponent validates a single element of a result path (a tag or
// a track id). Style tags may contain spaces, commas and ampersands, so
// only separators, control characters and dot names are refused.
func PathComponent(s string) (string, error) {
	v, err := String(s, StringConstraints{
		MinLength:      1,
		MaxLength:      MaxPathComponentLength,
		AllowedPattern: pathComponentPattern,
	})
	if err != nil {
		return "", err
	}
	if v == "." || v == ".." {
		return "", fmt.Errorf("%w: %q", ErrReservedName, v)
	}
	return v, nil
}

// Feedback validates optional annotator feedback:
// - Optional (can be empty)
// - Max 5000 characters
// - Stored verbatim; escaping happens at render time
func Feedback(s string) (string, error) {
	return String(s, StringConstraints{
		MaxLength:  MaxFeedbackLength,
		AllowEmpty: true,
	})
}
