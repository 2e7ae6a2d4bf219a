// Package identity validates the client-supplied user identifier that
// partitions every stored annotation.
//
// Identifiers are plain UUID strings chosen by the annotator. Nothing is
// registered server side: an annotator keeps their UUID and reuses it on
// later visits to continue where they left off.
package identity

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidUserID is returned when a candidate identifier is not a UUID.
var ErrInvalidUserID = errors.New("user id is not a valid UUID")

// Messages shown next to the identity input.
const (
	MessageInvalid    = "You need to provide a valid UUID."
	MessageSuggestion = "If you do not have an assigned user UUID yet, we generated one for you:"
	MessageKeepSafe   = "Please, write it down and keep it safe to use it for all your future annotation sessions."
)

// Result is the outcome of checking a candidate identifier.
type Result struct {
	Valid      bool   `json:"valid"`
	UserID     string `json:"user_id,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Generator produces fresh identifiers. Tests replace it for determinism.
type Generator func() string

// NewUUID is the default Generator.
func NewUUID() string {
	return uuid.New().String()
}

// Parse returns the canonical form of candidate, or ErrInvalidUserID.
func Parse(candidate string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(candidate))
	if err != nil {
		return "", ErrInvalidUserID
	}
	return id.String(), nil
}

// IsValid reports whether candidate parses as a UUID.
func IsValid(candidate string) bool {
	_, err := Parse(candidate)
	return err == nil
}

// Checker validates identifiers and suggests replacements for bad ones.
type Checker struct {
	generate Generator
}

// NewChecker creates a Checker. A nil generator falls back to NewUUID.
func NewChecker(generate Generator) *Checker {
	if generate == nil {
		generate = NewUUID
	}
	return &Checker{generate: generate}
}

// Check validates candidate. A valid candidate is returned in canonical
// form. Otherwise a freshly generated UUID is suggested; the invalid
// message is only set when the annotator actually typed something.
func (c *Checker) Check(candidate string) Result {
	if id, err := Parse(candidate); err == nil {
		return Result{Valid: true, UserID: id}
	}

	res := Result{Suggestion: c.generate()}
	if strings.TrimSpace(candidate) != "" {
		res.Message = MessageInvalid
	}
	return res
}
