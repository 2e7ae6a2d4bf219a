// Package annotation persists annotator judgments for (user, tag, track)
// triples and the per-(user, tag) confidence self-assessment.
//
// Records live in a key-value Store. The default backend writes one flat
// file per key under results/<user>/<tag>/<track>; Redis, S3 and SQLite
// backends store the same bytes under the same logical key. Writes are
// plain overwrites: last write wins, and a record that fails to decode is
// reported as corrupt and treated as unanswered instead of failing.
package annotation

import (
	"errors"
	"fmt"
)

// Unanswered is the default answer of every set and the state of a
// track that has no stored record.
const Unanswered = "Unanswered"

// ErrUnknownAnswerSet is returned by AnswerSetByName.
var ErrUnknownAnswerSet = errors.New("unknown answer set")

// AnswerSet is a closed, ordered enum of answers. Index 0 is always
// Unanswered.
type AnswerSet struct {
	Name    string   `json:"name"`
	Answers []string `json:"answers"`
	Help    string   `json:"help,omitempty"`
}

// YesNo is used by the tag retrieval review.
var YesNo = AnswerSet{
	Name:    "yes-no",
	Answers: []string{Unanswered, "Yes", "No"},
	Help:    "Yes: the tag applies to this track. No: it does not.",
}

// Correctness is used by the style retrieval review.
var Correctness = AnswerSet{
	Name:    "correctness",
	Answers: []string{Unanswered, "Correct", "Somewhat correct", "Incorrect"},
	Help: "Correct: The style prediction of this track is definitely correct.\n" +
		"Somewhat correct: The track belongs to another related style that shares characteristics with this style. " +
		"Therefore, this prediction makes some sense.\n" +
		"Incorrect: The style prediction of this track is definitely incorrect.",
}

// AnswerSetByName returns one of the predefined answer sets.
func AnswerSetByName(name string) (AnswerSet, error) {
	switch name {
	case YesNo.Name:
		return YesNo, nil
	case Correctness.Name:
		return Correctness, nil
	default:
		return AnswerSet{}, fmt.Errorf("%w: %q", ErrUnknownAnswerSet, name)
	}
}

// Index returns the position of answer in the set.
func (s AnswerSet) Index(answer string) (int, bool) {
	for i, a := range s.Answers {
		if a == answer {
			return i, true
		}
	}
	return 0, false
}

// Contains reports whether answer belongs to the set.
func (s AnswerSet) Contains(answer string) bool {
	_, ok := s.Index(answer)
	return ok
}

// At returns the answer at index i, or Unanswered when out of range.
func (s AnswerSet) At(i int) string {
	if i < 0 || i >= len(s.Answers) {
		return Unanswered
	}
	return s.Answers[i]
}
