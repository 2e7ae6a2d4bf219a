package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Confidence is the annotator's self-reported familiarity with a tag.
const (
	MinConfidence       = 0
	MaxConfidence       = 4
	DefaultConfidence   = 2
	ConfidenceThreshold = 2
)

// ConfidenceTrack is the sentinel track name under which the confidence
// record of a (user, tag) pair is stored.
const ConfidenceTrack = "_confidence"

// ErrConfidenceOutOfRange is returned when saving a value outside 0-4.
var ErrConfidenceOutOfRange = errors.New("confidence out of range")

type confidenceRecord struct {
	Confidence *int `json:"confidence"`
}

// ConfidenceWarning returns the advisory shown when confidence is below
// the threshold. It never blocks annotation.
func ConfidenceWarning(tag string, confidence int) string {
	if confidence >= ConfidenceThreshold {
		return ""
	}
	return fmt.Sprintf("Your confidence level is too low to be able to annotate %s", tag)
}

func validateConfidence(c int) error {
	if c < MinConfidence || c > MaxConfidence {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrConfidenceOutOfRange, c, MinConfidence, MaxConfidence)
	}
	return nil
}

func encodeConfidence(c int) ([]byte, error) {
	return json.Marshal(confidenceRecord{Confidence: &c})
}

func decodeConfidence(data []byte) (int, error) {
	var cr confidenceRecord
	if err := json.Unmarshal(data, &cr); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if cr.Confidence == nil {
		return 0, fmt.Errorf("%w: missing confidence", ErrCorruptRecord)
	}
	if err := validateConfidence(*cr.Confidence); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return *cr.Confidence, nil
}
