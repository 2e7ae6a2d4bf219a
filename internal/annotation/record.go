package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Encoding selects how a Record is serialized into the store.
type Encoding string

const (
	// EncodingText stores the bare answer string. Feedback is not kept.
	EncodingText Encoding = "text"
	// EncodingJSON stores {"answer": ..., "feedback": ...}.
	EncodingJSON Encoding = "json"
)

// ErrCorruptRecord is returned when stored bytes cannot be decoded.
var ErrCorruptRecord = errors.New("corrupt annotation record")

// ErrUnknownEncoding is returned for an unsupported Encoding value.
var ErrUnknownEncoding = errors.New("unknown record encoding")

// ErrFeedbackNotStored is returned when saving feedback under an
// encoding that cannot hold it.
var ErrFeedbackNotStored = errors.New("feedback is not stored for this variant")

// Record is the stored judgment for one track.
type Record struct {
	Answer   string `json:"answer"`
	Feedback string `json:"feedback"`
}

// jsonRecord distinguishes a missing answer from an empty one.
type jsonRecord struct {
	Answer   *string `json:"answer"`
	Feedback string  `json:"feedback"`
}

// ParseEncoding validates an encoding name.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(s) {
	case EncodingText, EncodingJSON:
		return Encoding(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, s)
	}
}

// KeepsFeedback reports whether records in this encoding carry feedback.
func (e Encoding) KeepsFeedback() bool {
	return e == EncodingJSON
}

// Encode serializes r.
func (e Encoding) Encode(r Record) ([]byte, error) {
	switch e {
	case EncodingText:
		return []byte(r.Answer), nil
	case EncodingJSON:
		return json.Marshal(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, e)
	}
}

// Decode parses stored bytes. A JSON body without an answer field, or
// one that is not JSON at all, is ErrCorruptRecord.
func (e Encoding) Decode(data []byte) (Record, error) {
	switch e {
	case EncodingText:
		return Record{Answer: strings.TrimSpace(string(data))}, nil
	case EncodingJSON:
		var jr jsonRecord
		if err := json.Unmarshal(data, &jr); err != nil {
			return Record{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
		}
		if jr.Answer == nil {
			return Record{}, fmt.Errorf("%w: missing answer", ErrCorruptRecord)
		}
		return Record{Answer: *jr.Answer, Feedback: jr.Feedback}, nil
	default:
		return Record{}, fmt.Errorf("%w: %q", ErrUnknownEncoding, e)
	}
}
