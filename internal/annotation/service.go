package annotation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/onnwee/tagqa/internal/tracing"
	"github.com/onnwee/tagqa/internal/validate"
)

// ErrUnknownAnswer is returned when saving an answer outside the set.
var ErrUnknownAnswer = errors.New("answer is not in the answer set")

// ErrReservedTrack is returned for annotation keys that address the
// confidence record.
var ErrReservedTrack = errors.New("track name is reserved")

// State is what the annotation form shows for one track.
type State struct {
	Key         Key    `json:"key"`
	AnswerIndex int    `json:"answer_index"`
	Answer      string `json:"answer"`
	Feedback    string `json:"feedback"`
	Done        bool   `json:"done"`
	Warning     string `json:"warning,omitempty"`
}

// ConfidenceState is what the familiarity slider shows for one tag.
type ConfidenceState struct {
	Confidence int    `json:"confidence"`
	Warning    string `json:"warning,omitempty"`
	Corrupt    string `json:"corrupt,omitempty"`
}

// Progress summarises the annotation state of a ranked list.
type Progress struct {
	States []State `json:"states"`
	Done   int     `json:"done"`
	Total  int     `json:"total"`
}

// Config configures a Service.
type Config struct {
	Store    Store
	Answers  AnswerSet
	Encoding Encoding
	// Backend names the store in traces.
	Backend string
	// Metrics is optional.
	Metrics *Metrics
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Service loads and saves annotation and confidence records.
type Service struct {
	store    Store
	answers  AnswerSet
	encoding Encoding
	backend  string
	metrics  *Metrics
	logger   *slog.Logger
}

// NewService validates cfg and returns a Service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("annotation store is required")
	}
	if len(cfg.Answers.Answers) == 0 || cfg.Answers.Answers[0] != Unanswered {
		return nil, fmt.Errorf("answer set %q must start with %q", cfg.Answers.Name, Unanswered)
	}
	if _, err := ParseEncoding(string(cfg.Encoding)); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    cfg.Store,
		answers:  cfg.Answers,
		encoding: cfg.Encoding,
		backend:  cfg.Backend,
		metrics:  cfg.Metrics,
		logger:   logger,
	}, nil
}

// Answers returns the configured answer set.
func (s *Service) Answers() AnswerSet {
	return s.answers
}

// Encoding returns the configured record encoding.
func (s *Service) Encoding() Encoding {
	return s.encoding
}

func (s *Service) get(ctx context.Context, key Key) (data []byte, err error) {
	ctx, endSpan := tracing.StartStoreSpan(ctx, s.backend, tracing.StoreOperationGet)
	defer func() {
		if errors.Is(err, ErrNotFound) {
			endSpan(nil)
			return
		}
		endSpan(err)
	}()
	return s.store.Get(ctx, key)
}

func (s *Service) put(ctx context.Context, key Key, data []byte) (err error) {
	ctx, endSpan := tracing.StartStoreSpan(ctx, s.backend, tracing.StoreOperationPut)
	defer func() { endSpan(err) }()
	return s.store.Put(ctx, key, data)
}

func (s *Service) corrupt(ctx context.Context, key Key, cause error) string {
	location := Location(s.store, key)
	s.logger.WarnContext(ctx, "found corrupt results record",
		"location", location,
		"error", cause,
	)
	if s.metrics != nil {
		s.metrics.IncCorruptRecords()
	}
	return "Found corrupt results file: " + location
}

// validateTrackKey validates an annotation key. ConfidenceTrack belongs
// to the confidence record and is never an annotation.
func validateTrackKey(key Key) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if key.Track == ConfidenceTrack {
		return fmt.Errorf("%w: %q", ErrReservedTrack, key.Track)
	}
	return nil
}

// Load returns the stored state of key. A missing record is the
// Unanswered state. A record that cannot be decoded, or that holds an
// answer outside the set, also falls back to Unanswered and carries a
// Warning; only store failures are returned as errors.
func (s *Service) Load(ctx context.Context, key Key) (State, error) {
	if err := validateTrackKey(key); err != nil {
		return State{}, err
	}

	state := State{Key: key, Answer: Unanswered}

	data, err := s.get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return state, nil
	}
	if err != nil {
		return State{}, err
	}

	rec, err := s.encoding.Decode(data)
	if err != nil {
		state.Warning = s.corrupt(ctx, key, err)
		return state, nil
	}

	// Feedback survives an unknown answer.
	state.Feedback = rec.Feedback

	idx, ok := s.answers.Index(rec.Answer)
	if !ok {
		state.Warning = s.corrupt(ctx, key, fmt.Errorf("%w: %q", ErrUnknownAnswer, rec.Answer))
		return state, nil
	}

	state.AnswerIndex = idx
	state.Answer = rec.Answer
	state.Done = idx != 0
	return state, nil
}

// Save overwrites the record for key. Saving the same record twice
// stores identical bytes. Feedback is rejected when the encoding would
// drop it.
func (s *Service) Save(ctx context.Context, key Key, rec Record) error {
	if err := validateTrackKey(key); err != nil {
		return err
	}
	if !s.answers.Contains(rec.Answer) {
		return fmt.Errorf("%w: %q", ErrUnknownAnswer, rec.Answer)
	}
	feedback, err := validate.Feedback(rec.Feedback)
	if err != nil {
		return fmt.Errorf("invalid feedback: %w", err)
	}
	if feedback != "" && !s.encoding.KeepsFeedback() {
		return ErrFeedbackNotStored
	}
	rec.Feedback = feedback

	data, err := s.encoding.Encode(rec)
	if err != nil {
		return err
	}
	if err := s.put(ctx, key, data); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.IncAnnotationsSaved(rec.Answer)
	}
	s.logger.DebugContext(ctx, "annotation saved",
		"user_id", key.User,
		"tag", key.Tag,
		"track", key.Track,
		"answer", rec.Answer,
	)
	return nil
}

func confidenceKey(user, tag string) Key {
	return Key{User: user, Tag: tag, Track: ConfidenceTrack}
}

// LoadConfidence returns the stored confidence for (user, tag), or
// DefaultConfidence when none is stored or the record is corrupt.
func (s *Service) LoadConfidence(ctx context.Context, user, tag string) (ConfidenceState, error) {
	key := confidenceKey(user, tag)
	if err := key.Validate(); err != nil {
		return ConfidenceState{}, err
	}

	state := ConfidenceState{Confidence: DefaultConfidence}

	data, err := s.get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return ConfidenceState{}, err
	default:
		c, decodeErr := decodeConfidence(data)
		if decodeErr != nil {
			state.Corrupt = s.corrupt(ctx, key, decodeErr)
		} else {
			state.Confidence = c
		}
	}

	state.Warning = ConfidenceWarning(tag, state.Confidence)
	if state.Warning != "" && s.metrics != nil {
		s.metrics.IncLowConfidenceViews()
	}
	return state, nil
}

// SaveConfidence overwrites the confidence record for (user, tag).
// Low values are accepted; the warning is advisory only.
func (s *Service) SaveConfidence(ctx context.Context, user, tag string, confidence int) error {
	key := confidenceKey(user, tag)
	if err := key.Validate(); err != nil {
		return err
	}
	if err := validateConfidence(confidence); err != nil {
		return err
	}

	data, err := encodeConfidence(confidence)
	if err != nil {
		return err
	}
	if err := s.put(ctx, key, data); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.IncConfidenceSaved(strconv.Itoa(confidence))
	}
	return nil
}

// Progress loads the state of every track in order and counts the
// answered ones.
func (s *Service) Progress(ctx context.Context, user, tag string, tracks []string) (Progress, error) {
	p := Progress{
		States: make([]State, 0, len(tracks)),
		Total:  len(tracks),
	}
	for _, track := range tracks {
		state, err := s.Load(ctx, Key{User: user, Tag: tag, Track: track})
		if err != nil {
			return Progress{}, err
		}
		if state.Done {
			p.Done++
		}
		p.States = append(p.States, state)
	}
	return p, nil
}
