package annotation

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"

	"github.com/onnwee/tagqa/internal/identity"
	"github.com/onnwee/tagqa/internal/validate"
)

// ErrNotFound is returned by Store.Get when no record exists for a key.
var ErrNotFound = errors.New("annotation record not found")

// Key addresses one stored record.
type Key struct {
	User  string `json:"user"`
	Tag   string `json:"tag"`
	Track string `json:"track"`
}

// Validate checks that every component is safe to use as a path element.
// User must be a UUID.
func (k Key) Validate() error {
	if _, err := identity.Parse(k.User); err != nil {
		return err
	}
	if _, err := validate.PathComponent(k.Tag); err != nil {
		return fmt.Errorf("invalid tag: %w", err)
	}
	if _, err := validate.PathComponent(k.Track); err != nil {
		return fmt.Errorf("invalid track: %w", err)
	}
	return nil
}

// Path returns the slash separated logical path user/tag/track.
func (k Key) Path() string {
	return path.Join(k.User, k.Tag, k.Track)
}

// Store is a key-value store of encoded records. Put overwrites.
// Implementations do not coordinate concurrent writers.
type Store interface {
	// Get returns the stored bytes or ErrNotFound.
	Get(ctx context.Context, key Key) ([]byte, error)
	// Put creates or overwrites the record.
	Put(ctx context.Context, key Key, data []byte) error
}

// Locator is implemented by stores that can describe where a key lives,
// for corruption warnings.
type Locator interface {
	Location(key Key) string
}

// Location describes where key lives in store.
func Location(store Store, key Key) string {
	if l, ok := store.(Locator); ok {
		return l.Location(key)
	}
	return key.Path()
}

// MemoryStore implements Store with in-memory storage.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[Key][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[Key][]byte)}
}

// Get returns a copy of the stored bytes.
func (s *MemoryStore) Get(ctx context.Context, key Key) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Put stores a copy of data.
func (s *MemoryStore) Put(ctx context.Context, key Key, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.records[key] = stored
	return nil
}

// Location implements Locator.
func (s *MemoryStore) Location(key Key) string {
	return "memory://" + key.Path()
}
