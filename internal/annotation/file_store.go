package annotation

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/onnwee/tagqa/internal/fsutil"
)

// FileStore writes one file per key at <root>/<user>/<tag>/<track>.
// Parent directories are created on demand. Writes truncate in place
// without a temporary file, so a crash mid-write can leave a partial
// record; Service.Load reports such files as corrupt.
type FileStore struct {
	fs   fsutil.FileSystem
	root string
}

// NewFileStore creates a FileStore rooted at root. A nil fsys uses the
// OS filesystem.
func NewFileStore(fsys fsutil.FileSystem, root string) *FileStore {
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	return &FileStore{fs: fsys, root: root}
}

// Location returns the file path for key.
func (s *FileStore) Location(key Key) string {
	return filepath.Join(s.root, key.User, key.Tag, key.Track)
}

// Get reads the file for key. A missing file, or a directory in its
// place, is ErrNotFound.
func (s *FileStore) Get(ctx context.Context, key Key) ([]byte, error) {
	p := s.Location(key)
	if !fsutil.IsFile(s.fs, p) {
		return nil, ErrNotFound
	}
	data, err := s.fs.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return data, nil
}

// Put overwrites the file for key.
func (s *FileStore) Put(ctx context.Context, key Key, data []byte) error {
	p := s.Location(key)
	if err := s.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(p), err)
	}
	if err := s.fs.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return nil
}
