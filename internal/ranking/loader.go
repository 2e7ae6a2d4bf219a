package ranking

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/tagqa/internal/fsutil"
	"github.com/onnwee/tagqa/internal/tracing"
	"github.com/onnwee/tagqa/internal/validate"
)

// Ranking load errors.
var (
	ErrRankingNotFound = errors.New("ranking file not found")
	ErrMissingColumn   = errors.New("ranking file is missing a required column")
	ErrMalformedRow    = errors.New("malformed ranking row")
)

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	Format Format
	// FS defaults to the OS filesystem.
	FS fsutil.FileSystem
	// Cache is optional; without one every Load parses the file.
	Cache *Cache
	// Metrics is optional.
	Metrics *Metrics
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Loader reads ranking files of a single Format.
type Loader struct {
	format  Format
	fs      fsutil.FileSystem
	cache   *Cache
	metrics *Metrics
	logger  *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(cfg LoaderConfig) *Loader {
	fsys := cfg.FS
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		format:  cfg.Format,
		fs:      fsys,
		cache:   cfg.Cache,
		metrics: cfg.Metrics,
		logger:  logger,
	}
}

// Format returns the format the loader parses.
func (l *Loader) Format() Format {
	return l.format
}

// Load returns the first TopN tracks of the ranking file at path, in
// file order. Results are served from the cache when one is configured.
func (l *Loader) Load(ctx context.Context, path string) (tracks []Track, err error) {
	if l.cache != nil {
		if cached, ok := l.cache.Get(path); ok {
			if l.metrics != nil {
				l.metrics.IncCacheHits()
			}
			return cached, nil
		}
		if l.metrics != nil {
			l.metrics.IncCacheMisses()
		}
	}

	ctx, endSpan := tracing.StartSpan(ctx, "ranking.load")
	defer func() { endSpan(err) }()
	tracing.SetAttributes(ctx,
		attribute.String("ranking.path", path),
		attribute.String("ranking.format", l.format.Name),
	)

	start := time.Now()
	tracks, err = l.parseFile(path)
	if err != nil {
		if l.metrics != nil {
			l.metrics.IncLoadErrors(errorReason(err))
		}
		return nil, err
	}
	if l.metrics != nil {
		l.metrics.ObserveLoadDuration(time.Since(start).Seconds())
	}

	l.logger.DebugContext(ctx, "ranking loaded",
		"path", path,
		"tracks", len(tracks),
	)

	if l.cache != nil {
		l.cache.Put(path, tracks)
	}
	return tracks, nil
}

func (l *Loader) parseFile(path string) ([]Track, error) {
	data, err := l.fs.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrRankingNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ranking file %s: %w", path, err)
	}

	tracks, err := l.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tracks, nil
}

// Parse reads up to TopN tracks from r. The first record is the header.
func (l *Loader) Parse(r io.Reader) ([]Track, error) {
	f := l.format

	cr := csv.NewReader(r)
	cr.Comma = f.Comma
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	cols := columnIndex(header)

	idCol, ok := lookup(cols, f.IDColumn)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, f.IDColumn)
	}
	scoreCol, ok := lookup(cols, f.ScoreColumn)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, f.ScoreColumn)
	}
	positionCol, hasPosition := lookup(cols, f.PositionColumn)
	titleCol, hasTitle := lookup(cols, f.TitleColumn)
	presentCol, hasPresent := lookup(cols, f.PresentColumn)

	tracks := make([]Track, 0, f.TopN)
	for len(tracks) < f.TopN {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row := len(tracks) + 1
		if err != nil {
			return nil, fmt.Errorf("%w %d: %v", ErrMalformedRow, row, err)
		}

		raw := strings.TrimSpace(record[idCol])
		id, err := f.TrackID(raw)
		if err != nil {
			return nil, fmt.Errorf("%w %d: %v", ErrMalformedRow, row, err)
		}
		if _, err := validate.PathComponent(id); err != nil {
			return nil, fmt.Errorf("%w %d: track id: %v", ErrMalformedRow, row, err)
		}

		activation := strings.TrimSpace(record[scoreCol])
		score, err := strconv.ParseFloat(activation, 64)
		if err != nil {
			return nil, fmt.Errorf("%w %d: activation %q", ErrMalformedRow, row, activation)
		}

		position := row
		if hasPosition {
			p, err := strconv.Atoi(strings.TrimSpace(record[positionCol]))
			if err != nil {
				return nil, fmt.Errorf("%w %d: position %q", ErrMalformedRow, row, record[positionCol])
			}
			position = p
		}

		audioURL, err := validate.PlaybackURL(f.AudioURL(id, raw))
		if err != nil {
			return nil, fmt.Errorf("%w %d: audio url: %v", ErrMalformedRow, row, err)
		}

		t := Track{
			ID:         id,
			Position:   position,
			Activation: activation,
			Score:      score,
			SourceURL:  raw,
			AudioURL:   audioURL,
		}
		if hasTitle {
			t.Title = strings.TrimSpace(record[titleCol])
		}
		if hasPresent {
			t.Present = strings.TrimSpace(record[presentCol]) != ""
		}
		tracks = append(tracks, t)
	}

	return tracks, nil
}

// columnIndex maps header names to positions. The first occurrence of a
// duplicated name wins.
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

func lookup(cols map[string]int, name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	i, ok := cols[name]
	return i, ok
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, ErrRankingNotFound):
		return "not_found"
	case errors.Is(err, ErrMissingColumn):
		return "missing_column"
	case errors.Is(err, ErrMalformedRow):
		return "malformed_row"
	default:
		return "io"
	}
}
