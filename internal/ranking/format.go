package ranking

import (
	"errors"
	"fmt"
	"strings"
)

// Format names.
const (
	FormatTagRetrieval   = "tag-retrieval"
	FormatStyleRetrieval = "style-retrieval"
)

// ErrUnknownFormat is returned by FormatByName.
var ErrUnknownFormat = errors.New("unknown ranking format")

// youTubeWatchPrefix precedes the video id in style retrieval rankings.
const youTubeWatchPrefix = "https://www.youtube.com/watch?v="

// DefaultJamendoAudioURL streams the first two minutes of a Jamendo track.
const DefaultJamendoAudioURL = "https://mp3d.jamendo.com/?trackid={id}&format=mp32#t=0,120"

// Format describes the column layout of one family of ranking files.
type Format struct {
	Name string
	// Comma is the field delimiter.
	Comma rune
	// TopN caps how many rows are read from each file.
	TopN int
	// DefaultCount is how many tracks are shown when no count is requested.
	DefaultCount int

	IDColumn       string
	ScoreColumn    string
	PositionColumn string // optional
	TitleColumn    string // optional
	PresentColumn  string // optional

	// AudioURLTemplate expands {id} to the track id and {url} to the raw
	// id cell.
	AudioURLTemplate string

	trackID func(raw string) (string, error)
}

// TagRetrieval reads comma separated Jamendo rankings with an
// "id,prediction,position" header, where id looks like "37/1234567.mp3".
var TagRetrieval = Format{
	Name:             FormatTagRetrieval,
	Comma:            ',',
	TopN:             20,
	DefaultCount:     20,
	IDColumn:         "id",
	ScoreColumn:      "prediction",
	PositionColumn:   "position",
	AudioURLTemplate: DefaultJamendoAudioURL,
	trackID:          jamendoTrackID,
}

// StyleRetrieval reads tab separated rankings with a
// "YouTube,activation,title,present" header.
var StyleRetrieval = Format{
	Name:             FormatStyleRetrieval,
	Comma:            '\t',
	TopN:             100,
	DefaultCount:     5,
	IDColumn:         "YouTube",
	ScoreColumn:      "activation",
	TitleColumn:      "title",
	PresentColumn:    "present",
	AudioURLTemplate: "{url}",
	trackID:          youTubeTrackID,
}

// FormatByName returns one of the predefined formats.
func FormatByName(name string) (Format, error) {
	switch name {
	case FormatTagRetrieval:
		return TagRetrieval, nil
	case FormatStyleRetrieval:
		return StyleRetrieval, nil
	default:
		return Format{}, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// WithTopN returns a copy of f reading at most n rows. Non-positive n
// leaves f unchanged.
func (f Format) WithTopN(n int) Format {
	if n > 0 {
		f.TopN = n
		if f.DefaultCount > n {
			f.DefaultCount = n
		}
	}
	return f
}

// WithAudioURLTemplate returns a copy of f using tmpl for playback URLs.
// An empty tmpl leaves f unchanged.
func (f Format) WithAudioURLTemplate(tmpl string) Format {
	if tmpl != "" {
		f.AudioURLTemplate = tmpl
	}
	return f
}

// Count clamps a requested number of tracks into [1, TopN]. Zero or
// negative requests get DefaultCount.
func (f Format) Count(n int) int {
	if n <= 0 {
		n = f.DefaultCount
	}
	if n < 1 {
		n = 1
	}
	if n > f.TopN {
		n = f.TopN
	}
	return n
}

// TrackID extracts the track id from the raw id cell.
func (f Format) TrackID(raw string) (string, error) {
	if f.trackID == nil {
		return strings.TrimSpace(raw), nil
	}
	return f.trackID(raw)
}

// AudioURL builds the playback URL of a track.
func (f Format) AudioURL(id, raw string) string {
	return strings.NewReplacer("{id}", id, "{url}", raw).Replace(f.AudioURLTemplate)
}

// jamendoTrackID turns "37/1234567.mp3" into "1234567".
func jamendoTrackID(raw string) (string, error) {
	_, rest, ok := strings.Cut(raw, "/")
	if !ok {
		return "", fmt.Errorf("id %q has no directory part", raw)
	}
	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}
	id, _, _ := strings.Cut(rest, ".mp3")
	if id == "" {
		return "", fmt.Errorf("id %q has an empty track part", raw)
	}
	return id, nil
}

// youTubeTrackID keeps the part of a watch URL after "?v=".
func youTubeTrackID(raw string) (string, error) {
	id, ok := strings.CutPrefix(raw, youTubeWatchPrefix)
	if !ok || id == "" {
		return "", fmt.Errorf("%q is not a YouTube watch URL", raw)
	}
	return id, nil
}
