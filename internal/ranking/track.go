package ranking

// Track is one row of a ranking file. Tracks are immutable once loaded.
type Track struct {
	// ID is the track identifier used as the result file name.
	ID string `json:"id"`
	// Position is the 1-based rank.
	Position int `json:"position"`
	// Activation is the model output exactly as written in the file.
	Activation string  `json:"activation"`
	Score      float64 `json:"score"`
	Title      string  `json:"title,omitempty"`
	// Present reports whether the tag is in the track's ground truth.
	Present   bool   `json:"present"`
	SourceURL string `json:"source_url"`
	AudioURL  string `json:"audio_url"`
}

// Limit returns the first n tracks. n is clamped to [1, len(tracks)].
func Limit(tracks []Track, n int) []Track {
	if n < 1 {
		n = 1
	}
	if n > len(tracks) {
		n = len(tracks)
	}
	return tracks[:n]
}

// IDs returns the track ids in order.
func IDs(tracks []Track) []string {
	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	return ids
}
