package ranking

import (
	"errors"
	"testing"
)

func TestFormatByName(t *testing.T) {
	f, err := FormatByName("style-retrieval")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.TopN != 100 || f.Comma != '\t' {
		t.Errorf("unexpected format %+v", f)
	}
	if _, err := FormatByName("other"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestFormat_Count(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		n      int
		want   int
	}{
		{name: "style default", format: StyleRetrieval, n: 0, want: 5},
		{name: "style requested", format: StyleRetrieval, n: 42, want: 42},
		{name: "style above max", format: StyleRetrieval, n: 500, want: 100},
		{name: "negative uses default", format: StyleRetrieval, n: -3, want: 5},
		{name: "tag default is topn", format: TagRetrieval, n: 0, want: 20},
		{name: "lowered topn clamps default", format: StyleRetrieval.WithTopN(3), n: 0, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.Count(tt.n); got != tt.want {
				t.Errorf("Count(%d) = %d, want %d", tt.n, got, tt.want)
			}
		})
	}
}

func TestFormat_TrackID(t *testing.T) {
	tests := []struct {
		format  Format
		raw     string
		want    string
		wantErr bool
	}{
		{format: TagRetrieval, raw: "37/1234567.mp3", want: "1234567"},
		{format: TagRetrieval, raw: "00/7.mp3", want: "7"},
		{format: TagRetrieval, raw: "1234567.mp3", wantErr: true},
		{format: TagRetrieval, raw: "37/.mp3", wantErr: true},
		{format: StyleRetrieval, raw: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{format: StyleRetrieval, raw: "https://youtu.be/dQw4w9WgXcQ", wantErr: true},
	}
	for _, tt := range tests {
		got, err := tt.format.TrackID(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("TrackID(%q): expected error, got %q", tt.raw, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("TrackID(%q) = (%q, %v), want %q", tt.raw, got, err, tt.want)
		}
	}
}

func TestFormat_AudioURL(t *testing.T) {
	if got := TagRetrieval.AudioURL("42", "01/42.mp3"); got != "https://mp3d.jamendo.com/?trackid=42&format=mp32#t=0,120" {
		t.Errorf("unexpected jamendo url %s", got)
	}
	custom := TagRetrieval.WithAudioURLTemplate("https://cdn.example.com/{id}.mp3")
	if got := custom.AudioURL("42", "01/42.mp3"); got != "https://cdn.example.com/42.mp3" {
		t.Errorf("unexpected custom url %s", got)
	}
	if got := TagRetrieval.WithAudioURLTemplate("").AudioURLTemplate; got != DefaultJamendoAudioURL {
		t.Errorf("empty template should keep default, got %s", got)
	}
}

func TestLimit(t *testing.T) {
	tracks := []Track{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	if got := Limit(tracks, 2); len(got) != 2 || got[1].ID != "b" {
		t.Errorf("Limit(2) = %v", got)
	}
	if got := Limit(tracks, 10); len(got) != 3 {
		t.Errorf("Limit(10) should return all, got %d", len(got))
	}
	if got := Limit(tracks, 0); len(got) != 1 {
		t.Errorf("Limit(0) should clamp to 1, got %d", len(got))
	}
	if got := Limit(nil, 5); len(got) != 0 {
		t.Errorf("Limit on empty should be empty, got %d", len(got))
	}
	if got := IDs(tracks); len(got) != 3 || got[2] != "c" {
		t.Errorf("IDs = %v", got)
	}
}
