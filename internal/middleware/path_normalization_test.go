package middleware

import (
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		// Static routes - no normalization
		{name: "root path", path: "/", expected: "/"},
		{name: "annotate form", path: "/annotate", expected: "/annotate"},
		{name: "confidence form", path: "/confidence", expected: "/confidence"},
		{name: "identity", path: "/api/identity", expected: "/api/identity"},
		{name: "catalog", path: "/api/catalog", expected: "/api/catalog"},
		{name: "rankings", path: "/api/rankings", expected: "/api/rankings"},
		{name: "health endpoint", path: "/health", expected: "/health"},
		{name: "ready endpoint", path: "/ready", expected: "/ready"},
		{name: "metrics endpoint", path: "/metrics", expected: "/metrics"},

		// Annotation records
		{
			name:     "annotation by uuid",
			path:     "/api/annotations/550e8400-e29b-41d4-a716-446655440000/Electronic---Dub/dQw4w9WgXcQ",
			expected: "/api/annotations/{user}/{tag}/{track}",
		},
		{
			name:     "annotation with escaped tag",
			path:     "/api/annotations/550e8400-e29b-41d4-a716-446655440000/Folk, World, & Country/123",
			expected: "/api/annotations/{user}/{tag}/{track}",
		},
		{
			name:     "annotation missing track",
			path:     "/api/annotations/550e8400-e29b-41d4-a716-446655440000/Dub",
			expected: "/api/{invalid}",
		},

		// Confidence records
		{
			name:     "confidence",
			path:     "/api/confidence/550e8400-e29b-41d4-a716-446655440000/rock",
			expected: "/api/confidence/{user}/{tag}",
		},
		{
			name:     "confidence with extra segment",
			path:     "/api/confidence/550e8400-e29b-41d4-a716-446655440000/rock/extra",
			expected: "/api/{invalid}",
		},

		// Unknown paths
		{name: "unknown path", path: "/favicon.ico", expected: "/favicon.ico"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := normalizePath(tt.path); result != tt.expected {
				t.Errorf("normalizePath(%q) = %q, want %q", tt.path, result, tt.expected)
			}
		})
	}
}

func BenchmarkNormalizePath(b *testing.B) {
	paths := []string{
		"/",
		"/api/rankings",
		"/api/annotations/550e8400-e29b-41d4-a716-446655440000/Dub/dQw4w9WgXcQ",
		"/api/confidence/550e8400-e29b-41d4-a716-446655440000/Dub",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		normalizePath(paths[i%len(paths)])
	}
}
