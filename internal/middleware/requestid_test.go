package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestValidRequestID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{name: "uuid", id: "550e8400-e29b-41d4-a716-446655440000", want: true},
		{name: "upstream id", id: "edge-7f3a-000123", want: true},
		{name: "max length", id: strings.Repeat("a", MaxRequestIDLength), want: true},
		{name: "empty", id: "", want: false},
		{name: "too long", id: strings.Repeat("a", MaxRequestIDLength+1), want: false},
		{name: "newline", id: "abc\nuser_id=forged", want: false},
		{name: "carriage return", id: "abc\rdef", want: false},
		{name: "space", id: "abc def", want: false},
		{name: "quote", id: `abc"def`, want: false},
		{name: "underscore", id: "abc_def", want: false},
		{name: "non ascii", id: "abcé", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidRequestID(tt.id); got != tt.want {
				t.Errorf("ValidRequestID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestRequestID_HeaderHandling(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "no header", incoming: "", keep: false},
		{name: "valid header", incoming: "annotate-run-42", keep: true},
		{name: "log injection", incoming: "x\nlevel=ERROR msg=forged", keep: false},
		{name: "oversized", incoming: strings.Repeat("b", 500), keep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fromContext string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fromContext = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/identity", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			echoed := rr.Header().Get(RequestIDHeader)
			if echoed != fromContext {
				t.Errorf("response id %q differs from context id %q", echoed, fromContext)
			}
			if tt.keep {
				if echoed != tt.incoming {
					t.Errorf("expected %q to be kept, got %q", tt.incoming, echoed)
				}
				return
			}
			if _, err := uuid.Parse(echoed); err != nil {
				t.Errorf("expected a generated UUID, got %q", echoed)
			}
		})
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := GetRequestID(req.Context()); id != "" {
		t.Errorf("expected empty id, got %q", id)
	}
}
