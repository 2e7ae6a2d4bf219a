package identity

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		want      string
		wantErr   bool
	}{
		{
			name:      "canonical lowercase",
			candidate: "3f2504e0-4f89-41d3-9a0c-0305e82c3301",
			want:      "3f2504e0-4f89-41d3-9a0c-0305e82c3301",
		},
		{
			name:      "uppercase is canonicalised",
			candidate: "3F2504E0-4F89-41D3-9A0C-0305E82C3301",
			want:      "3f2504e0-4f89-41d3-9a0c-0305e82c3301",
		},
		{
			name:      "surrounding whitespace",
			candidate: "  3f2504e0-4f89-41d3-9a0c-0305e82c3301\n",
			want:      "3f2504e0-4f89-41d3-9a0c-0305e82c3301",
		},
		{
			name:      "braced form",
			candidate: "{3f2504e0-4f89-41d3-9a0c-0305e82c3301}",
			want:      "3f2504e0-4f89-41d3-9a0c-0305e82c3301",
		},
		{name: "empty", candidate: "", wantErr: true},
		{name: "username", candidate: "alice", wantErr: true},
		{name: "truncated", candidate: "3f2504e0-4f89-41d3-9a0c", wantErr: true},
		{name: "bad hex", candidate: "zz2504e0-4f89-41d3-9a0c-0305e82c3301", wantErr: true},
		{name: "path traversal", candidate: "../../etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.candidate)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidUserID) {
					t.Fatalf("expected ErrInvalidUserID, got %v", err)
				}
				if IsValid(tt.candidate) {
					t.Error("IsValid() = true for invalid candidate")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestChecker_AcceptsValidUUIDs(t *testing.T) {
	checker := NewChecker(nil)

	for i := 0; i < 50; i++ {
		id := uuid.New().String()
		res := checker.Check(id)
		if !res.Valid {
			t.Fatalf("expected %s to be accepted", id)
		}
		if res.UserID != id {
			t.Errorf("expected user id %s, got %s", id, res.UserID)
		}
		if res.Suggestion != "" || res.Message != "" {
			t.Errorf("expected no suggestion or message, got %+v", res)
		}
	}
}

func TestChecker_RejectsMalformedWithSuggestion(t *testing.T) {
	checker := NewChecker(nil)

	for _, candidate := range []string{"alice", "1234", "not-a-uuid-at-all", "3f2504e0-4f89"} {
		res := checker.Check(candidate)
		if res.Valid {
			t.Errorf("expected %q to be rejected", candidate)
		}
		if res.UserID != "" {
			t.Errorf("expected empty user id, got %q", res.UserID)
		}
		if res.Message != MessageInvalid {
			t.Errorf("expected invalid message, got %q", res.Message)
		}
		if !IsValid(res.Suggestion) {
			t.Errorf("suggestion %q is not a valid UUID", res.Suggestion)
		}
	}
}

func TestChecker_EmptyInputOnlySuggests(t *testing.T) {
	checker := NewChecker(func() string { return "fixed" })

	res := checker.Check("   ")
	if res.Valid {
		t.Fatal("expected empty input to be rejected")
	}
	if res.Message != "" {
		t.Errorf("expected no error message for empty input, got %q", res.Message)
	}
	if res.Suggestion != "fixed" {
		t.Errorf("expected generator to be used, got %q", res.Suggestion)
	}
}

func TestChecker_SuggestionsAreFresh(t *testing.T) {
	checker := NewChecker(nil)

	first := checker.Check("bad").Suggestion
	second := checker.Check("bad").Suggestion
	if first == second {
		t.Errorf("expected distinct suggestions, got %s twice", first)
	}
}
