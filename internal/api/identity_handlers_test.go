package api

import (
	"net/http"
	"testing"

	"github.com/onnwee/tagqa/internal/identity"
)

func TestIdentityCheck(t *testing.T) {
	f := newStyleFixture(t, nil)

	tests := []struct {
		name        string
		candidate   string
		wantValid   bool
		wantMessage string
	}{
		{name: "valid", candidate: testUserID, wantValid: true},
		{name: "uppercase", candidate: "3F2504E0-4F89-41D3-9A0C-0305E82C3301", wantValid: true},
		{name: "empty", candidate: ""},
		{name: "malformed", candidate: "alice", wantMessage: identity.MessageInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := f.do(t, http.MethodGet, "/api/identity?candidate="+tt.candidate, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rr.Code)
			}
			res := decode[identity.Result](t, rr)

			if res.Valid != tt.wantValid {
				t.Fatalf("expected valid=%v, got %+v", tt.wantValid, res)
			}
			if tt.wantValid {
				if res.UserID != testUserID {
					t.Errorf("expected canonical id %s, got %s", testUserID, res.UserID)
				}
				return
			}
			if !identity.IsValid(res.Suggestion) {
				t.Errorf("expected a UUID suggestion, got %q", res.Suggestion)
			}
			if res.Message != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, res.Message)
			}
		})
	}
}

func TestIdentityCheck_MethodNotAllowed(t *testing.T) {
	f := newStyleFixture(t, nil)

	rr := f.do(t, http.MethodPost, "/api/identity", nil)
	expectError(t, rr, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed)
}
