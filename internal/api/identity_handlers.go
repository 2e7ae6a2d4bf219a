package api

import (
	"net/http"

	"github.com/onnwee/tagqa/internal/identity"
)

// IdentityHandlers exposes identity validation.
type IdentityHandlers struct {
	checker *identity.Checker
}

// NewIdentityHandlers creates a new IdentityHandlers instance.
func NewIdentityHandlers(checker *identity.Checker) *IdentityHandlers {
	return &IdentityHandlers{checker: checker}
}

// Check handles GET /api/identity?candidate=... It always answers 200;
// an invalid candidate comes back with a suggested replacement.
func (h *IdentityHandlers) Check(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeCodedError(w, r, ErrCodeMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, r, http.StatusOK, h.checker.Check(r.URL.Query().Get("candidate")))
}
