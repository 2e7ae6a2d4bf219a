package api

import (
	"net/http"

	"github.com/onnwee/tagqa/internal/annotation"
	"github.com/onnwee/tagqa/internal/catalog"
	"github.com/onnwee/tagqa/internal/identity"
	"github.com/onnwee/tagqa/internal/middleware"
	"github.com/onnwee/tagqa/internal/ranking"
)

// CatalogResponse describes what can be annotated and how.
type CatalogResponse struct {
	Variant        string               `json:"variant"`
	Answers        annotation.AnswerSet `json:"answers"`
	ConfidenceGate bool                 `json:"confidence_gate"`
	TopN           int                  `json:"top_n"`
	DefaultCount   int                  `json:"default_count"`
	Catalog        catalog.Summary      `json:"catalog"`
}

// RankingHandlers serves the catalog and ranked track lists.
type RankingHandlers struct {
	catalog        *catalog.Catalog
	format         ranking.Format
	answers        annotation.AnswerSet
	confidenceGate bool
	views          *RankingViews
}

// NewRankingHandlers creates a new RankingHandlers instance.
func NewRankingHandlers(c *catalog.Catalog, loader *ranking.Loader, service *annotation.Service, confidenceGate bool) *RankingHandlers {
	return &RankingHandlers{
		catalog:        c,
		format:         loader.Format(),
		answers:        service.Answers(),
		confidenceGate: confidenceGate,
		views:          NewRankingViews(c, loader, service, confidenceGate),
	}
}

// Catalog handles GET /api/catalog.
func (h *RankingHandlers) Catalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeCodedError(w, r, ErrCodeMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, r, http.StatusOK, CatalogResponse{
		Variant:        h.catalog.Format(),
		Answers:        h.answers,
		ConfidenceGate: h.confidenceGate,
		TopN:           h.format.TopN,
		DefaultCount:   h.format.DefaultCount,
		Catalog:        h.catalog.Summary(),
	})
}

// Rankings handles GET /api/rankings. Selection fields left empty take
// their first configured value. With a user the response carries the
// stored state of each track and the done count.
func (h *RankingHandlers) Rankings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeCodedError(w, r, ErrCodeMethodNotAllowed, "Method not allowed")
		return
	}

	query := r.URL.Query()
	n, ok := parseCount(query)
	if !ok {
		writeCodedError(w, r, ErrCodeValidation, "n must be an integer")
		return
	}

	var user string
	if candidate := query.Get("user"); candidate != "" {
		id, err := identity.Parse(candidate)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		user = id
		middleware.UpdateResponseContext(w, middleware.SetUserID(r.Context(), user))
	}

	view, err := h.views.Build(r.Context(), selectionFromValues(query), user, n)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}
