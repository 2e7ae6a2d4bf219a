package api

import (
	"encoding/json"
	"net/http"

	"github.com/onnwee/tagqa/internal/annotation"
	"github.com/onnwee/tagqa/internal/identity"
	"github.com/onnwee/tagqa/internal/middleware"
)

// maxBodyBytes bounds JSON request bodies. Feedback is capped well below.
const maxBodyBytes = 64 << 10

// SaveAnnotationRequest is the body of PUT /api/annotations/{user}/{tag}/{track}.
type SaveAnnotationRequest struct {
	Answer   string `json:"answer"`
	Feedback string `json:"feedback"`
}

// SaveConfidenceRequest is the body of PUT /api/confidence/{user}/{tag}.
type SaveConfidenceRequest struct {
	Confidence *int `json:"confidence"`
}

// AnnotationHandlers reads and writes annotation and confidence records.
type AnnotationHandlers struct {
	service        *annotation.Service
	confidenceGate bool
}

// NewAnnotationHandlers creates a new AnnotationHandlers instance.
// Confidence routes answer 404 unless confidenceGate is set.
func NewAnnotationHandlers(service *annotation.Service, confidenceGate bool) *AnnotationHandlers {
	return &AnnotationHandlers{service: service, confidenceGate: confidenceGate}
}

// Annotation handles GET and PUT /api/annotations/{user}/{tag}/{track}.
func (h *AnnotationHandlers) Annotation(w http.ResponseWriter, r *http.Request) {
	params, ok := pathParams(r, "/api/annotations/", 3)
	if !ok {
		writeCodedError(w, r, ErrCodeNotFound, "Expected /api/annotations/{user}/{tag}/{track}")
		return
	}

	user, err := identity.Parse(params[0])
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	r = r.WithContext(middleware.SetUserID(r.Context(), user))
	middleware.UpdateResponseContext(w, r.Context())

	key := annotation.Key{User: user, Tag: params[1], Track: params[2]}

	switch r.Method {
	case http.MethodGet:
		h.getAnnotation(w, r, key)
	case http.MethodPut:
		h.putAnnotation(w, r, key)
	default:
		writeCodedError(w, r, ErrCodeMethodNotAllowed, "Method not allowed")
	}
}

func (h *AnnotationHandlers) getAnnotation(w http.ResponseWriter, r *http.Request, key annotation.Key) {
	state, err := h.service.Load(r.Context(), key)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, state)
}

func (h *AnnotationHandlers) putAnnotation(w http.ResponseWriter, r *http.Request, key annotation.Key) {
	var req SaveAnnotationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeCodedError(w, r, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	rec := annotation.Record{Answer: req.Answer, Feedback: req.Feedback}
	if err := h.service.Save(r.Context(), key, rec); err != nil {
		writeDomainError(w, r, err)
		return
	}

	state, err := h.service.Load(r.Context(), key)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, state)
}

// Confidence handles GET and PUT /api/confidence/{user}/{tag}.
func (h *AnnotationHandlers) Confidence(w http.ResponseWriter, r *http.Request) {
	if !h.confidenceGate {
		writeCodedError(w, r, ErrCodeNotFound, "Confidence is not collected for this variant")
		return
	}

	params, ok := pathParams(r, "/api/confidence/", 2)
	if !ok {
		writeCodedError(w, r, ErrCodeNotFound, "Expected /api/confidence/{user}/{tag}")
		return
	}

	user, err := identity.Parse(params[0])
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	r = r.WithContext(middleware.SetUserID(r.Context(), user))
	middleware.UpdateResponseContext(w, r.Context())
	tag := params[1]

	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req SaveConfidenceRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeCodedError(w, r, ErrCodeBadRequest, "Invalid JSON in request body")
			return
		}
		if req.Confidence == nil {
			writeCodedError(w, r, ErrCodeValidation, "confidence is required")
			return
		}
		if err := h.service.SaveConfidence(r.Context(), user, tag, *req.Confidence); err != nil {
			writeDomainError(w, r, err)
			return
		}
	default:
		writeCodedError(w, r, ErrCodeMethodNotAllowed, "Method not allowed")
		return
	}

	state, err := h.service.LoadConfidence(r.Context(), user, tag)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, state)
}
