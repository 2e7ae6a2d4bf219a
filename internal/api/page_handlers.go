package api

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/onnwee/tagqa/internal/annotation"
	"github.com/onnwee/tagqa/internal/catalog"
	"github.com/onnwee/tagqa/internal/identity"
	"github.com/onnwee/tagqa/internal/middleware"
	"github.com/onnwee/tagqa/internal/ranking"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("annotate.html").Funcs(template.FuncMap{
	"isTagRetrieval": func(format string) bool { return format == ranking.FormatTagRetrieval },
}).ParseFS(templateFS, "templates/annotate.html"))

// Page titles per variant.
var pageTitles = map[string]string{
	ranking.FormatTagRetrieval:   "Auto-tagging QA: retrieval by tag",
	ranking.FormatStyleRetrieval: "Discogs-Effnet QA: retrieval by style",
}

// pageData feeds templates/annotate.html.
type pageData struct {
	Title          string
	Format         string
	Identity       identity.Result
	Candidate      string
	Summary        catalog.Summary
	Selection      catalog.Selection
	Tags           []string
	N              int
	Answers        annotation.AnswerSet
	KeepsFeedback  bool
	ConfidenceGate bool
	MinConfidence  int
	MaxConfidence  int
	View           *RankingView
	Error          string
}

// PageHandlers serves the server-rendered annotation page and its form posts.
type PageHandlers struct {
	catalog        *catalog.Catalog
	service        *annotation.Service
	checker        *identity.Checker
	confidenceGate bool
	views          *RankingViews
}

// NewPageHandlers creates a new PageHandlers instance.
func NewPageHandlers(c *catalog.Catalog, loader *ranking.Loader, service *annotation.Service, checker *identity.Checker, confidenceGate bool) *PageHandlers {
	return &PageHandlers{
		catalog:        c,
		service:        service,
		checker:        checker,
		confidenceGate: confidenceGate,
		views:          NewRankingViews(c, loader, service, confidenceGate),
	}
}

// Index handles GET /. Until the user field holds a valid UUID the page
// only shows the identity prompt with a suggested UUID.
func (h *PageHandlers) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeCodedError(w, r, ErrCodeNotFound, "The requested resource was not found")
		return
	}
	if r.Method != http.MethodGet {
		writeCodedError(w, r, ErrCodeMethodNotAllowed, "Method not allowed")
		return
	}

	query := r.URL.Query()
	candidate := query.Get("user")
	data := h.baseData(candidate)
	data.Identity = h.checker.Check(candidate)
	if !data.Identity.Valid {
		h.render(w, r, http.StatusOK, data)
		return
	}
	user := data.Identity.UserID
	middleware.UpdateResponseContext(w, middleware.SetUserID(r.Context(), user))

	n, ok := parseCount(query)
	if !ok {
		data.Error = "Show top N tracks: not a number"
		h.render(w, r, http.StatusBadRequest, data)
		return
	}

	// Switching task or model keeps a tag from the old group; drop it.
	sel := h.catalog.WithDefaults(selectionFromValues(query))
	if !h.catalog.HasTag(sel.Group(h.catalog.Format()), sel.Tag) {
		sel.Tag = ""
		sel = h.catalog.WithDefaults(sel)
	}
	data.Selection = sel
	data.Tags = h.catalog.Tags(sel.Group(h.catalog.Format()))

	view, err := h.views.Build(r.Context(), sel, user, n)
	if err != nil {
		code := errorCode(err)
		if code == ErrCodeInternal {
			slog.ErrorContext(r.Context(), "failed to build ranking view", "error", err)
		}
		middleware.UpdateResponseContext(w, middleware.SetErrorCode(r.Context(), code))
		data.Error = errorMessage(code, err)
		h.render(w, r, StatusCodeMapping(code), data)
		return
	}
	data.View = view
	data.N = view.Count
	h.render(w, r, http.StatusOK, data)
}

// Annotate handles POST /annotate and redirects back to the page.
func (h *PageHandlers) Annotate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeCodedError(w, r, ErrCodeMethodNotAllowed, "Method not allowed")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeCodedError(w, r, ErrCodeBadRequest, "Invalid form")
		return
	}

	user, err := identity.Parse(r.PostForm.Get("user"))
	if err != nil {
		h.formError(w, r, err)
		return
	}
	middleware.UpdateResponseContext(w, middleware.SetUserID(r.Context(), user))

	sel := selectionFromValues(r.PostForm)
	track := r.PostForm.Get("track")
	key := annotation.Key{User: user, Tag: sel.Tag, Track: track}
	rec := annotation.Record{
		Answer:   r.PostForm.Get("answer"),
		Feedback: r.PostForm.Get("feedback"),
	}
	if err := h.service.Save(r.Context(), key, rec); err != nil {
		h.formError(w, r, err)
		return
	}

	h.redirect(w, r, sel, user, "track-"+track)
}

// Confidence handles POST /confidence and redirects back to the page.
func (h *PageHandlers) Confidence(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeCodedError(w, r, ErrCodeMethodNotAllowed, "Method not allowed")
		return
	}
	if !h.confidenceGate {
		writeCodedError(w, r, ErrCodeNotFound, "Confidence is not collected for this variant")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeCodedError(w, r, ErrCodeBadRequest, "Invalid form")
		return
	}

	user, err := identity.Parse(r.PostForm.Get("user"))
	if err != nil {
		h.formError(w, r, err)
		return
	}
	middleware.UpdateResponseContext(w, middleware.SetUserID(r.Context(), user))

	confidence, err := strconv.Atoi(r.PostForm.Get("confidence"))
	if err != nil {
		writeCodedError(w, r, ErrCodeValidation, "confidence must be an integer")
		return
	}

	sel := selectionFromValues(r.PostForm)
	if err := h.service.SaveConfidence(r.Context(), user, sel.Tag, confidence); err != nil {
		h.formError(w, r, err)
		return
	}

	h.redirect(w, r, sel, user, "confidence")
}

func (h *PageHandlers) redirect(w http.ResponseWriter, r *http.Request, sel catalog.Selection, user, anchor string) {
	n, _ := parseCount(r.PostForm)
	target := "/?" + selectionValues(sel, user, n).Encode()
	if anchor != "" {
		target += "#" + anchor
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// formError renders the page with the error instead of redirecting.
func (h *PageHandlers) formError(w http.ResponseWriter, r *http.Request, err error) {
	code := errorCode(err)
	if code == ErrCodeInternal {
		slog.ErrorContext(r.Context(), "failed to save form", "error", err)
	}
	middleware.UpdateResponseContext(w, middleware.SetErrorCode(r.Context(), code))

	candidate := r.PostForm.Get("user")
	data := h.baseData(candidate)
	data.Identity = h.checker.Check(candidate)
	data.Selection = selectionFromValues(r.PostForm)
	data.Error = errorMessage(code, err)
	h.render(w, r, StatusCodeMapping(code), data)
}

func (h *PageHandlers) baseData(candidate string) pageData {
	format := h.catalog.Format()
	return pageData{
		Title:          pageTitles[format],
		Format:         format,
		Candidate:      candidate,
		Summary:        h.catalog.Summary(),
		Answers:        h.service.Answers(),
		KeepsFeedback:  h.service.Encoding().KeepsFeedback(),
		ConfidenceGate: h.confidenceGate,
		MinConfidence:  annotation.MinConfidence,
		MaxConfidence:  annotation.MaxConfidence,
	}
}

func (h *PageHandlers) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		slog.ErrorContext(r.Context(), "failed to render page", "error", err)
	}
}
