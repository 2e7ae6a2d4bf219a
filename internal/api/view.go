package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/onnwee/tagqa/internal/annotation"
	"github.com/onnwee/tagqa/internal/catalog"
	"github.com/onnwee/tagqa/internal/ranking"
)

// TrackView is a ranked track with the annotator's stored state.
type TrackView struct {
	ranking.Track
	State *annotation.State `json:"state,omitempty"`
}

// RankingView is one rendered ranking: the selection, the first Count
// tracks, and the annotator's progress when a user is known.
type RankingView struct {
	Selection  catalog.Selection           `json:"selection"`
	User       string                      `json:"user,omitempty"`
	Count      int                         `json:"count"`
	TopN       int                         `json:"top_n"`
	Tracks     []TrackView                 `json:"tracks"`
	Done       int                         `json:"done"`
	Total      int                         `json:"total"`
	Confidence *annotation.ConfidenceState `json:"confidence,omitempty"`
}

// RankingViews builds RankingView values for the JSON API and the page.
type RankingViews struct {
	catalog        *catalog.Catalog
	loader         *ranking.Loader
	service        *annotation.Service
	confidenceGate bool
}

// NewRankingViews wires the catalog, loader and annotation service.
// confidenceGate adds the per-tag confidence to views with a user.
func NewRankingViews(c *catalog.Catalog, loader *ranking.Loader, service *annotation.Service, confidenceGate bool) *RankingViews {
	return &RankingViews{
		catalog:        c,
		loader:         loader,
		service:        service,
		confidenceGate: confidenceGate,
	}
}

// Build resolves sel, loads its ranking and, when user is set, the
// stored state of every shown track. n is clamped by the ranking format.
func (v *RankingViews) Build(ctx context.Context, sel catalog.Selection, user string, n int) (*RankingView, error) {
	sel = v.catalog.WithDefaults(sel)
	path, err := v.catalog.RankingPath(sel)
	if err != nil {
		return nil, err
	}

	tracks, err := v.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	format := v.loader.Format()
	count := format.Count(n)
	tracks = ranking.Limit(tracks, count)

	view := &RankingView{
		Selection: sel,
		User:      user,
		Count:     count,
		TopN:      format.TopN,
		Tracks:    make([]TrackView, len(tracks)),
		Total:     len(tracks),
	}
	for i, t := range tracks {
		view.Tracks[i] = TrackView{Track: t}
	}

	if user == "" {
		return view, nil
	}

	progress, err := v.service.Progress(ctx, user, sel.Tag, ranking.IDs(tracks))
	if err != nil {
		return nil, err
	}
	for i := range progress.States {
		state := progress.States[i]
		view.Tracks[i].State = &state
	}
	view.Done = progress.Done

	if v.confidenceGate {
		conf, err := v.service.LoadConfidence(ctx, user, sel.Tag)
		if err != nil {
			return nil, err
		}
		view.Confidence = &conf
	}
	return view, nil
}

// selectionFromValues reads a selection from query or form values.
func selectionFromValues(values url.Values) catalog.Selection {
	return catalog.Selection{
		Task:      values.Get("task"),
		Method:    values.Get("method"),
		Embedding: values.Get("embedding"),
		Model:     values.Get("model"),
		Tag:       values.Get("tag"),
	}
}

// selectionValues is the inverse of selectionFromValues, used for redirects.
func selectionValues(sel catalog.Selection, user string, n int) url.Values {
	values := url.Values{}
	set := func(k, v string) {
		if v != "" {
			values.Set(k, v)
		}
	}
	set("user", user)
	set("task", sel.Task)
	set("method", sel.Method)
	set("embedding", sel.Embedding)
	set("model", sel.Model)
	set("tag", sel.Tag)
	if n > 0 {
		values.Set("n", strconv.Itoa(n))
	}
	return values
}

// parseCount reads the optional "n" parameter. Empty means the default.
func parseCount(values url.Values) (int, bool) {
	raw := values.Get("n")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
