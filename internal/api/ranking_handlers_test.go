package api

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/onnwee/tagqa/internal/annotation"
	"github.com/onnwee/tagqa/internal/ranking"
)

func TestCatalog_StyleRetrieval(t *testing.T) {
	f := newStyleFixture(t, nil)

	rr := f.do(t, http.MethodGet, "/api/catalog", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decode[CatalogResponse](t, rr)

	if resp.Variant != ranking.FormatStyleRetrieval {
		t.Errorf("expected variant %s, got %s", ranking.FormatStyleRetrieval, resp.Variant)
	}
	if !resp.ConfidenceGate {
		t.Error("expected confidence gate on for style retrieval")
	}
	if resp.TopN != 100 || resp.DefaultCount != 5 {
		t.Errorf("expected top_n=100 default_count=5, got %d and %d", resp.TopN, resp.DefaultCount)
	}
	if resp.Answers.Name != annotation.Correctness.Name {
		t.Errorf("expected answer set %s, got %s", annotation.Correctness.Name, resp.Answers.Name)
	}
	tags := resp.Catalog.Tags[testModel]
	if len(tags) != 2 || tags[0] != testStyle || tags[1] != "Rock---Punk" {
		t.Errorf("unexpected tags: %v", tags)
	}
}

func TestCatalog_TagRetrieval(t *testing.T) {
	f := newTagFixture(t, nil)

	resp := decode[CatalogResponse](t, f.do(t, http.MethodGet, "/api/catalog", nil))

	if resp.ConfidenceGate {
		t.Error("expected confidence gate off for tag retrieval")
	}
	if got := resp.Catalog.Tags["genre"]; len(got) != 2 || got[0] != "jazz" || got[1] != "rock" {
		t.Errorf("unexpected genre tags: %v", got)
	}
	if got := resp.Catalog.Tags["moodtheme"]; len(got) != 1 || got[0] != "happy" {
		t.Errorf("unexpected moodtheme tags: %v", got)
	}
}

func TestRankings_Defaults(t *testing.T) {
	f := newStyleFixture(t, nil)

	rr := f.do(t, http.MethodGet, "/api/rankings", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	view := decode[RankingView](t, rr)

	if view.Selection.Model != testModel || view.Selection.Tag != testStyle {
		t.Errorf("expected default selection %s/%s, got %+v", testModel, testStyle, view.Selection)
	}
	if view.Count != 5 || len(view.Tracks) != 5 {
		t.Fatalf("expected 5 tracks, got count=%d len=%d", view.Count, len(view.Tracks))
	}
	first := view.Tracks[0]
	if first.ID != "yt000000001" || first.Position != 1 {
		t.Errorf("unexpected first track: %+v", first.Track)
	}
	if first.State != nil {
		t.Error("expected no state without a user")
	}
	if view.Confidence != nil {
		t.Error("expected no confidence without a user")
	}
}

func TestRankings_CountIsClamped(t *testing.T) {
	f := newStyleFixture(t, nil)

	tests := []struct {
		n    string
		want int
	}{
		{"1", 1},
		{"0", 5},
		{"-3", 5},
		{"7", 7},
		{"100", 100},
		{"500", 100},
	}

	for _, tt := range tests {
		t.Run("n="+tt.n, func(t *testing.T) {
			view := decode[RankingView](t, f.do(t, http.MethodGet, "/api/rankings?n="+tt.n, nil))
			if view.Count != tt.want || len(view.Tracks) != tt.want {
				t.Errorf("expected %d tracks, got count=%d len=%d", tt.want, view.Count, len(view.Tracks))
			}
		})
	}
}

func TestRankings_ShortFileLimitsTracks(t *testing.T) {
	f := newStyleFixture(t, nil)

	view := decode[RankingView](t, f.do(t, http.MethodGet, "/api/rankings?tag=Rock---Punk&n=10", nil))
	if len(view.Tracks) != 3 || view.Total != 3 {
		t.Errorf("expected all 3 tracks, got len=%d total=%d", len(view.Tracks), view.Total)
	}
}

func TestRankings_WithUserStates(t *testing.T) {
	f := newStyleFixture(t, nil)
	ctx := context.Background()

	key := annotation.Key{User: testUserID, Tag: testStyle, Track: "yt000000002"}
	if err := f.service.Save(ctx, key, annotation.Record{Answer: "Correct", Feedback: "clear dub"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rr := f.do(t, http.MethodGet, "/api/rankings?user="+testUserID+"&n=3", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	view := decode[RankingView](t, rr)

	if view.User != testUserID {
		t.Errorf("expected user %s, got %s", testUserID, view.User)
	}
	if view.Done != 1 || view.Total != 3 {
		t.Errorf("expected 1 / 3 done, got %d / %d", view.Done, view.Total)
	}
	for i, tr := range view.Tracks {
		if tr.State == nil {
			t.Fatalf("track %d has no state", i)
		}
	}
	if s := view.Tracks[1].State; !s.Done || s.Answer != "Correct" || s.Feedback != "clear dub" {
		t.Errorf("unexpected saved state: %+v", s)
	}
	if s := view.Tracks[0].State; s.Done || s.Answer != annotation.Unanswered {
		t.Errorf("expected unanswered first track, got %+v", s)
	}
	if view.Confidence == nil || view.Confidence.Confidence != annotation.DefaultConfidence {
		t.Errorf("expected default confidence, got %+v", view.Confidence)
	}
}

func TestRankings_Errors(t *testing.T) {
	tests := []struct {
		name   string
		tag    bool
		query  url.Values
		status int
		code   string
	}{
		{
			name:   "invalid user",
			query:  url.Values{"user": {"alice"}},
			status: http.StatusBadRequest,
			code:   ErrCodeInvalidUser,
		},
		{
			name:   "non numeric n",
			query:  url.Values{"n": {"ten"}},
			status: http.StatusBadRequest,
			code:   ErrCodeValidation,
		},
		{
			name:   "unknown tag",
			query:  url.Values{"tag": {"Polka"}},
			status: http.StatusBadRequest,
			code:   ErrCodeValidation,
		},
		{
			name:   "unknown model",
			query:  url.Values{"model": {"other-model"}},
			status: http.StatusBadRequest,
			code:   ErrCodeValidation,
		},
		{
			name:   "missing ranking for method",
			tag:    true,
			query:  url.Values{"method": {"mltl"}, "tag": {"rock"}},
			status: http.StatusNotFound,
			code:   ErrCodeRankingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStyleFixture(t, nil)
			if tt.tag {
				f = newTagFixture(t, nil)
			}
			rr := f.do(t, http.MethodGet, "/api/rankings?"+tt.query.Encode(), nil)
			resp := expectError(t, rr, tt.status, tt.code)

			if tt.code == ErrCodeInvalidUser && !containsUUID(resp.Error.Message) {
				t.Errorf("expected a suggested UUID in %q", resp.Error.Message)
			}
		})
	}
}

func TestRankings_TagRetrievalTracks(t *testing.T) {
	f := newTagFixture(t, nil)

	view := decode[RankingView](t, f.do(t, http.MethodGet, "/api/rankings?task=genre&tag=rock", nil))

	if view.Count != 20 || len(view.Tracks) != 20 {
		t.Fatalf("expected 20 tracks, got count=%d len=%d", view.Count, len(view.Tracks))
	}
	first := view.Tracks[0]
	if first.ID != "1001" {
		t.Errorf("expected track id 1001, got %s", first.ID)
	}
	want := "https://mp3d.jamendo.com/?trackid=1001&format=mp32#t=0,120"
	if first.AudioURL != want {
		t.Errorf("expected audio url %s, got %s", want, first.AudioURL)
	}
	if view.Confidence != nil {
		t.Error("expected no confidence for tag retrieval")
	}
}
