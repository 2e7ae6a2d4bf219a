package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"testing"

	"github.com/onnwee/tagqa/internal/annotation"
	"github.com/onnwee/tagqa/internal/catalog"
	"github.com/onnwee/tagqa/internal/fsutil"
	"github.com/onnwee/tagqa/internal/identity"
	"github.com/onnwee/tagqa/internal/ranking"
)

const (
	testUserID = "3f2504e0-4f89-41d3-9a0c-0305e82c3301"
	testModel  = "discogs-effnet-bs64-1"
	testStyle  = "Electronic---Dub"
)

// fixture is a fully wired router over in-memory rankings and results.
type fixture struct {
	handler http.Handler
	store   *annotation.MemoryStore
	service *annotation.Service
}

func styleRanking(rows int) string {
	var b strings.Builder
	b.WriteString("YouTube\tactivation\ttitle\tpresent\n")
	for i := 1; i <= rows; i++ {
		present := ""
		if i%2 == 0 {
			present = "True"
		}
		fmt.Fprintf(&b, "https://www.youtube.com/watch?v=yt%09d\t0.%03d\tSong %d\t%s\n", i, 999-i, i, present)
	}
	return b.String()
}

func tagRanking(rows int) string {
	var b strings.Builder
	b.WriteString("id,prediction,position\n")
	for i := 1; i <= rows; i++ {
		fmt.Fprintf(&b, "%02d/%d.mp3,0.%03d,%d\n", i%100, 1000+i, 999-i, i)
	}
	return b.String()
}

func writeRanking(t *testing.T, mfs *fsutil.MemoryFileSystem, name, body string) {
	t.Helper()
	if err := mfs.MkdirAll(path.Dir(name), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := mfs.WriteFile(name, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func newStyleFixture(t *testing.T, mutate func(*RouterConfig)) *fixture {
	t.Helper()
	mfs := fsutil.NewMemoryFileSystem()
	writeRanking(t, mfs, "rankings/"+testModel+"/"+testStyle+catalog.StyleRankingSuffix, styleRanking(120))
	writeRanking(t, mfs, "rankings/"+testModel+"/Rock---Punk"+catalog.StyleRankingSuffix, styleRanking(3))

	c, err := catalog.Load(catalog.Config{
		Format:      ranking.FormatStyleRetrieval,
		RankingsDir: "rankings",
		Models:      []string{testModel},
		FS:          mfs,
	})
	if err != nil {
		t.Fatalf("catalog.Load failed: %v", err)
	}

	return newFixture(t, c, ranking.StyleRetrieval, mfs, annotation.Correctness, annotation.EncodingJSON, true, mutate)
}

func newTagFixture(t *testing.T, mutate func(*RouterConfig)) *fixture {
	t.Helper()
	mfs := fsutil.NewMemoryFileSystem()
	writeRanking(t, mfs, "rankings/baseline/genre/effnet/rock.csv", tagRanking(30))
	writeRanking(t, mfs, "rankings/baseline/genre/effnet/jazz.csv", tagRanking(4))
	writeRanking(t, mfs, "rankings/baseline/moodtheme/effnet/happy.csv", tagRanking(4))

	c, err := catalog.Load(catalog.Config{
		Format:      ranking.FormatTagRetrieval,
		RankingsDir: "rankings",
		Tasks:       []string{"genre", "moodtheme"},
		Methods:     []string{"baseline", "mltl"},
		Embeddings:  []string{"effnet"},
		FS:          mfs,
	})
	if err != nil {
		t.Fatalf("catalog.Load failed: %v", err)
	}

	return newFixture(t, c, ranking.TagRetrieval, mfs, annotation.YesNo, annotation.EncodingText, false, mutate)
}

func newFixture(t *testing.T, c *catalog.Catalog, format ranking.Format, mfs fsutil.FileSystem,
	answers annotation.AnswerSet, encoding annotation.Encoding, gate bool, mutate func(*RouterConfig)) *fixture {
	t.Helper()

	store := annotation.NewMemoryStore()
	service, err := annotation.NewService(annotation.Config{
		Store:    store,
		Answers:  answers,
		Encoding: encoding,
		Backend:  "memory",
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	cfg := RouterConfig{
		Catalog:        c,
		Loader:         ranking.NewLoader(ranking.LoaderConfig{Format: format, FS: mfs, Cache: ranking.NewCache()}),
		Service:        service,
		Identity:       identity.NewChecker(nil),
		ConfidenceGate: gate,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	return &fixture{handler: NewRouter(cfg), store: store, service: service}
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response: %v, body: %s", err, rr.Body.String())
	}
	return v
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) ErrorResponse {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rr.Code, rr.Body.String())
	}
	resp := decode[ErrorResponse](t, rr)
	if resp.Error.Code != code {
		t.Errorf("expected error code %s, got %s", code, resp.Error.Code)
	}
	return resp
}

// containsUUID reports whether any whitespace separated word of s is a UUID.
func containsUUID(s string) bool {
	for _, word := range strings.Fields(s) {
		if identity.IsValid(word) {
			return true
		}
	}
	return false
}

func annotationKey(tag, track string) annotation.Key {
	return annotation.Key{User: testUserID, Tag: tag, Track: track}
}
