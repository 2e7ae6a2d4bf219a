package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/onnwee/tagqa/internal/annotation"
	"github.com/onnwee/tagqa/internal/catalog"
	"github.com/onnwee/tagqa/internal/identity"
	"github.com/onnwee/tagqa/internal/middleware"
	"github.com/onnwee/tagqa/internal/ranking"
)

// RouterConfig holds everything the HTTP surface needs.
type RouterConfig struct {
	Catalog  *catalog.Catalog
	Loader   *ranking.Loader
	Service  *annotation.Service
	Identity *identity.Checker
	// ConfidenceGate enables the per-tag familiarity routes.
	ConfidenceGate bool

	Health HealthHandlersConfig

	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer

	// CORS applies to the JSON API only.
	CORS middleware.CORSConfig

	// WriteLimiter wraps annotation and confidence writes when set.
	WriteLimiter func(http.Handler) http.Handler
}

// NewRouter registers every route on a new ServeMux.
func NewRouter(cfg RouterConfig) http.Handler {
	checker := cfg.Identity
	if checker == nil {
		checker = identity.NewChecker(nil)
	}

	pages := NewPageHandlers(cfg.Catalog, cfg.Loader, cfg.Service, checker, cfg.ConfidenceGate)
	rankings := NewRankingHandlers(cfg.Catalog, cfg.Loader, cfg.Service, cfg.ConfidenceGate)
	annotations := NewAnnotationHandlers(cfg.Service, cfg.ConfidenceGate)
	identities := NewIdentityHandlers(checker)
	health := NewHealthHandlers(cfg.Health)

	limitWrites := func(h http.HandlerFunc) http.Handler {
		if cfg.WriteLimiter == nil {
			return h
		}
		limited := cfg.WriteLimiter(h)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				h(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
	cors := middleware.CORS(cfg.CORS)

	mux := http.NewServeMux()

	// HTML page
	mux.HandleFunc("/", pages.Index)
	mux.Handle("/annotate", limitWrites(pages.Annotate))
	mux.Handle("/confidence", limitWrites(pages.Confidence))

	// JSON API
	mux.Handle("/api/identity", cors(http.HandlerFunc(identities.Check)))
	mux.Handle("/api/catalog", cors(http.HandlerFunc(rankings.Catalog)))
	mux.Handle("/api/rankings", cors(http.HandlerFunc(rankings.Rankings)))
	mux.Handle("/api/annotations/", cors(limitWrites(annotations.Annotation)))
	mux.Handle("/api/confidence/", cors(limitWrites(annotations.Confidence)))

	// Probes
	mux.HandleFunc("/health", health.Health)
	mux.HandleFunc("/ready", health.Ready)

	if cfg.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	return mux
}
