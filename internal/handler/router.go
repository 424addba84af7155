package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/suar-net/pixel-exchange/internal/metrics"
	"github.com/suar-net/pixel-exchange/internal/moderation"
	"github.com/suar-net/pixel-exchange/internal/ratelimit"
)

// RouterDeps bundles what SetupRouter injects into the pipeline.
type RouterDeps struct {
	Exchange       ExchangeService
	Words          *moderation.WordSet
	Limiter        ratelimit.Limiter
	AllowedOrigins []string
	IPHeader       string
	Logger         *logrus.Logger
	Metrics        *metrics.Metrics
}

// SetupRouter builds the public router. Stages run in this order:
// CORS headers and preflight, route match, origin enforcement, rate limit,
// then the exchange handler (parse, validate, forward).
func SetupRouter(d RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: d.Logger, NoColor: true}))
	r.Use(middleware.Recoverer)

	// Must run before routing so 404s and preflights carry CORS headers too.
	policy := NewOriginPolicy(d.AllowedOrigins)
	r.Use(policy.Handler)

	notFound := func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "Not found")
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	exchangeHandler := NewExchangeHandler(d.Exchange, d.Words, d.Logger, d.Metrics)
	r.With(
		RequireAllowedOrigin(policy, d.Logger, d.Metrics),
		RateLimit(d.Limiter, d.IPHeader, d.Logger, d.Metrics),
	).Method(http.MethodPost, "/exchange", exchangeHandler)

	return r
}

// SetupAdminRouter serves health and metrics on a separate listener so the
// public surface stays a single route.
func SetupAdminRouter(health *HealthHandler, m *metrics.Metrics) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", health.Check)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	return r
}
