package handler

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/suar-net/pixel-exchange/internal/metrics"
	"github.com/suar-net/pixel-exchange/internal/ratelimit"
)

// RequireAllowedOrigin rejects origins outside a non-empty allow-list.
func RequireAllowedOrigin(p *OriginPolicy, logger *logrus.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if !p.Allowed(origin) {
				m.IncOutcome(metrics.OutcomeForbidden)
				logger.WithField("origin", origin).Info("origin rejected")
				respondWithError(w, http.StatusForbidden, "Origin not allowed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit consults the limiter keyed by the trusted client-IP header.
// A limiter that cannot answer lets the request through.
func RateLimit(l ratelimit.Limiter, ipHeader string, logger *logrus.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r, ipHeader)

			decision, err := l.Limit(r.Context(), key)
			if err != nil {
				m.IncRateLimitError()
				logger.WithError(err).WithField("client", key).Warn("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if !decision.Success {
				m.IncOutcome(metrics.OutcomeRateLimited)
				logger.WithField("client", key).Info("request rate limited")
				respondWithError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request, ipHeader string) string {
	if ip := strings.TrimSpace(r.Header.Get(ipHeader)); ip != "" {
		return ip
	}
	return ratelimit.UnknownKey
}
