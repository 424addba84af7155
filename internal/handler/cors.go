package handler

import (
	"net/http"
)

const (
	corsAllowMethods = "POST, OPTIONS"
	corsAllowHeaders = "Content-Type"
	corsMaxAge       = "86400"
	wildcardOrigin   = "*"
)

// OriginPolicy decides the CORS headers for a request and whether its origin
// may use the submission route at all.
type OriginPolicy struct {
	allowed  map[string]bool
	wildcard bool
}

func NewOriginPolicy(origins []string) *OriginPolicy {
	p := &OriginPolicy{allowed: make(map[string]bool, len(origins))}
	for _, o := range origins {
		if o == wildcardOrigin {
			p.wildcard = true
			continue
		}
		p.allowed[o] = true
	}
	return p
}

func (p *OriginPolicy) listed(origin string) bool {
	return p.wildcard || p.allowed[origin]
}

// Headers never echoes an origin that is not on the list. An unlisted
// origin gets an empty Access-Control-Allow-Origin.
func (p *OriginPolicy) Headers(origin string) http.Header {
	h := make(http.Header)
	allowOrigin := ""
	if origin != "" && p.listed(origin) {
		allowOrigin = origin
	}
	h.Set("Access-Control-Allow-Origin", allowOrigin)
	h.Set("Access-Control-Allow-Methods", corsAllowMethods)
	h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
	h.Set("Access-Control-Max-Age", corsMaxAge)
	h.Set("Vary", "Origin")
	return h
}

// Allowed is the enforcement check. An empty list allows everyone.
func (p *OriginPolicy) Allowed(origin string) bool {
	if !p.wildcard && len(p.allowed) == 0 {
		return true
	}
	return p.listed(origin)
}

// Handler writes the CORS headers on every response and answers preflight
// requests itself, whatever the path.
func (p *OriginPolicy) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range p.Headers(r.Header.Get("Origin")) {
			w.Header()[k] = v
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
