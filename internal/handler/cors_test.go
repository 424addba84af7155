package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginPolicyHeaders(t *testing.T) {
	p := NewOriginPolicy([]string{"https://yuzolabs.github.io"})

	h := p.Headers("https://yuzolabs.github.io")
	assert.Equal(t, "https://yuzolabs.github.io", h.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", h.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", h.Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", h.Get("Access-Control-Max-Age"))

	h = p.Headers("https://evil.example")
	assert.Contains(t, h, "Access-Control-Allow-Origin")
	assert.Equal(t, "", h.Get("Access-Control-Allow-Origin"))
}

func TestOriginPolicyWildcard(t *testing.T) {
	p := NewOriginPolicy([]string{"https://a.example", "*"})

	assert.Equal(t, "https://anything.example", p.Headers("https://anything.example").Get("Access-Control-Allow-Origin"))
	assert.True(t, p.Allowed("https://anything.example"))
	assert.True(t, p.Allowed(""))
}

func TestOriginPolicyAllowed(t *testing.T) {
	tests := []struct {
		name    string
		list    []string
		origin  string
		allowed bool
	}{
		{"empty list allows all", nil, "https://x.example", true},
		{"empty list allows missing origin", nil, "", true},
		{"listed", []string{"https://a.example"}, "https://a.example", true},
		{"unlisted", []string{"https://a.example"}, "https://b.example", false},
		{"missing origin", []string{"https://a.example"}, "", false},
		{"no prefix match", []string{"https://a.example"}, "https://a.example.evil", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, NewOriginPolicy(tt.list).Allowed(tt.origin))
		})
	}
}

func TestOriginPolicyEmptyListEchoesNothing(t *testing.T) {
	p := NewOriginPolicy(nil)
	assert.Equal(t, "", p.Headers("https://x.example").Get("Access-Control-Allow-Origin"))
}

func TestOriginPolicyHandlerPreflight(t *testing.T) {
	p := NewOriginPolicy([]string{"https://a.example"})
	called := false
	h := p.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodOptions, "/anything", nil)
	req.Header.Set("Origin", "https://a.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "https://a.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
