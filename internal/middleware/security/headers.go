package security

import (
	"fmt"
	"net/http"
)

// HeadersConfig holds security headers configuration
type HeadersConfig struct {
	CSP string

	// HSTS is only sent over TLS.
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	CrossOriginResource string
	CacheControl        string
}

// DefaultHeadersConfig returns defaults for a JSON API that serves no
// documents of its own.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP:                   "default-src 'none'; frame-ancestors 'none'",
		HSTSMaxAge:            31536000, // 1 year
		HSTSIncludeSubdomains: true,
		XFrameOptions:         "DENY",
		XContentTypeOptions:   "nosniff",
		ReferrerPolicy:        "no-referrer",
		CrossOriginResource:   "same-origin",
		CacheControl:          "no-store",
	}
}

type HeadersMiddleware struct {
	config HeadersConfig
}

func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	return &HeadersMiddleware{config: config}
}

func (h *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.applyHeaders(w, r)
		next.ServeHTTP(w, r)
	})
}

func (h *HeadersMiddleware) applyHeaders(w http.ResponseWriter, r *http.Request) {
	headers := w.Header()
	set := func(name, value string) {
		if value != "" {
			headers.Set(name, value)
		}
	}

	set("X-Content-Type-Options", h.config.XContentTypeOptions)
	set("X-Frame-Options", h.config.XFrameOptions)
	set("Content-Security-Policy", h.config.CSP)
	set("Referrer-Policy", h.config.ReferrerPolicy)
	set("Cross-Origin-Resource-Policy", h.config.CrossOriginResource)
	set("Cache-Control", h.config.CacheControl)

	if r.TLS != nil && h.config.HSTSMaxAge > 0 {
		hstsValue := fmt.Sprintf("max-age=%d", h.config.HSTSMaxAge)
		if h.config.HSTSIncludeSubdomains {
			hstsValue += "; includeSubDomains"
		}
		headers.Set("Strict-Transport-Security", hstsValue)
	}
}
