package util

import (
	"net/http"
	"strings"
)

// apiHeaders go on every response. The API returns only JSON, never
// renderable content, and its payloads carry per-user library data and
// presigned blob URLs, so intermediaries must not cache them.
var apiHeaders = map[string]string{
	"X-Content-Type-Options":  "nosniff",
	"X-Frame-Options":         "DENY",
	"Referrer-Policy":         "no-referrer",
	"Cache-Control":           "no-store",
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
}

// WithSecurityHeaders applies the API's fixed security headers. HSTS is only
// sent when the request arrived over HTTPS, directly or via a proxy.
func WithSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for name, value := range apiHeaders {
			h.Set(name, value)
		}
		if r.TLS != nil || strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https") {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}
