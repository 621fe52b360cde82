package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

	for name, want := range map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
		"Cache-Control":           "no-store",
	} {
		if got := rr.Header().Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.TLS = &tls.ConnectionState{}
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS = %q", got)
	}
}

func TestClientIP_Extract(t *testing.T) {
	c := NewClientIP()
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"direct public peer", "203.0.113.7:5000", nil, "203.0.113.7"},
		{"public peer cannot spoof", "203.0.113.7:5000", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "203.0.113.7"},
		{"trusted proxy forwards", "127.0.0.1:5000", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.2"}, "198.51.100.1"},
		{"trusted proxy real ip", "10.1.2.3:5000", map[string]string{"X-Real-IP": "198.51.100.9"}, "198.51.100.9"},
		{"invalid forwarded value", "192.168.1.1:5000", map[string]string{"X-Forwarded-For": "not-an-ip"}, "192.168.1.1"},
		{"no port", "198.51.100.4", nil, "198.51.100.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := c.Extract(req); got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientIP_AddTrustedProxy(t *testing.T) {
	c := NewClientIP()
	if err := c.AddTrustedProxy("not-a-cidr"); err == nil {
		t.Error("expected error for invalid CIDR")
	}
	if err := c.AddTrustedProxy("203.0.113.0/24"); err != nil {
		t.Fatalf("AddTrustedProxy: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:5000"
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	if got := c.Extract(req); got != "198.51.100.1" {
		t.Errorf("Extract() = %q, want forwarded address", got)
	}
}
