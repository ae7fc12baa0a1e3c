package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsHandler(origins []string) http.Handler {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = origins
	return CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCORS_AllowedOrigin(t *testing.T) {
	h := corsHandler([]string{"https://versz.fun"})

	req := httptest.NewRequest(http.MethodGet, "/share/t", nil)
	req.Header.Set("Origin", "https://versz.fun")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://versz.fun" {
		t.Errorf("expected allow-origin header, got %q", got)
	}
}

func TestCORS_DisallowedOriginPreflight(t *testing.T) {
	h := corsHandler([]string{"https://versz.fun"})

	req := httptest.NewRequest(http.MethodOptions, "/share/t", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for disallowed preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no allow-origin header, got %q", got)
	}
}

func TestCORS_NoOriginHeader(t *testing.T) {
	h := corsHandler([]string{"https://versz.fun"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected same-origin request to pass, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS headers for same-origin request, got %q", got)
	}
}

func TestCORS_WildcardSubdomain(t *testing.T) {
	h := corsHandler([]string{"*.versz.fun"})

	req := httptest.NewRequest(http.MethodGet, "/share/t", nil)
	req.Header.Set("Origin", "https://app.versz.fun")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.versz.fun" {
		t.Errorf("expected subdomain to be allowed, got %q", got)
	}
}
