package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func doCORS(t *testing.T, origins []string, method, origin string) *httptest.ResponseRecorder {
	t.Helper()

	handler := CORS(origins)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(method, "/api/chat", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORSExplicitOriginAllowsCredentials(t *testing.T) {
	rec := doCORS(t, []string{"https://mathpeer.example.com"}, http.MethodPost, "https://mathpeer.example.com")

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://mathpeer.example.com" {
		t.Errorf("allow-origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("allow-credentials = %q, want true", got)
	}
}

func TestCORSWildcardNeverAllowsCredentials(t *testing.T) {
	rec := doCORS(t, []string{"*"}, http.MethodPost, "https://anywhere.example.com")

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://anywhere.example.com" {
		t.Errorf("allow-origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("allow-credentials = %q, want unset for wildcard", got)
	}
}

func TestCORSUnknownOriginGetsNoHeaders(t *testing.T) {
	rec := doCORS(t, []string{"https://mathpeer.example.com"}, http.MethodPost, "https://evil.example.com")

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow-origin = %q, want unset", got)
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	called := false
	handler := CORS([]string{"*"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if called {
		t.Error("preflight should not reach the next handler")
	}
}
