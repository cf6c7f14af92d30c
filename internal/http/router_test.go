package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkarlsen/go-error-boundaries/internal/config"
)

func do(t *testing.T, s *Server, method, path string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for k, vv := range header {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	s.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthAndMetricsWired(t *testing.T) {
	s, _ := newTestServer(t, config.VariantMiddleware)

	if w := get(t, s, "/health"); w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	w := get(t, s, "/metrics")
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}
}

func TestRouter_FallbacksRaiseWellKnownConditions(t *testing.T) {
	s, buf := newTestServer(t, config.VariantMiddleware)

	// Unknown route → 404 through the condition table.
	assertEnvelope(t, get(t, s, "/nope"), http.StatusNotFound, "Not Found")

	// Wrong method on a known route → 405 through the condition table.
	w := do(t, s, http.MethodPost, "/404", nil)
	assertEnvelope(t, w, http.StatusMethodNotAllowed, "Method Not Allowed")

	events := parseEvents(t, buf)
	if countKind(events, "error") != 0 || countKind(events, "traceback") != 0 {
		t.Fatalf("fallbacks must not log errors: %+v", events)
	}
}

func TestRouter_CORSAllowAll(t *testing.T) {
	s, _ := newTestServer(t, config.VariantMiddleware)

	// The origin host must differ from the request host (example.com for
	// httptest requests), otherwise cors treats it as same-origin and skips
	// the headers entirely.
	w := do(t, s, http.MethodGet, "/health", http.Header{"Origin": {"http://other.test"}})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("ACAO = %q; want '*'", got)
	}

	// Same-origin requests get no CORS headers.
	w = do(t, s, http.MethodGet, "/health", http.Header{"Origin": {"http://example.com"}})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("same-origin ACAO = %q; want empty", got)
	}
}

func TestRouter_SecurityHeadersPresent(t *testing.T) {
	s, _ := newTestServer(t, config.VariantHandler)

	w := get(t, s, "/404")
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}
}

func TestNewTable_DefaultOnlyForHandlerVariant(t *testing.T) {
	if _, ok := NewTable(testConfig(config.VariantHandler)).Default(); !ok {
		t.Fatalf("handler variant should carry a default registration")
	}
	if _, ok := NewTable(testConfig(config.VariantMiddleware)).Default(); ok {
		t.Fatalf("middleware variant must not register a table catch-all")
	}
}
