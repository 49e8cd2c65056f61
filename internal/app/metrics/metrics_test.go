package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func requestCount(t *testing.T, method, path, status string) float64 {
	t.Helper()
	c, err := httpRequests.GetMetricWithLabelValues(method, path, status)
	if err != nil {
		t.Fatalf("get counter: %v", err)
	}
	return testutil.ToFloat64(c)
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	before := requestCount(t, http.MethodGet, "/widgets/{id}", "200")

	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/widgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/widgets/42", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	if got := requestCount(t, http.MethodGet, "/widgets/{id}", "200"); got != before+1 {
		t.Fatalf("expected pattern-labelled count %v, got %v", before+1, got)
	}
	if got := requestCount(t, http.MethodGet, "/widgets/42", "200"); got != 0 {
		t.Fatalf("raw path must not be used as a label, got %v", got)
	}
}

func TestMiddlewareLabelsUnroutedRequests(t *testing.T) {
	before := requestCount(t, http.MethodOptions, "unmatched", "200")

	// A middleware that answers before routing, the way a CORS preflight is
	// short-circuited, leaves no route pattern behind.
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodOptions, "/api/anything/at/all", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	if got := requestCount(t, http.MethodOptions, "unmatched", "200"); got != before+1 {
		t.Fatalf("expected fixed unmatched label count %v, got %v", before+1, got)
	}
	if got := requestCount(t, http.MethodOptions, "/api/anything/at/all", "200"); got != 0 {
		t.Fatalf("raw path must not be used as a label, got %v", got)
	}
}
