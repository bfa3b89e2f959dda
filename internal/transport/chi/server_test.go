package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	healthuc "github.com/kailas-cloud/mdsearch/internal/usecase/health"
)

// --- Mocks ---

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

func serve(t *testing.T, h http.Handler, path, auth string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// --- Health endpoint tests ---

func TestHealthz(t *testing.T) {
	h := NewServer(&mockHealth{}, nil).Router(nil)

	rr := serve(t, h, "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusOK)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
	var body livenessResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != "ok" || body.Version == "" {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name   string
		status healthuc.Status
		want   int
	}{
		{"healthy", healthuc.Healthy, http.StatusOK},
		{"degraded sink", healthuc.Degraded, http.StatusOK},
		{"engine down", healthuc.Unhealthy, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := healthuc.Report{Status: tt.status, Checks: map[string]healthuc.CheckResult{"engine": "ok"}}
			h := NewServer(&mockHealth{report: report}, nil).Router(nil)

			rr := serve(t, h, "/readyz", "")
			if rr.Code != tt.want {
				t.Fatalf("got %d, want %d", rr.Code, tt.want)
			}
			var body healthuc.Report
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if body.Status != tt.status {
				t.Errorf("expected status %q, got %q", tt.status, body.Status)
			}
		})
	}
}

func TestMetrics(t *testing.T) {
	h := NewServer(&mockHealth{}, nil).Router(nil)
	rr := serve(t, h, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", rr.Code, http.StatusOK)
	}
}

// --- Auth tests ---

func TestAuth(t *testing.T) {
	h := NewServer(&mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}, nil).Router([]string{"", "secret"})

	tests := []struct {
		name string
		path string
		auth string
		want int
	}{
		{"health endpoint exempt", "/readyz", "", http.StatusOK},
		{"liveness exempt", "/healthz", "", http.StatusOK},
		{"missing header", "/metrics", "", http.StatusUnauthorized},
		{"wrong scheme", "/metrics", "Basic secret", http.StatusUnauthorized},
		{"wrong key", "/metrics", "Bearer nope", http.StatusUnauthorized},
		{"valid key", "/metrics", "Bearer secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(t, h, tt.path, tt.auth)
			if rr.Code != tt.want {
				t.Errorf("got %d, want %d", rr.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized {
				var body errorResponse
				if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
					t.Fatalf("decode error response: %v", err)
				}
				if body.Code != "unauthorized" {
					t.Errorf("expected code unauthorized, got %q", body.Code)
				}
			}
		})
	}
}

func TestBearerAuthMiddleware_EmptyKeysPassThrough(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	rr := serve(t, BearerAuthMiddleware([]string{"", ""})(ok), "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Errorf("got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRecoverer(t *testing.T) {
	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	rr := serve(t, jsonRecoverer(NewServer(&mockHealth{}, nil).logger)(panicky), "/x", "")
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("got %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}
