package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"docqa-backend/internal/services/health"
	"docqa-backend/internal/shared/config"
)

func newTestRouter(h *health.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterDeps{
		Config: config.Config{Env: "dev", RateLimitRate: 100, RateLimitBurst: 100, QueryRateLimitRate: 100, QueryRateLimitBurst: 100},
		Health: h,
	})
}

func TestHealthIsPublic(t *testing.T) {
	router := newTestRouter(health.NewService(health.Check{Name: "db", Ping: func(context.Context) error { return nil }}))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"ok":true`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestHealthUnavailable(t *testing.T) {
	router := newTestRouter(health.NewService(health.Check{Name: "db", Ping: func(context.Context) error { return errors.New("down") }}))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestProtectedRoutesRequireIdentity(t *testing.T) {
	router := newTestRouter(nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/me", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-User-Id", "user-1")
	ok := httptest.NewRecorder()
	router.ServeHTTP(ok, req)
	if ok.Code != http.StatusOK || !strings.Contains(ok.Body.String(), "user-1") {
		t.Fatalf("expected 200 with user id, got %d %s", ok.Code, ok.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestAddr(t *testing.T) {
	for in, want := range map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"} {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
