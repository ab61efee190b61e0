package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/breaddesk/breaddesk-backend/api/controllers"
	pkgauth "github.com/breaddesk/breaddesk-backend/pkg/auth"
	"github.com/breaddesk/breaddesk-backend/pkg/config"
	"github.com/breaddesk/breaddesk-backend/pkg/logger"
	"github.com/breaddesk/breaddesk-backend/pkg/metrics"
)

type stubSessionChecker struct {
	ok  bool
	err error
}

func (s stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return s.ok, s.err
}

func newTestRouter(t *testing.T, sessions stubSessionChecker) (http.Handler, config.JWTConfig) {
	t.Helper()

	cfg := &config.Config{
		App:     config.AppConfig{Env: "test", Port: "0"},
		JWT:     config.JWTConfig{Secret: "router-test-secret", Issuer: "breaddesk-test", ExpirationMinutes: 5},
		Storage: config.StorageConfig{Driver: "cloudinary"},
	}
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})

	handler := NewRouter(Deps{
		Config:         cfg,
		Logger:         logg,
		HTTPMetrics:    metrics.NewHTTPMetrics(nil),
		Sessions:       sessions,
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
	})
	return handler, cfg.JWT
}

func mintToken(t *testing.T, cfg config.JWTConfig) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg, time.Now(), pkgauth.AccessTokenPayload{
		UserID: 1,
		Email:  "admin@example.com",
		JTI:    "router-test-jti",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRouterRejectsMissingToken(t *testing.T) {
	handler, _ := newTestRouter(t, stubSessionChecker{ok: true})

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterRejectsRevokedSession(t *testing.T) {
	handler, jwtCfg := newTestRouter(t, stubSessionChecker{ok: false})

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, jwtCfg))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterHealthLiveIsPublic(t *testing.T) {
	handler, _ := newTestRouter(t, stubSessionChecker{ok: true})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if env := rec.Header().Get("X-BreadDesk-Env"); env != "test" {
		t.Fatalf("env header = %q", env)
	}
}

func TestRouterMetricsIsPublic(t *testing.T) {
	handler, _ := newTestRouter(t, stubSessionChecker{ok: true})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

var _ controllers.Pinger = stubPinger{}

type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func TestRouterHealthReadyChecksDatabase(t *testing.T) {
	cfg := &config.Config{
		App:     config.AppConfig{Env: "test", Port: "0"},
		JWT:     config.JWTConfig{Secret: "router-test-secret", Issuer: "breaddesk-test", ExpirationMinutes: 5},
		Storage: config.StorageConfig{Driver: "cloudinary"},
	}
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})

	handler := NewRouter(Deps{
		Config:         cfg,
		Logger:         logg,
		HTTPMetrics:    metrics.NewHTTPMetrics(nil),
		Sessions:       stubSessionChecker{ok: true},
		Database:       stubPinger{err: context.DeadlineExceeded},
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
	})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503: %s", rec.Code, rec.Body.String())
	}
}
