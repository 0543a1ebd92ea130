package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestReadyReportsFailingDependency(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHealthHandler(map[string]Pinger{
		"database": pingFunc(func(context.Context) error { return nil }),
		"redis":    pingFunc(func(context.Context) error { return errors.New("connection refused") }),
	})
	r := gin.New()
	r.GET("/readyz", h.Ready)
	r.GET("/healthcheck", h.HealthCheck)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: want 503 got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "connection refused") || !strings.Contains(body, `"database":"ok"`) {
		t.Fatalf("unexpected body %s", body)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: %d %q", rec.Code, rec.Body.String())
	}
}
