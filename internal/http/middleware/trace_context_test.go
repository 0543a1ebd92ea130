package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-voice/internal/platform/ctxutil"
)

func TestTraceContextEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen == nil || seen.RequestID != "req-123" || seen.TraceID == "" {
		t.Fatalf("trace data not attached: %+v", seen)
	}
	if rec.Header().Get("X-Request-Id") != "req-123" || rec.Header().Get("X-Trace-Id") != seen.TraceID {
		t.Fatalf("headers not echoed: %v", rec.Header())
	}
}

func TestTraceContextGeneratesIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Header().Get("X-Request-Id") == "" || rec.Header().Get("X-Trace-Id") == "" {
		t.Fatalf("ids not generated: %v", rec.Header())
	}
}

func TestTraceContextAssignsConnIDToUpgrades(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/ws", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	plain := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.ServeHTTP(httptest.NewRecorder(), plain)
	if seen == nil || seen.ConnID != "" {
		t.Fatalf("plain request got a connection id: %+v", seen)
	}

	upgrade := httptest.NewRequest(http.MethodGet, "/ws", nil)
	upgrade.Header.Set("Connection", "Upgrade")
	upgrade.Header.Set("Upgrade", "websocket")
	r.ServeHTTP(httptest.NewRecorder(), upgrade)
	if seen == nil || seen.ConnID == "" {
		t.Fatalf("upgrade missing connection id: %+v", seen)
	}
}
