package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yungbote/neurobridge-voice/internal/platform/apierr"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestDialSendsAuthAndModel(t *testing.T) {
	up := websocket.Upgrader{}
	var gotAuth, gotBeta, gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBeta = r.Header.Get("OpenAI-Beta")
		gotModel = r.URL.Query().Get("model")
		c, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = c.Close()
	}))
	defer srv.Close()

	rt, err := NewRealtime(logger.Nop(), RealtimeConfig{APIKey: "sk-test", URL: wsURL(srv), Model: "gpt-realtime-mini"})
	if err != nil {
		t.Fatalf("NewRealtime: %v", err)
	}
	conn, err := rt.Dial(context.Background())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	_ = conn.Close()
	if gotAuth != "Bearer sk-test" || gotBeta != "realtime=v1" || gotModel != "gpt-realtime-mini" {
		t.Fatalf("unexpected handshake: auth=%q beta=%q model=%q", gotAuth, gotBeta, gotModel)
	}
}

func TestDialWithoutKeyIsConfigurationError(t *testing.T) {
	rt, _ := NewRealtime(logger.Nop(), RealtimeConfig{})
	if rt.Configured() {
		t.Fatalf("expected unconfigured")
	}
	_, err := rt.Dial(context.Background())
	if apierr.CodeOf(err) != apierr.CodeConfiguration {
		t.Fatalf("want configuration_error, got %v", err)
	}
}

func TestDialRejectedIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	rt, _ := NewRealtime(logger.Nop(), RealtimeConfig{APIKey: "sk-bad", URL: wsURL(srv), MaxRetries: 3})
	_, err := rt.Dial(context.Background())
	if apierr.CodeOf(err) != apierr.CodeUpstreamFailure {
		t.Fatalf("want upstream_failure, got %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("401 should not be retried, hits=%d", hits.Load())
	}
}

func TestDialRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		c, err := up.Upgrade(w, r, nil)
		if err == nil {
			_ = c.Close()
		}
	}))
	defer srv.Close()

	rt, _ := NewRealtime(logger.Nop(), RealtimeConfig{APIKey: "sk", URL: wsURL(srv), MaxRetries: 2, DialTimeout: 2 * time.Second})
	conn, err := rt.Dial(context.Background())
	if err != nil {
		t.Fatalf("Dial after retry: %v", err)
	}
	_ = conn.Close()
	if hits.Load() != 2 {
		t.Fatalf("hits=%d want 2", hits.Load())
	}
}
