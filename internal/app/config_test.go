package app

import (
	"testing"
	"time"

	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
	"github.com/yungbote/neurobridge-voice/internal/voice/session"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "VOICE_SESSION_POLICY", "VOICE_TOOL_TIMEOUT", "OPENAI_REALTIME_MODEL", "VOICE_VAD_SILENCE_MS", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig(logger.Nop())

	if cfg.Port != "8080" || cfg.SessionPolicy != session.PolicyReplace || cfg.ToolTimeout != 15*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Realtime.Model != "gpt-realtime-mini" || cfg.Realtime.Session.TurnDetection.SilenceDurationMS != 800 {
		t.Fatalf("unexpected realtime defaults: %+v", cfg.Realtime)
	}
	if cfg.Bridge.WriteTimeout != 5*time.Second || cfg.Bridge.MaxMessageBytes != 1<<20 {
		t.Fatalf("unexpected bridge defaults: %+v", cfg.Bridge)
	}
	if cfg.AllowedOrigins != nil {
		t.Fatalf("origins should default to nil, got %v", cfg.AllowedOrigins)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("VOICE_SESSION_POLICY", "reject")
	t.Setenv("VOICE_TOOL_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("VOICE_VAD_THRESHOLD", "0.5")

	cfg := LoadConfig(logger.Nop())
	if cfg.SessionPolicy != session.PolicyReject || cfg.ToolTimeout != 3*time.Second {
		t.Fatalf("overrides ignored: %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins=%v", cfg.AllowedOrigins)
	}
	if cfg.Realtime.Session.TurnDetection.Threshold != 0.5 {
		t.Fatalf("vad threshold=%v", cfg.Realtime.Session.TurnDetection.Threshold)
	}
}
