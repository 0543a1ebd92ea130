package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yungbote/neurobridge-voice/internal/platform/apierr"
	"github.com/yungbote/neurobridge-voice/internal/platform/envutil"
	"github.com/yungbote/neurobridge-voice/internal/platform/httpx"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
	"github.com/yungbote/neurobridge-voice/internal/voice/protocol"
)

const defaultRealtimeURL = "wss://api.openai.com/v1/realtime"

type RealtimeConfig struct {
	APIKey      string
	URL         string
	Model       string
	DialTimeout time.Duration
	MaxRetries  int
	Session     protocol.SessionConfig
}

// RealtimeConfigFromEnv reads OPENAI_* and VOICE_VAD_* variables. A missing
// key is not an error here; connections fail with configuration_error.
func RealtimeConfigFromEnv() RealtimeConfig {
	return RealtimeConfig{
		APIKey:      envutil.String("OPENAI_API_KEY", ""),
		URL:         envutil.String("OPENAI_REALTIME_URL", defaultRealtimeURL),
		Model:       envutil.String("OPENAI_REALTIME_MODEL", "gpt-realtime-mini"),
		DialTimeout: envutil.Duration("OPENAI_DIAL_TIMEOUT", 10*time.Second),
		MaxRetries:  envutil.Int("OPENAI_MAX_RETRIES", 2),
		Session: protocol.SessionConfig{
			Voice:              envutil.String("OPENAI_REALTIME_VOICE", "alloy"),
			TranscriptionModel: envutil.String("OPENAI_TRANSCRIBE_MODEL", "gpt-4o-transcribe"),
			Temperature:        envutil.Float("OPENAI_REALTIME_TEMPERATURE", 0.8),
			TurnDetection: protocol.TurnDetection{
				Type:              "server_vad",
				Threshold:         envutil.Float("VOICE_VAD_THRESHOLD", 0.3),
				PrefixPaddingMS:   envutil.Int("VOICE_VAD_PREFIX_PADDING_MS", 500),
				SilenceDurationMS: envutil.Int("VOICE_VAD_SILENCE_MS", 800),
			},
		},
	}
}

// Realtime dials the assistant's websocket.
type Realtime interface {
	Configured() bool
	SessionConfig() protocol.SessionConfig
	Dial(ctx context.Context) (*websocket.Conn, error)
}

type realtime struct {
	log    *logger.Logger
	cfg    RealtimeConfig
	dialer *websocket.Dialer
}

func NewRealtime(log *logger.Logger, cfg RealtimeConfig) (Realtime, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.URL == "" {
		cfg.URL = defaultRealtimeURL
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &realtime{
		log: log.With("service", "OpenAIRealtime"),
		cfg: cfg,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.DialTimeout,
		},
	}, nil
}

func (r *realtime) Configured() bool { return strings.TrimSpace(r.cfg.APIKey) != "" }

func (r *realtime) SessionConfig() protocol.SessionConfig { return r.cfg.Session }

func (r *realtime) endpoint() (string, error) {
	u, err := url.Parse(r.cfg.URL)
	if err != nil {
		return "", err
	}
	if r.cfg.Model != "" {
		q := u.Query()
		q.Set("model", r.cfg.Model)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (r *realtime) Dial(ctx context.Context) (*websocket.Conn, error) {
	if !r.Configured() {
		return nil, apierr.New(apierr.CodeConfiguration, "Voice assistant is not configured")
	}
	target, err := r.endpoint()
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeConfiguration, err, "Invalid realtime endpoint")
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	header.Set("OpenAI-Beta", "realtime=v1")

	backoff := 500 * time.Millisecond
	for attempt := 0; ; attempt++ {
		conn, resp, err := r.dialer.DialContext(ctx, target, header)
		if err == nil {
			r.log.Info("Realtime connected", "model", r.cfg.Model, "attempt", attempt+1)
			return conn, nil
		}
		status := 0
		if resp != nil {
			status = resp.StatusCode
			_ = resp.Body.Close()
		}
		if ctx.Err() != nil || attempt >= r.cfg.MaxRetries || !httpx.RetryableDial(err, resp) {
			r.log.Warn("Realtime dial failed", "status", status, "attempt", attempt+1, "error", err)
			return nil, apierr.Wrap(apierr.CodeUpstreamFailure, err, "Could not reach the voice assistant")
		}

		sleepFor := httpx.Jitter(httpx.RetryAfter(resp, backoff, 5*time.Second))
		r.log.Warn("Realtime dial retrying",
			"status", status,
			"attempt", attempt+1,
			"max_retries", r.cfg.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		select {
		case <-ctx.Done():
			return nil, apierr.Wrap(apierr.CodeUpstreamFailure, ctx.Err(), "Could not reach the voice assistant")
		case <-time.After(sleepFor):
		}
		backoff *= 2
	}
}
