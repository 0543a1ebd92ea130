package app

import (
	"time"

	"github.com/yungbote/neurobridge-voice/internal/clients/openai"
	"github.com/yungbote/neurobridge-voice/internal/data/db"
	"github.com/yungbote/neurobridge-voice/internal/platform/envutil"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
	"github.com/yungbote/neurobridge-voice/internal/voice/bridge"
	"github.com/yungbote/neurobridge-voice/internal/voice/session"
)

type Config struct {
	Port        string
	Environment string
	Version     string

	JWTSecretKey string
	DB           db.Config

	SessionPolicy   session.Policy
	RedisSessionTTL time.Duration
	ToolTimeout     time.Duration

	Realtime openai.RealtimeConfig
	Bridge   bridge.Config

	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// LoadConfig reads the environment once. Secrets are reported only as
// present or missing.
func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),

		JWTSecretKey: envutil.String("JWT_SECRET_KEY", ""),
		DB:           db.ConfigFromEnv(),

		SessionPolicy:   session.ParsePolicy(envutil.String("VOICE_SESSION_POLICY", string(session.PolicyReplace))),
		RedisSessionTTL: envutil.Duration("REDIS_SESSION_TTL", 2*time.Hour),
		ToolTimeout:     envutil.Duration("VOICE_TOOL_TIMEOUT", 15*time.Second),

		Realtime: openai.RealtimeConfigFromEnv(),
		Bridge:   bridge.ConfigFromEnv(),

		AllowedOrigins:  envutil.List("CORS_ALLOWED_ORIGINS", nil),
		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if log != nil {
		log.Info("Config loaded",
			"port", cfg.Port,
			"env", cfg.Environment,
			"db_driver", cfg.DB.Driver,
			"session_policy", cfg.SessionPolicy,
			"tool_timeout", cfg.ToolTimeout.String(),
			"realtime_model", cfg.Realtime.Model,
			"realtime_voice", cfg.Realtime.Session.Voice,
			"openai_key_set", cfg.Realtime.APIKey != "",
			"jwt_secret_set", cfg.JWTSecretKey != "",
			"ping_interval", cfg.Bridge.PingInterval.String(),
		)
		if cfg.JWTSecretKey == "" {
			log.Warn("JWT_SECRET_KEY is not set; every voice connection will be refused")
		}
		if cfg.Realtime.APIKey == "" {
			log.Warn("OPENAI_API_KEY is not set; voice connections will fail with configuration_error")
		}
	}
	return cfg
}
