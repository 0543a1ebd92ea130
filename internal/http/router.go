package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/neurobridge-voice/internal/http/handlers"
	httpMW "github.com/yungbote/neurobridge-voice/internal/http/middleware"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	VoiceHandler  *httpH.VoiceHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")

	// Voice; the websocket authenticates with the token in its path.
	if cfg.VoiceHandler != nil {
		voice := api.Group("/voice")
		voice.GET("/realtime/:token", cfg.VoiceHandler.Realtime)
		voice.GET("/session-token", cfg.VoiceHandler.SessionToken)
		voice.GET("/tools", cfg.VoiceHandler.Tools)
	}

	return r
}
