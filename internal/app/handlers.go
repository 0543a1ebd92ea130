package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/neurobridge-voice/internal/http/handlers"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	Voice  *httpH.VoiceHandler
}

func wireHandlers(log *logger.Logger, cfg Config, db *gorm.DB, clients Clients, svc Services) Handlers {
	log.Info("Wiring handlers...")

	deps := map[string]httpH.Pinger{}
	if sqlDB, err := db.DB(); err == nil {
		deps["database"] = sqlDB
	}
	if clients.Redis != nil {
		deps["redis"] = redisPinger{rdb: clients.Redis}
	}

	return Handlers{
		Health: httpH.NewHealthHandler(deps),
		Voice: httpH.NewVoiceHandler(httpH.VoiceHandlerDeps{
			Log:            log,
			Identity:       svc.Identity,
			Sessions:       svc.Sessions,
			Realtime:       clients.Realtime,
			Dispatcher:     svc.Dispatcher,
			Bridge:         cfg.Bridge,
			AllowedOrigins: cfg.AllowedOrigins,
		}),
	}
}
