package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-voice/internal/data/repos"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
	"github.com/yungbote/neurobridge-voice/internal/services"
	"github.com/yungbote/neurobridge-voice/internal/voice/session"
	"github.com/yungbote/neurobridge-voice/internal/voice/tools"
)

type Services struct {
	Identity   services.IdentityResolver
	Content    services.ContentStore
	Dispatcher *tools.Dispatcher
	Sessions   session.Store

	// redisSessions is set when sessions are shared through redis.
	redisSessions *session.RedisStore
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet repos.Set, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	content := services.NewContentStore(db, log, reposet)
	dispatcher, err := tools.NewDispatcher(log, content, tools.WithTimeout(cfg.ToolTimeout))
	if err != nil {
		return Services{}, fmt.Errorf("init tool dispatcher: %w", err)
	}

	out := Services{
		Identity:   services.NewIdentityResolver(db, log, reposet.User, cfg.JWTSecretKey),
		Content:    content,
		Dispatcher: dispatcher,
	}
	if clients.Redis != nil {
		rs := session.NewRedisStore(log, clients.Redis, cfg.SessionPolicy, cfg.RedisSessionTTL)
		out.Sessions = rs
		out.redisSessions = rs
	} else {
		out.Sessions = session.NewMemoryStore(log, cfg.SessionPolicy)
	}
	return out, nil
}
