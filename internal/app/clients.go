package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/neurobridge-voice/internal/clients/openai"
	"github.com/yungbote/neurobridge-voice/internal/clients/redis"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
)

type Clients struct {
	// Redis is nil when REDIS_ADDR is unset.
	Redis    *goredis.Client
	Realtime openai.Realtime
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	rdb, err := redis.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}

	rt, err := openai.NewRealtime(log, cfg.Realtime)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return Clients{}, fmt.Errorf("init realtime client: %w", err)
	}

	return Clients{Redis: rdb, Realtime: rt}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

// redisPinger adapts the redis client to the readiness check.
type redisPinger struct{ rdb *goredis.Client }

func (p redisPinger) PingContext(ctx context.Context) error { return p.rdb.Ping(ctx).Err() }
