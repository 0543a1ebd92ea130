package bridge

import (
	"time"

	"github.com/yungbote/neurobridge-voice/internal/platform/envutil"
)

type Config struct {
	WriteTimeout    time.Duration
	PingInterval    time.Duration
	MaxMessageBytes int64
	// AudioLogEvery logs the binary chunk count every N chunks.
	AudioLogEvery int
}

func ConfigFromEnv() Config {
	return Config{
		WriteTimeout:    envutil.Duration("VOICE_WS_WRITE_TIMEOUT", 5*time.Second),
		PingInterval:    envutil.Duration("VOICE_WS_PING_INTERVAL", 20*time.Second),
		MaxMessageBytes: int64(envutil.Int("VOICE_MAX_MESSAGE_BYTES", 1<<20)),
		AudioLogEvery:   envutil.Int("VOICE_AUDIO_LOG_EVERY", 50),
	}
}

func (c Config) withDefaults() Config {
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 20 * time.Second
	}
	if c.MaxMessageBytes <= 0 {
		c.MaxMessageBytes = 1 << 20
	}
	if c.AudioLogEvery <= 0 {
		c.AudioLogEvery = 50
	}
	return c
}

// pongWait is how long a peer may stay silent before it is considered gone.
func (c Config) pongWait() time.Duration { return c.PingInterval * 5 / 2 }
