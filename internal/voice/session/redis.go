package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/neurobridge-voice/internal/platform/apierr"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
)

const (
	keyPrefix      = "voice:session:"
	ownerPrefix    = "voice:owner:"
	evictChannel   = "voice:evict"
	defaultTTL     = 2 * time.Hour
	redisOpTimeout = 2 * time.Second
)

var saveIfOwner = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
  redis.call("PEXPIRE", KEYS[1], ARGV[3])
  return 1
end
return 0`)

var removeIfOwner = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  redis.call("DEL", KEYS[1], KEYS[2])
  return 1
end
return 0`)

type evictMessage struct {
	UserID uuid.UUID `json:"user_id"`
	ConnID string    `json:"conn_id"`
}

// RedisStore keeps live handles in process and mirrors every session to
// Redis, with an owner key per identity so several instances agree on which
// connection holds the session. Ownership changes are broadcast so the
// instance holding the evicted connection can end it.
type RedisStore struct {
	local *MemoryStore
	rdb   goredis.UniversalClient
	ttl   time.Duration
	log   *logger.Logger
}

func NewRedisStore(log *logger.Logger, rdb goredis.UniversalClient, policy Policy, ttl time.Duration) *RedisStore {
	if log == nil {
		log = logger.Nop()
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{
		local: NewMemoryStore(log, policy),
		rdb:   rdb,
		ttl:   ttl,
		log:   log.With("service", "SessionStore", "backend", "redis"),
	}
}

func (r *RedisStore) Create(ctx context.Context, userID uuid.UUID, connID string) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	ownerKey := ownerPrefix + userID.String()
	if r.local.policy == PolicyReject {
		ok, err := r.rdb.SetNX(ctx, ownerKey, connID, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("claim session owner: %w", err)
		}
		if !ok {
			return nil, apierr.New(apierr.CodePreconditionFailed, "a voice session is already open for this account")
		}
	} else if err := r.rdb.Set(ctx, ownerKey, connID, r.ttl).Err(); err != nil {
		return nil, fmt.Errorf("set session owner: %w", err)
	}

	s, err := r.local.Create(ctx, userID, connID)
	if err != nil {
		_, _ = removeIfOwner.Run(ctx, r.rdb, []string{ownerKey, keyPrefix + userID.String()}, connID).Result()
		return nil, err
	}
	if err := r.Save(ctx, s); err != nil {
		r.log.Warn("Session mirror failed", "user_id", userID, "error", err)
	}
	if raw, err := json.Marshal(evictMessage{UserID: userID, ConnID: connID}); err == nil {
		if err := r.rdb.Publish(ctx, evictChannel, raw).Err(); err != nil {
			r.log.Warn("Evict broadcast failed", "user_id", userID, "error", err)
		}
	}
	return s, nil
}

// Get prefers the live local handle and falls back to a detached copy of the
// mirrored state owned by another instance.
func (r *RedisStore) Get(ctx context.Context, userID uuid.UUID) (*Session, bool, error) {
	if s, ok, _ := r.local.Get(ctx, userID); ok {
		return s, true, nil
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	raw, err := r.rdb.Get(ctx, keyPrefix+userID.String()).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load session: %w", err)
	}
	s := New(userID, "")
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, false, fmt.Errorf("decode session: %w", err)
	}
	return s, true, nil
}

func (r *RedisStore) Update(ctx context.Context, userID uuid.UUID, fn func(*Session)) error {
	s, ok, _ := r.local.Get(ctx, userID)
	if !ok {
		return apierr.New(apierr.CodeNotFound, "no voice session on this instance")
	}
	s.Lock()
	fn(s)
	s.Unlock()
	return r.Save(ctx, s)
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	snap := s.Snapshot()
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	keys := []string{ownerPrefix + snap.UserID.String(), keyPrefix + snap.UserID.String()}
	if err := saveIfOwner.Run(ctx, r.rdb, keys, snap.ID, raw, r.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Remove(ctx context.Context, userID uuid.UUID, connID string) error {
	r.local.mu.Lock()
	r.local.removeLocked(userID, connID)
	r.local.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	keys := []string{ownerPrefix + userID.String(), keyPrefix + userID.String()}
	if err := removeIfOwner.Run(ctx, r.rdb, keys, connID).Err(); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Start listens for ownership changes made by other instances and evicts
// the local session they replace. It returns when ctx ends.
func (r *RedisStore) Start(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, evictChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", evictChannel, err)
	}
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var em evictMessage
				if err := json.Unmarshal([]byte(msg.Payload), &em); err != nil {
					r.log.Warn("Bad evict message", "error", err)
					continue
				}
				r.evictLocal(em)
			}
		}
	}()
	return nil
}

func (r *RedisStore) evictLocal(em evictMessage) {
	r.local.mu.Lock()
	defer r.local.mu.Unlock()
	s, ok := r.local.sessions[em.UserID]
	if !ok || s.ID == em.ConnID {
		return
	}
	s.markEvicted()
	delete(r.local.sessions, em.UserID)
	r.log.Info("Voice session evicted by another instance", "user_id", em.UserID, "session_id", s.ID)
}
