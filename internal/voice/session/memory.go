package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-voice/internal/platform/apierr"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
)

// MemoryStore keeps sessions in a process-local table. A restart loses them.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	policy   Policy
	log      *logger.Logger
}

func NewMemoryStore(log *logger.Logger, policy Policy) *MemoryStore {
	if log == nil {
		log = logger.Nop()
	}
	return &MemoryStore{
		sessions: map[uuid.UUID]*Session{},
		policy:   policy,
		log:      log.With("service", "SessionStore", "backend", "memory"),
	}
}

func (m *MemoryStore) Create(ctx context.Context, userID uuid.UUID, connID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createLocked(userID, connID)
}

func (m *MemoryStore) createLocked(userID uuid.UUID, connID string) (*Session, error) {
	if prev, ok := m.sessions[userID]; ok {
		if m.policy == PolicyReject {
			return nil, apierr.New(apierr.CodePreconditionFailed, "a voice session is already open for this account")
		}
		prev.markEvicted()
		m.log.Info("Voice session replaced", "user_id", userID, "prev_session_id", prev.ID, "session_id", connID)
	}
	s := New(userID, connID)
	m.sessions[userID] = s
	return s, nil
}

func (m *MemoryStore) Get(ctx context.Context, userID uuid.UUID) (*Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return s, ok, nil
}

func (m *MemoryStore) Update(ctx context.Context, userID uuid.UUID, fn func(*Session)) error {
	s, ok, _ := m.Get(ctx, userID)
	if !ok {
		return apierr.New(apierr.CodeNotFound, "no voice session")
	}
	s.Lock()
	fn(s)
	s.Unlock()
	return nil
}

func (m *MemoryStore) Save(ctx context.Context, s *Session) error { return nil }

func (m *MemoryStore) Remove(ctx context.Context, userID uuid.UUID, connID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(userID, connID)
	return nil
}

func (m *MemoryStore) removeLocked(userID uuid.UUID, connID string) bool {
	s, ok := m.sessions[userID]
	if !ok || s.ID != connID {
		return false
	}
	delete(m.sessions, userID)
	return true
}

// Len is the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
