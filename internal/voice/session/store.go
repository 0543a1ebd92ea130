package session

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Policy decides what happens when an identity that already has a session
// connects again.
type Policy string

const (
	// PolicyReplace evicts the older connection (last connection wins).
	PolicyReplace Policy = "replace"
	// PolicyReject refuses the newer connection.
	PolicyReject Policy = "reject"
)

func ParsePolicy(raw string) Policy {
	if strings.EqualFold(strings.TrimSpace(raw), string(PolicyReject)) {
		return PolicyReject
	}
	return PolicyReplace
}

// Store maps an identity to its single live session.
type Store interface {
	// Create allocates an idle session for userID owned by connID, applying
	// the store's policy when one already exists.
	Create(ctx context.Context, userID uuid.UUID, connID string) (*Session, error)
	Get(ctx context.Context, userID uuid.UUID) (*Session, bool, error)
	// Update runs fn under the session lock; last writer wins.
	Update(ctx context.Context, userID uuid.UUID, fn func(*Session)) error
	// Save mirrors the session's current state if it still owns its slot.
	Save(ctx context.Context, s *Session) error
	// Remove deletes the session when connID still owns it. Idempotent.
	Remove(ctx context.Context, userID uuid.UUID, connID string) error
}
