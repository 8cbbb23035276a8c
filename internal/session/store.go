package session

import (
	"context"
	"errors"
)

var ErrInvalidSession = errors.New("session: invalid session")

// Store keeps the server-side half of sessions.
// Get returns (nil, nil) when the session does not exist or has expired.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, s Session) error
	Delete(ctx context.Context, sessionID string) error
}
