package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"catalog-service/internal/logger"
)

// Manager loads sessions from requests and writes them back.
type Manager struct {
	store  Store
	codec  *TokenCodec
	ttl    time.Duration
	cookie CookieOptions
	now    func() time.Time
}

func NewManager(store Store, secret []byte, ttl time.Duration, cookie CookieOptions) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session: nil store")
	}
	if ttl <= 0 {
		return nil, errors.New("session: ttl must be positive")
	}

	codec, err := NewTokenCodec(secret)
	if err != nil {
		return nil, err
	}

	return &Manager{
		store:  store,
		codec:  codec,
		ttl:    ttl,
		cookie: cookie,
		now:    time.Now,
	}, nil
}

// Load returns the session carried by r, or a fresh unsaved one when the
// cookie is absent, invalid or points at nothing. Only store failures are
// returned as errors.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return m.fresh()
	}

	claims, err := m.codec.Decode(cookie.Value)
	if err != nil {
		logger.Debug("session token rejected", map[string]any{"error": err.Error()})
		return m.fresh()
	}

	s, err := m.store.Get(r.Context(), claims.ID)
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	if s == nil {
		return m.fresh()
	}

	if !agrees(claims, s) {
		logger.Warn("session token disagrees with record", map[string]any{
			"session_id": s.ID,
		})
		s.SignOut()
		s.State = ""
	}

	return s, nil
}

// Save persists s and refreshes the cookie. Expiry slides forward by the
// configured ttl on every save.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	s.ExpiresAt = m.now().Add(m.ttl)

	var err error
	if s.isNew {
		err = m.store.Create(ctx, *s)
	} else {
		err = m.store.Update(ctx, *s)
	}
	if err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	s.isNew = false

	token, err := m.codec.Encode(s)
	if err != nil {
		return err
	}

	SetCookie(w, token, s.ExpiresAt, m.cookie)
	return nil
}

// Renew moves s to a fresh id and deletes the record stored under the old
// one, so cookies issued before the change load an empty session. The caller
// saves s afterwards.
func (m *Manager) Renew(ctx context.Context, s *Session) error {
	if !s.isNew {
		if err := m.store.Delete(ctx, s.ID); err != nil {
			return fmt.Errorf("session: renew: %w", err)
		}
	}

	id, err := GenerateID()
	if err != nil {
		return err
	}
	s.ID = id
	s.isNew = true
	return nil
}

// Destroy deletes the record and clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s *Session) error {
	ClearCookie(w, m.cookie)
	if s == nil || s.isNew {
		return nil
	}
	return m.store.Delete(ctx, s.ID)
}

func (m *Manager) fresh() (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:        id,
		ExpiresAt: m.now().Add(m.ttl),
		isNew:     true,
	}, nil
}

func agrees(c *Claims, s *Session) bool {
	if c.State != s.State {
		return false
	}
	l, ok := s.CurrentUser()
	if !ok {
		return c.UserID == 0 && c.Provider == ""
	}
	return c.UserID == l.UserID && c.Provider == l.Provider
}
