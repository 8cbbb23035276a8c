package session

import "time"

// Login is the signed-in half of a session. Its presence on a Session is the
// only marker of being logged in.
type Login struct {
	UserID         int64  `json:"user_id"`
	Provider       string `json:"provider"`
	ProviderUserID string `json:"provider_user_id"`
	AccessToken    string `json:"access_token"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Picture        string `json:"picture"`
}

// Session is the per-browser state. Login == nil means logged out.
type Session struct {
	ID        string    `json:"id"`
	State     string    `json:"state,omitempty"`
	Login     *Login    `json:"login,omitempty"`
	Flashes   []string  `json:"flashes,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`

	// isNew marks a session that has not been persisted yet.
	isNew bool
}

// CurrentUser returns the login and true when the session is logged in.
func (s *Session) CurrentUser() (Login, bool) {
	if s == nil || s.Login == nil {
		return Login{}, false
	}
	return *s.Login, true
}

func (s *Session) SignIn(l Login) {
	s.Login = &l
}

// SignOut drops the login. State and flashes survive so the next page can
// still report what happened.
func (s *Session) SignOut() {
	s.Login = nil
}

func (s *Session) AddFlash(msg string) {
	s.Flashes = append(s.Flashes, msg)
}

// PopFlashes returns the queued flash messages and clears them.
func (s *Session) PopFlashes() []string {
	f := s.Flashes
	s.Flashes = nil
	return f
}

// IsNew reports whether the session was created by this request.
func (s *Session) IsNew() bool {
	return s.isNew
}
