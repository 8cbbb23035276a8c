package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the signed cookie payload. The server-side record stays the
// source of truth; the claims only have to agree with it.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"uid,omitempty"`
	Provider string `json:"prv,omitempty"`
	State    string `json:"state,omitempty"`
}

type TokenCodec struct {
	secret []byte
}

func NewTokenCodec(secret []byte) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("session: empty signing secret")
	}
	return &TokenCodec{secret: secret}, nil
}

// Encode signs the session's identifying fields into an HS256 token.
func (c *TokenCodec) Encode(s *Session) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
		State: s.State,
	}
	if l, ok := s.CurrentUser(); ok {
		claims.UserID = l.UserID
		claims.Provider = l.Provider
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("session: sign token: %w", err)
	}
	return token, nil
}

func (c *TokenCodec) Decode(raw string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	if !token.Valid || claims.ID == "" {
		return nil, ErrInvalidSession
	}

	return claims, nil
}
