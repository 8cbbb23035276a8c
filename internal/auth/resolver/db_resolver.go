package resolver

import (
	"context"
	"errors"
	"fmt"

	"catalog-service/internal/auth"
	"catalog-service/internal/db"
	"catalog-service/internal/logger"
	"catalog-service/internal/store"
)

var ErrInvalidIdentity = errors.New("resolver: identity has no email")

// DBResolver maps identities to users by email, creating the user on first
// sight. Existing users keep the name and picture they were created with.
type DBResolver struct {
	db db.DBTX
}

func NewDBResolver(q db.DBTX) *DBResolver {
	return &DBResolver{db: q}
}

func (r *DBResolver) Resolve(
	ctx context.Context,
	identity *auth.Identity,
) (int64, error) {

	if identity == nil || identity.Email == "" {
		return 0, ErrInvalidIdentity
	}

	s := store.New(r.db)

	// 1. Existing user by email
	u, err := s.UserByEmail(ctx, identity.Email)
	if err == nil {
		return u.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("resolver: lookup: %w", err)
	}

	// 2. Create; a concurrent first login may win the insert, in which case
	// the store hands back the winner's id
	id, created, err := s.CreateUserIfAbsent(ctx, &store.User{
		Name:    identity.Name,
		Email:   identity.Email,
		Picture: identity.Picture,
	})
	if err != nil {
		return 0, fmt.Errorf("resolver: create: %w", err)
	}

	if created {
		logger.Info("user created", map[string]any{
			"user_id":  id,
			"provider": identity.Provider,
		})
	}

	return id, nil
}
