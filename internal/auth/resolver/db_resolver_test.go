package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"catalog-service/internal/auth"
	"catalog-service/internal/db"
	"catalog-service/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)

	d, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	require.NoError(t, db.Migrate(context.Background(), d))
	return d
}

func identity(email string) *auth.Identity {
	return &auth.Identity{
		Provider:       "google",
		ProviderUserID: "sub-" + email,
		Email:          email,
		Name:           "Name " + email,
		Picture:        "https://example.com/" + email,
	}
}

func TestResolve_CreatesOnFirstLogin(t *testing.T) {
	d := setupTestDB(t)
	r := NewDBResolver(d)

	id, err := r.Resolve(context.Background(), identity("ann@example.com"))
	require.NoError(t, err)
	require.NotZero(t, id)

	u, err := store.New(d).UserByID(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "Name ann@example.com", u.Name)
	require.Equal(t, "https://example.com/ann@example.com", u.Picture)
}

func TestResolve_Idempotent(t *testing.T) {
	d := setupTestDB(t)
	r := NewDBResolver(d)
	ctx := context.Background()

	first, err := r.Resolve(ctx, identity("ann@example.com"))
	require.NoError(t, err)

	changed := identity("ann@example.com")
	changed.Provider = "facebook"
	changed.Name = "Ann Renamed"

	second, err := r.Resolve(ctx, changed)
	require.NoError(t, err)
	require.Equal(t, first, second)

	users, err := store.New(d).ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "Name ann@example.com", users[0].Name, "profile is not refreshed")
}

func TestResolve_ConcurrentFirstLogins(t *testing.T) {
	d := setupTestDB(t)
	r := NewDBResolver(d)

	const n = 8
	ids := make([]int64, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = r.Resolve(context.Background(), identity("race@example.com"))
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, ids[0], ids[i])
	}

	users, err := store.New(d).ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestResolve_RejectsInvalidIdentity(t *testing.T) {
	r := NewDBResolver(setupTestDB(t))

	_, err := r.Resolve(context.Background(), nil)
	require.ErrorIs(t, err, ErrInvalidIdentity)

	_, err = r.Resolve(context.Background(), &auth.Identity{Provider: "google"})
	require.ErrorIs(t, err, ErrInvalidIdentity)
}

func TestResolve_LookupError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	mock.ExpectQuery(`SELECT id, name, email, picture FROM users WHERE email`).
		WillReturnError(errors.New("connection reset"))

	_, err = NewDBResolver(conn).Resolve(context.Background(), identity("ann@example.com"))
	require.ErrorContains(t, err, "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}
