package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// newTestRedis starts an in-process Redis server for the test.
func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, srv
}

func TestRedisStore_Validation(t *testing.T) {
	r := NewRedisStore(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}))
	ctx := context.Background()

	require.Equal(t, "catalog:session:abc", r.key("abc"))
	require.ErrorIs(t, r.Create(ctx, Session{ExpiresAt: time.Now().Add(time.Hour)}), ErrInvalidSession)
	require.ErrorIs(t, r.Create(ctx, Session{ID: "a", ExpiresAt: time.Now().Add(-time.Second)}), ErrInvalidSession)
	require.ErrorIs(t, r.Update(ctx, Session{}), ErrInvalidSession)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	client, _ := newTestRedis(t)
	r := NewRedisStore(client)
	ctx := context.Background()

	id, err := GenerateID()
	require.NoError(t, err)

	s := Session{
		ID:        id,
		State:     "st",
		Login:     &Login{UserID: 3, Provider: "facebook", AccessToken: "tok"},
		Flashes:   []string{"hello"},
		ExpiresAt: time.Now().Add(time.Minute),
	}
	require.NoError(t, r.Create(ctx, s))
	t.Cleanup(func() { _ = r.Delete(ctx, id) })

	got, err := r.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, s.Login, got.Login)
	require.Equal(t, s.Flashes, got.Flashes)

	ttl, err := client.TTL(ctx, r.key(id)).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	require.NoError(t, r.Delete(ctx, id))
	gone, err := r.Get(ctx, id)
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestRedisStore_Update(t *testing.T) {
	client, srv := newTestRedis(t)
	r := NewRedisStore(client)
	ctx := context.Background()

	s := Session{ID: "abc", State: "st", ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, r.Create(ctx, s))

	s.SignIn(Login{UserID: 5, Provider: "google", AccessToken: "tok"})
	s.AddFlash("welcome")
	s.ExpiresAt = time.Now().Add(time.Hour)
	require.NoError(t, r.Update(ctx, s))

	got, err := r.Get(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, "st", got.State)
	require.Equal(t, []string{"welcome"}, got.Flashes)
	l, ok := got.CurrentUser()
	require.True(t, ok)
	require.Equal(t, "tok", l.AccessToken)
	require.Greater(t, srv.TTL(r.key("abc")), 30*time.Minute)

	s.ExpiresAt = time.Now().Add(-time.Second)
	require.NoError(t, r.Update(ctx, s))
	require.False(t, srv.Exists(r.key("abc")), "expired update drops the key")
}

func TestRedisStore_Expiry(t *testing.T) {
	client, srv := newTestRedis(t)
	r := NewRedisStore(client)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, Session{ID: "short", ExpiresAt: time.Now().Add(time.Minute)}))
	srv.FastForward(2 * time.Minute)

	got, err := r.Get(ctx, "short")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestManager_WithRedisStore(t *testing.T) {
	client, _ := newTestRedis(t)
	m, err := NewManager(NewRedisStore(client), []byte("secret"), time.Hour, CookieOptions{})
	require.NoError(t, err)

	s, err := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	s.State = "st"
	s.SignIn(Login{UserID: 2, Provider: "facebook", AccessToken: "fb"})

	loaded, err := m.Load(roundTrip(t, m, s))
	require.NoError(t, err)
	require.Equal(t, s.ID, loaded.ID)
	l, ok := loaded.CurrentUser()
	require.True(t, ok)
	require.Equal(t, "fb", l.AccessToken)
}
