package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("create get update delete", func(t *testing.T) {
		m := NewMemoryStore()
		s := Session{ID: "a", State: "st", ExpiresAt: time.Now().Add(time.Hour)}

		require.NoError(t, m.Create(ctx, s))

		got, err := m.Get(ctx, "a")
		require.NoError(t, err)
		require.Equal(t, "st", got.State)

		got.SignIn(Login{UserID: 1})
		require.NoError(t, m.Update(ctx, *got))

		again, err := m.Get(ctx, "a")
		require.NoError(t, err)
		l, ok := again.CurrentUser()
		require.True(t, ok)
		require.Equal(t, int64(1), l.UserID)

		require.NoError(t, m.Delete(ctx, "a"))
		gone, err := m.Get(ctx, "a")
		require.NoError(t, err)
		require.Nil(t, gone)
	})

	t.Run("returned sessions do not alias the store", func(t *testing.T) {
		m := NewMemoryStore()
		s := Session{ID: "a", Login: &Login{UserID: 1}, ExpiresAt: time.Now().Add(time.Hour)}
		require.NoError(t, m.Create(ctx, s))

		got, err := m.Get(ctx, "a")
		require.NoError(t, err)
		got.Login.UserID = 2

		again, err := m.Get(ctx, "a")
		require.NoError(t, err)
		require.Equal(t, int64(1), again.Login.UserID)
	})

	t.Run("expired sessions vanish", func(t *testing.T) {
		m := NewMemoryStore()
		now := time.Now()
		m.now = func() time.Time { return now }

		require.NoError(t, m.Create(ctx, Session{ID: "a", ExpiresAt: now.Add(time.Minute)}))

		now = now.Add(2 * time.Minute)
		got, err := m.Get(ctx, "a")
		require.NoError(t, err)
		require.Nil(t, got)
		require.Zero(t, m.Len())
	})

	t.Run("rejects invalid sessions", func(t *testing.T) {
		m := NewMemoryStore()
		require.ErrorIs(t, m.Create(ctx, Session{ExpiresAt: time.Now().Add(time.Hour)}), ErrInvalidSession)
		require.ErrorIs(t, m.Create(ctx, Session{ID: "a", ExpiresAt: time.Now().Add(-time.Hour)}), ErrInvalidSession)
		require.ErrorIs(t, m.Update(ctx, Session{}), ErrInvalidSession)
	})
}
