package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestNew_UnreachableServer(t *testing.T) {
	client, err := New(context.Background(), "127.0.0.1:1", "", 0)
	require.Error(t, err)
	require.Nil(t, client)
	require.Contains(t, err.Error(), "127.0.0.1:1")
}

func TestNew_Connects(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := New(context.Background(), srv.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := srv.Get("k")
	require.NoError(t, err)
	require.Equal(t, "v", got)
}
