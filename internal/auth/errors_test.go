package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRejection(t *testing.T) {
	err := fmt.Errorf("google: %w", Reject(ErrTokenInfo, "invalid_token"))

	require.ErrorIs(t, err, ErrTokenInfo)
	require.NotErrorIs(t, err, ErrExternalAuth)

	var r *Rejection
	require.True(t, errors.As(err, &r))
	require.Equal(t, "invalid_token", r.Reason)
	require.Contains(t, err.Error(), "invalid_token")
}
