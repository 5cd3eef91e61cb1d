package middlewares

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatRateLimiterIsPerChat(t *testing.T) {
	l, err := NewChatRateLimiter("2-M")
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, 1)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := l.Allow(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok, "третье событие за минуту отбрасывается")

	ok, err = l.Allow(ctx, 2)
	require.NoError(t, err)
	assert.True(t, ok, "у другого чата свой лимит")
}

func TestChatRateLimiterDisabled(t *testing.T) {
	l, err := NewChatRateLimiter("")
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		ok, err := l.Allow(context.Background(), 1)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestChatRateLimiterRejectsBadFormat(t *testing.T) {
	_, err := NewChatRateLimiter("often")
	assert.Error(t, err)
}
