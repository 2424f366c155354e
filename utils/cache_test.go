package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache().(*memoryCache)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetJSON(ctx, "idea:sectors", []string{"Fintech", "Saas"}, time.Minute))

	var got []string
	hit, err := c.GetJSON(ctx, "idea:sectors", &got)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, []string{"Fintech", "Saas"}, got)

	now = now.Add(2 * time.Minute)
	hit, err = c.GetJSON(ctx, "idea:sectors", &got)
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, c.SetJSON(ctx, "a", 1, 0))
	require.NoError(t, c.Delete(ctx, "a", "missing"))
	var n int
	hit, _ = c.GetJSON(ctx, "a", &n)
	require.False(t, hit)
}
