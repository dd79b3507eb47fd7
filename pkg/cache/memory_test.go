package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	type payload struct {
		Source string  `json:"source"`
		Amount float64 `json:"amount"`
	}
	in := payload{Source: "HSBC Hong Kong", Amount: 8_500_000}
	require.NoError(t, mc.Set(ctx, "k1", in, time.Minute))

	var out payload
	require.NoError(t, mc.Get(ctx, "k1", &out))
	assert.Equal(t, in, out)
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var out string
	err := mc.Get(context.Background(), "absent", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k1", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	var out string
	assert.ErrorIs(t, mc.Get(ctx, "k1", &out), ErrCacheMiss)

	ok, err := mc.Exists(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheDelete(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k1", "v", time.Minute))
	require.NoError(t, mc.Set(ctx, "k2", "v", time.Minute))
	require.NoError(t, mc.Delete(ctx, "k1", "k2"))

	ok, err := mc.Exists(ctx, "k1", "k2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheLRUEviction(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", 1, time.Minute))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, mc.Set(ctx, "b", 2, time.Minute))
	time.Sleep(2 * time.Millisecond)

	// touch "a" so "b" becomes the eviction candidate
	var n int
	require.NoError(t, mc.Get(ctx, "a", &n))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, mc.Set(ctx, "c", 3, time.Minute))

	okA, _ := mc.Exists(ctx, "a")
	okB, _ := mc.Exists(ctx, "b")
	okC, _ := mc.Exists(ctx, "c")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)
}
