package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/UkralStul/posts-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestCache подключается к REDIS_ADDR; без него тест пропускается.
func setupTestCache(t *testing.T) *PostCache {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR is not set")
	}
	c, err := NewPostCache(RedisConfig{Addr: addr, TTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestKey(t *testing.T) {
	assert.Equal(t, "post:abc", key("abc"))
}

func TestPostCache_RoundTrip(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()

	post := &domain.Post{ID: "cache-test-post", Title: "Cached", Likes: 3, Status: domain.StatusPublished}
	require.NoError(t, c.Set(ctx, post))

	got, err := c.Get(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Cached", got.Title)
	assert.Equal(t, 3, got.Likes)

	require.NoError(t, c.Delete(ctx, post.ID))
	got, err = c.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
