package postgres

import (
	"os"
	"testing"

	"github.com/UkralStul/posts-service/internal/storage"
	"github.com/UkralStul/posts-service/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore подключается к TEST_DATABASE_DSN и очищает таблицы.
// Без переменной окружения тесты пропускаются.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}

	store, err := New(Config{DSN: dsn, LogLevel: "silent"})
	require.NoError(t, err)

	err = store.db.Exec("TRUNCATE TABLE likes, post_tags, comments, posts, tags").Error
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestStore_Contract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return setupTestStore(t)
	})
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%go%", likePattern("Go"))
	assert.Equal(t, `%100\%%`, likePattern("100%"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
}

func TestValidIDs(t *testing.T) {
	ids := validIDs([]string{"not-a-uuid", "00000000-0000-0000-0000-000000000001"})
	assert.Equal(t, []string{"00000000-0000-0000-0000-000000000001"}, ids)
}
