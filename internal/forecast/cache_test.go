package forecast

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkraev/finflow/internal/models"
)

func TestMemoryCacheSetGetInvalidate(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()

	_, ok := cache.Get(1, 10)
	assert.False(t, ok)

	f := &models.CompleteForecast{WorkspaceID: 1, AccountID: 10}
	cache.Set(1, 10, f)

	got, ok := cache.Get(1, 10)
	require.True(t, ok)
	assert.Same(t, f, got)

	cache.Invalidate(1, 10)
	_, ok = cache.Get(1, 10)
	assert.False(t, ok)
}

func TestMemoryCacheInvalidateIsKeyScoped(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()
	cache.Set(1, 10, &models.CompleteForecast{AccountID: 10})
	cache.Set(1, 11, &models.CompleteForecast{AccountID: 11})

	cache.Invalidate(1, 10)

	_, ok := cache.Get(1, 10)
	assert.False(t, ok)
	_, ok = cache.Get(1, 11)
	assert.True(t, ok, "other keys must survive a single-key invalidation")
}

func TestMemoryCacheInvalidateWorkspace(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()
	cache.Set(1, 10, &models.CompleteForecast{})
	cache.Set(1, 11, &models.CompleteForecast{})
	cache.Set(2, 20, &models.CompleteForecast{})

	cache.InvalidateWorkspace(1)

	_, ok := cache.Get(1, 10)
	assert.False(t, ok)
	_, ok = cache.Get(1, 11)
	assert.False(t, ok)
	_, ok = cache.Get(2, 20)
	assert.True(t, ok, "other workspaces must be untouched")
	assert.Equal(t, 1, cache.Len())
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	t.Parallel()

	cache := NewMemoryCache()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			workspaceID := int64(i % 5)
			accountID := int64(i % 10)
			cache.Set(workspaceID, accountID, &models.CompleteForecast{WorkspaceID: workspaceID, AccountID: accountID})
			if f, ok := cache.Get(workspaceID, accountID); ok {
				// A reader must never observe a partially written
				// entry for its key.
				assert.Equal(t, workspaceID, f.WorkspaceID)
				assert.Equal(t, accountID, f.AccountID)
			}
			cache.Invalidate(workspaceID, accountID)
		}(i)
	}
	wg.Wait()
}
