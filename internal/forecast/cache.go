package forecast

import (
	"sync"

	"github.com/mkraev/finflow/internal/models"
)

// Cache memoizes computed forecasts per (workspace, account) pair.
// Entries carry no TTL; staleness is owner-driven, so explicit
// invalidation after a transaction or settings mutation is the only
// lifecycle operation. Implementations must make writes for a key
// atomic with respect to reads of that key.
type Cache interface {
	Get(workspaceID, accountID int64) (*models.CompleteForecast, bool)
	Set(workspaceID, accountID int64, forecast *models.CompleteForecast)
	Invalidate(workspaceID, accountID int64)
	InvalidateWorkspace(workspaceID int64)
}

type cacheKey struct {
	workspaceID int64
	accountID   int64
}

// MemoryCache is an in-process Cache backed by a mutex-guarded map.
// Its lifecycle is tied to whatever owns it (normally the forecast
// Service), so tests can construct isolated instances.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]*models.CompleteForecast
}

// NewMemoryCache creates an empty in-memory forecast cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[cacheKey]*models.CompleteForecast)}
}

func (c *MemoryCache) Get(workspaceID, accountID int64) (*models.CompleteForecast, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.entries[cacheKey{workspaceID, accountID}]
	return f, ok
}

func (c *MemoryCache) Set(workspaceID, accountID int64, forecast *models.CompleteForecast) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{workspaceID, accountID}] = forecast
}

func (c *MemoryCache) Invalidate(workspaceID, accountID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey{workspaceID, accountID})
}

// InvalidateWorkspace drops every cached forecast belonging to the
// workspace, regardless of account.
func (c *MemoryCache) InvalidateWorkspace(workspaceID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.workspaceID == workspaceID {
			delete(c.entries, key)
		}
	}
}

// Len reports the number of cached forecasts.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
