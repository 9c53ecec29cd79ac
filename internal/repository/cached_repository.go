package repository

import (
	"context"
	"time"

	"github.com/gameshelf/gameshelf/internal/cache"
	"github.com/gameshelf/gameshelf/internal/metrics"
	"github.com/gameshelf/gameshelf/internal/models"
)

// CachedGameRepository wraps a GameRepository with by-id caching.
// It implements write-through caching with fallback to the store on cache miss.
// Listing always goes to the store.
type CachedGameRepository struct {
	repo     GameRepository
	cache    cache.GameCacher
	cacheTTL time.Duration
}

// NewCachedGameRepository creates a new cached game repository.
func NewCachedGameRepository(repo GameRepository, gameCache cache.GameCacher, cacheTTL time.Duration) *CachedGameRepository {
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}
	return &CachedGameRepository{
		repo:     repo,
		cache:    gameCache,
		cacheTTL: cacheTTL,
	}
}

// Create stores a new game in both the store and cache (write-through).
func (c *CachedGameRepository) Create(ctx context.Context, create *models.GameCreate) (*models.Game, error) {
	game, err := c.repo.Create(ctx, create)
	if err != nil {
		return nil, err
	}

	// Cache errors are not fatal
	_ = c.cache.Put(ctx, game, c.cacheTTL)

	return game, nil
}

// Find always reads from the store.
func (c *CachedGameRepository) Find(ctx context.Context, filter models.GameFilter) ([]*models.Game, error) {
	return c.repo.Find(ctx, filter)
}

// GetByID checks the cache first then falls back to the store.
func (c *CachedGameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	if cached, err := c.cache.Get(ctx, id); err == nil {
		metrics.RecordCacheHit()
		return cached, nil
	}
	metrics.RecordCacheMiss()

	game, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = c.cache.Put(ctx, game, c.cacheTTL)

	return game, nil
}

// Delete removes a game from the store, then drops its cache entry.
// The entry must go after the store write; otherwise a read-through
// landing in between re-caches the deleted game.
func (c *CachedGameRepository) Delete(ctx context.Context, id string) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = c.cache.Delete(ctx, id)
	return nil
}

// DeleteAll clears the store then purges every cached game.
func (c *CachedGameRepository) DeleteAll(ctx context.Context) (int64, error) {
	n, err := c.repo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	_, _ = c.cache.Purge(ctx)
	return n, nil
}

// HealthCheck checks the store only. An unreachable cache degrades
// lookups to the store and does not make the repository unhealthy.
func (c *CachedGameRepository) HealthCheck(ctx context.Context) error {
	return c.repo.HealthCheck(ctx)
}
