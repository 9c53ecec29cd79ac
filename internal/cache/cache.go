// Package cache keeps recently read games in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gameshelf/gameshelf/internal/config"
	"github.com/gameshelf/gameshelf/internal/models"
)

// ErrCacheMiss is returned when no entry exists for a game id.
var ErrCacheMiss = errors.New("cache miss")

const (
	defaultKeyPrefix = "game:"
	defaultTTL       = 10 * time.Minute
	purgeBatch       = 100
)

// Client is the part of the go-redis API a GameCache drives.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

var _ Client = (*redis.Client)(nil)

// Dial opens a Redis client and checks that the server answers.
func Dial(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", client.Options().Addr, err)
	}
	return client, nil
}

// GameCacher is what the cached repository needs from a game cache.
type GameCacher interface {
	Get(ctx context.Context, id string) (*models.Game, error)
	Put(ctx context.Context, game *models.Game, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	Purge(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

var _ GameCacher = (*GameCache)(nil)

// GameCache stores each game as a JSON document under prefix+id.
type GameCache struct {
	client Client
	prefix string
	ttl    time.Duration
}

// NewGameCache returns a GameCache. An empty prefix or zero ttl falls back
// to "game:" and ten minutes.
func NewGameCache(client Client, prefix string, ttl time.Duration) *GameCache {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &GameCache{client: client, prefix: prefix, ttl: ttl}
}

// Get returns the cached game or ErrCacheMiss. An entry that no longer
// decodes is dropped so the next read repopulates it.
func (c *GameCache) Get(ctx context.Context, id string) (*models.Game, error) {
	key := c.prefix + id

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, ErrCacheMiss
	case err != nil:
		return nil, fmt.Errorf("read cached game %s: %w", id, err)
	}

	game := new(models.Game)
	if err := json.Unmarshal(raw, game); err != nil {
		c.client.Del(ctx, key)
		return nil, fmt.Errorf("decode cached game %s: %w", id, err)
	}
	return game, nil
}

// Put caches game for ttl, or for the cache default when ttl is zero.
func (c *GameCache) Put(ctx context.Context, game *models.Game, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}

	raw, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", game.ID, err)
	}
	if err := c.client.Set(ctx, c.prefix+game.ID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache game %s: %w", game.ID, err)
	}
	return nil
}

// Delete drops the entry for id. A missing entry is not an error.
func (c *GameCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, c.prefix+id).Err(); err != nil {
		return fmt.Errorf("evict game %s: %w", id, err)
	}
	return nil
}

// Purge removes every entry under the cache prefix and reports how many
// were deleted. Keys are collected with SCAN and removed in batches.
func (c *GameCache) Purge(ctx context.Context) (int64, error) {
	var (
		purged int64
		batch  = make([]string, 0, purgeBatch)
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.client.Del(ctx, batch...).Result()
		purged += n
		batch = batch[:0]
		return err
	}

	iter := c.client.Scan(ctx, 0, c.prefix+"*", purgeBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == purgeBatch {
			if err := flush(); err != nil {
				return purged, fmt.Errorf("purge games: %w", err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return purged, fmt.Errorf("scan cached games: %w", err)
	}
	if err := flush(); err != nil {
		return purged, fmt.Errorf("purge games: %w", err)
	}
	return purged, nil
}

// Ping reports whether Redis answers.
func (c *GameCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
