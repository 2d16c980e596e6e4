package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nurpe/recycle-disposals/internal/config"
	"github.com/nurpe/recycle-disposals/internal/model"
)

const (
	keyPrefix       = "catalog:"
	materialsKey    = keyPrefix + "materials"
	achievementsKey = keyPrefix + "achievements"
)

// Catalog is a read-through store for catalog reads. Misses and backend
// failures look the same to callers; failures are logged.
type Catalog interface {
	Material(ctx context.Context, id uuid.UUID) (*model.Material, bool)
	SetMaterial(ctx context.Context, m model.Material)
	Materials(ctx context.Context) ([]model.Material, bool)
	SetMaterials(ctx context.Context, materials []model.Material)
	Achievements(ctx context.Context) ([]model.Achievement, bool)
	SetAchievements(ctx context.Context, achievements []model.Achievement)
	Invalidate(ctx context.Context)
}

// New returns a Redis-backed cache, or a no-op cache when REDIS_ADDR is empty.
func New(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (Catalog, func() error, error) {
	if cfg.Addr == "" {
		log.Info().Msg("catalog cache disabled")
		return Noop{}, func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 10,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return NewRedisCatalog(client, cfg.CacheTTL, log), client.Close, nil
}

type RedisCatalog struct {
	client redis.UniversalClient
	ttl    time.Duration
	log    zerolog.Logger
}

func NewRedisCatalog(client redis.UniversalClient, ttl time.Duration, log zerolog.Logger) *RedisCatalog {
	return &RedisCatalog{client: client, ttl: ttl, log: log}
}

func materialKey(id uuid.UUID) string {
	return keyPrefix + "material:" + id.String()
}

func (c *RedisCatalog) Material(ctx context.Context, id uuid.UUID) (*model.Material, bool) {
	var m model.Material
	if !c.get(ctx, materialKey(id), &m) {
		return nil, false
	}
	return &m, true
}

func (c *RedisCatalog) SetMaterial(ctx context.Context, m model.Material) {
	c.set(ctx, materialKey(m.ID), m)
}

func (c *RedisCatalog) Materials(ctx context.Context) ([]model.Material, bool) {
	var materials []model.Material
	if !c.get(ctx, materialsKey, &materials) {
		return nil, false
	}
	return materials, true
}

func (c *RedisCatalog) SetMaterials(ctx context.Context, materials []model.Material) {
	c.set(ctx, materialsKey, materials)
}

func (c *RedisCatalog) Achievements(ctx context.Context) ([]model.Achievement, bool) {
	var achievements []model.Achievement
	if !c.get(ctx, achievementsKey, &achievements) {
		return nil, false
	}
	return achievements, true
}

func (c *RedisCatalog) SetAchievements(ctx context.Context, achievements []model.Achievement) {
	c.set(ctx, achievementsKey, achievements)
}

// Invalidate drops every catalog key.
func (c *RedisCatalog) Invalidate(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn().Err(err).Msg("catalog cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}

func (c *RedisCatalog) get(ctx context.Context, key string, dest interface{}) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("catalog cache entry corrupt")
		return false
	}
	return true
}

func (c *RedisCatalog) set(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
}

type Noop struct{}

func (Noop) Material(context.Context, uuid.UUID) (*model.Material, bool) { return nil, false }

func (Noop) SetMaterial(context.Context, model.Material) {}

func (Noop) Materials(context.Context) ([]model.Material, bool) { return nil, false }

func (Noop) SetMaterials(context.Context, []model.Material) {}

func (Noop) Achievements(context.Context) ([]model.Achievement, bool) { return nil, false }

func (Noop) SetAchievements(context.Context, []model.Achievement) {}

func (Noop) Invalidate(context.Context) {}
