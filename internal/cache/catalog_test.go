package cache

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/recycle-disposals/internal/config"
	"github.com/nurpe/recycle-disposals/internal/model"
)

func TestNewWithoutAddressIsNoop(t *testing.T) {
	catalog, closeFn, err := New(context.Background(), config.RedisConfig{}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, Noop{}, catalog)
	assert.NoError(t, closeFn())

	catalog.SetMaterial(context.Background(), model.Material{ID: uuid.New()})
	_, ok := catalog.Materials(context.Background())
	assert.False(t, ok)
}

func TestUnreachableRedisDegradesToMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	var logs bytes.Buffer
	catalog := NewRedisCatalog(client, time.Minute, zerolog.New(&logs))
	ctx := context.Background()
	id := uuid.New()

	catalog.SetMaterial(ctx, model.Material{ID: id, Name: "PET bottles"})
	_, ok := catalog.Material(ctx, id)

	assert.False(t, ok)
	assert.Contains(t, logs.String(), "catalog cache write failed")
	assert.Contains(t, logs.String(), "catalog cache read failed")
}

func TestMaterialKey(t *testing.T) {
	id := uuid.MustParse("7f1c3a52-5d0e-4c1a-9f43-0a3f0a4d9b11")
	assert.Equal(t, "catalog:material:7f1c3a52-5d0e-4c1a-9f43-0a3f0a4d9b11", materialKey(id))
}
