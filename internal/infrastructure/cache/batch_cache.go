package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-lotes/internal/application/batch"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

const batchKeyPrefix = "batch:"

var _ batch.SnapshotCache = (*BatchCache)(nil)

// BatchCache guarda en Redis la última versión conocida de cada lote (cache-aside con TTL).
type BatchCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBatchCache(client *redis.Client, ttl time.Duration) *BatchCache {
	return &BatchCache{client: client, ttl: ttl}
}

func batchKey(id string) string { return batchKeyPrefix + id }

// Get devuelve (nil, nil) si el lote no está en caché.
func (c *BatchCache) Get(ctx context.Context, id string) (*entity.Batch, error) {
	raw, err := c.client.Get(ctx, batchKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var b entity.Batch
	if err := json.Unmarshal(raw, &b); err != nil {
		// Entrada corrupta o de una versión anterior: se descarta.
		_ = c.client.Del(ctx, batchKey(id)).Err()
		return nil, nil
	}
	return &b, nil
}

func (c *BatchCache) Set(ctx context.Context, b *entity.Batch) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("cache: serializar lote: %w", err)
	}
	return c.client.Set(ctx, batchKey(b.ID), raw, c.ttl).Err()
}

func (c *BatchCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, batchKey(id)).Err()
}
