package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

// Cache is the byte cache used for read-heavy lookups. *infra.RedisCache
// implements it; a nil Cache disables caching.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

func precioCacheKey(sku string) string { return "precio:" + sku }

func cajaDiariaCacheKey(fecha string) string { return "caja_diaria:" + fecha }

// cacheGet decodes a cached JSON value into dst. Any failure is a miss.
func cacheGet(ctx context.Context, c Cache, key string, dst any) bool {
	if c == nil {
		return false
	}
	raw, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func cacheSet(ctx context.Context, c Cache, key string, v any, ttl time.Duration) {
	if c == nil || ttl <= 0 {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.Set(ctx, key, raw, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache: set failed")
	}
}

// invalidarPrecios drops the cached price lookups of the given SKUs. It runs
// after commit; a failure only leaves a stale entry until its TTL.
func invalidarPrecios(ctx context.Context, c Cache, skus []string) {
	if c == nil || len(skus) == 0 {
		return
	}
	keys := make([]string, 0, len(skus))
	for _, sku := range skus {
		keys = append(keys, precioCacheKey(sku))
	}
	if err := c.Del(ctx, keys...); err != nil {
		log.Warn().Err(err).Strs("skus", skus).Msg("cache: invalidación de precios falló")
	}
}
