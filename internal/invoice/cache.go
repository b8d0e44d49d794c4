package invoice

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "invoice:"

// RedisCache keeps rendered invoices in redis. Keys are scoped by namespace
// so that sale ids from different ledgers never share an entry.
type RedisCache struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewRedisCache creates a RedisCache whose entries expire after ttl.
// namespace must identify the ledger the sale ids come from.
func NewRedisCache(client *redis.Client, namespace string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, namespace: namespace, ttl: ttl}
}

func (c *RedisCache) key(saleID int64) string {
	return cacheKeyPrefix + c.namespace + ":" + strconv.FormatInt(saleID, 10)
}

// Get returns the cached document, reporting a miss with ok == false.
func (c *RedisCache) Get(ctx context.Context, saleID int64) ([]byte, bool, error) {
	doc, err := c.client.Get(ctx, c.key(saleID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

// Set stores doc under saleID.
func (c *RedisCache) Set(ctx context.Context, saleID int64, doc []byte) error {
	return c.client.Set(ctx, c.key(saleID), doc, c.ttl).Err()
}
