package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps looked-up items in Redis as JSON under <prefix>catalog:item:<id>.
// A nil Cache is valid and never hits.
type Cache struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

// NewCache returns a cache storing entries for ttl; ttl <= 0 keeps them without expiry.
func NewCache(client redis.UniversalClient, ttl time.Duration, prefix string) *Cache {
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{client: client, ttl: ttl, prefix: prefix}
}

func (c *Cache) key(id int) string {
	return c.prefix + "catalog:item:" + strconv.Itoa(id)
}

// Get returns the cached item and whether it was present.
func (c *Cache) Get(ctx context.Context, id int) (Item, bool, error) {
	if c == nil || c.client == nil {
		return Item{}, false, nil
	}
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return Item{}, false, nil
	case err != nil:
		return Item{}, false, err
	}
	var it Item
	if err := json.Unmarshal(raw, &it); err != nil {
		return Item{}, false, err
	}
	return it, true, nil
}

// Put stores it under its id.
func (c *Cache) Put(ctx context.Context, it Item) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(it)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(it.ID), raw, c.ttl).Err()
}
