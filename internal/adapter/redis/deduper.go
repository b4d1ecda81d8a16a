// Package redis keeps event delivery marks in Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const defaultPrefix = "nexcart:event:"

// Deduper records delivered event IDs with SETNX. Marks expire after ttl,
// which only needs to outlive River's retry window.
type Deduper struct {
	rdb    *goredis.Client
	ttl    time.Duration
	prefix string
}

func NewDeduper(rdb *goredis.Client, ttl time.Duration) *Deduper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Deduper{rdb: rdb, ttl: ttl, prefix: defaultPrefix}
}

// Connect dials addr and pings it before returning the client.
func Connect(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (d *Deduper) FirstDelivery(ctx context.Context, id string) (bool, error) {
	ok, err := d.rdb.SetNX(ctx, d.key(id), time.Now().UTC().Format(time.RFC3339), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("marking event %s: %w", id, err)
	}
	return ok, nil
}

func (d *Deduper) Forget(ctx context.Context, id string) error {
	if err := d.rdb.Del(ctx, d.key(id)).Err(); err != nil {
		return fmt.Errorf("clearing event %s: %w", id, err)
	}
	return nil
}

func (d *Deduper) key(id string) string { return d.prefix + id }
