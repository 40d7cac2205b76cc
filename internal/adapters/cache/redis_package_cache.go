package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"package-tracking-service/internal/domain"
	"package-tracking-service/internal/platform/obs"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis-backed read-through cache for packages keyed by id.
// Values are JSON snapshots that expire after TTL. Each id also has a version
// counter, bumped by every invalidation and never expired; a fill is written only
// if the counter still holds the value seen by the lookup that missed.
type RedisPackageCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisPackageCache(client *redis.Client, ttl time.Duration) *RedisPackageCache {
	return &RedisPackageCache{Client: client, TTL: ttl}
}

// NewRedisClient parses a redis:// URL and verifies the server answers.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis client: parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis client: ping: %w", err)
	}

	return client, nil
}

type cachedPackage struct {
	ID             int64       `json:"id"`
	TrackingNumber string      `json:"tracking_number"`
	Recipient      string      `json:"recipient"`
	Weight         int         `json:"weight"`
	ShipDate       domain.Date `json:"ship_date"`
	CreatedAt      time.Time   `json:"created_at"`
	Delivered      bool        `json:"delivered"`
	Active         bool        `json:"active"`
}

func packageKey(id int64) string {
	return fmt.Sprintf("package:%d", id)
}

func versionKey(id int64) string {
	return fmt.Sprintf("package:%d:version", id)
}

// Return the cached package and the current version of id.
// A miss is reported as a nil package; pass the version to Fill.
func (c *RedisPackageCache) Get(ctx context.Context, id int64) (_ *domain.Package, version int64, err error) {
	defer obs.Time(ctx, "packages.cache.Get")(&err)

	if c.Client == nil {
		return nil, 0, errors.New("package cache: client is nil")
	}

	vals, err := c.Client.MGet(ctx, packageKey(id), versionKey(id)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("get package cache id=%d: %w", id, err)
	}

	if raw, ok := vals[1].(string); ok {
		if version, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, 0, fmt.Errorf("get package cache id=%d: version: %w", id, err)
		}
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, version, nil
	}

	var cp cachedPackage
	if err := json.Unmarshal([]byte(raw), &cp); err != nil {
		return nil, version, fmt.Errorf("get package cache id=%d: decode: %w", id, err)
	}

	return &domain.Package{
		ID:             cp.ID,
		TrackingNumber: cp.TrackingNumber,
		Recipient:      cp.Recipient,
		Weight:         cp.Weight,
		ShipDate:       cp.ShipDate,
		CreatedAt:      cp.CreatedAt,
		Delivered:      cp.Delivered,
		Active:         cp.Active,
	}, version, nil
}

// Store p unless id was invalidated after the Get that returned version.
// A skipped fill is not an error.
func (c *RedisPackageCache) Fill(ctx context.Context, p *domain.Package, version int64) (err error) {
	defer obs.Time(ctx, "packages.cache.Fill")(&err)

	if c.Client == nil {
		return errors.New("package cache: client is nil")
	}

	data, err := json.Marshal(cachedPackage{
		ID:             p.ID,
		TrackingNumber: p.TrackingNumber,
		Recipient:      p.Recipient,
		Weight:         p.Weight,
		ShipDate:       p.ShipDate,
		CreatedAt:      p.CreatedAt,
		Delivered:      p.Delivered,
		Active:         p.Active,
	})
	if err != nil {
		return fmt.Errorf("fill package cache id=%d: encode: %w", p.ID, err)
	}

	vkey := versionKey(p.ID)
	err = c.Client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vkey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, packageKey(p.ID), data, c.TTL)
			return nil
		})
		return err
	}, vkey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("fill package cache id=%d: %w", p.ID, err)
	}

	return nil
}

// Drop the cached entry and bump the version so in-flight fills are discarded.
func (c *RedisPackageCache) Invalidate(ctx context.Context, id int64) (err error) {
	defer obs.Time(ctx, "packages.cache.Invalidate")(&err)

	if c.Client == nil {
		return errors.New("package cache: client is nil")
	}

	_, err = c.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(id))
		pipe.Del(ctx, packageKey(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate package cache id=%d: %w", id, err)
	}

	return nil
}
