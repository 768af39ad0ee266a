package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "fit-screener:report:"

// RedisCache keeps reports in Redis without expiry.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache connects to the Redis URL and verifies the connection.
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}

	return &RedisCache{rdb: rdb}, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// RedisKey returns the key a fingerprint is stored under.
func RedisKey(fingerprint string) string {
	return redisKeyPrefix + fingerprint
}

func (c *RedisCache) Get(ctx context.Context, fingerprint string) (*Report, bool, error) {
	data, err := c.rdb.Get(ctx, RedisKey(fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, false, fmt.Errorf("decode cached report: %w", err)
	}
	return &r, true, nil
}

// Put stores the report only if the fingerprint is not present yet.
func (c *RedisCache) Put(ctx context.Context, fingerprint string, r *Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := c.rdb.SetNX(ctx, RedisKey(fingerprint), data, 0).Err(); err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, fingerprint string) error {
	if err := c.rdb.Del(ctx, RedisKey(fingerprint)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
