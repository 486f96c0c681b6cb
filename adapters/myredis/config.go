package myredis

import (
	"fmt"

	"github.com/go-redis/redis/v8"
)

// NewRedisUniversalClient creates a universal client from a redis:// or rediss:// URL.
func NewRedisUniversalClient(redisURL string) (redis.UniversalClient, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cant parse redis url: %w", err)
	}
	return redis.NewUniversalClient(universalOptions(opts)), nil
}

// universalOptions carries over what ParseURL fills in; the rest keeps client defaults.
func universalOptions(opts *redis.Options) *redis.UniversalOptions {
	return &redis.UniversalOptions{
		Addrs:     []string{opts.Addr},
		DB:        opts.DB,
		Username:  opts.Username,
		Password:  opts.Password,
		TLSConfig: opts.TLSConfig,
	}
}
