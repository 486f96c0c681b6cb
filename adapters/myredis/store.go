package myredis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-redis/redis/v8"

	"vdv736/service"
)

const (
	// SubscriptionsPrefix is the key prefix of subscription records.
	SubscriptionsPrefix = "subscriptions"
	// SituationsPrefix is the key prefix of situation records.
	SituationsPrefix = "situations"
)

type redisStore[T any] struct {
	client    redis.UniversalClient
	prefix    string
	marshal   func(T) ([]byte, error)
	unmarshal func(string, []byte) (T, error)
	zero      T
}

// NewStore creates redis implementation of generic store interface. Records live under
// "<prefix>:<key>" without expiry.
func NewStore[T any](client redis.UniversalClient, prefix string, marshal func(T) ([]byte, error), unmarshal func(string, []byte) (T, error)) *redisStore[T] {
	var zero T
	return &redisStore[T]{
		client:    service.NilPanic(client, "adapters.myredis.store.go: client is required"),
		prefix:    service.StrPanic(prefix, "adapters.myredis.store.go: prefix is required"),
		zero:      zero,
		marshal:   marshal,
		unmarshal: unmarshal,
	}
}

func (r *redisStore[T]) CreateValue(ctx context.Context, key string, item T) error {
	bytes, err := r.marshal(item)
	if err != nil {
		return service.NewInternalServerError("Redis marshal item error", fmt.Errorf("can't marshal item of type %T, err: %w", item, err))
	}

	created, err := r.client.SetNX(ctx, r.generateKey(key), bytes, 0).Result()
	if err != nil {
		return service.NewInternalServerError("Redis write key error", fmt.Errorf("can't create item of type %T in redis (key='%s'), err: %w", item, key, err))
	}
	if !created {
		return service.NewEntityAlreadyExistsError("Entity already exists", fmt.Errorf("key '%s' already exists", key))
	}

	return nil
}

func (r *redisStore[T]) WriteValue(ctx context.Context, key string, item T) error {
	bytes, err := r.marshal(item)
	if err != nil {
		return service.NewInternalServerError("Redis marshal item error", fmt.Errorf("can't marshal item of type %T, err: %w", item, err))
	}

	err = r.client.Set(ctx, r.generateKey(key), bytes, 0).Err()
	if err != nil {
		return service.NewInternalServerError("Redis write key error", fmt.Errorf("can't write item of type %T to redis (key='%s'), err: %w", item, key, err))
	}

	return nil
}

func (r *redisStore[T]) ReadValue(ctx context.Context, key string) (T, error) {
	bytes, err := r.client.Get(ctx, r.generateKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return r.zero, service.NewEntityNotFoundError("Entity not found", fmt.Errorf("key '%s' not found", key))
	}
	if err != nil {
		return r.zero, service.NewInternalServerError("Redis read key error", fmt.Errorf("can't read item of type %T from redis (key='%s'), err: %w", r.zero, key, err))
	}

	item, err := r.unmarshal(key, bytes)
	if err != nil {
		return r.zero, service.NewInternalServerError("Redis unmarshal item error", fmt.Errorf("can't unmarshal item of type %T, err: %w", r.zero, err))
	}
	return item, nil
}

func (r *redisStore[T]) DeleteValue(ctx context.Context, key string) error {
	err := r.client.Del(ctx, r.generateKey(key)).Err()
	if err != nil {
		return service.NewInternalServerError("Redis delete key error", fmt.Errorf("can't delete item of type %T from redis (key='%s'), err: %w", r.zero, key, err))
	}
	return nil
}

// ListAllValues lists all keys under the store prefix then fetches their values. Keys removed
// between listing and reading are skipped.
func (r *redisStore[T]) ListAllValues(ctx context.Context) ([]T, error) {
	fullKeys, err := r.client.Keys(ctx, r.prefix+":*").Result()
	if err != nil {
		return nil, service.NewInternalServerError("Redis get keys error", fmt.Errorf("redis get keys error, err: %w", err))
	}
	sort.Strings(fullKeys)

	prefixWithColon := r.prefix + ":"
	items := make([]T, 0, len(fullKeys))
	for _, k := range fullKeys {
		if !strings.HasPrefix(k, prefixWithColon) {
			continue
		}
		item, err := r.ReadValue(ctx, strings.TrimPrefix(k, prefixWithColon))
		if service.IsEntityNotFoundError(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

func (r *redisStore[T]) generateKey(key string) string {
	return r.prefix + ":" + key
}
