// Package redis хранит ключи идемпотентности создания записей в Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/exp/slog"

	"hostdesk/internal/app/server/config"
)

const (
	keyPrefix = "hostdesk:idem:"

	// reserved - значение зарезервированного ключа, пока запись не создана
	reserved = "0"
	// reserveTTL ограничивает жизнь резерва, если сервер упал посреди вставки
	reserveTTL = 30 * time.Second
)

// kv - команды Redis, которыми пользуется кэш
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// IdempotencyCache реализует records.IdempotencyCache
type IdempotencyCache struct {
	client kv
	ttl    time.Duration
	log    *slog.Logger
}

// NewClient подключается к Redis и проверяет соединение
func NewClient(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func NewIdempotencyCache(client kv, ttl time.Duration, log *slog.Logger) *IdempotencyCache {
	return &IdempotencyCache{
		client: client,
		ttl:    ttl,
		log:    log.With("component", "idempotency_cache"),
	}
}

func (c *IdempotencyCache) Lookup(ctx context.Context, key string) (int64, bool, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get idempotency key: %w", err)
	}

	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt idempotency value %q: %w", val, err)
	}
	return id, true, nil
}

// Reserve занимает ключ, если его ещё никто не занял
func (c *IdempotencyCache) Reserve(ctx context.Context, key string) (bool, error) {
	won, err := c.client.SetNX(ctx, keyPrefix+key, reserved, reserveTTL).Result()
	if err != nil {
		return false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if !won {
		c.log.Debug("idempotency key already taken", "key", key)
	}
	return won, nil
}

// Remember записывает id созданной записи поверх резерва
func (c *IdempotencyCache) Remember(ctx context.Context, key string, id int64) error {
	if err := c.client.Set(ctx, keyPrefix+key, strconv.FormatInt(id, 10), c.ttl).Err(); err != nil {
		return fmt.Errorf("set idempotency key: %w", err)
	}
	return nil
}

func (c *IdempotencyCache) Release(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
