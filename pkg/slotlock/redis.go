package slotlock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript удаляет ключ только если он принадлежит владельцу
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis распределённые блокировки слотов для нескольких экземпляров сервиса
type Redis struct {
	client       *redis.Client
	prefix       string
	ttl          time.Duration
	retryBackoff time.Duration
	waitTimeout  time.Duration
}

// RedisOptions параметры Redis блокировок
type RedisOptions struct {
	Prefix       string
	TTL          time.Duration // время жизни ключа на случай падения владельца
	RetryBackoff time.Duration
	WaitTimeout  time.Duration
}

// NewRedis создает Locker поверх Redis
func NewRedis(client *redis.Client, opts RedisOptions) *Redis {
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Second
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 20 * time.Millisecond
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = 5 * time.Second
	}
	if opts.Prefix == "" {
		opts.Prefix = "septic-booking:lock:"
	}
	return &Redis{
		client:       client,
		prefix:       opts.Prefix,
		ttl:          opts.TTL,
		retryBackoff: opts.RetryBackoff,
		waitTimeout:  opts.WaitTimeout,
	}
}

// Lock захватывает ключ через SET NX PX, повторяя попытки до WaitTimeout
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	fullKey := r.prefix + key
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, r.waitTimeout)
	defer cancel()

	ticker := time.NewTicker(r.retryBackoff)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(waitCtx, fullKey, token, r.ttl).Result()
		if err != nil && waitCtx.Err() == nil {
			return nil, fmt.Errorf("%w: SETNX %s: %w", ErrLockBackend, fullKey, err)
		}
		if ok {
			break
		}

		select {
		case <-waitCtx.Done():
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Освобождаем даже если контекст запроса уже отменён
			releaseCtx, cancel := context.WithTimeout(context.Background(), r.ttl)
			defer cancel()
			_ = releaseScript.Run(releaseCtx, r.client, []string{fullKey}, token).Err()
		})
	}, nil
}
