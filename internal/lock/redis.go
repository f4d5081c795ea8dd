package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrLockTimeout = errors.New("lock wait timeout")

const (
	defaultLockTTL   = 10 * time.Second
	defaultRetryWait = 20 * time.Millisecond
	keyPrefix        = "booking:lock:"
)

// Удаляем ключ, только если он всё ещё принадлежит нашему токену.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedisClient создаёт клиента и проверяет соединение.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// RedisLocker: Locker между экземплярами через SET NX PX.
// TTL ограничивает время жизни блокировки, если держатель упал.
// TTL не продлевается: секция дольше TTL (REDIS_LOCK_TTL_SEC) теряет
// исключительность, такой случай виден в логе при освобождении.
type RedisLocker struct {
	client    *redis.Client
	ttl       time.Duration
	retryWait time.Duration
	log       *zap.Logger
}

func NewRedisLocker(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisLocker{client: client, ttl: ttl, retryWait: defaultRetryWait, log: log}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
			}
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		case <-time.After(l.retryWait):
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		deleted, err := unlockScript.Run(releaseCtx, l.client, []string{redisKey}, token).Int64()
		if err != nil {
			l.log.Error("redis unlock failed", zap.String("key", key), zap.Error(err))
			return
		}
		if deleted == 0 {
			l.log.Warn("redis lock expired before release",
				zap.String("key", key),
				zap.Duration("ttl", l.ttl),
			)
		}
	}, nil
}
