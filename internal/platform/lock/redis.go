package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisOptions configures a Redis locker.
type RedisOptions struct {
	Key   string
	TTL   time.Duration
	Retry time.Duration
}

// Redis is a Locker backed by a single Redis key. The key expires after TTL
// so a crashed holder cannot block other processes forever.
type Redis struct {
	client *redis.Client
	opts   RedisOptions
}

// Dial creates a new Redis client and verifies it answers.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("platform/lock: ping: %w", err)
	}

	return client, nil
}

// NewRedis builds a Redis locker on an existing client.
func NewRedis(client *redis.Client, opts RedisOptions) *Redis {
	if opts.Key == "" {
		opts.Key = "userapi:users:lock"
	}
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Second
	}
	if opts.Retry <= 0 {
		opts.Retry = 50 * time.Millisecond
	}
	return &Redis{client: client, opts: opts}
}

// Acquire implements Locker.
func (l *Redis) Acquire(ctx context.Context) (Unlock, error) {
	token := uuid.NewString()
	ticker := time.NewTicker(l.opts.Retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, l.opts.Key, token, l.opts.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("platform/lock: acquire %s: %w", l.opts.Key, err)
		}
		if ok {
			return l.unlockFunc(token), nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("platform/lock: acquire %s: %w", l.opts.Key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *Redis) unlockFunc(token string) Unlock {
	return func(ctx context.Context) error {
		deleted, err := releaseScript.Run(ctx, l.client, []string{l.opts.Key}, token).Int64()
		if err != nil {
			return fmt.Errorf("platform/lock: release %s: %w", l.opts.Key, err)
		}
		if deleted == 0 {
			return ErrNotHeld
		}
		return nil
	}
}
