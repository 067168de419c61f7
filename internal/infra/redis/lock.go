package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain"
	"github.com/octaveluka/BETIQ-AI-sub000/internal/domain/ports/repository"
)

var _ repository.Locker = (*Locker)(nil)

// Locker is a single-attempt SET NX lock. Holders are identified by a random
// token so a slow worker can never release a lock it no longer owns.
type Locker struct {
	cli *redis.Client
}

func NewLocker(c *Client) *Locker {
	return &Locker{cli: c.cli}
}

// TryLock does not wait: a held key yields domain.ErrLockHeld at once.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := l.cli.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrLockHeld
	}
	return token, nil
}

var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Unlock is a no-op when the lock expired or changed hands.
func (l *Locker) Unlock(ctx context.Context, key, token string) error {
	return compareAndDelete.Run(ctx, l.cli, []string{key}, token).Err()
}
