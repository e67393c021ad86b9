package redis

import (
	"context"
	"fmt"
	"time"

	"pocket-ledger/internal/core/ports"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// ErrLockTimeout is returned when the per-user lock could not be acquired
// before the configured wait elapsed.
var ErrLockTimeout = fmt.Errorf("user lock acquisition timed out")

// UserLock implements ports.UserLocker using Redis SET NX. Each ledger
// owner has one lock key; holding it serializes every mutation of that
// user's ledger, balances and transaction log across processes. The TTL
// bounds how long a crashed holder can block others.
type UserLock struct {
	client        *goredis.Client
	prefix        string
	ttl           time.Duration
	retryInterval time.Duration
	waitTimeout   time.Duration
}

// NewUserLock creates a Redis-backed per-user lock.
func NewUserLock(client *goredis.Client, ttl, retryInterval, waitTimeout time.Duration) *UserLock {
	return &UserLock{
		client:        client,
		prefix:        "userlock:",
		ttl:           ttl,
		retryInterval: retryInterval,
		waitTimeout:   waitTimeout,
	}
}

var _ ports.UserLocker = (*UserLock)(nil)

// Acquire blocks until the user's lock is held or the wait timeout
// elapses. The returned release function deletes the lock key; it must
// be called exactly once, typically via defer.
func (l *UserLock) Acquire(ctx context.Context, userID uuid.UUID) (func(), error) {
	key := l.prefix + userID.String()
	// Unique token so release only deletes a lock this call set.
	token := uuid.NewString()

	deadline := time.Now().Add(l.waitTimeout)
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis user lock: %w", err)
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryInterval):
		}
	}
}

// release deletes the key only while it still holds this call's token,
// so an expired-and-reacquired lock is never released by the old holder.
func (l *UserLock) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	script := goredis.NewScript(`
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		end
		return 0`)
	_ = script.Run(ctx, l.client, []string{key}, token).Err()
}
