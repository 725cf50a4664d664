package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/table-reservation/utils"
)

// SlotLocker serializes bookings that compete for the same table and date.
// Lock blocks until the key is free or ctx is done; the returned release
// func must be called exactly once.
type SlotLocker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// SlotKey -> lock key for a table on a given date string
func SlotKey(tableID int, date string) string {
	return fmt.Sprintf("slot:%d:%s", tableID, date)
}

// LocalSlotLocker is an in-process keyed mutex. Entries are dropped once no
// goroutine holds or waits for them.
type LocalSlotLocker struct {
	mu    sync.Mutex
	slots map[string]*slotEntry
}

type slotEntry struct {
	sem  chan struct{}
	refs int
}

func NewLocalSlotLocker() *LocalSlotLocker {
	return &LocalSlotLocker{slots: make(map[string]*slotEntry)}
}

func (l *LocalSlotLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.slots[key]
	if !ok {
		e = &slotEntry{sem: make(chan struct{}, 1)}
		l.slots[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		l.drop(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			l.drop(key, e)
		})
	}, nil
}

func (l *LocalSlotLocker) drop(key string, e *slotEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.slots, key)
	}
}

// held reports how many keys are currently tracked.
func (l *LocalSlotLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSlotLocker holds slot locks in Redis so several server instances
// sharing one database serialize against each other.
type RedisSlotLocker struct {
	Client     *redis.Client
	TTL        time.Duration
	RetryEvery time.Duration
	Prefix     string
}

func NewRedisSlotLocker(client *redis.Client, ttl time.Duration) *RedisSlotLocker {
	return &RedisSlotLocker{
		Client:     client,
		TTL:        ttl,
		RetryEvery: 25 * time.Millisecond,
		Prefix:     "rezerwacje:",
	}
}

func (l *RedisSlotLocker) Lock(ctx context.Context, key string) (func(), error) {
	fullKey := l.Prefix + key
	token := uuid.NewString()

	for {
		ok, err := l.Client.SetNX(ctx, fullKey, token, l.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", fullKey, err)
		}
		if ok {
			break
		}
		t := time.NewTimer(l.RetryEvery)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// the request context may already be cancelled
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.Client, []string{fullKey}, token).Err(); err != nil {
				utils.ErrorLogger.Printf("redis unlock %s: %v", fullKey, err)
			}
		})
	}, nil
}
