package handoff

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long an accepted handoff suppresses repeats of the same key.
const DefaultTTL = 10 * time.Minute

// Deduper decides whether a key was already accepted inside the window.
// Duplicate records the key when it is new.
type Deduper interface {
	Duplicate(ctx context.Context, key string) (bool, error)
}

// Window is an in-process dedup window. State is lost on restart and is not
// shared between instances.
type Window struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
	now  func() time.Time
}

func NewWindow(ttl time.Duration) *Window {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Window{ttl: ttl, seen: make(map[string]time.Time), now: time.Now}
}

// Duplicate evicts expired keys, then reports whether key was accepted less
// than ttl ago. New keys are recorded as accepted now.
func (w *Window) Duplicate(_ context.Context, key string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	for k, ts := range w.seen {
		if now.Sub(ts) > w.ttl {
			delete(w.seen, k)
		}
	}

	if last, ok := w.seen[key]; ok && now.Sub(last) < w.ttl {
		return true, nil
	}
	w.seen[key] = now
	return false, nil
}

// Len returns the number of tracked keys.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen)
}

// RedisWindow shares the dedup window across instances through SET NX PX.
type RedisWindow struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewRedisWindow(client redis.Cmdable, ttl time.Duration) *RedisWindow {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisWindow{client: client, ttl: ttl, prefix: "handoff:dedup:"}
}

func (w *RedisWindow) Duplicate(ctx context.Context, key string) (bool, error) {
	created, err := w.client.SetNX(ctx, w.prefix+key, time.Now().UTC().Format(time.RFC3339Nano), w.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("handoff: redis setnx: %w", err)
	}
	return !created, nil
}

var (
	_ Deduper = (*Window)(nil)
	_ Deduper = (*RedisWindow)(nil)
)
