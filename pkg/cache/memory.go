package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	xerrors "auth-service/pkg/xerrors"
)

// Memory is an in-process Store used when no Redis address is configured and
// in tests. Counters are guarded by a single mutex so increments stay atomic
// under concurrent requests.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (c *Memory) Set(_ context.Context, namespace, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries[namespace+":"+key] = e
	return nil
}

func (c *Memory) Get(_ context.Context, namespace, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.live(namespace + ":" + key)
	if !ok {
		return "", xerrors.ErrNotFound
	}
	return e.value, nil
}

func (c *Memory) Delete(_ context.Context, namespace, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, namespace+":"+key)
	return nil
}

func (c *Memory) GetTTL(_ context.Context, namespace, key string) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.live(namespace + ":" + key)
	if !ok {
		return -2 * time.Second, nil // mirrors the Redis TTL contract for missing keys
	}
	if e.expiresAt.IsZero() {
		return -1 * time.Second, nil
	}
	return e.expiresAt.Sub(c.now()), nil
}

func (c *Memory) IncrWithExpire(_ context.Context, namespace, key string, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	full := namespace + ":" + key
	e, ok := c.live(full)
	if !ok {
		e = &memoryEntry{value: "0"}
		if window > 0 {
			e.expiresAt = c.now().Add(window)
		}
		c.entries[full] = e
	}

	n, err := strconv.ParseInt(e.value, 10, 64)
	if err != nil {
		n = 0
	}
	n++
	e.value = strconv.FormatInt(n, 10)
	return n, nil
}

// live returns the entry if present and not expired, evicting it otherwise.
// Callers must hold the mutex.
func (c *Memory) live(full string) (*memoryEntry, bool) {
	e, ok := c.entries[full]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !e.expiresAt.After(c.now()) {
		delete(c.entries, full)
		return nil, false
	}
	return e, true
}
