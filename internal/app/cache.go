package app

import (
	"sync"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
)

// EntityCache holds the in-memory snapshot every reader sees. Reads never
// block on I/O; writes are serialized functional patches.
type EntityCache struct {
	mu       sync.Mutex
	snap     attendance.Snapshot
	loading  bool
	nextSub  int
	subs     map[int]func(attendance.Snapshot)
	patchLog func(name string)
}

// NewEntityCache creates an empty cache that reports itself as loading until
// the first refresh completes.
func NewEntityCache() *EntityCache {
	return &EntityCache{
		loading: true,
		subs:    make(map[int]func(attendance.Snapshot)),
	}
}

// Snapshot returns the current snapshot. Callers must treat it as read-only.
func (c *EntityCache) Snapshot() attendance.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Replace swaps in a complete snapshot, typically after a refresh.
func (c *EntityCache) Replace(next attendance.Snapshot) {
	c.mu.Lock()
	c.snap = next
	subs := c.subscribers()
	c.mu.Unlock()

	notify(subs, next)
}

// Apply runs fn against whatever snapshot is current and stores the result.
// Patches from concurrent mutations are applied one at a time, so each sees
// the effect of the ones before it.
func (c *EntityCache) Apply(name string, fn func(attendance.Snapshot) attendance.Snapshot) {
	c.mu.Lock()
	c.snap = fn(c.snap)
	next := c.snap
	subs := c.subscribers()
	hook := c.patchLog
	c.mu.Unlock()

	if hook != nil {
		hook(name)
	}
	notify(subs, next)
}

// Loading reports whether a refresh is in progress.
func (c *EntityCache) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// SetLoading sets the loading flag.
func (c *EntityCache) SetLoading(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = v
}

// Subscribe registers fn to be called with every new snapshot. The returned
// func removes the subscription. Callbacks run outside the cache lock.
func (c *EntityCache) Subscribe(fn func(attendance.Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// OnPatch installs a hook called with the name of every applied patch.
func (c *EntityCache) OnPatch(fn func(name string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patchLog = fn
}

// subscribers must be called with c.mu held.
func (c *EntityCache) subscribers() []func(attendance.Snapshot) {
	out := make([]func(attendance.Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(attendance.Snapshot), snap attendance.Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
