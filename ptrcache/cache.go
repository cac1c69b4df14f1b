// Package ptrcache caches pointers wrapped around addresses returned by
// native code, so that a call site returning the same address repeatedly
// hands out the same pointer.
//
// A Cache is not safe for concurrent use. Keep one per goroutine, attached
// to its context with WithCache.
package ptrcache

import (
	"context"
	"reflect"
	"slices"

	"go.uber.org/zap"

	"github.com/wippyai/nativeptr"
	"github.com/wippyai/nativeptr/pointer"
)

const (
	DefaultCapacity = 8
	DefaultOverflow = 2
)

// Config configures a Cache. Zero fields take their defaults.
type Config struct {
	// Capacity is the number of entries kept after an eviction.
	Capacity int
	// Overflow is how many entries past Capacity are tolerated before the
	// least recently used ones are evicted.
	Overflow int
}

type key struct {
	mem  nativeptr.Memory
	addr uint64
	desc *pointer.Descriptor
}

type entry struct {
	lastUsed uint // tick of the last lookup
	p        *pointer.Pointer
}

// Cache is a least-recently-used map from (memory, address, descriptor) to
// borrowed pointers. Memory values are compared as interface values, so two
// pointers to the same backend share entries.
//
// Entries do not extend the lifetime of anything: a cached pointer is
// borrowed and never frees memory. Entries whose pointer was released are
// dropped on lookup. An entry left behind after the underlying memory was
// freed and reused is the caller's error; call Invalidate when freeing.
type Cache struct {
	entries  map[key]*entry
	capacity int
	overflow int
	tick     uint
	hits     uint64
	misses   uint64
}

// New creates a cache. A nil cfg uses the defaults.
func New(cfg *Config) *Cache {
	c := &Cache{
		entries:  make(map[key]*entry),
		capacity: DefaultCapacity,
		overflow: DefaultOverflow,
	}
	if cfg != nil {
		if cfg.Capacity > 0 {
			c.capacity = cfg.Capacity
		}
		if cfg.Overflow > 0 {
			c.overflow = cfg.Overflow
		}
	}
	return c
}

// Lookup returns the cached pointer for addr viewed as desc in mem, wrapping
// and caching a new one when none is live. A mem whose dynamic type is not
// comparable cannot be a key; its pointers are wrapped but never cached.
func (c *Cache) Lookup(mem nativeptr.Memory, addr uint64, desc *pointer.Descriptor) (*pointer.Pointer, error) {
	if mem != nil && !reflect.TypeOf(mem).Comparable() {
		c.misses++
		return pointer.Wrap(mem, addr, desc)
	}
	k := key{mem: mem, addr: addr, desc: desc}
	if e, ok := c.entries[k]; ok {
		if !e.p.Released() {
			c.tick++
			e.lastUsed = c.tick
			c.hits++
			return e.p, nil
		}
		delete(c.entries, k)
	}

	p, err := pointer.Wrap(mem, addr, desc)
	if err != nil {
		return nil, err
	}
	c.misses++
	c.tick++
	c.entries[k] = &entry{lastUsed: c.tick, p: p}
	if len(c.entries) > c.capacity+c.overflow {
		c.evict()
	}
	return p, nil
}

// evict drops least recently used entries until the capacity is reached.
func (c *Cache) evict() {
	type aged struct {
		k    key
		used uint
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{k, e.lastUsed})
	}
	slices.SortFunc(all, func(a, b aged) int {
		switch {
		case a.used < b.used:
			return -1
		case a.used > b.used:
			return 1
		}
		return 0
	})

	n := len(all) - c.capacity
	for _, a := range all[:n] {
		delete(c.entries, a.k)
	}
	nativeptr.Logger().Debug("evicted cached pointers",
		zap.Int("evicted", n),
		zap.Int("kept", len(c.entries)))
}

// Invalidate drops every entry for addr, whatever its memory or descriptor.
// It returns the number of entries removed.
func (c *Cache) Invalidate(addr uint64) int {
	n := 0
	for k := range c.entries {
		if k.addr == addr {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of cached entries, including released ones not yet
// dropped.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Reset drops every entry and restarts the recency clock.
func (c *Cache) Reset() {
	clear(c.entries)
	c.tick = 0
}

// Stats returns lookup hit and miss counts since creation.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits, c.misses
}

type cacheContextKey struct{}

// WithCache returns a context carrying c.
func WithCache(ctx context.Context, c *Cache) context.Context {
	return context.WithValue(ctx, cacheContextKey{}, c)
}

// FromContext returns the cache carried by ctx, or nil.
func FromContext(ctx context.Context) *Cache {
	if c, ok := ctx.Value(cacheContextKey{}).(*Cache); ok {
		return c
	}
	return nil
}
