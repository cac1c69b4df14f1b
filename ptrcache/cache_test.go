package ptrcache

import (
	"context"
	"testing"

	"github.com/wippyai/nativeptr"
	"github.com/wippyai/nativeptr/errors"
	"github.com/wippyai/nativeptr/memory"
	"github.com/wippyai/nativeptr/pointer"
)

func newMemory() *memory.Linear {
	return memory.NewLinear(&memory.LinearConfig{Size: 1 << 12, Base: 0x10000, Model: nativeptr.LP64})
}

func TestLookup_Hit(t *testing.T) {
	mem := newMemory()
	c := New(nil)

	p1, err := c.Lookup(mem, 0x10010, pointer.Int32())
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	p2, err := c.Lookup(mem, 0x10010, pointer.Int32())
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if p1 != p2 {
		t.Error("second lookup returned a different pointer")
	}
	if p1.Ownership() != pointer.Borrowed {
		t.Errorf("ownership = %v, want borrowed", p1.Ownership())
	}

	other, _ := c.Lookup(mem, 0x10010, pointer.Uint32())
	if other == p1 {
		t.Error("different descriptor shared an entry")
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 2 {
		t.Errorf("stats = %d hits %d misses, want 1 and 2", hits, misses)
	}
}

func TestLookup_NullAddress(t *testing.T) {
	c := New(nil)
	if _, err := c.Lookup(newMemory(), 0, pointer.Int32()); !errors.IsKind(err, errors.KindNullAddress) {
		t.Errorf("error = %v, want null_address", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d after failed lookup", c.Len())
	}
}

func TestEviction(t *testing.T) {
	mem := newMemory()
	c := New(&Config{Capacity: 2, Overflow: 1})
	desc := pointer.Uint8()

	lookup := func(addr uint64) *pointer.Pointer {
		t.Helper()
		p, err := c.Lookup(mem, addr, desc)
		if err != nil {
			t.Fatalf("Lookup(%#x) failed: %v", addr, err)
		}
		return p
	}

	a := lookup(0x10001)
	b := lookup(0x10002)
	lookup(0x10003)
	if c.Len() != 3 {
		t.Fatalf("Len = %d within overflow, want 3", c.Len())
	}

	lookup(0x10001)
	d := lookup(0x10004)
	if c.Len() != 2 {
		t.Fatalf("Len = %d after eviction, want 2", c.Len())
	}

	tests := []struct {
		addr uint64
		want *pointer.Pointer
		kept bool
	}{
		{0x10001, a, true},
		{0x10004, d, true},
		{0x10002, b, false},
	}
	for _, tt := range tests {
		got := lookup(tt.addr)
		if (got == tt.want) != tt.kept {
			t.Errorf("address %#x kept = %v, want %v", tt.addr, got == tt.want, tt.kept)
		}
	}
}

func TestLookup_ReleasedDropped(t *testing.T) {
	mem := newMemory()
	c := New(nil)

	p, _ := c.Lookup(mem, 0x10020, pointer.Int64())
	if err := p.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	q, err := c.Lookup(mem, 0x10020, pointer.Int64())
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if q == p || q.Released() {
		t.Error("lookup resurrected a released pointer")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestInvalidateReset(t *testing.T) {
	mem := newMemory()
	c := New(nil)

	c.Lookup(mem, 0x10040, pointer.Int32())
	c.Lookup(mem, 0x10040, pointer.Float32())
	c.Lookup(mem, 0x10080, pointer.Int32())

	if n := c.Invalidate(0x10040); n != 2 {
		t.Errorf("Invalidate removed %d entries, want 2", n)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	c.Reset()
	if c.Len() != 0 {
		t.Errorf("Len = %d after Reset", c.Len())
	}
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != nil {
		t.Fatal("empty context carries a cache")
	}
	c := New(nil)
	if got := FromContext(WithCache(ctx, c)); got != c {
		t.Error("FromContext did not return the attached cache")
	}
}

func TestCachedPointerAccess(t *testing.T) {
	mem := newMemory()
	c := New(nil)

	p, _ := c.Lookup(mem, 0x10100, pointer.Int32())
	if err := p.SetInt32(-7); err != nil {
		t.Fatal(err)
	}
	q, _ := c.Lookup(mem, 0x10100, pointer.Int32())
	v, err := q.Get(0)
	if err != nil {
		t.Fatal(err)
	}
	if v != int32(-7) {
		t.Errorf("Get = %v, want -7", v)
	}
}

// taggedMemory is a Memory value that cannot be used as a map key.
type taggedMemory struct {
	*memory.Linear
	tags []string
}

func TestLookup_NonComparableMemory(t *testing.T) {
	mem := taggedMemory{Linear: newMemory(), tags: []string{"scratch"}}
	c := New(nil)

	p1, err := c.Lookup(mem, 0x10010, pointer.Int32())
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	p2, err := c.Lookup(mem, 0x10010, pointer.Int32())
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if p1 == p2 {
		t.Error("pointer over non-comparable memory was cached")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
	if err := p1.SetInt32(3); err != nil {
		t.Fatal(err)
	}
	if v, _ := p2.Int32(); v != 3 {
		t.Errorf("Int32 = %d, want 3", v)
	}
}
