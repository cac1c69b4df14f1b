package pointer

import (
	stderrors "errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wippyai/nativeptr"
	"github.com/wippyai/nativeptr/errors"
	"github.com/wippyai/nativeptr/memory"
)

// countingAllocator wraps a FreeList and counts frees per address.
type countingAllocator struct {
	*memory.FreeList
	frees atomic.Int64
	mu    sync.Mutex
	seen  map[uint64]int
}

func newCountingAllocator(mem *memory.Linear) *countingAllocator {
	return &countingAllocator{FreeList: memory.NewFreeList(mem, nil), seen: make(map[uint64]int)}
}

func (a *countingAllocator) Free(addr, size, align uint64) {
	a.frees.Add(1)
	a.mu.Lock()
	a.seen[addr]++
	a.mu.Unlock()
	a.FreeList.Free(addr, size, align)
}

func TestRelease_Idempotent(t *testing.T) {
	mem := memory.NewLinear(&memory.LinearConfig{Size: 4096, Model: nativeptr.LP64})
	alloc := newCountingAllocator(mem)

	p, err := Allocate(mem, alloc, Int32(), 4)
	if err != nil {
		t.Fatal(err)
	}
	views := make([]*Pointer, 0, 8)
	for i := int64(0); i < 4; i++ {
		v, err := p.Next(i)
		if err != nil {
			t.Fatal(err)
		}
		views = append(views, v, v.As(Uint32()))
	}

	if err := p.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := p.Release(); err != nil {
		t.Fatalf("second Release failed: %v", err)
	}
	if got := alloc.frees.Load(); got != 1 {
		t.Fatalf("frees = %d, want 1", got)
	}

	for _, v := range views {
		if !v.Released() {
			t.Errorf("view %v not released", v)
		}
		if _, err := v.Int32(); !errors.IsKind(err, errors.KindAlreadyReleased) {
			t.Errorf("read through view error = %v, want already_released", err)
		}
	}

	if err := p.Free(); !errors.IsKind(err, errors.KindAlreadyReleased) {
		t.Errorf("strict Free after Release error = %v, want already_released", err)
	}
}

func TestRelease_DerivedForwardsToRoot(t *testing.T) {
	mem := memory.NewLinear(&memory.LinearConfig{Size: 4096, Model: nativeptr.LP64})
	alloc := newCountingAllocator(mem)

	p, err := Allocate(mem, alloc, Int32(), 4)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	a, _ := p.Offset(4)
	b, _ := a.Offset(4)

	if err := b.Release(); err != nil {
		t.Fatal(err)
	}
	if err := b.Release(); err != nil {
		t.Fatalf("repeat derived Release failed: %v", err)
	}
	if n := alloc.frees.Load(); n != 1 {
		t.Fatalf("frees = %d, want 1", n)
	}
	if !p.Released() || !a.Released() {
		t.Error("root or sibling still live after derived release")
	}
	if b.Root() != nil {
		t.Error("released view still links its root")
	}
	if _, err := a.Int32(); !errors.IsKind(err, errors.KindAlreadyReleased) {
		t.Errorf("read through sibling view error = %v", err)
	}
	if err := a.Free(); !errors.IsKind(err, errors.KindAlreadyReleased) {
		t.Errorf("strict Free on sibling view error = %v", err)
	}
	if err := p.Release(); err != nil {
		t.Errorf("root Release after derived release: %v", err)
	}
	if n := alloc.frees.Load(); n != 1 {
		t.Errorf("frees = %d after root Release, want 1", n)
	}
}

func TestRelease_DereferencedOnlyDetaches(t *testing.T) {
	mem := memory.NewLinear(&memory.LinearConfig{Size: 4096, Model: nativeptr.LP64})
	alloc := newCountingAllocator(mem)

	holder, err := AllocateBytes(mem, alloc, 8, 8)
	if err != nil {
		t.Fatal(err)
	}
	defer holder.Release()
	target, err := Allocate(mem, alloc, Int32(), 1)
	if err != nil {
		t.Fatal(err)
	}
	defer target.Release()
	if err := holder.SetPointerAt(0, target); err != nil {
		t.Fatal(err)
	}

	q, err := holder.PointerAt(0, Int32())
	if err != nil {
		t.Fatal(err)
	}
	if err := q.Release(); err != nil {
		t.Fatal(err)
	}
	if alloc.frees.Load() != 0 {
		t.Fatal("releasing a dereferenced pointer freed memory")
	}
	if !q.Released() || holder.Released() || target.Released() {
		t.Error("unexpected release state after detaching a dereferenced pointer")
	}
	if err := q.Free(); !errors.IsKind(err, errors.KindAlreadyReleased) {
		t.Errorf("strict Free on detached pointer error = %v", err)
	}
}

func TestRelease_Concurrent(t *testing.T) {
	mem := memory.NewLinear(&memory.LinearConfig{Size: 4096, Model: nativeptr.LP64})
	alloc := newCountingAllocator(mem)

	p, err := Allocate(mem, alloc, Uint64(), 2)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	var wins atomic.Int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if p.Free() == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("successful strict frees = %d, want 1", wins.Load())
	}
	if alloc.frees.Load() != 1 {
		t.Errorf("frees = %d, want 1", alloc.frees.Load())
	}
}

func TestWithRelease(t *testing.T) {
	mem := memory.NewLinear(&memory.LinearConfig{Size: 4096, Model: nativeptr.LP64})

	t.Run("runs before free and keeps fallback", func(t *testing.T) {
		alloc := newCountingAllocator(mem)
		p, err := Allocate(mem, alloc, Uint8(), 8)
		if err != nil {
			t.Fatal(err)
		}

		var order []string
		if err := p.WithRelease(func() error {
			order = append(order, "first")
			return nil
		}); err != nil {
			t.Fatal(err)
		}
		hookErr := stderrors.New("hook failed")
		if err := p.WithRelease(func() error {
			order = append(order, "second")
			return hookErr
		}); err != nil {
			t.Fatal(err)
		}

		err = p.Release()
		if !stderrors.Is(err, hookErr) {
			t.Errorf("Release error = %v, want hook error", err)
		}
		if len(order) != 2 || order[0] != "second" || order[1] != "first" {
			t.Errorf("hooks ran as %v, want [second first]", order)
		}
		if alloc.frees.Load() != 1 {
			t.Errorf("frees = %d, want 1 despite hook failure", alloc.frees.Load())
		}
		if !p.Released() {
			t.Error("pointer not released after failed hook")
		}
	})

	t.Run("hook error kinds survive composition", func(t *testing.T) {
		alloc := newCountingAllocator(mem)
		p, err := Allocate(mem, alloc, Uint8(), 8)
		if err != nil {
			t.Fatal(err)
		}
		if err := p.WithRelease(func() error {
			return errors.InvalidInput(errors.PhaseRelease, "first hook")
		}); err != nil {
			t.Fatal(err)
		}
		if err := p.WithRelease(func() error {
			return errors.NullAddress(errors.PhaseRelease)
		}); err != nil {
			t.Fatal(err)
		}

		err = p.Release()
		for _, k := range []errors.Kind{errors.KindAllocation, errors.KindNullAddress, errors.KindInvalidInput} {
			if !errors.IsKind(err, k) {
				t.Errorf("IsKind(%v, %s) = false", err, k)
			}
		}
	})

	t.Run("borrowed memory is never freed", func(t *testing.T) {
		b, err := Borrow(mem, 0x10100, 16, Ordered)
		if err != nil {
			t.Fatal(err)
		}
		called := false
		if err := b.WithRelease(func() error { called = true; return nil }); err != nil {
			t.Fatal(err)
		}
		if err := b.Release(); err != nil {
			t.Fatal(err)
		}
		if !called {
			t.Error("borrowed release hook not called")
		}
		if _, err := b.Uint8(); !errors.IsKind(err, errors.KindAlreadyReleased) {
			t.Errorf("read after borrowed release error = %v", err)
		}
	})

	t.Run("derived has no strategy", func(t *testing.T) {
		alloc := newCountingAllocator(mem)
		p, err := Allocate(mem, alloc, Uint8(), 8)
		if err != nil {
			t.Fatal(err)
		}
		defer p.Release()
		v, _ := p.Offset(1)
		if err := v.WithRelease(func() error { return nil }); !errors.IsKind(err, errors.KindInvalidInput) {
			t.Errorf("WithRelease on derived error = %v", err)
		}
	})
}

func TestRelease_Unreachable(t *testing.T) {
	mem := memory.NewLinear(&memory.LinearConfig{Size: 4096, Model: nativeptr.LP64})
	alloc := newCountingAllocator(mem)

	func() {
		p, err := Allocate(mem, alloc, Uint64(), 4)
		if err != nil {
			t.Fatal(err)
		}
		_ = p.SetUint64(1)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for alloc.frees.Load() == 0 && time.Now().Before(deadline) {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
	if alloc.frees.Load() != 1 {
		t.Fatalf("frees = %d after root became unreachable, want 1", alloc.frees.Load())
	}
}

func TestRelease_DerivedKeepsRootAlive(t *testing.T) {
	mem := memory.NewLinear(&memory.LinearConfig{Size: 4096, Model: nativeptr.LP64})
	alloc := newCountingAllocator(mem)

	view := func() *Pointer {
		p, err := Allocate(mem, alloc, Uint64(), 4)
		if err != nil {
			t.Fatal(err)
		}
		v, err := p.Next(2)
		if err != nil {
			t.Fatal(err)
		}
		return v
	}()

	for i := 0; i < 5; i++ {
		runtime.GC()
		time.Sleep(5 * time.Millisecond)
	}
	if alloc.frees.Load() != 0 {
		t.Fatal("root freed while a derived view is reachable")
	}
	if err := view.SetUint64(9); err != nil {
		t.Errorf("write through view failed: %v", err)
	}
	runtime.KeepAlive(view)
}
