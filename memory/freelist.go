package memory

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/nativeptr"
	"github.com/wippyai/nativeptr/errors"
	"github.com/wippyai/nativeptr/internal/abi"
)

// DefaultMinAlign is the smallest alignment handed out by FreeList.
const DefaultMinAlign = 8

// FreeListConfig holds configuration for a FreeList allocator
type FreeListConfig struct {
	// Grow extends the managed range when no free span fits.
	// It receives the number of bytes needed and returns the new end address.
	Grow func(need uint64) (uint64, error)

	// Start and End bound the managed range. Zero values mean the bounds of the
	// region passed to NewFreeList. Address zero is never handed out.
	Start uint64
	End   uint64

	// MinAlign is the minimum alignment of every block. 0 means DefaultMinAlign.
	MinAlign uint64
}

type span struct {
	start uint64
	end   uint64
}

// FreeList is a first-fit allocator with coalescing over an address range.
type FreeList struct {
	grow     func(need uint64) (uint64, error)
	used     map[uint64]uint64
	free     []span
	start    uint64
	end      uint64
	minAlign uint64
	inUse    uint64
	mu       sync.Mutex
}

// NewFreeList creates an allocator managing the mapped range of region.
func NewFreeList(region nativeptr.MemorySizer, cfg *FreeListConfig) *FreeList {
	var c FreeListConfig
	if cfg != nil {
		c = *cfg
	}
	start, end := c.Start, c.End
	if start == 0 && end == 0 && region != nil {
		start, end = region.Bounds()
	}
	if c.MinAlign == 0 || !abi.IsPowerOfTwo(c.MinAlign) {
		c.MinAlign = DefaultMinAlign
	}
	if start == 0 {
		start = c.MinAlign
	}
	if end < start {
		end = start
	}

	fl := &FreeList{
		grow:     c.Grow,
		used:     make(map[uint64]uint64),
		start:    start,
		end:      end,
		minAlign: c.MinAlign,
	}
	if end > start {
		fl.free = []span{{start: start, end: end}}
	}
	return fl
}

// Alloc returns the address of a block of at least size bytes aligned to align.
// A zero size allocates a minimal block so every allocation has its own address.
func (fl *FreeList) Alloc(size, align uint64) (uint64, error) {
	if size == 0 {
		size = 1
	}
	if align != 0 && !abi.IsPowerOfTwo(align) {
		return 0, errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			Detail("alignment %d is not a power of two", align).
			Build()
	}
	if align < fl.minAlign {
		align = fl.minAlign
	}
	size = abi.AlignTo(size, fl.minAlign)

	fl.mu.Lock()
	defer fl.mu.Unlock()

	if addr, ok := fl.carve(size, align); ok {
		return addr, nil
	}
	if fl.grow == nil {
		return 0, errors.AllocationFailed(errors.PhaseAlloc, size, align, nil)
	}

	newEnd, err := fl.grow(size + align)
	if err != nil {
		return 0, errors.AllocationFailed(errors.PhaseAlloc, size, align, err)
	}
	if newEnd > fl.end {
		fl.insert(span{start: fl.end, end: newEnd})
		fl.end = newEnd
	}
	if addr, ok := fl.carve(size, align); ok {
		return addr, nil
	}
	return 0, errors.AllocationFailed(errors.PhaseAlloc, size, align, nil)
}

// Free returns a block to the allocator. Unknown addresses are logged and ignored.
func (fl *FreeList) Free(addr, size, align uint64) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	n, ok := fl.used[addr]
	if !ok {
		nativeptr.Logger().Warn("FreeList: free of unknown block",
			zap.Uint64("addr", addr),
			zap.Uint64("size", size))
		return
	}
	delete(fl.used, addr)
	fl.inUse -= n
	fl.insert(span{start: addr, end: addr + n})
}

// InUse returns the number of allocated bytes.
func (fl *FreeList) InUse() uint64 {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	return fl.inUse
}

// Allocations returns the number of live blocks.
func (fl *FreeList) Allocations() int {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	return len(fl.used)
}

// Owns reports whether addr is the start of a live block.
func (fl *FreeList) Owns(addr uint64) bool {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	_, ok := fl.used[addr]
	return ok
}

func (fl *FreeList) carve(size, align uint64) (uint64, bool) {
	for i, s := range fl.free {
		addr := abi.AlignTo(s.start, align)
		if addr < s.start || addr > s.end || size > s.end-addr {
			continue
		}

		var repl []span
		if addr > s.start {
			repl = append(repl, span{start: s.start, end: addr})
		}
		if addr+size < s.end {
			repl = append(repl, span{start: addr + size, end: s.end})
		}
		fl.free = append(fl.free[:i], append(repl, fl.free[i+1:]...)...)

		fl.used[addr] = size
		fl.inUse += size
		return addr, true
	}
	return 0, false
}

// insert adds s to the free list, merging it with adjacent spans.
func (fl *FreeList) insert(s span) {
	i := sort.Search(len(fl.free), func(i int) bool { return fl.free[i].start >= s.start })
	fl.free = append(fl.free, span{})
	copy(fl.free[i+1:], fl.free[i:])
	fl.free[i] = s

	if i+1 < len(fl.free) && fl.free[i].end == fl.free[i+1].start {
		fl.free[i].end = fl.free[i+1].end
		fl.free = append(fl.free[:i+1], fl.free[i+2:]...)
	}
	if i > 0 && fl.free[i-1].end == fl.free[i].start {
		fl.free[i-1].end = fl.free[i].end
		fl.free = append(fl.free[:i], fl.free[i+1:]...)
	}
}

var _ nativeptr.Allocator = (*FreeList)(nil)
