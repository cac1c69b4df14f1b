package memory

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/nativeptr"
	"github.com/wippyai/nativeptr/errors"
)

const (
	canonRealloc = "cabi_realloc"
	simpleAlloc  = "malloc"
	simpleFree   = "free"
)

// Guest implements nativeptr.Allocator by calling functions exported by a
// wasm module: cabi_realloc(old, oldSize, align, newSize) when present,
// otherwise malloc(size) and free(ptr).
type Guest struct {
	allocFn     api.Function
	freeFn      api.Function
	currentCtx  context.Context
	stackBuf    []uint64
	freeParams  int
	stackMutex  sync.Mutex
	isSimple    bool
	freeRealloc bool
}

// NewGuest resolves the allocation exports of mod.
func NewGuest(mod api.Module) (*Guest, error) {
	g := &Guest{stackBuf: make([]uint64, 4)}

	if fn := mod.ExportedFunction(canonRealloc); fn != nil {
		g.allocFn = fn
	} else if fn := mod.ExportedFunction(simpleAlloc); fn != nil {
		g.allocFn = fn
		g.isSimple = true
	} else {
		return nil, errors.New(errors.PhaseAlloc, errors.KindUnsupported).
			Detail("module exports neither %s nor %s", canonRealloc, simpleAlloc).
			Build()
	}

	if fn := mod.ExportedFunction(simpleFree); fn != nil {
		g.freeFn = fn
		g.freeParams = len(fn.Definition().ParamTypes())
		if g.freeParams > 3 {
			g.freeParams = 3
		}
	} else if !g.isSimple {
		// cabi_realloc(ptr, size, align, 0) releases the block
		g.freeFn = g.allocFn
		g.freeRealloc = true
	}
	return g, nil
}

// SetContext sets the context used for guest calls.
func (g *Guest) SetContext(ctx context.Context) {
	g.stackMutex.Lock()
	defer g.stackMutex.Unlock()
	g.currentCtx = ctx
}

func (g *Guest) Alloc(size, align uint64) (uint64, error) {
	g.stackMutex.Lock()
	defer g.stackMutex.Unlock()

	ctx := g.context()

	if g.isSimple {
		g.stackBuf[0] = size
		if err := g.allocFn.CallWithStack(ctx, g.stackBuf[:1]); err != nil {
			return 0, errors.AllocationFailed(errors.PhaseAlloc, size, align, err)
		}
	} else {
		g.stackBuf[0] = 0
		g.stackBuf[1] = 0
		g.stackBuf[2] = align
		g.stackBuf[3] = size
		if err := g.allocFn.CallWithStack(ctx, g.stackBuf[:4]); err != nil {
			return 0, errors.AllocationFailed(errors.PhaseAlloc, size, align, err)
		}
	}

	addr := uint64(uint32(g.stackBuf[0]))
	if addr == 0 {
		return 0, errors.AllocationFailed(errors.PhaseAlloc, size, align, nil)
	}
	return addr, nil
}

func (g *Guest) Free(addr, size, align uint64) {
	if g.freeFn == nil || addr == 0 {
		return
	}
	g.stackMutex.Lock()
	defer g.stackMutex.Unlock()

	ctx := g.context()

	var err error
	if g.freeRealloc {
		g.stackBuf[0] = addr
		g.stackBuf[1] = size
		g.stackBuf[2] = align
		g.stackBuf[3] = 0
		err = g.freeFn.CallWithStack(ctx, g.stackBuf[:4])
	} else {
		g.stackBuf[0] = addr
		g.stackBuf[1] = size
		g.stackBuf[2] = align
		n := g.freeParams
		if n == 0 {
			n = 1
		}
		err = g.freeFn.CallWithStack(ctx, g.stackBuf[:n])
	}
	if err != nil {
		nativeptr.Logger().Warn("Guest: failed to call guest deallocation",
			zap.Uint64("addr", addr),
			zap.Uint64("size", size),
			zap.Error(err))
	}
}

func (g *Guest) context() context.Context {
	if g.currentCtx == nil {
		return context.Background()
	}
	return g.currentCtx
}

var _ nativeptr.Allocator = (*Guest)(nil)
