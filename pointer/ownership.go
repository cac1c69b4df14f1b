package pointer

import (
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/nativeptr"
	"github.com/wippyai/nativeptr/errors"
)

// ReleaseFunc releases a block of memory.
type ReleaseFunc func() error

// block is the shared ownership state of one allocation or borrowed region.
// Every pointer derived from the same root shares its block.
type block struct {
	alloc    nativeptr.Allocator
	release  ReleaseFunc
	cleanup  runtime.Cleanup
	addr     uint64
	size     uint64
	align    uint64
	released atomic.Bool
	borrowed bool
	tracked  bool
	mu       sync.Mutex
}

// free runs the release strategy once. It reports whether this call won the
// release and any error produced by the strategy.
func (b *block) free() (bool, error) {
	if !b.released.CompareAndSwap(false, true) {
		return false, nil
	}

	b.mu.Lock()
	fn := b.release
	b.mu.Unlock()

	var err error
	if fn != nil {
		err = fn()
	}
	if !b.borrowed && b.alloc != nil {
		b.alloc.Free(b.addr, b.size, b.align)
	}
	return true, err
}

// releaseFromCleanup runs when the root pointer becomes unreachable.
func releaseFromCleanup(b *block) {
	won, err := b.free()
	if !won {
		return
	}
	log := nativeptr.Logger()
	if err != nil {
		log.Warn("release strategy failed during cleanup",
			zap.Uint64("addr", b.addr),
			zap.Uint64("size", b.size),
			zap.Error(err))
		return
	}
	log.Debug("released unreachable block",
		zap.Uint64("addr", b.addr),
		zap.Uint64("size", b.size))
}

// Released reports whether the memory behind p has been released, or p was
// detached from its owner.
func (p *Pointer) Released() bool {
	if p.detached.Load() {
		return true
	}
	return p.blk != nil && p.blk.released.Load()
}

// Release releases the memory owned by p. It is idempotent: later calls, and
// the cleanup that runs when the root becomes unreachable, are no-ops.
//
// Releasing a root or borrowed pointer runs its release strategy; borrowed
// memory is never freed. Releasing a derived pointer forwards to its root and
// then unlinks it. A pointer read from a pointer slot is only unlinked: its
// target is not part of the root's block.
func (p *Pointer) Release() error {
	_, err := p.release()
	return err
}

// Free is the strict form of Release. Releasing memory that is already
// released fails with KindAlreadyReleased.
func (p *Pointer) Free() error {
	won, err := p.release()
	if err != nil {
		return err
	}
	if !won {
		return errors.AlreadyReleased(errors.PhaseRelease, p.addr, "double release")
	}
	return nil
}

func (p *Pointer) release() (bool, error) {
	if p.link == Derived {
		if !p.detached.CompareAndSwap(false, true) {
			return false, nil
		}
		root := p.owner.Swap(nil)
		if root == nil || root.blk != p.blk {
			// dereferenced pointers address memory the root does not own
			nativeptr.Logger().Debug("detached derived pointer",
				zap.Uint64("addr", p.addr))
			return true, nil
		}
		won, err := root.release()
		nativeptr.Logger().Debug("released root through derived pointer",
			zap.Uint64("addr", p.addr),
			zap.Uint64("root", root.addr),
			zap.Bool("freed", won))
		return won, err
	}

	if p.blk == nil {
		return false, nil
	}
	won, err := p.blk.free()
	if won && p.blk.tracked {
		p.blk.cleanup.Stop()
	}
	if err != nil {
		return won, errors.New(errors.PhaseRelease, errors.KindAllocation).
			Address(p.blk.addr).
			Detail("release strategy failed").
			Cause(err).
			Build()
	}
	return won, nil
}

// Root returns the pointer responsible for releasing p's memory, or nil when
// p has been detached.
func (p *Pointer) Root() *Pointer {
	if p.link != Derived {
		return p
	}
	return p.owner.Load()
}

// WithRelease installs fn to run before the current release strategy. The
// previous strategy still runs when fn fails; errors from both are combined.
// Only root and borrowed pointers carry a strategy.
func (p *Pointer) WithRelease(fn ReleaseFunc) error {
	if fn == nil {
		return errors.InvalidInput(errors.PhaseRelease, "release func is nil")
	}
	if p.link == Derived || p.blk == nil {
		return errors.New(errors.PhaseRelease, errors.KindInvalidInput).
			Address(p.addr).
			Detail("%s pointer has no release strategy", p.link).
			Build()
	}
	if p.blk.released.Load() {
		return errors.AlreadyReleased(errors.PhaseRelease, p.addr, "cannot compose release after release")
	}

	p.blk.mu.Lock()
	defer p.blk.mu.Unlock()
	prev := p.blk.release
	p.blk.release = func() error {
		err := fn()
		if prev != nil {
			err = multierr.Append(err, prev())
		}
		return err
	}
	return nil
}
