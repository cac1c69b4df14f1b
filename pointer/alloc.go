package pointer

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/wippyai/nativeptr"
	"github.com/wippyai/nativeptr/errors"
	"github.com/wippyai/nativeptr/internal/abi"
)

// Allocate allocates n zeroed elements of desc and returns the root pointer
// owning them. The block is freed through alloc on Release, or once the root
// and every pointer derived from it are unreachable.
func Allocate(mem nativeptr.Memory, alloc nativeptr.Allocator, desc *Descriptor, n uint64) (*Pointer, error) {
	if desc == nil {
		return nil, errors.UntypedAccess(errors.PhaseAlloc, 0, "Allocate")
	}
	size, ok := abi.SafeMul(desc.size, n)
	if !ok || size == 0 {
		return nil, errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			Type(desc.name).
			Detail("cannot allocate %d elements of %d bytes", n, desc.size).
			Build()
	}
	p, err := AllocateBytes(mem, alloc, size, desc.align)
	if err != nil {
		return nil, err
	}
	p.desc = desc
	return p, nil
}

// AllocateBytes allocates size zeroed bytes aligned to align.
func AllocateBytes(mem nativeptr.Memory, alloc nativeptr.Allocator, size, align uint64) (*Pointer, error) {
	if mem == nil || alloc == nil {
		return nil, errors.InvalidInput(errors.PhaseAlloc, "memory and allocator are required")
	}
	if size == 0 {
		return nil, errors.InvalidInput(errors.PhaseAlloc, "cannot allocate zero bytes")
	}
	if align == 0 {
		align = 1
	}

	addr, err := alloc.Alloc(size, align)
	if err != nil {
		return nil, errors.AllocationFailed(errors.PhaseAlloc, size, align, err)
	}
	if addr == 0 {
		return nil, errors.AllocationFailed(errors.PhaseAlloc, size, align, errors.NullAddress(errors.PhaseAlloc))
	}

	blk := &block{alloc: alloc, addr: addr, size: size, align: align}
	p := &Pointer{
		mem:     mem,
		order:   orderFor(mem, Ordered),
		blk:     blk,
		addr:    addr,
		start:   addr,
		end:     addr + size,
		bounded: true,
		ord:     Ordered,
		link:    Root,
	}
	if err := p.Clear(size); err != nil {
		alloc.Free(addr, size, align)
		return nil, err
	}

	blk.cleanup = runtime.AddCleanup(p, releaseFromCleanup, blk)
	blk.tracked = true

	nativeptr.Logger().Debug("allocated block",
		zap.Uint64("addr", addr),
		zap.Uint64("size", size),
		zap.Uint64("align", align))
	return p, nil
}

// AllocateArray allocates a contiguous multi-dimensional array of elem.
// The root's descriptor is the chain ArrayOf(...ArrayOf(elem, dims[last])...)
// covering dims[1:]; Get on any level returns a view into the same block.
func AllocateArray(mem nativeptr.Memory, alloc nativeptr.Allocator, elem *Descriptor, dims ...uint64) (*Pointer, error) {
	if len(dims) == 0 {
		return nil, errors.InvalidInput(errors.PhaseAlloc, "no dimensions")
	}
	desc := elem
	for i := len(dims) - 1; i > 0; i-- {
		d, err := ArrayOf(desc, dims[i])
		if err != nil {
			return nil, err
		}
		desc = d
	}
	return Allocate(mem, alloc, desc, dims[0])
}
