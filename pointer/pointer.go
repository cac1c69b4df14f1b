package pointer

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"github.com/wippyai/nativeptr"
	"github.com/wippyai/nativeptr/errors"
	"github.com/wippyai/nativeptr/internal/abi"
)

// Pointer is a typed view over an address in a Memory.
//
// A Pointer is immutable: derivations return new values. The zero address is
// never represented by a Pointer; functions that decode addresses return a nil
// *Pointer instead.
type Pointer struct {
	mem    nativeptr.Memory
	order  binary.ByteOrder
	desc   *Descriptor
	blk    *block
	parent *Pointer
	owner  atomic.Pointer[Pointer]

	detached atomic.Bool

	addr         uint64
	start        uint64
	end          uint64
	parentOffset int64
	bounded      bool
	ord          Order
	link         Ownership
}

// Wrap creates a borrowed pointer without a validity window, for addresses
// handed out by native code. Only the mapped range of mem limits accesses.
func Wrap(mem nativeptr.Memory, addr uint64, desc *Descriptor) (*Pointer, error) {
	if addr == 0 {
		return nil, errors.NullAddress(errors.PhaseConstruct)
	}
	if mem == nil {
		return nil, errors.InvalidInput(errors.PhaseConstruct, "memory is nil")
	}
	p := &Pointer{
		mem:   mem,
		order: orderFor(mem, Ordered),
		desc:  desc,
		blk:   &block{addr: addr, borrowed: true},
		addr:  addr,
		link:  Borrowed,
	}
	return p, nil
}

// Borrow wraps a caller-owned region [addr, addr+length). The pointer never
// frees the region and its window cannot be extended past length.
func Borrow(mem nativeptr.Memory, addr, length uint64, order Order) (*Pointer, error) {
	if addr == 0 {
		return nil, errors.NullAddress(errors.PhaseConstruct)
	}
	if mem == nil {
		return nil, errors.InvalidInput(errors.PhaseConstruct, "memory is nil")
	}
	end, ok := abi.SafeAdd(addr, length)
	if !ok || length == 0 {
		return nil, errors.New(errors.PhaseConstruct, errors.KindInvalidInput).
			Address(addr).
			Detail("invalid borrowed length %d", length).
			Build()
	}
	return &Pointer{
		mem:     mem,
		order:   orderFor(mem, order),
		blk:     &block{addr: addr, size: length, borrowed: true},
		addr:    addr,
		start:   addr,
		end:     end,
		bounded: true,
		ord:     order,
		link:    Borrowed,
	}, nil
}

// BorrowBounded wraps addr inside a caller-owned region [start, end).
// The address may sit anywhere in the region, which allows headers at
// negative offsets.
func BorrowBounded(mem nativeptr.Memory, addr, start, end uint64, order Order) (*Pointer, error) {
	if addr == 0 {
		return nil, errors.NullAddress(errors.PhaseConstruct)
	}
	if end <= start || addr < start || addr > end {
		return nil, errors.New(errors.PhaseConstruct, errors.KindInvalidInput).
			Address(addr).
			Detail("invalid validity window %s", errors.Range{Start: start, End: end}).
			Build()
	}
	p, err := Borrow(mem, start, end-start, order)
	if err != nil {
		return nil, err
	}
	p.addr = addr
	return p, nil
}

func orderFor(mem nativeptr.Memory, o Order) binary.ByteOrder {
	m := mem.Model()
	if o == Disordered {
		return m.Swapped()
	}
	return m.ByteOrder
}

// Address returns the address the pointer denotes.
func (p *Pointer) Address() uint64 {
	return p.addr
}

// Memory returns the address space of the pointer.
func (p *Pointer) Memory() nativeptr.Memory {
	return p.mem
}

// Model returns the data model of the pointer's memory.
func (p *Pointer) Model() nativeptr.DataModel {
	return p.mem.Model()
}

// Descriptor returns the element descriptor, or nil for untyped pointers.
func (p *Pointer) Descriptor() *Descriptor {
	return p.desc
}

// Validity returns the window [start, end) the pointer may access.
// ok is false when the window is unknown and accesses are unchecked.
func (p *Pointer) Validity() (start, end uint64, ok bool) {
	return p.start, p.end, p.bounded
}

// Order returns the byte-order mode of the pointer.
func (p *Pointer) Order() Order {
	return p.ord
}

// ByteOrder returns the byte order used for multi-byte accesses.
func (p *Pointer) ByteOrder() binary.ByteOrder {
	return p.order
}

// Ownership returns how the pointer relates to its memory.
func (p *Pointer) Ownership() Ownership {
	return p.link
}

// Parent returns the pointer holding the slot this pointer was read from and
// the byte offset of that slot. ok is false unless the pointer was produced by
// dereferencing a pointer-valued slot.
func (p *Pointer) Parent() (parent *Pointer, offset int64, ok bool) {
	if p.parent == nil {
		return nil, 0, false
	}
	return p.parent, p.parentOffset, true
}

// ElementSize returns the descriptor size, or 0 for untyped pointers.
func (p *Pointer) ElementSize() uint64 {
	if p.desc == nil {
		return 0
	}
	return p.desc.size
}

// Remaining returns the number of bytes between the address and the end of
// the window. ok is false for unbounded pointers.
func (p *Pointer) Remaining() (n uint64, ok bool) {
	if !p.bounded {
		return 0, false
	}
	return p.end - p.addr, true
}

func (p *Pointer) String() string {
	name := "untyped"
	if p.desc != nil {
		name = p.desc.name
	}
	if p.bounded {
		return fmt.Sprintf("ptr(0x%x %s %s %s)", p.addr, name, errors.Range{Start: p.start, End: p.end}, p.link)
	}
	return fmt.Sprintf("ptr(0x%x %s unbounded %s)", p.addr, name, p.link)
}

// derive returns a derived pointer sharing p's memory, window and owner.
func (p *Pointer) derive(addr uint64, desc *Descriptor) *Pointer {
	q := &Pointer{
		mem:     p.mem,
		order:   p.order,
		desc:    desc,
		blk:     p.blk,
		addr:    addr,
		start:   p.start,
		end:     p.end,
		bounded: p.bounded,
		ord:     p.ord,
		link:    Derived,
	}
	q.owner.Store(p.effectiveRoot())
	if p.detached.Load() {
		q.detached.Store(true)
	}
	return q
}

// effectiveRoot returns the pointer that must stay reachable for p's memory
// to stay alive.
func (p *Pointer) effectiveRoot() *Pointer {
	if p.link != Derived {
		return p
	}
	if r := p.owner.Load(); r != nil {
		return r
	}
	return p
}

// Offset returns a pointer delta bytes away. The new address must stay within
// the window; offsetting to address zero fails.
func (p *Pointer) Offset(delta int64) (*Pointer, error) {
	addr, ok := abi.AddSigned(p.addr, delta)
	if !ok {
		return nil, errors.New(errors.PhaseConstruct, errors.KindOutOfBounds).
			Address(p.addr).
			Detail("offset %d wraps the address space", delta).
			Build()
	}
	if p.bounded && (addr < p.start || addr > p.end) {
		return nil, errors.OutOfBounds(errors.PhaseConstruct, p.addr,
			errors.Range{Start: addr, End: addr},
			errors.Range{Start: p.start, End: p.end})
	}
	if addr == 0 {
		return nil, errors.NullAddress(errors.PhaseConstruct)
	}
	return p.derive(addr, p.desc), nil
}

// Next returns a pointer n elements away.
func (p *Pointer) Next(n int64) (*Pointer, error) {
	if p.desc == nil {
		return nil, errors.UntypedAccess(errors.PhaseConstruct, p.addr, "Next")
	}
	delta, err := p.elementOffset(n)
	if err != nil {
		return nil, err
	}
	return p.Offset(delta)
}

// As returns a pointer to the same address with another descriptor.
func (p *Pointer) As(desc *Descriptor) *Pointer {
	q := p.derive(p.addr, desc)
	q.parent, q.parentOffset = p.parent, p.parentOffset
	return q
}

// Untyped returns a pointer to the same address without a descriptor.
func (p *Pointer) Untyped() *Pointer {
	return p.As(nil)
}

// WithOrder returns a pointer to the same bytes accessed with order.
func (p *Pointer) WithOrder(order Order) *Pointer {
	q := p.As(p.desc)
	q.ord = order
	q.order = orderFor(p.mem, order)
	return q
}

// ValidBytes returns a pointer whose window is [addr, addr+n).
// A window may only shrink: exceeding the current window fails.
func (p *Pointer) ValidBytes(n uint64) (*Pointer, error) {
	end, ok := abi.SafeAdd(p.addr, n)
	if !ok || n == 0 {
		return nil, errors.New(errors.PhaseConstruct, errors.KindInvalidInput).
			Address(p.addr).
			Detail("invalid validity length %d", n).
			Build()
	}
	if p.bounded && end > p.end {
		return nil, errors.New(errors.PhaseConstruct, errors.KindOutOfBounds).
			Address(p.addr).
			Detail("cannot extend validity to %s beyond %s",
				errors.Range{Start: p.addr, End: end},
				errors.Range{Start: p.start, End: p.end}).
			Value(n).
			Build()
	}
	q := p.As(p.desc)
	q.start, q.end, q.bounded = p.addr, end, true
	return q, nil
}

// ValidElements is ValidBytes for n elements of the pointer's descriptor.
func (p *Pointer) ValidElements(n uint64) (*Pointer, error) {
	if p.desc == nil {
		return nil, errors.UntypedAccess(errors.PhaseConstruct, p.addr, "ValidElements")
	}
	size, ok := abi.SafeMul(n, p.desc.size)
	if !ok {
		return nil, errors.New(errors.PhaseConstruct, errors.KindInvalidInput).
			Address(p.addr).
			Detail("%d elements of %d bytes overflow", n, p.desc.size).
			Build()
	}
	return p.ValidBytes(size)
}

// View returns a pointer to [addr+offset, addr+offset+length) whose window
// is exactly that range.
func (p *Pointer) View(offset int64, length uint64) (*Pointer, error) {
	if length == 0 {
		return nil, errors.InvalidInput(errors.PhaseConstruct, "empty view")
	}
	addr, err := p.checkedAddress(errors.PhaseConstruct, offset, length)
	if err != nil {
		return nil, err
	}
	if addr == 0 {
		return nil, errors.NullAddress(errors.PhaseConstruct)
	}
	q := p.derive(addr, p.desc)
	q.start, q.end, q.bounded = addr, addr+length, true
	return q, nil
}

func (p *Pointer) elementOffset(index int64) (int64, error) {
	return scaleIndex(p.addr, index, p.desc.size)
}

func scaleIndex(addr uint64, index int64, size uint64) (int64, error) {
	if size == 0 {
		return 0, nil
	}
	off := index * int64(size)
	if size > 1<<31 || (index != 0 && off/int64(size) != index) {
		return 0, errors.New(errors.PhaseAccess, errors.KindOutOfBounds).
			Address(addr).
			Detail("index %d of %d-byte elements overflows", index, size).
			Build()
	}
	return off, nil
}

// checkedAddress computes addr+offset and verifies that length bytes from
// there lie inside the window. Unbounded pointers skip the window check.
func (p *Pointer) checkedAddress(phase errors.Phase, offset int64, length uint64) (uint64, error) {
	if p.Released() {
		return 0, errors.AlreadyReleased(phase, p.addr, "access after release")
	}
	addr, ok := abi.AddSigned(p.addr, offset)
	if !ok {
		return 0, errors.New(phase, errors.KindOutOfBounds).
			Address(p.addr).
			Detail("offset %d wraps the address space", offset).
			Build()
	}
	if !p.bounded {
		return addr, nil
	}
	end, ok := abi.SafeAdd(addr, length)
	if !ok || addr < p.start || end > p.end {
		return 0, errors.OutOfBounds(phase, p.addr,
			errors.Range{Start: addr, End: addr + length},
			errors.Range{Start: p.start, End: p.end})
	}
	return addr, nil
}

// view returns a slice aliasing length bytes at offset after the bounds check.
func (p *Pointer) view(phase errors.Phase, offset int64, length uint64) ([]byte, error) {
	addr, err := p.checkedAddress(phase, offset, length)
	if err != nil {
		return nil, err
	}
	return p.mem.Read(addr, length)
}
