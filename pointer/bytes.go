package pointer

import "github.com/wippyai/nativeptr/errors"

// Bytes returns a copy of n bytes at the pointer address.
func (p *Pointer) Bytes(n uint64) ([]byte, error) {
	return p.BytesAt(0, n)
}

// BytesAt returns a copy of n bytes at off.
func (p *Pointer) BytesAt(off int64, n uint64) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	b, err := p.view(errors.PhaseAccess, off, n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Slice returns n bytes at off aliasing the memory. Writes through the
// slice bypass bounds checks and are visible to later reads.
func (p *Pointer) Slice(off int64, n uint64) ([]byte, error) {
	return p.view(errors.PhaseAccess, off, n)
}

// SetBytes writes data at the pointer address.
func (p *Pointer) SetBytes(data []byte) error {
	return p.SetBytesAt(0, data)
}

// SetBytesAt writes data at off.
func (p *Pointer) SetBytesAt(off int64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return p.write(off, data)
}

// Clear zeroes n bytes at the pointer address.
func (p *Pointer) Clear(n uint64) error {
	return p.Fill(0, n, 0)
}

// Fill sets n bytes at off to v.
func (p *Pointer) Fill(off int64, n uint64, v byte) error {
	if n == 0 {
		return nil
	}
	b, err := p.view(errors.PhaseAccess, off, n)
	if err != nil {
		return err
	}
	for i := range b {
		b[i] = v
	}
	return nil
}

// Bool reads a one-byte boolean. Any non-zero byte is true.
func (p *Pointer) Bool() (bool, error) {
	return p.BoolAt(0)
}

// BoolAt reads a one-byte boolean at off.
func (p *Pointer) BoolAt(off int64) (bool, error) {
	v, err := load[uint8](p, off)
	return v != 0, err
}

// SetBool writes a one-byte boolean.
func (p *Pointer) SetBool(v bool) error {
	return p.SetBoolAt(0, v)
}

// SetBoolAt writes a one-byte boolean at off.
func (p *Pointer) SetBoolAt(off int64, v bool) error {
	var b uint8
	if v {
		b = 1
	}
	return store(p, off, b)
}

// WChar reads one wchar_t of the memory's data model.
func (p *Pointer) WChar() (rune, error) {
	return p.WCharAt(0)
}

// WCharAt reads one wchar_t at off.
func (p *Pointer) WCharAt(off int64) (rune, error) {
	v, err := p.readUnsigned(off, p.Model().WCharSize)
	return rune(v), err
}

// WCharAtIndex reads the wchar_t at index i.
func (p *Pointer) WCharAtIndex(i int64) (rune, error) {
	off, err := scaleIndex(p.addr, i, p.Model().WCharSize)
	if err != nil {
		return 0, err
	}
	return p.WCharAt(off)
}

// SetWChar writes one wchar_t.
func (p *Pointer) SetWChar(r rune) error {
	return p.SetWCharAt(0, r)
}

// SetWCharAt writes one wchar_t at off. Runes wider than the model's wchar_t
// fail rather than being truncated.
func (p *Pointer) SetWCharAt(off int64, r rune) error {
	width := p.Model().WCharSize
	if width == 2 && (r < 0 || r > 0xFFFF) {
		return errors.New(errors.PhaseAccess, errors.KindInvalidInput).
			Address(p.addr).
			Detail("rune %U does not fit a 2-byte wchar_t", r).
			Value(r).
			Build()
	}
	return p.writeUnsigned(off, width, uint64(uint32(r)))
}

// SetWCharAtIndex writes the wchar_t at index i.
func (p *Pointer) SetWCharAtIndex(i int64, r rune) error {
	off, err := scaleIndex(p.addr, i, p.Model().WCharSize)
	if err != nil {
		return err
	}
	return p.SetWCharAt(off, r)
}

// WChars reads n wchar_t units in one transfer.
func (p *Pointer) WChars(n uint64) ([]rune, error) {
	return p.WCharsAt(0, n)
}

// WCharsAt reads n wchar_t units at off in one transfer.
func (p *Pointer) WCharsAt(off int64, n uint64) ([]rune, error) {
	out := make([]rune, n)
	switch p.Model().WCharSize {
	case 2:
		units, err := loadSlice[uint16](p, off, n)
		if err != nil {
			return nil, err
		}
		for i, u := range units {
			out[i] = rune(u)
		}
	default:
		units, err := loadSlice[int32](p, off, n)
		if err != nil {
			return nil, err
		}
		copy(out, units)
	}
	return out, nil
}

// SetWCharsAt writes runes as wchar_t units at off in one transfer.
func (p *Pointer) SetWCharsAt(off int64, runes []rune) error {
	if p.Model().WCharSize != 2 {
		return storeSlice(p, off, runes)
	}
	units := make([]uint16, len(runes))
	for i, r := range runes {
		if r < 0 || r > 0xFFFF {
			return errors.New(errors.PhaseAccess, errors.KindInvalidInput).
				Address(p.addr).
				Detail("rune %U does not fit a 2-byte wchar_t", r).
				Value(r).
				Build()
		}
		units[i] = uint16(r)
	}
	return storeSlice(p, off, units)
}

// AddressAt reads a pointer-width integer at off.
func (p *Pointer) AddressAt(off int64) (uint64, error) {
	return p.readUnsigned(off, p.Model().PointerSize)
}

// SetAddressAt writes a pointer-width integer at off.
func (p *Pointer) SetAddressAt(off int64, addr uint64) error {
	width := p.Model().PointerSize
	if width < 8 && addr>>(width*8) != 0 {
		return errors.New(errors.PhaseAccess, errors.KindInvalidInput).
			Address(p.addr).
			Detail("address 0x%x does not fit %d bytes", addr, width).
			Value(addr).
			Build()
	}
	return p.writeUnsigned(off, width, addr)
}

// PointerAt dereferences the pointer slot at off and returns the pointer it
// holds with descriptor desc. A zero slot returns nil and no error.
//
// The result is derived: it keeps p's root alive and records the slot it was
// read from, but its own validity is unknown.
func (p *Pointer) PointerAt(off int64, desc *Descriptor) (*Pointer, error) {
	addr, err := p.AddressAt(off)
	if err != nil || addr == 0 {
		return nil, err
	}
	q := &Pointer{
		mem:          p.mem,
		order:        p.order,
		desc:         desc,
		blk:          &block{addr: addr, borrowed: true},
		parent:       p,
		parentOffset: off,
		addr:         addr,
		ord:          p.ord,
		link:         Derived,
	}
	q.owner.Store(p.effectiveRoot())
	return q, nil
}

// PointerAtIndex dereferences the i-th pointer-width slot.
func (p *Pointer) PointerAtIndex(i int64, desc *Descriptor) (*Pointer, error) {
	off, err := scaleIndex(p.addr, i, p.Model().PointerSize)
	if err != nil {
		return nil, err
	}
	return p.PointerAt(off, desc)
}

// SetPointerAt stores the address of target in the slot at off. A nil target
// stores zero.
func (p *Pointer) SetPointerAt(off int64, target *Pointer) error {
	var addr uint64
	if target != nil {
		addr = target.addr
	}
	return p.SetAddressAt(off, addr)
}
