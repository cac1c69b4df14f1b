package strcodec

import (
	"golang.org/x/text/encoding"

	"github.com/wippyai/nativeptr"
	"github.com/wippyai/nativeptr/errors"
	"github.com/wippyai/nativeptr/pointer"
)

// Codec reads and writes strings through pointers. The memory and allocator
// are used only when Encode constructs a fresh string.
type Codec struct {
	mem   nativeptr.Memory
	alloc nativeptr.Allocator
}

// New creates a codec allocating fresh strings from alloc in mem.
func New(mem nativeptr.Memory, alloc nativeptr.Allocator) *Codec {
	return &Codec{mem: mem, alloc: alloc}
}

// charset resolves the effective charset of t for p. A nil cs selects UTF8
// for narrow types and WideCharset for wide ones.
func charset(t Type, p *pointer.Pointer, cs encoding.Encoding) encoding.Encoding {
	if cs != nil {
		return cs
	}
	if t.Wide() {
		return WideCharset(p.Model().WCharSize, p.ByteOrder())
	}
	return UTF8
}

// Decode reads the string of type t located at off from p.
func (c *Codec) Decode(p *pointer.Pointer, off int64, t Type, cs encoding.Encoding) (string, error) {
	if p == nil {
		return "", errors.NullAddress(errors.PhaseDecode)
	}
	unit := t.UnitSize(p.Model())
	cs = charset(t, p, cs)

	var raw []byte
	var err error
	switch t {
	case C, WideC:
		raw, err = decodeTerminated(p, off, unit)
	case PascalShort:
		raw, err = decodePascalShort(p, off)
	case PascalWide, PascalAnsi:
		raw, err = decodeRefCounted(p, off, unit, t == PascalWide)
	case RefCountedWide:
		raw, err = decodeBSTR(p, off, unit)
	case Stl, WideStl:
		raw, err = decodeStl(p, off, t)
	default:
		return "", errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Detail("unknown string type %d", t).
			Build()
	}
	if err != nil {
		return "", err
	}
	return decodeString(cs, raw)
}

func decodeTerminated(p *pointer.Pointer, off int64, unit uint64) ([]byte, error) {
	n, err := p.IndexZero(off, unit)
	if err != nil {
		return nil, err
	}
	return p.BytesAt(off, n*unit)
}

func decodePascalShort(p *pointer.Pointer, off int64) ([]byte, error) {
	n, err := p.Uint8At(off)
	if err != nil {
		return nil, err
	}
	return p.BytesAt(off+1, uint64(n))
}

func decodeRefCounted(p *pointer.Pointer, off int64, unit uint64, lengthInUnits bool) ([]byte, error) {
	refs, err := p.Int32At(off - 8)
	if err != nil {
		return nil, err
	}
	if refs <= 0 {
		return nil, errors.InvalidStringLayout(p.Address(), "refcount must be positive", refs)
	}
	length, err := p.Int32At(off - 4)
	if err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, errors.InvalidStringLayout(p.Address(), "length must not be negative", length)
	}
	size := uint64(length)
	if lengthInUnits {
		size *= unit
	}
	if size%unit != 0 {
		return nil, errors.InvalidStringLayout(p.Address(), "length is not a whole number of units", length)
	}
	return readTerminated(p, off, size, unit)
}

func decodeBSTR(p *pointer.Pointer, off int64, unit uint64) ([]byte, error) {
	size, err := p.Uint32At(off - 4)
	if err != nil {
		return nil, err
	}
	if uint64(size)%unit != 0 {
		return nil, errors.InvalidStringLayout(p.Address(), "byte length is not a whole number of units", size)
	}
	return readTerminated(p, off, uint64(size), unit)
}

// readTerminated reads size bytes at off and verifies that a zero unit
// follows them.
func readTerminated(p *pointer.Pointer, off int64, size, unit uint64) ([]byte, error) {
	raw, err := p.BytesAt(off, size+unit)
	if err != nil {
		return nil, err
	}
	for _, b := range raw[size:] {
		if b != 0 {
			return nil, errors.InvalidStringLayout(p.Address(), "missing terminator after declared length", raw[size:])
		}
	}
	return raw[:size], nil
}

// stlData returns a pointer to the character data of a std string object at
// off, its length and its capacity in units.
func stlData(p *pointer.Pointer, off int64, t Type) (*pointer.Pointer, uint64, uint64, error) {
	model := p.Model()
	unit := t.UnitSize(model)
	length, err := p.AddressAt(off + stlBufferSize)
	if err != nil {
		return nil, 0, 0, err
	}
	capacity, err := p.AddressAt(off + stlBufferSize + int64(model.PointerSize))
	if err != nil {
		return nil, 0, 0, err
	}
	if length > capacity {
		return nil, 0, 0, errors.InvalidStringLayout(p.Address(), "length exceeds capacity", length)
	}
	inline := StlInlineCapacity(t, model)
	if capacity < inline {
		return nil, 0, 0, errors.InvalidStringLayout(p.Address(), "capacity below inline buffer", capacity)
	}

	if capacity == inline {
		data, err := p.View(off, stlBufferSize)
		if err != nil {
			return nil, 0, 0, err
		}
		return data.Untyped(), length, capacity, nil
	}

	heap, err := p.PointerAt(off, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	if heap == nil {
		return nil, 0, 0, errors.InvalidStringLayout(p.Address(), "heap buffer is null", capacity)
	}
	data, err := heap.ValidBytes((capacity + 1) * unit)
	if err != nil {
		return nil, 0, 0, err
	}
	return data, length, capacity, nil
}

func decodeStl(p *pointer.Pointer, off int64, t Type) ([]byte, error) {
	data, length, _, err := stlData(p, off, t)
	if err != nil {
		return nil, err
	}
	return readTerminated(data, 0, length*t.UnitSize(p.Model()), t.UnitSize(p.Model()))
}

// Encode writes s as a string of type t.
//
// With a nil target, Encode allocates header, content and terminator and
// returns a pointer to the first character; release it through Root. Stl and
// WideStl cannot be constructed and require a target.
//
// With a target, the string is written at off and the returned pointer
// addresses the first character.
func (c *Codec) Encode(p *pointer.Pointer, off int64, s string, t Type, cs encoding.Encoding) (*pointer.Pointer, error) {
	if p == nil {
		return c.create(s, t, cs)
	}
	raw, err := encodeString(charset(t, p, cs), s)
	if err != nil {
		return nil, err
	}
	if err := write(p, off, raw, t); err != nil {
		return nil, err
	}
	if off == 0 {
		return p, nil
	}
	return p.Offset(off)
}

func write(p *pointer.Pointer, off int64, raw []byte, t Type) error {
	unit := t.UnitSize(p.Model())
	switch t {
	case C, WideC:
		return writeTerminated(p, off, raw, unit)
	case PascalShort:
		return encodePascalShort(p, off, raw)
	case PascalWide, PascalAnsi:
		return encodeRefCounted(p, off, raw, unit, t == PascalWide)
	case RefCountedWide:
		return encodeBSTR(p, off, raw, unit)
	case Stl, WideStl:
		return encodeStl(p, off, raw, t)
	}
	return errors.New(errors.PhaseEncode, errors.KindUnsupported).
		Detail("unknown string type %d", t).
		Build()
}

func (c *Codec) create(s string, t Type, cs encoding.Encoding) (*pointer.Pointer, error) {
	if !t.CanCreate() {
		return nil, errors.UnsupportedConstruction(t.String())
	}
	if c.mem == nil || c.alloc == nil {
		return nil, errors.InvalidInput(errors.PhaseEncode, "codec has no allocator")
	}
	model := c.mem.Model()
	unit := t.UnitSize(model)
	if cs == nil {
		if t.Wide() {
			cs = WideCharset(unit, model.ByteOrder)
		} else {
			cs = UTF8
		}
	}
	raw, err := encodeString(cs, s)
	if err != nil {
		return nil, err
	}
	if t == PascalShort && len(raw) > 255 {
		return nil, errors.CapacityExceeded(errors.PhaseEncode, 0, uint64(len(raw)), 255)
	}

	header := t.HeaderSize()
	size := header + uint64(len(raw)) + unit
	align := max(unit, 4)
	root, err := pointer.AllocateBytes(c.mem, c.alloc, size, align)
	if err != nil {
		return nil, err
	}

	var off int64
	if t.prefixed() {
		off = int64(header)
	}
	if err := write(root, off, raw, t); err != nil {
		root.Release()
		return nil, err
	}
	if off == 0 {
		return root, nil
	}
	return root.Offset(off)
}

func writeTerminated(p *pointer.Pointer, off int64, raw []byte, unit uint64) error {
	buf := make([]byte, uint64(len(raw))+unit)
	copy(buf, raw)
	return p.SetBytesAt(off, buf)
}

func encodePascalShort(p *pointer.Pointer, off int64, raw []byte) error {
	if len(raw) > 255 {
		return errors.CapacityExceeded(errors.PhaseEncode, p.Address(), uint64(len(raw)), 255)
	}
	if err := p.SetUint8At(off, uint8(len(raw))); err != nil {
		return err
	}
	return writeTerminated(p, off+1, raw, 1)
}

func encodeRefCounted(p *pointer.Pointer, off int64, raw []byte, unit uint64, lengthInUnits bool) error {
	length := uint64(len(raw))
	if lengthInUnits {
		length /= unit
	}
	if length > 1<<31-1 {
		return errors.CapacityExceeded(errors.PhaseEncode, p.Address(), length, 1<<31-1)
	}
	if err := p.SetInt32At(off-8, 1); err != nil {
		return err
	}
	if err := p.SetInt32At(off-4, int32(length)); err != nil {
		return err
	}
	return writeTerminated(p, off, raw, unit)
}

func encodeBSTR(p *pointer.Pointer, off int64, raw []byte, unit uint64) error {
	if uint64(len(raw)) > 1<<32-1 {
		return errors.CapacityExceeded(errors.PhaseEncode, p.Address(), uint64(len(raw)), 1<<32-1)
	}
	if err := p.SetUint32At(off-4, uint32(len(raw))); err != nil {
		return err
	}
	return writeTerminated(p, off, raw, unit)
}

func encodeStl(p *pointer.Pointer, off int64, raw []byte, t Type) error {
	unit := t.UnitSize(p.Model())
	data, _, capacity, err := stlData(p, off, t)
	if err != nil {
		return err
	}
	length := uint64(len(raw)) / unit
	if length > capacity {
		return errors.CapacityExceeded(errors.PhaseEncode, p.Address(), length, capacity)
	}
	if err := writeTerminated(data, 0, raw, unit); err != nil {
		return err
	}
	return p.SetAddressAt(off+stlBufferSize, length)
}
