package pointer

import (
	"fmt"
	"sort"

	"github.com/wippyai/nativeptr"
	"github.com/wippyai/nativeptr/errors"
	"github.com/wippyai/nativeptr/internal/abi"
	"github.com/wippyai/nativeptr/solid"
)

// Descriptor is an immutable description of an element type: its size,
// alignment and the access strategies resolved for its kind.
type Descriptor struct {
	get     func(p *Pointer, off int64) (any, error)
	set     func(p *Pointer, off int64, v any) error
	toArray func(p *Pointer, off int64, n uint64) (any, error)
	elem    *Descriptor
	ranges  *solid.Ranges
	index   map[string]int
	name    string
	fields  []Field
	cases   []EnumCase
	size    uint64
	align   uint64
	length  uint64
	kind    Kind
	buffer  bool
}

// Field places a member of an aggregate at a byte offset.
type Field struct {
	Desc   *Descriptor
	Name   string
	Offset uint64
}

// FieldSpec is a named member whose offset is computed by LayoutC or Union.
type FieldSpec struct {
	Desc *Descriptor
	Name string
}

// EnumCase is one named value of an enumeration.
type EnumCase struct {
	Name  string
	Value int64
}

func (c EnumCase) String() string {
	return c.Name
}

// Name returns the type name used in errors and String.
func (d *Descriptor) Name() string { return d.name }

// Kind returns the target kind.
func (d *Descriptor) Kind() Kind { return d.kind }

// Size returns the element size in bytes.
func (d *Descriptor) Size() uint64 { return d.size }

// Align returns the required alignment; 1 means unconstrained.
func (d *Descriptor) Align() uint64 { return d.align }

// Elem returns the pointer target, array element or enum underlying type.
func (d *Descriptor) Elem() *Descriptor { return d.elem }

// Len returns the number of elements of an array descriptor.
func (d *Descriptor) Len() uint64 { return d.length }

// Fields returns the members of an aggregate in offset order.
func (d *Descriptor) Fields() []Field {
	out := make([]Field, len(d.fields))
	copy(out, d.fields)
	return out
}

// Field looks up an aggregate member by name.
func (d *Descriptor) Field(name string) (Field, bool) {
	i, ok := d.index[name]
	if !ok {
		return Field{}, false
	}
	return d.fields[i], true
}

// Cases returns the values of an enum descriptor.
func (d *Descriptor) Cases() []EnumCase {
	out := make([]EnumCase, len(d.cases))
	copy(out, d.cases)
	return out
}

func (d *Descriptor) String() string {
	return d.name
}

// SolidRanges returns the coalesced byte ranges covered by the descriptor.
// Aggregates report their field layout; other kinds one range of Size bytes.
func (d *Descriptor) SolidRanges() *solid.Ranges {
	if d.ranges != nil {
		return d.ranges
	}
	r, _ := solid.FromRanges(solid.Range{Offset: 0, Length: d.size})
	return r
}

// Get reads element index of p as a Go value.
func (d *Descriptor) Get(p *Pointer, index int64) (any, error) {
	off, err := scaleIndex(p.addr, index, d.size)
	if err != nil {
		return nil, err
	}
	return d.get(p, off)
}

// Set writes v as element index of p.
func (d *Descriptor) Set(p *Pointer, index int64, v any) error {
	off, err := scaleIndex(p.addr, index, d.size)
	if err != nil {
		return err
	}
	return d.set(p, off, v)
}

// ToArray reads n consecutive elements starting at p.
// The result is a typed slice: []int32 for Int32, []*Pointer for pointers and
// arrays, []map[string]any for aggregates, []EnumCase for enums.
func (d *Descriptor) ToArray(p *Pointer, n uint64) (any, error) {
	return d.toArray(p, 0, n)
}

// ToBuffer returns n elements at p as bytes aliasing the memory. Only scalar
// kinds have a buffer form.
func (d *Descriptor) ToBuffer(p *Pointer, n uint64) ([]byte, error) {
	if !d.buffer {
		return nil, errors.New(errors.PhaseAccess, errors.KindUnsupported).
			Type(d.name).
			Detail("%s has no buffer representation", d.kind).
			Build()
	}
	total, err := transferSize(p.addr, n, d.size)
	if err != nil {
		return nil, err
	}
	return p.Slice(0, total)
}

func scalarDescriptor[T scalar](name string, kind Kind) *Descriptor {
	size := sizeOf[T]()
	return &Descriptor{
		name:   name,
		kind:   kind,
		size:   size,
		align:  size,
		buffer: true,
		get: func(p *Pointer, off int64) (any, error) {
			v, err := load[T](p, off)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
		set: func(p *Pointer, off int64, v any) error {
			x, err := convertScalar[T](v, name)
			if err != nil {
				return err
			}
			return store(p, off, x)
		},
		toArray: func(p *Pointer, off int64, n uint64) (any, error) {
			vals, err := loadSlice[T](p, off, n)
			if err != nil {
				return nil, err
			}
			return vals, nil
		},
	}
}

var (
	int8Desc    = scalarDescriptor[int8]("int8", KindInt8)
	uint8Desc   = scalarDescriptor[uint8]("uint8", KindUint8)
	int16Desc   = scalarDescriptor[int16]("int16", KindInt16)
	uint16Desc  = scalarDescriptor[uint16]("uint16", KindUint16)
	int32Desc   = scalarDescriptor[int32]("int32", KindInt32)
	uint32Desc  = scalarDescriptor[uint32]("uint32", KindUint32)
	int64Desc   = scalarDescriptor[int64]("int64", KindInt64)
	uint64Desc  = scalarDescriptor[uint64]("uint64", KindUint64)
	float32Desc = scalarDescriptor[float32]("float32", KindFloat32)
	float64Desc = scalarDescriptor[float64]("float64", KindFloat64)

	uintptr32Desc = scalarDescriptor[uint32]("uintptr", KindUint32)
	uintptr64Desc = scalarDescriptor[uint64]("uintptr", KindUint64)
	sizeT32Desc   = scalarDescriptor[uint32]("size_t", KindUint32)
	sizeT64Desc   = scalarDescriptor[uint64]("size_t", KindUint64)

	boolDesc   = newBool()
	wchar2Desc = newWChar(2)
	wchar4Desc = newWChar(4)
)

// Fixed-width scalar descriptors. Alignment equals size.
func Int8() *Descriptor    { return int8Desc }
func Uint8() *Descriptor   { return uint8Desc }
func Int16() *Descriptor   { return int16Desc }
func Uint16() *Descriptor  { return uint16Desc }
func Int32() *Descriptor   { return int32Desc }
func Uint32() *Descriptor  { return uint32Desc }
func Int64() *Descriptor   { return int64Desc }
func Uint64() *Descriptor  { return uint64Desc }
func Float32() *Descriptor { return float32Desc }
func Float64() *Descriptor { return float64Desc }

// Bool is a one-byte boolean.
func Bool() *Descriptor { return boolDesc }

// WChar is wchar_t of the given data model. Values are runes.
func WChar(model nativeptr.DataModel) *Descriptor {
	if model.WCharSize == 2 {
		return wchar2Desc
	}
	return wchar4Desc
}

// UintPtr is an unsigned integer as wide as a pointer of model.
func UintPtr(model nativeptr.DataModel) *Descriptor {
	if model.PointerSize == 4 {
		return uintptr32Desc
	}
	return uintptr64Desc
}

// SizeT is size_t of model.
func SizeT(model nativeptr.DataModel) *Descriptor {
	if model.PointerSize == 4 {
		return sizeT32Desc
	}
	return sizeT64Desc
}

func newBool() *Descriptor {
	return &Descriptor{
		name:   "bool",
		kind:   KindBool,
		size:   1,
		align:  1,
		buffer: true,
		get: func(p *Pointer, off int64) (any, error) {
			v, err := p.BoolAt(off)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
		set: func(p *Pointer, off int64, v any) error {
			b, ok := v.(bool)
			if !ok {
				return errors.TypeMismatch(errors.PhaseAccess, nil, "bool", v)
			}
			return p.SetBoolAt(off, b)
		},
		toArray: func(p *Pointer, off int64, n uint64) (any, error) {
			raw, err := loadSlice[uint8](p, off, n)
			if err != nil {
				return nil, err
			}
			out := make([]bool, n)
			for i, b := range raw {
				out[i] = b != 0
			}
			return out, nil
		},
	}
}

func newWChar(width uint64) *Descriptor {
	name := fmt.Sprintf("wchar%d", width*8)
	return &Descriptor{
		name:   name,
		kind:   KindWChar,
		size:   width,
		align:  width,
		buffer: true,
		get: func(p *Pointer, off int64) (any, error) {
			v, err := p.readUnsigned(off, width)
			if err != nil {
				return nil, err
			}
			return rune(v), nil
		},
		set: func(p *Pointer, off int64, v any) error {
			r, err := convertScalar[int32](v, name)
			if err != nil {
				return err
			}
			if width == 2 && (r < 0 || r > 0xFFFF) {
				return overflow(name, v)
			}
			return p.writeUnsigned(off, width, uint64(uint32(r)))
		},
		toArray: func(p *Pointer, off int64, n uint64) (any, error) {
			out := make([]rune, n)
			if width == 2 {
				units, err := loadSlice[uint16](p, off, n)
				if err != nil {
					return nil, err
				}
				for i, u := range units {
					out[i] = rune(u)
				}
				return out, nil
			}
			units, err := loadSlice[int32](p, off, n)
			if err != nil {
				return nil, err
			}
			copy(out, units)
			return out, nil
		},
	}
}

// PointerTo describes a pointer of model to elem. A nil elem describes an
// untyped pointer. Reading a zero slot yields nil.
func PointerTo(elem *Descriptor, model nativeptr.DataModel) *Descriptor {
	d := &Descriptor{
		kind:  KindPointer,
		elem:  elem,
		size:  model.PointerSize,
		align: model.PointerSize,
	}
	d.name = "*void"
	if elem != nil {
		d.name = "*" + elem.name
	}
	fillPointer(d)
	return d
}

func fillPointer(d *Descriptor) {
	d.get = func(p *Pointer, off int64) (any, error) {
		q, err := p.PointerAt(off, d.elem)
		if q == nil {
			return nil, err
		}
		return q, nil
	}
	d.set = func(p *Pointer, off int64, v any) error {
		switch x := v.(type) {
		case nil:
			return p.SetAddressAt(off, 0)
		case *Pointer:
			return p.SetPointerAt(off, x)
		}
		addr, err := convertScalar[uint64](v, d.name)
		if err != nil {
			return err
		}
		return p.SetAddressAt(off, addr)
	}
	d.toArray = func(p *Pointer, off int64, n uint64) (any, error) {
		total, err := transferSize(p.addr, n, d.size)
		if err != nil {
			return nil, err
		}
		if _, err := p.checkedAddress(errors.PhaseAccess, off, total); err != nil {
			return nil, err
		}
		out := make([]*Pointer, n)
		for i := range out {
			q, err := p.PointerAt(off+int64(uint64(i)*d.size), d.elem)
			if err != nil {
				return nil, err
			}
			out[i] = q
		}
		return out, nil
	}
}

// ArrayOf describes n consecutive elems. Reading an element yields a view
// pointer over it, typed with elem's element so it can be indexed further.
func ArrayOf(elem *Descriptor, n uint64) (*Descriptor, error) {
	if elem == nil {
		return nil, errors.InvalidInput(errors.PhaseDescribe, "array element is nil")
	}
	size, ok := abi.SafeMul(elem.size, n)
	if !ok || n == 0 || size == 0 {
		return nil, errors.New(errors.PhaseDescribe, errors.KindInvalidInput).
			Type(elem.name).
			Detail("invalid array of %d elements of %d bytes", n, elem.size).
			Build()
	}
	d := &Descriptor{
		name:   fmt.Sprintf("[%d]%s", n, elem.name),
		kind:   KindArray,
		elem:   elem,
		length: n,
		size:   size,
		align:  elem.align,
	}
	d.get = func(p *Pointer, off int64) (any, error) {
		v, err := p.View(off, d.size)
		if err != nil {
			return nil, err
		}
		return v.As(elem), nil
	}
	d.set = func(p *Pointer, off int64, v any) error {
		switch x := v.(type) {
		case *Pointer:
			src, err := x.BytesAt(0, d.size)
			if err != nil {
				return err
			}
			return p.write(off, src)
		case []any:
			if uint64(len(x)) > n {
				return errors.CapacityExceeded(errors.PhaseAccess, p.addr, uint64(len(x)), n)
			}
			return setAll(p, off, d.size, func() error {
				for i, item := range x {
					if err := elem.set(p, off+int64(uint64(i)*elem.size), item); err != nil {
						return withPath(err, fmt.Sprintf("[%d]", i))
					}
				}
				return nil
			})
		}
		return errors.TypeMismatch(errors.PhaseAccess, nil, d.name, v)
	}
	d.toArray = func(p *Pointer, off int64, count uint64) (any, error) {
		total, err := transferSize(p.addr, count, d.size)
		if err != nil {
			return nil, err
		}
		if _, err := p.checkedAddress(errors.PhaseAccess, off, total); err != nil {
			return nil, err
		}
		out := make([]*Pointer, count)
		for i := range out {
			v, err := d.get(p, off+int64(uint64(i)*d.size))
			if err != nil {
				return nil, err
			}
			out[i] = v.(*Pointer)
		}
		return out, nil
	}
	return d, nil
}

// NewAggregate describes a fixed-size record with fields at the given
// offsets. Fields may overlap; every field must fit inside size.
func NewAggregate(name string, size, align uint64, fields []Field) (*Descriptor, error) {
	d := &Descriptor{name: name, kind: KindAggregate}
	if err := fillAggregate(d, size, align, fields); err != nil {
		return nil, err
	}
	return d, nil
}

func fillAggregate(d *Descriptor, size, align uint64, fields []Field) error {
	if align == 0 {
		align = 1
	}
	if !abi.IsPowerOfTwo(align) {
		return errors.New(errors.PhaseDescribe, errors.KindInvalidInput).
			Type(d.name).
			Detail("alignment %d is not a power of two", align).
			Build()
	}

	sorted := make([]Field, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	index := make(map[string]int, len(sorted))
	offsets := make([]uint64, 0, len(sorted))
	lengths := make([]uint64, 0, len(sorted))
	for i, f := range sorted {
		if f.Desc == nil {
			return errors.New(errors.PhaseDescribe, errors.KindInvalidInput).
				Type(d.name).
				Path(f.Name).
				Detail("field has no descriptor").
				Build()
		}
		end, ok := abi.SafeAdd(f.Offset, f.Desc.size)
		if !ok || end > size {
			return errors.New(errors.PhaseDescribe, errors.KindOutOfBounds).
				Type(d.name).
				Path(f.Name).
				Detail("field %s exceeds aggregate size %d", errors.Range{Start: f.Offset, End: end}, size).
				Build()
		}
		if _, dup := index[f.Name]; dup {
			return errors.New(errors.PhaseDescribe, errors.KindInvalidInput).
				Type(d.name).
				Path(f.Name).
				Detail("duplicate field name").
				Build()
		}
		index[f.Name] = i
		offsets = append(offsets, f.Offset)
		lengths = append(lengths, f.Desc.size)
	}

	ranges, err := solid.New(offsets, lengths)
	if err != nil {
		return err
	}

	d.size, d.align = size, align
	d.fields, d.index, d.ranges = sorted, index, ranges
	d.get = func(p *Pointer, off int64) (any, error) {
		out := make(map[string]any, len(d.fields))
		for _, f := range d.fields {
			v, err := f.Desc.get(p, off+int64(f.Offset))
			if err != nil {
				return nil, withPath(err, f.Name)
			}
			out[f.Name] = v
		}
		return out, nil
	}
	d.set = func(p *Pointer, off int64, v any) error {
		switch x := v.(type) {
		case map[string]any:
			names := make([]string, 0, len(x))
			for name := range x {
				if _, ok := d.index[name]; !ok {
					names = append(names, name)
				}
			}
			if len(names) > 0 {
				sort.Strings(names)
				return errors.New(errors.PhaseAccess, errors.KindInvalidInput).
					Type(d.name).
					Path(names[0]).
					Detail("unknown field").
					Build()
			}
			return setAll(p, off, d.size, func() error {
				for _, f := range d.fields {
					fv, ok := x[f.Name]
					if !ok {
						continue
					}
					if err := f.Desc.set(p, off+int64(f.Offset), fv); err != nil {
						return withPath(err, f.Name)
					}
				}
				return nil
			})
		case *Pointer:
			dst, err := p.View(off, d.size)
			if err != nil {
				return err
			}
			return copyRanges(d, x, dst)
		}
		return errors.TypeMismatch(errors.PhaseAccess, nil, d.name, v)
	}
	d.toArray = func(p *Pointer, off int64, n uint64) (any, error) {
		total, err := transferSize(p.addr, n, d.size)
		if err != nil {
			return nil, err
		}
		if _, err := p.checkedAddress(errors.PhaseAccess, off, total); err != nil {
			return nil, err
		}
		out := make([]map[string]any, n)
		for i := range out {
			v, err := d.get(p, off+int64(uint64(i)*d.size))
			if err != nil {
				return nil, withPath(err, fmt.Sprintf("[%d]", i))
			}
			out[i] = v.(map[string]any)
		}
		return out, nil
	}
	return nil
}

// LayoutC describes a struct laid out by C rules: each field at the next
// offset aligned to its alignment, the size padded to the largest alignment.
func LayoutC(name string, specs ...FieldSpec) (*Descriptor, error) {
	fields, size, align, err := layoutC(name, specs)
	if err != nil {
		return nil, err
	}
	return NewAggregate(name, size, align, fields)
}

func layoutC(name string, specs []FieldSpec) ([]Field, uint64, uint64, error) {
	fields := make([]Field, len(specs))
	var offset uint64
	align := uint64(1)
	for i, s := range specs {
		if s.Desc == nil {
			return nil, 0, 0, errors.New(errors.PhaseDescribe, errors.KindInvalidInput).
				Type(name).
				Path(s.Name).
				Detail("field has no descriptor").
				Build()
		}
		offset = abi.AlignTo(offset, s.Desc.align)
		fields[i] = Field{Name: s.Name, Offset: offset, Desc: s.Desc}
		offset += s.Desc.size
		align = max(align, s.Desc.align)
	}
	return fields, abi.AlignTo(offset, align), align, nil
}

// Union describes a record whose fields all start at offset zero.
func Union(name string, specs ...FieldSpec) (*Descriptor, error) {
	fields := make([]Field, len(specs))
	var size uint64
	align := uint64(1)
	for i, s := range specs {
		if s.Desc == nil {
			return nil, errors.New(errors.PhaseDescribe, errors.KindInvalidInput).
				Type(name).
				Path(s.Name).
				Detail("field has no descriptor").
				Build()
		}
		fields[i] = Field{Name: s.Name, Desc: s.Desc}
		size = max(size, s.Desc.size)
		align = max(align, s.Desc.align)
	}
	return NewAggregate(name, abi.AlignTo(size, align), align, fields)
}

// NewEnum describes an enumeration stored as the integer underlying.
// Values outside cases fail with KindInvalidEnum.
func NewEnum(name string, underlying *Descriptor, cases ...EnumCase) (*Descriptor, error) {
	if underlying == nil || !underlying.kind.IsInteger() {
		return nil, errors.New(errors.PhaseDescribe, errors.KindInvalidInput).
			Type(name).
			Detail("enum requires an integer underlying type").
			Build()
	}
	if len(cases) == 0 {
		return nil, errors.New(errors.PhaseDescribe, errors.KindInvalidInput).
			Type(name).
			Detail("enum has no cases").
			Build()
	}

	byValue := make(map[int64]int, len(cases))
	byName := make(map[string]int, len(cases))
	for i, c := range cases {
		if _, dup := byName[c.Name]; dup {
			return nil, errors.New(errors.PhaseDescribe, errors.KindInvalidInput).
				Type(name).
				Detail("duplicate case %q", c.Name).
				Build()
		}
		byName[c.Name] = i
		if _, dup := byValue[c.Value]; !dup {
			byValue[c.Value] = i
		}
	}

	d := &Descriptor{
		name:  name,
		kind:  KindEnum,
		elem:  underlying,
		size:  underlying.size,
		align: underlying.align,
		cases: append([]EnumCase(nil), cases...),
	}
	decodeCase := func(raw any) (EnumCase, error) {
		v, ok := toInt64(raw)
		if !ok {
			return EnumCase{}, errors.InvalidEnum(errors.PhaseAccess, raw, name)
		}
		i, ok := byValue[v]
		if !ok {
			return EnumCase{}, errors.InvalidEnum(errors.PhaseAccess, v, name)
		}
		return d.cases[i], nil
	}
	d.get = func(p *Pointer, off int64) (any, error) {
		raw, err := underlying.get(p, off)
		if err != nil {
			return nil, err
		}
		c, err := decodeCase(raw)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	d.set = func(p *Pointer, off int64, v any) error {
		var value int64
		switch x := v.(type) {
		case EnumCase:
			i, ok := byName[x.Name]
			if !ok || d.cases[i].Value != x.Value {
				return errors.InvalidEnum(errors.PhaseAccess, x, name)
			}
			value = x.Value
		case string:
			i, ok := byName[x]
			if !ok {
				return errors.InvalidEnum(errors.PhaseAccess, x, name)
			}
			value = d.cases[i].Value
		default:
			n, ok := toInt64(v)
			if !ok {
				return errors.TypeMismatch(errors.PhaseAccess, nil, name, v)
			}
			if _, ok := byValue[n]; !ok {
				return errors.InvalidEnum(errors.PhaseAccess, n, name)
			}
			value = n
		}
		return underlying.set(p, off, value)
	}
	d.toArray = func(p *Pointer, off int64, n uint64) (any, error) {
		raw, err := underlying.toArray(p, off, n)
		if err != nil {
			return nil, err
		}
		out := make([]EnumCase, 0, n)
		err = eachInt(raw, func(v int64) error {
			c, err := decodeCase(v)
			if err != nil {
				return err
			}
			out = append(out, c)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return d, nil
}

func eachInt(vals any, fn func(int64) error) error {
	switch x := vals.(type) {
	case []int8:
		return eachOf(x, fn)
	case []uint8:
		return eachOf(x, fn)
	case []int16:
		return eachOf(x, fn)
	case []uint16:
		return eachOf(x, fn)
	case []int32:
		return eachOf(x, fn)
	case []uint32:
		return eachOf(x, fn)
	case []int64:
		return eachOf(x, fn)
	case []uint64:
		for _, v := range x {
			if v > 1<<63-1 {
				return errors.InvalidEnum(errors.PhaseAccess, v, "")
			}
			if err := fn(int64(v)); err != nil {
				return err
			}
		}
		return nil
	}
	return errors.Unsupported(errors.PhaseAccess, fmt.Sprintf("%T is not an integer slice", vals))
}

func eachOf[T int8 | uint8 | int16 | uint16 | int32 | uint32 | int64](vals []T, fn func(int64) error) error {
	for _, v := range vals {
		if err := fn(int64(v)); err != nil {
			return err
		}
	}
	return nil
}
