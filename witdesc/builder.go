// Package witdesc builds pointer descriptors for WIT types, laid out by the
// component model canonical ABI.
//
// Strings and lists become {ptr, len} records whose ptr field dereferences to
// the element type. Options, results and variants become a discriminant
// followed by overlapping payload fields, one per case.
package witdesc

import (
	"strconv"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/nativeptr"
	"github.com/wippyai/nativeptr/errors"
	"github.com/wippyai/nativeptr/internal/abi"
	"github.com/wippyai/nativeptr/pointer"
)

// Builder maps WIT types to descriptors. Results are memoized per TypeDef.
// A Builder is not safe for concurrent use.
type Builder struct {
	model nativeptr.DataModel
	cache map[*wit.TypeDef]*pointer.Descriptor
	str   *pointer.Descriptor
}

// NewBuilder creates a builder for guests using model. Pointer fields of
// strings and lists use the model's pointer width; canonical ABI guests are
// nativeptr.Wasm32.
func NewBuilder(model nativeptr.DataModel) *Builder {
	return &Builder{
		model: model,
		cache: make(map[*wit.TypeDef]*pointer.Descriptor),
	}
}

// Descriptor returns the descriptor of t.
func (b *Builder) Descriptor(t wit.Type) (*pointer.Descriptor, error) {
	switch typ := t.(type) {
	case wit.Bool:
		return pointer.Bool(), nil
	case wit.U8:
		return pointer.Uint8(), nil
	case wit.S8:
		return pointer.Int8(), nil
	case wit.U16:
		return pointer.Uint16(), nil
	case wit.S16:
		return pointer.Int16(), nil
	case wit.U32, wit.Char:
		return pointer.Uint32(), nil
	case wit.S32:
		return pointer.Int32(), nil
	case wit.U64:
		return pointer.Uint64(), nil
	case wit.S64:
		return pointer.Int64(), nil
	case wit.F32:
		return pointer.Float32(), nil
	case wit.F64:
		return pointer.Float64(), nil
	case wit.String:
		return b.stringDesc()
	case *wit.TypeDef:
		return b.typeDef(typ)
	case nil:
		return nil, errors.InvalidInput(errors.PhaseDescribe, "nil WIT type")
	}
	return nil, errors.Unsupported(errors.PhaseDescribe, "WIT type "+abi.TypeName(t))
}

func (b *Builder) stringDesc() (*pointer.Descriptor, error) {
	if b.str != nil {
		return b.str, nil
	}
	d, err := b.slice("string", pointer.Uint8())
	if err != nil {
		return nil, err
	}
	b.str = d
	return d, nil
}

// slice describes the {ptr, len} pair of strings and lists.
func (b *Builder) slice(name string, elem *pointer.Descriptor) (*pointer.Descriptor, error) {
	return pointer.LayoutC(name,
		pointer.FieldSpec{Name: "ptr", Desc: pointer.PointerTo(elem, b.model)},
		pointer.FieldSpec{Name: "len", Desc: pointer.Uint32()},
	)
}

func (b *Builder) typeDef(t *wit.TypeDef) (*pointer.Descriptor, error) {
	if d, ok := b.cache[t]; ok {
		return d, nil
	}

	var d *pointer.Descriptor
	var err error
	switch kind := t.Kind.(type) {
	case *wit.Record:
		d, err = b.record(typeName(t, "record"), kind)
	case *wit.Tuple:
		d, err = b.tuple(typeName(t, "tuple"), kind)
	case *wit.List:
		d, err = b.list(typeName(t, "list"), kind)
	case *wit.Enum:
		d, err = b.enum(typeName(t, "enum"), kind)
	case *wit.Flags:
		d, err = b.flags(typeName(t, "flags"), kind)
	case *wit.Option:
		d, err = b.option(typeName(t, "option"), kind)
	case *wit.Result:
		d, err = b.result(typeName(t, "result"), kind)
	case *wit.Variant:
		d, err = b.variant(typeName(t, "variant"), kind)
	case *wit.Own, *wit.Borrow:
		d = pointer.Uint32()
	case wit.Type:
		d, err = b.Descriptor(kind)
	default:
		err = errors.Unsupported(errors.PhaseDescribe, "WIT type definition "+abi.TypeName(t.Kind))
	}
	if err != nil {
		return nil, err
	}

	b.cache[t] = d
	return d, nil
}

func typeName(t *wit.TypeDef, kind string) string {
	if t.Name != nil && *t.Name != "" {
		return *t.Name
	}
	return kind
}

func (b *Builder) record(name string, r *wit.Record) (*pointer.Descriptor, error) {
	specs := make([]pointer.FieldSpec, len(r.Fields))
	for i, f := range r.Fields {
		d, err := b.Descriptor(f.Type)
		if err != nil {
			return nil, wrapPath(err, f.Name)
		}
		specs[i] = pointer.FieldSpec{Name: f.Name, Desc: d}
	}
	return pointer.LayoutC(name, specs...)
}

// tuple names its members by position.
func (b *Builder) tuple(name string, t *wit.Tuple) (*pointer.Descriptor, error) {
	specs := make([]pointer.FieldSpec, len(t.Types))
	for i, typ := range t.Types {
		field := strconv.Itoa(i)
		d, err := b.Descriptor(typ)
		if err != nil {
			return nil, wrapPath(err, field)
		}
		specs[i] = pointer.FieldSpec{Name: field, Desc: d}
	}
	return pointer.LayoutC(name, specs...)
}

func (b *Builder) list(name string, l *wit.List) (*pointer.Descriptor, error) {
	elem, err := b.Descriptor(l.Type)
	if err != nil {
		return nil, wrapPath(err, "[]")
	}
	return b.slice(name, elem)
}

func (b *Builder) enum(name string, e *wit.Enum) (*pointer.Descriptor, error) {
	names := make([]string, len(e.Cases))
	for i, c := range e.Cases {
		names[i] = c.Name
	}
	return discriminant(name, names)
}

// discriminant describes a case index stored in the smallest unsigned
// integer that holds len(names) values.
func discriminant(name string, names []string) (*pointer.Descriptor, error) {
	cases := make([]pointer.EnumCase, len(names))
	for i, n := range names {
		cases[i] = pointer.EnumCase{Name: n, Value: int64(i)}
	}
	var underlying *pointer.Descriptor
	switch abi.DiscriminantSize(len(names)) {
	case 1:
		underlying = pointer.Uint8()
	case 2:
		underlying = pointer.Uint16()
	default:
		underlying = pointer.Uint32()
	}
	return pointer.NewEnum(name, underlying, cases...)
}

// flags packs one bit per flag. Up to 32 flags fit one integer; more use an
// array of u32 words.
func (b *Builder) flags(name string, f *wit.Flags) (*pointer.Descriptor, error) {
	n := len(f.Flags)
	switch {
	case n == 0:
		return pointer.NewAggregate(name, 0, 1, nil)
	case n <= 8:
		return pointer.Uint8(), nil
	case n <= 16:
		return pointer.Uint16(), nil
	case n <= 32:
		return pointer.Uint32(), nil
	}
	return pointer.ArrayOf(pointer.Uint32(), uint64((n+31)/32))
}

// payloadCase is one arm of a tagged union; a nil desc carries no payload.
type payloadCase struct {
	name string
	desc *pointer.Descriptor
}

// tagged lays out a discriminant followed by every payload at the same
// offset, aligned to the strictest payload.
func tagged(name string, cases []payloadCase) (*pointer.Descriptor, error) {
	names := make([]string, len(cases))
	for i, c := range cases {
		names[i] = c.name
	}
	tag, err := discriminant(name+".tag", names)
	if err != nil {
		return nil, err
	}

	align := tag.Align()
	var size uint64
	for _, c := range cases {
		if c.desc == nil {
			continue
		}
		align = max(align, c.desc.Align())
		size = max(size, c.desc.Size())
	}
	off := abi.AlignTo(tag.Size(), align)

	fields := []pointer.Field{{Name: "tag", Desc: tag}}
	for _, c := range cases {
		if c.desc != nil {
			fields = append(fields, pointer.Field{Name: c.name, Desc: c.desc, Offset: off})
		}
	}
	return pointer.NewAggregate(name, abi.AlignTo(off+size, align), align, fields)
}

func (b *Builder) option(name string, o *wit.Option) (*pointer.Descriptor, error) {
	some, err := b.Descriptor(o.Type)
	if err != nil {
		return nil, wrapPath(err, "some")
	}
	return tagged(name, []payloadCase{{name: "none"}, {name: "some", desc: some}})
}

func (b *Builder) result(name string, r *wit.Result) (*pointer.Descriptor, error) {
	cases := []payloadCase{{name: "ok"}, {name: "err"}}
	for i, typ := range []wit.Type{r.OK, r.Err} {
		if typ == nil {
			continue
		}
		d, err := b.Descriptor(typ)
		if err != nil {
			return nil, wrapPath(err, cases[i].name)
		}
		cases[i].desc = d
	}
	return tagged(name, cases)
}

func (b *Builder) variant(name string, v *wit.Variant) (*pointer.Descriptor, error) {
	if len(v.Cases) == 0 {
		return nil, errors.New(errors.PhaseDescribe, errors.KindInvalidInput).
			Type(name).
			Detail("variant has no cases").
			Build()
	}
	cases := make([]payloadCase, len(v.Cases))
	for i, c := range v.Cases {
		cases[i].name = c.Name
		if c.Type == nil {
			continue
		}
		d, err := b.Descriptor(c.Type)
		if err != nil {
			return nil, wrapPath(err, c.Name)
		}
		cases[i].desc = d
	}
	return tagged(name, cases)
}

func wrapPath(err error, name string) error {
	if e, ok := err.(*errors.Error); ok {
		e.Path = append([]string{name}, e.Path...)
		return e
	}
	return err
}
