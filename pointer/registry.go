package pointer

import (
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/wippyai/nativeptr"
	"github.com/wippyai/nativeptr/errors"
)

// EnumType is implemented by named integer types that DescriptorOf should
// describe as enums.
type EnumType interface {
	EnumCases() []EnumCase
}

type registryKey struct {
	typ         reflect.Type
	pointerSize uint64
	wcharSize   uint64
}

var (
	registry sync.Map // registryKey -> *Descriptor
	inflight singleflight.Group
)

var enumType = reflect.TypeFor[EnumType]()

// DescriptorOf returns the descriptor of the Go type t under model. Results
// are built once per (model, type) and shared process-wide.
//
// Supported: sized integers, int and uint (pointer width), uintptr, floats,
// bool, pointers and unsafe.Pointer, fixed-size arrays and structs (C layout,
// blank fields become padding). Integer types implementing EnumType become
// enums.
func DescriptorOf(model nativeptr.DataModel, t reflect.Type) (*Descriptor, error) {
	if t == nil {
		return nil, errors.InvalidInput(errors.PhaseDescribe, "nil type")
	}
	key := registryKey{typ: t, pointerSize: model.PointerSize, wcharSize: model.WCharSize}
	if d, ok := registry.Load(key); ok {
		return d.(*Descriptor), nil
	}

	flight := fmt.Sprintf("%d/%d/%p", key.pointerSize, key.wcharSize, t)
	v, err, _ := inflight.Do(flight, func() (any, error) {
		if d, ok := registry.Load(key); ok {
			return d, nil
		}
		b := &typeBuilder{model: model, building: make(map[reflect.Type]*Descriptor)}
		d, err := b.build(t, nil)
		if err != nil {
			return nil, err
		}
		actual, _ := registry.LoadOrStore(key, d)
		return actual, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Descriptor), nil
}

// DescriptorFor is DescriptorOf for the type parameter T.
func DescriptorFor[T any](model nativeptr.DataModel) (*Descriptor, error) {
	return DescriptorOf(model, reflect.TypeFor[T]())
}

// typeBuilder converts one type graph. Structs under construction are kept
// in building so that self-referential pointers resolve to the same
// descriptor.
type typeBuilder struct {
	building map[reflect.Type]*Descriptor
	model    nativeptr.DataModel
}

func (b *typeBuilder) build(t reflect.Type, path []string) (*Descriptor, error) {
	if d, ok := b.building[t]; ok {
		return d, nil
	}
	key := registryKey{typ: t, pointerSize: b.model.PointerSize, wcharSize: b.model.WCharSize}
	if d, ok := registry.Load(key); ok {
		return d.(*Descriptor), nil
	}

	if t.Implements(enumType) && isInteger(t.Kind()) {
		return b.buildEnum(t, path)
	}

	switch t.Kind() {
	case reflect.Int8:
		return Int8(), nil
	case reflect.Uint8:
		return Uint8(), nil
	case reflect.Int16:
		return Int16(), nil
	case reflect.Uint16:
		return Uint16(), nil
	case reflect.Int32:
		return Int32(), nil
	case reflect.Uint32:
		return Uint32(), nil
	case reflect.Int64:
		return Int64(), nil
	case reflect.Uint64:
		return Uint64(), nil
	case reflect.Int:
		if b.model.PointerSize == 4 {
			return Int32(), nil
		}
		return Int64(), nil
	case reflect.Uint, reflect.Uintptr:
		return UintPtr(b.model), nil
	case reflect.Float32:
		return Float32(), nil
	case reflect.Float64:
		return Float64(), nil
	case reflect.Bool:
		return Bool(), nil
	case reflect.UnsafePointer:
		return PointerTo(nil, b.model), nil
	case reflect.Pointer:
		elem, err := b.build(t.Elem(), path)
		if err != nil {
			return nil, err
		}
		return PointerTo(elem, b.model), nil
	case reflect.Array:
		elem, err := b.build(t.Elem(), path)
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem, uint64(t.Len()))
	case reflect.Struct:
		return b.buildStruct(t, path)
	}

	return nil, errors.New(errors.PhaseDescribe, errors.KindUnsupported).
		Path(path...).
		Type(t.String()).
		Detail("%s has no native representation", t.Kind()).
		Build()
}

func (b *typeBuilder) buildStruct(t reflect.Type, path []string) (*Descriptor, error) {
	d := &Descriptor{name: t.String(), kind: KindAggregate}
	b.building[t] = d
	defer delete(b.building, t)

	specs := make([]FieldSpec, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fd, err := b.build(f.Type, append(path, f.Name))
		if err != nil {
			return nil, err
		}
		specs = append(specs, FieldSpec{Name: f.Name, Desc: fd})
	}

	fields, size, align, err := layoutC(d.name, specs)
	if err != nil {
		return nil, err
	}
	kept := fields[:0]
	for _, f := range fields {
		if f.Name != "_" {
			kept = append(kept, f)
		}
	}
	if size == 0 {
		return nil, errors.New(errors.PhaseDescribe, errors.KindUnsupported).
			Path(path...).
			Type(d.name).
			Detail("empty struct").
			Build()
	}
	if err := fillAggregate(d, size, align, kept); err != nil {
		return nil, err
	}
	return d, nil
}

func (b *typeBuilder) buildEnum(t reflect.Type, path []string) (*Descriptor, error) {
	underlying, err := b.build(kindType(t.Kind()), path)
	if err != nil {
		return nil, err
	}
	cases := reflect.Zero(t).Interface().(EnumType).EnumCases()
	return NewEnum(t.String(), underlying, cases...)
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

var basicIntegers = map[reflect.Kind]reflect.Type{
	reflect.Int:     reflect.TypeFor[int](),
	reflect.Int8:    reflect.TypeFor[int8](),
	reflect.Int16:   reflect.TypeFor[int16](),
	reflect.Int32:   reflect.TypeFor[int32](),
	reflect.Int64:   reflect.TypeFor[int64](),
	reflect.Uint:    reflect.TypeFor[uint](),
	reflect.Uint8:   reflect.TypeFor[uint8](),
	reflect.Uint16:  reflect.TypeFor[uint16](),
	reflect.Uint32:  reflect.TypeFor[uint32](),
	reflect.Uint64:  reflect.TypeFor[uint64](),
	reflect.Uintptr: reflect.TypeFor[uintptr](),
}

func kindType(k reflect.Kind) reflect.Type {
	return basicIntegers[k]
}
