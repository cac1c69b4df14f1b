package witdesc

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/nativeptr"
	"github.com/wippyai/nativeptr/errors"
	"github.com/wippyai/nativeptr/memory"
	"github.com/wippyai/nativeptr/pointer"
)

func TestPrimitives(t *testing.T) {
	b := NewBuilder(nativeptr.Wasm32)

	tests := []struct {
		typ   wit.Type
		name  string
		size  uint64
		align uint64
	}{
		{wit.Bool{}, "bool", 1, 1},
		{wit.U8{}, "u8", 1, 1},
		{wit.S8{}, "s8", 1, 1},
		{wit.U16{}, "u16", 2, 2},
		{wit.S16{}, "s16", 2, 2},
		{wit.U32{}, "u32", 4, 4},
		{wit.S32{}, "s32", 4, 4},
		{wit.U64{}, "u64", 8, 8},
		{wit.S64{}, "s64", 8, 8},
		{wit.F32{}, "f32", 4, 4},
		{wit.F64{}, "f64", 8, 8},
		{wit.Char{}, "char", 4, 4},
		{wit.String{}, "string", 8, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := b.Descriptor(tc.typ)
			if err != nil {
				t.Fatalf("Descriptor failed: %v", err)
			}
			if d.Size() != tc.size {
				t.Errorf("size: got %d, want %d", d.Size(), tc.size)
			}
			if d.Align() != tc.align {
				t.Errorf("align: got %d, want %d", d.Align(), tc.align)
			}
		})
	}
}

type layout struct {
	Size, Align uint64
	Offsets     map[string]uint64
}

func layoutOf(d *pointer.Descriptor) layout {
	l := layout{Size: d.Size(), Align: d.Align(), Offsets: map[string]uint64{}}
	for _, f := range d.Fields() {
		l.Offsets[f.Name] = f.Offset
	}
	return l
}

func TestTypeDefLayouts(t *testing.T) {
	tests := []struct {
		name string
		kind wit.TypeDefKind
		want layout
	}{
		{
			name: "record_mixed_alignment",
			kind: &wit.Record{Fields: []wit.Field{
				{Name: "a", Type: wit.U8{}},
				{Name: "b", Type: wit.U32{}},
				{Name: "c", Type: wit.U8{}},
			}},
			want: layout{12, 4, map[string]uint64{"a": 0, "b": 4, "c": 8}},
		},
		{
			name: "empty_record",
			kind: &wit.Record{},
			want: layout{0, 1, map[string]uint64{}},
		},
		{
			name: "tuple",
			kind: &wit.Tuple{Types: []wit.Type{wit.U16{}, wit.F64{}, wit.Bool{}}},
			want: layout{24, 8, map[string]uint64{"0": 0, "1": 8, "2": 16}},
		},
		{
			name: "list",
			kind: &wit.List{Type: wit.U64{}},
			want: layout{8, 4, map[string]uint64{"ptr": 0, "len": 4}},
		},
		{
			name: "option_u32",
			kind: &wit.Option{Type: wit.U32{}},
			want: layout{8, 4, map[string]uint64{"tag": 0, "some": 4}},
		},
		{
			name: "option_u8",
			kind: &wit.Option{Type: wit.U8{}},
			want: layout{2, 1, map[string]uint64{"tag": 0, "some": 1}},
		},
		{
			name: "result_u8_u64",
			kind: &wit.Result{OK: wit.U8{}, Err: wit.U64{}},
			want: layout{16, 8, map[string]uint64{"tag": 0, "ok": 8, "err": 8}},
		},
		{
			name: "result_empty",
			kind: &wit.Result{},
			want: layout{1, 1, map[string]uint64{"tag": 0}},
		},
		{
			name: "variant",
			kind: &wit.Variant{Cases: []wit.Case{
				{Name: "none"},
				{Name: "small", Type: wit.U16{}},
				{Name: "text", Type: wit.String{}},
			}},
			want: layout{12, 4, map[string]uint64{"tag": 0, "small": 4, "text": 4}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBuilder(nativeptr.Wasm32)
			d, err := b.Descriptor(&wit.TypeDef{Kind: tc.kind})
			if err != nil {
				t.Fatalf("Descriptor failed: %v", err)
			}
			if diff := cmp.Diff(tc.want, layoutOf(d)); diff != "" {
				t.Errorf("layout mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEnumAndFlags(t *testing.T) {
	b := NewBuilder(nativeptr.Wasm32)

	many := make([]wit.EnumCase, 300)
	for i := range many {
		many[i].Name = "c" + strconv.Itoa(i)
	}
	flags := func(n int) *wit.Flags {
		f := &wit.Flags{Flags: make([]wit.Flag, n)}
		for i := range f.Flags {
			f.Flags[i].Name = "f" + strconv.Itoa(i)
		}
		return f
	}

	tests := []struct {
		name  string
		kind  wit.TypeDefKind
		size  uint64
		align uint64
	}{
		{"enum_small", &wit.Enum{Cases: []wit.EnumCase{{Name: "a"}, {Name: "b"}}}, 1, 1},
		{"enum_wide", &wit.Enum{Cases: many}, 2, 2},
		{"flags_8", flags(8), 1, 1},
		{"flags_9", flags(9), 2, 2},
		{"flags_32", flags(32), 4, 4},
		{"flags_40", flags(40), 8, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := b.Descriptor(&wit.TypeDef{Kind: tc.kind})
			if err != nil {
				t.Fatalf("Descriptor failed: %v", err)
			}
			if d.Size() != tc.size || d.Align() != tc.align {
				t.Errorf("size/align: got %d/%d, want %d/%d", d.Size(), d.Align(), tc.size, tc.align)
			}
		})
	}
}

func TestMemoization(t *testing.T) {
	b := NewBuilder(nativeptr.Wasm32)
	name := "point"
	td := &wit.TypeDef{Name: &name, Kind: &wit.Record{Fields: []wit.Field{
		{Name: "x", Type: wit.S32{}},
		{Name: "y", Type: wit.S32{}},
	}}}

	d1, err := b.Descriptor(td)
	if err != nil {
		t.Fatal(err)
	}
	d2, _ := b.Descriptor(td)
	if d1 != d2 {
		t.Error("same TypeDef built twice")
	}
	if d1.Name() != "point" {
		t.Errorf("name = %q, want point", d1.Name())
	}

	alias := &wit.TypeDef{Kind: td}
	d3, err := b.Descriptor(alias)
	if err != nil {
		t.Fatal(err)
	}
	if d3 != d1 {
		t.Error("alias did not resolve to the aliased descriptor")
	}
}

func TestUnsupported(t *testing.T) {
	b := NewBuilder(nativeptr.Wasm32)
	if _, err := b.Descriptor(nil); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("nil type error = %v", err)
	}
	_, err := b.Descriptor(&wit.TypeDef{Kind: &wit.Variant{}})
	if !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("empty variant error = %v", err)
	}
}

func newGuest(t *testing.T) (*memory.Linear, *memory.FreeList) {
	t.Helper()
	mem := memory.NewLinear(&memory.LinearConfig{Size: 1 << 14, Model: nativeptr.Wasm32})
	return mem, memory.NewFreeList(mem, nil)
}

func TestOptionRoundTrip(t *testing.T) {
	mem, alloc := newGuest(t)
	b := NewBuilder(nativeptr.Wasm32)
	d, err := b.Descriptor(&wit.TypeDef{Kind: &wit.Option{Type: wit.U32{}}})
	if err != nil {
		t.Fatal(err)
	}

	p, err := pointer.Allocate(mem, alloc, d, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()

	if err := p.Set(0, map[string]any{"tag": "some", "some": uint32(7)}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := p.Get(0)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	want := map[string]any{
		"tag":  pointer.EnumCase{Name: "some", Value: 1},
		"some": uint32(7),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Get mismatch (-want +got):\n%s", diff)
	}

	if err := p.SetUint8(9); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Get(0); !errors.IsKind(err, errors.KindInvalidEnum) {
		t.Errorf("corrupt tag error = %v, want invalid_enum", err)
	}
}

func TestStringDereference(t *testing.T) {
	mem, alloc := newGuest(t)
	b := NewBuilder(nativeptr.Wasm32)
	d, err := b.Descriptor(wit.String{})
	if err != nil {
		t.Fatal(err)
	}

	data, err := pointer.AllocateBytes(mem, alloc, 5, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer data.Release()
	if err := data.SetBytes([]byte("hello")); err != nil {
		t.Fatal(err)
	}

	s, err := pointer.Allocate(mem, alloc, d, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Release()
	if err := s.Set(0, map[string]any{"ptr": data, "len": 5}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, err := s.Get(0)
	if err != nil {
		t.Fatal(err)
	}
	fields := v.(map[string]any)
	ptr, ok := fields["ptr"].(*pointer.Pointer)
	if !ok {
		t.Fatalf("ptr field = %T, want *pointer.Pointer", fields["ptr"])
	}
	if ptr.Address() != data.Address() {
		t.Errorf("ptr = %#x, want %#x", ptr.Address(), data.Address())
	}
	n := fields["len"].(uint32)
	raw, err := ptr.Bytes(uint64(n))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "hello" {
		t.Errorf("string = %q, want hello", raw)
	}
}
