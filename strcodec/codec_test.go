package strcodec

import (
	"encoding/binary"
	"strings"
	"testing"

	"golang.org/x/text/encoding"

	"github.com/wippyai/nativeptr"
	"github.com/wippyai/nativeptr/errors"
	"github.com/wippyai/nativeptr/memory"
	"github.com/wippyai/nativeptr/pointer"
)

func newCodec(t *testing.T, model nativeptr.DataModel) (*Codec, *memory.Linear, *memory.FreeList) {
	t.Helper()
	mem := memory.NewLinear(&memory.LinearConfig{Size: 1 << 16, Model: model})
	alloc := memory.NewFreeList(mem, nil)
	return New(mem, alloc), mem, alloc
}

func TestRoundTrip(t *testing.T) {
	models := map[string]nativeptr.DataModel{
		"lp64":  nativeptr.LP64,
		"llp64": nativeptr.LLP64,
		"be32":  {ByteOrder: binary.BigEndian, PointerSize: 4, WCharSize: 4},
	}
	inputs := []string{"", "hello", "héllo wörld", "日本語テキスト", "emoji 🎉 pair"}
	types := []Type{C, WideC, PascalShort, PascalWide, PascalAnsi, RefCountedWide}

	for name, model := range models {
		c, _, _ := newCodec(t, model)
		for _, typ := range types {
			for _, s := range inputs {
				t.Run(name+"/"+typ.String()+"/"+s, func(t *testing.T) {
					p, err := c.Encode(nil, 0, s, typ, nil)
					if err != nil {
						t.Fatalf("Encode failed: %v", err)
					}
					defer p.Root().Release()

					got, err := c.Decode(p, 0, typ, nil)
					if err != nil {
						t.Fatalf("Decode failed: %v", err)
					}
					if got != s {
						t.Errorf("round trip = %q, want %q", got, s)
					}
				})
			}
		}
	}
}

func TestEncode_Layout(t *testing.T) {
	c, _, _ := newCodec(t, nativeptr.DataModel{ByteOrder: binary.LittleEndian, PointerSize: 8, WCharSize: 2})

	tests := []struct {
		typ    Type
		s      string
		header []byte
		body   []byte
	}{
		{C, "ab", nil, []byte{'a', 'b', 0}},
		{WideC, "ab", nil, []byte{'a', 0, 'b', 0, 0, 0}},
		{PascalShort, "ab", nil, []byte{2, 'a', 'b', 0}},
		{PascalAnsi, "ab", []byte{1, 0, 0, 0, 2, 0, 0, 0}, []byte{'a', 'b', 0}},
		{PascalWide, "ab", []byte{1, 0, 0, 0, 2, 0, 0, 0}, []byte{'a', 0, 'b', 0, 0, 0}},
		{RefCountedWide, "ab", []byte{4, 0, 0, 0}, []byte{'a', 0, 'b', 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			p, err := c.Encode(nil, 0, tt.s, tt.typ, nil)
			if err != nil {
				t.Fatal(err)
			}
			defer p.Root().Release()

			if h := int64(len(tt.header)); h > 0 {
				got, err := p.BytesAt(-h, uint64(h))
				if err != nil {
					t.Fatal(err)
				}
				if string(got) != string(tt.header) {
					t.Errorf("header = %v, want %v", got, tt.header)
				}
			}
			body, err := p.Bytes(uint64(len(tt.body)))
			if err != nil {
				t.Fatal(err)
			}
			if string(body) != string(tt.body) {
				t.Errorf("body = %v, want %v", body, tt.body)
			}
			if n, _ := p.Remaining(); n != uint64(len(tt.body)) {
				t.Errorf("allocation leaves %d bytes after the address, want %d", n, len(tt.body))
			}
		})
	}
}

func TestPascalShort_Capacity(t *testing.T) {
	c, mem, alloc := newCodec(t, nativeptr.LP64)
	long := strings.Repeat("x", 256)

	if _, err := c.Encode(nil, 0, long, PascalShort, nil); !errors.IsKind(err, errors.KindCapacityExceeded) {
		t.Errorf("fresh encode error = %v, want capacity_exceeded", err)
	}

	target, err := pointer.AllocateBytes(mem, alloc, 512, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer target.Release()
	if _, err := c.Encode(target, 0, long, PascalShort, nil); !errors.IsKind(err, errors.KindCapacityExceeded) {
		t.Errorf("target encode error = %v, want capacity_exceeded", err)
	}
	if _, err := c.Encode(target, 0, long[:255], PascalShort, nil); err != nil {
		t.Errorf("255 bytes rejected: %v", err)
	}
}

func TestStl(t *testing.T) {
	model := nativeptr.LP64
	c, mem, alloc := newCodec(t, model)

	obj, err := pointer.AllocateBytes(mem, alloc, StlSize(model), 8)
	if err != nil {
		t.Fatal(err)
	}
	defer obj.Release()

	if _, err := c.Encode(nil, 0, "x", Stl, nil); !errors.IsKind(err, errors.KindUnsupportedConstruction) {
		t.Fatalf("fresh Stl error = %v, want unsupported_construction", err)
	}

	if _, err := c.Decode(obj, 0, Stl, nil); !errors.IsKind(err, errors.KindInvalidStringLayout) {
		t.Fatalf("zeroed object error = %v, want invalid_string_layout", err)
	}
	if _, err := c.Encode(obj, 0, "x", Stl, nil); !errors.IsKind(err, errors.KindInvalidStringLayout) {
		t.Fatalf("encode into zeroed object error = %v, want invalid_string_layout", err)
	}

	t.Run("inline", func(t *testing.T) {
		if err := obj.SetAddressAt(24, StlInlineCapacity(Stl, model)); err != nil {
			t.Fatal(err)
		}
		if _, err := c.Encode(obj, 0, "short text", Stl, nil); err != nil {
			t.Fatal(err)
		}
		if n, _ := obj.AddressAt(16); n != 10 {
			t.Errorf("length field = %d, want 10", n)
		}
		got, err := c.Decode(obj, 0, Stl, nil)
		if err != nil || got != "short text" {
			t.Errorf("Decode = %q, %v", got, err)
		}
		if _, err := c.Encode(obj, 0, "this is sixteen!", Stl, nil); !errors.IsKind(err, errors.KindCapacityExceeded) {
			t.Errorf("overflow error = %v, want capacity_exceeded", err)
		}
	})

	t.Run("heap", func(t *testing.T) {
		heap, err := pointer.AllocateBytes(mem, alloc, 64, 8)
		if err != nil {
			t.Fatal(err)
		}
		defer heap.Release()
		if err := obj.SetPointerAt(0, heap); err != nil {
			t.Fatal(err)
		}
		if err := obj.SetAddressAt(24, 63); err != nil {
			t.Fatal(err)
		}

		s := strings.Repeat("heap ", 10)
		if _, err := c.Encode(obj, 0, s, Stl, nil); err != nil {
			t.Fatal(err)
		}
		got, err := c.Decode(obj, 0, Stl, nil)
		if err != nil || got != s {
			t.Errorf("Decode = %q, %v", got, err)
		}
		direct, _ := c.Decode(heap, 0, C, nil)
		if direct != s {
			t.Errorf("heap buffer holds %q", direct)
		}
		if _, err := c.Encode(obj, 0, strings.Repeat("y", 64), Stl, nil); !errors.IsKind(err, errors.KindCapacityExceeded) {
			t.Errorf("heap overflow error = %v", err)
		}
	})

	t.Run("corrupt", func(t *testing.T) {
		if err := obj.SetAddressAt(16, 100); err != nil {
			t.Fatal(err)
		}
		if _, err := c.Decode(obj, 0, Stl, nil); !errors.IsKind(err, errors.KindInvalidStringLayout) {
			t.Errorf("length > capacity error = %v", err)
		}
	})
}

func TestWideStl(t *testing.T) {
	model := nativeptr.LLP64
	c, mem, alloc := newCodec(t, model)
	obj, err := pointer.AllocateBytes(mem, alloc, StlSize(model), 8)
	if err != nil {
		t.Fatal(err)
	}
	defer obj.Release()

	if StlInlineCapacity(WideStl, model) != 7 {
		t.Fatalf("inline capacity = %d, want 7", StlInlineCapacity(WideStl, model))
	}
	if err := obj.SetAddressAt(24, 7); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Encode(obj, 0, "wide", WideStl, nil); err != nil {
		t.Fatal(err)
	}
	got, err := c.Decode(obj, 0, WideStl, nil)
	if err != nil || got != "wide" {
		t.Errorf("Decode = %q, %v", got, err)
	}
}

func TestDecode_InvalidLayout(t *testing.T) {
	c, mem, alloc := newCodec(t, nativeptr.LP64)

	tests := []struct {
		name  string
		typ   Type
		setup func(p *pointer.Pointer) error
	}{
		{"zero refcount", PascalAnsi, func(p *pointer.Pointer) error {
			return p.SetInt32At(-8, 0)
		}},
		{"negative refcount", PascalWide, func(p *pointer.Pointer) error {
			return p.SetInt32At(-8, -1)
		}},
		{"missing terminator", PascalAnsi, func(p *pointer.Pointer) error {
			return p.SetInt32At(-4, 2)
		}},
		{"odd bstr length", RefCountedWide, func(p *pointer.Pointer) error {
			return p.SetUint32At(-4, 3)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := c.Encode(nil, 0, "abcd", tt.typ, nil)
			if err != nil {
				t.Fatal(err)
			}
			defer p.Root().Release()
			if err := tt.setup(p); err != nil {
				t.Fatal(err)
			}
			if _, err := c.Decode(p, 0, tt.typ, nil); !errors.IsKind(err, errors.KindInvalidStringLayout) {
				t.Errorf("Decode error = %v, want invalid_string_layout", err)
			}
		})
	}

	t.Run("length past window", func(t *testing.T) {
		p, err := c.Encode(nil, 0, "abcd", PascalAnsi, nil)
		if err != nil {
			t.Fatal(err)
		}
		defer p.Root().Release()
		if err := p.SetInt32At(-4, 1000); err != nil {
			t.Fatal(err)
		}
		if _, err := c.Decode(p, 0, PascalAnsi, nil); !errors.IsKind(err, errors.KindOutOfBounds) {
			t.Errorf("Decode error = %v, want out_of_bounds", err)
		}
	})

	t.Run("unterminated c string", func(t *testing.T) {
		p, err := pointer.AllocateBytes(mem, alloc, 4, 1)
		if err != nil {
			t.Fatal(err)
		}
		defer p.Release()
		if err := p.SetBytes([]byte("abcd")); err != nil {
			t.Fatal(err)
		}
		if _, err := c.Decode(p, 0, C, nil); !errors.IsKind(err, errors.KindOutOfBounds) {
			t.Errorf("Decode error = %v, want out_of_bounds", err)
		}
	})
}

func TestCharsets(t *testing.T) {
	c, _, _ := newCodec(t, nativeptr.LP64)

	tests := []struct {
		name string
		cs   encoding.Encoding
		s    string
		raw  []byte
	}{
		{"latin1", Latin1, "café", []byte{'c', 'a', 'f', 0xE9}},
		{"cp1252", Windows1252, "€5", []byte{0x80, '5'}},
		{"utf8", UTF8, "é", []byte{0xC3, 0xA9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := c.Encode(nil, 0, tt.s, C, tt.cs)
			if err != nil {
				t.Fatal(err)
			}
			defer p.Release()
			raw, _ := p.Bytes(uint64(len(tt.raw)))
			if string(raw) != string(tt.raw) {
				t.Errorf("encoded = %x, want %x", raw, tt.raw)
			}
			got, err := c.Decode(p, 0, C, tt.cs)
			if err != nil || got != tt.s {
				t.Errorf("Decode = %q, %v", got, err)
			}
		})
	}

	if _, err := c.Encode(nil, 0, "日本", C, Latin1); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("unrepresentable error = %v, want invalid_input", err)
	}

	cs, err := Charset("latin1")
	if err != nil {
		t.Fatal(err)
	}
	p, err := c.Encode(nil, 0, "ü", C, cs)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Release()
	if b, _ := p.Uint8(); b != 0xFC {
		t.Errorf("Charset(latin1) encoded %#x", b)
	}
	if _, err := Charset("no-such-charset"); !errors.IsKind(err, errors.KindUnsupported) {
		t.Errorf("unknown charset error = %v", err)
	}
}

func TestTypeProperties(t *testing.T) {
	tests := []struct {
		typ    Type
		header uint64
		wide   bool
		create bool
	}{
		{C, 0, false, true},
		{WideC, 0, true, true},
		{PascalShort, 1, false, true},
		{PascalWide, 8, true, true},
		{PascalAnsi, 8, false, true},
		{RefCountedWide, 4, true, true},
		{Stl, 0, false, false},
		{WideStl, 0, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			if tt.typ.HeaderSize() != tt.header || tt.typ.Wide() != tt.wide || tt.typ.CanCreate() != tt.create {
				t.Errorf("header %d wide %v create %v", tt.typ.HeaderSize(), tt.typ.Wide(), tt.typ.CanCreate())
			}
		})
	}
}
