package strcodec

import "github.com/wippyai/nativeptr"

// Type identifies a binary string layout.
type Type uint8

const (
	// C is a NUL-terminated narrow string.
	C Type = iota
	// WideC is a wchar_t string terminated by a zero unit.
	WideC
	// PascalShort is a one-byte length followed by up to 255 bytes.
	PascalShort
	// PascalWide is a refcounted wide string with a 4-byte refcount and a
	// 4-byte length in units stored before the first character.
	PascalWide
	// PascalAnsi is the narrow form of PascalWide; its length is in bytes.
	PascalAnsi
	// RefCountedWide is a BSTR: a 4-byte byte length before wide content.
	RefCountedWide
	// Stl is a std::string in the MSVC layout. The capacity field selects the
	// storage: capacity equal to StlInlineCapacity means the inline buffer,
	// anything larger means the heap pointer. The object must be constructed
	// with its capacity set; a zeroed object fails as an invalid layout.
	Stl
	// WideStl is a std::wstring in the MSVC layout, with the same capacity
	// rules as Stl.
	WideStl
)

var typeNames = [...]string{
	C:              "c",
	WideC:          "wide-c",
	PascalShort:    "pascal-short",
	PascalWide:     "pascal-wide",
	PascalAnsi:     "pascal-ansi",
	RefCountedWide: "bstr",
	Stl:            "stl",
	WideStl:        "wide-stl",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// Wide reports whether code units are wchar_t.
func (t Type) Wide() bool {
	switch t {
	case WideC, PascalWide, RefCountedWide, WideStl:
		return true
	}
	return false
}

// CanCreate reports whether Encode can allocate a fresh string of the type.
func (t Type) CanCreate() bool {
	return t != Stl && t != WideStl
}

// HeaderSize is the number of bytes stored before the first character.
// PascalShort stores its length byte at the string address itself, so its
// header precedes the content but not the address.
func (t Type) HeaderSize() uint64 {
	switch t {
	case PascalShort:
		return 1
	case PascalWide, PascalAnsi:
		return 8
	case RefCountedWide:
		return 4
	}
	return 0
}

// UnitSize is the size of one code unit under model.
func (t Type) UnitSize(model nativeptr.DataModel) uint64 {
	if t.Wide() {
		return model.WCharSize
	}
	return 1
}

// prefixed reports whether the header sits at negative offsets from the
// returned address.
func (t Type) prefixed() bool {
	switch t {
	case PascalWide, PascalAnsi, RefCountedWide:
		return true
	}
	return false
}

// Std string layout (MSVC): a 16-byte union of inline buffer and heap pointer,
// then size_t length and size_t capacity, both counted in code units.
const stlBufferSize = 16

// StlSize is the size of a std::string or std::wstring object under model.
func StlSize(model nativeptr.DataModel) uint64 {
	return stlBufferSize + 2*model.PointerSize
}

// StlInlineCapacity is the largest length stored in the inline buffer.
func StlInlineCapacity(t Type, model nativeptr.DataModel) uint64 {
	return stlBufferSize/t.UnitSize(model) - 1
}
