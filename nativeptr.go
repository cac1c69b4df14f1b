package nativeptr

import (
	"encoding/binary"
	"unsafe"
)

// Memory is an addressable memory space.
//
// Read returns a view that aliases the underlying memory; writes through the
// view are visible to later reads. Both operations fail when the range is not
// mapped, independently of any bounds a pointer carries.
type Memory interface {
	Read(addr uint64, length uint64) ([]byte, error)
	Write(addr uint64, data []byte) error
	Model() DataModel
}

// MemorySizer reports the mapped range of a Memory.
type MemorySizer interface {
	Bounds() (start, end uint64)
}

// Allocator allocates blocks inside a Memory.
// Free is the default release strategy for allocated pointers.
type Allocator interface {
	Alloc(size, align uint64) (uint64, error)
	Free(addr, size, align uint64)
}

// DataModel describes the C data model of an address space.
type DataModel struct {
	ByteOrder   binary.ByteOrder
	PointerSize uint64
	WCharSize   uint64
}

// SystemPointerSize is the pointer width of the host process.
const SystemPointerSize = uint64(unsafe.Sizeof(uintptr(0)))

var (
	// LP64 is the data model of 64-bit unix hosts (wchar_t is 4 bytes).
	LP64 = DataModel{ByteOrder: binary.NativeEndian, PointerSize: 8, WCharSize: 4}
	// LLP64 is the data model of 64-bit windows hosts (wchar_t is 2 bytes).
	LLP64 = DataModel{ByteOrder: binary.NativeEndian, PointerSize: 8, WCharSize: 2}
	// ILP32 is the data model of 32-bit unix hosts.
	ILP32 = DataModel{ByteOrder: binary.NativeEndian, PointerSize: 4, WCharSize: 4}
	// Wasm32 is the data model of wasm32 guests.
	Wasm32 = DataModel{ByteOrder: binary.LittleEndian, PointerSize: 4, WCharSize: 4}
)

// Swapped returns the byte order opposite to the model's native order.
func (m DataModel) Swapped() binary.ByteOrder {
	if IsLittleEndian(m.ByteOrder) {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// IsLittleEndian reports whether order stores the least significant byte first.
func IsLittleEndian(order binary.ByteOrder) bool {
	var b [2]byte
	order.PutUint16(b[:], 1)
	return b[0] == 1
}
