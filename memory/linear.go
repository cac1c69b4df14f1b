package memory

import (
	"unsafe"

	"github.com/wippyai/nativeptr"
	"github.com/wippyai/nativeptr/errors"
)

const (
	DefaultLinearSize = 1 << 20
	DefaultLinearBase = 0x10000
)

// LinearConfig holds configuration for a Linear address space
type LinearConfig struct {
	// Model is the data model reported to pointers. Zero value means HostModel().
	Model nativeptr.DataModel

	// Size is the number of mapped bytes. 0 means DefaultLinearSize.
	Size uint64

	// Base is the address of the first byte. 0 means DefaultLinearBase;
	// address zero is never mapped.
	Base uint64
}

// Linear is an address space backed by a contiguous byte slice.
type Linear struct {
	closer func([]byte) error
	data   []byte
	model  nativeptr.DataModel
	base   uint64
}

// NewLinear creates a Linear address space on the Go heap.
func NewLinear(cfg *LinearConfig) *Linear {
	var c LinearConfig
	if cfg != nil {
		c = *cfg
	}
	if c.Size == 0 {
		c.Size = DefaultLinearSize
	}
	if c.Base == 0 {
		c.Base = DefaultLinearBase
	}
	if c.Model.ByteOrder == nil {
		c.Model = HostModel()
	}
	return &Linear{
		data:  make([]byte, c.Size),
		base:  c.Base,
		model: c.Model,
	}
}

// FromBytes maps a caller-owned buffer at its real address.
// The buffer must outlive the returned memory and every pointer into it.
func FromBytes(buf []byte, model nativeptr.DataModel) (*Linear, error) {
	if len(buf) == 0 {
		return nil, errors.InvalidInput(errors.PhaseConstruct, "empty buffer")
	}
	if model.ByteOrder == nil {
		model = HostModel()
	}
	return &Linear{
		data:  buf,
		base:  uint64(uintptr(unsafe.Pointer(unsafe.SliceData(buf)))),
		model: model,
	}, nil
}

func (m *Linear) Read(addr uint64, length uint64) ([]byte, error) {
	off, ok := m.translate(addr, length)
	if !ok {
		return nil, errors.Unmapped(errors.PhaseAccess, addr, length)
	}
	return m.data[off : off+length : off+length], nil
}

func (m *Linear) Write(addr uint64, data []byte) error {
	off, ok := m.translate(addr, uint64(len(data)))
	if !ok {
		return errors.Unmapped(errors.PhaseAccess, addr, uint64(len(data)))
	}
	copy(m.data[off:], data)
	return nil
}

func (m *Linear) Model() nativeptr.DataModel {
	return m.model
}

// Bounds returns the mapped range [start, end).
func (m *Linear) Bounds() (start, end uint64) {
	return m.base, m.base + uint64(len(m.data))
}

// Close unmaps the backing storage. Later accesses fail as unmapped.
func (m *Linear) Close() error {
	data := m.data
	m.data = nil
	if m.closer != nil && data != nil {
		return m.closer(data)
	}
	return nil
}

func (m *Linear) translate(addr, length uint64) (uint64, bool) {
	if addr < m.base {
		return 0, false
	}
	off := addr - m.base
	size := uint64(len(m.data))
	if off > size || length > size-off {
		return 0, false
	}
	return off, true
}

var _ nativeptr.Memory = (*Linear)(nil)
var _ nativeptr.MemorySizer = (*Linear)(nil)
