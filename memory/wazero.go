package memory

import (
	"math"

	"github.com/tetratelabs/wazero/api"
	"github.com/wippyai/nativeptr"
	"github.com/wippyai/nativeptr/errors"
)

// PageSize is the wasm linear memory page size.
const PageSize = 65536

// Wazero wraps wazero linear memory to implement nativeptr.Memory
type Wazero struct {
	mem   api.Memory
	model nativeptr.DataModel
}

// NewWazero wraps mem using the Wasm32 data model.
func NewWazero(mem api.Memory) *Wazero {
	return &Wazero{mem: mem, model: nativeptr.Wasm32}
}

// WithModel returns a copy reporting model instead of Wasm32.
// The byte order stays little-endian whatever model says.
func (m *Wazero) WithModel(model nativeptr.DataModel) *Wazero {
	model.ByteOrder = nativeptr.Wasm32.ByteOrder
	return &Wazero{mem: m.mem, model: model}
}

func (m *Wazero) Read(addr uint64, length uint64) ([]byte, error) {
	if addr > math.MaxUint32 || length > math.MaxUint32 {
		return nil, errors.Unmapped(errors.PhaseAccess, addr, length)
	}
	data, ok := m.mem.Read(uint32(addr), uint32(length))
	if !ok {
		return nil, errors.Unmapped(errors.PhaseAccess, addr, length)
	}
	return data, nil
}

func (m *Wazero) Write(addr uint64, data []byte) error {
	if addr > math.MaxUint32 {
		return errors.Unmapped(errors.PhaseAccess, addr, uint64(len(data)))
	}
	if !m.mem.Write(uint32(addr), data) {
		return errors.Unmapped(errors.PhaseAccess, addr, uint64(len(data)))
	}
	return nil
}

func (m *Wazero) Model() nativeptr.DataModel {
	return m.model
}

// Bounds returns [0, size) of the guest memory.
func (m *Wazero) Bounds() (start, end uint64) {
	if m.mem == nil {
		return 0, 0
	}
	return 0, uint64(m.mem.Size())
}

// Grow adds pages to the guest memory and returns the new end address.
// Views returned by Read before Grow must not be used afterwards.
func (m *Wazero) Grow(pages uint32) (uint64, error) {
	if _, ok := m.mem.Grow(pages); !ok {
		return 0, errors.AllocationFailed(errors.PhaseAlloc, uint64(pages)*PageSize, PageSize, nil)
	}
	return uint64(m.mem.Size()), nil
}

// GrowFunc adapts Grow to FreeListConfig.Grow, growing by whole pages.
func (m *Wazero) GrowFunc() func(need uint64) (uint64, error) {
	return func(need uint64) (uint64, error) {
		pages := (need + PageSize - 1) / PageSize
		if pages > math.MaxUint32 {
			return 0, errors.AllocationFailed(errors.PhaseAlloc, need, PageSize, nil)
		}
		return m.Grow(uint32(pages))
	}
}

var _ nativeptr.Memory = (*Wazero)(nil)
var _ nativeptr.MemorySizer = (*Wazero)(nil)
