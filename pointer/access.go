package pointer

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/wippyai/nativeptr/errors"
)

type scalar interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 | float32 | float64
}

func sizeOf[T scalar]() uint64 {
	var v T
	return uint64(unsafe.Sizeof(v))
}

func decode[T scalar](b []byte, order binary.ByteOrder) T {
	var v T
	switch x := any(&v).(type) {
	case *int8:
		*x = int8(b[0])
	case *uint8:
		*x = b[0]
	case *int16:
		*x = int16(order.Uint16(b))
	case *uint16:
		*x = order.Uint16(b)
	case *int32:
		*x = int32(order.Uint32(b))
	case *uint32:
		*x = order.Uint32(b)
	case *int64:
		*x = int64(order.Uint64(b))
	case *uint64:
		*x = order.Uint64(b)
	case *float32:
		*x = math.Float32frombits(order.Uint32(b))
	case *float64:
		*x = math.Float64frombits(order.Uint64(b))
	}
	return v
}

func encode[T scalar](b []byte, order binary.ByteOrder, v T) {
	switch x := any(v).(type) {
	case int8:
		b[0] = byte(x)
	case uint8:
		b[0] = x
	case int16:
		order.PutUint16(b, uint16(x))
	case uint16:
		order.PutUint16(b, x)
	case int32:
		order.PutUint32(b, uint32(x))
	case uint32:
		order.PutUint32(b, x)
	case int64:
		order.PutUint64(b, uint64(x))
	case uint64:
		order.PutUint64(b, x)
	case float32:
		order.PutUint32(b, math.Float32bits(x))
	case float64:
		order.PutUint64(b, math.Float64bits(x))
	}
}

func load[T scalar](p *Pointer, off int64) (T, error) {
	b, err := p.view(errors.PhaseAccess, off, sizeOf[T]())
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](b, p.order), nil
}

func store[T scalar](p *Pointer, off int64, v T) error {
	var buf [8]byte
	n := sizeOf[T]()
	encode(buf[:n], p.order, v)
	return p.write(off, buf[:n])
}

func loadIndex[T scalar](p *Pointer, index int64) (T, error) {
	off, err := scaleIndex(p.addr, index, sizeOf[T]())
	if err != nil {
		var zero T
		return zero, err
	}
	return load[T](p, off)
}

func storeIndex[T scalar](p *Pointer, index int64, v T) error {
	off, err := scaleIndex(p.addr, index, sizeOf[T]())
	if err != nil {
		return err
	}
	return store(p, off, v)
}

// loadSlice bounds-checks the whole transfer once, then decodes in bulk.
func loadSlice[T scalar](p *Pointer, off int64, n uint64) ([]T, error) {
	size := sizeOf[T]()
	total, err := transferSize(p.addr, n, size)
	if err != nil {
		return nil, err
	}
	out := make([]T, n)
	if n == 0 {
		return out, nil
	}
	b, err := p.view(errors.PhaseAccess, off, total)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i] = decode[T](b[uint64(i)*size:], p.order)
	}
	return out, nil
}

func storeSlice[T scalar](p *Pointer, off int64, vals []T) error {
	if len(vals) == 0 {
		return nil
	}
	size := sizeOf[T]()
	total, err := transferSize(p.addr, uint64(len(vals)), size)
	if err != nil {
		return err
	}
	buf := make([]byte, total)
	for i, v := range vals {
		encode(buf[uint64(i)*size:], p.order, v)
	}
	return p.write(off, buf)
}

func transferSize(addr, n, size uint64) (uint64, error) {
	total := n * size
	if size != 0 && total/size != n {
		return 0, errors.New(errors.PhaseAccess, errors.KindOutOfBounds).
			Address(addr).
			Detail("%d elements of %d bytes overflow", n, size).
			Build()
	}
	return total, nil
}

// write copies data to addr+off after the bounds check.
func (p *Pointer) write(off int64, data []byte) error {
	addr, err := p.checkedAddress(errors.PhaseAccess, off, uint64(len(data)))
	if err != nil {
		return err
	}
	return p.mem.Write(addr, data)
}

// readUnsigned reads an unsigned integer of width bytes.
func (p *Pointer) readUnsigned(off int64, width uint64) (uint64, error) {
	switch width {
	case 1:
		v, err := load[uint8](p, off)
		return uint64(v), err
	case 2:
		v, err := load[uint16](p, off)
		return uint64(v), err
	case 4:
		v, err := load[uint32](p, off)
		return uint64(v), err
	case 8:
		return load[uint64](p, off)
	}
	return 0, errors.New(errors.PhaseAccess, errors.KindUnsupported).
		Address(p.addr).
		Detail("unsupported integer width %d", width).
		Build()
}

// writeUnsigned writes the low width bytes of v.
func (p *Pointer) writeUnsigned(off int64, width, v uint64) error {
	switch width {
	case 1:
		return store(p, off, uint8(v))
	case 2:
		return store(p, off, uint16(v))
	case 4:
		return store(p, off, uint32(v))
	case 8:
		return store(p, off, v)
	}
	return errors.New(errors.PhaseAccess, errors.KindUnsupported).
		Address(p.addr).
		Detail("unsupported integer width %d", width).
		Build()
}
