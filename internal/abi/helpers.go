package abi

import (
	"math"
	"math/bits"
	"reflect"
)

func SafeMul(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

func SafeAdd(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

// AddSigned applies a signed delta to an address, reporting wrap-around.
func AddSigned(addr uint64, delta int64) (uint64, bool) {
	if delta >= 0 {
		return SafeAdd(addr, uint64(delta))
	}
	d := uint64(-delta)
	if delta == math.MinInt64 {
		d = 1 << 63
	}
	if d > addr {
		return 0, false
	}
	return addr - d, true
}

// TypeName returns "nil" for nil values, avoiding reflect.TypeOf(nil) panic.
func TypeName(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}

func AlignTo(offset, align uint64) uint64 {
	if align <= 1 {
		return offset
	}
	return (offset + align - 1) / align * align
}

// IsPowerOfTwo reports whether n is a non-zero power of two.
func IsPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// DiscriminantSize returns the byte width of a discriminant for n cases.
func DiscriminantSize(n int) uint64 {
	switch {
	case n <= 1<<8:
		return 1
	case n <= 1<<16:
		return 2
	default:
		return 4
	}
}
