package memory

import (
	"encoding/binary"
	"runtime"

	"github.com/wippyai/nativeptr"
)

// HostModel returns the data model of the running process.
func HostModel() nativeptr.DataModel {
	m := nativeptr.DataModel{
		ByteOrder:   binary.NativeEndian,
		PointerSize: nativeptr.SystemPointerSize,
		WCharSize:   4,
	}
	if runtime.GOOS == "windows" {
		m.WCharSize = 2
	}
	return m
}
