//go:build unix

package memory

import (
	"unsafe"

	"github.com/wippyai/nativeptr/errors"
	"golang.org/x/sys/unix"
)

// NewNative maps size bytes of anonymous memory outside the Go heap.
// Addresses are real process addresses. Close unmaps the region.
func NewNative(size uint64) (*Linear, error) {
	if size == 0 {
		return nil, errors.InvalidInput(errors.PhaseAlloc, "native region size is zero")
	}
	page := uint64(unix.Getpagesize())
	size = (size + page - 1) / page * page

	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.AllocationFailed(errors.PhaseAlloc, size, page, err)
	}
	return &Linear{
		data:   data,
		base:   uint64(uintptr(unsafe.Pointer(unsafe.SliceData(data)))),
		model:  HostModel(),
		closer: unix.Munmap,
	}, nil
}
