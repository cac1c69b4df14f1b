//go:build unix

package memory

import (
	"testing"
	"unsafe"

	"github.com/wippyai/nativeptr/errors"
)

func TestNative(t *testing.T) {
	mem, err := NewNative(100)
	if err != nil {
		t.Fatalf("NewNative failed: %v", err)
	}

	start, end := mem.Bounds()
	if end-start < 100 {
		t.Fatalf("mapped %d bytes, want >= 100", end-start)
	}
	if err := mem.Write(start+8, []byte{42}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// the address is a real process address
	b := *(*byte)(unsafe.Pointer(uintptr(start + 8)))
	if b != 42 {
		t.Errorf("byte at real address = %d, want 42", b)
	}

	if err := mem.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := mem.Read(start, 1); !errors.IsKind(err, errors.KindUnmapped) {
		t.Errorf("read after Close: err = %v, want unmapped", err)
	}
}
