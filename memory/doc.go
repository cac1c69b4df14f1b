// Package memory provides address spaces and allocators for pointers.
//
// Three backends implement nativeptr.Memory:
//
//	Linear   - a Go byte slice mapped at a non-zero base address
//	Native   - an anonymous mmap region; addresses are real process addresses
//	Wazero   - a wazero linear memory; addresses are 32-bit guest offsets
//
// Reads return views that alias the backing storage. A view stays valid until
// the backend is closed or, for Wazero, until the guest memory grows.
//
// Two allocators implement nativeptr.Allocator:
//
//	FreeList - host-side first-fit allocator over any mapped range
//	Guest    - calls the allocation functions exported by a wasm module
//
// # Usage
//
//	mem := memory.NewLinear(&memory.LinearConfig{Size: 1 << 20})
//	alloc := memory.NewFreeList(mem, nil)
//
//	addr, err := alloc.Alloc(64, 8)
//	...
//	alloc.Free(addr, 64, 8)
//
// Allocators are safe for concurrent use. Memory backends do no locking.
package memory
