// Package nativeptr provides bounded, typed, ownership-aware pointers over raw
// addressable memory.
//
// The library is organized into several packages with distinct responsibilities:
//
//	nativeptr/           Root package with Memory, Allocator and DataModel
//	├── memory/          Address-space backends (Go heap, mmap, wazero) and allocators
//	├── pointer/         Pointer, Descriptor, ownership and release
//	├── strcodec/        Binary string layouts (C, wide, Pascal, BSTR, STL)
//	├── solid/           Coalescing of aggregate field ranges
//	├── ptrcache/        Per-goroutine address cache
//	├── witdesc/         Descriptors built from WIT types
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Allocate ten 32-bit integers and read them back:
//
//	mem := memory.NewLinear(nil)
//	alloc := memory.NewFreeList(mem, nil)
//
//	p, err := pointer.Allocate(mem, alloc, pointer.Int32(), 10)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Release()
//
//	for i := int64(0); i < 10; i++ {
//	    _ = p.SetInt32AtIndex(i, int32(i))
//	}
//	vals, _ := p.Int32s(10)
//	fmt.Println(vals) // [0 1 2 3 4 5 6 7 8 9]
//	_, err = p.Int32AtIndex(10) // out_of_bounds
//
// # Validity Windows
//
// A pointer either knows the byte range it may touch or it does not. Pointers
// created by allocation or by borrowing a buffer carry a window and every
// access is checked against it; pointers wrapping addresses returned by native
// code carry none and are only limited by the mapped range of their Memory.
// Windows shrink through derivation and never grow.
//
// # Ownership
//
// Allocated pointers own their block. Pointers derived from them (offsets,
// casts, views, dereferenced slots) keep the owner reachable, so the block is
// released at most once: by an explicit Release, or by a runtime cleanup once
// the owner and every derived pointer became unreachable.
//
// # Thread Safety
//
// Typed accessors do no locking; callers coordinate access to shared memory as
// they would with raw pointers. Release is synchronized. The address cache is
// NOT thread-safe and should be used by a single goroutine.
package nativeptr
