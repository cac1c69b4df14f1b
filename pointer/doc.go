// Package pointer provides bounded, typed, ownership-aware pointers over a
// nativeptr.Memory.
//
// A Pointer is an address plus an optional validity window, a byte-order
// mode, an optional Descriptor and an ownership link:
//
//   - Root pointers come from Allocate and free their block exactly once,
//     either on Release or when the root and all pointers derived from it
//     become unreachable.
//   - Derived pointers come from Offset, View, As, Get and PointerAt. They
//     keep their root reachable; releasing one releases the root's block,
//     except for pointers read from a pointer slot, which are only unlinked.
//   - Borrowed pointers wrap memory owned elsewhere (Borrow, Wrap) and never
//     free it.
//
// Every typed accessor goes through one bounds check against the window.
// Windows only shrink: ValidBytes and View can narrow a window but never
// extend it. Pointers created by Wrap or by dereferencing a pointer slot have
// no window and are checked only by the memory itself.
//
// Descriptors resolve the access strategy of a type once at construction.
// Scalars, pointers, arrays, aggregates and enums are supported; DescriptorOf
// derives descriptors from Go types and memoizes them process-wide.
//
// Pointer values are immutable and safe to share. Memory contents are not
// synchronized: concurrent writers to overlapping bytes must coordinate.
package pointer
