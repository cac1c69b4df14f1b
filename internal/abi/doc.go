// Package abi holds arithmetic helpers shared by layout and pointer code:
// overflow-checked address math, alignment and discriminant widths.
//
// This package is internal to nativeptr.
package abi
