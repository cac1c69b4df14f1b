// Package strcodec encodes and decodes strings in native binary layouts
// through bounded pointers.
//
// Supported layouts:
//
//	C               bytes... 0
//	WideC           units... 0
//	PascalShort     len:u8 bytes... 0            (at most 255 bytes)
//	PascalAnsi      refs:i32 len:i32 | bytes... 0 (len in bytes)
//	PascalWide      refs:i32 len:i32 | units... 0 (len in units)
//	RefCountedWide  len:u32 | units... 0         (BSTR, len in bytes)
//	Stl, WideStl    MSVC std::string / std::wstring objects
//
// The bar marks the address a string pointer denotes; headers before it are
// read at negative offsets. Wide layouts use wchar_t of the memory's data
// model and default to UTF-16 or UTF-32 in the pointer's byte order. Narrow
// layouts default to UTF-8; any golang.org/x/text encoding may be supplied.
//
// Every read and write goes through the pointer's bounds checks, so a
// corrupted header fails instead of reading past the validity window.
package strcodec
