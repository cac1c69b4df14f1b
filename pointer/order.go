package pointer

// Order selects how multi-byte values are laid out in memory.
type Order uint8

const (
	// Ordered accesses use the native byte order of the memory.
	Ordered Order = iota
	// Disordered accesses byte-swap every multi-byte value.
	Disordered
)

func (o Order) String() string {
	if o == Disordered {
		return "disordered"
	}
	return "ordered"
}

// Ownership describes how a pointer relates to the memory it addresses.
type Ownership uint8

const (
	// Root pointers own their block and release it.
	Root Ownership = iota
	// Derived pointers keep their root reachable and never release on their own.
	Derived
	// Borrowed pointers wrap memory owned elsewhere and never free it.
	Borrowed
)

func (o Ownership) String() string {
	switch o {
	case Root:
		return "root"
	case Derived:
		return "derived"
	default:
		return "borrowed"
	}
}
