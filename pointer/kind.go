package pointer

// Kind is the closed set of target kinds a Descriptor can describe.
type Kind uint8

const (
	// Fixed-width integers.
	KindInt8 Kind = iota
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64

	// IEEE 754 floats.
	KindFloat32
	KindFloat64

	KindBool  // one byte, zero is false
	KindWChar // wchar_t of the data model, read as a rune

	KindPointer   // address slot dereferenced to a derived pointer
	KindAggregate // record or union with named fields
	KindArray     // fixed number of consecutive elements
	KindEnum      // named values stored as an integer
)

var kindNames = [...]string{
	KindInt8:      "int8",
	KindUint8:     "uint8",
	KindInt16:     "int16",
	KindUint16:    "uint16",
	KindInt32:     "int32",
	KindUint32:    "uint32",
	KindInt64:     "int64",
	KindUint64:    "uint64",
	KindFloat32:   "float32",
	KindFloat64:   "float64",
	KindBool:      "bool",
	KindWChar:     "wchar",
	KindPointer:   "pointer",
	KindAggregate: "aggregate",
	KindArray:     "array",
	KindEnum:      "enum",
}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsScalar reports whether values of the kind live in a single machine word.
func (k Kind) IsScalar() bool {
	return k <= KindWChar
}

// IsInteger reports whether the kind is a fixed-width integer.
func (k Kind) IsInteger() bool {
	return k <= KindUint64
}

// IsSigned reports whether the kind is a signed integer or float.
func (k Kind) IsSigned() bool {
	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64, KindFloat32, KindFloat64:
		return true
	}
	return false
}
