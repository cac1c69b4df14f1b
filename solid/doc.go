// Package solid coalesces aggregate field ranges into solid ranges.
//
// Walking a struct layout yields one (offset, length) pair per field. Fields
// that share an offset (unions), touch (contiguous members) or overlap are
// merged so that bulk copy and compare paths issue one memory operation per
// solid range instead of one per field:
//
//	r, _ := solid.New([]uint64{0, 4, 10, 12}, []uint64{4, 4, 2, 2})
//	r.Ranges() // [{0 8} {10 4}]
package solid
