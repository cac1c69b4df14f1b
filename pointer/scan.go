package pointer

import (
	"bytes"

	"github.com/wippyai/nativeptr"
	"github.com/wippyai/nativeptr/errors"
)

const scanChunk = 256

// IndexByte returns the byte offset, relative to off, of the first c at or
// after off. The scan stops at the end of the validity window, or at the end
// of the mapped range for unbounded pointers, and fails if c is not found.
func (p *Pointer) IndexByte(off int64, c byte) (uint64, error) {
	return p.scan(off, 1, func(b []byte) int {
		return bytes.IndexByte(b, c)
	})
}

// IndexZero returns the number of width-byte units before the first zero
// unit at or after off, like strlen and wcslen.
func (p *Pointer) IndexZero(off int64, width uint64) (uint64, error) {
	if width == 1 {
		return p.IndexByte(off, 0)
	}
	if width == 0 || width > 8 {
		return 0, errors.InvalidInput(errors.PhaseAccess, "invalid code unit width")
	}
	n, err := p.scan(off, width, func(b []byte) int {
		for i := 0; i+int(width) <= len(b); i += int(width) {
			zero := true
			for _, x := range b[i : i+int(width)] {
				if x != 0 {
					zero = false
					break
				}
			}
			if zero {
				return i
			}
		}
		return -1
	})
	return n / width, err
}

// scan feeds find whole units in chunks and returns the byte offset of the
// first match.
func (p *Pointer) scan(off int64, width uint64, find func([]byte) int) (uint64, error) {
	if p.Released() {
		return 0, errors.AlreadyReleased(errors.PhaseAccess, p.addr, "access after release")
	}
	start, err := p.checkedAddress(errors.PhaseAccess, off, 0)
	if err != nil {
		return 0, err
	}
	limit, bounded := p.scanLimit()

	chunk := scanChunk - scanChunk%width
	var pos uint64
	for {
		addr := start + pos
		n := chunk
		if bounded {
			if addr >= limit || limit-addr < width {
				break
			}
			n = min(n, (limit-addr)/width*width)
		}
		b, err := p.mem.Read(addr, n)
		if err != nil {
			if !bounded && n > width {
				// shrink towards the unmapped edge one unit at a time
				b, err = p.mem.Read(addr, width)
			}
			if err != nil {
				return 0, err
			}
		}
		if i := find(b); i >= 0 {
			return pos + uint64(i), nil
		}
		pos += uint64(len(b))
	}

	return 0, errors.New(errors.PhaseAccess, errors.KindOutOfBounds).
		Address(p.addr).
		Detail("no match in %d-byte units before 0x%x", width, limit).
		Build()
}

// scanLimit returns the end address a scan may not cross.
func (p *Pointer) scanLimit() (uint64, bool) {
	if p.bounded {
		return p.end, true
	}
	if s, ok := p.mem.(nativeptr.MemorySizer); ok {
		_, end := s.Bounds()
		return end, true
	}
	return 0, false
}
