package pointer

import (
	"bytes"

	"go.uber.org/multierr"

	"github.com/wippyai/nativeptr/errors"
)

// Get reads element i through the pointer's descriptor.
func (p *Pointer) Get(i int64) (any, error) {
	if p.desc == nil {
		return nil, errors.UntypedAccess(errors.PhaseAccess, p.addr, "Get")
	}
	return p.desc.Get(p, i)
}

// Set writes element i through the pointer's descriptor.
func (p *Pointer) Set(i int64, v any) error {
	if p.desc == nil {
		return errors.UntypedAccess(errors.PhaseAccess, p.addr, "Set")
	}
	return p.desc.Set(p, i, v)
}

// ToArray reads n elements through the pointer's descriptor.
func (p *Pointer) ToArray(n uint64) (any, error) {
	if p.desc == nil {
		return nil, errors.UntypedAccess(errors.PhaseAccess, p.addr, "ToArray")
	}
	return p.desc.ToArray(p, n)
}

// ToBuffer returns n elements as bytes aliasing the memory.
func (p *Pointer) ToBuffer(n uint64) ([]byte, error) {
	if p.desc == nil {
		return nil, errors.UntypedAccess(errors.PhaseAccess, p.addr, "ToBuffer")
	}
	return p.desc.ToBuffer(p, n)
}

// CopyTo copies one element of the pointer's descriptor to dst. Only the
// solid ranges of an aggregate are transferred; padding in dst is untouched.
func (p *Pointer) CopyTo(dst *Pointer) error {
	if p.desc == nil {
		return errors.UntypedAccess(errors.PhaseAccess, p.addr, "CopyTo")
	}
	return copyRanges(p.desc, p, dst)
}

// Equal compares one element of the pointer's descriptor with other over the
// descriptor's solid ranges.
func (p *Pointer) Equal(other *Pointer) (bool, error) {
	if p.desc == nil {
		return false, errors.UntypedAccess(errors.PhaseAccess, p.addr, "Equal")
	}
	equal := true
	err := p.desc.SolidRanges().Each(func(offset, length uint64) error {
		a, err := p.view(errors.PhaseAccess, int64(offset), length)
		if err != nil {
			return err
		}
		b, err := other.view(errors.PhaseAccess, int64(offset), length)
		if err != nil {
			return err
		}
		if !bytes.Equal(a, b) {
			equal = false
			return errStop
		}
		return nil
	})
	if err != nil && err != errStop {
		return false, err
	}
	return equal, nil
}

var errStop = errors.New(errors.PhaseAccess, errors.KindInvalidInput).Detail("stop").Build()

func copyRanges(d *Descriptor, src, dst *Pointer) error {
	if _, err := src.checkedAddress(errors.PhaseAccess, 0, d.size); err != nil {
		return err
	}
	if _, err := dst.checkedAddress(errors.PhaseAccess, 0, d.size); err != nil {
		return err
	}
	return d.SolidRanges().Each(func(offset, length uint64) error {
		b, err := src.view(errors.PhaseAccess, int64(offset), length)
		if err != nil {
			return err
		}
		return dst.write(int64(offset), b)
	})
}

// setAll runs store against the size bytes at off. When store fails the
// bytes are restored, so a failed Set leaves memory as it was.
func setAll(p *Pointer, off int64, size uint64, store func() error) error {
	saved, err := p.BytesAt(off, size)
	if err != nil {
		return err
	}
	if err := store(); err != nil {
		if len(saved) > 0 {
			err = multierr.Append(err, p.write(off, saved))
		}
		return err
	}
	return nil
}
