package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseConstruct Phase = "construct" // pointer creation and derivation
	PhaseAccess    Phase = "access"    // typed reads and writes
	PhaseRelease   Phase = "release"   // ownership and deallocation
	PhaseAlloc     Phase = "alloc"     // allocator operations
	PhaseDescribe  Phase = "describe"  // descriptor construction
	PhaseEncode    Phase = "encode"    // Go to memory
	PhaseDecode    Phase = "decode"    // memory to Go
	PhaseLayout    Phase = "layout"    // range coalescing and field layouts
)

// Kind categorizes the error
type Kind string

const (
	KindOutOfBounds             Kind = "out_of_bounds"
	KindUntypedAccess           Kind = "untyped_access"
	KindNullAddress             Kind = "null_address"
	KindAlreadyReleased         Kind = "already_released"
	KindInvalidStringLayout     Kind = "invalid_string_layout"
	KindUnsupportedConstruction Kind = "unsupported_construction"
	KindCapacityExceeded        Kind = "capacity_exceeded"
	KindUnmapped                Kind = "unmapped"
	KindAllocation              Kind = "allocation"
	KindInvalidInput            Kind = "invalid_input"
	KindInvalidEnum             Kind = "invalid_enum"
	KindTypeMismatch            Kind = "type_mismatch"
	KindUnsupported             Kind = "unsupported"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Type    string
	Detail  string
	Path    []string
	Address uint64
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Address != 0 {
		fmt.Fprintf(&b, " @0x%x", e.Address)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Type != "" {
		b.WriteString(": type ")
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target with an empty Phase matches on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// IsKind reports whether err, or any error it wraps, is an *Error of kind k.
// Both single and multi-error wrapping (Unwrap() []error, as produced by
// multierr and errors.Join) are followed.
func IsKind(err error, k Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == k {
			return true
		}
		switch u := err.(type) {
		case interface{ Unwrap() error }:
			err = u.Unwrap()
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				if IsKind(inner, k) {
					return true
				}
			}
			return false
		default:
			return false
		}
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the descriptor name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Address sets the address the failure refers to
func (b *Builder) Address(addr uint64) *Builder {
	b.err.Address = addr
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Range is a half-open byte range [Start, End).
type Range struct {
	Start uint64
	End   uint64
}

func (r Range) String() string {
	return fmt.Sprintf("[0x%x, 0x%x)", r.Start, r.End)
}

// Convenience constructors for common error patterns

// OutOfBounds creates an error for an access outside a validity window
func OutOfBounds(phase Phase, addr uint64, requested, valid Range) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindOutOfBounds,
		Address: addr,
		Detail:  fmt.Sprintf("requested %s (%d bytes) outside valid %s", requested, requested.End-requested.Start, valid),
		Value:   requested,
	}
}

// Unmapped creates an error for an access the memory backend cannot serve
func Unmapped(phase Phase, addr, length uint64) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindUnmapped,
		Address: addr,
		Detail:  fmt.Sprintf("%d bytes at 0x%x not mapped", length, addr),
	}
}

// UntypedAccess creates an error for an operation that needs a descriptor
func UntypedAccess(phase Phase, addr uint64, op string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindUntypedAccess,
		Address: addr,
		Detail:  fmt.Sprintf("%s requires a typed pointer", op),
	}
}

// NullAddress creates an error for a pointer construction at address zero
func NullAddress(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNullAddress,
		Detail: "address is zero",
	}
}

// AlreadyReleased creates an error for a use or release after release
func AlreadyReleased(phase Phase, addr uint64, detail string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindAlreadyReleased,
		Address: addr,
		Detail:  detail,
	}
}

// InvalidStringLayout creates an error for a failed string header check
func InvalidStringLayout(addr uint64, check string, value any) *Error {
	return &Error{
		Phase:   PhaseDecode,
		Kind:    KindInvalidStringLayout,
		Address: addr,
		Detail:  fmt.Sprintf("not a string: %s (got %v)", check, value),
		Value:   value,
	}
}

// UnsupportedConstruction creates an error for a string type that cannot be allocated
func UnsupportedConstruction(what string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindUnsupportedConstruction,
		Type:   what,
		Detail: "fresh construction not supported, a target is required",
	}
}

// CapacityExceeded creates an error for a write larger than a fixed-capacity target
func CapacityExceeded(phase Phase, addr uint64, need, capacity uint64) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindCapacityExceeded,
		Address: addr,
		Detail:  fmt.Sprintf("target not large enough: need %d, capacity %d", need, capacity),
		Value:   need,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size, align uint64, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
		Cause:  cause,
	}
}

// InvalidEnum creates an invalid enum value error
func InvalidEnum(phase Phase, value any, enumType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidEnum,
		Type:   enumType,
		Detail: fmt.Sprintf("invalid enum value %v", value),
		Value:  value,
	}
}

// TypeMismatch creates an error for a Go value that does not fit a descriptor
func TypeMismatch(phase Phase, path []string, typeName string, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Type:   typeName,
		Detail: fmt.Sprintf("cannot use %T", value),
		Value:  value,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
