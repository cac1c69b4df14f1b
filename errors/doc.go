// Package errors provides structured error types for the nativeptr library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: the address involved, descriptor name,
// field path and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseAccess, errors.KindTypeMismatch).
//		Address(p.Address()).
//		Path("header", "length").
//		Type("uint32").
//		Detail("cannot store %T", v).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(errors.PhaseAccess, addr, requested, valid)
//	err := errors.NullAddress(errors.PhaseConstruct)
//
// Errors are programmer errors to fix, not retryable conditions. All errors
// implement the standard error interface and support errors.Is/As; a target
// without a Phase matches any error of the same Kind:
//
//	if errors.Is(err, &errors.Error{Kind: errors.KindOutOfBounds}) { ... }
package errors
