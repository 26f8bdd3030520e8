// Package errors provides structured error types for the MMB verifier.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the declaration being verified, the byte offset of the
// offending command, an optional field path and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLoadArgs, errors.KindInvariant).
//		Path("binder", "2").
//		Value(digit).
//		Detail("bound digit %#x, want %#x", digit, want).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Truncated(errors.PhaseHeader, "num_terms", 4, 1)
//	err := errors.OutOfBounds(errors.PhaseProof, []string{"heap"}, 10, 5)
//
// Declaration context is attached by the driver once a declaration fails:
//
//	return errors.InDecl(err, "theorem 12", offset)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
