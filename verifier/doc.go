// Package verifier checks MMB proof certificates.
//
// Each declaration of the certificate is verified in its own session: the
// binders are loaded onto the heap, the proof stream is replayed on a
// small stack machine, and the result is unified against the statement
// stored in the declaration's table record. Only then is the declaration
// committed to the Outline, making it visible to later proofs.
//
// # Main Types
//
//   - Verifier: walks the declaration stream of one file
//   - State: stacks, heaps and bound-variable counter of one session
//   - Outline: committed sorts, terms and theorems
//   - Prover, Matcher: default proof replay and unification engines
//
// # Example
//
//	f, err := mmb.Open(data)
//	if err != nil {
//	    return err
//	}
//	v := verifier.New(f, verifier.DefaultOptions())
//	if err := v.Verify(ctx); err != nil {
//	    return err
//	}
//
// Verification is fail-fast: the first failing declaration aborts the
// run, since later declarations may depend on it.
package verifier
