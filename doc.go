// Package mmbverify checks Metamath Zero proof certificates in the MMB
// binary format.
//
// A certificate carries its own declarations: sorts, term constructors,
// definitions, axioms and theorems, each followed by a compact proof
// stream. The verifier replays every proof on a stack machine, matches
// the result against the declared statement with a unify stream, and
// commits the declaration so later proofs may refer to it.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	mmbverify/           Root package with one-call Check helpers
//	├── mmb/             Binary layout: header, tables, types, streams, Builder
//	├── verifier/        Outline, session state, proof and unify engines
//	├── errors/          Structured error types for debugging
//	├── internal/config/ Environment configuration for the CLI
//	└── cmd/mmbcheck/    Command-line driver with an optional TUI
//
// # Quick Start
//
// Verify a certificate on disk:
//
//	outline, err := mmbverify.CheckFile(ctx, "peano.mmb", verifier.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(outline.NumThms(), "theorems verified")
//
// Errors are *errors.Error values. Use errors.Is with a Phase and Kind
// template to classify them:
//
//	if stderrors.Is(err, &errors.Error{Phase: errors.PhaseUnify, Kind: errors.KindMismatch}) {
//	    // statement did not match its proof
//	}
//
// # Thread Safety
//
// mmb.File is immutable after Open and may be shared. A Verifier owns
// mutable session state and must be used by a single goroutine.
package mmbverify
