// Package mmb provides MMB proof certificate decoding and encoding.
//
// An MMB file is a little-endian binary made of a fixed 40-byte header,
// one modifier byte per sort, a term table, a theorem table, the binder
// types and unify streams those tables point to, and a declaration
// stream holding one statement per sort, term, definition, axiom and
// theorem.
//
// # Parsing
//
//	f, err := mmb.Open(data)
//	if err != nil {
//	    return err
//	}
//	stmts := f.Statements()
//	for {
//	    st, ok, err := stmts.Next()
//	    if err != nil || !ok {
//	        break
//	    }
//	    ...
//	}
//
// Table records are read on demand through File.Term and File.Assert.
// Nothing is copied out of the buffer except the binder type arrays.
//
// # Streams
//
// Statements, proof instructions and unify instructions share one command
// encoding: the low six bits of the command byte select the opcode, the
// high two bits the width of a little-endian immediate (none, 1, 2 or 4
// bytes). A zero opcode ends a stream.
//
// # Encoding
//
// Builder assembles certificates for tests and tooling:
//
//	b := mmb.NewBuilder()
//	s := b.Sort(0)
//	b.Term(nil, mmb.MakeType(s, 0))
//	data := b.Bytes()
package mmb
