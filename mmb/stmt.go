package mmb

import (
	"fmt"

	"github.com/wippyai/mmbverify/errors"
)

// StmtKind is a statement opcode from the declaration stream.
type StmtKind byte

// Base strips the local flag from definitions and theorems.
func (k StmtKind) Base() StmtKind {
	switch k {
	case StmtLocalDef, StmtLocalThm:
		return k &^ StmtKind(stmtLocalFlag)
	}
	return k
}

// IsLocal reports whether the statement carries the local flag.
func (k StmtKind) IsLocal() bool {
	return k == StmtLocalDef || k == StmtLocalThm
}

func (k StmtKind) valid() bool {
	switch k {
	case StmtAxiom, StmtSort, StmtTerm, StmtThm, StmtLocalDef, StmtLocalThm:
		return true
	}
	return false
}

func (k StmtKind) String() string {
	switch k {
	case StmtAxiom:
		return "axiom"
	case StmtSort:
		return "sort"
	case StmtTerm:
		return "term"
	case StmtThm:
		return "theorem"
	case StmtLocalDef:
		return "local term"
	case StmtLocalThm:
		return "local theorem"
	}
	return fmt.Sprintf("stmt(%#02x)", byte(k))
}

// Stmt is one entry of the declaration stream.
type Stmt struct {
	Proof  ProofIter
	Offset int
	Kind   StmtKind
}

// StmtIter walks the declaration stream starting at ProofStreamStart.
type StmtIter struct {
	buf  []byte
	pos  int
	done bool
}

// Next decodes the next statement. It reports false at the end marker.
func (it *StmtIter) Next() (Stmt, bool, error) {
	if it.done {
		return Stmt{}, false, nil
	}
	pos := it.pos
	op, size, next, err := readCmd(it.buf, pos)
	if err != nil {
		return Stmt{}, false, decodeError(errors.KindTruncated, "statement", pos, err, "declaration stream not terminated")
	}
	if op == cmdEnd {
		it.done = true
		return Stmt{}, false, nil
	}
	kind := StmtKind(op)
	if !kind.valid() {
		return Stmt{}, false, decodeError(errors.KindInvalidData, "statement", pos, nil, "unknown statement command %#02x", op)
	}
	end := uint64(pos) + uint64(size)
	if end < uint64(next) || end > uint64(len(it.buf)) {
		return Stmt{}, false, decodeError(errors.KindOutOfBounds, "statement", pos, nil,
			"statement length %d outside stream (header %d bytes, %d available)", size, next-pos, len(it.buf)-pos)
	}
	it.pos = int(end)
	return Stmt{
		Kind:   kind,
		Offset: pos,
		Proof:  newProofIter(it.buf, next, int(end)),
	}, true, nil
}
