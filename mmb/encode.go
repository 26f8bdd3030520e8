package mmb

import (
	"github.com/wippyai/mmbverify/mmb/internal/binary"
)

// Builder assembles an MMB certificate. Declarations are emitted in the
// order they are added; each call also appends the matching statement.
type Builder struct {
	sorts []SortMods
	terms []termSpec
	thms  []thmSpec
	stmts []stmtSpec
}

type termSpec struct {
	args  []Type
	unify []byte
	ret   Type
	def   bool
}

type thmSpec struct {
	args  []Type
	unify []byte
}

type stmtSpec struct {
	proof []byte
	kind  StmtKind
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Sort declares a sort and returns its index.
func (b *Builder) Sort(mods SortMods) uint8 {
	b.sorts = append(b.sorts, mods)
	b.stmts = append(b.stmts, stmtSpec{kind: StmtSort})
	return uint8(len(b.sorts) - 1)
}

// Term declares an opaque term and returns its number.
func (b *Builder) Term(args []Type, ret Type) uint32 {
	b.terms = append(b.terms, termSpec{args: args, ret: ret})
	b.stmts = append(b.stmts, stmtSpec{kind: StmtTerm})
	return uint32(len(b.terms) - 1)
}

// Def declares a definition whose body is built by proof and described by
// unify, and returns its number.
func (b *Builder) Def(args []Type, ret Type, proof, unify []byte) uint32 {
	b.terms = append(b.terms, termSpec{args: args, ret: ret, def: true, unify: unify})
	b.stmts = append(b.stmts, stmtSpec{kind: StmtTerm, proof: proof})
	return uint32(len(b.terms) - 1)
}

// Axiom declares an axiom and returns its theorem-table number.
func (b *Builder) Axiom(args []Type, proof, unify []byte) uint32 {
	b.thms = append(b.thms, thmSpec{args: args, unify: unify})
	b.stmts = append(b.stmts, stmtSpec{kind: StmtAxiom, proof: proof})
	return uint32(len(b.thms) - 1)
}

// Theorem declares a theorem and returns its theorem-table number.
func (b *Builder) Theorem(args []Type, proof, unify []byte) uint32 {
	b.thms = append(b.thms, thmSpec{args: args, unify: unify})
	b.stmts = append(b.stmts, stmtSpec{kind: StmtThm, proof: proof})
	return uint32(len(b.thms) - 1)
}

// SetProof replaces the proof bytes of statement i.
func (b *Builder) SetProof(i int, proof []byte) {
	b.stmts[i].proof = proof
}

// SetKind replaces the opcode of statement i.
func (b *Builder) SetKind(i int, kind StmtKind) {
	b.stmts[i].kind = kind
}

// Bytes encodes the certificate.
func (b *Builder) Bytes() []byte {
	h := Header{
		Magic:    Magic,
		Version:  Version,
		NumSorts: uint8(len(b.sorts)),
		NumTerms: uint32(len(b.terms)),
		NumThms:  uint32(len(b.thms)),
	}
	w := binary.NewWriter()
	w.WriteBytes(h.AppendTo(nil))
	for _, s := range b.sorts {
		w.Byte(byte(s))
	}

	w.Align(8)
	termsStart := w.Len()
	for _, t := range b.terms {
		sort := t.ret.Sort()
		if t.def {
			sort |= 0x80
		}
		w.U16(uint16(len(t.args)))
		w.Byte(sort)
		w.Byte(0)
		w.U32(0)
	}
	thmsStart := w.Len()
	for _, t := range b.thms {
		w.U16(uint16(len(t.args)))
		w.U16(0)
		w.U32(0)
	}

	for i, t := range b.terms {
		w.Align(8)
		w.PutU32At(termsStart+i*termEntrySize+4, uint32(w.Len()))
		for _, a := range t.args {
			w.U64(uint64(a))
		}
		w.U64(uint64(t.ret))
		if t.def {
			w.WriteBytes(t.unify)
		}
	}
	for i, t := range b.thms {
		w.Align(8)
		w.PutU32At(thmsStart+i*thmEntrySize+4, uint32(w.Len()))
		for _, a := range t.args {
			w.U64(uint64(a))
		}
		w.WriteBytes(t.unify)
	}

	proofStart := w.Len()
	for _, s := range b.stmts {
		start := w.Len()
		w.Byte(byte(s.kind) | cmdData32)
		w.U32(0)
		w.WriteBytes(s.proof)
		w.PutU32At(start+1, uint32(w.Len()-start))
	}
	w.Byte(cmdEnd)

	w.PutU32At(16, uint32(termsStart))
	w.PutU32At(20, uint32(thmsStart))
	w.PutU32At(24, uint32(proofStart))
	return w.Bytes()
}
