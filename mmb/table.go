package mmb

import (
	"strconv"

	"github.com/wippyai/mmbverify/errors"
	"github.com/wippyai/mmbverify/mmb/internal/binary"
)

// Term is a term or definition record from the term table.
type Term struct {
	args   []Type // binders followed by the return type
	unify  UnifyIter
	Num    uint32
	Offset int
	sort   byte
}

// IsDef reports whether the term is a definition with a body.
func (t Term) IsDef() bool { return t.sort&0x80 != 0 }

// RetSort returns the sort recorded in the table entry.
func (t Term) RetSort() uint8 { return t.sort & 0x7F }

// Args returns the binder types followed by the return type.
func (t Term) Args() []Type { return t.args }

// Binders returns the binder types without the return type.
func (t Term) Binders() []Type { return t.args[:len(t.args)-1] }

// NumArgs returns the binder count excluding the return slot.
func (t Term) NumArgs() int { return len(t.args) - 1 }

// Ret returns the declared return type.
func (t Term) Ret() Type { return t.args[len(t.args)-1] }

// Unify returns a fresh iterator over the definition's unify stream.
// Plain terms have an empty, already finished stream.
func (t Term) Unify() *UnifyIter {
	u := t.unify
	return &u
}

// Assert is an axiom or theorem record from the theorem table.
type Assert struct {
	args   []Type
	unify  UnifyIter
	Num    uint32
	Offset int
}

// Args returns the binder types.
func (a Assert) Args() []Type { return a.args }

// NumArgs returns the binder count.
func (a Assert) NumArgs() int { return len(a.args) }

// Unify returns a fresh iterator over the statement's unify stream.
func (a Assert) Unify() *UnifyIter {
	u := a.unify
	return &u
}

func readTypes(r *binary.Reader, n int, section string) ([]Type, error) {
	if uint64(r.Len()) < uint64(n)*8 {
		return nil, errors.New(errors.PhaseOutline, errors.KindOutOfBounds).
			Path(section, "args").
			Offset(r.Position()).
			Detail("%d binder types do not fit in %d bytes", n, r.Len()).
			Build()
	}
	types := make([]Type, n)
	for i := range types {
		v, err := r.ReadU64()
		if err != nil {
			return nil, r.WrapError(section, err)
		}
		types[i] = Type(v)
	}
	return types, nil
}

// Term reads entry n of the term table.
func (f *File) Term(n uint32) (Term, error) {
	if n >= f.Header.NumTerms {
		return Term{}, errors.NotFound(errors.PhaseOutline, "term", n)
	}
	pos := int(f.Header.TermsStart) + int(n)*termEntrySize
	r := binary.NewReaderAt(f.data, pos)
	section := "term " + strconv.Itoa(int(n))
	numArgs, err := r.ReadU16()
	if err != nil {
		return Term{}, r.WrapError(section, err)
	}
	sort, err := r.ReadU8()
	if err != nil {
		return Term{}, r.WrapError(section, err)
	}
	if _, err := r.ReadU8(); err != nil {
		return Term{}, r.WrapError(section, err)
	}
	pArgs, err := r.ReadU32()
	if err != nil {
		return Term{}, r.WrapError(section, err)
	}
	if err := r.Seek(int(pArgs)); err != nil {
		return Term{}, errors.OutOfBounds(errors.PhaseOutline, []string{"term", strconv.Itoa(int(n)), "p_args"}, int(pArgs), len(f.data))
	}
	args, err := readTypes(r, int(numArgs)+1, "term")
	if err != nil {
		return Term{}, err
	}
	t := Term{Num: n, Offset: pos, sort: sort, args: args}
	if t.IsDef() {
		t.unify = newUnifyIter(f.data, r.Position())
	} else {
		t.unify = UnifyIter{done: true}
	}
	return t, nil
}

// Assert reads entry n of the theorem table.
func (f *File) Assert(n uint32) (Assert, error) {
	if n >= f.Header.NumThms {
		return Assert{}, errors.NotFound(errors.PhaseOutline, "theorem", n)
	}
	pos := int(f.Header.ThmsStart) + int(n)*thmEntrySize
	r := binary.NewReaderAt(f.data, pos)
	section := "theorem " + strconv.Itoa(int(n))
	numArgs, err := r.ReadU16()
	if err != nil {
		return Assert{}, r.WrapError(section, err)
	}
	if _, err := r.ReadU16(); err != nil {
		return Assert{}, r.WrapError(section, err)
	}
	pArgs, err := r.ReadU32()
	if err != nil {
		return Assert{}, r.WrapError(section, err)
	}
	if err := r.Seek(int(pArgs)); err != nil {
		return Assert{}, errors.OutOfBounds(errors.PhaseOutline, []string{"theorem", strconv.Itoa(int(n)), "p_args"}, int(pArgs), len(f.data))
	}
	args, err := readTypes(r, int(numArgs), "theorem")
	if err != nil {
		return Assert{}, err
	}
	return Assert{
		Num:    n,
		Offset: pos,
		args:   args,
		unify:  newUnifyIter(f.data, r.Position()),
	}, nil
}
