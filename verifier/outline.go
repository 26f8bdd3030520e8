package verifier

import (
	"fmt"

	"github.com/wippyai/mmbverify/errors"
	"github.com/wippyai/mmbverify/mmb"
)

// Decl identifies one statement of the declaration stream.
type Decl struct {
	Kind   mmb.StmtKind
	Num    uint32 // sort index, term number or theorem number
	Offset int    // byte offset of the statement command
}

func (d Decl) String() string {
	switch d.Kind.Base() {
	case mmb.StmtSort:
		return fmt.Sprintf("sort %d", d.Num)
	case mmb.StmtTerm:
		return fmt.Sprintf("term %d", d.Num)
	case mmb.StmtAxiom:
		return fmt.Sprintf("axiom %d", d.Num)
	case mmb.StmtThm:
		return fmt.Sprintf("theorem %d", d.Num)
	}
	return fmt.Sprintf("%s %d", d.Kind, d.Num)
}

// Outline is the append-only table of committed declarations. Table
// records live in the certificate; the outline tracks how far each table
// has been verified.
type Outline struct {
	file     *mmb.File
	numSorts int
	numTerms uint32
	numThms  uint32
}

// NewOutline creates an empty outline over f.
func NewOutline(f *mmb.File) *Outline {
	return &Outline{file: f}
}

// NumSorts returns the number of committed sorts.
func (o *Outline) NumSorts() int { return o.numSorts }

// NumTerms returns the number of committed terms and definitions.
func (o *Outline) NumTerms() uint32 { return o.numTerms }

// NumThms returns the number of committed axioms and theorems.
func (o *Outline) NumThms() uint32 { return o.numThms }

// SortMods returns the modifiers of committed sort i.
func (o *Outline) SortMods(i int) (mmb.SortMods, error) {
	if i >= o.numSorts {
		return 0, errors.NotFound(errors.PhaseOutline, "sort", i)
	}
	return o.file.SortMods(i)
}

// TermByNum reads entry n of the term table whether or not it has been
// committed.
func (o *Outline) TermByNum(n uint32) (mmb.Term, error) {
	return o.file.Term(n)
}

// AssertByNum reads entry n of the theorem table whether or not it has
// been committed.
func (o *Outline) AssertByNum(n uint32) (mmb.Assert, error) {
	return o.file.Assert(n)
}

// Term returns committed term n. Proofs may only refer to declarations
// that precede them.
func (o *Outline) Term(n uint32) (mmb.Term, error) {
	if n >= o.numTerms {
		return mmb.Term{}, errors.NotFound(errors.PhaseOutline, "term", n)
	}
	return o.file.Term(n)
}

// Assert returns committed theorem n.
func (o *Outline) Assert(n uint32) (mmb.Assert, error) {
	if n >= o.numThms {
		return mmb.Assert{}, errors.NotFound(errors.PhaseOutline, "theorem", n)
	}
	return o.file.Assert(n)
}

// AddDecl commits d. It must be the next declaration of its kind.
func (o *Outline) AddDecl(d Decl) error {
	switch d.Kind.Base() {
	case mmb.StmtSort:
		if int(d.Num) != o.numSorts {
			return outOfOrder(d, uint32(o.numSorts))
		}
		mods, err := o.file.SortMods(o.numSorts)
		if err != nil {
			return err
		}
		if !mods.Valid() {
			return errors.New(errors.PhaseOutline, errors.KindInvalidData).
				Path("sort", fmt.Sprint(d.Num)).
				Value(byte(mods)).
				Detail("reserved modifier bits set in %#02x", byte(mods)).
				Build()
		}
		o.numSorts++

	case mmb.StmtTerm:
		if d.Num != o.numTerms {
			return outOfOrder(d, o.numTerms)
		}
		term, err := o.file.Term(d.Num)
		if err != nil {
			return err
		}
		if err := o.checkTerm(term); err != nil {
			return err
		}
		o.numTerms++

	case mmb.StmtAxiom, mmb.StmtThm:
		if d.Num != o.numThms {
			return outOfOrder(d, o.numThms)
		}
		as, err := o.file.Assert(d.Num)
		if err != nil {
			return err
		}
		for i, ty := range as.Args() {
			if int(ty.Sort()) >= o.numSorts {
				return undeclaredSort(d, i, ty.Sort())
			}
		}
		o.numThms++

	default:
		return errors.New(errors.PhaseOutline, errors.KindUnsupported).
			Detail("cannot commit %s", d.Kind).
			Build()
	}
	return nil
}

func (o *Outline) checkTerm(term mmb.Term) error {
	d := Decl{Kind: mmb.StmtTerm, Num: term.Num}
	for i, ty := range term.Args() {
		if int(ty.Sort()) >= o.numSorts {
			return undeclaredSort(d, i, ty.Sort())
		}
	}
	ret := term.Ret()
	if ret.IsBound() {
		return errors.Invariant(errors.PhaseOutline, "%s returns a bound variable", d)
	}
	if ret.Sort() != term.RetSort() {
		return errors.Invariant(errors.PhaseOutline, "%s table sort %d disagrees with return type sort %d", d, term.RetSort(), ret.Sort())
	}
	mods, err := o.file.SortMods(int(ret.Sort()))
	if err != nil {
		return err
	}
	if mods.IsPure() {
		return errors.Invariant(errors.PhaseOutline, "%s constructs pure sort %d", d, ret.Sort())
	}
	return nil
}

func outOfOrder(d Decl, want uint32) error {
	return errors.New(errors.PhaseOutline, errors.KindInvariant).
		Value(d.Num).
		Detail("%s committed out of order, next is %d", d, want).
		Build()
}

func undeclaredSort(d Decl, binder int, sort uint8) error {
	return errors.New(errors.PhaseOutline, errors.KindNotFound).
		Path("binder", fmt.Sprint(binder)).
		Value(sort).
		Detail("%s uses undeclared sort %d", d, sort).
		Build()
}
