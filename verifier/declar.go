package verifier

import (
	"strconv"

	"github.com/wippyai/mmbverify/errors"
	"github.com/wippyai/mmbverify/mmb"
	"github.com/wippyai/mmbverify/verifier/internal/arena"
)

// loadArgs places one variable per binder on the heap. Bound binders must
// be numbered left to right without gaps, and regular binders may only
// depend on bound variables to their left. For terms the last binder is
// the return slot and is dropped from the heap afterwards.
func (s *State) loadArgs(args []mmb.Type, termdef bool) error {
	if s.Heap.Len() != 0 {
		return errors.Invariant(errors.PhaseLoadArgs, "heap holds %d entries before binders", s.Heap.Len())
	}
	if s.nextBV != 1 {
		return errors.Invariant(errors.PhaseLoadArgs, "bound variable counter at %#x before binders", s.nextBV)
	}

	for i, ty := range args {
		mods, err := s.outline.SortMods(int(ty.Sort()))
		if err != nil {
			return binderError(i, errors.KindNotFound, err, "sort %d not declared", ty.Sort())
		}
		if ty.IsBound() {
			if mods.IsStrict() {
				return binderError(i, errors.KindInvariant, nil, "strict sort %d cannot be bound", ty.Sort())
			}
			bv, err := s.TakeNextBV()
			if err != nil {
				return err
			}
			if digit := ty.LowBits(); digit != bv {
				return binderError(i, errors.KindInvariant, nil, "bound digit %#x, want %#x", digit, bv)
			}
		} else {
			deps := ty.LowBits()
			if deps&^(s.nextBV-1) != 0 {
				return binderError(i, errors.KindInvariant, nil,
					"dependencies %#x reach past the %#x bound variables declared so far", deps, s.nextBV-1)
			}
			if mods.IsFree() && deps != 0 {
				return binderError(i, errors.KindInvariant, nil, "free sort %d carries dependencies %#x", ty.Sort(), deps)
			}
		}
		s.Heap.Push(s.arena.NewVar(uint32(i), ty))
	}

	if termdef {
		if _, err := s.Heap.Pop(); err != nil {
			return err
		}
	}
	return nil
}

func binderError(i int, kind errors.Kind, cause error, detail string, args ...any) error {
	return errors.New(errors.PhaseLoadArgs, kind).
		Path("binder", strconv.Itoa(i)).
		Cause(cause).
		Detail(detail, args...).
		Build()
}

// verifyTermdef checks a term or definition. Plain terms only need their
// binders checked; definitions replay the body and match it against the
// stored unify stream.
func (s *State) verifyTermdef(term mmb.Term, proof *mmb.ProofIter) error {
	if err := s.loadArgs(term.Args(), true); err != nil {
		return err
	}
	if !term.IsDef() {
		return nil
	}

	if err := s.runProof(ModeDef, proof); err != nil {
		return err
	}
	final, err := s.popFinal()
	if err != nil {
		return err
	}
	ty, err := s.arena.Type(final)
	if err != nil {
		return err
	}
	if s.Stack.Len() != 0 {
		return errors.StackNotEmpty(errors.PhaseVerify, "stack", s.Stack.Len())
	}
	if !mmb.SortsCompatible(ty, term.Ret()) {
		return errors.TypeMismatch(errors.PhaseVerify, []string{"body"}, term.Ret().String(), ty.String())
	}
	if err := s.seedUHeap(term.NumArgs()); err != nil {
		return err
	}
	return s.runUnify(UDef, term.Unify(), final)
}

// verifyAssert checks an axiom or theorem. The proof must leave a single
// value: a proof for theorems, an expression of a provable sort or a proof
// for axioms. Its statement is then matched against the stored unify
// stream.
func (s *State) verifyAssert(kind mmb.StmtKind, as mmb.Assert, proof *mmb.ProofIter) error {
	if err := s.loadArgs(as.Args(), false); err != nil {
		return err
	}
	if err := s.runProof(ModeThm, proof); err != nil {
		return err
	}

	top, err := s.popFinal()
	if err != nil {
		return err
	}
	n, err := s.arena.Get(top)
	if err != nil {
		return err
	}
	var final arena.Handle
	switch {
	case n.Kind == arena.KindProof:
		final = n.L
	case kind.Base() == mmb.StmtAxiom && n.IsExpr():
		mods, err := s.outline.SortMods(int(n.Ty.Sort()))
		if err != nil {
			return err
		}
		if !mods.IsProvable() {
			return errors.Invariant(errors.PhaseVerify, "axiom statement has non-provable sort %d", n.Ty.Sort())
		}
		final = top
	default:
		return errors.TypeMismatch(errors.PhaseVerify, []string{"result"}, "a proof", n.Kind.String())
	}

	if s.Stack.Len() != 0 {
		return errors.StackNotEmpty(errors.PhaseVerify, "stack", s.Stack.Len())
	}
	if err := s.seedUHeap(as.NumArgs()); err != nil {
		return err
	}
	if err := s.runUnify(UThmEnd, as.Unify(), final); err != nil {
		return err
	}
	if s.HStack.Len() != 0 {
		return errors.StackNotEmpty(errors.PhaseVerify, "hstack", s.HStack.Len())
	}
	return nil
}

func (s *State) popFinal() (arena.Handle, error) {
	h, err := s.Stack.Pop()
	if err != nil {
		return 0, errors.New(errors.PhaseVerify, errors.KindStackUnderflow).
			Path("stack").
			Detail("expected a value").
			Build()
	}
	return h, nil
}

func (s *State) seedUHeap(n int) error {
	if s.UHeap.Len() != 0 {
		return errors.Invariant(errors.PhaseVerify, "unify heap holds %d entries before matching", s.UHeap.Len())
	}
	for _, h := range s.Heap.Items()[:n] {
		s.UHeap.Push(h)
	}
	return nil
}
