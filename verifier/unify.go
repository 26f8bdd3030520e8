package verifier

import (
	"github.com/wippyai/mmbverify/errors"
	"github.com/wippyai/mmbverify/mmb"
	"github.com/wippyai/mmbverify/verifier/internal/arena"
)

// Matcher is the default Unifier. It walks the stored pattern top-down,
// keeping unmatched subterms on UStack and bindings on UHeap.
type Matcher struct{}

// RunUnify matches it against target. The stream must be consumed with
// nothing left to match.
func (Matcher) RunUnify(s *State, mode UnifyMode, it *mmb.UnifyIter, target arena.Handle) error {
	defer func() {
		s.UStack.Reset()
		s.UHeap.Reset()
	}()

	s.UStack.Reset()
	s.UStack.Push(target)
	for {
		cmd, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := unifyStep(s, mode, cmd); err != nil {
			return atCommand(err, cmd.Op.String(), cmd.Offset)
		}
	}
	if s.UStack.Len() != 0 {
		return errors.StackNotEmpty(errors.PhaseUnify, "ustack", s.UStack.Len())
	}
	return nil
}

func unifyStep(s *State, mode UnifyMode, cmd mmb.UnifyCmd) error {
	switch cmd.Op {
	case mmb.UnifyTerm, mmb.UnifyTermSave:
		h, err := s.UStack.Pop()
		if err != nil {
			return err
		}
		n, err := s.arena.Get(h)
		if err != nil {
			return err
		}
		if n.Kind != arena.KindApp || n.Idx != cmd.Data {
			return errors.New(errors.PhaseUnify, errors.KindMismatch).
				Value(cmd.Data).
				Detail("expected an application of term %d, got %s", cmd.Data, n.Kind).
				Build()
		}
		if cmd.Op == mmb.UnifyTermSave {
			s.UHeap.Push(h)
		}
		args := s.arena.Args(n)
		for i := len(args) - 1; i >= 0; i-- {
			s.UStack.Push(args[i])
		}
		return nil

	case mmb.UnifyRef:
		h, err := s.UStack.Pop()
		if err != nil {
			return err
		}
		bound, err := s.UHeap.At(cmd.Data)
		if err != nil {
			return err
		}
		if !s.arena.Equal(h, bound) {
			return errors.New(errors.PhaseUnify, errors.KindMismatch).
				Value(cmd.Data).
				Detail("subterm differs from unify heap entry %d", cmd.Data).
				Build()
		}
		return nil

	case mmb.UnifyDummy:
		if mode != UDef {
			return errors.New(errors.PhaseUnify, errors.KindUnsupported).
				Detail("dummy outside a definition (%s)", mode).
				Build()
		}
		h, err := s.UStack.Pop()
		if err != nil {
			return err
		}
		ty, err := s.arena.Type(h)
		if err != nil {
			return err
		}
		if !ty.IsBound() || uint32(ty.Sort()) != cmd.Data {
			return errors.TypeMismatch(errors.PhaseUnify, nil, mmb.MakeBound(uint8(cmd.Data), 0).String(), ty.String())
		}
		digit := ty.LowBits()
		for i, u := range s.UHeap.Items() {
			bits, err := s.arena.LowBits(u)
			if err != nil {
				return err
			}
			if bits&digit != 0 {
				return errors.Invariant(errors.PhaseUnify, "dummy variable not fresh: shares %#x with unify heap entry %d", digit, i)
			}
		}
		s.UHeap.Push(h)
		return nil

	case mmb.UnifyHyp:
		switch mode {
		case UThm:
			_, pf, err := pop(s, "a hypothesis proof", arena.KindProof)
			if err != nil {
				return err
			}
			s.UStack.Push(pf.L)
			return nil
		case UThmEnd:
			if s.UStack.Len() != 0 {
				return errors.StackNotEmpty(errors.PhaseUnify, "ustack", s.UStack.Len())
			}
			e, err := s.HStack.Pop()
			if err != nil {
				return err
			}
			s.UStack.Push(e)
			return nil
		}
		return errors.New(errors.PhaseUnify, errors.KindUnsupported).
			Detail("hypothesis in definition").
			Build()
	}

	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Value(byte(cmd.Op)).
		Detail("unknown unify command %s", cmd.Op).
		Build()
}
