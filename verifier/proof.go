package verifier

import (
	stderrors "errors"
	"strconv"

	"github.com/wippyai/mmbverify/errors"
	"github.com/wippyai/mmbverify/mmb"
	"github.com/wippyai/mmbverify/verifier/internal/arena"
)

// Prover is the default ProofRunner. Theorem applications and unfolding
// are matched through Unifier.
type Prover struct {
	Unifier    Unifier
	AllowSorry bool
}

// RunProof executes every command of it.
func (p *Prover) RunProof(s *State, mode ProofMode, it *mmb.ProofIter) error {
	for {
		cmd, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := p.step(s, mode, cmd); err != nil {
			return atCommand(err, cmd.Op.String(), cmd.Offset)
		}
	}
}

// atCommand fills in the command location of structured errors that do
// not carry one yet.
func atCommand(err error, op string, offset int) error {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		return errors.Wrap(errors.PhaseProof, errors.KindInvalidData, err, op)
	}
	c := *e
	if c.Offset == 0 {
		c.Offset = offset
	}
	if len(c.Path) == 0 {
		c.Path = []string{op}
	}
	return &c
}

func defModeOp(op mmb.ProofOp) bool {
	switch op {
	case mmb.ProofTerm, mmb.ProofTermSave, mmb.ProofRef, mmb.ProofDummy, mmb.ProofSave:
		return true
	}
	return false
}

func (p *Prover) step(s *State, mode ProofMode, cmd mmb.ProofCmd) error {
	if mode == ModeDef && !defModeOp(cmd.Op) {
		return errors.New(errors.PhaseProof, errors.KindUnsupported).
			Detail("%s not allowed in definition bodies", cmd.Op).
			Build()
	}

	switch cmd.Op {
	case mmb.ProofTerm, mmb.ProofTermSave:
		return p.term(s, cmd.Data, cmd.Op == mmb.ProofTermSave)
	case mmb.ProofRef:
		return p.ref(s, cmd.Data)
	case mmb.ProofDummy:
		return p.dummy(s, cmd.Data)
	case mmb.ProofThm, mmb.ProofThmSave:
		return p.thm(s, cmd.Data, cmd.Op == mmb.ProofThmSave)
	case mmb.ProofHyp:
		return p.hyp(s)
	case mmb.ProofConv:
		return p.conv(s)
	case mmb.ProofRefl:
		return p.refl(s)
	case mmb.ProofSymm:
		return p.symm(s)
	case mmb.ProofCong:
		return p.cong(s)
	case mmb.ProofUnfold:
		return p.unfold(s)
	case mmb.ProofConvCut:
		return p.convCut(s)
	case mmb.ProofConvRef:
		return p.convRef(s, cmd.Data)
	case mmb.ProofConvSave:
		return p.convSave(s)
	case mmb.ProofSave:
		return p.save(s)
	case mmb.ProofSorry:
		return p.sorry(s)
	}
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Value(byte(cmd.Op)).
		Detail("unknown proof command %s", cmd.Op).
		Build()
}

// pop removes the top of the stack and requires a node of one of kinds.
func pop(s *State, want string, kinds ...arena.Kind) (arena.Handle, arena.Node, error) {
	h, err := s.Stack.Pop()
	if err != nil {
		return 0, arena.Node{}, err
	}
	n, err := s.arena.Get(h)
	if err != nil {
		return 0, arena.Node{}, err
	}
	for _, k := range kinds {
		if n.Kind == k {
			return h, n, nil
		}
	}
	return 0, arena.Node{}, errors.TypeMismatch(errors.PhaseProof, nil, want, n.Kind.String())
}

func popExpr(s *State) (arena.Handle, arena.Node, error) {
	return pop(s, "an expression", arena.KindVar, arena.KindApp)
}

// term applies term num to the arguments on the stack:
//
//	S, e1 .. en -> S, (t e1 .. en)
//
// The result depends on every regular argument and, for definitions, on
// the bound arguments the return type names.
func (p *Prover) term(s *State, num uint32, save bool) error {
	term, err := s.outline.Term(num)
	if err != nil {
		return err
	}
	binders := term.Binders()
	args, err := s.Stack.PopN(len(binders))
	if err != nil {
		return err
	}

	var accum uint64
	bound := make([]uint64, 0, len(binders))
	for i, a := range args {
		ty, err := s.arena.Type(a)
		if err != nil {
			return err
		}
		target := binders[i]
		if !mmb.SortsCompatible(ty, target) {
			return argMismatch("term", num, i, target, ty)
		}
		if target.IsBound() {
			bound = append(bound, ty.LowBits())
			continue
		}
		deps := ty.LowBits()
		if term.IsDef() {
			for j, bv := range bound {
				if target.LowBits()&(1<<j) != 0 {
					deps &^= bv
				}
			}
		}
		accum |= deps
	}

	ret := term.Ret()
	if term.IsDef() {
		for j, bv := range bound {
			if ret.LowBits()&(1<<j) != 0 {
				accum |= bv
			}
		}
	}

	e := s.arena.NewApp(num, args, mmb.MakeType(ret.Sort(), accum))
	s.Stack.Push(e)
	if save {
		s.Heap.Push(e)
	}
	return nil
}

func argMismatch(kind string, num uint32, i int, want, got mmb.Type) error {
	return errors.TypeMismatch(errors.PhaseProof,
		[]string{kind, strconv.FormatUint(uint64(num), 10), "arg", strconv.Itoa(i)},
		want.String(), got.String())
}

// ref pushes heap entry i.
func (p *Prover) ref(s *State, i uint32) error {
	h, err := s.Heap.At(i)
	if err != nil {
		return err
	}
	n, err := s.arena.Get(h)
	if err != nil {
		return err
	}
	if !n.IsExpr() && n.Kind != arena.KindProof {
		return errors.TypeMismatch(errors.PhaseProof, []string{"heap", strconv.FormatUint(uint64(i), 10)},
			"an expression or proof", n.Kind.String())
	}
	s.Stack.Push(h)
	return nil
}

// dummy introduces a fresh bound variable of sort:
//
//	H; S -> H, x; S, x
func (p *Prover) dummy(s *State, sort uint32) error {
	if sort > 0x7F {
		return errors.OutOfBounds(errors.PhaseProof, []string{"sort"}, int(sort), 0x80)
	}
	mods, err := s.outline.SortMods(int(sort))
	if err != nil {
		return err
	}
	if mods.IsStrict() {
		return errors.Invariant(errors.PhaseProof, "dummy of strict sort %d", sort)
	}
	bv, err := s.TakeNextBV()
	if err != nil {
		return err
	}
	x := s.arena.NewVar(uint32(s.Heap.Len()), mmb.MakeBound(uint8(sort), bv))
	s.Stack.Push(x)
	s.Heap.Push(x)
	return nil
}

// thm applies theorem num:
//
//	S, |- h1 .. |- hk, e1 .. en, e -> S, |- e
//
// Bound arguments must be distinct variables, and a regular argument may
// only share variables with the bound arguments its binder depends on.
func (p *Prover) thm(s *State, num uint32, save bool) error {
	as, err := s.outline.Assert(num)
	if err != nil {
		return err
	}
	e, _, err := popExpr(s)
	if err != nil {
		return err
	}
	binders := as.Args()
	args, err := s.Stack.PopN(len(binders))
	if err != nil {
		return err
	}

	bound := make([]uint64, 0, len(binders))
	for i, a := range args {
		ty, err := s.arena.Type(a)
		if err != nil {
			return err
		}
		target := binders[i]
		if !mmb.SortsCompatible(ty, target) {
			return argMismatch("theorem", num, i, target, ty)
		}
		deps := ty.LowBits()
		if target.IsBound() {
			for _, bv := range bound {
				if bv&deps != 0 {
					return errors.Invariant(errors.PhaseProof, "theorem %d arg %d: bound variables not distinct", num, i)
				}
			}
			bound = append(bound, deps)
			continue
		}
		for j, bv := range bound {
			if target.LowBits()&(1<<j) == 0 && bv&deps != 0 {
				return errors.Invariant(errors.PhaseProof, "theorem %d arg %d: disjoint variable violation", num, i)
			}
		}
	}

	s.UHeap.Reset()
	for _, a := range args {
		s.UHeap.Push(a)
	}
	if err := p.Unifier.RunUnify(s, UThm, as.Unify(), e); err != nil {
		return err
	}
	pf := s.arena.NewProof(e)
	s.Stack.Push(pf)
	if save {
		s.Heap.Push(pf)
	}
	return nil
}

// hyp introduces a hypothesis:
//
//	H; S, e -> H, |- e; S
func (p *Prover) hyp(s *State) error {
	e, n, err := popExpr(s)
	if err != nil {
		return err
	}
	mods, err := s.outline.SortMods(int(n.Ty.Sort()))
	if err != nil {
		return err
	}
	if !mods.IsProvable() {
		return errors.Invariant(errors.PhaseProof, "hypothesis of non-provable sort %d", n.Ty.Sort())
	}
	s.Heap.Push(s.arena.NewProof(e))
	s.HStack.Push(e)
	return nil
}

// conv proves e1 from a proof of e2 and leaves the conversion as an
// obligation:
//
//	S, e1, |- e2 -> S, |- e1, e1 =?= e2
func (p *Prover) conv(s *State) error {
	_, pf, err := pop(s, "a proof", arena.KindProof)
	if err != nil {
		return err
	}
	e1, _, err := popExpr(s)
	if err != nil {
		return err
	}
	s.Stack.Push(s.arena.NewProof(e1))
	s.Stack.Push(s.arena.NewCoConv(e1, pf.L))
	return nil
}

func popCoConv(s *State) (arena.Node, error) {
	_, n, err := pop(s, "a conversion obligation", arena.KindCoConv)
	return n, err
}

// refl discharges e =?= e.
func (p *Prover) refl(s *State) error {
	cc, err := popCoConv(s)
	if err != nil {
		return err
	}
	if !s.arena.Equal(cc.L, cc.R) {
		return errors.New(errors.PhaseProof, errors.KindMismatch).
			Detail("refl: sides differ").
			Build()
	}
	return nil
}

// symm flips an obligation: e1 =?= e2 -> e2 =?= e1.
func (p *Prover) symm(s *State) error {
	cc, err := popCoConv(s)
	if err != nil {
		return err
	}
	s.Stack.Push(s.arena.NewCoConv(cc.R, cc.L))
	return nil
}

// cong splits an obligation between two applications of the same term
// into one obligation per argument, the first argument on top:
//
//	S, t a1 .. an =?= t b1 .. bn -> S, an =?= bn, .., a1 =?= b1
func (p *Prover) cong(s *State) error {
	cc, err := popCoConv(s)
	if err != nil {
		return err
	}
	l, err := s.arena.Get(cc.L)
	if err != nil {
		return err
	}
	r, err := s.arena.Get(cc.R)
	if err != nil {
		return err
	}
	if l.Kind != arena.KindApp || r.Kind != arena.KindApp || l.Idx != r.Idx {
		return errors.New(errors.PhaseProof, errors.KindMismatch).
			Detail("cong: sides are not applications of one term").
			Build()
	}
	la, ra := s.arena.Args(l), s.arena.Args(r)
	if len(la) != len(ra) {
		return errors.New(errors.PhaseProof, errors.KindMismatch).
			Detail("cong: %d arguments against %d", len(la), len(ra)).
			Build()
	}
	for i := len(la) - 1; i >= 0; i-- {
		s.Stack.Push(s.arena.NewCoConv(la[i], ra[i]))
	}
	return nil
}

// unfold replaces a definition application by its body:
//
//	S, (t es =?= e'), e -> S, (e =?= e')
//
// where e must match the body of t with es substituted.
func (p *Prover) unfold(s *State) error {
	e, _, err := popExpr(s)
	if err != nil {
		return err
	}
	cc, err := popCoConv(s)
	if err != nil {
		return err
	}
	l, err := s.arena.Get(cc.L)
	if err != nil {
		return err
	}
	if l.Kind != arena.KindApp {
		return errors.TypeMismatch(errors.PhaseProof, nil, "a definition application", l.Kind.String())
	}
	def, err := s.outline.Term(l.Idx)
	if err != nil {
		return err
	}
	if !def.IsDef() {
		return errors.Invariant(errors.PhaseProof, "unfold: term %d is not a definition", l.Idx)
	}

	s.UHeap.Reset()
	for _, a := range s.arena.Args(l) {
		s.UHeap.Push(a)
	}
	if err := p.Unifier.RunUnify(s, UDef, def.Unify(), e); err != nil {
		return err
	}
	s.Stack.Push(s.arena.NewCoConv(e, cc.R))
	return nil
}

// convCut proves an obligation separately:
//
//	S, e1 =?= e2 -> S, e1 = e2, e1 =?= e2
func (p *Prover) convCut(s *State) error {
	cc, err := popCoConv(s)
	if err != nil {
		return err
	}
	s.Stack.Push(s.arena.NewConv(cc.L, cc.R))
	s.Stack.Push(s.arena.NewCoConv(cc.L, cc.R))
	return nil
}

// convRef discharges an obligation with a saved conversion.
func (p *Prover) convRef(s *State, i uint32) error {
	cc, err := popCoConv(s)
	if err != nil {
		return err
	}
	h, err := s.Heap.At(i)
	if err != nil {
		return err
	}
	saved, err := s.arena.Get(h)
	if err != nil {
		return err
	}
	if saved.Kind != arena.KindConv {
		return errors.TypeMismatch(errors.PhaseProof, []string{"heap", strconv.FormatUint(uint64(i), 10)},
			"a conversion", saved.Kind.String())
	}
	if !s.arena.Equal(saved.L, cc.L) || !s.arena.Equal(saved.R, cc.R) {
		return errors.New(errors.PhaseProof, errors.KindMismatch).
			Detail("conv_ref: heap entry %d proves a different conversion", i).
			Build()
	}
	return nil
}

// convSave moves a proven conversion to the heap.
func (p *Prover) convSave(s *State) error {
	h, _, err := pop(s, "a conversion", arena.KindConv)
	if err != nil {
		return err
	}
	s.Heap.Push(h)
	return nil
}

// save copies the top of the stack to the heap.
func (p *Prover) save(s *State) error {
	h, err := s.Stack.Peek()
	if err != nil {
		return err
	}
	n, err := s.arena.Get(h)
	if err != nil {
		return err
	}
	if !n.IsExpr() && n.Kind != arena.KindProof {
		return errors.TypeMismatch(errors.PhaseProof, nil, "an expression or proof", n.Kind.String())
	}
	s.Heap.Push(h)
	return nil
}

// sorry asserts the expression on top of the stack without proof.
func (p *Prover) sorry(s *State) error {
	if !p.AllowSorry {
		return errors.Unsupported(errors.PhaseProof, "sorry is disabled")
	}
	e, _, err := popExpr(s)
	if err != nil {
		return err
	}
	s.Stack.Push(s.arena.NewProof(e))
	return nil
}
