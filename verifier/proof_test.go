package verifier

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/wippyai/mmbverify/errors"
	"github.com/wippyai/mmbverify/mmb"
	"github.com/wippyai/mmbverify/verifier/internal/arena"
)

// session returns a fresh session over the committed logic file.
func session(t *testing.T) *State {
	t.Helper()
	s := committed(t, DefaultOptions()).state
	s.reset()
	return s
}

// obligation replaces the two expressions on top of the stack with
// lhs =?= rhs.
func obligation(t *testing.T, s *State) {
	t.Helper()
	pair, err := s.Stack.PopN(2)
	if err != nil {
		t.Fatalf("PopN: %v", err)
	}
	s.Stack.Push(s.arena.NewCoConv(pair[0], pair[1]))
}

func topNode(t *testing.T, s *State) arena.Node {
	t.Helper()
	h, err := s.Stack.Peek()
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	n, _ := s.arena.Get(h)
	return n
}

var (
	top     = mmb.ProofTerm.With(termTop)
	imp     = mmb.ProofTerm.With(termImp)
	dumNat  = mmb.ProofDummy.With(uint32(sortNat))
	isz     = mmb.ProofTerm.With(termIsz)
	thmDVOp = mmb.ProofThm.With(thmDV)
)

func TestTermApplicationDeps(t *testing.T) {
	s := session(t)
	// isz x depends on x.
	if err := runProof(s, ModeThm, dumNat, mmb.ProofRef.With(0), isz); err != nil {
		t.Fatalf("RunProof: %v", err)
	}
	n := topNode(t, s)
	if n.Ty.LowBits() != 1 {
		t.Errorf("isz x deps: got %#x, want 0x1", n.Ty.LowBits())
	}
	if n.Ty.Sort() != sortWff {
		t.Errorf("isz x sort: got %d, want %d", n.Ty.Sort(), sortWff)
	}
}

func TestTermArgumentSorts(t *testing.T) {
	s := session(t)
	// all needs a bound nat first; top is a wff expression.
	err := runProof(s, ModeThm, top, top, mmb.ProofTerm.With(termAll))
	wantKind(t, err, errors.PhaseProof, errors.KindTypeMismatch)
}

func TestCongSymmRefl(t *testing.T) {
	s := session(t)
	if err := runProof(s, ModeThm, top, top, imp, top, top, imp); err != nil {
		t.Fatalf("RunProof: %v", err)
	}
	obligation(t, s)
	if err := runProof(s, ModeThm, mmb.ProofCong.Cmd()); err != nil {
		t.Fatalf("cong: %v", err)
	}
	if s.Stack.Len() != 2 {
		t.Fatalf("cong: got %d obligations, want 2", s.Stack.Len())
	}
	if err := runProof(s, ModeThm, mmb.ProofSymm.Cmd(), mmb.ProofRefl.Cmd(), mmb.ProofRefl.Cmd()); err != nil {
		t.Fatalf("symm/refl: %v", err)
	}
	if s.Stack.Len() != 0 {
		t.Errorf("stack: got %d, want 0", s.Stack.Len())
	}
}

func TestCongDifferentHeads(t *testing.T) {
	s := session(t)
	if err := runProof(s, ModeThm, top, top, imp, top, isz); err == nil {
		t.Fatal("isz applied to a wff")
	}
	s.reset()
	if err := runProof(s, ModeThm, top, top, imp, top, mmb.ProofTerm.With(termSelf)); err != nil {
		t.Fatalf("RunProof: %v", err)
	}
	obligation(t, s)
	err := runProof(s, ModeThm, mmb.ProofCong.Cmd())
	wantKind(t, err, errors.PhaseProof, errors.KindMismatch)
}

func TestSymmOrder(t *testing.T) {
	s := session(t)
	if err := runProof(s, ModeThm, top, top, top, imp); err != nil {
		t.Fatalf("RunProof: %v", err)
	}
	pair := s.Stack.Items()
	lhs, rhs := pair[0], pair[1]
	obligation(t, s)
	if err := runProof(s, ModeThm, mmb.ProofSymm.Cmd()); err != nil {
		t.Fatalf("symm: %v", err)
	}
	n := topNode(t, s)
	if n.Kind != arena.KindCoConv || n.L != rhs || n.R != lhs {
		t.Errorf("symm: got %s(%d, %d), want coconv(%d, %d)", n.Kind, n.L, n.R, rhs, lhs)
	}
	err := runProof(s, ModeThm, mmb.ProofRefl.Cmd())
	wantKind(t, err, errors.PhaseProof, errors.KindMismatch)
}

func TestConvCutSaveRef(t *testing.T) {
	s := session(t)
	if err := runProof(s, ModeThm, top, top, imp, top, top, imp); err != nil {
		t.Fatalf("RunProof: %v", err)
	}
	obligation(t, s)
	if err := runProof(s, ModeThm, mmb.ProofConvCut.Cmd()); err != nil {
		t.Fatalf("conv_cut: %v", err)
	}
	if n := topNode(t, s); n.Kind != arena.KindCoConv {
		t.Fatalf("conv_cut top: got %s, want coconv", n.Kind)
	}
	if err := runProof(s, ModeThm, mmb.ProofRefl.Cmd(), mmb.ProofConvSave.Cmd()); err != nil {
		t.Fatalf("refl/conv_save: %v", err)
	}
	if s.Stack.Len() != 0 || s.Heap.Len() != 1 {
		t.Fatalf("after conv_save: stack=%d heap=%d, want 0/1", s.Stack.Len(), s.Heap.Len())
	}

	if err := runProof(s, ModeThm, top, top, imp, top, top, imp); err != nil {
		t.Fatalf("RunProof: %v", err)
	}
	obligation(t, s)
	if err := runProof(s, ModeThm, mmb.ProofConvRef.With(0)); err != nil {
		t.Fatalf("conv_ref: %v", err)
	}

	// A saved conversion is not an ordinary value.
	err := runProof(s, ModeThm, mmb.ProofRef.With(0))
	wantKind(t, err, errors.PhaseProof, errors.KindTypeMismatch)
}

func TestConvRefMismatch(t *testing.T) {
	s := session(t)
	if err := runProof(s, ModeThm, top, top, imp, top, top, imp); err != nil {
		t.Fatalf("RunProof: %v", err)
	}
	obligation(t, s)
	if err := runProof(s, ModeThm, mmb.ProofConvCut.Cmd(), mmb.ProofRefl.Cmd(), mmb.ProofConvSave.Cmd()); err != nil {
		t.Fatalf("RunProof: %v", err)
	}
	if err := runProof(s, ModeThm, top, top); err != nil {
		t.Fatalf("RunProof: %v", err)
	}
	obligation(t, s)
	err := runProof(s, ModeThm, mmb.ProofConvRef.With(0))
	wantKind(t, err, errors.PhaseProof, errors.KindMismatch)
}

func TestTheoremBoundArgs(t *testing.T) {
	tests := []struct {
		name  string
		proof []mmb.Cmd
		kind  errors.Kind
	}{
		{"distinct", []mmb.Cmd{dumNat, top, top, thmDVOp}, ""},
		{"repeated bound", []mmb.Cmd{dumNat, mmb.ProofRef.With(0), top, mmb.ProofThm.With(thmDV2)}, errors.KindInvariant},
		{"two bound", []mmb.Cmd{dumNat, dumNat, top, mmb.ProofThm.With(thmDV2)}, ""},
		{"disjoint violation", []mmb.Cmd{dumNat, mmb.ProofRef.With(0), isz, top, thmDVOp}, errors.KindInvariant},
		{"other bound variable", []mmb.Cmd{dumNat, dumNat, mmb.ProofRef.With(0), isz, top, thmDVOp}, ""},
		{"regular value for bound binder", []mmb.Cmd{top, top, top, thmDVOp}, errors.KindTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := session(t)
			err := runProof(s, ModeThm, tt.proof...)
			if tt.kind != "" {
				wantKind(t, err, errors.PhaseProof, tt.kind)
				return
			}
			if err != nil {
				t.Fatalf("RunProof: %v", err)
			}
			if n := topNode(t, s); n.Kind != arena.KindProof {
				t.Errorf("top: got %s, want proof", n.Kind)
			}
		})
	}
}

func TestHypRequiresProvable(t *testing.T) {
	s := session(t)
	err := runProof(s, ModeThm, dumNat, mmb.ProofHyp.Cmd())
	wantKind(t, err, errors.PhaseProof, errors.KindInvariant)
}

func TestDummyAllocation(t *testing.T) {
	s := session(t)
	if err := runProof(s, ModeDef, dumNat, dumNat); err != nil {
		t.Fatalf("RunProof: %v", err)
	}
	for i, want := range []uint64{1, 2} {
		h, _ := s.Heap.At(uint32(i))
		n, _ := s.arena.Get(h)
		if !n.Ty.IsBound() || n.Ty.LowBits() != want || n.Idx != uint32(i) {
			t.Errorf("dummy %d: got idx %d %v, want bound digit %#x", i, n.Idx, n.Ty, want)
		}
	}
	if s.NextBV() != 4 {
		t.Errorf("NextBV: got %#x, want 0x4", s.NextBV())
	}

	err := runProof(s, ModeDef, mmb.ProofDummy.With(9))
	wantKind(t, err, errors.PhaseOutline, errors.KindNotFound)
}

func TestProofStackErrors(t *testing.T) {
	tests := []struct {
		name  string
		mode  ProofMode
		proof []mmb.Cmd
		phase errors.Phase
		kind  errors.Kind
	}{
		{"ref past heap", ModeThm, []mmb.Cmd{mmb.ProofRef.With(3)}, errors.PhaseProof, errors.KindOutOfBounds},
		{"term underflow", ModeThm, []mmb.Cmd{top, imp}, errors.PhaseProof, errors.KindStackUnderflow},
		{"save empty", ModeDef, []mmb.Cmd{mmb.ProofSave.Cmd()}, errors.PhaseProof, errors.KindStackUnderflow},
		{"refl without obligation", ModeThm, []mmb.Cmd{top, mmb.ProofRefl.Cmd()}, errors.PhaseProof, errors.KindTypeMismatch},
		{"conv without proof", ModeThm, []mmb.Cmd{top, top, mmb.ProofConv.Cmd()}, errors.PhaseProof, errors.KindTypeMismatch},
		{"uncommitted theorem", ModeThm, []mmb.Cmd{top, mmb.ProofThm.With(40)}, errors.PhaseOutline, errors.KindNotFound},
		{"hyp in definition", ModeDef, []mmb.Cmd{top, mmb.ProofHyp.Cmd()}, errors.PhaseProof, errors.KindUnsupported},
		{"unknown command", ModeThm, []mmb.Cmd{{Op: 0x2A}}, errors.PhaseDecode, errors.KindInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := session(t)
			wantKind(t, runProof(s, tt.mode, tt.proof...), tt.phase, tt.kind)
		})
	}
}

func TestUnfoldRequiresDefinition(t *testing.T) {
	s := session(t)
	if err := runProof(s, ModeThm, top, top, imp, top, top, imp); err != nil {
		t.Fatalf("RunProof: %v", err)
	}
	obligation(t, s)
	err := runProof(s, ModeThm, top, top, imp, mmb.ProofUnfold.Cmd())
	wantKind(t, err, errors.PhaseProof, errors.KindInvariant)
}

func TestErrorsCarryCommandOffset(t *testing.T) {
	s := session(t)
	err := runProof(s, ModeThm, top, top, mmb.ProofRefl.Cmd())
	e, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("got %T, want *errors.Error", err)
	}
	if e.Offset != 2 {
		t.Errorf("offset: got %d, want 2", e.Offset)
	}
}

func TestReflSharedSubterms(t *testing.T) {
	s := session(t)
	build := func() arena.Handle {
		h := s.arena.NewApp(termTop, nil, wff)
		for i := 0; i < 128; i++ {
			h = s.arena.NewApp(termImp, []arena.Handle{h, h}, wff)
		}
		return h
	}
	s.Stack.Push(s.arena.NewCoConv(build(), build()))
	if err := runProof(s, ModeThm, mmb.ProofRefl.Cmd()); err != nil {
		t.Fatalf("refl: %v", err)
	}
	if s.Stack.Len() != 0 {
		t.Errorf("stack: got %d, want 0", s.Stack.Len())
	}
}

func TestAtCommand(t *testing.T) {
	inner := errors.StackUnderflow(errors.PhaseProof, "stack")
	tests := []struct {
		name     string
		err      error
		wantKind errors.Kind
	}{
		{"structured", inner, errors.KindStackUnderflow},
		{"wrapped structured", fmt.Errorf("replay: %w", inner), errors.KindStackUnderflow},
		{"plain", stderrors.New("boom"), errors.KindInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := atCommand(tt.err, "refl", 7)
			e, ok := got.(*errors.Error)
			if !ok {
				t.Fatalf("got %T, want *errors.Error", got)
			}
			if e.Kind != tt.wantKind {
				t.Errorf("kind: got %s, want %s", e.Kind, tt.wantKind)
			}
			if tt.wantKind == errors.KindInvalidData {
				return
			}
			if e.Offset != 7 {
				t.Errorf("offset: got %d, want 7", e.Offset)
			}
			if len(e.Path) == 0 || e.Path[0] != "stack" {
				t.Errorf("path: got %v, want existing path kept", e.Path)
			}
		})
	}
	if inner.Offset != 0 {
		t.Error("atCommand mutated its argument")
	}
}
