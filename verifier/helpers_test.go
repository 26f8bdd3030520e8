package verifier

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/wippyai/mmbverify/errors"
	"github.com/wippyai/mmbverify/mmb"
	"github.com/wippyai/mmbverify/verifier/internal/arena"
)

// Declaration numbers of logicFile.
const (
	sortWff uint8 = 0
	sortNat uint8 = 1

	termTop  uint32 = 0
	termImp  uint32 = 1
	termAll  uint32 = 2
	termIsz  uint32 = 3
	termSelf uint32 = 4
	termTriv uint32 = 5

	thmAxTop uint32 = 0
	thmMP    uint32 = 1
	thmID    uint32 = 2
	thmDV    uint32 = 3
	thmDV2   uint32 = 4
)

var wff = mmb.MakeType(sortWff, 0)

func cmds(c ...mmb.Cmd) []byte { return mmb.Stream(c...) }

// logicFile encodes a small implicational logic with one binder and two
// definitions. Callers may append further declarations before encoding.
func logicFile() *mmb.Builder {
	b := mmb.NewBuilder()
	b.Sort(mmb.SortProvable)
	b.Sort(0)

	b.Term(nil, wff)
	b.Term([]mmb.Type{wff, wff}, wff)
	b.Term([]mmb.Type{mmb.MakeBound(sortNat, 1), mmb.MakeType(sortWff, 1)}, wff)
	b.Term([]mmb.Type{mmb.MakeType(sortNat, 0)}, wff)

	// self a := imp a a
	b.Def([]mmb.Type{wff}, wff,
		cmds(mmb.ProofRef.With(0), mmb.ProofRef.With(0), mmb.ProofTerm.With(termImp)),
		cmds(mmb.UnifyTerm.With(termImp), mmb.UnifyRef.With(0), mmb.UnifyRef.With(0)))

	// triv := all x top
	b.Def(nil, wff,
		cmds(mmb.ProofDummy.With(uint32(sortNat)), mmb.ProofTerm.With(termTop), mmb.ProofTerm.With(termAll)),
		cmds(mmb.UnifyTerm.With(termAll), mmb.UnifyDummy.With(uint32(sortNat)), mmb.UnifyTerm.With(termTop)))

	// ax_top: |- top
	b.Axiom(nil,
		cmds(mmb.ProofTerm.With(termTop)),
		cmds(mmb.UnifyTerm.With(termTop)))

	// mp (a b: wff): |- a -> |- imp a b -> |- b
	b.Axiom([]mmb.Type{wff, wff},
		cmds(
			mmb.ProofRef.With(0), mmb.ProofHyp.Cmd(),
			mmb.ProofRef.With(0), mmb.ProofRef.With(1), mmb.ProofTerm.With(termImp), mmb.ProofHyp.Cmd(),
			mmb.ProofRef.With(1)),
		cmds(
			mmb.UnifyRef.With(1),
			mmb.UnifyHyp.Cmd(), mmb.UnifyTerm.With(termImp), mmb.UnifyRef.With(0), mmb.UnifyRef.With(1),
			mmb.UnifyHyp.Cmd(), mmb.UnifyRef.With(0)))

	// id (a: wff): |- imp a a
	b.Axiom([]mmb.Type{wff},
		cmds(mmb.ProofRef.With(0), mmb.ProofRef.With(0), mmb.ProofTerm.With(termImp)),
		cmds(mmb.UnifyTerm.With(termImp), mmb.UnifyRef.With(0), mmb.UnifyRef.With(0)))

	// dv (x: bound nat) (p: wff): |- top, p not depending on x
	b.Axiom([]mmb.Type{mmb.MakeBound(sortNat, 1), wff},
		cmds(mmb.ProofTerm.With(termTop)),
		cmds(mmb.UnifyTerm.With(termTop)))

	// dv2 (x y: bound nat): |- top
	b.Axiom([]mmb.Type{mmb.MakeBound(sortNat, 1), mmb.MakeBound(sortNat, 2)},
		cmds(mmb.ProofTerm.With(termTop)),
		cmds(mmb.UnifyTerm.With(termTop)))
	return b
}

// proofTopViaMP proves |- top with mp, ax_top and id.
func proofTopViaMP() []mmb.Cmd {
	top := mmb.ProofTerm.With(termTop)
	return []mmb.Cmd{
		top, mmb.ProofThm.With(thmAxTop),
		top, top, top, mmb.ProofTerm.With(termImp), mmb.ProofThm.With(thmID),
		top, top, top, mmb.ProofThm.With(thmMP),
	}
}

func mustOpen(t *testing.T, data []byte) *mmb.File {
	t.Helper()
	f, err := mmb.Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return f
}

// committed verifies logicFile and returns the verifier with every
// declaration committed.
func committed(t *testing.T, opts Options) *Verifier {
	t.Helper()
	v := New(mustOpen(t, logicFile().Bytes()), opts)
	if err := v.Verify(context.Background()); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	return v
}

// sortsState returns a fresh session whose outline has the given sorts
// committed.
func sortsState(t *testing.T, p ProofRunner, sorts ...mmb.SortMods) (*State, *mmb.File) {
	t.Helper()
	b := mmb.NewBuilder()
	for _, m := range sorts {
		b.Sort(m)
	}
	return sortsStateFrom(t, b, p, len(sorts))
}

func sortsStateFrom(t *testing.T, b *mmb.Builder, p ProofRunner, nsorts int) (*State, *mmb.File) {
	t.Helper()
	f := mustOpen(t, b.Bytes())
	o := NewOutline(f)
	for i := 0; i < nsorts; i++ {
		if err := o.AddDecl(Decl{Kind: mmb.StmtSort, Num: uint32(i)}); err != nil {
			t.Fatalf("AddDecl(sort %d): %v", i, err)
		}
	}
	if p == nil {
		p = &Prover{Unifier: Matcher{}}
	}
	return newState(o, arena.New(), p, Matcher{}), f
}

// runProof replays c on s in mode.
func runProof(s *State, mode ProofMode, c ...mmb.Cmd) error {
	it := mmb.ProofStream(cmds(c...))
	return s.runProof(mode, &it)
}

func wantKind(t *testing.T, err error, phase errors.Phase, kind errors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("got nil error, want %s/%s", phase, kind)
	}
	if !stderrors.Is(err, &errors.Error{Phase: phase, Kind: kind}) {
		t.Fatalf("got %v, want %s/%s", err, phase, kind)
	}
}

// stubProof pushes the nodes built by fn and ignores the stream.
type stubProof func(s *State)

func (f stubProof) RunProof(s *State, _ ProofMode, _ *mmb.ProofIter) error {
	f(s)
	return nil
}
