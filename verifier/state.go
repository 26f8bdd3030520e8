package verifier

import (
	"github.com/wippyai/mmbverify/errors"
	"github.com/wippyai/mmbverify/mmb"
	"github.com/wippyai/mmbverify/verifier/internal/arena"
)

// ProofMode selects which proof instructions are legal.
type ProofMode byte

const (
	ModeDef ProofMode = iota // definition bodies: expression building only
	ModeThm                  // axiom and theorem statements and proofs
)

func (m ProofMode) String() string {
	if m == ModeDef {
		return "def"
	}
	return "thm"
}

// UnifyMode selects how a unify stream is matched.
type UnifyMode byte

const (
	UDef    UnifyMode = iota // definition body, for declaration and Unfold
	UThm                     // theorem application inside a proof
	UThmEnd                  // closing match of a declared axiom or theorem
)

func (m UnifyMode) String() string {
	switch m {
	case UDef:
		return "udef"
	case UThm:
		return "uthm"
	}
	return "uthm_end"
}

// ProofRunner replays a proof stream against a session.
type ProofRunner interface {
	RunProof(s *State, mode ProofMode, it *mmb.ProofIter) error
}

// Unifier matches a stored unify stream against target. Implementations
// must leave UStack and UHeap empty on return.
type Unifier interface {
	RunUnify(s *State, mode UnifyMode, it *mmb.UnifyIter, target arena.Handle) error
}

// State is the verification session for one declaration.
type State struct {
	outline *Outline
	arena   *arena.Arena
	prover  ProofRunner
	unifier Unifier

	Stack  Stack // main value stack
	Heap   Stack // binders and saved values, addressed by index
	UStack Stack // pending unification targets
	UHeap  Stack // unification bindings
	HStack Stack // hypotheses introduced by Hyp

	nextBV uint64
}

func newState(o *Outline, a *arena.Arena, p ProofRunner, u Unifier) *State {
	s := &State{
		outline: o,
		arena:   a,
		prover:  p,
		unifier: u,
		Stack:   newStack("stack", errors.PhaseProof),
		Heap:    newStack("heap", errors.PhaseProof),
		UStack:  newStack("ustack", errors.PhaseUnify),
		UHeap:   newStack("uheap", errors.PhaseUnify),
		HStack:  newStack("hstack", errors.PhaseProof),
	}
	s.reset()
	return s
}

// reset starts a fresh session, invalidating every handle.
func (s *State) reset() {
	s.arena.Reset()
	s.Stack.Reset()
	s.Heap.Reset()
	s.UStack.Reset()
	s.UHeap.Reset()
	s.HStack.Reset()
	s.nextBV = 1
}

// Arena returns the session's node arena.
func (s *State) Arena() *arena.Arena { return s.arena }

// Outline returns the committed declarations visible to the session.
func (s *State) Outline() *Outline { return s.outline }

// NextBV returns the digit the next bound variable will receive.
func (s *State) NextBV() uint64 { return s.nextBV }

// TakeNextBV allocates the next bound-variable digit.
func (s *State) TakeNextBV() (uint64, error) {
	bv := s.nextBV
	if bv>>mmb.MaxBoundVars != 0 {
		return 0, errors.Overflow(errors.PhaseVerify, []string{"bound_vars"}, mmb.MaxBoundVars+1, "limit of 55 bound variables")
	}
	s.nextBV <<= 1
	return bv, nil
}

func (s *State) runProof(mode ProofMode, it *mmb.ProofIter) error {
	return s.prover.RunProof(s, mode, it)
}

func (s *State) runUnify(mode UnifyMode, it *mmb.UnifyIter, target arena.Handle) error {
	return s.unifier.RunUnify(s, mode, it, target)
}
