package verifier

import (
	"testing"

	"github.com/wippyai/mmbverify/errors"
	"github.com/wippyai/mmbverify/mmb"
)

func TestTakeNextBV(t *testing.T) {
	s, _ := sortsState(t, nil, 0)
	for i := 0; i < mmb.MaxBoundVars; i++ {
		bv, err := s.TakeNextBV()
		if err != nil {
			t.Fatalf("call %d: %v", i+1, err)
		}
		if want := uint64(1) << i; bv != want {
			t.Fatalf("call %d: got %#x, want %#x", i+1, bv, want)
		}
	}
	_, err := s.TakeNextBV()
	wantKind(t, err, errors.PhaseVerify, errors.KindOverflow)
}

func TestStateReset(t *testing.T) {
	s, _ := sortsState(t, nil, 0)
	s.Heap.Push(s.Arena().NewVar(0, wff))
	s.Stack.Push(0)
	s.TakeNextBV()
	s.reset()
	if s.Heap.Len() != 0 || s.Stack.Len() != 0 || s.Arena().Len() != 0 || s.NextBV() != 1 {
		t.Errorf("reset left heap=%d stack=%d arena=%d bv=%#x",
			s.Heap.Len(), s.Stack.Len(), s.Arena().Len(), s.NextBV())
	}
}

func TestLoadArgs(t *testing.T) {
	tests := []struct {
		name     string
		sorts    []mmb.SortMods
		args     []mmb.Type
		termdef  bool
		wantHeap int
		kind     errors.Kind // empty for success
	}{
		{
			name:     "bound then dependent",
			sorts:    []mmb.SortMods{0},
			args:     []mmb.Type{mmb.MakeBound(0, 1), mmb.MakeType(0, 1)},
			wantHeap: 2,
		},
		{
			name:     "bound then dependent termdef",
			sorts:    []mmb.SortMods{0},
			args:     []mmb.Type{mmb.MakeBound(0, 1), mmb.MakeType(0, 1)},
			termdef:  true,
			wantHeap: 1,
		},
		{
			name:  "skipped digit",
			sorts: []mmb.SortMods{0},
			args:  []mmb.Type{mmb.MakeBound(0, 1), mmb.MakeBound(0, 4)},
			kind:  errors.KindInvariant,
		},
		{
			name:  "forward dependency",
			sorts: []mmb.SortMods{0},
			args:  []mmb.Type{mmb.MakeType(0, 2)},
			kind:  errors.KindInvariant,
		},
		{
			name:  "dependency on later binder",
			sorts: []mmb.SortMods{0},
			args:  []mmb.Type{mmb.MakeBound(0, 1), mmb.MakeType(0, 3), mmb.MakeBound(0, 2)},
			kind:  errors.KindInvariant,
		},
		{
			name:  "strict sort bound",
			sorts: []mmb.SortMods{mmb.SortStrict},
			args:  []mmb.Type{mmb.MakeBound(0, 1)},
			kind:  errors.KindInvariant,
		},
		{
			name:     "strict sort regular",
			sorts:    []mmb.SortMods{mmb.SortStrict},
			args:     []mmb.Type{mmb.MakeType(0, 0)},
			wantHeap: 1,
		},
		{
			name:  "free sort with dependencies",
			sorts: []mmb.SortMods{0, mmb.SortFree},
			args:  []mmb.Type{mmb.MakeBound(0, 1), mmb.MakeType(1, 1)},
			kind:  errors.KindInvariant,
		},
		{
			name:  "undeclared sort",
			sorts: []mmb.SortMods{0},
			args:  []mmb.Type{mmb.MakeType(3, 0)},
			kind:  errors.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := sortsState(t, nil, tt.sorts...)
			err := s.loadArgs(tt.args, tt.termdef)
			if tt.kind != "" {
				wantKind(t, err, errors.PhaseLoadArgs, tt.kind)
				return
			}
			if err != nil {
				t.Fatalf("loadArgs: %v", err)
			}
			if s.Heap.Len() != tt.wantHeap {
				t.Errorf("heap: got %d entries, want %d", s.Heap.Len(), tt.wantHeap)
			}
			for i, h := range s.Heap.Items() {
				n, _ := s.Arena().Get(h)
				if n.Idx != uint32(i) || n.Ty != tt.args[i] {
					t.Errorf("heap[%d]: got var %d %v, want var %d %v", i, n.Idx, n.Ty, i, tt.args[i])
				}
			}
		})
	}
}

func TestLoadArgsFreshSessionOnly(t *testing.T) {
	s, _ := sortsState(t, nil, 0)
	if err := s.loadArgs([]mmb.Type{mmb.MakeType(0, 0)}, false); err != nil {
		t.Fatalf("first loadArgs: %v", err)
	}
	err := s.loadArgs([]mmb.Type{mmb.MakeType(0, 0)}, false)
	wantKind(t, err, errors.PhaseLoadArgs, errors.KindInvariant)

	s.reset()
	s.TakeNextBV()
	err = s.loadArgs(nil, false)
	wantKind(t, err, errors.PhaseLoadArgs, errors.KindInvariant)
}

func TestStackPopN(t *testing.T) {
	s, _ := sortsState(t, nil, 0)
	for i := 0; i < 4; i++ {
		s.Stack.Push(s.Arena().NewVar(uint32(i), wff))
	}
	got, err := s.Stack.PopN(3)
	if err != nil {
		t.Fatalf("PopN: %v", err)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("PopN: got %v, want [1 2 3]", got)
	}
	if s.Stack.Len() != 1 {
		t.Errorf("Len: got %d, want 1", s.Stack.Len())
	}
	_, err = s.Stack.PopN(2)
	wantKind(t, err, errors.PhaseProof, errors.KindStackUnderflow)
}
