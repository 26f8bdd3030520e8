package verifier

import (
	"strconv"

	"github.com/wippyai/mmbverify/errors"
	"github.com/wippyai/mmbverify/verifier/internal/arena"
)

// Stack is a named LIFO of arena handles. The same type backs the heaps,
// which are only ever appended to and indexed.
type Stack struct {
	name  string
	items []arena.Handle
	phase errors.Phase
}

func newStack(name string, phase errors.Phase) Stack {
	return Stack{name: name, phase: phase}
}

// Push appends h.
func (s *Stack) Push(h arena.Handle) {
	s.items = append(s.items, h)
}

// Pop removes and returns the top entry.
func (s *Stack) Pop() (arena.Handle, error) {
	if len(s.items) == 0 {
		return 0, errors.StackUnderflow(s.phase, s.name)
	}
	h := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return h, nil
}

// PopN removes the top n entries and returns them in push order.
func (s *Stack) PopN(n int) ([]arena.Handle, error) {
	if n > len(s.items) {
		return nil, errors.New(s.phase, errors.KindStackUnderflow).
			Path(s.name).
			Value(n).
			Detail("need %d values, have %d", n, len(s.items)).
			Build()
	}
	start := len(s.items) - n
	out := make([]arena.Handle, n)
	copy(out, s.items[start:])
	s.items = s.items[:start]
	return out, nil
}

// Peek returns the top entry without removing it.
func (s *Stack) Peek() (arena.Handle, error) {
	if len(s.items) == 0 {
		return 0, errors.StackUnderflow(s.phase, s.name)
	}
	return s.items[len(s.items)-1], nil
}

// At returns entry i counted from the bottom.
func (s *Stack) At(i uint32) (arena.Handle, error) {
	if int(i) >= len(s.items) {
		return 0, errors.OutOfBounds(s.phase, []string{s.name, strconv.FormatUint(uint64(i), 10)}, int(i), len(s.items))
	}
	return s.items[i], nil
}

// Len returns the number of entries.
func (s *Stack) Len() int {
	return len(s.items)
}

// Items returns the entries bottom first. The slice aliases the stack.
func (s *Stack) Items() []arena.Handle {
	return s.items
}

// Reset drops every entry.
func (s *Stack) Reset() {
	s.items = s.items[:0]
}
