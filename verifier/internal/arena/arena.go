package arena

import (
	"fmt"

	"github.com/wippyai/mmbverify/errors"
	"github.com/wippyai/mmbverify/mmb"
)

// Handle addresses a node in an Arena. Handles are only meaningful until
// the next Reset.
type Handle uint32

// Kind identifies the variant of a node.
type Kind byte

const (
	KindVar    Kind = iota // bound or regular variable introduced by a binder or dummy
	KindApp                // term application
	KindProof              // proof of an expression
	KindConv               // proven convertibility e1 = e2
	KindCoConv             // pending convertibility obligation e1 =?= e2
)

func (k Kind) String() string {
	switch k {
	case KindVar:
		return "var"
	case KindApp:
		return "app"
	case KindProof:
		return "proof"
	case KindConv:
		return "conv"
	case KindCoConv:
		return "coconv"
	}
	return fmt.Sprintf("kind(%d)", byte(k))
}

// Node is one arena entry. Var and App nodes are expressions; the others
// are proof-level items referring to expressions through L and R.
type Node struct {
	Ty   mmb.Type // Var, App
	Idx  uint32   // heap index of a Var, term number of an App
	L, R Handle   // Proof uses L; Conv and CoConv use both
	args uint32   // App argument span in Arena.args
	narg uint32
	Kind Kind
}

// IsExpr reports whether the node is an expression.
func (n Node) IsExpr() bool {
	return n.Kind == KindVar || n.Kind == KindApp
}

// Arena holds every node allocated while verifying one declaration.
type Arena struct {
	nodes []Node
	args  []Handle
	seen  map[[2]Handle]struct{} // pairs visited by the current Equal
}

// New creates an empty arena.
func New() *Arena {
	return &Arena{}
}

// Reset invalidates every handle and keeps the allocated capacity.
func (a *Arena) Reset() {
	a.nodes = a.nodes[:0]
	a.args = a.args[:0]
	clear(a.seen)
}

// Len returns the number of live nodes.
func (a *Arena) Len() int {
	return len(a.nodes)
}

func (a *Arena) add(n Node) Handle {
	h := Handle(len(a.nodes))
	a.nodes = append(a.nodes, n)
	return h
}

// NewVar allocates a variable expression.
func (a *Arena) NewVar(idx uint32, ty mmb.Type) Handle {
	return a.add(Node{Kind: KindVar, Idx: idx, Ty: ty})
}

// NewApp allocates a term application. args is copied.
func (a *Arena) NewApp(term uint32, args []Handle, ty mmb.Type) Handle {
	start := uint32(len(a.args))
	a.args = append(a.args, args...)
	return a.add(Node{Kind: KindApp, Idx: term, Ty: ty, args: start, narg: uint32(len(args))})
}

// NewProof allocates a proof of expression e.
func (a *Arena) NewProof(e Handle) Handle {
	return a.add(Node{Kind: KindProof, L: e})
}

// NewConv allocates a proven convertibility between l and r.
func (a *Arena) NewConv(l, r Handle) Handle {
	return a.add(Node{Kind: KindConv, L: l, R: r})
}

// NewCoConv allocates a convertibility obligation between l and r.
func (a *Arena) NewCoConv(l, r Handle) Handle {
	return a.add(Node{Kind: KindCoConv, L: l, R: r})
}

// Get retrieves the node at h.
func (a *Arena) Get(h Handle) (Node, error) {
	if int(h) >= len(a.nodes) {
		return Node{}, errors.New(errors.PhaseVerify, errors.KindOutOfBounds).
			Value(h).
			Detail("node index %d out of range", h).
			Build()
	}
	return a.nodes[h], nil
}

// Args returns the argument handles of an App node. The slice aliases
// arena storage and must not be modified.
func (a *Arena) Args(n Node) []Handle {
	if n.Kind != KindApp {
		return nil
	}
	return a.args[n.args : n.args+n.narg : n.args+n.narg]
}

// Type returns the type of an expression node.
func (a *Arena) Type(h Handle) (mmb.Type, error) {
	n, err := a.Get(h)
	if err != nil {
		return 0, err
	}
	if !n.IsExpr() {
		return 0, errors.TypeMismatch(errors.PhaseVerify, nil, "expression", n.Kind.String())
	}
	return n.Ty, nil
}

// Deps returns the dependency mask of a non-bound expression.
func (a *Arena) Deps(h Handle) (uint64, error) {
	ty, err := a.Type(h)
	if err != nil {
		return 0, err
	}
	return ty.Deps()
}

// BoundDigit returns the digit of a bound variable.
func (a *Arena) BoundDigit(h Handle) (uint64, error) {
	ty, err := a.Type(h)
	if err != nil {
		return 0, err
	}
	return ty.BoundDigit()
}

// LowBits returns the dependency mask or the bound digit of an expression.
func (a *Arena) LowBits(h Handle) (uint64, error) {
	ty, err := a.Type(h)
	if err != nil {
		return 0, err
	}
	return ty.LowBits(), nil
}

// Equal reports whether x and y are structurally identical. Variables are
// identified by heap index, applications by term number and arguments.
// Each pair of handles is compared at most once per call, so shared
// subterms cost linear time.
func (a *Arena) Equal(x, y Handle) bool {
	if len(a.seen) > 0 {
		clear(a.seen)
	}
	return a.equal(x, y)
}

func (a *Arena) equal(x, y Handle) bool {
	if x == y {
		return true
	}
	if int(x) >= len(a.nodes) || int(y) >= len(a.nodes) {
		return false
	}
	nx, ny := a.nodes[x], a.nodes[y]
	if nx.Kind != ny.Kind {
		return false
	}
	if nx.Kind == KindVar {
		return nx.Idx == ny.Idx
	}

	// Nodes only reference older nodes, so a pair already on the visited
	// set is either equal or its mismatch is already failing the call.
	key := [2]Handle{x, y}
	if _, ok := a.seen[key]; ok {
		return true
	}
	if a.seen == nil {
		a.seen = make(map[[2]Handle]struct{})
	}
	a.seen[key] = struct{}{}

	switch nx.Kind {
	case KindApp:
		if nx.Idx != ny.Idx || nx.narg != ny.narg {
			return false
		}
		ax, ay := a.Args(nx), a.Args(ny)
		for i := range ax {
			if !a.equal(ax[i], ay[i]) {
				return false
			}
		}
		return true
	case KindProof:
		return a.equal(nx.L, ny.L)
	default:
		return a.equal(nx.L, ny.L) && a.equal(nx.R, ny.R)
	}
}
