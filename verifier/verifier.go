package verifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/mmbverify/errors"
	"github.com/wippyai/mmbverify/mmb"
	"github.com/wippyai/mmbverify/verifier/internal/arena"
)

// Options configures a Verifier.
type Options struct {
	// Prover replays proof streams. Nil selects the built-in Prover.
	Prover ProofRunner
	// Unifier matches unify streams. Nil selects Matcher.
	Unifier Unifier
	// Progress, if set, is called after each declaration is committed.
	Progress func(Decl)
	// AllowSorry accepts the sorry proof command.
	AllowSorry bool
}

// DefaultOptions returns default verifier configuration.
func DefaultOptions() Options {
	return Options{}
}

// Verifier checks every declaration of one certificate in order.
// Not safe for concurrent use.
type Verifier struct {
	file    *mmb.File
	outline *Outline
	state   *State
	options Options
}

// New creates a Verifier for f.
func New(f *mmb.File, opts Options) *Verifier {
	u := opts.Unifier
	if u == nil {
		u = Matcher{}
	}
	p := opts.Prover
	if p == nil {
		p = &Prover{Unifier: u, AllowSorry: opts.AllowSorry}
	}
	o := NewOutline(f)
	return &Verifier{
		file:    f,
		outline: o,
		state:   newState(o, arena.New(), p, u),
		options: opts,
	}
}

// Outline returns the declarations committed so far.
func (v *Verifier) Outline() *Outline {
	return v.outline
}

// Verify walks the declaration stream and verifies each statement. It
// stops at the first failure. Cancellation is observed between
// declarations.
func (v *Verifier) Verify(ctx context.Context) error {
	log := Logger()
	stmts := v.file.Statements()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		st, ok, err := stmts.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		d := v.nextDecl(st)
		if err := v.Verify1(d, st.Proof); err != nil {
			log.Debug("declaration failed",
				zap.Stringer("decl", d),
				zap.Int("offset", d.Offset),
				zap.Error(err))
			return errors.InDecl(err, d.String(), d.Offset)
		}
		log.Debug("declaration verified",
			zap.Stringer("decl", d),
			zap.Int("offset", d.Offset),
			zap.Bool("local", d.Kind.IsLocal()))
		if v.options.Progress != nil {
			v.options.Progress(d)
		}
	}

	h := v.file.Header
	if v.outline.NumSorts() != int(h.NumSorts) ||
		v.outline.NumTerms() != h.NumTerms ||
		v.outline.NumThms() != h.NumThms {
		return errors.New(errors.PhaseVerify, errors.KindMismatch).
			Path("header").
			Detail("verified %d sorts, %d terms, %d theorems; header declares %d, %d, %d",
				v.outline.NumSorts(), v.outline.NumTerms(), v.outline.NumThms(),
				h.NumSorts, h.NumTerms, h.NumThms).
			Build()
	}
	log.Info("certificate verified",
		zap.Int("sorts", v.outline.NumSorts()),
		zap.Uint32("terms", v.outline.NumTerms()),
		zap.Uint32("theorems", v.outline.NumThms()))
	return nil
}

func (v *Verifier) nextDecl(st mmb.Stmt) Decl {
	d := Decl{Kind: st.Kind, Offset: st.Offset}
	switch st.Kind.Base() {
	case mmb.StmtSort:
		d.Num = uint32(v.outline.NumSorts())
	case mmb.StmtTerm:
		d.Num = v.outline.NumTerms()
	default:
		d.Num = v.outline.NumThms()
	}
	return d
}

// Verify1 verifies one declaration in a fresh session and commits it.
func (v *Verifier) Verify1(d Decl, proof mmb.ProofIter) error {
	s := v.state
	s.reset()

	switch d.Kind.Base() {
	case mmb.StmtSort:
		if !proof.IsNull() {
			return errors.InvalidData(errors.PhaseVerify, []string{"proof"}, "sort statements carry no proof")
		}

	case mmb.StmtTerm:
		term, err := v.outline.TermByNum(d.Num)
		if err != nil {
			return err
		}
		if !term.IsDef() && !proof.IsNull() {
			return errors.InvalidData(errors.PhaseVerify, []string{"proof"}, "term statements carry no proof")
		}
		if err := s.verifyTermdef(term, &proof); err != nil {
			return err
		}

	case mmb.StmtAxiom, mmb.StmtThm:
		as, err := v.outline.AssertByNum(d.Num)
		if err != nil {
			return err
		}
		if err := s.verifyAssert(d.Kind, as, &proof); err != nil {
			return err
		}

	default:
		return errors.Unsupported(errors.PhaseVerify, d.Kind.String())
	}

	return v.outline.AddDecl(d)
}
