package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseHeader   Phase = "header"    // preamble and section bounds
	PhaseDecode   Phase = "decode"    // statement and instruction streams
	PhaseOutline  Phase = "outline"   // declaration table lookups and commits
	PhaseLoadArgs Phase = "load_args" // binder setup
	PhaseProof    Phase = "proof"     // proof replay
	PhaseUnify    Phase = "unify"     // unification
	PhaseVerify   Phase = "verify"    // per-declaration closing checks
	PhaseConfig   Phase = "config"    // driver configuration
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidData    Kind = "invalid_data"
	KindTruncated      Kind = "truncated"
	KindOutOfBounds    Kind = "out_of_bounds"
	KindTypeMismatch   Kind = "type_mismatch"
	KindOverflow       Kind = "overflow"
	KindNotFound       Kind = "not_found"
	KindInvariant      Kind = "invariant"
	KindUnsupported    Kind = "unsupported"
	KindStackUnderflow Kind = "stack_underflow"
	KindStackNotEmpty  Kind = "stack_not_empty"
	KindMismatch       Kind = "mismatch"
	KindInvalidInput   Kind = "invalid_input"
)

// Error is the structured error type used throughout the verifier
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Decl   string // declaration under verification, e.g. "theorem 12"
	Detail string
	Path   []string
	Offset int // byte offset into the certificate; 0 when unknown
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Decl != "" {
		b.WriteString(" in ")
		b.WriteString(e.Decl)
	}

	if e.Offset != 0 {
		fmt.Fprintf(&b, " @%#x", e.Offset)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Decl sets the declaration description
func (b *Builder) Decl(decl string) *Builder {
	b.err.Decl = decl
	return b
}

// Offset sets the byte offset of the offending data
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Truncated creates an error for a buffer that ends inside a field
func Truncated(phase Phase, field string, need, have int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTruncated,
		Path:   []string{field},
		Detail: fmt.Sprintf("need %d bytes, have %d", need, have),
		Value:  have,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, want, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Detail: fmt.Sprintf("expected %s, got %s", want, got),
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, limit string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: fmt.Sprintf("value %v exceeds %s", value, limit),
		Value:  value,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what string, index any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %v not found", what, index),
		Value:  index,
	}
}

// Invariant creates an error for a failed re-derived check
func Invariant(phase Phase, check string, args ...any) *Error {
	return New(phase, KindInvariant).Detail(check, args...).Build()
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// StackUnderflow creates an error for popping an empty stack
func StackUnderflow(phase Phase, stack string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindStackUnderflow,
		Path:   []string{stack},
		Detail: "expected a value",
	}
}

// StackNotEmpty creates an error for a stack that must be drained
func StackNotEmpty(phase Phase, stack string, remaining int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindStackNotEmpty,
		Path:   []string{stack},
		Detail: fmt.Sprintf("%d items left", remaining),
		Value:  remaining,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// InDecl attaches declaration context to err. Structured errors are copied
// with Decl (and Offset, if unset) filled in so errors.Is keeps matching by
// Phase and Kind; other errors are wrapped as verify-phase invalid data.
func InDecl(err error, decl string, offset int) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		c := *e
		if c.Decl == "" {
			c.Decl = decl
		}
		if c.Offset == 0 {
			c.Offset = offset
		}
		return &c
	}
	return &Error{
		Phase:  PhaseVerify,
		Kind:   KindInvalidData,
		Decl:   decl,
		Offset: offset,
		Cause:  err,
	}
}
