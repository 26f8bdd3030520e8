package mmb

import (
	"fmt"
	"strings"

	"github.com/wippyai/mmbverify/errors"
)

// SortMods is the modifier byte of a sort.
type SortMods uint8

func (m SortMods) IsPure() bool     { return m&SortPure != 0 }
func (m SortMods) IsStrict() bool   { return m&SortStrict != 0 }
func (m SortMods) IsProvable() bool { return m&SortProvable != 0 }
func (m SortMods) IsFree() bool     { return m&SortFree != 0 }

// Valid reports whether the reserved high nibble is clear.
func (m SortMods) Valid() bool { return m&sortReserved == 0 }

func (m SortMods) String() string {
	var parts []string
	if m.IsPure() {
		parts = append(parts, "pure")
	}
	if m.IsStrict() {
		parts = append(parts, "strict")
	}
	if m.IsProvable() {
		parts = append(parts, "provable")
	}
	if m.IsFree() {
		parts = append(parts, "free")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Type packs a binder or expression type: bit 63 is the bound flag,
// bits 56-62 the sort, bits 0-55 the dependency mask (or, for a bound
// variable, its single-bit digit).
type Type uint64

// MakeType builds a non-bound type of sort with the given dependencies.
func MakeType(sort uint8, deps uint64) Type {
	return Type(uint64(sort&0x7F)<<56 | deps&TypeDepsMask)
}

// MakeBound builds a bound-variable type of sort with the given digit.
func MakeBound(sort uint8, digit uint64) Type {
	return Type(TypeBoundMask | uint64(sort&0x7F)<<56 | digit&TypeDepsMask)
}

// IsBound reports whether the type is a bound variable.
func (t Type) IsBound() bool {
	return uint64(t)&TypeBoundMask != 0
}

// Sort returns the sort index.
func (t Type) Sort() uint8 {
	return uint8((uint64(t) & TypeSortMask) >> 56)
}

// LowBits returns the dependency mask or the bound digit, whichever the
// type carries.
func (t Type) LowBits() uint64 {
	return uint64(t) & TypeDepsMask
}

// Deps returns the dependency mask of a non-bound type.
func (t Type) Deps() (uint64, error) {
	if t.IsBound() {
		return 0, errors.TypeMismatch(errors.PhaseVerify, nil, "non-bound type", "bound variable")
	}
	return t.LowBits(), nil
}

// BoundDigit returns the digit of a bound-variable type.
func (t Type) BoundDigit() (uint64, error) {
	if !t.IsBound() {
		return 0, errors.TypeMismatch(errors.PhaseVerify, nil, "bound variable", "non-bound type")
	}
	return t.LowBits(), nil
}

func (t Type) String() string {
	if t.IsBound() {
		return fmt.Sprintf("bound(sort=%d, digit=%#x)", t.Sort(), t.LowBits())
	}
	return fmt.Sprintf("sort=%d deps=%#x", t.Sort(), t.LowBits())
}

// SortsCompatible reports whether a value of type from can stand in for a
// value of type to. The sorts must agree; a bound variable may be used
// where a non-bound value is expected but not the other way around.
// Dependency masks are not compared.
func SortsCompatible(from, to Type) bool {
	diff := uint64(from) ^ uint64(to)
	if diff&^TypeDepsMask == 0 {
		return true
	}
	return diff&^TypeBoundMask&^TypeDepsMask == 0 && from.IsBound()
}
