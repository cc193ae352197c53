package types

import (
	"fmt"
	"strings"
)

// ErrorKind classifies failures raised by descriptors and signatures.
type ErrorKind uint8

const (
	// ErrNotFinalised means size or alignment was queried before FinaliseAlignment.
	ErrNotFinalised ErrorKind = iota + 1
	// ErrInitArity means an initialiser list has the wrong number of elements.
	ErrInitArity
	// ErrInitTypeMismatch means an initialiser element does not fit its slot.
	ErrInitTypeMismatch
	// ErrMissingMethod means a variadic sub-type lacks a fanned-out method.
	ErrMissingMethod
	// ErrNoInliner means the signature has no inliner for the requested phase.
	ErrNoInliner
	ErrNoNative
	ErrBadOperand
	ErrOutOfBounds
	ErrUnresolvedTemplate
	ErrDuplicateMember
	ErrRecursiveType
	ErrInvalidArgument
	ErrAmbiguousFunction
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNotFinalised:
		return "not_finalised"
	case ErrInitArity:
		return "init_arity"
	case ErrInitTypeMismatch:
		return "init_type_mismatch"
	case ErrMissingMethod:
		return "missing_method"
	case ErrNoInliner:
		return "no_inliner"
	case ErrNoNative:
		return "no_native"
	case ErrBadOperand:
		return "bad_operand"
	case ErrOutOfBounds:
		return "out_of_bounds"
	case ErrUnresolvedTemplate:
		return "unresolved_template"
	case ErrDuplicateMember:
		return "duplicate_member"
	case ErrRecursiveType:
		return "recursive_type"
	case ErrInvalidArgument:
		return "invalid_argument"
	case ErrAmbiguousFunction:
		return "ambiguous_function"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error is the structured error returned by layout, initialisation and
// inlining operations.
type Error struct {
	Kind   ErrorKind
	Type   string // descriptor or signature the error refers to
	Name   string // member, method or argument name
	Index  int    // offending initialiser index, -1 when not applicable
	Want   string
	Got    string
	Detail string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	switch e.Kind {
	case ErrNotFinalised:
		fmt.Fprintf(&b, "%s: layout queried before alignment was finalised", e.Type)
	case ErrInitArity:
		fmt.Fprintf(&b, "%s: initialiser list mismatch: expected %s elements, got %s", e.Type, e.Want, e.Got)
	case ErrInitTypeMismatch:
		fmt.Fprintf(&b, "%s: type mismatch at index %d: expected %s, got %s", e.Type, e.Index, e.Want, e.Got)
	case ErrMissingMethod:
		if e.Got != "" {
			fmt.Fprintf(&b, "%s: sub-type %s has no method %s", e.Type, e.Got, e.Name)
		} else {
			fmt.Fprintf(&b, "%s: no method %s", e.Type, e.Name)
		}
	case ErrAmbiguousFunction:
		fmt.Fprintf(&b, "%s: call of %s is ambiguous", e.Type, e.Name)
	case ErrNoInliner:
		fmt.Fprintf(&b, "%s: no %s inliner", e.Type, e.Want)
	case ErrNoNative:
		fmt.Fprintf(&b, "%s: no native entry point", e.Type)
	case ErrDuplicateMember:
		fmt.Fprintf(&b, "%s: duplicate member %s", e.Type, e.Name)
	case ErrRecursiveType:
		fmt.Fprintf(&b, "%s: recursive value type has infinite size", e.Type)
	case ErrUnresolvedTemplate:
		fmt.Fprintf(&b, "%s: template arguments are not resolved", e.Type)
	default:
		b.WriteString(e.Kind.String())
		if e.Type != "" {
			b.WriteString(" (")
			b.WriteString(e.Type)
			b.WriteByte(')')
		}
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// Is matches on Kind so callers can write errors.Is(err, &types.Error{Kind: ...}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func errArity(typeName string, want, got int) *Error {
	return &Error{Kind: ErrInitArity, Type: typeName, Index: -1, Want: fmt.Sprint(want), Got: fmt.Sprint(got)}
}

func errTypeMismatch(typeName string, index int, want, got string) *Error {
	return &Error{Kind: ErrInitTypeMismatch, Type: typeName, Index: index, Want: want, Got: got}
}

func errNotFinalised(typeName string) *Error {
	return &Error{Kind: ErrNotFinalised, Type: typeName, Index: -1}
}
