package decl

import (
	"fmt"
	"strings"

	"snex/internal/diag"
)

// ErrorKind classifies manifest failures.
type ErrorKind uint8

const (
	ErrSyntax ErrorKind = iota + 1
	ErrTypeExpr
	ErrTemplateDecl
	ErrConstant
	ErrPadding
	ErrEmptyName
	ErrMember
)

func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "syntax"
	case ErrTypeExpr:
		return "type_expr"
	case ErrTemplateDecl:
		return "template_decl"
	case ErrConstant:
		return "constant"
	case ErrPadding:
		return "padding"
	case ErrEmptyName:
		return "empty_name"
	case ErrMember:
		return "member"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error reports malformed manifest content. Pos is a byte offset into Input
// for type expressions and -1 otherwise.
type Error struct {
	Kind   ErrorKind
	Input  string
	Pos    int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Input != "" {
		fmt.Fprintf(&b, " %q", e.Input)
		if e.Pos >= 0 {
			fmt.Fprintf(&b, " at %d", e.Pos)
		}
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// DiagCode maps the error to its diagnostic code.
func (e *Error) DiagCode() diag.Code {
	switch e.Kind {
	case ErrSyntax:
		return diag.DclSyntax
	case ErrTypeExpr:
		return diag.DclBadTypeExpr
	case ErrTemplateDecl:
		return diag.DclBadTemplate
	case ErrConstant:
		return diag.DclBadConstant
	case ErrPadding:
		return diag.DclBadPadding
	case ErrEmptyName:
		return diag.DclEmptyName
	case ErrMember:
		return diag.DclUnknownMember
	}
	return diag.DclInfo
}
