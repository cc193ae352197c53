package templates

import (
	"fmt"

	"snex/internal/ident"
)

// ErrorKind classifies template registration and instantiation failures.
type ErrorKind uint8

const (
	ErrUnknownTemplate ErrorKind = iota + 1
	ErrParamCount
	ErrParamKind
	ErrIllegalConstant
	ErrConstruction
	ErrDuplicateTemplate
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnknownTemplate:
		return "unknown_template"
	case ErrParamCount:
		return "param_count"
	case ErrParamKind:
		return "param_kind"
	case ErrIllegalConstant:
		return "illegal_constant"
	case ErrConstruction:
		return "construction"
	case ErrDuplicateTemplate:
		return "duplicate_template"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// TemplateError reports a failed template operation. Err carries the
// underlying cause when there is one.
type TemplateError struct {
	Kind   ErrorKind
	ID     ident.ID
	Index  int
	Detail string
	Err    error
}

func (e *TemplateError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var msg string
	switch e.Kind {
	case ErrUnknownTemplate:
		msg = fmt.Sprintf("%s is not a template", e.ID)
	case ErrParamCount:
		msg = fmt.Sprintf("%s: template parameter amount mismatch", e.ID)
	case ErrParamKind:
		msg = fmt.Sprintf("%s: template argument %d has the wrong kind", e.ID, e.Index)
	case ErrIllegalConstant:
		msg = fmt.Sprintf("%s: illegal constant for template argument %d", e.ID, e.Index)
	case ErrConstruction:
		msg = fmt.Sprintf("%s: instantiation failed", e.ID)
	case ErrDuplicateTemplate:
		msg = fmt.Sprintf("%s: template already registered with this parameter list", e.ID)
	default:
		msg = e.Kind.String()
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TemplateError) Unwrap() error { return e.Err }

// Is matches on Kind.
func (e *TemplateError) Is(target error) bool {
	t, ok := target.(*TemplateError)
	return ok && t.Kind == e.Kind
}
