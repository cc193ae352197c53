package namespace

import (
	"fmt"
	"strings"

	"snex/internal/ident"
)

// ResolveErrorKind classifies failures of symbol table queries.
type ResolveErrorKind uint8

const (
	ResolveUnresolved ResolveErrorKind = iota + 1
	ResolveAmbiguous
	ResolveNotNamespace
	ResolveNotVisible
	ResolveScopeMismatch
	ResolveKindMismatch
)

func (k ResolveErrorKind) String() string {
	switch k {
	case ResolveUnresolved:
		return "unresolved"
	case ResolveAmbiguous:
		return "ambiguous"
	case ResolveNotNamespace:
		return "not_namespace"
	case ResolveNotVisible:
		return "not_visible"
	case ResolveScopeMismatch:
		return "scope_mismatch"
	case ResolveKindMismatch:
		return "kind_mismatch"
	default:
		return fmt.Sprintf("ResolveErrorKind(%d)", k)
	}
}

// ResolveError is returned by symbol table operations.
type ResolveError struct {
	Kind ResolveErrorKind
	ID   ident.ID
	// Scope is the namespace the query ran in.
	Scope      ident.ID
	Candidates []ident.ID
	Detail     string
}

func (e *ResolveError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var msg string
	switch e.Kind {
	case ResolveUnresolved:
		msg = fmt.Sprintf("can't resolve %s", e.ID)
	case ResolveAmbiguous:
		names := make([]string, len(e.Candidates))
		for i, c := range e.Candidates {
			names[i] = c.String()
		}
		msg = fmt.Sprintf("ambiguous symbol %s: candidates %s", e.ID, strings.Join(names, ", "))
	case ResolveNotNamespace:
		msg = fmt.Sprintf("%s is not a namespace", e.ID)
	case ResolveNotVisible:
		msg = fmt.Sprintf("%s is not visible from %s", e.ID, scopeName(e.Scope))
	case ResolveScopeMismatch:
		msg = fmt.Sprintf("%s does not belong to the current namespace %s", e.ID, scopeName(e.Scope))
	case ResolveKindMismatch:
		msg = fmt.Sprintf("%s has the wrong symbol kind", e.ID)
	default:
		msg = e.Kind.String()
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is matches on Kind.
func (e *ResolveError) Is(target error) bool {
	t, ok := target.(*ResolveError)
	return ok && t.Kind == e.Kind
}

func scopeName(id ident.ID) string {
	if id.IsNull() {
		return "<root>"
	}
	return id.String()
}
