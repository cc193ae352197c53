package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd
	// KindPoint represents an instant event.
	KindPoint
	// KindError is an instant event reporting a failure.
	KindError
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent coarser events.
type Scope uint8

const (
	// ScopeSession covers one translation unit.
	ScopeSession Scope = iota + 1
	// ScopePass covers a pass over the declarations (declare, instantiate,
	// finalise).
	ScopePass
	// ScopeDecl covers one namespace, struct, constant or alias.
	ScopeDecl
	// ScopeInstantiation covers one template instantiation.
	ScopeInstantiation
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeSession:
		return "session"
	case ScopePass:
		return "pass"
	case ScopeDecl:
		return "decl"
	case ScopeInstantiation:
		return "instantiation"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time         // wall-clock timestamp
	Seq      uint64            // global sequence number (monotonic)
	Kind     Kind              // event kind
	Scope    Scope             // granularity level
	SpanID   uint64            // span identifier (0 for points)
	ParentID uint64            // enclosing span (0 if root)
	Name     string            // e.g. "declare", "instantiate:dsp::Pair<int>"
	Detail   string            // optional detail message
	Extra    map[string]string // extensible key-value pairs
}
