package types

// InlinePhase selects the pipeline stage an inliner runs in.
type InlinePhase uint8

const (
	// PhaseHighLevel rewrites the expression tree before code generation.
	PhaseHighLevel InlinePhase = iota + 1
	// PhaseAssembly emits instructions in place of a call.
	PhaseAssembly
)

func (p InlinePhase) String() string {
	switch p {
	case PhaseHighLevel:
		return "high-level"
	case PhaseAssembly:
		return "assembly"
	default:
		return "unknown"
	}
}

// Inliner is implemented by AsmInliner and HighLevelInliner only.
type Inliner interface {
	Phase() InlinePhase
	isInliner()
}

// AsmInliner drives an AsmEmitter instead of emitting a call.
type AsmInliner func(d *AsmInlineData) error

// HighLevelInliner stores a replacement expression in d.Replacement.
type HighLevelInliner func(d *HighLevelInlineData) error

func (AsmInliner) Phase() InlinePhase       { return PhaseAssembly }
func (AsmInliner) isInliner()               {}
func (HighLevelInliner) Phase() InlinePhase { return PhaseHighLevel }
func (HighLevelInliner) isInliner()         {}

// InlineData is implemented by *AsmInlineData and *HighLevelInlineData only.
type InlineData interface {
	Phase() InlinePhase
	isInlineData()
}

// AsmInlineData is what an assembly inliner sees of the call site.
type AsmInlineData struct {
	Function *FunctionData
	// Target receives the return value; invalid for void calls.
	Target             Operand
	Object             Operand
	Args               []Operand
	TemplateParameters []TemplateParameter
	Emitter            AsmEmitter
}

// HighLevelInlineData is what a high-level inliner sees of the call site.
type HighLevelInlineData struct {
	Function           *FunctionData
	Object             Expr
	Args               []Expr
	TemplateParameters []TemplateParameter
	// Replacement is set by the inliner and spliced in place of the call.
	Replacement Expr
}

func (*AsmInlineData) Phase() InlinePhase       { return PhaseAssembly }
func (*AsmInlineData) isInlineData()            {}
func (*HighLevelInlineData) Phase() InlinePhase { return PhaseHighLevel }
func (*HighLevelInlineData) isInlineData()      {}
