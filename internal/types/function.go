package types

import (
	"strconv"
	"strings"

	"snex/internal/ident"
)

// Symbol is a typed name: a function argument, a variable or a member.
type Symbol struct {
	ID    ident.ID
	Type  TypeInfo
	Const bool
}

func (s Symbol) String() string {
	if s.ID.IsNull() {
		return s.Type.String()
	}
	return s.Type.String() + " " + s.ID.Name()
}

// NativeFunc is a host implementation of a function. object is the address
// of the receiver, NullAddr for free functions.
type NativeFunc func(mem *Memory, object Addr, args []Value) (Value, error)

// DefaultArgument builds the expression used when a call omits argument
// argIndex.
type DefaultArgument func(argIndex int) (Expr, error)

// FunctionData describes one callable. It is resolvable once it has a native
// entry point or an inliner.
type FunctionData struct {
	ID                 ident.ID
	Args               []Symbol
	ReturnType         TypeInfo
	Native             NativeFunc
	TemplateParameters []TemplateParameter
	Const              bool
	Description        string

	asm         AsmInliner
	highLevel   HighLevelInliner
	defaultArgs map[int]DefaultArgument
}

// NewFunction creates a signature without implementation.
func NewFunction(id ident.ID, ret TypeInfo, args ...Symbol) *FunctionData {
	return &FunctionData{ID: id, ReturnType: ret, Args: args}
}

// SetInliner installs in for its phase, replacing any previous one.
func (f *FunctionData) SetInliner(in Inliner) {
	switch v := in.(type) {
	case AsmInliner:
		f.asm = v
	case HighLevelInliner:
		f.highLevel = v
	}
}

// CanBeInlined reports whether an inliner for phase is installed.
func (f *FunctionData) CanBeInlined(phase InlinePhase) bool {
	switch phase {
	case PhaseAssembly:
		return f.asm != nil
	case PhaseHighLevel:
		return f.highLevel != nil
	default:
		return false
	}
}

// IsResolved reports whether the function can be called or inlined.
func (f *FunctionData) IsResolved() bool {
	return f.Native != nil || f.asm != nil || f.highLevel != nil
}

// InlineFunction runs the inliner matching the phase of data.
func (f *FunctionData) InlineFunction(data InlineData) error {
	switch d := data.(type) {
	case *AsmInlineData:
		if f.asm == nil {
			return f.errNoInliner(PhaseAssembly)
		}
		if d.Emitter == nil {
			return &Error{Kind: ErrBadOperand, Type: f.ID.String(), Index: -1, Detail: "no emitter"}
		}
		if d.Function == nil {
			d.Function = f
		}
		return f.asm(d)
	case *HighLevelInlineData:
		if f.highLevel == nil {
			return f.errNoInliner(PhaseHighLevel)
		}
		if d.Function == nil {
			d.Function = f
		}
		if err := f.highLevel(d); err != nil {
			return err
		}
		if d.Replacement == nil {
			return &Error{Kind: ErrBadOperand, Type: f.ID.String(), Index: -1, Detail: "inliner produced no expression"}
		}
		return nil
	default:
		return &Error{Kind: ErrInvalidArgument, Type: f.ID.String(), Index: -1, Detail: "unknown inline data"}
	}
}

func (f *FunctionData) errNoInliner(phase InlinePhase) *Error {
	return &Error{Kind: ErrNoInliner, Type: f.ID.String(), Index: -1, Want: phase.String()}
}

// Call runs the native entry point.
func (f *FunctionData) Call(mem *Memory, object Addr, args []Value) (Value, error) {
	if f.Native == nil {
		return Value{}, &Error{Kind: ErrNoNative, Type: f.ID.String(), Index: -1}
	}
	if len(args) != len(f.Args) {
		return Value{}, &Error{
			Kind:   ErrInvalidArgument,
			Type:   f.ID.String(),
			Index:  -1,
			Want:   strconv.Itoa(len(f.Args)),
			Got:    strconv.Itoa(len(args)),
			Detail: "argument amount mismatch",
		}
	}
	return f.Native(mem, object, args)
}

// MatchesArgumentTypes compares argument types structurally. Modifiers are
// ignored.
func (f *FunctionData) MatchesArgumentTypes(args []TypeInfo) bool {
	if len(args) != len(f.Args) {
		return false
	}
	for i, a := range args {
		if !f.Args[i].Type.SameType(a) {
			return false
		}
	}
	return true
}

// MatchesArgumentTypesWithDefaults also accepts a shorter list when every
// missing trailing argument has a default builder.
func (f *FunctionData) MatchesArgumentTypesWithDefaults(args []TypeInfo) bool {
	if len(args) > len(f.Args) {
		return false
	}
	for i := len(args); i < len(f.Args); i++ {
		if _, ok := f.defaultArgs[i]; !ok {
			return false
		}
	}
	for i, a := range args {
		if !f.Args[i].Type.SameType(a) {
			return false
		}
	}
	return true
}

// MatchesFunction reports whether o has the same name, return type and
// argument types.
func (f *FunctionData) MatchesFunction(o *FunctionData) bool {
	if o == nil || f.ID != o.ID || !f.ReturnType.SameType(o.ReturnType) {
		return false
	}
	argTypes := make([]TypeInfo, len(o.Args))
	for i, a := range o.Args {
		argTypes[i] = a.Type
	}
	return f.MatchesArgumentTypes(argTypes)
}

// MatchesTemplateArguments compares the bound template parameters.
func (f *FunctionData) MatchesTemplateArguments(params []TemplateParameter) bool {
	return ParamsEqual(f.TemplateParameters, params)
}

// AddDefaultArgument registers the builder for argument index.
func (f *FunctionData) AddDefaultArgument(index int, build DefaultArgument) error {
	if index < 0 || index >= len(f.Args) {
		return &Error{Kind: ErrOutOfBounds, Type: f.ID.String(), Index: index, Detail: "no such argument"}
	}
	if f.defaultArgs == nil {
		f.defaultArgs = make(map[int]DefaultArgument)
	}
	f.defaultArgs[index] = build
	return nil
}

// HasDefaultArgument reports whether argument index has a default builder.
func (f *FunctionData) HasDefaultArgument(index int) bool {
	_, ok := f.defaultArgs[index]
	return ok
}

// DefaultArgument builds the default expression for argument index.
func (f *FunctionData) DefaultArgument(index int) (Expr, error) {
	build, ok := f.defaultArgs[index]
	if !ok {
		return nil, &Error{Kind: ErrInvalidArgument, Type: f.ID.String(), Index: index, Detail: "no default for argument"}
	}
	return build(index)
}

// Clone returns an independent copy that shares the callbacks.
func (f *FunctionData) Clone() *FunctionData {
	c := *f
	c.Args = append([]Symbol(nil), f.Args...)
	c.TemplateParameters = append([]TemplateParameter(nil), f.TemplateParameters...)
	if f.defaultArgs != nil {
		c.defaultArgs = make(map[int]DefaultArgument, len(f.defaultArgs))
		for k, v := range f.defaultArgs {
			c.defaultArgs[k] = v
		}
	}
	return &c
}

// Signature renders "ret name<params>(args) const".
func (f *FunctionData) Signature() string {
	var b strings.Builder
	b.WriteString(f.ReturnType.String())
	b.WriteByte(' ')
	b.WriteString(f.ID.String())
	if len(f.TemplateParameters) > 0 {
		b.WriteByte('<')
		b.WriteString(ParamsKey(f.TemplateParameters))
		b.WriteByte('>')
	}
	b.WriteByte('(')
	for i, a := range f.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteByte(')')
	if f.Const {
		b.WriteString(" const")
	}
	return b.String()
}
