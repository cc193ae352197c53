package templates

import (
	"strconv"

	"snex/internal/ident"
	"snex/internal/namespace"
	"snex/internal/types"
)

// ConstructData is handed to template constructors.
type ConstructData struct {
	// ID is the template being instantiated.
	ID ident.ID
	// Args are the bound arguments, one per declared parameter (variadic
	// tails expanded), inherited parent template arguments first.
	Args    []types.TemplateParameter
	Engine  *Engine
	Handler *namespace.Handler
}

// ExpectParameterCount fails unless exactly n arguments are bound.
func (d ConstructData) ExpectParameterCount(n int) error {
	if len(d.Args) != n {
		return &TemplateError{Kind: ErrParamCount, ID: d.ID, Index: -1,
			Detail: "expected " + strconv.Itoa(n) + ", got " + strconv.Itoa(len(d.Args))}
	}
	return nil
}

// ExpectType returns argument i as a type.
func (d ConstructData) ExpectType(i int) (types.TypeInfo, error) {
	if i < 0 || i >= len(d.Args) {
		return types.TypeInfo{}, &TemplateError{Kind: ErrParamCount, ID: d.ID, Index: i}
	}
	if d.Args[i].Kind != types.ParamType {
		return types.TypeInfo{}, &TemplateError{Kind: ErrParamKind, ID: d.ID, Index: i, Detail: "expected a type"}
	}
	return d.Args[i].Type, nil
}

// ExpectConstant returns argument i as an integer.
func (d ConstructData) ExpectConstant(i int) (int, error) {
	if i < 0 || i >= len(d.Args) {
		return 0, &TemplateError{Kind: ErrParamCount, ID: d.ID, Index: i}
	}
	p := d.Args[i]
	if p.Kind != types.ParamConstant || !p.ConstantDefined {
		return 0, &TemplateError{Kind: ErrParamKind, ID: d.ID, Index: i, Detail: "expected an integer constant"}
	}
	return p.Constant, nil
}

// ExpectPositive is ExpectConstant that rejects zero and negative values.
func (d ConstructData) ExpectPositive(i int) (int, error) {
	n, err := d.ExpectConstant(i)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, &TemplateError{Kind: ErrIllegalConstant, ID: d.ID, Index: i, Detail: "must be positive, got " + strconv.Itoa(n)}
	}
	return n, nil
}

// Types returns arguments from..end as types, for variadic templates.
func (d ConstructData) Types(from int) ([]types.TypeInfo, error) {
	out := make([]types.TypeInfo, 0, max(len(d.Args)-from, 0))
	for i := from; i < len(d.Args); i++ {
		t, err := d.ExpectType(i)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// ClassConstructor builds the descriptor of one class instantiation.
type ClassConstructor func(d ConstructData) (types.ComplexType, error)

// FunctionConstructor fills in f, which already carries its id and bound
// template parameters.
type FunctionConstructor func(d ConstructData, f *types.FunctionData) error

// TemplateObject is a registered class or function template.
type TemplateObject struct {
	ID ident.ID
	// Params declares the template's own arguments. Parameters of enclosing
	// templates are prepended on registration.
	Params       []types.TemplateParameter
	MakeClass    ClassConstructor
	MakeFunction FunctionConstructor
	Description  string

	own []types.TemplateParameter
}

// IsClass reports whether the template produces types.
func (t *TemplateObject) IsClass() bool { return t.MakeClass != nil }

// Signature renders "id<typename T, int N>".
func (t *TemplateObject) Signature() string {
	s := t.ID.String() + "<"
	for i, p := range t.Params {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	return s + ">"
}
