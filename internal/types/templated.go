package types

import "snex/internal/ident"

// Instantiator creates concrete types from template arguments. The template
// engine implements it.
type Instantiator interface {
	CreateTemplateInstantiation(id ident.ID, args []TemplateParameter) (TypeInfo, error)
}

// TemplatedComplexType stands in for an instantiation whose arguments still
// mention template placeholders. It has no layout until it is bound.
type TemplatedComplexType struct {
	templateID   ident.ID
	args         []TemplateParameter
	instantiator Instantiator
}

func NewTemplatedComplexType(id ident.ID, args []TemplateParameter, inst Instantiator) *TemplatedComplexType {
	return &TemplatedComplexType{templateID: id, args: append([]TemplateParameter(nil), args...), instantiator: inst}
}

func (t *TemplatedComplexType) TemplateID() ident.ID { return t.templateID }

func (t *TemplatedComplexType) Arguments() []TemplateParameter {
	return append([]TemplateParameter(nil), t.args...)
}

func (t *TemplatedComplexType) Key() string { return TemplateKey(t.templateID, t.args) }

func (t *TemplatedComplexType) String() string { return t.Key() }

func (t *TemplatedComplexType) Equal(other ComplexType) bool { return sameKey(t, other) }

func (t *TemplatedComplexType) unresolved() *Error {
	return &Error{Kind: ErrUnresolvedTemplate, Type: t.Key(), Index: -1}
}

func (t *TemplatedComplexType) FinaliseAlignment() error { return t.unresolved() }

func (t *TemplatedComplexType) IsFinalised() bool { return false }

func (t *TemplatedComplexType) Size() (int, error) { return 0, t.unresolved() }

func (t *TemplatedComplexType) Alignment() (int, error) { return 0, t.unresolved() }

func (t *TemplatedComplexType) MakeDefaultInitialiserList() (InitialiserList, error) {
	return InitialiserList{}, t.unresolved()
}

func (t *TemplatedComplexType) Initialise(*Memory, Addr, InitialiserList) error {
	return t.unresolved()
}

func (t *TemplatedComplexType) ForEach(Visitor, ComplexType, Addr) bool { return false }

func (t *TemplatedComplexType) FunctionClass() (*FunctionClass, error) { return nil, t.unresolved() }

// Bind substitutes the placeholders named by bound[i].ArgumentID. Once no
// placeholder is left the concrete type is instantiated; otherwise a new
// deferred type with the partially substituted arguments is returned.
func (t *TemplatedComplexType) Bind(bound []TemplateParameter) (TypeInfo, error) {
	args := make([]TemplateParameter, len(t.args))
	for i, a := range t.args {
		s, err := substitute(a, bound)
		if err != nil {
			return TypeInfo{}, err
		}
		args[i] = s
	}
	if HasUnresolved(args) {
		return Complex(NewTemplatedComplexType(t.templateID, args, t.instantiator)), nil
	}
	if t.instantiator == nil {
		return TypeInfo{}, &Error{Kind: ErrUnresolvedTemplate, Type: t.Key(), Index: -1, Detail: "no instantiator"}
	}
	return t.instantiator.CreateTemplateInstantiation(t.templateID, args)
}

// SubstituteType replaces placeholders in t with the bound arguments.
func SubstituteType(t TypeInfo, bound []TemplateParameter) (TypeInfo, error) {
	var out TypeInfo
	switch {
	case t.IsTemplatePlaceholder():
		b, ok := lookupBound(t.PlaceholderID(), bound)
		if !ok || b.Kind != ParamType {
			return t, nil
		}
		out = b.Type
	case t.IsUnresolved():
		r, err := t.ComplexType().(*TemplatedComplexType).Bind(bound)
		if err != nil {
			return TypeInfo{}, err
		}
		out = r
	default:
		return t, nil
	}
	return out.WithConst(out.IsConst() || t.IsConst()).WithRef(out.IsRef() || t.IsRef()), nil
}

func substitute(p TemplateParameter, bound []TemplateParameter) (TemplateParameter, error) {
	switch p.Kind {
	case ParamType:
		st, err := SubstituteType(p.Type, bound)
		if err != nil {
			return p, err
		}
		p.Type = st
	case ParamIntegerArgument, ParamTypeArgument:
		if b, ok := lookupBound(p.ArgumentID, bound); ok && !b.IsArgument() {
			return b, nil
		}
	}
	return p, nil
}

func lookupBound(id ident.ID, bound []TemplateParameter) (TemplateParameter, bool) {
	for _, b := range bound {
		if b.ArgumentID == id {
			return b, true
		}
	}
	return TemplateParameter{}, false
}
