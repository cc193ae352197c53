package types

import (
	"strings"

	"snex/internal/ident"
)

// TypeInfo is the type annotation attached to symbols, members and
// arguments: a primitive kind, a complex descriptor, or a placeholder for a
// template type argument that is not bound yet.
type TypeInfo struct {
	kind        Kind
	complex     ComplexType
	placeholder ident.ID
	isConst     bool
	isRef       bool
}

// Primitive describes a value of a primitive kind.
func Primitive(k Kind) TypeInfo { return TypeInfo{kind: k} }

// Complex wraps a descriptor.
func Complex(ct ComplexType) TypeInfo {
	if ct == nil {
		return TypeInfo{}
	}
	return TypeInfo{kind: KindComplex, complex: ct}
}

// Placeholder describes the still-unbound template type argument id.
func Placeholder(id ident.ID) TypeInfo {
	return TypeInfo{kind: KindDynamic, placeholder: id}
}

// Common primitive annotations.
var (
	IntType    = Primitive(KindInteger)
	FloatType  = Primitive(KindFloat)
	DoubleType = Primitive(KindDouble)
	VoidType   = Primitive(KindVoid)
	PtrType    = Primitive(KindPointer)
)

func (t TypeInfo) Kind() Kind { return t.kind }

// ComplexType returns the descriptor, or nil for primitives.
func (t TypeInfo) ComplexType() ComplexType { return t.complex }

func (t TypeInfo) IsValid() bool   { return t.kind != KindInvalid }
func (t TypeInfo) IsComplex() bool { return t.complex != nil }
func (t TypeInfo) IsConst() bool   { return t.isConst }
func (t TypeInfo) IsRef() bool     { return t.isRef }

// IsTemplatePlaceholder reports whether the type is a template type argument.
func (t TypeInfo) IsTemplatePlaceholder() bool { return !t.placeholder.IsNull() }

// PlaceholderID names the template argument the type stands in for.
func (t TypeInfo) PlaceholderID() ident.ID { return t.placeholder }

// IsUnresolved reports whether the type still depends on template arguments,
// directly or through a deferred instantiation.
func (t TypeInfo) IsUnresolved() bool {
	if t.IsTemplatePlaceholder() {
		return true
	}
	_, deferred := t.complex.(*TemplatedComplexType)
	return deferred
}

func (t TypeInfo) WithConst(c bool) TypeInfo {
	t.isConst = c
	return t
}

func (t TypeInfo) WithRef(r bool) TypeInfo {
	t.isRef = r
	return t
}

// Size is the storage size of a value of this type. References occupy a
// pointer.
func (t TypeInfo) Size() (int, error) {
	switch {
	case t.isRef:
		return PointerSize, nil
	case t.complex != nil:
		return t.complex.Size()
	case t.IsTemplatePlaceholder():
		return 0, &Error{Kind: ErrUnresolvedTemplate, Type: t.String(), Index: -1}
	default:
		return t.kind.Size(), nil
	}
}

// Alignment is the required alignment of a value of this type.
func (t TypeInfo) Alignment() (int, error) {
	switch {
	case t.isRef:
		return PointerSize, nil
	case t.complex != nil:
		return t.complex.Alignment()
	case t.IsTemplatePlaceholder():
		return 0, &Error{Kind: ErrUnresolvedTemplate, Type: t.String(), Index: -1}
	default:
		return t.kind.Alignment(), nil
	}
}

// SameType compares the underlying types and ignores const/ref modifiers.
func (t TypeInfo) SameType(o TypeInfo) bool {
	if t.kind != o.kind || t.placeholder != o.placeholder {
		return false
	}
	if t.complex == nil || o.complex == nil {
		return t.complex == nil && o.complex == nil
	}
	return t.complex.Equal(o.complex)
}

// Equal is SameType plus matching modifiers.
func (t TypeInfo) Equal(o TypeInfo) bool {
	return t.SameType(o) && t.isConst == o.isConst && t.isRef == o.isRef
}

// Key is the structural identity used in template and registry keys.
func (t TypeInfo) Key() string {
	var b strings.Builder
	if t.isConst {
		b.WriteString("const ")
	}
	switch {
	case t.complex != nil:
		b.WriteString(t.complex.Key())
	case t.IsTemplatePlaceholder():
		b.WriteString(t.placeholder.String())
	default:
		b.WriteString(t.kind.String())
	}
	if t.isRef {
		b.WriteByte('&')
	}
	return b.String()
}

func (t TypeInfo) String() string {
	if !t.IsValid() {
		return "invalid"
	}
	return t.Key()
}
