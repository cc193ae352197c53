package types

import (
	"strconv"
	"strings"

	"snex/internal/ident"
)

// ParamKind tags a TemplateParameter.
type ParamKind uint8

const (
	ParamEmpty ParamKind = iota
	// ParamConstant is a concrete integer argument.
	ParamConstant
	// ParamType is a concrete type argument.
	ParamType
	// ParamIntegerArgument declares an integer template argument (int N).
	ParamIntegerArgument
	// ParamTypeArgument declares a type template argument (typename T).
	ParamTypeArgument
)

func (k ParamKind) String() string {
	switch k {
	case ParamEmpty:
		return "empty"
	case ParamConstant:
		return "constant"
	case ParamType:
		return "type"
	case ParamIntegerArgument:
		return "integer-argument"
	case ParamTypeArgument:
		return "type-argument"
	default:
		return "unknown"
	}
}

// TemplateParameter is either a declared template argument (on a template)
// or a supplied argument (at an instantiation site).
type TemplateParameter struct {
	Kind            ParamKind
	Type            TypeInfo
	Constant        int
	ConstantDefined bool
	// ArgumentID names the declared argument this parameter binds to.
	ArgumentID ident.ID
	Variadic   bool
	// Default is used when an instantiation omits a trailing argument.
	Default *TemplateParameter
}

// TypeParam supplies a concrete or placeholder type.
func TypeParam(t TypeInfo) TemplateParameter {
	return TemplateParameter{Kind: ParamType, Type: t}
}

// ConstParam supplies an integer constant.
func ConstParam(n int) TemplateParameter {
	return TemplateParameter{Kind: ParamConstant, Constant: n, ConstantDefined: true}
}

// TypeArgument declares typename id.
func TypeArgument(id ident.ID, variadic bool) TemplateParameter {
	return TemplateParameter{Kind: ParamTypeArgument, ArgumentID: id, Variadic: variadic}
}

// IntegerArgument declares int id.
func IntegerArgument(id ident.ID, variadic bool) TemplateParameter {
	return TemplateParameter{Kind: ParamIntegerArgument, ArgumentID: id, Variadic: variadic}
}

// WithDefault returns a copy carrying a default value.
func (p TemplateParameter) WithDefault(def TemplateParameter) TemplateParameter {
	p.Default = &def
	return p
}

// IsArgument reports whether p is a declaration rather than a supplied value.
func (p TemplateParameter) IsArgument() bool {
	return p.Kind == ParamIntegerArgument || p.Kind == ParamTypeArgument
}

// IsResolved reports whether p is a concrete value with no placeholders.
func (p TemplateParameter) IsResolved() bool {
	switch p.Kind {
	case ParamType:
		return p.Type.IsValid() && !p.Type.IsUnresolved()
	case ParamConstant:
		return p.ConstantDefined
	default:
		return false
	}
}

// Equal requires matching tag, type, constant and constant-definedness.
func (p TemplateParameter) Equal(o TemplateParameter) bool {
	if p.Kind != o.Kind || p.ConstantDefined != o.ConstantDefined || p.Constant != o.Constant {
		return false
	}
	if p.Type.IsValid() || o.Type.IsValid() {
		if !p.Type.Equal(o.Type) {
			return false
		}
	}
	if p.IsArgument() {
		return p.ArgumentID == o.ArgumentID && p.Variadic == o.Variadic
	}
	return true
}

// Key is the structural identity of the parameter.
func (p TemplateParameter) Key() string {
	switch p.Kind {
	case ParamType:
		return p.Type.Key()
	case ParamConstant:
		if !p.ConstantDefined {
			return "?"
		}
		return strconv.Itoa(p.Constant)
	case ParamTypeArgument, ParamIntegerArgument:
		s := p.ArgumentID.String()
		if p.Variadic {
			s += "..."
		}
		return s
	default:
		return ""
	}
}

func (p TemplateParameter) String() string {
	switch p.Kind {
	case ParamTypeArgument:
		return "typename " + p.Key()
	case ParamIntegerArgument:
		return "int " + p.Key()
	default:
		return p.Key()
	}
}

// ParamsEqual compares two parameter lists element-wise.
func ParamsEqual(a, b []TemplateParameter) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// ParamsKey joins the keys of a parameter list.
func ParamsKey(list []TemplateParameter) string {
	parts := make([]string, len(list))
	for i, p := range list {
		parts[i] = p.Key()
	}
	return strings.Join(parts, ",")
}

// TemplateKey is the registry key of a template instantiation.
func TemplateKey(id ident.ID, args []TemplateParameter) string {
	return id.String() + "<" + ParamsKey(args) + ">"
}

// HasUnresolved reports whether any supplied argument still depends on a
// template placeholder.
func HasUnresolved(list []TemplateParameter) bool {
	for _, p := range list {
		switch p.Kind {
		case ParamType:
			if p.Type.IsUnresolved() {
				return true
			}
		case ParamConstant:
			if !p.ConstantDefined {
				return true
			}
		case ParamTypeArgument, ParamIntegerArgument:
			return true
		}
	}
	return false
}

// IsVariadicList reports whether the declaration list ends in a variadic
// argument.
func IsVariadicList(decls []TemplateParameter) bool {
	return len(decls) > 0 && decls[len(decls)-1].Variadic
}

// AcceptsCount reports whether n supplied arguments can bind to decls,
// counting trailing defaults and a variadic tail.
func AcceptsCount(decls []TemplateParameter, n int) bool {
	required := 0
	for _, d := range decls {
		if d.Default == nil && !d.Variadic {
			required++
		}
	}
	if IsVariadicList(decls) {
		return n >= required
	}
	return n >= required && n <= len(decls)
}

// Bind matches supplied arguments against declarations: it fills trailing
// defaults, stamps ArgumentID on each supplied value and checks the kinds.
// The returned list has one entry per supplied or defaulted argument.
func Bind(decls, args []TemplateParameter) ([]TemplateParameter, error) {
	if !AcceptsCount(decls, len(args)) {
		want, got := strconv.Itoa(len(decls)), strconv.Itoa(len(args))
		return nil, &Error{
			Kind:   ErrInvalidArgument,
			Index:  -1,
			Want:   want,
			Got:    got,
			Detail: "template parameter amount mismatch: expected " + want + ", got " + got,
		}
	}
	out := make([]TemplateParameter, 0, max(len(args), len(decls)))
	for i, d := range decls {
		if d.Variadic {
			for j := i; j < len(args); j++ {
				a, err := bindOne(d, args[j], j)
				if err != nil {
					return nil, err
				}
				out = append(out, a)
			}
			break
		}
		if i >= len(args) {
			if d.Default == nil {
				return nil, errArgumentKind(i, d.Kind.String(), ParamEmpty)
			}
			out = append(out, stamp(d, *d.Default))
			continue
		}
		a, err := bindOne(d, args[i], i)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func bindOne(decl, arg TemplateParameter, index int) (TemplateParameter, error) {
	switch decl.Kind {
	case ParamTypeArgument:
		if arg.Kind != ParamType && arg.Kind != ParamTypeArgument {
			return arg, errArgumentKind(index, "type", arg.Kind)
		}
	case ParamIntegerArgument:
		if arg.Kind != ParamConstant && arg.Kind != ParamIntegerArgument {
			return arg, errArgumentKind(index, "integer constant", arg.Kind)
		}
	}
	return stamp(decl, arg), nil
}

func errArgumentKind(index int, want string, got ParamKind) *Error {
	return &Error{
		Kind:   ErrInvalidArgument,
		Index:  index,
		Want:   want,
		Got:    got.String(),
		Detail: "template argument " + strconv.Itoa(index) + " must be a " + want,
	}
}

// stamp records which declared argument a supplied value binds to.
func stamp(decl, arg TemplateParameter) TemplateParameter {
	if !arg.IsArgument() {
		arg.ArgumentID = decl.ArgumentID
		arg.Variadic = decl.Variadic
	}
	return arg
}
