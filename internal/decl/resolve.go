package decl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"snex/internal/ident"
	"snex/internal/session"
	"snex/internal/types"
)

var primitives = map[string]types.TypeInfo{
	"int":     types.IntType,
	"bool":    types.IntType,
	"float":   types.FloatType,
	"double":  types.DoubleType,
	"void":    types.VoidType,
	"pointer": types.PtrType,
}

// ResolveType turns e into a type, resolving names from the session's
// current namespace and instantiating templates on the way.
func ResolveType(s *session.Session, e *TypeExpr) (types.TypeInfo, error) {
	return resolver{s: s}.resolve(e)
}

// ResolveTypeString parses and resolves src.
func ResolveTypeString(s *session.Session, src string) (types.TypeInfo, error) {
	return resolver{s: s}.resolveString(src)
}

type resolver struct {
	s *session.Session
	// require, when set, sees every type argument before the template is
	// instantiated with it.
	require func(types.TypeInfo)
}

func (r resolver) resolveString(src string) (types.TypeInfo, error) {
	e, err := ParseType(src)
	if err != nil {
		return types.TypeInfo{}, err
	}
	return r.resolve(e)
}

func (r resolver) resolve(e *TypeExpr) (types.TypeInfo, error) {
	var t types.TypeInfo
	switch prim, isPrim := primitives[e.Name.String()]; {
	case isPrim && !e.HasArgs:
		t = prim
	case e.HasArgs:
		args := make([]types.TemplateParameter, 0, len(e.Args))
		for _, a := range e.Args {
			p, err := r.arg(a)
			if err != nil {
				return types.TypeInfo{}, err
			}
			args = append(args, p)
		}
		inst, err := r.s.Instantiate(e.Name, args)
		if err != nil {
			return types.TypeInfo{}, err
		}
		t = inst
	default:
		named, err := r.s.ResolveType(e.Name)
		if err != nil {
			return types.TypeInfo{}, err
		}
		t = named
	}
	return t.WithConst(t.IsConst() || e.Const).WithRef(t.IsRef() || e.Ref), nil
}

func (r resolver) arg(a TypeArg) (types.TemplateParameter, error) {
	if a.IsInt {
		return types.ConstParam(a.Int), nil
	}
	if a.Type.IsBareName() {
		if _, isPrim := primitives[a.Type.Name.String()]; !isPrim {
			full, err := r.s.Handler().Resolve(a.Type.Name, false)
			if err == nil {
				if alias, ok := r.s.Handler().Alias(full); ok && alias.Kind.IsConstant() {
					return r.s.ResolveConstant(a.Type.Name)
				}
			}
		}
	}
	t, err := r.resolve(a.Type)
	if err != nil {
		return types.TemplateParameter{}, err
	}
	if r.require != nil {
		r.require(t)
	}
	return types.TypeParam(t), nil
}

// parseTemplateParams reads "T", "N:int", "Ts...", "T=float" and "N:int=4".
// Type defaults are resolved from the current namespace.
func parseTemplateParams(r resolver, decls []string) ([]types.TemplateParameter, error) {
	out := make([]types.TemplateParameter, 0, len(decls))
	for i, raw := range decls {
		bad := func(detail string) error {
			return &Error{Kind: ErrTemplateDecl, Input: raw, Pos: -1, Detail: detail}
		}
		head, def, hasDefault := strings.Cut(raw, "=")
		name, kind, hasKind := strings.Cut(strings.TrimSpace(head), ":")
		name = strings.TrimSpace(name)
		variadic := strings.HasSuffix(name, "...")
		name = strings.TrimSuffix(name, "...")
		if name == "" || strings.Contains(name, "::") {
			return nil, bad("argument needs a plain name")
		}
		if variadic && i != len(decls)-1 {
			return nil, bad("variadic argument must be last")
		}
		if variadic && hasDefault {
			return nil, bad("variadic argument cannot have a default")
		}

		var p types.TemplateParameter
		switch kind = strings.TrimSpace(kind); {
		case !hasKind || kind == "type" || kind == "typename":
			p = types.TypeArgument(ident.New(name), variadic)
			if hasDefault {
				t, err := r.resolveString(strings.TrimSpace(def))
				if err != nil {
					return nil, err
				}
				p = p.WithDefault(types.TypeParam(t))
			}
		case kind == "int":
			p = types.IntegerArgument(ident.New(name), variadic)
			if hasDefault {
				n, err := strconv.Atoi(strings.TrimSpace(def))
				if err != nil {
					return nil, bad("bad integer default " + strconv.Quote(def))
				}
				p = p.WithDefault(types.ConstParam(n))
			}
		default:
			return nil, bad(fmt.Sprintf("unknown argument kind %q", kind))
		}
		out = append(out, p)
	}
	return out, nil
}

// constantValue converts a TOML scalar to a value of kind.
func constantValue(raw any, kind types.Kind) (types.Value, error) {
	var v types.Value
	switch x := raw.(type) {
	case bool:
		v = types.Bool(x)
	case int64:
		n, err := safecast.Conv[int32](x)
		if err != nil {
			return types.Value{}, err
		}
		v = types.Int(n)
	case float64:
		if kind == types.KindInteger {
			if x != math.Trunc(x) {
				return types.Value{}, fmt.Errorf("%v is not an integer", x)
			}
		}
		v = types.Double(x)
	default:
		return types.Value{}, fmt.Errorf("unsupported value %v (%T)", raw, raw)
	}
	converted, ok := v.Convert(kind)
	if !ok {
		return types.Value{}, fmt.Errorf("%v does not convert to %s", raw, kind)
	}
	return converted, nil
}

func parseVisibility(s string) (types.Visibility, error) {
	switch s {
	case "", "public":
		return types.Public, nil
	case "protected":
		return types.Protected, nil
	case "private":
		return types.Private, nil
	}
	return types.Public, &Error{Kind: ErrSyntax, Input: s, Pos: -1, Detail: "visibility must be public, protected or private"}
}
