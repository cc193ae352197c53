package decl

import (
	"snex/internal/ident"
	"snex/internal/namespace"
	"snex/internal/session"
	"snex/internal/templates"
	"snex/internal/types"
)

// Result lists what a manifest produced.
type Result struct {
	Structs        []*types.StructType
	Instantiations []types.TypeInfo
}

type structState uint8

const (
	structPending structState = iota
	structAdding
	structDone
)

// pendingStruct is a struct whose symbol is declared and whose members are
// read once every struct and alias of the manifest is known, or earlier when
// a template needs its layout.
type pendingStruct struct {
	scope    ident.ID
	decl     StructDecl
	plain    *types.StructType
	template *templates.StructDef
	state    structState
}

type builder struct {
	s       *session.Session
	r       resolver
	pending []*pendingStruct
	plain   map[*types.StructType]*pendingStruct
}

// Build replays m into s in three passes: declare (namespaces, constants,
// enums, struct symbols, using directives, aliases, members), instantiate
// and finalise. Failures are reported to the session's diagnostics and skip
// only the offending declaration.
func Build(s *session.Session, m *Manifest) *Result {
	b := &builder{s: s, plain: make(map[*types.StructType]*pendingStruct)}
	b.r = resolver{s: s, require: b.require}
	res := &Result{}

	_ = s.Pass("declare", func() error {
		scopes := make([]ident.ID, len(m.Namespaces))
		for i, ns := range m.Namespaces {
			id, leave := s.DeclareNamespace(ns.Name)
			scopes[i] = id
			declareValues(s, id, ns)
			for _, sd := range ns.Structs {
				b.declareStruct(id, sd)
			}
			leave()
		}
		for i, ns := range m.Namespaces {
			restore := s.Handler().Goto(scopes[i])
			for _, u := range ns.Using {
				s.Decl("using", scopes[i].Child(u), func() error {
					return s.UseNamespace(ident.Parse(u))
				})
			}
			for _, a := range ns.Aliases {
				s.Decl("alias", scopes[i].Child(a.Name), func() error {
					return b.declareAlias(a)
				})
			}
			restore()
		}
		for _, p := range b.pending {
			b.complete(p)
		}
		return nil
	})

	_ = s.Pass("instantiate", func() error {
		for _, inst := range m.Instantiate {
			scope := ident.Parse(inst.Namespace)
			restore := s.Handler().Goto(scope)
			s.Decl("instantiate", scope.Join(ident.New(inst.Type)), func() error {
				t, err := b.r.resolveString(inst.Type)
				if err != nil {
					return err
				}
				res.Instantiations = append(res.Instantiations, t)
				return nil
			})
			restore()
		}
		return nil
	})

	_ = s.Pass("finalise", s.Finalise)

	for _, p := range b.pending {
		if p.plain != nil {
			res.Structs = append(res.Structs, p.plain)
		}
	}
	return res
}

// require adds the members of a plain struct of this manifest before its
// layout can be taken. A struct already receiving members is left alone:
// its layout then fails as recursive.
func (b *builder) require(t types.TypeInfo) {
	if t.IsRef() {
		return
	}
	st, ok := t.ComplexType().(*types.StructType)
	if !ok {
		return
	}
	if p, ok := b.plain[st]; ok {
		b.complete(p)
	}
}

func (b *builder) complete(p *pendingStruct) {
	if p.state != structPending {
		return
	}
	p.state = structAdding
	restore := b.s.Handler().Goto(p.scope)
	b.s.Decl("members", p.scope.Child(p.decl.Name), func() error {
		return b.addMembers(p)
	})
	restore()
	if p.plain != nil {
		p.plain.SetDeclaring(false)
	}
	p.state = structDone
}

func declareValues(s *session.Session, scope ident.ID, ns NamespaceDecl) {
	for _, c := range ns.Constants {
		s.Decl("constant", scope.Child(c.Name), func() error {
			vis, err := parseVisibility(c.Visibility)
			if err != nil {
				return err
			}
			typeName := c.Type
			if typeName == "" {
				typeName = inferConstantType(c.Value)
			}
			prim, ok := primitives[typeName]
			if !ok || prim.Kind() == types.KindVoid || prim.Kind() == types.KindPointer {
				return &Error{Kind: ErrConstant, Input: c.Type, Pos: -1, Detail: "constants must be int, bool, float or double"}
			}
			v, err := constantValue(c.Value, prim.Kind())
			if err != nil {
				return &Error{Kind: ErrConstant, Input: c.Name, Pos: -1, Err: err}
			}
			if err := s.DeclareConstant(c.Name, v, vis); err != nil {
				return err
			}
			setComment(s, scope.Child(c.Name), c.Comment)
			return nil
		})
	}
	for _, e := range ns.Enums {
		s.Decl("enum", scope.Child(e.Name), func() error {
			vis, err := parseVisibility(e.Visibility)
			if err != nil {
				return err
			}
			values := make([]namespace.EnumValue, 0, len(e.Values))
			next := int64(0)
			for _, v := range e.Values {
				if v.Value != nil {
					next = *v.Value
				}
				n, err := constantValue(next, types.KindInteger)
				if err != nil {
					return &Error{Kind: ErrConstant, Input: e.Name + "::" + v.Name, Pos: -1, Err: err}
				}
				values = append(values, namespace.EnumValue{Name: v.Name, Value: n.Int()})
				next++
			}
			if _, err := s.Handler().AddEnum(e.Name, vis, values...); err != nil {
				return err
			}
			setComment(s, scope.Child(e.Name), e.Comment)
			return nil
		})
	}
}

func inferConstantType(v any) string {
	switch v.(type) {
	case bool:
		return "bool"
	case float64:
		return "double"
	}
	return "int"
}

func setComment(s *session.Session, id ident.ID, comment string) {
	if comment == "" {
		return
	}
	if a, ok := s.Handler().Alias(id); ok {
		a.Comment = comment
	}
}

func (b *builder) declareStruct(scope ident.ID, sd StructDecl) {
	s := b.s
	s.Decl("struct", scope.Child(sd.Name), func() error {
		vis, err := parseVisibility(sd.Visibility)
		if err != nil {
			return err
		}
		padding := s.Padding()
		if sd.Padding != "" {
			if padding, err = types.ParsePaddingMode(sd.Padding); err != nil {
				return &Error{Kind: ErrPadding, Input: sd.Padding, Pos: -1, Err: err}
			}
		}
		p := &pendingStruct{scope: scope, decl: sd}
		if len(sd.Template) == 0 {
			st, err := s.DeclareStruct(sd.Name, vis)
			if err != nil {
				return err
			}
			st.SetPaddingMode(padding)
			st.SetDeclaring(true)
			p.plain = st
			b.plain[st] = p
		} else {
			params, err := parseTemplateParams(b.r, sd.Template)
			if err != nil {
				return err
			}
			def, err := s.DeclareStructTemplate(sd.Name, params)
			if err != nil {
				return err
			}
			def.Padding = padding
			p.template = def
		}
		b.pending = append(b.pending, p)
		setComment(s, scope.Child(sd.Name), sd.Comment)
		return nil
	})
}

func (b *builder) declareAlias(a AliasDecl) error {
	vis, err := parseVisibility(a.Visibility)
	if err != nil {
		return err
	}
	t, err := b.r.resolveString(a.Type)
	if err != nil {
		return err
	}
	if err := b.s.DeclareAlias(a.Name, t, vis); err != nil {
		return err
	}
	setComment(b.s, b.s.Handler().Current().Child(a.Name), a.Comment)
	return nil
}

// addMembers resolves member types of a template from inside its own
// namespace, where the template arguments are visible.
func (b *builder) addMembers(p *pendingStruct) error {
	if p.template != nil {
		restore := b.s.Handler().Goto(p.scope.Child(p.decl.Name))
		defer restore()
	}
	for _, md := range p.decl.Members {
		vis, err := parseVisibility(md.Visibility)
		if err != nil {
			return err
		}
		t, err := b.r.resolveString(md.Type)
		if err != nil {
			return err
		}
		b.require(t)
		var def *types.InitItem
		if md.Default != nil {
			item, err := defaultItem(md, t)
			if err != nil {
				return err
			}
			def = &item
		}
		if p.template != nil {
			p.template.AddMember(templates.MemberSpec{Name: md.Name, Type: t, Visibility: vis, Default: def, Comment: md.Comment})
			continue
		}
		m, err := p.plain.AddMember(md.Name, t, vis)
		if err != nil {
			return err
		}
		m.Comment = md.Comment
		if def != nil {
			if err := p.plain.SetDefault(md.Name, *def); err != nil {
				return err
			}
		}
	}
	return nil
}

func defaultItem(md MemberDecl, t types.TypeInfo) (types.InitItem, error) {
	if t.IsComplex() || t.IsTemplatePlaceholder() || !t.Kind().IsNumeric() {
		return types.InitItem{}, &Error{Kind: ErrMember, Input: md.Name, Pos: -1,
			Detail: "defaults are supported for int, float and double members, not " + t.String()}
	}
	v, err := constantValue(md.Default, t.Kind())
	if err != nil {
		return types.InitItem{}, &Error{Kind: ErrConstant, Input: md.Name, Pos: -1, Err: err}
	}
	return types.Item(v), nil
}
