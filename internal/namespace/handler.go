package namespace

import (
	"go.uber.org/zap"

	"snex/internal/ident"
	"snex/internal/types"
)

// Handler is the namespace tree of one compilation unit together with the
// cursor the declarations are added at. It is not safe for concurrent use;
// each session owns its own handler.
type Handler struct {
	root       *Namespace
	current    *Namespace
	namespaces map[ident.ID]*Namespace
	internal   bool
	log        *zap.Logger
}

// NewHandler creates an empty tree with the cursor at the root.
func NewHandler() *Handler {
	root := newNamespace(ident.Null, nil)
	return &Handler{
		root:       root,
		current:    root,
		namespaces: map[ident.ID]*Namespace{ident.Null: root},
		log:        Logger(),
	}
}

// Root is the unnamed global namespace.
func (h *Handler) Root() *Namespace { return h.root }

// Current is the id of the namespace at the cursor.
func (h *Handler) Current() ident.ID { return h.current.id }

// Namespace finds a namespace by its full id.
func (h *Handler) Namespace(id ident.ID) (*Namespace, bool) {
	ns, ok := h.namespaces[id]
	return ns, ok
}

// EnterInternal marks every namespace and symbol created until the returned
// function is called as internal. Internal symbols are hidden from tooling.
func (h *Handler) EnterInternal() (leave func()) {
	prev := h.internal
	h.internal = true
	return func() { h.internal = prev }
}

// ensure returns the namespace id, creating it and its ancestors lazily.
func (h *Handler) ensure(id ident.ID) *Namespace {
	if ns, ok := h.namespaces[id]; ok {
		return ns
	}
	parent := h.ensure(id.Parent())
	ns := newNamespace(id, parent)
	ns.internal = ns.internal || h.internal
	h.namespaces[id] = ns
	h.log.Debug("namespace created", zap.Stringer("id", id), zap.Bool("internal", ns.internal))
	return ns
}

// PushNamespace moves the cursor into the child name of the current
// namespace. A qualified name pushes one level per segment.
func (h *Handler) PushNamespace(name string) ident.ID {
	h.current = h.ensure(h.current.id.Join(ident.Parse(name)))
	return h.current.id
}

// PopNamespace moves the cursor to the parent namespace.
func (h *Handler) PopNamespace() error {
	if h.current.parent == nil {
		return &ResolveError{Kind: ResolveScopeMismatch, Scope: h.current.id, Detail: "pop of the root namespace"}
	}
	h.current = h.current.parent
	return nil
}

// Goto moves the cursor to id and returns a function restoring the previous
// position.
func (h *Handler) Goto(id ident.ID) (restore func()) {
	prev := h.current
	h.current = h.ensure(id)
	return func() { h.current = prev }
}

// AddSymbol declares id in the current namespace. id must be a direct child
// of the current namespace. Declaring an existing id again is a no-op that
// returns the first alias.
func (h *Handler) AddSymbol(id ident.ID, t types.TypeInfo, kind SymbolKind, vis types.Visibility) (*Alias, error) {
	if id.Parent() != h.current.id {
		return nil, &ResolveError{Kind: ResolveScopeMismatch, ID: id, Scope: h.current.id}
	}
	if a, ok := h.current.lookup(id); ok {
		return a, nil
	}
	a := &Alias{ID: id, Type: t, Visibility: vis, Kind: kind, Internal: h.internal || h.current.internal}
	h.current.add(a)
	h.log.Debug("symbol added", zap.Stringer("id", id), zap.Stringer("kind", kind), zap.Stringer("type", t))
	return a, nil
}

// RemoveSymbol deletes id from its namespace.
func (h *Handler) RemoveSymbol(id ident.ID) bool {
	ns, ok := h.namespaces[id.Parent()]
	if !ok {
		return false
	}
	return ns.remove(id)
}

// Alias returns the entry for the fully qualified id.
func (h *Handler) Alias(id ident.ID) (*Alias, bool) {
	ns, ok := h.namespaces[id.Parent()]
	if !ok {
		return nil, false
	}
	return ns.lookup(id)
}

func (h *Handler) mustAlias(id ident.ID) (*Alias, error) {
	a, ok := h.Alias(id)
	if !ok {
		return nil, &ResolveError{Kind: ResolveUnresolved, ID: id, Scope: h.current.id}
	}
	return a, nil
}

// ChangeSymbolKind reclassifies an existing symbol, e.g. once a forward
// declared name turns out to be a template.
func (h *Handler) ChangeSymbolKind(id ident.ID, kind SymbolKind) error {
	a, err := h.mustAlias(id)
	if err != nil {
		return err
	}
	a.Kind = kind
	return nil
}

// AddConstant declares a constant with a folded value.
func (h *Handler) AddConstant(id ident.ID, v types.Value, vis types.Visibility) (*Alias, error) {
	a, err := h.AddSymbol(id, types.Primitive(v.Kind()).WithConst(true), SymbolConstant, vis)
	if err != nil {
		return nil, err
	}
	if a.Constant == nil {
		a.Constant = &v
	}
	return a, nil
}

// SetConstantValue stores the folded value of a constant symbol.
func (h *Handler) SetConstantValue(id ident.ID, v types.Value) error {
	a, err := h.mustAlias(id)
	if err != nil {
		return err
	}
	if !a.Kind.IsConstant() && a.Kind != SymbolVariable {
		return &ResolveError{Kind: ResolveKindMismatch, ID: id, Scope: h.current.id, Detail: "not a constant"}
	}
	if a.Kind == SymbolVariable {
		a.Kind = SymbolConstant
	}
	a.Constant = &v
	return nil
}

// ConstantValue returns the folded value of id.
func (h *Handler) ConstantValue(id ident.ID) (types.Value, bool) {
	a, ok := h.Alias(id)
	if !ok || a.Constant == nil {
		return types.Value{}, false
	}
	return *a.Constant, true
}

// IsUsed reports whether the symbols of namespace id are already visible
// unqualified from the current namespace.
func (h *Handler) IsUsed(id ident.ID) bool {
	ns, ok := h.namespaces[id]
	return ok && (ns == h.current || h.current.uses(ns))
}

// AddUsedNamespace makes the symbols of id visible to unqualified lookups
// in the current namespace.
func (h *Handler) AddUsedNamespace(id ident.ID) error {
	ns, ok := h.namespaces[id]
	if !ok {
		return &ResolveError{Kind: ResolveNotNamespace, ID: id, Scope: h.current.id}
	}
	if ns == h.current || h.current.uses(ns) {
		return nil
	}
	h.current.used = append(h.current.used, ns)
	return nil
}

// EnumValue is one enumerator.
type EnumValue struct {
	Name  string
	Value int32
}

// AddEnum declares enum name in the current namespace with its enumerators
// as constants of the enum namespace.
func (h *Handler) AddEnum(name string, vis types.Visibility, values ...EnumValue) (*Alias, error) {
	id := h.current.id.Child(name)
	a, err := h.AddSymbol(id, types.IntType, SymbolEnum, vis)
	if err != nil {
		return nil, err
	}
	restore := h.Goto(id)
	defer restore()
	for _, ev := range values {
		v, err := h.AddConstant(id.Child(ev.Name), types.Int(ev.Value), vis)
		if err != nil {
			return nil, err
		}
		v.Kind = SymbolEnumValue
	}
	return a, nil
}

// AddStaticFunctionClass exposes the functions of fc under the namespace
// fc.ID(). The class itself is declared in the parent namespace.
func (h *Handler) AddStaticFunctionClass(fc *types.FunctionClass) error {
	id := fc.ID()
	parent := h.ensure(id.Parent())
	if _, ok := parent.lookup(id); !ok {
		parent.add(&Alias{ID: id, Kind: SymbolStaticFunctionClass, Internal: h.internal || parent.internal})
	}
	ns := h.ensure(id)
	ns.functions = fc
	for _, f := range fc.Functions() {
		if _, ok := ns.lookup(f.ID); ok {
			continue
		}
		ns.add(&Alias{ID: f.ID, Type: f.ReturnType, Kind: SymbolFunction, Internal: ns.internal, Comment: f.Description})
	}
	for _, child := range fc.Children() {
		if err := h.AddStaticFunctionClass(child); err != nil {
			return err
		}
	}
	h.log.Debug("static function class added", zap.Stringer("id", id), zap.Int("functions", len(fc.Functions())))
	return nil
}

// FunctionClass returns the static function class registered under id.
func (h *Handler) FunctionClass(id ident.ID) (*types.FunctionClass, bool) {
	ns, ok := h.namespaces[id]
	if !ok || ns.functions == nil {
		return nil, false
	}
	return ns.functions, true
}
