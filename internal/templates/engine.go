package templates

import (
	"errors"
	"slices"

	"go.uber.org/zap"

	"snex/internal/ident"
	"snex/internal/namespace"
	"snex/internal/types"
)

// InstantiationKey identifies one instantiation; ArgsKey is the canonical
// rendering of the bound arguments.
type InstantiationKey struct {
	ID      ident.ID
	ArgsKey string
}

// Stats counts instantiation requests.
type Stats struct {
	Hits     int
	Misses   int
	Deferred int
}

// Engine registers templates and instantiates them on demand. Types are
// deduplicated through the shared registry; the engine itself belongs to a
// single session.
type Engine struct {
	handler   *namespace.Handler
	registry  *types.Registry
	templates map[ident.ID][]*TemplateObject
	classes   map[InstantiationKey]types.TypeInfo
	functions map[InstantiationKey]*types.FunctionData
	stats     Stats
	log       *zap.Logger
}

// NewEngine creates an engine declaring its symbols in h and interning types
// in r.
func NewEngine(h *namespace.Handler, r *types.Registry) *Engine {
	return &Engine{
		handler:   h,
		registry:  r,
		templates: make(map[ident.ID][]*TemplateObject),
		classes:   make(map[InstantiationKey]types.TypeInfo),
		functions: make(map[InstantiationKey]*types.FunctionData),
		log:       Logger(),
	}
}

func (e *Engine) Registry() *types.Registry { return e.registry }

func (e *Engine) Stats() Stats { return e.stats }

// AddTemplateClass registers a class template.
func (e *Engine) AddTemplateClass(obj TemplateObject) (*TemplateObject, error) {
	if obj.MakeClass == nil {
		return nil, &TemplateError{Kind: ErrConstruction, ID: obj.ID, Index: -1, Detail: "class template without constructor"}
	}
	return e.add(obj, namespace.SymbolTemplatedClass)
}

// AddTemplateFunction registers a function template.
func (e *Engine) AddTemplateFunction(obj TemplateObject) (*TemplateObject, error) {
	if obj.MakeFunction == nil {
		return nil, &TemplateError{Kind: ErrConstruction, ID: obj.ID, Index: -1, Detail: "function template without constructor"}
	}
	return e.add(obj, namespace.SymbolTemplatedFunction)
}

func (e *Engine) add(obj TemplateObject, kind namespace.SymbolKind) (*TemplateObject, error) {
	t := &obj
	t.own = qualifyParams(obj.ID, obj.Params)
	for _, existing := range e.templates[t.ID] {
		if existing.IsClass() == t.IsClass() && types.ParamsEqual(existing.own, t.own) {
			return nil, &TemplateError{Kind: ErrDuplicateTemplate, ID: t.ID, Index: -1}
		}
	}
	if err := e.declare(t, kind); err != nil {
		return nil, err
	}
	e.templates[t.ID] = append(e.templates[t.ID], t)

	// Registration order does not matter: recompute the inherited
	// parameters of this template and of every template nested in it.
	for id, list := range e.templates {
		if !t.ID.IsSameOrParentOf(id) {
			continue
		}
		for _, other := range list {
			other.Params = append(e.inherited(other.ID), other.own...)
		}
	}
	e.log.Debug("template registered", zap.Stringer("id", t.ID), zap.String("signature", t.Signature()))
	return t, nil
}

// inherited collects the own parameters of all enclosing templates,
// outermost first.
func (e *Engine) inherited(id ident.ID) []types.TemplateParameter {
	var chain [][]types.TemplateParameter
	for p := id.Parent(); !p.IsNull(); p = p.Parent() {
		for _, t := range e.templates[p] {
			if t.IsClass() {
				chain = append(chain, t.own)
				break
			}
		}
	}
	var out []types.TemplateParameter
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, chain[i]...)
	}
	return out
}

// qualifyParams places argument ids inside the template's namespace.
func qualifyParams(id ident.ID, params []types.TemplateParameter) []types.TemplateParameter {
	out := slices.Clone(params)
	for i, p := range out {
		if p.IsArgument() && p.ArgumentID.Parent() != id {
			out[i].ArgumentID = id.Child(p.ArgumentID.Name())
		}
	}
	return out
}

// declare adds the template symbol and its argument placeholders.
func (e *Engine) declare(t *TemplateObject, kind namespace.SymbolKind) error {
	restore := e.handler.Goto(t.ID.Parent())
	defer restore()
	a, err := e.handler.AddSymbol(t.ID, types.TypeInfo{}, kind, types.Public)
	if err != nil {
		return err
	}
	if a.Kind != namespace.SymbolTemplatedClass && a.Kind != namespace.SymbolTemplatedFunction {
		return &namespace.ResolveError{Kind: namespace.ResolveKindMismatch, ID: t.ID, Scope: t.ID.Parent(), Detail: "already declared as " + a.Kind.String()}
	}
	if a.Comment == "" {
		a.Comment = t.Description
	}
	e.handler.Goto(t.ID)
	for _, p := range t.own {
		argKind := namespace.SymbolTemplateType
		argType := types.Placeholder(p.ArgumentID)
		if p.Kind == types.ParamIntegerArgument {
			argKind = namespace.SymbolTemplateConstant
			argType = types.IntType.WithConst(true)
		}
		if _, err := e.handler.AddSymbol(p.ArgumentID, argType, argKind, types.Public); err != nil {
			return err
		}
	}
	return nil
}

// Template returns the overloads registered under id.
func (e *Engine) Template(id ident.ID) []*TemplateObject {
	return slices.Clone(e.templates[id])
}

// IsClassTemplate reports whether id names a class template.
func (e *Engine) IsClassTemplate(id ident.ID) bool {
	for _, t := range e.templates[id] {
		if t.IsClass() {
			return true
		}
	}
	return false
}

// match picks the overload accepting args and binds them.
func (e *Engine) match(id ident.ID, args []types.TemplateParameter, class bool) (*TemplateObject, []types.TemplateParameter, error) {
	var candidates []*TemplateObject
	for _, t := range e.templates[id] {
		if t.IsClass() == class {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return nil, nil, &TemplateError{Kind: ErrUnknownTemplate, ID: id, Index: -1}
	}
	var firstErr error
	for _, t := range candidates {
		if !types.AcceptsCount(t.Params, len(args)) {
			continue
		}
		bound, err := types.Bind(t.Params, args)
		if err == nil {
			return t, bound, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		var terr *types.Error
		index := -1
		if errors.As(firstErr, &terr) {
			index = terr.Index
		}
		return nil, nil, &TemplateError{Kind: ErrParamKind, ID: id, Index: index, Err: firstErr}
	}
	return nil, nil, &TemplateError{Kind: ErrParamCount, ID: id, Index: -1, Detail: "no overload takes " + types.ParamsKey(args)}
}

// CreateTemplateInstantiation instantiates class template id. Arguments that
// still mention template placeholders yield a deferred type that is
// instantiated once bound.
func (e *Engine) CreateTemplateInstantiation(id ident.ID, args []types.TemplateParameter) (types.TypeInfo, error) {
	t, bound, err := e.match(id, args, true)
	if err != nil {
		return types.TypeInfo{}, err
	}
	if types.HasUnresolved(bound) {
		e.stats.Deferred++
		return types.Complex(types.NewTemplatedComplexType(id, bound, e)), nil
	}
	key := InstantiationKey{ID: id, ArgsKey: types.ParamsKey(bound)}
	if cached, ok := e.classes[key]; ok {
		e.stats.Hits++
		e.log.Debug("instantiation cache hit", zap.String("key", types.TemplateKey(id, bound)))
		return cached, nil
	}
	e.stats.Misses++

	ct, err := t.MakeClass(ConstructData{ID: id, Args: bound, Engine: e, Handler: e.handler})
	if err != nil {
		var terr *TemplateError
		if errors.As(err, &terr) {
			return types.TypeInfo{}, err
		}
		return types.TypeInfo{}, &TemplateError{Kind: ErrConstruction, ID: id, Index: -1, Err: err}
	}
	shared, added, err := e.registry.Publish(ct)
	if err != nil {
		return types.TypeInfo{}, &TemplateError{Kind: ErrConstruction, ID: id, Index: -1, Err: err}
	}
	result := types.Complex(shared)
	e.classes[key] = result
	e.log.Debug("template instantiated",
		zap.String("key", types.TemplateKey(id, bound)),
		zap.Bool("new", added))
	return result, nil
}

// CreateTemplateFunction instantiates function template id.
func (e *Engine) CreateTemplateFunction(id ident.ID, args []types.TemplateParameter) (*types.FunctionData, error) {
	t, bound, err := e.match(id, args, false)
	if err != nil {
		return nil, err
	}
	key := InstantiationKey{ID: id, ArgsKey: types.ParamsKey(bound)}
	if cached, ok := e.functions[key]; ok {
		e.stats.Hits++
		return cached, nil
	}
	e.stats.Misses++

	f := types.NewFunction(id, types.VoidType)
	f.TemplateParameters = bound
	f.Description = t.Description
	if err := t.MakeFunction(ConstructData{ID: id, Args: bound, Engine: e, Handler: e.handler}, f); err != nil {
		var terr *TemplateError
		if errors.As(err, &terr) {
			return nil, err
		}
		return nil, &TemplateError{Kind: ErrConstruction, ID: id, Index: -1, Err: err}
	}
	if !types.HasUnresolved(bound) {
		e.functions[key] = f
	}
	e.log.Debug("function template instantiated", zap.String("signature", f.Signature()))
	return f, nil
}

// Instantiations lists the cached class instantiations ordered by key.
func (e *Engine) Instantiations() []InstantiationKey {
	keys := make([]InstantiationKey, 0, len(e.classes))
	for k := range e.classes {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b InstantiationKey) int {
		if a.ID != b.ID {
			if ident.Less(a.ID, b.ID) {
				return -1
			}
			return 1
		}
		switch {
		case a.ArgsKey < b.ArgsKey:
			return -1
		case a.ArgsKey > b.ArgsKey:
			return 1
		}
		return 0
	})
	return keys
}
