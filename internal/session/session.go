// Package session holds the compilation context of one translation unit:
// its namespace tree, template engine, diagnostics and tracing. Nothing in
// the core packages is global; every cursor lives in a Session.
package session

import (
	"strconv"

	"go.uber.org/zap"

	"snex/internal/diag"
	"snex/internal/ident"
	"snex/internal/namespace"
	"snex/internal/observ"
	"snex/internal/templates"
	"snex/internal/trace"
	"snex/internal/types"
)

// Options configures a Session.
type Options struct {
	// File names the translation unit in diagnostics.
	File string
	// Padding is the layout mode of structs declared through the session.
	Padding        types.PaddingMode
	MaxDiagnostics int
	// Registry interns instantiated types. Sessions compiled together may
	// share one; nil gives the session its own.
	Registry *types.Registry
	Tracer   trace.Tracer
}

// Session is not safe for concurrent use. Run one session per goroutine and
// share only the Registry.
type Session struct {
	handler  *namespace.Handler
	engine   *templates.Engine
	registry *types.Registry
	bag      *diag.Bag
	reporter diag.Reporter
	tracer   trace.Tracer
	timer    *observ.Timer
	padding  types.PaddingMode
	file     string

	spans   []*trace.Span
	structs []*types.StructType
	log     *zap.Logger
}

// New creates a session with the builtin templates registered.
func New(opts Options) (*Session, error) {
	if opts.Registry == nil {
		opts.Registry = types.NewRegistry()
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = 100
	}
	h := namespace.NewHandler()
	bag := diag.NewBag(opts.MaxDiagnostics)
	s := &Session{
		handler:  h,
		engine:   templates.NewEngine(h, opts.Registry),
		registry: opts.Registry,
		bag:      bag,
		reporter: diag.NewDedupReporter(diag.BagReporter{Bag: bag}),
		tracer:   opts.Tracer,
		timer:    observ.NewTimer(),
		padding:  opts.Padding,
		file:     opts.File,
		log:      Logger().With(zap.String("file", opts.File)),
	}
	s.spans = append(s.spans, trace.Begin(s.tracer, trace.ScopeSession, "session:"+opts.File, 0))
	if err := templates.RegisterBuiltins(s.engine); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) Handler() *namespace.Handler { return s.handler }
func (s *Session) Engine() *templates.Engine { return s.engine }
func (s *Session) Registry() *types.Registry { return s.registry }
func (s *Session) Diagnostics() *diag.Bag { return s.bag }
func (s *Session) Timer() *observ.Timer { return s.timer }
func (s *Session) Tracer() trace.Tracer { return s.tracer }
func (s *Session) Padding() types.PaddingMode { return s.padding }
func (s *Session) File() string { return s.file }
func (s *Session) Structs() []*types.StructType { return append([]*types.StructType(nil), s.structs...) }

func (s *Session) parentSpan() uint64 {
	if len(s.spans) == 0 {
		return 0
	}
	return s.spans[len(s.spans)-1].ID()
}

func (s *Session) begin(scope trace.Scope, name string) *trace.Span {
	sp := trace.Begin(s.tracer, scope, name, s.parentSpan())
	s.spans = append(s.spans, sp)
	return sp
}

func (s *Session) end(sp *trace.Span, detail string) {
	sp.End(detail)
	s.spans = s.spans[:len(s.spans)-1]
}

func (s *Session) location(subject ident.ID) diag.Location {
	return diag.Location{File: s.file, Subject: subject.String()}
}

// Report records err as a diagnostic about subject.
func (s *Session) Report(subject ident.ID, err error) {
	if err == nil {
		return
	}
	code := Classify(err)
	b := diag.ReportError(s.reporter, code, s.location(subject), err.Error())
	for _, c := range candidates(err) {
		b.WithNote(diag.Location{File: s.file, Subject: c.String()}, "candidate")
	}
	b.Emit()
	trace.Error(s.tracer, trace.ScopeDecl, code.ID(), err.Error(), s.parentSpan())
	s.log.Debug("diagnostic", zap.Stringer("subject", subject), zap.String("code", code.ID()), zap.Error(err))
}

// Warn records a warning about subject.
func (s *Session) Warn(subject ident.ID, code diag.Code, msg string) {
	diag.ReportWarning(s.reporter, code, s.location(subject), msg).Emit()
}

// Pass runs fn as one timed and traced pass.
func (s *Session) Pass(name string, fn func() error) error {
	idx := s.timer.Begin(name)
	sp := s.begin(trace.ScopePass, name)
	err := fn()
	detail := "ok"
	if err != nil {
		detail = err.Error()
	}
	s.end(sp, detail)
	s.timer.End(idx, "")
	return err
}

// Decl runs fn for one declaration. A failure is reported against subject
// and unwinds only this declaration; Decl reports whether fn succeeded.
func (s *Session) Decl(kind string, subject ident.ID, fn func() error) bool {
	sp := s.begin(trace.ScopeDecl, kind+":"+subject.String())
	restore := s.handler.Goto(s.handler.Current())
	err := fn()
	restore()
	if err != nil {
		s.Report(subject, err)
		s.end(sp, "failed")
		return false
	}
	s.timer.Count("declarations", 1)
	s.end(sp, "")
	return true
}

// DeclareNamespace enters namespace name (qualified names are allowed) and
// returns a function that leaves it again.
func (s *Session) DeclareNamespace(name string) (ident.ID, func()) {
	prev := s.handler.Current()
	id := s.handler.PushNamespace(name)
	s.log.Debug("namespace entered", zap.Stringer("id", id))
	return id, func() { s.handler.Goto(prev) }
}

// UseNamespace resolves name from the current namespace and makes its
// symbols visible to unqualified lookups. Using a namespace that is already
// visible is a warning.
func (s *Session) UseNamespace(name ident.ID) error {
	target := name
	if _, ok := s.handler.Namespace(name); !ok {
		target = s.handler.Current().Join(name)
	}
	if s.handler.IsUsed(target) {
		s.Warn(s.handler.Current(), diag.DclRedundantUse, "namespace "+target.String()+" is already in use")
		return nil
	}
	return s.handler.AddUsedNamespace(target)
}

// DeclareStruct declares a struct in the current namespace. Members are added
// by the caller; the struct is finalised by Finalise.
func (s *Session) DeclareStruct(name string, vis types.Visibility) (*types.StructType, error) {
	id := s.handler.Current().Child(name)
	st := types.NewStructType(id, nil)
	st.SetPaddingMode(s.padding)
	a, err := s.handler.AddSymbol(id, types.Complex(st), namespace.SymbolStruct, vis)
	if err != nil {
		return nil, err
	}
	if existing, ok := a.Type.ComplexType().(*types.StructType); !ok || existing != st {
		return nil, &namespace.ResolveError{Kind: namespace.ResolveKindMismatch, ID: id, Scope: s.handler.Current(), Detail: "already declared as " + a.Kind.String()}
	}
	s.structs = append(s.structs, st)
	return st, nil
}

// DeclareStructTemplate registers a struct template in the current
// namespace. The returned definition receives the members; names in the
// template namespace (its arguments) resolve once this returns.
func (s *Session) DeclareStructTemplate(name string, params []types.TemplateParameter) (*templates.StructDef, error) {
	id := s.handler.Current().Child(name)
	def := &templates.StructDef{Padding: s.padding}
	if _, err := s.engine.AddTemplateClass(templates.StructTemplate(id, params, def)); err != nil {
		return nil, err
	}
	return def, nil
}

// DeclareConstant declares a constant with a folded value.
func (s *Session) DeclareConstant(name string, v types.Value, vis types.Visibility) error {
	_, err := s.handler.AddConstant(s.handler.Current().Child(name), v, vis)
	return err
}

// DeclareAlias declares name as another name for t.
func (s *Session) DeclareAlias(name string, t types.TypeInfo, vis types.Visibility) error {
	id := s.handler.Current().Child(name)
	a, err := s.handler.AddSymbol(id, t, namespace.SymbolUsingAlias, vis)
	if err != nil {
		return err
	}
	if a.Kind != namespace.SymbolUsingAlias || !a.Type.Equal(t) {
		return &namespace.ResolveError{Kind: namespace.ResolveKindMismatch, ID: id, Scope: s.handler.Current(), Detail: "already declared as " + a.String()}
	}
	return nil
}

// ResolveType resolves a type name from the current namespace.
func (s *Session) ResolveType(id ident.ID) (types.TypeInfo, error) {
	return s.handler.AliasType(id)
}

// ResolveConstant resolves id to a template argument: a folded constant
// becomes a constant parameter, an integer template argument stays symbolic.
func (s *Session) ResolveConstant(id ident.ID) (types.TemplateParameter, error) {
	full, err := s.handler.Resolve(id, false)
	if err != nil {
		return types.TemplateParameter{}, err
	}
	a, _ := s.handler.Alias(full)
	switch {
	case a.Kind == namespace.SymbolTemplateConstant:
		return types.IntegerArgument(full, false), nil
	case a.Kind.IsConstant() && a.Constant != nil:
		return types.ConstParam(a.Constant.AsInt()), nil
	}
	return types.TemplateParameter{}, &namespace.ResolveError{Kind: namespace.ResolveKindMismatch, ID: full, Scope: s.handler.Current(), Detail: "found " + a.Kind.String() + ", want a constant"}
}

// ResolveTemplate resolves a class template name from the current
// namespace.
func (s *Session) ResolveTemplate(id ident.ID) (ident.ID, error) {
	full, err := s.handler.Resolve(id, false)
	if err != nil {
		return ident.Null, err
	}
	if !s.engine.IsClassTemplate(full) {
		a, _ := s.handler.Alias(full)
		return ident.Null, &namespace.ResolveError{Kind: namespace.ResolveKindMismatch, ID: full, Scope: s.handler.Current(), Detail: "found " + a.Kind.String() + ", want a class template"}
	}
	return full, nil
}

// Instantiate instantiates the class template id, which is resolved from the
// current namespace.
func (s *Session) Instantiate(id ident.ID, args []types.TemplateParameter) (types.TypeInfo, error) {
	full, err := s.ResolveTemplate(id)
	if err != nil {
		return types.TypeInfo{}, err
	}
	key := types.TemplateKey(full, args)
	sp := s.begin(trace.ScopeInstantiation, "instantiate:"+key)
	before := s.engine.Stats()
	t, err := s.engine.CreateTemplateInstantiation(full, args)
	after := s.engine.Stats()
	switch {
	case err != nil:
		s.end(sp, err.Error())
		return types.TypeInfo{}, err
	case after.Hits > before.Hits:
		s.timer.Count("cache hits", 1)
		s.end(sp, "cached")
	case after.Deferred > before.Deferred:
		s.end(sp, "deferred")
	default:
		s.timer.Count("instantiations", 1)
		if size, err := t.Size(); err == nil {
			sp.WithExtra("size", strconv.Itoa(size))
		}
		s.end(sp, "")
	}
	return t, nil
}

// Finalise lays out every struct declared through the session in
// declaration order. Failures are reported per struct; the returned error
// is the first of them.
func (s *Session) Finalise() error {
	var first error
	for _, st := range s.structs {
		if err := st.FinaliseAlignment(); err != nil {
			s.Report(st.ID(), err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// Close ends the session span and logs a summary.
func (s *Session) Close() {
	for len(s.spans) > 0 {
		s.end(s.spans[len(s.spans)-1], "")
	}
	st := s.engine.Stats()
	s.log.Info("session finished",
		zap.Int("diagnostics", s.bag.Len()),
		zap.Int("instantiations", st.Misses),
		zap.Int("cache_hits", st.Hits),
		zap.Int("deferred", st.Deferred))
}
