package templates_test

import (
	"errors"
	"sync"
	"testing"

	"snex/internal/ident"
	"snex/internal/namespace"
	"snex/internal/templates"
	"snex/internal/types"
)

func newEngine(t *testing.T) (*templates.Engine, *namespace.Handler) {
	t.Helper()
	h := namespace.NewHandler()
	e := templates.NewEngine(h, types.NewRegistry())
	if err := templates.RegisterBuiltins(e); err != nil {
		t.Fatalf("RegisterBuiltins: %v", err)
	}
	return e, h
}

func pairTemplate() templates.TemplateObject {
	tID := ident.Parse("Pair::T")
	return templates.StructTemplate(ident.New("Pair"),
		[]types.TemplateParameter{types.TypeArgument(tID, false)},
		&templates.StructDef{Members: []templates.MemberSpec{
			{Name: "first", Type: types.Placeholder(tID)},
			{Name: "second", Type: types.Placeholder(tID)},
		}})
}

func typeArgs(ts ...types.TypeInfo) []types.TemplateParameter {
	out := make([]types.TemplateParameter, len(ts))
	for i, t := range ts {
		out[i] = types.TypeParam(t)
	}
	return out
}

func TestPairInstantiationEndToEnd(t *testing.T) {
	e, h := newEngine(t)
	if _, err := e.AddTemplateClass(pairTemplate()); err != nil {
		t.Fatalf("AddTemplateClass: %v", err)
	}
	if a, ok := h.Alias(ident.New("Pair")); !ok || a.Kind != namespace.SymbolTemplatedClass {
		t.Fatalf("Pair symbol: %+v", a)
	}
	if a, ok := h.Alias(ident.Parse("Pair::T")); !ok || a.Kind != namespace.SymbolTemplateType {
		t.Fatalf("Pair::T symbol: %+v", a)
	}

	pInt, err := e.CreateTemplateInstantiation(ident.New("Pair"), typeArgs(types.IntType))
	if err != nil {
		t.Fatalf("Pair<int>: %v", err)
	}
	pDouble, err := e.CreateTemplateInstantiation(ident.New("Pair"), typeArgs(types.DoubleType))
	if err != nil {
		t.Fatalf("Pair<double>: %v", err)
	}
	if pInt.ComplexType() == pDouble.ComplexType() {
		t.Fatal("Pair<int> and Pair<double> share a descriptor")
	}

	cases := []struct {
		ti        types.TypeInfo
		size      int
		alignment int
		elem      types.TypeInfo
	}{
		{pInt, 8, 4, types.IntType},
		{pDouble, 16, 8, types.DoubleType},
	}
	for _, tc := range cases {
		s := tc.ti.ComplexType().(*types.StructType)
		size, _ := s.Size()
		align, _ := s.Alignment()
		if size != tc.size || align != tc.alignment {
			t.Fatalf("%s: size=%d align=%d, want %d/%d", s, size, align, tc.size, tc.alignment)
		}
		members := s.Members()
		if len(members) != 2 || members[0].Name != "first" || members[1].Name != "second" {
			t.Fatalf("%s members: %+v", s, members)
		}
		for _, m := range members {
			if !m.Type.SameType(tc.elem) {
				t.Fatalf("%s.%s has type %s, want %s", s, m.Name, m.Type, tc.elem)
			}
		}
	}

	again, err := e.CreateTemplateInstantiation(ident.New("Pair"), typeArgs(types.IntType))
	if err != nil {
		t.Fatalf("Pair<int> again: %v", err)
	}
	if again.ComplexType() != pInt.ComplexType() {
		t.Fatal("re-instantiation returned a different handle")
	}
	if st := e.Stats(); st.Hits != 1 || st.Misses != 2 {
		t.Fatalf("stats: %+v", st)
	}
}

func TestInstantiationSharesRegistryAcrossEngines(t *testing.T) {
	reg := types.NewRegistry()
	e1 := templates.NewEngine(namespace.NewHandler(), reg)
	e2 := templates.NewEngine(namespace.NewHandler(), reg)
	for _, e := range []*templates.Engine{e1, e2} {
		if err := templates.RegisterBuiltins(e); err != nil {
			t.Fatalf("RegisterBuiltins: %v", err)
		}
	}
	args := []types.TemplateParameter{types.TypeParam(types.FloatType), types.ConstParam(4)}
	a, err := e1.CreateTemplateInstantiation(templates.SpanID, args)
	if err != nil {
		t.Fatalf("span<float,4>: %v", err)
	}
	b, err := e2.CreateTemplateInstantiation(templates.SpanID, args)
	if err != nil {
		t.Fatalf("span<float,4>: %v", err)
	}
	if a.ComplexType() != b.ComplexType() {
		t.Fatal("equal instantiations in two sessions returned different handles")
	}
}

func TestInstantiationErrors(t *testing.T) {
	e, _ := newEngine(t)
	cases := []struct {
		name string
		id   ident.ID
		args []types.TemplateParameter
		kind templates.ErrorKind
	}{
		{"unknown", ident.New("Nope"), nil, templates.ErrUnknownTemplate},
		{"count", templates.WrapID, []types.TemplateParameter{types.ConstParam(1), types.ConstParam(2)}, templates.ErrParamCount},
		{"kind", templates.WrapID, typeArgs(types.IntType), templates.ErrParamKind},
		{"zero wrap", templates.WrapID, []types.TemplateParameter{types.ConstParam(0)}, templates.ErrIllegalConstant},
		{"negative span", templates.SpanID, []types.TemplateParameter{types.TypeParam(types.IntType), types.ConstParam(-2)}, templates.ErrIllegalConstant},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.CreateTemplateInstantiation(tc.id, tc.args)
			var terr *templates.TemplateError
			if !errors.As(err, &terr) || terr.Kind != tc.kind {
				t.Fatalf("expected %v, got %v", tc.kind, err)
			}
		})
	}
}

func TestTemplateOverExistingSymbolIsNotRegistered(t *testing.T) {
	e, h := newEngine(t)
	voice := ident.New("Voice")
	if _, err := h.AddSymbol(voice, types.Complex(types.NewStructType(voice, nil)), namespace.SymbolStruct, types.Public); err != nil {
		t.Fatalf("AddSymbol: %v", err)
	}
	obj := templates.StructTemplate(voice, []types.TemplateParameter{types.TypeArgument(ident.Parse("Voice::T"), false)}, &templates.StructDef{})
	_, err := e.AddTemplateClass(obj)
	var rerr *namespace.ResolveError
	if !errors.As(err, &rerr) || rerr.Kind != namespace.ResolveKindMismatch {
		t.Fatalf("AddTemplateClass: got %v, want kind mismatch", err)
	}
	if e.IsClassTemplate(voice) || len(e.Template(voice)) != 0 {
		t.Fatal("failed template stayed registered")
	}
	if _, err := e.CreateTemplateInstantiation(voice, typeArgs(types.IntType)); err == nil {
		t.Fatal("instantiated a template that was never declared")
	}
}

func TestConcurrentEnginesShareFinalisedTypes(t *testing.T) {
	r := types.NewRegistry()
	const workers = 8
	sizes := make([]int, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e := templates.NewEngine(namespace.NewHandler(), r)
			if errs[i] = templates.RegisterBuiltins(e); errs[i] != nil {
				return
			}
			span, err := e.CreateTemplateInstantiation(templates.SpanID, []types.TemplateParameter{types.TypeParam(types.FloatType), types.ConstParam(4)})
			if err != nil {
				errs[i] = err
				return
			}
			tuple, err := e.CreateTemplateInstantiation(templates.TupleID, typeArgs(span, types.IntType))
			if err != nil {
				errs[i] = err
				return
			}
			if _, err := tuple.ComplexType().FunctionClass(); err != nil {
				errs[i] = err
				return
			}
			sizes[i], errs[i] = tuple.Size()
		}()
	}
	wg.Wait()
	for i := range workers {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if sizes[i] != 20 {
			t.Fatalf("worker %d: tuple size %d, want 20", i, sizes[i])
		}
	}
	if r.Len() != 2 {
		t.Fatalf("registry holds %d types, want 2", r.Len())
	}
}

func TestDeferredInstantiationBindsLater(t *testing.T) {
	e, _ := newEngine(t)
	if _, err := e.AddTemplateClass(pairTemplate()); err != nil {
		t.Fatalf("AddTemplateClass: %v", err)
	}
	uID := ident.Parse("Holder::U")
	deferred, err := e.CreateTemplateInstantiation(ident.New("Pair"), typeArgs(types.Placeholder(uID)))
	if err != nil {
		t.Fatalf("Pair<U>: %v", err)
	}
	if !deferred.IsUnresolved() {
		t.Fatalf("Pair<U> is not deferred: %s", deferred)
	}
	if e.Stats().Deferred != 1 || e.Registry().Len() != 0 {
		t.Fatalf("deferred instantiation touched the registry: %+v", e.Stats())
	}

	bound, err := types.SubstituteType(deferred, []types.TemplateParameter{
		{Kind: types.ParamType, Type: types.FloatType, ArgumentID: uID},
	})
	if err != nil {
		t.Fatalf("SubstituteType: %v", err)
	}
	direct, _ := e.CreateTemplateInstantiation(ident.New("Pair"), typeArgs(types.FloatType))
	if bound.ComplexType() != direct.ComplexType() {
		t.Fatalf("late binding produced %s, direct instantiation %s", bound, direct)
	}
}

func TestNestedTemplateInheritsParametersInAnyOrder(t *testing.T) {
	for _, parentFirst := range []bool{true, false} {
		e, _ := newEngine(t)
		outer := templates.StructTemplate(ident.New("Outer"),
			[]types.TemplateParameter{types.TypeArgument(ident.New("T"), false)},
			&templates.StructDef{Members: []templates.MemberSpec{{Name: "value", Type: types.Placeholder(ident.Parse("Outer::T"))}}})
		inner := templates.StructTemplate(ident.Parse("Outer::Inner"),
			[]types.TemplateParameter{types.IntegerArgument(ident.New("N"), false)},
			&templates.StructDef{Members: []templates.MemberSpec{{Name: "value", Type: types.Placeholder(ident.Parse("Outer::T"))}}})

		order := []templates.TemplateObject{outer, inner}
		if !parentFirst {
			order = []templates.TemplateObject{inner, outer}
		}
		for _, obj := range order {
			if _, err := e.AddTemplateClass(obj); err != nil {
				t.Fatalf("AddTemplateClass(%s): %v", obj.ID, err)
			}
		}
		in := e.Template(ident.Parse("Outer::Inner"))[0]
		if len(in.Params) != 2 || in.Params[0].ArgumentID != ident.Parse("Outer::T") || in.Params[1].ArgumentID != ident.Parse("Outer::Inner::N") {
			t.Fatalf("parentFirst=%v: inner params %v", parentFirst, in.Params)
		}
		got, err := e.CreateTemplateInstantiation(ident.Parse("Outer::Inner"),
			[]types.TemplateParameter{types.TypeParam(types.DoubleType), types.ConstParam(3)})
		if err != nil {
			t.Fatalf("Outer::Inner<double,3>: %v", err)
		}
		if size, _ := got.Size(); size != 8 {
			t.Fatalf("Outer::Inner<double,3> size %d, want 8", size)
		}
	}
}

func TestFunctionTemplate(t *testing.T) {
	e, _ := newEngine(t)
	tID := ident.Parse("clamp::T")
	_, err := e.AddTemplateFunction(templates.TemplateObject{
		ID:     ident.New("clamp"),
		Params: []types.TemplateParameter{types.TypeArgument(tID, false)},
		MakeFunction: func(d templates.ConstructData, f *types.FunctionData) error {
			elem, err := d.ExpectType(0)
			if err != nil {
				return err
			}
			f.ReturnType = elem
			f.Args = []types.Symbol{{ID: ident.New("v"), Type: elem}}
			f.SetInliner(types.HighLevelInliner(func(hd *types.HighLevelInlineData) error {
				hd.Replacement = hd.Args[0]
				return nil
			}))
			return nil
		},
	})
	if err != nil {
		t.Fatalf("AddTemplateFunction: %v", err)
	}
	f1, err := e.CreateTemplateFunction(ident.New("clamp"), typeArgs(types.FloatType))
	if err != nil {
		t.Fatalf("clamp<float>: %v", err)
	}
	if got := f1.Signature(); got != "float clamp<float>(float v)" {
		t.Fatalf("signature: %q", got)
	}
	f2, _ := e.CreateTemplateFunction(ident.New("clamp"), typeArgs(types.FloatType))
	if f1 != f2 {
		t.Fatal("function instantiation was not cached")
	}
	if _, err := e.CreateTemplateInstantiation(ident.New("clamp"), typeArgs(types.FloatType)); !errors.Is(err, &templates.TemplateError{Kind: templates.ErrUnknownTemplate}) {
		t.Fatalf("function template instantiated as class: %v", err)
	}
}

func TestBuiltinTemplatesAreInternal(t *testing.T) {
	e, h := newEngine(t)
	for _, id := range []ident.ID{templates.SpanID, templates.DynID, templates.WrapID, templates.TupleID} {
		a, ok := h.Alias(id)
		if !ok || !a.Internal {
			t.Fatalf("%s: %+v", id, a)
		}
		if !e.IsClassTemplate(id) {
			t.Fatalf("%s is not a class template", id)
		}
	}
	if n := len(h.TokenList(namespace.DumpOptions{})); n != 0 {
		t.Fatalf("builtins leaked %d tokens", n)
	}
	tuple, err := e.CreateTemplateInstantiation(templates.TupleID, typeArgs(types.IntType, types.FloatType, types.DoubleType))
	if err != nil {
		t.Fatalf("tuple: %v", err)
	}
	if tuple.String() != "tuple<int,float,double>" {
		t.Fatalf("tuple key: %s", tuple)
	}
	if _, ok := e.Registry().LookupTemplate(templates.TupleID, typeArgs(types.IntType, types.FloatType, types.DoubleType)); !ok {
		t.Fatal("tuple not found in registry by template key")
	}
}
