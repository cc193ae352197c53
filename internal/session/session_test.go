package session_test

import (
	"errors"
	"fmt"
	"testing"

	"golang.org/x/sync/errgroup"

	"snex/internal/diag"
	"snex/internal/ident"
	"snex/internal/session"
	"snex/internal/templates"
	"snex/internal/trace"
	"snex/internal/types"
)

func newSession(t *testing.T, opts session.Options) *session.Session {
	t.Helper()
	if opts.File == "" {
		opts.File = "unit.toml"
	}
	s, err := session.New(opts)
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	return s
}

func declarePair(t *testing.T, s *session.Session) {
	t.Helper()
	_, leave := s.DeclareNamespace("dsp")
	defer leave()
	def, err := s.DeclareStructTemplate("Pair", []types.TemplateParameter{types.TypeArgument(ident.New("T"), false)})
	if err != nil {
		t.Fatalf("DeclareStructTemplate: %v", err)
	}
	restore := s.Handler().Goto(ident.Parse("dsp::Pair"))
	defer restore()
	elem, err := s.ResolveType(ident.New("T"))
	if err != nil {
		t.Fatalf("resolve T inside Pair: %v", err)
	}
	def.AddMember(templates.MemberSpec{Name: "a", Type: elem})
	def.AddMember(templates.MemberSpec{Name: "b", Type: elem})
}

func TestPairThroughSession(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	s := newSession(t, session.Options{Tracer: ring})
	declarePair(t, s)

	var pInt, pFloat, again types.TypeInfo
	err := s.Pass("instantiate", func() error {
		var err error
		if pInt, err = s.Instantiate(ident.Parse("dsp::Pair"), []types.TemplateParameter{types.TypeParam(types.IntType)}); err != nil {
			return err
		}
		if pFloat, err = s.Instantiate(ident.Parse("dsp::Pair"), []types.TemplateParameter{types.TypeParam(types.FloatType)}); err != nil {
			return err
		}
		again, err = s.Instantiate(ident.Parse("dsp::Pair"), []types.TemplateParameter{types.TypeParam(types.IntType)})
		return err
	})
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	if pInt.ComplexType() == pFloat.ComplexType() || again.ComplexType() != pInt.ComplexType() {
		t.Fatalf("instantiation identity broken: %s %s %s", pInt, pFloat, again)
	}
	for _, ti := range []types.TypeInfo{pInt, pFloat} {
		if size, err := ti.Size(); err != nil || size != 8 {
			t.Fatalf("%s: size %d (%v)", ti, size, err)
		}
	}
	if got := s.Timer().Counter("instantiations"); got != 2 {
		t.Fatalf("instantiations counter %d", got)
	}
	if got := s.Timer().Counter("cache hits"); got != 1 {
		t.Fatalf("cache hits counter %d", got)
	}
	if s.Diagnostics().Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diag.FormatShort(s.Diagnostics().Items(), true))
	}

	var sawCached bool
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanEnd && ev.Name == "instantiate:dsp::Pair<int>" && ev.Detail == "cached" {
			sawCached = true
		}
	}
	if !sawCached {
		t.Fatalf("no cached instantiation span recorded")
	}
}

func TestDiagnosticCodes(t *testing.T) {
	s := newSession(t, session.Options{})

	s.Decl("instantiate", ident.New("w"), func() error {
		_, err := s.Instantiate(templates.WrapID, []types.TemplateParameter{types.ConstParam(0)})
		return err
	})
	s.Decl("alias", ident.New("x"), func() error {
		_, err := s.ResolveType(ident.New("Missing"))
		return err
	})
	s.Decl("instantiate", ident.New("y"), func() error {
		_, err := s.Instantiate(ident.New("Nope"), nil)
		return err
	})

	want := []diag.Code{diag.TplIllegalConstant, diag.ResUnresolved, diag.ResUnresolved}
	items := s.Diagnostics().Items()
	if len(items) != len(want) {
		t.Fatalf("got %d diagnostics: %s", len(items), diag.FormatShort(items, true))
	}
	for i, code := range want {
		if items[i].Code != code || items[i].Primary.File != "unit.toml" {
			t.Fatalf("diagnostic %d: %+v, want %s", i, items[i], code.ID())
		}
	}
}

func TestAmbiguousConstantListsCandidates(t *testing.T) {
	s := newSession(t, session.Options{})
	for _, ns := range []string{"a", "b"} {
		_, leave := s.DeclareNamespace(ns)
		if err := s.DeclareConstant("X", types.Int(1), types.Public); err != nil {
			t.Fatal(err)
		}
		leave()
	}
	_, leave := s.DeclareNamespace("c")
	defer leave()
	for _, used := range []string{"a", "b"} {
		if err := s.UseNamespace(ident.New(used)); err != nil {
			t.Fatalf("UseNamespace(%s): %v", used, err)
		}
	}
	ok := s.Decl("constant", ident.Parse("c::Y"), func() error {
		_, err := s.ResolveConstant(ident.New("X"))
		return err
	})
	if ok {
		t.Fatal("ambiguous lookup succeeded")
	}
	d := s.Diagnostics().Items()[0]
	if d.Code != diag.ResAmbiguous || len(d.Notes) != 2 {
		t.Fatalf("diagnostic %+v", d)
	}
}

func TestRedundantUseWarns(t *testing.T) {
	s := newSession(t, session.Options{})
	_, leave := s.DeclareNamespace("a")
	leave()
	_, leave = s.DeclareNamespace("c")
	defer leave()
	for _, used := range []string{"a", "a", "c"} {
		if err := s.UseNamespace(ident.New(used)); err != nil {
			t.Fatalf("UseNamespace(%s): %v", used, err)
		}
	}
	items := s.Diagnostics().Items()
	if len(items) != 2 {
		t.Fatalf("got %d diagnostics: %s", len(items), diag.FormatShort(items, true))
	}
	for _, d := range items {
		if d.Severity != diag.SevWarning || d.Code != diag.DclRedundantUse || d.Primary.Subject != "c" {
			t.Fatalf("diagnostic %+v", d)
		}
	}
	if s.Diagnostics().HasErrors() {
		t.Fatal("redundant using counted as an error")
	}
}

func TestFinaliseReportsRecursiveStruct(t *testing.T) {
	s := newSession(t, session.Options{Padding: types.PaddingNatural})
	node, err := s.DeclareStruct("Node", types.Public)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := node.AddMember("self", types.Complex(node), types.Public); err != nil {
		t.Fatal(err)
	}
	ok, err := s.DeclareStruct("Ok", types.Public)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ok.AddMember("v", types.DoubleType, types.Public); err != nil {
		t.Fatal(err)
	}

	err = s.Finalise()
	var lerr *types.Error
	if !errors.As(err, &lerr) || lerr.Kind != types.ErrRecursiveType {
		t.Fatalf("expected recursive type error, got %v", err)
	}
	if !ok.IsFinalised() || ok.PaddingMode() != types.PaddingNatural {
		t.Fatalf("independent struct not finalised with the session padding")
	}
	if d := s.Diagnostics().Items(); len(d) != 1 || d[0].Code != diag.LayRecursiveType || d[0].Primary.Subject != "Node" {
		t.Fatalf("diagnostics %+v", d)
	}
}

func TestSessionsShareRegistry(t *testing.T) {
	reg := types.NewRegistry()
	a := newSession(t, session.Options{Registry: reg, File: "a.toml"})
	b := newSession(t, session.Options{Registry: reg, File: "b.toml"})
	args := []types.TemplateParameter{types.TypeParam(types.IntType), types.ConstParam(3)}
	ta, err := a.Instantiate(templates.SpanID, args)
	if err != nil {
		t.Fatal(err)
	}
	tb, err := b.Instantiate(templates.SpanID, args)
	if err != nil {
		t.Fatal(err)
	}
	if ta.ComplexType() != tb.ComplexType() || reg.Len() != 1 {
		t.Fatalf("sessions did not share span<int,3> (registry has %d)", reg.Len())
	}
	if _, ok := a.Handler().Alias(ident.New("dsp")); ok {
		t.Fatal("sessions leaked symbols")
	}
}

func TestConcurrentSessionsShareRegistry(t *testing.T) {
	reg := types.NewRegistry()
	var g errgroup.Group
	for i := range 8 {
		g.Go(func() error {
			s, err := session.New(session.Options{Registry: reg, File: fmt.Sprintf("unit%d.toml", i)})
			if err != nil {
				return err
			}
			defer s.Close()
			span, err := s.Instantiate(templates.SpanID, []types.TemplateParameter{types.TypeParam(types.FloatType), types.ConstParam(4)})
			if err != nil {
				return err
			}
			tuple, err := s.Instantiate(templates.TupleID, []types.TemplateParameter{types.TypeParam(span), types.TypeParam(types.IntType)})
			if err != nil {
				return err
			}
			for _, ct := range []types.ComplexType{span.ComplexType(), tuple.ComplexType()} {
				if _, err := ct.FunctionClass(); err != nil {
					return err
				}
			}
			if size, err := tuple.Size(); err != nil || size != 20 {
				return fmt.Errorf("%s: size %d (%v)", tuple, size, err)
			}
			return s.Finalise()
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if reg.Len() != 2 {
		t.Fatalf("registry holds %d types, want 2", reg.Len())
	}
}

func TestClassifyUnwrapsConstruction(t *testing.T) {
	err := &templates.TemplateError{Kind: templates.ErrConstruction, ID: ident.New("T"), Index: -1,
		Err: &types.Error{Kind: types.ErrDuplicateMember, Index: -1}}
	if got := session.Classify(err); got != diag.LayDuplicateMember {
		t.Fatalf("got %s", got.ID())
	}
	if got := session.Classify(errors.New("plain")); got != diag.UnknownCode {
		t.Fatalf("got %s", got.ID())
	}
}
