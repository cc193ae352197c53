package namespace_test

import (
	"errors"
	"strings"
	"testing"

	"snex/internal/ident"
	"snex/internal/namespace"
	"snex/internal/types"
)

func id(s string) ident.ID { return ident.Parse(s) }

func addVar(t *testing.T, h *namespace.Handler, name string) {
	t.Helper()
	if _, err := h.AddSymbol(ident.Parse(name), types.IntType, namespace.SymbolVariable, types.Public); err != nil {
		t.Fatalf("AddSymbol(%s): %v", name, err)
	}
}

func TestResolveInnerShadowsOuter(t *testing.T) {
	h := namespace.NewHandler()
	h.PushNamespace("A")
	addVar(t, h, "A::x")
	h.PushNamespace("B")
	addVar(t, h, "A::B::x")

	got, err := h.Resolve(id("x"), false)
	if err != nil || got != id("A::B::x") {
		t.Fatalf("Resolve(x): got %s, %v; want A::B::x", got, err)
	}
	if !h.RemoveSymbol(id("A::B::x")) {
		t.Fatal("RemoveSymbol reported nothing removed")
	}
	got, err = h.Resolve(id("x"), false)
	if err != nil || got != id("A::x") {
		t.Fatalf("Resolve(x) after removal: got %s, %v; want A::x", got, err)
	}
}

func TestResolveQualifiedAndRelative(t *testing.T) {
	h := namespace.NewHandler()
	h.PushNamespace("dsp::filters")
	addVar(t, h, "dsp::filters::cutoff")
	if err := h.PopNamespace(); err != nil {
		t.Fatalf("PopNamespace: %v", err)
	}
	if h.Current() != id("dsp") {
		t.Fatalf("cursor at %s, want dsp", h.Current())
	}

	cases := []struct {
		in, want string
	}{
		{"dsp::filters::cutoff", "dsp::filters::cutoff"},
		{"filters::cutoff", "dsp::filters::cutoff"},
	}
	for _, tc := range cases {
		got, err := h.Resolve(id(tc.in), false)
		if err != nil || got != id(tc.want) {
			t.Fatalf("Resolve(%s): got %s, %v; want %s", tc.in, got, err, tc.want)
		}
	}

	got, err := h.Resolve(id("filters::missing"), true)
	if err != nil || !got.IsNull() {
		t.Fatalf("allowZeroMatch: got %s, %v", got, err)
	}
	_, err = h.Resolve(id("filters::missing"), false)
	if !errors.Is(err, &namespace.ResolveError{Kind: namespace.ResolveUnresolved}) {
		t.Fatalf("expected unresolved error, got %v", err)
	}
}

func TestResolveUsedNamespacesAmbiguity(t *testing.T) {
	h := namespace.NewHandler()
	h.PushNamespace("left")
	addVar(t, h, "left::x")
	_ = h.PopNamespace()
	h.PushNamespace("right")
	addVar(t, h, "right::x")
	addVar(t, h, "right::y")
	_ = h.PopNamespace()

	h.PushNamespace("user")
	if err := h.AddUsedNamespace(id("left")); err != nil {
		t.Fatalf("AddUsedNamespace: %v", err)
	}
	if err := h.AddUsedNamespace(id("right")); err != nil {
		t.Fatalf("AddUsedNamespace: %v", err)
	}

	got, err := h.Resolve(id("y"), false)
	if err != nil || got != id("right::y") {
		t.Fatalf("Resolve(y): got %s, %v", got, err)
	}

	got, err = h.Resolve(id("x"), false)
	var rerr *namespace.ResolveError
	if !errors.As(err, &rerr) || rerr.Kind != namespace.ResolveAmbiguous {
		t.Fatalf("expected ambiguous error, got %s, %v", got, err)
	}
	if !got.IsNull() || len(rerr.Candidates) != 2 {
		t.Fatalf("ambiguity picked %s with candidates %v", got, rerr.Candidates)
	}

	if err := h.AddUsedNamespace(id("nowhere")); !errors.Is(err, &namespace.ResolveError{Kind: namespace.ResolveNotNamespace}) {
		t.Fatalf("expected not-namespace error, got %v", err)
	}
}

func TestAddSymbolScopeAndIdempotence(t *testing.T) {
	h := namespace.NewHandler()
	h.PushNamespace("A")
	first, err := h.AddSymbol(id("A::x"), types.IntType, namespace.SymbolVariable, types.Public)
	if err != nil {
		t.Fatalf("AddSymbol: %v", err)
	}
	again, err := h.AddSymbol(id("A::x"), types.FloatType, namespace.SymbolConstant, types.Private)
	if err != nil || again != first || again.Kind != namespace.SymbolVariable {
		t.Fatalf("re-adding changed the symbol: %+v, %v", again, err)
	}
	if len(mustNamespace(t, h, "A").Aliases()) != 1 {
		t.Fatal("duplicate alias stored")
	}
	_, err = h.AddSymbol(id("B::y"), types.IntType, namespace.SymbolVariable, types.Public)
	if !errors.Is(err, &namespace.ResolveError{Kind: namespace.ResolveScopeMismatch}) {
		t.Fatalf("expected scope mismatch, got %v", err)
	}
}

func mustNamespace(t *testing.T, h *namespace.Handler, name string) *namespace.Namespace {
	t.Helper()
	ns, ok := h.Namespace(id(name))
	if !ok {
		t.Fatalf("namespace %s missing", name)
	}
	return ns
}

func TestCheckVisibility(t *testing.T) {
	h := namespace.NewHandler()
	h.PushNamespace("Synth")
	if _, err := h.AddSymbol(id("Synth::secret"), types.IntType, namespace.SymbolVariable, types.Private); err != nil {
		t.Fatalf("AddSymbol: %v", err)
	}
	addVar(t, h, "Synth::open")
	h.PushNamespace("Voice")
	if err := h.CheckVisibility(id("Synth::secret")); err != nil {
		t.Fatalf("descendant access denied: %v", err)
	}
	restore := h.Goto(id("Other"))
	defer restore()
	if err := h.CheckVisibility(id("Synth::open")); err != nil {
		t.Fatalf("public access denied: %v", err)
	}
	if err := h.CheckVisibility(id("Synth::secret")); !errors.Is(err, &namespace.ResolveError{Kind: namespace.ResolveNotVisible}) {
		t.Fatalf("expected not-visible error, got %v", err)
	}
}

func TestConstantsAndEnums(t *testing.T) {
	h := namespace.NewHandler()
	if _, err := h.AddConstant(id("NumChannels"), types.Int(2), types.Public); err != nil {
		t.Fatalf("AddConstant: %v", err)
	}
	if err := h.SetConstantValue(id("NumChannels"), types.Int(4)); err != nil {
		t.Fatalf("SetConstantValue: %v", err)
	}
	if v, ok := h.ConstantValue(id("NumChannels")); !ok || v != types.Int(4) {
		t.Fatalf("ConstantValue: got %v, %v", v, ok)
	}

	if _, err := h.AddEnum("Mode", types.Public, namespace.EnumValue{Name: "Off"}, namespace.EnumValue{Name: "On", Value: 1}); err != nil {
		t.Fatalf("AddEnum: %v", err)
	}
	if h.Current() != ident.Null {
		t.Fatalf("AddEnum moved the cursor to %s", h.Current())
	}
	on, err := h.Resolve(id("Mode::On"), false)
	if err != nil {
		t.Fatalf("Resolve(Mode::On): %v", err)
	}
	if v, _ := h.ConstantValue(on); v != types.Int(1) {
		t.Fatalf("Mode::On = %v", v)
	}
	vt, err := h.VariableType(id("Mode::On"))
	if err != nil || !vt.SameType(types.IntType) {
		t.Fatalf("VariableType: %v %v", vt, err)
	}
	if _, err := h.AliasType(id("NumChannels")); !errors.Is(err, &namespace.ResolveError{Kind: namespace.ResolveKindMismatch}) {
		t.Fatalf("expected kind mismatch, got %v", err)
	}
	if err := h.ChangeSymbolKind(id("NumChannels"), namespace.SymbolPreprocessorConstant); err != nil {
		t.Fatalf("ChangeSymbolKind: %v", err)
	}
}

func TestResolveThroughTypeAlias(t *testing.T) {
	h := namespace.NewHandler()
	h.PushNamespace("Osc")
	addVar(t, h, "Osc::frequency")
	_ = h.PopNamespace()
	osc := types.NewStructType(id("Osc"), nil)
	if _, err := h.AddSymbol(id("Osc"), types.Complex(osc), namespace.SymbolStruct, types.Public); err != nil {
		t.Fatalf("AddSymbol(Osc): %v", err)
	}
	h.PushNamespace("Voice")
	if _, err := h.AddSymbol(id("Voice::T"), types.Complex(osc), namespace.SymbolTemplateType, types.Public); err != nil {
		t.Fatalf("AddSymbol(T): %v", err)
	}
	got, err := h.Resolve(id("T::frequency"), false)
	if err != nil || got != id("Osc::frequency") {
		t.Fatalf("Resolve(T::frequency): got %s, %v", got, err)
	}
	ct, err := h.ComplexType(id("T"))
	if err != nil || ct != types.ComplexType(osc) {
		t.Fatalf("ComplexType(T): %v %v", ct, err)
	}

	addVar(t, h, "Voice::gain")
	_, err = h.Resolve(id("gain::x"), false)
	if !errors.Is(err, &namespace.ResolveError{Kind: namespace.ResolveNotNamespace}) {
		t.Fatalf("expected not-namespace error, got %v", err)
	}
}

func TestStaticFunctionClassAndTokens(t *testing.T) {
	h := namespace.NewHandler()
	math := types.NewFunctionClass(id("Math"))
	sin := types.NewFunction(ident.New("sin"), types.FloatType, types.Symbol{ID: ident.New("x"), Type: types.FloatType})
	sin.Description = "sine"
	math.AddFunction(sin)
	if err := h.AddStaticFunctionClass(math); err != nil {
		t.Fatalf("AddStaticFunctionClass: %v", err)
	}
	got, err := h.Resolve(id("Math::sin"), false)
	if err != nil || got != id("Math::sin") {
		t.Fatalf("Resolve(Math::sin): %s %v", got, err)
	}
	if fc, ok := h.FunctionClass(id("Math")); !ok || fc != math {
		t.Fatal("FunctionClass(Math) not found")
	}

	leave := h.EnterInternal()
	h.PushNamespace("glue")
	addVar(t, h, "glue::hidden")
	_ = h.PopNamespace()
	leave()

	tokens := h.TokenList(namespace.DumpOptions{})
	var names []string
	for _, tok := range tokens {
		names = append(names, tok.ID)
		if tok.ID == "Math::sin" && tok.Signature != "float Math::sin(float x)" {
			t.Fatalf("signature: got %q", tok.Signature)
		}
	}
	if strings.Join(names, ",") != "Math,Math::sin" {
		t.Fatalf("tokens: got %v", names)
	}
	if n := len(h.TokenList(namespace.DumpOptions{Internal: true})); n != 3 {
		t.Fatalf("internal tokens: got %d, want 3", n)
	}
}

func TestDump(t *testing.T) {
	h := namespace.NewHandler()
	h.PushNamespace("dsp")
	if _, err := h.AddConstant(id("dsp::Channels"), types.Int(2), types.Public); err != nil {
		t.Fatalf("AddConstant: %v", err)
	}
	var b strings.Builder
	if err := h.Dump(&b, namespace.DumpOptions{}); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	want := "namespace dsp {\n  constant Channels: const int = 2\n}\n"
	if b.String() != want {
		t.Fatalf("Dump:\n%s\nwant:\n%s", b.String(), want)
	}
	if err := h.PopNamespace(); err != nil {
		t.Fatalf("PopNamespace: %v", err)
	}
	if err := h.PopNamespace(); err == nil {
		t.Fatal("expected error popping the root")
	}
}
