package types_test

import (
	"errors"
	"testing"

	"snex/internal/ident"
	"snex/internal/types"
)

// processor builds a struct exposing the given no-op methods.
func processor(t *testing.T, name string, size int, methods ...string) *types.StructType {
	t.Helper()
	s := types.NewStructType(ident.Parse(name), nil)
	for i := range size {
		if _, err := s.AddMember(string(rune('a'+i)), types.IntType, types.Public); err != nil {
			t.Fatalf("AddMember: %v", err)
		}
	}
	for _, m := range methods {
		f := types.NewFunction(ident.New(m), types.VoidType, types.Symbol{ID: ident.New("frame"), Type: types.FloatType})
		f.Native = func(*types.Memory, types.Addr, []types.Value) (types.Value, error) { return types.Void(), nil }
		s.AddMemberFunction(f)
	}
	if err := s.FinaliseAlignment(); err != nil {
		t.Fatalf("FinaliseAlignment: %v", err)
	}
	return s
}

func TestVariadicOffsetsArePlainSums(t *testing.T) {
	a := processor(t, "A", 1, "process")
	b := processor(t, "B", 3, "process")
	c := processor(t, "C", 2, "process")
	tuple := types.NewVariadicType(ident.Null, []types.TypeInfo{types.Complex(a), types.Complex(b), types.Complex(c)})
	if err := tuple.FinaliseAlignment(); err != nil {
		t.Fatalf("FinaliseAlignment: %v", err)
	}
	if tuple.Key() != "tuple<A,B,C>" {
		t.Fatalf("key: got %q", tuple.Key())
	}
	for i, want := range []int{0, 4, 16} {
		got, err := tuple.OffsetForSubType(i)
		if err != nil || got != want {
			t.Fatalf("offset %d: got %d (%v), want %d", i, got, err, want)
		}
	}
	if size, _ := tuple.Size(); size != 24 {
		t.Fatalf("size: got %d, want 24", size)
	}
}

func TestVariadicFanOutEmitsOneCallPerSubType(t *testing.T) {
	subs := []*types.StructType{
		processor(t, "Osc", 2, "process", "reset"),
		processor(t, "Filter", 1, "process"),
		processor(t, "Gain", 3, "process"),
	}
	infos := make([]types.TypeInfo, len(subs))
	for i, s := range subs {
		infos[i] = types.Complex(s)
	}
	tuple := types.NewVariadicType(ident.Null, infos)
	fc, err := tuple.FunctionClass()
	if err != nil {
		t.Fatalf("FunctionClass: %v", err)
	}
	process, err := fc.NonOverloaded("process")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(process.Args) != 1 || !process.Args[0].Type.SameType(types.FloatType) {
		t.Fatalf("process signature: %s", process.Signature())
	}

	e := &recordingEmitter{}
	err = process.InlineFunction(&types.AsmInlineData{
		Object:  types.MemoryOperand("rdi", 0, types.Complex(tuple)),
		Args:    []types.Operand{types.Register("xmm0", types.FloatType)},
		Emitter: e,
	})
	if err != nil {
		t.Fatalf("asm inline: %v", err)
	}
	if len(e.calls) != len(subs) {
		t.Fatalf("got %d calls, want %d", len(e.calls), len(subs))
	}
	for i, call := range e.calls {
		off, _ := tuple.OffsetForSubType(i)
		if call.object.Offset != off {
			t.Fatalf("call %d at offset %d, want %d", i, call.object.Offset, off)
		}
		if call.fn.ID.Parent() != subs[i].ID() {
			t.Fatalf("call %d resolved %s, want a method of %s", i, call.fn.ID, subs[i].ID())
		}
	}

	hl := &types.HighLevelInlineData{
		Object: &types.SymbolRef{ID: ident.New("chain"), T: types.Complex(tuple)},
		Args:   []types.Expr{&types.SymbolRef{ID: ident.New("x"), T: types.FloatType}},
	}
	if err := process.InlineFunction(hl); err != nil {
		t.Fatalf("high-level inline: %v", err)
	}
	seq, ok := hl.Replacement.(*types.Sequence)
	if !ok || len(seq.Exprs) != len(subs) {
		t.Fatalf("replacement: got %v", hl.Replacement)
	}
	for i, x := range seq.Exprs {
		call := x.(*types.Call)
		off, _ := tuple.OffsetForSubType(i)
		if obj := call.Object.(*types.SubObject); obj.Offset != off {
			t.Fatalf("expr %d at offset %d, want %d", i, obj.Offset, off)
		}
	}
}

func TestVariadicFanOutMissingMethod(t *testing.T) {
	tuple := types.NewVariadicType(ident.Null, []types.TypeInfo{
		types.Complex(processor(t, "Osc", 1, "process", "reset")),
		types.Complex(processor(t, "Filter", 1, "process")),
	})
	fc, err := tuple.FunctionClass()
	if err != nil {
		t.Fatalf("FunctionClass: %v", err)
	}
	reset, _ := fc.NonOverloaded("reset")
	err = reset.InlineFunction(&types.HighLevelInlineData{Object: &types.SymbolRef{T: types.Complex(tuple)}})
	var terr *types.Error
	if !errors.As(err, &terr) || terr.Kind != types.ErrMissingMethod {
		t.Fatalf("expected missing method error, got %v", err)
	}
	if terr.Name != "reset" || terr.Got != "Filter" {
		t.Fatalf("error names %q on %q, want reset on Filter", terr.Name, terr.Got)
	}
}

func TestVariadicFanOutPicksOverload(t *testing.T) {
	voice := processor(t, "Voice", 1, "process")
	block := types.NewFunction(ident.New("process"), types.VoidType, types.Symbol{ID: ident.New("block"), Type: types.DoubleType})
	voice.AddMemberFunction(block)
	filter := processor(t, "Filter", 2)
	for _, arg := range []types.TypeInfo{types.DoubleType, types.FloatType} {
		filter.AddMemberFunction(types.NewFunction(ident.New("process"), types.VoidType, types.Symbol{ID: ident.New("x"), Type: arg}))
	}

	tuple := types.NewVariadicType(ident.Null, []types.TypeInfo{types.Complex(voice), types.Complex(filter)})
	fc, err := tuple.FunctionClass()
	if err != nil {
		t.Fatalf("FunctionClass: %v", err)
	}
	if n := len(fc.PossibleMatches("process")); n != 2 {
		t.Fatalf("got %d process overloads on the tuple, want 2", n)
	}
	for _, arg := range []types.TypeInfo{types.FloatType, types.DoubleType} {
		process, err := fc.Match("process", []types.TypeInfo{arg})
		if err != nil {
			t.Fatalf("process(%s): %v", arg, err)
		}
		e := &recordingEmitter{}
		err = process.InlineFunction(&types.AsmInlineData{
			Object:  types.MemoryOperand("rdi", 0, types.Complex(tuple)),
			Args:    []types.Operand{types.Register("xmm0", arg)},
			Emitter: e,
		})
		if err != nil {
			t.Fatalf("process(%s): %v", arg, err)
		}
		if len(e.calls) != 2 {
			t.Fatalf("process(%s): %d calls, want 2", arg, len(e.calls))
		}
		for i, call := range e.calls {
			if !call.fn.Args[0].Type.SameType(arg) {
				t.Fatalf("process(%s): call %d took %s", arg, i, call.fn.Signature())
			}
		}
	}
}

func TestVariadicGetSelectsElement(t *testing.T) {
	tuple := types.NewVariadicType(ident.Null, []types.TypeInfo{types.IntType, types.DoubleType, types.FloatType})
	fc, err := tuple.FunctionClass()
	if err != nil {
		t.Fatalf("FunctionClass: %v", err)
	}
	get, _ := fc.NonOverloaded("get")
	hl := &types.HighLevelInlineData{
		Object:             &types.SymbolRef{T: types.Complex(tuple)},
		TemplateParameters: []types.TemplateParameter{types.ConstParam(2)},
	}
	if err := get.InlineFunction(hl); err != nil {
		t.Fatalf("inline get<2>: %v", err)
	}
	sub := hl.Replacement.(*types.SubObject)
	if sub.Offset != 12 || !sub.T.SameType(types.FloatType) {
		t.Fatalf("get<2>: got offset %d type %s", sub.Offset, sub.T)
	}
	hl.TemplateParameters = []types.TemplateParameter{types.ConstParam(3)}
	if err := get.InlineFunction(hl); !errors.Is(err, &types.Error{Kind: types.ErrOutOfBounds}) {
		t.Fatalf("get<3>: expected out of bounds, got %v", err)
	}
}
