package types_test

import (
	"slices"
	"testing"

	"snex/internal/ident"
	"snex/internal/types"
)

func TestWrapReducesModuloLimit(t *testing.T) {
	cases := []struct {
		limit int
		in    int32
		want  int32
	}{
		{8, 9, 1},
		{8, 8, 0},
		{8, -1, 7},
		{8, -17, 7},
		{16, 1 << 20, 0},
		{1, 12345, 0},
		{5, 7, 2},
		{5, -1, 4},
		{5, -10, 0},
	}
	for _, tc := range cases {
		w, err := types.NewWrapType(tc.limit)
		if err != nil {
			t.Fatalf("NewWrapType(%d): %v", tc.limit, err)
		}
		if err := w.FinaliseAlignment(); err != nil {
			t.Fatalf("FinaliseAlignment: %v", err)
		}
		mem := types.NewMemory(0)
		addr, _ := mem.AllocType(w)
		if err := w.Assign(mem, addr, tc.in); err != nil {
			t.Fatalf("Assign: %v", err)
		}
		got, _ := w.Value(mem, addr)
		if got != tc.want {
			t.Fatalf("wrap<%d> = %d: got %d, want %d", tc.limit, tc.in, got, tc.want)
		}
	}
}

func TestWrapRejectsNonPositiveLimit(t *testing.T) {
	for _, n := range []int{0, -4} {
		if _, err := types.NewWrapType(n); err == nil {
			t.Fatalf("NewWrapType(%d): expected error", n)
		}
	}
}

func TestWrapAssignInliners(t *testing.T) {
	pow2, _ := types.NewWrapType(32)
	odd, _ := types.NewWrapType(12)
	cases := []struct {
		w    *types.WrapType
		want []string
	}{
		{pow2, []string{"mov [rsp+8], eax", "& [rsp+8], 31"}},
		{odd, []string{"mov [rsp+8], eax", "% [rsp+8], 12", "+ [rsp+8], 12", "% [rsp+8], 12"}},
	}
	for _, tc := range cases {
		fc, err := tc.w.FunctionClass()
		if err != nil {
			t.Fatalf("FunctionClass: %v", err)
		}
		assign, err := fc.NonOverloaded(types.SpecialAssign.Name())
		if err != nil {
			t.Fatalf("operator=: %v", err)
		}
		e := &recordingEmitter{}
		err = assign.InlineFunction(&types.AsmInlineData{
			Object:  types.MemoryOperand("rsp", 8, types.Complex(tc.w)),
			Args:    []types.Operand{types.Register("eax", types.IntType)},
			Emitter: e,
		})
		if err != nil {
			t.Fatalf("inline: %v", err)
		}
		if !slices.Equal(e.lines, tc.want) {
			t.Fatalf("%s: emitted %v, want %v", tc.w, e.lines, tc.want)
		}
	}

	// Constant operands are folded.
	fc, _ := pow2.FunctionClass()
	assign, _ := fc.NonOverloaded(types.SpecialAssign.Name())
	e := &recordingEmitter{}
	err := assign.InlineFunction(&types.AsmInlineData{
		Object:  types.MemoryOperand("rsp", 0, types.Complex(pow2)),
		Args:    []types.Operand{types.Immediate(types.Int(33))},
		Emitter: e,
	})
	if err != nil || len(e.lines) != 1 || e.lines[0] != "mov [rsp], 1" {
		t.Fatalf("folded assign: %v %v", e.lines, err)
	}

	hl := &types.HighLevelInlineData{
		Object: &types.SymbolRef{T: types.Complex(odd)},
		Args:   []types.Expr{&types.Constant{Value: types.Int(30)}},
	}
	oddFC, _ := odd.FunctionClass()
	oddAssign, _ := oddFC.NonOverloaded(types.SpecialAssign.Name())
	if err := oddAssign.InlineFunction(hl); err != nil {
		t.Fatalf("high-level inline: %v", err)
	}
	as, ok := hl.Replacement.(*types.Assignment)
	if !ok {
		t.Fatalf("replacement: got %T", hl.Replacement)
	}
	if bin, ok := as.Value.(*types.Binary); !ok || bin.Op != types.OpMod {
		t.Fatalf("assignment value: got %v", as.Value)
	}
}

// machineEmitter executes the emitted integer code with the truncating
// remainder of the target.
type machineEmitter struct {
	recordingEmitter
	slots map[string]int32
}

func (m *machineEmitter) value(o types.Operand) int32 {
	if v, ok := o.ImmediateValue(); ok {
		return v.Int()
	}
	return m.slots[o.String()]
}

func (m *machineEmitter) EmitMove(dst, src types.Operand) error {
	m.slots[dst.String()] = m.value(src)
	return m.recordingEmitter.EmitMove(dst, src)
}

func (m *machineEmitter) EmitBinary(op types.BinaryOp, dst, src types.Operand) error {
	a, b := m.slots[dst.String()], m.value(src)
	switch op {
	case types.OpAdd:
		a += b
	case types.OpSub:
		a -= b
	case types.OpMul:
		a *= b
	case types.OpAnd:
		a &= b
	case types.OpMod:
		a %= b
	}
	m.slots[dst.String()] = a
	return m.recordingEmitter.EmitBinary(op, dst, src)
}

func evalInt(t *testing.T, e types.Expr, in int32) int32 {
	t.Helper()
	switch e := e.(type) {
	case *types.Constant:
		return e.Value.Int()
	case *types.SymbolRef:
		return in
	case *types.Binary:
		a, b := evalInt(t, e.Left, in), evalInt(t, e.Right, in)
		switch e.Op {
		case types.OpAdd:
			return a + b
		case types.OpAnd:
			return a & b
		case types.OpMod:
			return a % b
		}
	}
	t.Fatalf("cannot evaluate %s", e)
	return 0
}

func TestWrapInlinersAgreeWithNativeAssign(t *testing.T) {
	for _, limit := range []int{12, 5, 32} {
		w, _ := types.NewWrapType(limit)
		if err := w.FinaliseAlignment(); err != nil {
			t.Fatalf("FinaliseAlignment: %v", err)
		}
		fc, _ := w.FunctionClass()
		assign, err := fc.NonOverloaded(types.SpecialAssign.Name())
		if err != nil {
			t.Fatalf("operator=: %v", err)
		}
		for _, in := range []int32{-1, -13, -25, -60, 0, 7, 30} {
			mem := types.NewMemory(0)
			addr, _ := mem.AllocType(w)
			if _, err := assign.Native(mem, addr, []types.Value{types.Int(in)}); err != nil {
				t.Fatalf("native: %v", err)
			}
			want, _ := w.Value(mem, addr)

			object := types.Register("ebx", types.Complex(w))
			m := &machineEmitter{slots: map[string]int32{"eax": in}}
			err := assign.InlineFunction(&types.AsmInlineData{
				Object:  object,
				Args:    []types.Operand{types.Register("eax", types.IntType)},
				Emitter: m,
			})
			if err != nil {
				t.Fatalf("asm inline: %v", err)
			}
			if got := m.slots[object.String()]; got != want {
				t.Fatalf("wrap<%d> = %d: asm gives %d, native %d (%v)", limit, in, got, want, m.lines)
			}

			hl := &types.HighLevelInlineData{
				Object: &types.SymbolRef{T: types.Complex(w)},
				Args:   []types.Expr{&types.SymbolRef{ID: ident.New("in"), T: types.IntType}},
			}
			if err := assign.InlineFunction(hl); err != nil {
				t.Fatalf("high-level inline: %v", err)
			}
			as := hl.Replacement.(*types.Assignment)
			if got := evalInt(t, as.Value, in); got != want {
				t.Fatalf("wrap<%d> = %d: expression %s gives %d, native %d", limit, in, as.Value, got, want)
			}
		}
	}
}
