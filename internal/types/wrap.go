package types

import (
	"strconv"

	"fortio.org/safecast"

	"snex/internal/ident"
)

// WrapType is an integer index whose assignment wraps modulo a constant
// limit.
type WrapType struct {
	limit     int32
	functions classCache
	layout    layoutState
}

func NewWrapType(limit int) (*WrapType, error) {
	if limit <= 0 {
		return nil, &Error{Kind: ErrInvalidArgument, Type: "wrap", Index: -1, Detail: "wrap limit must be positive, got " + strconv.Itoa(limit)}
	}
	l, err := safecast.Conv[int32](limit)
	if err != nil {
		return nil, err
	}
	return &WrapType{limit: l}, nil
}

func (w *WrapType) Limit() int { return int(w.limit) }

func (w *WrapType) isPowerOfTwo() bool { return w.limit&(w.limit-1) == 0 }

// Reduce maps v into [0, limit).
func (w *WrapType) Reduce(v int32) int32 {
	if w.isPowerOfTwo() {
		return v & (w.limit - 1)
	}
	return ((v % w.limit) + w.limit) % w.limit
}

func (w *WrapType) Key() string { return "wrap<" + strconv.Itoa(int(w.limit)) + ">" }

func (w *WrapType) String() string { return w.Key() }

func (w *WrapType) Equal(other ComplexType) bool { return sameKey(w, other) }

func (w *WrapType) FinaliseAlignment() error {
	if w.layout.finalised {
		return nil
	}
	w.layout.done(KindInteger.Size(), KindInteger.Alignment())
	return nil
}

func (w *WrapType) IsFinalised() bool { return w.layout.finalised }

func (w *WrapType) Size() (int, error) { return w.layout.sizeOf(w.Key()) }

func (w *WrapType) Alignment() (int, error) { return w.layout.alignOf(w.Key()) }

func (w *WrapType) MakeDefaultInitialiserList() (InitialiserList, error) {
	return Values(Int(0)), nil
}

func (w *WrapType) Initialise(mem *Memory, addr Addr, list InitialiserList) error {
	if !w.layout.finalised {
		return errNotFinalised(w.Key())
	}
	if list.Len() != 1 {
		return errArity(w.Key(), 1, list.Len())
	}
	v, ok := list.At(0).Value()
	if !ok || v.Kind() != KindInteger {
		return errTypeMismatch(w.Key(), 0, KindInteger.String(), list.At(0).String())
	}
	return w.Assign(mem, addr, v.Int())
}

// Assign stores v reduced modulo the limit.
func (w *WrapType) Assign(mem *Memory, addr Addr, v int32) error {
	return mem.PutInt32(addr, w.Reduce(v))
}

func (w *WrapType) Value(mem *Memory, addr Addr) (int32, error) {
	return mem.Int32(addr)
}

func (w *WrapType) ForEach(Visitor, ComplexType, Addr) bool { return false }

// reduceExpr maps x into range. The remainder operator truncates, so a
// negative remainder is lifted by one limit before the final remainder.
func (w *WrapType) reduceExpr(x Expr) Expr {
	if w.isPowerOfTwo() {
		return &Binary{Op: OpAnd, Left: x, Right: &Constant{Value: Int(w.limit - 1)}}
	}
	limit := func() Expr { return &Constant{Value: Int(w.limit)} }
	rem := &Binary{Op: OpMod, Left: x, Right: limit()}
	return &Binary{Op: OpMod, Left: &Binary{Op: OpAdd, Left: rem, Right: limit()}, Right: limit()}
}

// emitReduce maps dst into range in place, like reduceExpr.
func (w *WrapType) emitReduce(e AsmEmitter, dst Operand) error {
	if w.isPowerOfTwo() {
		return e.EmitBinary(OpAnd, dst, Immediate(Int(w.limit-1)))
	}
	limit := Immediate(Int(w.limit))
	for _, op := range []BinaryOp{OpMod, OpAdd, OpMod} {
		if err := e.EmitBinary(op, dst, limit); err != nil {
			return err
		}
	}
	return nil
}

// FunctionClass provides the wrapping operator=, a cast to int and size.
func (w *WrapType) FunctionClass() (*FunctionClass, error) {
	return w.functions.get(w.buildFunctionClass)
}

func (w *WrapType) buildFunctionClass() (*FunctionClass, error) {
	fc := NewFunctionClass(ident.New("wrap"))

	assign := NewFunction(ident.Null, VoidType, Symbol{ID: ident.New("value"), Type: IntType})
	assign.Native = func(mem *Memory, object Addr, args []Value) (Value, error) {
		return Void(), w.Assign(mem, object, args[0].Int())
	}
	assign.SetInliner(HighLevelInliner(func(d *HighLevelInlineData) error {
		d.Replacement = &Assignment{
			Target: &SubObject{Base: d.Object, T: IntType},
			Value:  w.reduceExpr(d.Args[0]),
		}
		return nil
	}))
	assign.SetInliner(AsmInliner(func(d *AsmInlineData) error {
		if v, ok := d.Args[0].ImmediateValue(); ok {
			return d.Emitter.EmitMove(d.Object, Immediate(Int(w.Reduce(v.Int()))))
		}
		if err := d.Emitter.EmitMove(d.Object, d.Args[0]); err != nil {
			return err
		}
		return w.emitReduce(d.Emitter, d.Object)
	}))
	fc.AddSpecialFunction(SpecialAssign, assign)

	cast := NewFunction(ident.Null, IntType)
	cast.Const = true
	cast.Native = func(mem *Memory, object Addr, _ []Value) (Value, error) {
		v, err := w.Value(mem, object)
		return Int(v), err
	}
	cast.SetInliner(HighLevelInliner(func(d *HighLevelInlineData) error {
		d.Replacement = &Cast{Value: &SubObject{Base: d.Object, T: IntType}, T: IntType}
		return nil
	}))
	cast.SetInliner(AsmInliner(func(d *AsmInlineData) error {
		return d.Emitter.EmitMove(d.Target, d.Object)
	}))
	fc.AddSpecialFunction(SpecialCast, cast)

	size, err := constantSize(int(w.limit))
	if err != nil {
		return nil, err
	}
	fc.AddSpecialFunction(SpecialSize, size)
	return fc, nil
}
