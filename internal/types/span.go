package types

import (
	"strconv"

	"fortio.org/safecast"

	"snex/internal/ident"
)

// SpanType is a fixed-size homogeneous array without a runtime header.
type SpanType struct {
	elem      TypeInfo
	count     int
	stride    int
	functions classCache
	layout    layoutState
}

// NewSpanType describes count elements of elem.
func NewSpanType(elem TypeInfo, count int) (*SpanType, error) {
	if count <= 0 {
		return nil, &Error{Kind: ErrInvalidArgument, Type: "span", Index: -1, Detail: "span size must be positive, got " + strconv.Itoa(count)}
	}
	if !elem.IsValid() || elem.Kind() == KindVoid {
		return nil, &Error{Kind: ErrInvalidArgument, Type: "span", Index: -1, Detail: "invalid element type " + elem.String()}
	}
	return &SpanType{elem: elem, count: count}, nil
}

func (s *SpanType) Element() TypeInfo { return s.elem }

func (s *SpanType) Count() int { return s.count }

// Stride is the distance between two elements.
func (s *SpanType) Stride() (int, error) {
	if !s.layout.finalised {
		return 0, errNotFinalised(s.Key())
	}
	return s.stride, nil
}

func (s *SpanType) Key() string {
	return "span<" + s.elem.Key() + "," + strconv.Itoa(s.count) + ">"
}

func (s *SpanType) String() string { return s.Key() }

func (s *SpanType) Equal(other ComplexType) bool { return sameKey(s, other) }

func (s *SpanType) FinaliseAlignment() error {
	if s.layout.finalised {
		return nil
	}
	if err := s.layout.enter(s.Key()); err != nil {
		return err
	}
	if err := finaliseType(s.elem); err != nil {
		s.layout.abort()
		return err
	}
	size, err := s.elem.Size()
	if err != nil {
		s.layout.abort()
		return err
	}
	align, err := s.elem.Alignment()
	if err != nil {
		s.layout.abort()
		return err
	}
	s.stride = roundUp(size, align)
	s.layout.done(s.stride*s.count, align)
	return nil
}

func (s *SpanType) IsFinalised() bool { return s.layout.finalised }

func (s *SpanType) Size() (int, error) { return s.layout.sizeOf(s.Key()) }

func (s *SpanType) Alignment() (int, error) { return s.layout.alignOf(s.Key()) }

// MakeDefaultInitialiserList returns a single element that is broadcast.
func (s *SpanType) MakeDefaultInitialiserList() (InitialiserList, error) {
	it, err := defaultItem(s.elem)
	if err != nil {
		return InitialiserList{}, err
	}
	return NewInitialiserList(it), nil
}

// Initialise accepts exactly one element per slot, or a single element that
// is written to every slot.
func (s *SpanType) Initialise(mem *Memory, addr Addr, list InitialiserList) error {
	if !s.layout.finalised {
		return errNotFinalised(s.Key())
	}
	n := list.Len()
	if n != 1 && n != s.count {
		return errArity(s.Key(), s.count, n)
	}
	for i := range s.count {
		item := list.At(0)
		if n > 1 {
			item = list.At(i)
		}
		if err := initialiseSlot(mem, addr.Offset(i*s.stride), s.elem, item, s.Key(), i); err != nil {
			return err
		}
	}
	return nil
}

// ElementAddr is the address of element i of the span stored at base.
func (s *SpanType) ElementAddr(base Addr, i int) (Addr, error) {
	if !s.layout.finalised {
		return NullAddr, errNotFinalised(s.Key())
	}
	if i < 0 || i >= s.count {
		return NullAddr, &Error{Kind: ErrOutOfBounds, Type: s.Key(), Index: i, Detail: "index " + strconv.Itoa(i) + " out of range"}
	}
	return base.Offset(i * s.stride), nil
}

func (s *SpanType) ForEach(visit Visitor, target ComplexType, addr Addr) bool {
	if s.elem.ComplexType() == nil {
		return false
	}
	for i := range s.count {
		if visitNested(s.elem, visit, target, addr.Offset(i*s.stride)) {
			return true
		}
	}
	return false
}

// FunctionClass provides operator[], size and begin.
func (s *SpanType) FunctionClass() (*FunctionClass, error) {
	return s.functions.get(s.buildFunctionClass)
}

func (s *SpanType) buildFunctionClass() (*FunctionClass, error) {
	if err := s.FinaliseAlignment(); err != nil {
		return nil, err
	}
	fc := NewFunctionClass(ident.New("span"))

	sub := NewFunction(ident.Null, s.elem.WithRef(true), Symbol{ID: ident.New("index"), Type: IntType})
	sub.Native = func(_ *Memory, object Addr, args []Value) (Value, error) {
		a, err := s.ElementAddr(object, args[0].AsInt())
		return Pointer(a), err
	}
	sub.SetInliner(HighLevelInliner(func(d *HighLevelInlineData) error {
		if c, ok := d.Args[0].(*Constant); ok {
			if _, err := s.ElementAddr(NullAddr, c.Value.AsInt()); err != nil {
				return err
			}
		}
		d.Replacement = &Subscript{Base: d.Object, Index: d.Args[0], Stride: s.stride, T: s.elem}
		return nil
	}))
	sub.SetInliner(AsmInliner(func(d *AsmInlineData) error {
		idx, ok := d.Args[0].ImmediateValue()
		if !ok {
			return &Error{Kind: ErrBadOperand, Type: s.Key(), Index: -1, Detail: "dynamic index needs the high-level inliner"}
		}
		i := idx.AsInt()
		if _, err := s.ElementAddr(NullAddr, i); err != nil {
			return err
		}
		elem, err := d.Object.At(i*s.stride, s.elem)
		if err != nil {
			return err
		}
		return d.Emitter.EmitAddress(d.Target, elem)
	}))
	fc.AddSpecialFunction(SpecialSubscript, sub)

	size, err := constantSize(s.count)
	if err != nil {
		return nil, err
	}
	fc.AddSpecialFunction(SpecialSize, size)
	fc.AddSpecialFunction(SpecialBegin, beginAt(0, func(_ *Memory, object Addr) (Addr, error) { return object, nil }))
	return fc, nil
}

// constantSize is a size() whose result is known at compile time.
func constantSize(n int) (*FunctionData, error) {
	n32, err := safecast.Conv[int32](n)
	if err != nil {
		return nil, err
	}
	v := Int(n32)
	f := NewFunction(ident.Null, IntType)
	f.Const = true
	f.Native = func(*Memory, Addr, []Value) (Value, error) { return v, nil }
	f.SetInliner(HighLevelInliner(func(d *HighLevelInlineData) error {
		d.Replacement = &Constant{Value: v}
		return nil
	}))
	f.SetInliner(AsmInliner(func(d *AsmInlineData) error {
		return d.Emitter.EmitMove(d.Target, Immediate(v))
	}))
	return f, nil
}

// beginAt is a begin() returning the first element pointer. When indirect,
// the pointer is stored at offset inside the object; otherwise the object
// itself is the first element.
func beginAt(offset int, resolve func(mem *Memory, object Addr) (Addr, error)) *FunctionData {
	indirect := resolve == nil
	f := NewFunction(ident.Null, PtrType)
	f.Const = true
	f.Native = func(mem *Memory, object Addr, _ []Value) (Value, error) {
		if indirect {
			a, err := mem.Address(object.Offset(offset))
			return Pointer(a), err
		}
		a, err := resolve(mem, object)
		return Pointer(a), err
	}
	f.SetInliner(HighLevelInliner(func(d *HighLevelInlineData) error {
		if indirect {
			d.Replacement = &SubObject{Base: d.Object, Offset: offset, T: PtrType}
		} else {
			d.Replacement = &AddressOf{Base: d.Object}
		}
		return nil
	}))
	f.SetInliner(AsmInliner(func(d *AsmInlineData) error {
		if indirect {
			src, err := d.Object.At(offset, PtrType)
			if err != nil {
				return err
			}
			return d.Emitter.EmitMove(d.Target, src)
		}
		return d.Emitter.EmitAddress(d.Target, d.Object)
	}))
	return f
}
