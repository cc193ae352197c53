package types

import (
	"sync"

	"fortio.org/safecast"

	"snex/internal/ident"
)

// Dyn header layout: 4 reserved bytes, the element count, the data pointer.
const (
	dynCountOffset = 4
	dynDataOffset  = 8
	dynHeaderSize  = 16
)

// DynType is a non-owning view over contiguous elements stored elsewhere.
type DynType struct {
	elem      TypeInfo
	functions classCache
	layout    layoutState

	// mu guards the element stride and the span overloads, both filled in
	// after the descriptor is published.
	mu     sync.Mutex
	stride int
	spans  map[string]bool
}

func NewDynType(elem TypeInfo) (*DynType, error) {
	if !elem.IsValid() || elem.Kind() == KindVoid {
		return nil, &Error{Kind: ErrInvalidArgument, Type: "dyn", Index: -1, Detail: "invalid element type " + elem.String()}
	}
	return &DynType{elem: elem, spans: make(map[string]bool)}, nil
}

func (d *DynType) Element() TypeInfo { return d.elem }

func (d *DynType) Key() string { return "dyn<" + d.elem.Key() + ">" }

func (d *DynType) String() string { return d.Key() }

func (d *DynType) Equal(other ComplexType) bool { return sameKey(d, other) }

// FinaliseAlignment fixes the header layout. The element type is finalised
// lazily because the header does not depend on it, which lets a struct hold
// a dyn of itself.
func (d *DynType) FinaliseAlignment() error {
	if d.layout.finalised {
		return nil
	}
	d.layout.done(dynHeaderSize, PointerSize)
	return nil
}

func (d *DynType) elemStride() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stride > 0 {
		return d.stride, nil
	}
	if err := finaliseType(d.elem); err != nil {
		return 0, err
	}
	size, err := d.elem.Size()
	if err != nil {
		return 0, err
	}
	align, err := d.elem.Alignment()
	if err != nil {
		return 0, err
	}
	d.stride = roundUp(size, align)
	return d.stride, nil
}

func (d *DynType) IsFinalised() bool { return d.layout.finalised }

func (d *DynType) Size() (int, error) { return d.layout.sizeOf(d.Key()) }

func (d *DynType) Alignment() (int, error) { return d.layout.alignOf(d.Key()) }

// MakeDefaultInitialiserList is empty: a fresh dyn refers to nothing.
func (d *DynType) MakeDefaultInitialiserList() (InitialiserList, error) {
	return InitialiserList{}, nil
}

// Initialise clears the header. A dyn cannot be initialised from values
// because it owns no storage.
func (d *DynType) Initialise(mem *Memory, addr Addr, list InitialiserList) error {
	if !d.layout.finalised {
		return errNotFinalised(d.Key())
	}
	if list.Len() != 0 {
		return errArity(d.Key(), 0, list.Len())
	}
	return mem.Zero(addr, dynHeaderSize)
}

// AssignFromSpan points the dyn at dynAddr to the span stored at spanAddr.
// No element is copied; the span storage must outlive the dyn.
func (d *DynType) AssignFromSpan(mem *Memory, dynAddr Addr, span *SpanType, spanAddr Addr) error {
	if !span.Element().SameType(d.elem) {
		return errTypeMismatch(d.Key(), 0, d.elem.String(), span.Element().String())
	}
	n, err := safecast.Conv[int32](span.Count())
	if err != nil {
		return err
	}
	if err := mem.PutInt32(dynAddr.Offset(dynCountOffset), n); err != nil {
		return err
	}
	return mem.PutAddress(dynAddr.Offset(dynDataOffset), spanAddr)
}

// Count reads the element count of the dyn at addr.
func (d *DynType) Count(mem *Memory, addr Addr) (int, error) {
	n, err := mem.Int32(addr.Offset(dynCountOffset))
	return int(n), err
}

// Data reads the element pointer of the dyn at addr.
func (d *DynType) Data(mem *Memory, addr Addr) (Addr, error) {
	return mem.Address(addr.Offset(dynDataOffset))
}

// ElementAddr bounds-checks i against the stored count.
func (d *DynType) ElementAddr(mem *Memory, addr Addr, i int) (Addr, error) {
	stride, err := d.elemStride()
	if err != nil {
		return NullAddr, err
	}
	n, err := d.Count(mem, addr)
	if err != nil {
		return NullAddr, err
	}
	if i < 0 || i >= n {
		return NullAddr, &Error{Kind: ErrOutOfBounds, Type: d.Key(), Index: i, Detail: "index out of range"}
	}
	data, err := d.Data(mem, addr)
	if err != nil {
		return NullAddr, err
	}
	return data.Offset(i * stride), nil
}

// ForEach never descends: the elements are not part of the dyn.
func (d *DynType) ForEach(Visitor, ComplexType, Addr) bool { return false }

// FunctionClass provides operator[], size, begin and assignment from spans
// registered with AssignOverload.
func (d *DynType) FunctionClass() (*FunctionClass, error) {
	return d.functions.get(d.buildFunctionClass)
}

func (d *DynType) buildFunctionClass() (*FunctionClass, error) {
	stride, err := d.elemStride()
	if err != nil {
		return nil, err
	}
	fc := NewFunctionClass(ident.New("dyn"))

	sub := NewFunction(ident.Null, d.elem.WithRef(true), Symbol{ID: ident.New("index"), Type: IntType})
	sub.Native = func(mem *Memory, object Addr, args []Value) (Value, error) {
		a, err := d.ElementAddr(mem, object, args[0].AsInt())
		return Pointer(a), err
	}
	sub.SetInliner(HighLevelInliner(func(hd *HighLevelInlineData) error {
		data := &SubObject{Base: hd.Object, Offset: dynDataOffset, T: PtrType}
		hd.Replacement = &Subscript{Base: data, Index: hd.Args[0], Stride: stride, T: d.elem}
		return nil
	}))
	fc.AddSpecialFunction(SpecialSubscript, sub)

	size := NewFunction(ident.Null, IntType)
	size.Const = true
	size.Native = func(mem *Memory, object Addr, _ []Value) (Value, error) {
		n, err := mem.Int32(object.Offset(dynCountOffset))
		return Int(n), err
	}
	size.SetInliner(HighLevelInliner(func(hd *HighLevelInlineData) error {
		hd.Replacement = &SubObject{Base: hd.Object, Offset: dynCountOffset, T: IntType}
		return nil
	}))
	size.SetInliner(AsmInliner(func(ad *AsmInlineData) error {
		src, err := ad.Object.At(dynCountOffset, IntType)
		if err != nil {
			return err
		}
		return ad.Emitter.EmitMove(ad.Target, src)
	}))
	fc.AddSpecialFunction(SpecialSize, size)

	fc.AddSpecialFunction(SpecialBegin, beginAt(dynDataOffset, nil))
	return fc, nil
}

// AssignOverload registers, once per span type, an operator= that borrows
// the span's storage, and returns it.
func (d *DynType) AssignOverload(span *SpanType) (*FunctionData, error) {
	fc, err := d.FunctionClass()
	if err != nil {
		return nil, err
	}
	if !span.Element().SameType(d.elem) {
		return nil, errTypeMismatch(d.Key(), 0, d.elem.String(), span.Element().String())
	}
	arg := Complex(span).WithRef(true)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.spans[span.Key()] {
		return fc.Match(SpecialAssign.Name(), []TypeInfo{arg})
	}
	count, err := safecast.Conv[int32](span.Count())
	if err != nil {
		return nil, err
	}

	f := NewFunction(ident.Null, VoidType, Symbol{ID: ident.New("other"), Type: arg})
	f.Native = func(mem *Memory, object Addr, args []Value) (Value, error) {
		return Void(), d.AssignFromSpan(mem, object, span, args[0].Addr())
	}
	f.SetInliner(HighLevelInliner(func(hd *HighLevelInlineData) error {
		hd.Replacement = &Sequence{Exprs: []Expr{
			&Assignment{
				Target: &SubObject{Base: hd.Object, Offset: dynCountOffset, T: IntType},
				Value:  &Constant{Value: Int(count)},
			},
			&Assignment{
				Target: &SubObject{Base: hd.Object.Clone(), Offset: dynDataOffset, T: PtrType},
				Value:  &AddressOf{Base: hd.Args[0]},
			},
		}}
		return nil
	}))
	f.SetInliner(AsmInliner(func(ad *AsmInlineData) error {
		countSlot, err := ad.Object.At(dynCountOffset, IntType)
		if err != nil {
			return err
		}
		dataSlot, err := ad.Object.At(dynDataOffset, PtrType)
		if err != nil {
			return err
		}
		if err := ad.Emitter.EmitMove(countSlot, Immediate(Int(count))); err != nil {
			return err
		}
		return ad.Emitter.EmitAddress(dataSlot, ad.Args[0])
	}))
	fc.AddSpecialFunction(SpecialAssign, f)
	d.spans[span.Key()] = true
	return f, nil
}
