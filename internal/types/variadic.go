package types

import (
	"errors"
	"strconv"

	"snex/internal/ident"
)

// FanOutMethods are the methods a variadic container forwards to every
// sub-type.
var FanOutMethods = []string{"reset", "prepare", "process", "processSingle"}

// VariadicType is a heterogeneous tuple laid out back to back. Calls to the
// fan-out methods are forwarded to every element.
type VariadicType struct {
	id        ident.ID
	subTypes  []TypeInfo
	offsets   []int
	functions classCache
	layout    layoutState
}

// NewVariadicType creates a tuple named id (tuple when null).
func NewVariadicType(id ident.ID, subTypes []TypeInfo) *VariadicType {
	if id.IsNull() {
		id = ident.New("tuple")
	}
	return &VariadicType{id: id, subTypes: append([]TypeInfo(nil), subTypes...)}
}

func (v *VariadicType) ID() ident.ID { return v.id }

func (v *VariadicType) NumSubTypes() int { return len(v.subTypes) }

func (v *VariadicType) SubType(i int) TypeInfo { return v.subTypes[i] }

func (v *VariadicType) Key() string {
	params := make([]TemplateParameter, len(v.subTypes))
	for i, t := range v.subTypes {
		params[i] = TypeParam(t)
	}
	return TemplateKey(v.id, params)
}

func (v *VariadicType) String() string { return v.Key() }

func (v *VariadicType) Equal(other ComplexType) bool { return sameKey(v, other) }

// FinaliseAlignment places sub-types back to back without padding.
func (v *VariadicType) FinaliseAlignment() error {
	if v.layout.finalised {
		return nil
	}
	if err := v.layout.enter(v.Key()); err != nil {
		return err
	}
	offsets := make([]int, len(v.subTypes))
	size, align := 0, 1
	for i, t := range v.subTypes {
		if err := finaliseType(t); err != nil {
			v.layout.abort()
			return err
		}
		s, err := t.Size()
		if err != nil {
			v.layout.abort()
			return err
		}
		a, err := t.Alignment()
		if err != nil {
			v.layout.abort()
			return err
		}
		offsets[i] = size
		size += s
		align = max(align, a)
	}
	v.offsets = offsets
	v.layout.done(size, align)
	return nil
}

func (v *VariadicType) IsFinalised() bool { return v.layout.finalised }

func (v *VariadicType) Size() (int, error) { return v.layout.sizeOf(v.Key()) }

func (v *VariadicType) Alignment() (int, error) { return v.layout.alignOf(v.Key()) }

// OffsetForSubType is the sum of the sizes of the sub-types before i.
func (v *VariadicType) OffsetForSubType(i int) (int, error) {
	if !v.layout.finalised {
		return 0, errNotFinalised(v.Key())
	}
	if i < 0 || i >= len(v.subTypes) {
		return 0, &Error{Kind: ErrOutOfBounds, Type: v.Key(), Index: i, Detail: "sub-type index " + strconv.Itoa(i) + " out of range"}
	}
	return v.offsets[i], nil
}

func (v *VariadicType) MakeDefaultInitialiserList() (InitialiserList, error) {
	items := make([]InitItem, len(v.subTypes))
	for i, t := range v.subTypes {
		it, err := defaultItem(t)
		if err != nil {
			return InitialiserList{}, err
		}
		items[i] = it
	}
	return InitialiserList{items: items}, nil
}

func (v *VariadicType) Initialise(mem *Memory, addr Addr, list InitialiserList) error {
	if !v.layout.finalised {
		return errNotFinalised(v.Key())
	}
	if list.Len() != len(v.subTypes) {
		return errArity(v.Key(), len(v.subTypes), list.Len())
	}
	for i, t := range v.subTypes {
		if err := initialiseSlot(mem, addr.Offset(v.offsets[i]), t, list.At(i), v.Key(), i); err != nil {
			return err
		}
	}
	return nil
}

func (v *VariadicType) ForEach(visit Visitor, target ComplexType, addr Addr) bool {
	for i, t := range v.subTypes {
		if visitNested(t, visit, target, addr.Offset(v.offsets[i])) {
			return true
		}
	}
	return false
}

// subMethod resolves the overload of method name on sub-type i that
// accepts args.
func (v *VariadicType) subMethod(i int, name string, args []TypeInfo) (*FunctionData, error) {
	missing := &Error{Kind: ErrMissingMethod, Type: v.Key(), Name: name, Got: v.subTypes[i].String(), Index: i}
	ct := v.subTypes[i].ComplexType()
	if ct == nil {
		return nil, missing
	}
	fc, err := ct.FunctionClass()
	if err != nil {
		return nil, err
	}
	if !fc.HasFunction(name) {
		return nil, missing
	}
	m, err := fc.Match(name, args)
	if errors.Is(err, &Error{Kind: ErrMissingMethod}) {
		missing.Detail = "no overload accepts the arguments"
		return nil, missing
	}
	return m, err
}

// fanOutSignatures lists the distinct argument lists of method name over
// all sub-types, in order of appearance.
func (v *VariadicType) fanOutSignatures(name string) [][]Symbol {
	var out [][]Symbol
	seen := make(map[string]bool)
	for _, t := range v.subTypes {
		ct := t.ComplexType()
		if ct == nil {
			continue
		}
		fc, err := ct.FunctionClass()
		if err != nil {
			continue
		}
		for _, m := range fc.PossibleMatches(name) {
			key := ParamsKey(symbolParams(m.Args))
			if !seen[key] {
				seen[key] = true
				out = append(out, m.Args)
			}
		}
	}
	return out
}

func symbolParams(args []Symbol) []TemplateParameter {
	out := make([]TemplateParameter, len(args))
	for i, a := range args {
		out[i] = TypeParam(a.Type)
	}
	return out
}

// fanOut builds one forwarding function of method name per argument list
// found on the sub-types. Each element is called with the overload matching
// that list.
func (v *VariadicType) fanOut(name string) []*FunctionData {
	sigs := v.fanOutSignatures(name)
	if len(sigs) == 0 {
		sigs = [][]Symbol{nil}
	}
	out := make([]*FunctionData, 0, len(sigs))
	for _, sig := range sigs {
		out = append(out, v.fanOutWith(name, sig))
	}
	return out
}

func (v *VariadicType) fanOutWith(name string, sig []Symbol) *FunctionData {
	f := NewFunction(ident.New(name), VoidType, append([]Symbol(nil), sig...)...)
	argTypes := make([]TypeInfo, len(sig))
	for i, a := range sig {
		argTypes[i] = a.Type
	}
	f.SetInliner(AsmInliner(func(d *AsmInlineData) error {
		for i, t := range v.subTypes {
			m, err := v.subMethod(i, name, argTypes)
			if err != nil {
				return err
			}
			obj, err := d.Object.At(v.offsets[i], t)
			if err != nil {
				return err
			}
			if err := d.Emitter.EmitCall(m, obj, d.Args); err != nil {
				return err
			}
		}
		return nil
	}))
	f.SetInliner(HighLevelInliner(func(d *HighLevelInlineData) error {
		seq := &Sequence{Exprs: make([]Expr, 0, len(v.subTypes))}
		for i, t := range v.subTypes {
			m, err := v.subMethod(i, name, argTypes)
			if err != nil {
				return err
			}
			seq.Exprs = append(seq.Exprs, &Call{
				Function: m,
				Object:   &SubObject{Base: d.Object.Clone(), Offset: v.offsets[i], T: t},
				Args:     cloneExprs(d.Args),
			})
		}
		d.Replacement = seq
		return nil
	}))
	return f
}

// get returns a reference to the element selected by its integer template
// argument.
func (v *VariadicType) get() *FunctionData {
	f := NewFunction(ident.New("get"), VoidType.WithRef(true))
	f.TemplateParameters = []TemplateParameter{IntegerArgument(v.id.Child("get").Child("Index"), false)}
	element := func(params []TemplateParameter) (int, TypeInfo, error) {
		if len(params) != 1 || params[0].Kind != ParamConstant || !params[0].ConstantDefined {
			return 0, TypeInfo{}, &Error{Kind: ErrInvalidArgument, Type: v.Key(), Name: "get", Index: -1, Detail: "get needs one integer template argument"}
		}
		i := params[0].Constant
		off, err := v.OffsetForSubType(i)
		if err != nil {
			return 0, TypeInfo{}, err
		}
		return off, v.subTypes[i], nil
	}
	f.SetInliner(AsmInliner(func(d *AsmInlineData) error {
		off, t, err := element(d.TemplateParameters)
		if err != nil {
			return err
		}
		obj, err := d.Object.At(off, t)
		if err != nil {
			return err
		}
		return d.Emitter.EmitAddress(d.Target, obj)
	}))
	f.SetInliner(HighLevelInliner(func(d *HighLevelInlineData) error {
		off, t, err := element(d.TemplateParameters)
		if err != nil {
			return err
		}
		d.Replacement = &SubObject{Base: d.Object, Offset: off, T: t.WithRef(true)}
		return nil
	}))
	return f
}

// FunctionClass provides the fan-out methods, get<N> and size. A fan-out
// method fails when inlined if any sub-type lacks it.
func (v *VariadicType) FunctionClass() (*FunctionClass, error) {
	return v.functions.get(v.buildFunctionClass)
}

func (v *VariadicType) buildFunctionClass() (*FunctionClass, error) {
	if err := v.FinaliseAlignment(); err != nil {
		return nil, err
	}
	fc := NewFunctionClass(v.id)
	for _, name := range FanOutMethods {
		for _, f := range v.fanOut(name) {
			fc.AddFunction(f)
		}
	}
	fc.AddFunction(v.get())
	size, err := constantSize(len(v.subTypes))
	if err != nil {
		return nil, err
	}
	fc.AddSpecialFunction(SpecialSize, size)
	return fc, nil
}
