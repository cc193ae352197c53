package templates

import (
	"snex/internal/ident"
	"snex/internal/types"
)

// Builtin template ids.
var (
	SpanID  = ident.New("span")
	DynID   = ident.New("dyn")
	WrapID  = ident.New("wrap")
	TupleID = ident.New("tuple")
)

// RegisterBuiltins declares span<T,N>, dyn<T>, wrap<N> and tuple<Ts...> as
// internal symbols of the root namespace.
func RegisterBuiltins(e *Engine) error {
	leave := e.handler.EnterInternal()
	defer leave()

	builtins := []TemplateObject{
		{
			ID: SpanID,
			Params: []types.TemplateParameter{
				types.TypeArgument(SpanID.Child("T"), false),
				types.IntegerArgument(SpanID.Child("N"), false),
			},
			Description: "fixed-size array without runtime header",
			MakeClass: func(d ConstructData) (types.ComplexType, error) {
				elem, err := d.ExpectType(0)
				if err != nil {
					return nil, err
				}
				n, err := d.ExpectPositive(1)
				if err != nil {
					return nil, err
				}
				return types.NewSpanType(elem, n)
			},
		},
		{
			ID:          DynID,
			Params:      []types.TemplateParameter{types.TypeArgument(DynID.Child("T"), false)},
			Description: "non-owning view over contiguous elements",
			MakeClass: func(d ConstructData) (types.ComplexType, error) {
				elem, err := d.ExpectType(0)
				if err != nil {
					return nil, err
				}
				return types.NewDynType(elem)
			},
		},
		{
			ID:          WrapID,
			Params:      []types.TemplateParameter{types.IntegerArgument(WrapID.Child("N"), false)},
			Description: "integer index wrapping modulo N",
			MakeClass: func(d ConstructData) (types.ComplexType, error) {
				n, err := d.ExpectPositive(0)
				if err != nil {
					return nil, err
				}
				return types.NewWrapType(n)
			},
		},
		{
			ID:          TupleID,
			Params:      []types.TemplateParameter{types.TypeArgument(TupleID.Child("Ts"), true)},
			Description: "heterogeneous container forwarding calls to every element",
			MakeClass: func(d ConstructData) (types.ComplexType, error) {
				subs, err := d.Types(0)
				if err != nil {
					return nil, err
				}
				return types.NewVariadicType(TupleID, subs), nil
			},
		},
	}
	for _, b := range builtins {
		if _, err := e.AddTemplateClass(b); err != nil {
			return err
		}
	}
	return nil
}
