package namespace

// SymbolKind classifies what an alias names.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolVariable
	SymbolFunction
	SymbolStruct
	SymbolUsingAlias
	SymbolConstant
	SymbolStaticFunctionClass
	SymbolTemplateType     // type template argument inside a template body
	SymbolTemplateConstant // integer template argument inside a template body
	SymbolTemplatedClass
	SymbolTemplatedFunction
	SymbolPreprocessorConstant
	SymbolEnum
	SymbolEnumValue
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolVariable:
		return "variable"
	case SymbolFunction:
		return "function"
	case SymbolStruct:
		return "struct"
	case SymbolUsingAlias:
		return "using"
	case SymbolConstant:
		return "constant"
	case SymbolStaticFunctionClass:
		return "static_function_class"
	case SymbolTemplateType:
		return "template_type"
	case SymbolTemplateConstant:
		return "template_constant"
	case SymbolTemplatedClass:
		return "templated_class"
	case SymbolTemplatedFunction:
		return "templated_function"
	case SymbolPreprocessorConstant:
		return "preprocessor_constant"
	case SymbolEnum:
		return "enum"
	case SymbolEnumValue:
		return "enum_value"
	default:
		return "invalid"
	}
}

// KindMask restricts queries to specific symbol kinds.
type KindMask uint32

const (
	// KindMaskNone filters out all kinds.
	KindMaskNone KindMask = 0
	// KindMaskAny allows all kinds.
	KindMaskAny KindMask = ^KindMask(0)
)

// Mask converts a symbol kind into a KindMask bit.
func (k SymbolKind) Mask() KindMask {
	return KindMask(1 << uint(k))
}

func (m KindMask) Has(k SymbolKind) bool {
	return m == KindMaskAny || m&k.Mask() != 0
}

// Masks used by the typed queries.
var (
	constantKinds = SymbolConstant.Mask() | SymbolPreprocessorConstant.Mask() | SymbolEnumValue.Mask() | SymbolTemplateConstant.Mask()
	variableKinds = SymbolVariable.Mask() | constantKinds
	typeKinds     = SymbolStruct.Mask() | SymbolUsingAlias.Mask() | SymbolTemplateType.Mask() | SymbolEnum.Mask()
)

// IsConstant reports whether aliases of this kind carry a folded value.
func (k SymbolKind) IsConstant() bool { return constantKinds.Has(k) }

// IsType reports whether aliases of this kind name a type.
func (k SymbolKind) IsType() bool { return typeKinds.Has(k) }
