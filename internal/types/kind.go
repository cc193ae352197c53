package types

import "fmt"

// Kind enumerates the primitive kinds a TypeInfo can carry.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindInteger
	KindFloat
	KindDouble
	KindPointer
	// KindDynamic marks a type left for the type checker to deduce.
	KindDynamic
	// KindComplex marks a TypeInfo backed by a ComplexType.
	KindComplex
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindInteger:
		return "int"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindPointer:
		return "pointer"
	case KindDynamic:
		return "auto"
	case KindComplex:
		return "complex"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsNumeric reports whether values of the kind take part in arithmetic.
func (k Kind) IsNumeric() bool {
	return k == KindInteger || k == KindFloat || k == KindDouble
}

// PointerSize is the byte size of addresses and references on the target.
const PointerSize = 8

// Size is the native byte size of a primitive kind.
func (k Kind) Size() int {
	switch k {
	case KindInteger, KindFloat:
		return 4
	case KindDouble, KindPointer:
		return 8
	default:
		return 0
	}
}

// Alignment equals the size for every primitive; zero-sized kinds align to 1.
func (k Kind) Alignment() int {
	if s := k.Size(); s > 0 {
		return s
	}
	return 1
}

// ParseKind maps a primitive keyword to its Kind. "bool" is stored as an
// integer, the same way the backend treats it.
func ParseKind(name string) (Kind, bool) {
	switch name {
	case "void":
		return KindVoid, true
	case "int", "bool":
		return KindInteger, true
	case "float":
		return KindFloat, true
	case "double":
		return KindDouble, true
	case "pointer":
		return KindPointer, true
	case "auto":
		return KindDynamic, true
	default:
		return KindInvalid, false
	}
}
