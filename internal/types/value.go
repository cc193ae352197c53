package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a typed constant: an initialiser element, a folded constant or a
// template argument. The payload is kept as raw bits of the kind's width.
type Value struct {
	kind Kind
	bits uint64
}

func Int(v int32) Value { return Value{kind: KindInteger, bits: uint64(uint32(v))} } //nolint:gosec // bit pattern

func Float(v float32) Value { return Value{kind: KindFloat, bits: uint64(math.Float32bits(v))} }

func Double(v float64) Value { return Value{kind: KindDouble, bits: math.Float64bits(v)} }

func Pointer(a Addr) Value { return Value{kind: KindPointer, bits: uint64(a)} }

func Void() Value { return Value{kind: KindVoid} }

func Bool(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}

// Kind returns the primitive kind of the value.
func (v Value) Kind() Kind { return v.kind }

// IsVoid reports whether the value carries nothing.
func (v Value) IsVoid() bool { return v.kind == KindVoid || v.kind == KindInvalid }

func (v Value) Int() int32 { return int32(uint32(v.bits)) } //nolint:gosec // bit pattern

func (v Value) Float() float32 { return math.Float32frombits(uint32(v.bits)) }

func (v Value) Double() float64 { return math.Float64frombits(v.bits) }

func (v Value) Addr() Addr { return Addr(v.bits) }

// AsInt converts any numeric value to an int, truncating fractions.
func (v Value) AsInt() int {
	switch v.kind {
	case KindInteger:
		return int(v.Int())
	case KindFloat:
		return int(v.Float())
	case KindDouble:
		return int(v.Double())
	case KindPointer:
		return int(v.bits) //nolint:gosec // debug conversion
	default:
		return 0
	}
}

// AsDouble converts any numeric value to float64.
func (v Value) AsDouble() float64 {
	switch v.kind {
	case KindInteger:
		return float64(v.Int())
	case KindFloat:
		return float64(v.Float())
	case KindDouble:
		return v.Double()
	default:
		return 0
	}
}

// Convert returns the value re-expressed in another numeric kind.
func (v Value) Convert(to Kind) (Value, bool) {
	if v.kind == to {
		return v, true
	}
	if !v.kind.IsNumeric() {
		return Value{}, false
	}
	switch to {
	case KindInteger:
		return Int(int32(v.AsInt())), true //nolint:gosec // truncation mirrors a C cast
	case KindFloat:
		return Float(float32(v.AsDouble())), true
	case KindDouble:
		return Double(v.AsDouble()), true
	default:
		return Value{}, false
	}
}

// Store writes the value at addr using its native width.
func (v Value) Store(mem *Memory, addr Addr) error {
	switch v.kind {
	case KindInteger:
		return mem.PutInt32(addr, v.Int())
	case KindFloat:
		return mem.PutFloat32(addr, v.Float())
	case KindDouble:
		return mem.PutFloat64(addr, v.Double())
	case KindPointer:
		return mem.PutAddress(addr, v.Addr())
	default:
		return &Error{Kind: ErrBadOperand, Type: v.kind.String(), Detail: "value has no storage"}
	}
}

// LoadValue reads a value of the given primitive kind from addr.
func LoadValue(mem *Memory, addr Addr, kind Kind) (Value, error) {
	switch kind {
	case KindInteger:
		n, err := mem.Int32(addr)
		return Int(n), err
	case KindFloat:
		f, err := mem.Float32(addr)
		return Float(f), err
	case KindDouble:
		d, err := mem.Float64(addr)
		return Double(d), err
	case KindPointer:
		a, err := mem.Address(addr)
		return Pointer(a), err
	default:
		return Value{}, &Error{Kind: ErrBadOperand, Type: kind.String(), Detail: "kind has no storage"}
	}
}

// ZeroValue is the default value of a primitive kind.
func ZeroValue(kind Kind) Value {
	switch kind {
	case KindInteger:
		return Int(0)
	case KindFloat:
		return Float(0)
	case KindDouble:
		return Double(0)
	case KindPointer:
		return Pointer(NullAddr)
	default:
		return Void()
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.Itoa(int(v.Int()))
	case KindFloat:
		return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32) + "f"
	case KindDouble:
		s := strconv.FormatFloat(v.Double(), 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s
	case KindPointer:
		return fmt.Sprintf("%#x", v.bits)
	default:
		return "void"
	}
}
