package types

import (
	"fmt"
	"strings"
)

// Operand is what the assembly inliners see of a value: a register, a memory
// slot relative to a base register, or an immediate.
type Operand struct {
	Type   TypeInfo
	Base   string // register name; empty for immediates
	Offset int
	Memory bool // Base holds an address and the value lives at Base+Offset
	imm    *Value
}

// Register is a value held in a register.
func Register(name string, t TypeInfo) Operand {
	return Operand{Type: t, Base: name}
}

// MemoryOperand is a value stored at base+offset.
func MemoryOperand(base string, offset int, t TypeInfo) Operand {
	return Operand{Type: t, Base: base, Offset: offset, Memory: true}
}

// Immediate is a constant operand.
func Immediate(v Value) Operand {
	return Operand{Type: Primitive(v.Kind()), imm: &v}
}

// IsImmediate reports whether the operand is a constant.
func (o Operand) IsImmediate() bool { return o.imm != nil }

// ImmediateValue returns the constant of an immediate operand.
func (o Operand) ImmediateValue() (Value, bool) {
	if o.imm == nil {
		return Value{}, false
	}
	return *o.imm, true
}

// At addresses a sub-object delta bytes into a memory operand.
func (o Operand) At(delta int, t TypeInfo) (Operand, error) {
	if o.imm != nil || !o.Memory {
		return Operand{}, &Error{Kind: ErrBadOperand, Type: o.String(), Index: -1, Detail: "operand is not addressable"}
	}
	return Operand{Type: t, Base: o.Base, Offset: o.Offset + delta, Memory: true}, nil
}

func (o Operand) String() string {
	if o.imm != nil {
		return o.imm.String()
	}
	if !o.Memory {
		return o.Base
	}
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(o.Base)
	if o.Offset != 0 {
		fmt.Fprintf(&b, "%+d", o.Offset)
	}
	b.WriteByte(']')
	return b.String()
}

// BinaryOp enumerates the arithmetic the inliners emit.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota + 1
	OpSub
	OpMul
	OpAnd
	OpMod
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpAnd:
		return "&"
	case OpMod:
		return "%"
	default:
		return "?"
	}
}

// AsmEmitter is implemented by the code generator. Assembly inliners drive
// it instead of emitting a call instruction for the inlined function.
type AsmEmitter interface {
	// EmitCall emits a call of fn on object; object carries the byte offset
	// of the callee's storage.
	EmitCall(fn *FunctionData, object Operand, args []Operand) error
	EmitMove(dst, src Operand) error
	EmitBinary(op BinaryOp, dst, src Operand) error
	// EmitAddress loads the address of src into dst.
	EmitAddress(dst, src Operand) error
}
