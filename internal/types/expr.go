package types

import (
	"fmt"
	"strings"

	"snex/internal/ident"
)

// Expr is the slice of the syntax tree the high-level inliners read and
// produce. The parser's own node types implement it at the boundary; the
// node types below are what inliners splice in place of a call.
type Expr interface {
	Type() TypeInfo
	Clone() Expr
	String() string
}

// SymbolRef reads a named variable.
type SymbolRef struct {
	ID ident.ID
	T  TypeInfo
}

func (e *SymbolRef) Type() TypeInfo { return e.T }
func (e *SymbolRef) Clone() Expr    { c := *e; return &c }
func (e *SymbolRef) String() string { return e.ID.String() }

// Constant is an immediate value.
type Constant struct {
	Value Value
}

func (e *Constant) Type() TypeInfo { return Primitive(e.Value.Kind()) }
func (e *Constant) Clone() Expr    { c := *e; return &c }
func (e *Constant) String() string { return e.Value.String() }

// Call invokes Function on Object (nil for free functions).
type Call struct {
	Function *FunctionData
	Object   Expr
	Args     []Expr
}

func (e *Call) Type() TypeInfo {
	if e.Function == nil {
		return TypeInfo{}
	}
	return e.Function.ReturnType
}

func (e *Call) Clone() Expr {
	c := &Call{Function: e.Function, Args: cloneExprs(e.Args)}
	if e.Object != nil {
		c.Object = e.Object.Clone()
	}
	return c
}

func (e *Call) String() string {
	name := "<nil>"
	if e.Function != nil {
		name = e.Function.ID.Name()
	}
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	if e.Object != nil {
		return fmt.Sprintf("%s.%s(%s)", e.Object, name, strings.Join(args, ", "))
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
}

// SubObject addresses the storage Offset bytes into Base as type T.
type SubObject struct {
	Base   Expr
	Offset int
	T      TypeInfo
}

func (e *SubObject) Type() TypeInfo { return e.T }
func (e *SubObject) Clone() Expr {
	return &SubObject{Base: e.Base.Clone(), Offset: e.Offset, T: e.T}
}
func (e *SubObject) String() string { return fmt.Sprintf("%s@%d", e.Base, e.Offset) }

// Subscript reads element Index of Base with the given element stride.
type Subscript struct {
	Base   Expr
	Index  Expr
	Stride int
	T      TypeInfo
}

func (e *Subscript) Type() TypeInfo { return e.T }
func (e *Subscript) Clone() Expr {
	return &Subscript{Base: e.Base.Clone(), Index: e.Index.Clone(), Stride: e.Stride, T: e.T}
}
func (e *Subscript) String() string { return fmt.Sprintf("%s[%s]", e.Base, e.Index) }

// Assignment stores Value into Target.
type Assignment struct {
	Target Expr
	Value  Expr
}

func (e *Assignment) Type() TypeInfo { return e.Target.Type() }
func (e *Assignment) Clone() Expr {
	return &Assignment{Target: e.Target.Clone(), Value: e.Value.Clone()}
}
func (e *Assignment) String() string { return fmt.Sprintf("%s = %s", e.Target, e.Value) }

// Binary applies Op to two operands.
type Binary struct {
	Op          BinaryOp
	Left, Right Expr
}

func (e *Binary) Type() TypeInfo { return e.Left.Type() }
func (e *Binary) Clone() Expr {
	return &Binary{Op: e.Op, Left: e.Left.Clone(), Right: e.Right.Clone()}
}
func (e *Binary) String() string { return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right) }

// AddressOf yields a pointer to Base.
type AddressOf struct {
	Base Expr
}

func (e *AddressOf) Type() TypeInfo { return PtrType }
func (e *AddressOf) Clone() Expr    { return &AddressOf{Base: e.Base.Clone()} }
func (e *AddressOf) String() string { return "&" + e.Base.String() }

// Cast reinterprets Value as T.
type Cast struct {
	Value Expr
	T     TypeInfo
}

func (e *Cast) Type() TypeInfo { return e.T }
func (e *Cast) Clone() Expr    { return &Cast{Value: e.Value.Clone(), T: e.T} }
func (e *Cast) String() string { return fmt.Sprintf("(%s)%s", e.T, e.Value) }

// Sequence evaluates Exprs in order; its type is the type of the last one.
type Sequence struct {
	Exprs []Expr
}

func (e *Sequence) Type() TypeInfo {
	if len(e.Exprs) == 0 {
		return VoidType
	}
	return e.Exprs[len(e.Exprs)-1].Type()
}
func (e *Sequence) Clone() Expr { return &Sequence{Exprs: cloneExprs(e.Exprs)} }
func (e *Sequence) String() string {
	parts := make([]string, len(e.Exprs))
	for i, x := range e.Exprs {
		parts[i] = x.String()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

func cloneExprs(in []Expr) []Expr {
	if in == nil {
		return nil
	}
	out := make([]Expr, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}

// Walk visits e and its children depth-first until fn returns false.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch n := e.(type) {
	case *Call:
		Walk(n.Object, fn)
		for _, a := range n.Args {
			Walk(a, fn)
		}
	case *SubObject:
		Walk(n.Base, fn)
	case *Subscript:
		Walk(n.Base, fn)
		Walk(n.Index, fn)
	case *Assignment:
		Walk(n.Target, fn)
		Walk(n.Value, fn)
	case *Binary:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *AddressOf:
		Walk(n.Base, fn)
	case *Cast:
		Walk(n.Value, fn)
	case *Sequence:
		for _, x := range n.Exprs {
			Walk(x, fn)
		}
	}
}
