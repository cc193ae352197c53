package types

import (
	"sync"

	"snex/internal/ident"
)

// SpecialFunction names the operators a descriptor can provide.
type SpecialFunction uint8

const (
	SpecialSubscript SpecialFunction = iota + 1
	SpecialAssign
	SpecialCast
	SpecialSize
	SpecialBegin
	SpecialConstructor
	SpecialDestructor
)

// Name is the member name the operator is registered under.
func (s SpecialFunction) Name() string {
	switch s {
	case SpecialSubscript:
		return "operator[]"
	case SpecialAssign:
		return "operator="
	case SpecialCast:
		return "type_cast"
	case SpecialSize:
		return "size"
	case SpecialBegin:
		return "begin"
	case SpecialConstructor:
		return "constructor"
	case SpecialDestructor:
		return "destructor"
	default:
		return "unknown"
	}
}

// FunctionClass is the set of functions callable on values of a type, or
// the functions of a static library namespace. It is safe for concurrent
// use; overloads may be added to a class that other sessions already read.
type FunctionClass struct {
	id        ident.ID
	mu        sync.RWMutex
	functions []*FunctionData
	children  []*FunctionClass
}

func NewFunctionClass(id ident.ID) *FunctionClass {
	return &FunctionClass{id: id}
}

func (c *FunctionClass) ID() ident.ID { return c.id }

// AddFunction adds f as a member. A bare name is qualified with the class id.
func (c *FunctionClass) AddFunction(f *FunctionData) {
	if f.ID.Parent() != c.id {
		f.ID = c.id.Child(f.ID.Name())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.functions = append(c.functions, f)
}

// AddSpecialFunction registers f as operator s.
func (c *FunctionClass) AddSpecialFunction(s SpecialFunction, f *FunctionData) {
	f.ID = c.id.Child(s.Name())
	c.mu.Lock()
	defer c.mu.Unlock()
	c.functions = append(c.functions, f)
}

// Special returns all overloads of operator s.
func (c *FunctionClass) Special(s SpecialFunction) []*FunctionData {
	return c.PossibleMatches(s.Name())
}

// Functions returns the members in registration order.
func (c *FunctionClass) Functions() []*FunctionData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*FunctionData(nil), c.functions...)
}

// AddChildClass nests another class, e.g. Math::Simd under Math.
func (c *FunctionClass) AddChildClass(child *FunctionClass) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.children = append(c.children, child)
}

func (c *FunctionClass) Children() []*FunctionClass {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*FunctionClass(nil), c.children...)
}

// HasFunction reports whether any overload named name exists.
func (c *FunctionClass) HasFunction(name string) bool {
	return len(c.PossibleMatches(name)) > 0
}

// PossibleMatches returns every overload named name. A qualified name
// searches the child class it names.
func (c *FunctionClass) PossibleMatches(name string) []*FunctionData {
	id := ident.Parse(name)
	c.mu.RLock()
	defer c.mu.RUnlock()
	if id.Depth() > 1 {
		for _, child := range c.children {
			if child.id == c.id.Join(id.Parent()) || child.id == id.Parent() {
				return child.PossibleMatches(id.Name())
			}
		}
		return nil
	}
	var out []*FunctionData
	for _, f := range c.functions {
		if f.ID.Name() == name {
			out = append(out, f)
		}
	}
	return out
}

// NonOverloaded returns the single function named name.
func (c *FunctionClass) NonOverloaded(name string) (*FunctionData, error) {
	matches := c.PossibleMatches(name)
	switch len(matches) {
	case 0:
		return nil, &Error{Kind: ErrMissingMethod, Type: c.id.String(), Name: name, Index: -1}
	case 1:
		return matches[0], nil
	default:
		return nil, &Error{Kind: ErrAmbiguousFunction, Type: c.id.String(), Name: name, Index: -1}
	}
}

// Match picks the overload of name accepting args. Exact matches win over
// matches that need default arguments.
func (c *FunctionClass) Match(name string, args []TypeInfo) (*FunctionData, error) {
	matches := c.PossibleMatches(name)
	if len(matches) == 0 {
		return nil, &Error{Kind: ErrMissingMethod, Type: c.id.String(), Name: name, Index: -1}
	}
	if f, err := c.pick(name, matches, func(f *FunctionData) bool { return f.MatchesArgumentTypes(args) }); f != nil || err != nil {
		return f, err
	}
	if f, err := c.pick(name, matches, func(f *FunctionData) bool { return f.MatchesArgumentTypesWithDefaults(args) }); f != nil || err != nil {
		return f, err
	}
	return nil, &Error{Kind: ErrMissingMethod, Type: c.id.String(), Name: name, Index: -1, Detail: "no overload accepts the arguments"}
}

func (c *FunctionClass) pick(name string, candidates []*FunctionData, ok func(*FunctionData) bool) (*FunctionData, error) {
	var found *FunctionData
	for _, f := range candidates {
		if !ok(f) {
			continue
		}
		if found != nil {
			return nil, &Error{Kind: ErrAmbiguousFunction, Type: c.id.String(), Name: name, Index: -1}
		}
		found = f
	}
	return found, nil
}

// FunctionSymbols lists the qualified ids of all members, children included.
func (c *FunctionClass) FunctionSymbols() []ident.ID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[ident.ID]struct{}, len(c.functions))
	var out []ident.ID
	for _, f := range c.functions {
		if _, dup := seen[f.ID]; dup {
			continue
		}
		seen[f.ID] = struct{}{}
		out = append(out, f.ID)
	}
	for _, child := range c.children {
		out = append(out, child.FunctionSymbols()...)
	}
	return out
}
