package types

import "sync"

// ComplexType is the shared descriptor of an aggregate type. A descriptor is
// built once, finalised once, and then read by every user of the type.
type ComplexType interface {
	// Key is the structural identity of the descriptor. Two descriptors with
	// the same key describe the same type; the Registry interns on it.
	Key() string
	String() string
	Equal(other ComplexType) bool

	// FinaliseAlignment computes size and alignment bottom-up. It is
	// idempotent.
	FinaliseAlignment() error
	IsFinalised() bool
	Size() (int, error)
	Alignment() (int, error)

	MakeDefaultInitialiserList() (InitialiserList, error)
	Initialise(mem *Memory, addr Addr, list InitialiserList) error

	// ForEach walks nested storage depth-first and calls visit for every
	// nested descriptor equal to target. It stops and returns true as soon as
	// visit does.
	ForEach(visit Visitor, target ComplexType, addr Addr) bool

	// FunctionClass lists the operators and methods usable on values.
	FunctionClass() (*FunctionClass, error)
}

// Visitor receives a nested descriptor and the address of its storage.
type Visitor func(t ComplexType, addr Addr) bool

// classCache holds a lazily built function class. Descriptors are shared
// between sessions, so the class is built once under the lock.
type classCache struct {
	mu        sync.Mutex
	functions *FunctionClass
}

func (c *classCache) get(build func() (*FunctionClass, error)) (*FunctionClass, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.functions != nil {
		return c.functions, nil
	}
	fc, err := build()
	if err != nil {
		return nil, err
	}
	c.functions = fc
	return fc, nil
}

// layoutState caches the finalised layout of a descriptor.
type layoutState struct {
	finalised  bool
	finalising bool
	size       int
	align      int
}

func (l *layoutState) sizeOf(name string) (int, error) {
	if !l.finalised {
		return 0, errNotFinalised(name)
	}
	return l.size, nil
}

func (l *layoutState) alignOf(name string) (int, error) {
	if !l.finalised {
		return 0, errNotFinalised(name)
	}
	return l.align, nil
}

// enter guards against value types that contain themselves.
func (l *layoutState) enter(name string) error {
	if l.finalising {
		return &Error{Kind: ErrRecursiveType, Type: name, Index: -1}
	}
	l.finalising = true
	return nil
}

func (l *layoutState) done(size, align int) {
	l.finalising = false
	l.finalised = true
	l.size = size
	l.align = max(align, 1)
}

func (l *layoutState) abort() { l.finalising = false }

func sameKey(a, b ComplexType) bool {
	return a != nil && b != nil && a.Key() == b.Key()
}

// finaliseType finalises the descriptor behind t, if any.
func finaliseType(t TypeInfo) error {
	if ct := t.ComplexType(); ct != nil && !t.IsRef() {
		return ct.FinaliseAlignment()
	}
	return nil
}

// visitNested applies the ForEach contract to one nested slot.
func visitNested(t TypeInfo, visit Visitor, target ComplexType, addr Addr) bool {
	ct := t.ComplexType()
	if ct == nil || t.IsRef() {
		return false
	}
	if ct.Equal(target) && visit(ct, addr) {
		return true
	}
	return ct.ForEach(visit, target, addr)
}
