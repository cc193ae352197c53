package types

import "strings"

// InitItem is one element of an initialiser list: either a constant value or
// a nested list for a complex member.
type InitItem struct {
	value Value
	list  *InitialiserList
}

// Item wraps a constant.
func Item(v Value) InitItem { return InitItem{value: v} }

// Nested wraps a sub-list.
func Nested(l InitialiserList) InitItem { return InitItem{list: &l} }

func (it InitItem) IsList() bool { return it.list != nil }

func (it InitItem) Value() (Value, bool) {
	if it.list != nil {
		return Value{}, false
	}
	return it.value, true
}

func (it InitItem) List() (InitialiserList, bool) {
	if it.list == nil {
		return InitialiserList{}, false
	}
	return *it.list, true
}

func (it InitItem) String() string {
	if it.list != nil {
		return it.list.String()
	}
	return it.value.String()
}

// InitialiserList is the brace-enclosed list used to initialise storage.
type InitialiserList struct {
	items []InitItem
}

// NewInitialiserList builds a list from items.
func NewInitialiserList(items ...InitItem) InitialiserList {
	return InitialiserList{items: append([]InitItem(nil), items...)}
}

// Values builds a flat list of constants.
func Values(vs ...Value) InitialiserList {
	items := make([]InitItem, len(vs))
	for i, v := range vs {
		items[i] = Item(v)
	}
	return InitialiserList{items: items}
}

func (l InitialiserList) Len() int { return len(l.items) }

func (l InitialiserList) At(i int) InitItem { return l.items[i] }

// Items returns a copy of the elements.
func (l InitialiserList) Items() []InitItem { return append([]InitItem(nil), l.items...) }

// Append returns a new list with extra elements.
func (l InitialiserList) Append(items ...InitItem) InitialiserList {
	out := make([]InitItem, 0, len(l.items)+len(items))
	out = append(out, l.items...)
	return InitialiserList{items: append(out, items...)}
}

func (l InitialiserList) String() string {
	parts := make([]string, len(l.items))
	for i, it := range l.items {
		parts[i] = it.String()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// initialiseSlot writes one initialiser element into a slot of type t. owner
// and index only feed error messages.
func initialiseSlot(mem *Memory, addr Addr, t TypeInfo, item InitItem, owner string, index int) error {
	if ct := t.ComplexType(); ct != nil && !t.IsRef() {
		l, ok := item.List()
		if !ok {
			v, _ := item.Value()
			l = Values(v)
		}
		return ct.Initialise(mem, addr, l)
	}
	v, ok := item.Value()
	if !ok {
		return errTypeMismatch(owner, index, t.String(), "initialiser list")
	}
	if t.IsRef() {
		if v.Kind() != KindPointer {
			return errTypeMismatch(owner, index, t.String(), v.Kind().String())
		}
		return v.Store(mem, addr)
	}
	if v.Kind() != t.Kind() {
		return errTypeMismatch(owner, index, t.String(), v.Kind().String())
	}
	return v.Store(mem, addr)
}

// defaultItem is the default initialiser element for a slot of type t.
func defaultItem(t TypeInfo) (InitItem, error) {
	if ct := t.ComplexType(); ct != nil && !t.IsRef() {
		l, err := ct.MakeDefaultInitialiserList()
		if err != nil {
			return InitItem{}, err
		}
		return Nested(l), nil
	}
	if t.IsRef() {
		return Item(Pointer(NullAddr)), nil
	}
	return Item(ZeroValue(t.Kind())), nil
}
