package namespace

import (
	"snex/internal/ident"
	"snex/internal/types"
)

// Alias is one entry of a namespace: a variable, function, type, constant or
// template argument.
type Alias struct {
	ID         ident.ID
	Type       types.TypeInfo
	Visibility types.Visibility
	Kind       SymbolKind
	// Constant holds the folded value of constant kinds.
	Constant *types.Value
	Internal bool
	Comment  string
}

func (a *Alias) String() string {
	s := a.Kind.String() + " " + a.ID.String()
	if a.Type.IsValid() {
		s += ": " + a.Type.String()
	}
	if a.Constant != nil {
		s += " = " + a.Constant.String()
	}
	return s
}

// Namespace owns the aliases declared directly inside it.
type Namespace struct {
	id       ident.ID
	parent   *Namespace
	children []*Namespace
	used     []*Namespace
	aliases  []*Alias
	index    map[ident.ID]*Alias
	internal bool
	// functions is set for static function class namespaces.
	functions *types.FunctionClass
}

func newNamespace(id ident.ID, parent *Namespace) *Namespace {
	ns := &Namespace{id: id, parent: parent, index: make(map[ident.ID]*Alias)}
	if parent != nil {
		ns.internal = parent.internal
		parent.children = append(parent.children, ns)
	}
	return ns
}

func (n *Namespace) ID() ident.ID { return n.id }

// Parent is nil for the root.
func (n *Namespace) Parent() *Namespace { return n.parent }

func (n *Namespace) Children() []*Namespace { return append([]*Namespace(nil), n.children...) }

// Used lists the namespaces searched by unqualified lookups in n.
func (n *Namespace) Used() []*Namespace { return append([]*Namespace(nil), n.used...) }

// Aliases returns the entries in declaration order.
func (n *Namespace) Aliases() []*Alias { return append([]*Alias(nil), n.aliases...) }

func (n *Namespace) IsInternal() bool { return n.internal }

func (n *Namespace) FunctionClass() *types.FunctionClass { return n.functions }

func (n *Namespace) lookup(id ident.ID) (*Alias, bool) {
	a, ok := n.index[id]
	return a, ok
}

func (n *Namespace) add(a *Alias) {
	n.aliases = append(n.aliases, a)
	n.index[a.ID] = a
}

func (n *Namespace) remove(id ident.ID) bool {
	if _, ok := n.index[id]; !ok {
		return false
	}
	delete(n.index, id)
	for i, a := range n.aliases {
		if a.ID == id {
			n.aliases = append(n.aliases[:i], n.aliases[i+1:]...)
			break
		}
	}
	return true
}

func (n *Namespace) uses(other *Namespace) bool {
	for _, u := range n.used {
		if u == other {
			return true
		}
	}
	return false
}
