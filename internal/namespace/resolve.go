package namespace

import (
	"go.uber.org/zap"

	"snex/internal/ident"
	"snex/internal/types"
)

// Resolve maps id, as written at the cursor, to the fully qualified id of
// the symbol it refers to.
//
// Lookup order: the current namespace verbatim; for unqualified ids the
// enclosing namespaces outward; then the namespace named by the qualifier
// together with the namespaces it uses. Zero matches is an error unless
// allowZeroMatch is set, in which case ident.Null is returned.
func (h *Handler) Resolve(id ident.ID, allowZeroMatch bool) (ident.ID, error) {
	cur := h.current
	if _, ok := cur.lookup(id); ok {
		return id, nil
	}

	parent, name := id.Parent(), id.Name()
	var matches []ident.ID
	if parent.IsNull() || parent == cur.id {
		for ns := cur; ns != nil; ns = ns.parent {
			if cand := ns.id.Child(name); hasAlias(ns, cand) {
				return cand, nil
			}
		}
		// Fall back to the used namespaces of the innermost level that
		// provides a match.
		for ns := cur; ns != nil && len(matches) == 0; ns = ns.parent {
			matches = searchUsed(ns, name)
		}
	} else {
		target, err := h.locate(parent)
		if err != nil {
			return ident.Null, err
		}
		if target != nil {
			if cand := target.id.Child(name); hasAlias(target, cand) {
				matches = append(matches, cand)
			}
			matches = append(matches, searchUsed(target, name)...)
		}
	}

	matches = dedup(matches)
	switch len(matches) {
	case 0:
		if allowZeroMatch {
			return ident.Null, nil
		}
		return ident.Null, &ResolveError{Kind: ResolveUnresolved, ID: id, Scope: cur.id}
	case 1:
		return matches[0], nil
	default:
		h.log.Debug("ambiguous symbol", zap.Stringer("id", id), zap.Int("candidates", len(matches)))
		return ident.Null, &ResolveError{Kind: ResolveAmbiguous, ID: id, Scope: cur.id, Candidates: matches}
	}
}

// locate finds the namespace a qualifier names: by identity, then relative
// to the cursor and its ancestors, then through a type symbol that stands
// for a struct (template type arguments, using aliases, structs).
func (h *Handler) locate(qualifier ident.ID) (*Namespace, error) {
	if ns, ok := h.namespaces[qualifier]; ok {
		return ns, nil
	}
	for ns := h.current; ns != nil; ns = ns.parent {
		if found, ok := h.namespaces[ns.id.Join(qualifier)]; ok {
			return found, nil
		}
	}
	symbol, err := h.Resolve(qualifier, true)
	if err != nil || symbol.IsNull() {
		return nil, err
	}
	a, _ := h.Alias(symbol)
	if ns, ok := h.namespaces[symbol]; ok {
		return ns, nil
	}
	if a != nil && a.Kind.IsType() {
		if owner, ok := a.Type.ComplexType().(interface{ ID() ident.ID }); ok {
			if ns, ok := h.namespaces[owner.ID()]; ok {
				return ns, nil
			}
		}
	}
	return nil, &ResolveError{Kind: ResolveNotNamespace, ID: symbol, Scope: h.current.id}
}

func hasAlias(ns *Namespace, id ident.ID) bool {
	_, ok := ns.lookup(id)
	return ok
}

func searchUsed(ns *Namespace, name string) []ident.ID {
	var out []ident.ID
	for _, u := range ns.used {
		if cand := u.id.Child(name); hasAlias(u, cand) {
			out = append(out, cand)
		}
	}
	return out
}

func dedup(ids []ident.ID) []ident.ID {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[ident.ID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// CheckVisibility reports whether the fully qualified id may be accessed
// from the cursor: public symbols always, others only from the declaring
// namespace or its descendants.
func (h *Handler) CheckVisibility(id ident.ID) error {
	a, err := h.mustAlias(id)
	if err != nil {
		return err
	}
	if a.Visibility == types.Public {
		return nil
	}
	if id.Parent().IsSameOrParentOf(h.current.id) {
		return nil
	}
	return &ResolveError{Kind: ResolveNotVisible, ID: id, Scope: h.current.id, Detail: a.Visibility.String() + " symbol"}
}

// lookupAs resolves id and checks the symbol kind.
func (h *Handler) lookupAs(id ident.ID, mask KindMask) (*Alias, error) {
	full, err := h.Resolve(id, false)
	if err != nil {
		return nil, err
	}
	a, err := h.mustAlias(full)
	if err != nil {
		return nil, err
	}
	if !mask.Has(a.Kind) {
		return nil, &ResolveError{Kind: ResolveKindMismatch, ID: full, Scope: h.current.id, Detail: "found " + a.Kind.String()}
	}
	return a, nil
}

// VariableType is the type of the variable or constant id.
func (h *Handler) VariableType(id ident.ID) (types.TypeInfo, error) {
	a, err := h.lookupAs(id, variableKinds)
	if err != nil {
		return types.TypeInfo{}, err
	}
	return a.Type, nil
}

// AliasType is the type named by the type symbol id.
func (h *Handler) AliasType(id ident.ID) (types.TypeInfo, error) {
	a, err := h.lookupAs(id, typeKinds)
	if err != nil {
		return types.TypeInfo{}, err
	}
	return a.Type, nil
}

// ComplexType is the descriptor named by the type symbol id.
func (h *Handler) ComplexType(id ident.ID) (types.ComplexType, error) {
	t, err := h.AliasType(id)
	if err != nil {
		return nil, err
	}
	if t.ComplexType() == nil {
		full, _ := h.Resolve(id, true)
		return nil, &ResolveError{Kind: ResolveKindMismatch, ID: full, Scope: h.current.id, Detail: "not a complex type"}
	}
	return t.ComplexType(), nil
}
