package namespace

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"snex/internal/ident"
	"snex/internal/types"
)

// DumpOptions controls Dump and TokenList.
type DumpOptions struct {
	// Internal includes builtin and glue symbols.
	Internal bool
}

// Dump pretty-prints the namespace tree.
func (h *Handler) Dump(w io.Writer, opts DumpOptions) error {
	return dumpNamespace(w, h.root, 0, opts)
}

func dumpNamespace(w io.Writer, ns *Namespace, depth int, opts DumpOptions) error {
	if ns.internal && !opts.Internal {
		return nil
	}
	indent := strings.Repeat("  ", depth)
	inner := indent
	if ns.parent != nil {
		if _, err := fmt.Fprintf(w, "%snamespace %s {\n", indent, ns.id.Name()); err != nil {
			return err
		}
		inner += "  "
	}
	for _, u := range ns.used {
		if _, err := fmt.Fprintf(w, "%susing namespace %s;\n", inner, u.id); err != nil {
			return err
		}
	}
	for _, a := range ns.aliases {
		if a.Internal && !opts.Internal {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", inner, dumpLine(a)); err != nil {
			return err
		}
	}
	for _, child := range ns.children {
		if err := dumpNamespace(w, child, depth+boolInt(ns.parent != nil), opts); err != nil {
			return err
		}
	}
	if ns.parent != nil {
		if _, err := fmt.Fprintf(w, "%s}\n", indent); err != nil {
			return err
		}
	}
	return nil
}

func dumpLine(a *Alias) string {
	var b strings.Builder
	if a.Visibility != types.Public {
		b.WriteString(a.Visibility.String())
		b.WriteByte(' ')
	}
	b.WriteString(a.Kind.String())
	b.WriteByte(' ')
	b.WriteString(a.ID.Name())
	if a.Type.IsValid() {
		b.WriteString(": ")
		b.WriteString(a.Type.String())
	}
	if a.Constant != nil {
		b.WriteString(" = ")
		b.WriteString(a.Constant.String())
	}
	if a.Comment != "" {
		b.WriteString(" // ")
		b.WriteString(a.Comment)
	}
	return b.String()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Token is one autocomplete entry.
type Token struct {
	ID          string `msgpack:"id"`
	Name        string `msgpack:"name"`
	Kind        string `msgpack:"kind"`
	Type        string `msgpack:"type,omitempty"`
	Signature   string `msgpack:"sig,omitempty"`
	Value       string `msgpack:"value,omitempty"`
	Description string `msgpack:"desc,omitempty"`
	Internal    bool   `msgpack:"internal,omitempty"`
}

// TokenList extracts every symbol as an autocomplete token, sorted by id.
// Functions of static function classes carry their signature.
func (h *Handler) TokenList(opts DumpOptions) []Token {
	var out []Token
	ids := make([]ident.ID, 0, len(h.namespaces))
	for id := range h.namespaces {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b ident.ID) int { return strings.Compare(a.String(), b.String()) })
	for _, id := range ids {
		ns := h.namespaces[id]
		for _, a := range ns.aliases {
			if (a.Internal || ns.internal) && !opts.Internal {
				continue
			}
			tok := Token{
				ID:          a.ID.String(),
				Name:        a.ID.Name(),
				Kind:        a.Kind.String(),
				Description: a.Comment,
				Internal:    a.Internal || ns.internal,
			}
			if a.Type.IsValid() {
				tok.Type = a.Type.String()
			}
			if a.Constant != nil {
				tok.Value = a.Constant.String()
			}
			if a.Kind == SymbolFunction && ns.functions != nil {
				if f, err := ns.functions.NonOverloaded(a.ID.Name()); err == nil {
					tok.Signature = f.Signature()
				}
			}
			out = append(out, tok)
		}
	}
	slices.SortStableFunc(out, func(a, b Token) int { return strings.Compare(a.ID, b.ID) })
	return out
}
