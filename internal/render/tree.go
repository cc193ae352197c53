package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"snex/internal/ident"
	"snex/internal/namespace"
)

// Tree writes the symbols of h grouped by namespace, one line per symbol.
func Tree(w io.Writer, h *namespace.Handler, opts namespace.DumpOptions) error {
	r := lipgloss.NewRenderer(w)
	nsStyle := r.NewStyle().Bold(true)
	kindStyle := r.NewStyle().Foreground(lipgloss.Color("5"))
	commentStyle := r.NewStyle().Foreground(lipgloss.Color("8"))

	current := ident.ID{}
	first := true
	for _, tok := range h.TokenList(opts) {
		id := ident.Parse(tok.ID)
		if parent := id.Parent(); first || parent != current {
			current, first = parent, false
			name := parent.String()
			if name == "" {
				name = "::"
			}
			if _, err := fmt.Fprintln(w, nsStyle.Render(name)); err != nil {
				return err
			}
		}
		var b strings.Builder
		b.WriteString("  ")
		b.WriteString(kindStyle.Render(tok.Kind))
		b.WriteByte(' ')
		b.WriteString(tok.Name)
		if tok.Signature != "" {
			b.WriteString(": ")
			b.WriteString(tok.Signature)
		} else if tok.Type != "" {
			b.WriteString(": ")
			b.WriteString(tok.Type)
		}
		if tok.Value != "" {
			b.WriteString(" = ")
			b.WriteString(tok.Value)
		}
		if tok.Description != "" {
			b.WriteString("  ")
			b.WriteString(commentStyle.Render("// " + tok.Description))
		}
		if _, err := fmt.Fprintln(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}
