package diag

import (
	"strings"
)

// FormatShort renders one line per diagnostic ("error LAY1002 file:Subject
// message"), notes on their own lines. Multi-line messages are folded.
func FormatShort(diags []Diagnostic, includeNotes bool) string {
	var b strings.Builder
	for _, d := range diags {
		writeShort(&b, strings.ToLower(d.Severity.String()), d.Code, d.Primary, d.Message)
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			writeShort(&b, "note", d.Code, n.Loc, n.Msg)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func writeShort(b *strings.Builder, sev string, code Code, loc Location, msg string) {
	b.WriteString(sev)
	b.WriteByte(' ')
	b.WriteString(code.ID())
	if !loc.IsZero() {
		b.WriteByte(' ')
		b.WriteString(loc.String())
	}
	b.WriteByte(' ')
	b.WriteString(strings.Join(strings.Fields(msg), " "))
	b.WriteByte('\n')
}
