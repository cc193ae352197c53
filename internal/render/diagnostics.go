package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"snex/internal/diag"
)

// Diagnostics writes items one per line as "file:subject: severity CODE:
// message", followed by their notes. colour forces ANSI colours on or off
// regardless of the terminal.
func Diagnostics(w io.Writer, items []diag.Diagnostic, colour bool) error {
	palette := map[diag.Severity]*color.Color{
		diag.SevError:   color.New(color.FgRed, color.Bold),
		diag.SevWarning: color.New(color.FgYellow, color.Bold),
		diag.SevInfo:    color.New(color.FgCyan),
	}
	loc := color.New(color.Bold)
	note := color.New(color.FgBlue)
	for _, c := range []*color.Color{palette[diag.SevError], palette[diag.SevWarning], palette[diag.SevInfo], loc, note} {
		if colour {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	for _, d := range items {
		sev := palette[d.Severity]
		if sev == nil {
			sev = palette[diag.SevInfo]
		}
		if _, err := fmt.Fprintf(w, "%s %s: %s\n",
			loc.Sprint(d.Primary.String()+":"),
			sev.Sprintf("%s %s", strings.ToLower(d.Severity.String()), d.Code.ID()),
			d.Message); err != nil {
			return err
		}
		for _, n := range d.Notes {
			where := ""
			if !n.Loc.IsZero() {
				where = n.Loc.String() + ": "
			}
			if _, err := fmt.Fprintf(w, "  %s %s%s\n", note.Sprint("note:"), where, n.Msg); err != nil {
				return err
			}
		}
	}
	return nil
}

// Summary writes "N error(s), M warning(s)" for bag, or nothing when it is
// empty.
func Summary(w io.Writer, bag *diag.Bag) error {
	if bag.Len() == 0 {
		return nil
	}
	var errs, warns int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	msg := fmt.Sprintf("%d error(s), %d warning(s)", errs, warns)
	if dropped := bag.Dropped(); dropped > 0 {
		msg += fmt.Sprintf(", %d more not shown", dropped)
	}
	_, err := fmt.Fprintln(w, msg)
	return err
}
