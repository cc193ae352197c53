// Package render prints layouts, namespace trees and diagnostics for
// terminals.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"snex/internal/types"
)

var layoutHeader = []string{"member", "type", "offset", "padding", "size"}

// maxTypeWidth caps the type column; longer names are truncated.
const maxTypeWidth = 48

// Layout writes the finalised layout of t as a table. Structs list their
// members; other types print as a single row.
func Layout(w io.Writer, t types.TypeInfo) error {
	size, err := t.Size()
	if err != nil {
		return err
	}
	align, err := t.Alignment()
	if err != nil {
		return err
	}

	var rows [][]string
	if st, ok := t.ComplexType().(*types.StructType); ok {
		for _, m := range st.Members() {
			msize, err := m.Type.Size()
			if err != nil {
				return err
			}
			rows = append(rows, []string{
				m.Name,
				truncate(m.Type.String(), maxTypeWidth),
				strconv.Itoa(m.Offset),
				strconv.Itoa(m.Padding),
				strconv.Itoa(msize),
			})
		}
	} else {
		rows = append(rows, []string{"-", truncate(t.String(), maxTypeWidth), "0", "0", strconv.Itoa(size)})
	}

	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true)
	head := r.NewStyle().Foreground(lipgloss.Color("6"))
	padded := r.NewStyle().Foreground(lipgloss.Color("3"))

	widths := columnWidths(layoutHeader, rows)
	if _, err := fmt.Fprintln(w, title.Render(t.String())); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, head.Render(formatRow(layoutHeader, widths, nil))); err != nil {
		return err
	}
	for _, row := range rows {
		line := formatRow(row, widths, func(col int, cell string) string {
			if col == 3 && strings.TrimSpace(cell) != "0" {
				return padded.Render(cell)
			}
			return cell
		})
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "size %d, align %d\n", size, align)
	return err
}

func columnWidths(header []string, rows [][]string) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	return widths
}

// formatRow left-aligns the first two columns and right-aligns numbers.
// style, if set, decorates each padded cell.
func formatRow(cells []string, widths []int, style func(col int, cell string) string) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = pad(c, widths[i], i >= 2)
		if style != nil {
			parts[i] = style(i, parts[i])
		}
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

func pad(s string, width int, right bool) string {
	if right {
		return runewidth.FillLeft(s, width)
	}
	return runewidth.FillRight(s, width)
}

func truncate(value string, width int) string {
	if runewidth.StringWidth(value) <= width {
		return value
	}
	return runewidth.Truncate(value, width, "...")
}
