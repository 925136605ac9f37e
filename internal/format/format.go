// Package format renders tabular audit output for terminals and Markdown.
package format

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode controls the output format.
type Mode int

const (
	ASCII    Mode = iota // box-drawn terminal tables
	Markdown             // pipe tables for report files
)

// Table collects rows and renders them once in the Mode chosen at creation.
// String cells are flattened to one line, so evidence quotes with line
// breaks keep one table row each.
type Table struct {
	w    table.Writer
	mode Mode
}

// NewTable returns a Table with the given header.
func NewTable(m Mode, header ...string) *Table {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	if len(header) > 0 {
		w.AppendHeader(cells(header))
	}
	return &Table{w: w, mode: m}
}

// Row appends one row.
func (t *Table) Row(vals ...any) {
	t.w.AppendRow(cells(vals))
}

// Footer sets the totals row.
func (t *Table) Footer(vals ...any) {
	t.w.AppendFooter(cells(vals))
}

// AlignRight right-aligns the given 1-based columns, for counts.
func (t *Table) AlignRight(cols ...int) {
	cfgs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		cfgs[i] = table.ColumnConfig{Number: c, Align: text.AlignRight, AlignFooter: text.AlignRight}
	}
	t.w.SetColumnConfigs(cfgs)
}

func (t *Table) String() string {
	if t.mode == Markdown {
		return t.w.RenderMarkdown()
	}
	return t.w.Render()
}

// Pairs renders a two-column table of label and status rows, the shape of
// every findings and summary block in a review report.
func Pairs(m Mode, left, right string, rows [][2]string) string {
	t := NewTable(m, left, right)
	for _, r := range rows {
		t.Row(r[0], r[1])
	}
	return t.String()
}

func cells[T any](vals []T) table.Row {
	row := make(table.Row, len(vals))
	for i, v := range vals {
		if s, ok := any(v).(string); ok && strings.ContainsAny(s, "\r\n\t") {
			row[i] = Cell(s)
			continue
		}
		row[i] = v
	}
	return row
}
