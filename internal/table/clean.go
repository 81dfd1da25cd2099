package table

import "strings"

// Clean trims surrounding whitespace from every Text cell and drops rows in
// which every cell is empty. Columns and row order are left untouched and
// Clean(Clean(t)) equals Clean(t). The input table is not modified.
func Clean(t *Table) *Table {
	out := &Table{
		ID:      t.ID,
		Caption: t.Caption,
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]Cell, 0, len(t.Rows)),
	}

	for _, row := range t.Rows {
		cleaned := make([]Cell, len(row))
		empty := true
		for i, c := range row {
			if c.Kind == Text {
				c.Raw = strings.TrimSpace(c.Raw)
			}
			if !c.IsEmpty() {
				empty = false
			}
			cleaned[i] = c
		}
		if empty {
			continue
		}
		out.Rows = append(out.Rows, cleaned)
	}

	return out
}

// CleanAll applies Clean to every table in the group, preserving order.
func CleanAll(tables []*Table) []*Table {
	out := make([]*Table, len(tables))
	for i, t := range tables {
		out[i] = Clean(t)
	}
	return out
}
