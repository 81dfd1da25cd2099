package storage

import (
	"github.com/pfrederiksen/sportsref-scraper/internal/logger"
	"github.com/pfrederiksen/sportsref-scraper/internal/table"
)

// Concat stacks the rows of tables in group order.
//
// Columns are the union of all column sets: the first table's columns in
// their order, then any new column in the order it is first seen. Cells a
// table has no column for are Missing. A table whose columns differ from the
// first table's is logged as a warning.
func Concat(tables []*table.Table) *table.Table {
	if len(tables) == 0 {
		return table.New(nil)
	}

	var columns []string
	seen := make(map[string]bool)
	for _, t := range tables {
		for _, c := range t.Columns {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
	}

	out := table.New(columns)
	out.ID = StandingsPrefix

	for i, t := range tables {
		if i > 0 && !sameColumns(tables[0].Columns, t.Columns) {
			logger.Warn("Concatenating table with different columns", logger.Fields{
				"table":    t.Name(),
				"index":    i + 1,
				"columns":  t.Columns,
				"expected": tables[0].Columns,
			})
		}

		positions := make([]int, len(t.Columns))
		for j, c := range t.Columns {
			positions[j] = out.ColumnIndex(c)
		}

		for _, row := range t.Rows {
			cells := make([]table.Cell, len(columns))
			for j, c := range row {
				cells[positions[j]] = c
			}
			out.AppendRow(cells)
		}
	}

	return out
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
