package table

import (
	"strconv"
	"strings"
)

// Kind identifies what a cell holds
type Kind int

const (
	Missing Kind = iota
	Text
	Number
)

// Cell is a single table value
type Cell struct {
	Kind Kind
	// Raw is the cell text as it appeared in the markup (Text) or the
	// number as written (Number). Empty for Missing cells.
	Raw   string
	Value float64
}

var numberReplacer = strings.NewReplacer(",", "", " ", "")

// NewCell classifies raw cell text. Empty text is Missing, text that reads
// as a number (thousands separators allowed) is Number, anything else is Text.
func NewCell(raw string) Cell {
	if raw == "" {
		return Cell{Kind: Missing}
	}
	trimmed := strings.TrimSpace(raw)
	if looksNumeric(trimmed) {
		if v, err := strconv.ParseFloat(numberReplacer.Replace(trimmed), 64); err == nil {
			return Cell{Kind: Number, Raw: trimmed, Value: v}
		}
	}
	return Cell{Kind: Text, Raw: raw}
}

func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	digits := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits = true
		case strings.ContainsRune("+-.,eE ", r):
		default:
			return false
		}
	}
	return digits
}

// IsEmpty reports whether the cell carries no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == Missing || (c.Kind == Text && c.Raw == "")
}

// String returns the cell as it is written to CSV.
func (c Cell) String() string {
	if c.Kind == Missing {
		return ""
	}
	return c.Raw
}

// Table is a parsed HTML table: a fixed, ordered column set and ordered rows.
// Every row holds exactly len(Columns) cells.
type Table struct {
	ID      string
	Caption string
	Columns []string
	Rows    [][]Cell
}

// New creates an empty table with the given columns. Duplicate column
// names are made unique by suffixing ".1", ".2", ...
func New(columns []string) *Table {
	return &Table{Columns: uniqueColumns(columns)}
}

// AppendRow adds a row, padding it with Missing cells or truncating it to
// the column count. It returns the number of cells dropped by truncation.
func (t *Table) AppendRow(cells []Cell) int {
	row := make([]Cell, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
	if len(cells) > len(row) {
		return len(cells) - len(row)
	}
	return 0
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of a column, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Record returns row i as a column name → cell mapping.
func (t *Table) Record(i int) map[string]Cell {
	rec := make(map[string]Cell, len(t.Columns))
	for j, col := range t.Columns {
		rec[col] = t.Rows[i][j]
	}
	return rec
}

// Name returns a human-readable label for logs: caption, then id.
func (t *Table) Name() string {
	if t.Caption != "" {
		return t.Caption
	}
	return t.ID
}

func uniqueColumns(columns []string) []string {
	out := make([]string, len(columns))
	seen := make(map[string]int, len(columns))
	taken := make(map[string]bool, len(columns))
	for _, c := range columns {
		taken[c] = true
	}
	for i, c := range columns {
		n := seen[c]
		seen[c]++
		if n == 0 {
			out[i] = c
			continue
		}
		name := c + "." + strconv.Itoa(n)
		for taken[name] {
			n++
			name = c + "." + strconv.Itoa(n)
		}
		seen[c] = n + 1
		taken[name] = true
		out[i] = name
	}
	return out
}
