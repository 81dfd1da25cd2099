package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/sportsref-scraper/internal/table"
)

// maxColspan bounds colspan so a bogus attribute can't blow up a row
const maxColspan = 1000

// Row classes sports-reference uses for header rows repeated inside <tbody>
var repeatedHeaderClasses = []string{"thead", "over_header"}

// parseTables converts every <table> under sel into a table.Table.
// Tables without a single <tr> are not tables and are left out.
// The second result counts body rows wider than their table's header.
func parseTables(sel *goquery.Selection) ([]*table.Table, int) {
	tables := make([]*table.Table, 0)
	truncated := 0
	sel.Find("table").Each(func(_ int, t *goquery.Selection) {
		if tbl, n := parseTable(t); tbl != nil {
			tables = append(tables, tbl)
			truncated += n
		}
	})
	return tables, truncated
}

func parseTable(t *goquery.Selection) (*table.Table, int) {
	head := t.ChildrenFiltered("thead").ChildrenFiltered("tr")
	body := t.ChildrenFiltered("tbody, tfoot").ChildrenFiltered("tr")
	if head.Length() == 0 && body.Length() == 0 {
		return nil, 0
	}

	var columns []string
	var rows []*goquery.Selection

	switch {
	case head.Length() > 0:
		// The last header row is the most specific one; rows above it
		// group columns ("over_header").
		columns = headerNames(head.Last())
		rows = selections(body)
	case isHeaderRow(body.First()):
		columns = headerNames(body.First())
		rows = selections(body.Slice(1, body.Length()))
	default:
		rows = selections(body)
		width := 0
		for _, r := range rows {
			if n := len(rowCells(r)); n > width {
				width = n
			}
		}
		columns = make([]string, width)
		for i := range columns {
			columns[i] = strconv.Itoa(i)
		}
	}

	tbl := table.New(columns)
	tbl.ID = t.AttrOr("id", "")
	tbl.Caption = collapse(t.ChildrenFiltered("caption").First().Text())

	truncated := 0
	for _, r := range rows {
		if isRepeatedHeader(r) {
			continue
		}
		if tbl.AppendRow(rowCells(r)) > 0 {
			truncated++
		}
	}

	return tbl, truncated
}

func selections(s *goquery.Selection) []*goquery.Selection {
	out := make([]*goquery.Selection, 0, s.Length())
	s.Each(func(_ int, r *goquery.Selection) {
		out = append(out, r)
	})
	return out
}

// isHeaderRow reports whether every cell in the row is a <th>.
func isHeaderRow(r *goquery.Selection) bool {
	cells := r.ChildrenFiltered("th, td")
	return cells.Length() > 0 && cells.Length() == r.ChildrenFiltered("th").Length()
}

func isRepeatedHeader(r *goquery.Selection) bool {
	for _, class := range repeatedHeaderClasses {
		if r.HasClass(class) {
			return true
		}
	}
	return false
}

// headerNames expands colspans and names blank header cells
// "Unnamed: <position>".
func headerNames(r *goquery.Selection) []string {
	names := make([]string, 0)
	r.ChildrenFiltered("th, td").Each(func(_ int, c *goquery.Selection) {
		name := collapse(c.Text())
		for i := 0; i < colspan(c); i++ {
			if name == "" {
				names = append(names, fmt.Sprintf("Unnamed: %d", len(names)))
				continue
			}
			names = append(names, name)
		}
	})
	return names
}

func rowCells(r *goquery.Selection) []table.Cell {
	cells := make([]table.Cell, 0)
	r.ChildrenFiltered("th, td").Each(func(_ int, c *goquery.Selection) {
		cell := table.NewCell(c.Text())
		for i := 0; i < colspan(c); i++ {
			cells = append(cells, cell)
		}
	})
	return cells
}

func colspan(c *goquery.Selection) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.AttrOr("colspan", "1")))
	if err != nil || n < 1 {
		return 1
	}
	if n > maxColspan {
		return maxColspan
	}
	return n
}

// collapse trims s and folds internal whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
