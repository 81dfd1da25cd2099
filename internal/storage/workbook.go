package storage

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pfrederiksen/sportsref-scraper/internal/table"
)

// WorkbookName returns the file name of the run's XLSX export.
func WorkbookName(date time.Time) string {
	return fmt.Sprintf("sportsref_%s.xlsx", date.Format(DateLayout))
}

// WriteWorkbook writes every table of every group to one XLSX file, one sheet
// per table named <prefix>_<i>. Groups are written in prefix order. Number
// cells are stored as numbers. Returns "" when there is nothing to write.
func (w *Writer) WriteWorkbook(groups map[string][]*table.Table, date time.Time) (string, error) {
	prefixes := make([]string, 0, len(groups))
	for prefix, tables := range groups {
		if len(tables) > 0 {
			prefixes = append(prefixes, prefix)
		}
	}
	if len(prefixes) == 0 {
		return "", nil
	}
	sort.Strings(prefixes)

	f := excelize.NewFile()
	defer f.Close()

	first := true
	for _, prefix := range prefixes {
		for i, t := range groups[prefix] {
			sheet := fmt.Sprintf("%s_%d", prefix, i+1)
			if first {
				if err := f.SetSheetName("Sheet1", sheet); err != nil {
					return "", fmt.Errorf("naming sheet %s: %w", sheet, err)
				}
				first = false
			} else if _, err := f.NewSheet(sheet); err != nil {
				return "", fmt.Errorf("creating sheet %s: %w", sheet, err)
			}
			if err := writeSheet(f, sheet, t); err != nil {
				return "", fmt.Errorf("writing sheet %s: %w", sheet, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return "", fmt.Errorf("encoding workbook: %w", err)
	}

	path := filepath.Join(w.dataDir, WorkbookName(date))
	if err := writeFile(path, &buf); err != nil {
		return "", err
	}

	w.metrics.IncrCounter("storage.files_written")
	fmt.Fprintf(w.out, "Saved: %s\n", path)
	return path, nil
}

func writeSheet(f *excelize.File, sheet string, t *table.Table) error {
	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for r, row := range t.Rows {
		values := make([]interface{}, len(row))
		for i, c := range row {
			switch c.Kind {
			case table.Number:
				values[i] = c.Value
			case table.Text:
				values[i] = c.Raw
			default:
				values[i] = nil
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}
