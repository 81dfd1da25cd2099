package storage

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/pfrederiksen/sportsref-scraper/internal/logger"
	"github.com/pfrederiksen/sportsref-scraper/internal/table"
)

const (
	DateLayout = "20060102"

	StandingsPrefix  = "standings"
	StandingsByConf  = "standings_by_conf"
	StandingsFull    = "standings_full"
	standingsAllStem = "standings_all"

	// FileMode is the permission of every file the writer produces
	FileMode os.FileMode = 0644
)

// Writer persists tables as CSV files below a root directory
type Writer struct {
	dataDir string
	out     io.Writer
	metrics *logger.Metrics
}

// GroupResult lists the files written for a standings group
type GroupResult struct {
	Split    []string
	Combined string
}

// Files returns every written path, split files first.
func (r *GroupResult) Files() []string {
	files := append([]string(nil), r.Split...)
	if r.Combined != "" {
		files = append(files, r.Combined)
	}
	return files
}

// New creates a Writer rooted at dataDir, creating dataDir and the standings
// subdirectories. A "Saved: <path>" line is printed to out for every file.
func New(dataDir string, out io.Writer) (*Writer, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	for _, dir := range []string{
		dataDir,
		filepath.Join(dataDir, StandingsByConf),
		filepath.Join(dataDir, StandingsFull),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	if out == nil {
		out = io.Discard
	}

	return &Writer{
		dataDir: dataDir,
		out:     out,
		metrics: logger.DefaultMetrics(),
	}, nil
}

// SetMetrics records file counters on m instead of the default tracker
func (w *Writer) SetMetrics(m *logger.Metrics) {
	w.metrics = m
}

// FileName returns the deterministic name of the index-th (1-based) table of a group.
func FileName(prefix string, index int, date time.Time) string {
	return fmt.Sprintf("%s_%d_%s.csv", prefix, index, date.Format(DateLayout))
}

// WriteTables writes each table to <dataDir>/<prefix>_<i>_<YYYYMMDD>.csv and
// returns the paths in group order. An empty group writes nothing.
func (w *Writer) WriteTables(tables []*table.Table, prefix string, date time.Time) ([]string, error) {
	return w.writeGroup(w.dataDir, tables, prefix, date)
}

// WriteStandingsGroup writes each standings table to the standings_by_conf
// directory and all of them, concatenated, to
// standings_full/standings_all_<YYYYMMDD>.csv.
func (w *Writer) WriteStandingsGroup(tables []*table.Table, date time.Time) (*GroupResult, error) {
	result := &GroupResult{}
	if len(tables) == 0 {
		return result, nil
	}

	split, err := w.writeGroup(filepath.Join(w.dataDir, StandingsByConf), tables, StandingsPrefix, date)
	if err != nil {
		return nil, err
	}
	result.Split = split

	combined := Concat(tables)
	path := filepath.Join(w.dataDir, StandingsFull,
		fmt.Sprintf("%s_%s.csv", standingsAllStem, date.Format(DateLayout)))
	if err := w.writeCSV(path, combined); err != nil {
		return nil, err
	}
	result.Combined = path

	return result, nil
}

func (w *Writer) writeGroup(dir string, tables []*table.Table, prefix string, date time.Time) ([]string, error) {
	paths := make([]string, 0, len(tables))
	for i, t := range tables {
		path := filepath.Join(dir, FileName(prefix, i+1, date))
		if err := w.writeCSV(path, t); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// writeCSV replaces path with the table encoded as CSV.
func (w *Writer) writeCSV(path string, t *table.Table) error {
	data, err := EncodeCSV(t)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	if err := writeFile(path, bytes.NewReader(data)); err != nil {
		return err
	}

	w.metrics.IncrCounter("storage.files_written")
	fmt.Fprintf(w.out, "Saved: %s\n", path)
	logger.Debug("Wrote table", logger.Fields{
		"path":  path,
		"table": t.Name(),
		"rows":  t.Len(),
	})
	return nil
}

// writeFile atomically replaces path with the contents of r. The temporary
// file atomic renames into place is created 0600, so the mode is reset.
func writeFile(path string, r io.Reader) error {
	if err := atomic.WriteFile(path, r); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(path, FileMode); err != nil {
		return fmt.Errorf("setting mode of %s: %w", path, err)
	}
	return nil
}

// EncodeCSV renders the header row followed by one line per table row.
func EncodeCSV(t *table.Table) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write(t.Columns); err != nil {
		return nil, err
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, c := range row {
			record[i] = c.String()
		}
		if err := cw.Write(record); err != nil {
			return nil, err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
