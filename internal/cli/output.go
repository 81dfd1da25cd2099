package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pfrederiksen/sportsref-scraper/internal/runner"
	"github.com/pfrederiksen/sportsref-scraper/internal/storage"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult summarizes a run
type OutputResult struct {
	Date             string   `json:"date"`
	PollsFiles       []string `json:"polls_files"`
	PollsSource      string   `json:"polls_source"`
	StandingsFiles   []string `json:"standings_files"`
	StandingsSource  string   `json:"standings_source"`
	StandingsSkipped bool     `json:"standings_skipped"`
	CommentsSkipped  int      `json:"comments_skipped"`
	WorkbookFile     string   `json:"workbook_file,omitempty"`
	FileCount        int      `json:"file_count"`
}

// NewOutputResult converts a run summary for output
func NewOutputResult(s *runner.Summary) *OutputResult {
	return &OutputResult{
		Date:             s.Date.Format(storage.DateLayout),
		PollsFiles:       nonNil(s.PollsFiles),
		PollsSource:      string(s.PollsStats.Source),
		StandingsFiles:   nonNil(s.StandingsFiles),
		StandingsSource:  string(s.StandingsStats.Source),
		StandingsSkipped: s.StandingsSkipped,
		CommentsSkipped:  s.PollsStats.CommentsSkipped + s.StandingsStats.CommentsSkipped,
		WorkbookFile:     s.WorkbookFile,
		FileCount:        len(s.Files()),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult) error {
	if result.StandingsSkipped {
		fmt.Fprintln(w, "WARNING: could not parse standings tables; standings were not written.")
	}

	fmt.Fprintf(w, "\nPolls: %d file(s)\n", len(result.PollsFiles))
	if !result.StandingsSkipped {
		fmt.Fprintf(w, "Standings: %d file(s)\n", len(result.StandingsFiles))
	}
	if result.WorkbookFile != "" {
		fmt.Fprintf(w, "Workbook: %s\n", result.WorkbookFile)
	}
	fmt.Fprintf(w, "Total: %d file(s) for %s\n", result.FileCount, result.Date)
	return nil
}
