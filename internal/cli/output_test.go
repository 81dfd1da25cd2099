package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/sportsref-scraper/internal/extract"
	"github.com/pfrederiksen/sportsref-scraper/internal/runner"
)

func TestNewOutputResult(t *testing.T) {
	summary := &runner.Summary{
		Date:           time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC),
		PollsFiles:     []string{"data/polls_1_20260102.csv"},
		PollsStats:     extract.Stats{Source: extract.SourceDirect, Tables: 1},
		StandingsFiles: []string{"a.csv", "b.csv", "all.csv"},
		StandingsStats: extract.Stats{Source: extract.SourceComments, Tables: 2, CommentsScanned: 3, CommentsSkipped: 1},
	}

	result := NewOutputResult(summary)

	if result.Date != "20260102" {
		t.Errorf("Date = %q, want 20260102", result.Date)
	}
	if result.FileCount != 4 {
		t.Errorf("FileCount = %d, want 4", result.FileCount)
	}
	if result.StandingsSource != "comments" {
		t.Errorf("StandingsSource = %q, want comments", result.StandingsSource)
	}
	if result.CommentsSkipped != 1 {
		t.Errorf("CommentsSkipped = %d, want 1", result.CommentsSkipped)
	}
}

func TestWriteOutput(t *testing.T) {
	tests := []struct {
		name     string
		result   *OutputResult
		format   OutputFormat
		contains []string
		excludes []string
		wantErr  bool
	}{
		{
			name: "text with standings",
			result: &OutputResult{
				Date:           "20260102",
				PollsFiles:     []string{"p1"},
				StandingsFiles: []string{"s1", "s2", "all"},
				FileCount:      4,
			},
			format:   FormatText,
			contains: []string{"Polls: 1 file(s)", "Standings: 3 file(s)", "Total: 4 file(s) for 20260102"},
			excludes: []string{"WARNING"},
		},
		{
			name: "text with skipped standings",
			result: &OutputResult{
				Date:             "20260102",
				PollsFiles:       []string{"p1"},
				StandingsSkipped: true,
				FileCount:        1,
			},
			format:   FormatText,
			contains: []string{"WARNING: could not parse standings tables", "Total: 1 file(s)"},
			excludes: []string{"Standings:"},
		},
		{
			name:     "text with workbook",
			result:   &OutputResult{Date: "20260102", WorkbookFile: "data/sportsref_20260102.xlsx", FileCount: 1},
			format:   FormatText,
			contains: []string{"Workbook: data/sportsref_20260102.xlsx"},
		},
		{
			name:     "json",
			result:   &OutputResult{Date: "20260102", PollsFiles: []string{}, StandingsFiles: []string{}},
			format:   FormatJSON,
			contains: []string{`"date": "20260102"`, `"standings_skipped": false`},
			excludes: []string{"workbook_file"},
		},
		{
			name:    "unknown format",
			result:  &OutputResult{},
			format:  OutputFormat("xml"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := WriteOutput(&buf, tt.result, tt.format)

			if tt.wantErr {
				if err == nil {
					t.Fatal("WriteOutput() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("WriteOutput() error: %v", err)
			}

			out := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(out, unwanted) {
					t.Errorf("output should not contain %q:\n%s", unwanted, out)
				}
			}
			if tt.format == FormatJSON && !json.Valid(buf.Bytes()) {
				t.Errorf("output is not valid JSON: %s", out)
			}
		})
	}
}
