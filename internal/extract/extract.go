package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pfrederiksen/sportsref-scraper/internal/logger"
	"github.com/pfrederiksen/sportsref-scraper/internal/table"
)

// ErrNoTablesFound is returned when a page has no parseable table, neither in
// its markup nor inside any HTML comment.
var ErrNoTablesFound = errors.New("no tables found")

// Source records where the returned tables came from
type Source string

const (
	SourceNone     Source = "none"
	SourceDirect   Source = "direct"
	SourceComments Source = "comments"
)

// Stats describes a single extraction
type Stats struct {
	Source Source
	Tables int
	// CommentsScanned counts comments that contained a <table tag.
	CommentsScanned int
	// CommentsSkipped counts scanned comments that yielded no table.
	CommentsSkipped int
	// RowsTruncated counts body rows that had more cells than their header
	// and lost the extra ones.
	RowsTruncated int
}

// Extractor pulls tables out of HTML
type Extractor struct {
	metrics *logger.Metrics
}

// New creates an Extractor that records its counters on metrics.
// A nil metrics uses the default tracker.
func New(metrics *logger.Metrics) *Extractor {
	if metrics == nil {
		metrics = logger.DefaultMetrics()
	}
	return &Extractor{metrics: metrics}
}

// Extract returns the cleaned tables found in markup, in document order.
func (e *Extractor) Extract(markup string) ([]*table.Table, error) {
	tables, _, err := e.ExtractWithStats(markup)
	return tables, err
}

// ExtractWithStats is Extract that also reports how the tables were found.
//
// Tables present in the markup are returned as-is. Only when there are none
// are HTML comments searched: each comment mentioning <table is parsed on its
// own and whatever tables it holds are collected. Comments that yield nothing
// are skipped. ErrNoTablesFound is returned when both passes come up empty.
func (e *Extractor) ExtractWithStats(markup string) ([]*table.Table, Stats, error) {
	stats := Stats{Source: SourceNone}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, stats, fmt.Errorf("parsing HTML: %w", err)
	}

	tables, truncated := parseTables(doc.Selection)
	if len(tables) > 0 {
		stats.RowsTruncated = truncated
		stats.Source = SourceDirect
	} else {
		for i, text := range comments(doc.Nodes) {
			if !strings.Contains(strings.ToLower(text), "<table") {
				continue
			}
			stats.CommentsScanned++

			found, truncated, err := parseFragment(text)
			if err != nil || len(found) == 0 {
				stats.CommentsSkipped++
				e.metrics.IncrCounter("extract.comments_skipped")
				logger.Debug("Skipped comment without parseable table", logger.Fields{
					"comment": i,
					"error":   errString(err),
				})
				continue
			}
			tables = append(tables, found...)
			stats.RowsTruncated += truncated
		}
		if len(tables) > 0 {
			stats.Source = SourceComments
		}
	}

	if len(tables) == 0 {
		return nil, stats, fmt.Errorf("%w: no <table> in markup and none in %d candidate comments",
			ErrNoTablesFound, stats.CommentsScanned)
	}

	stats.Tables = len(tables)
	e.metrics.AddCounter("extract.tables", int64(len(tables)))
	if stats.RowsTruncated > 0 {
		e.metrics.AddCounter("extract.rows_truncated", int64(stats.RowsTruncated))
		logger.Debug("Truncated rows wider than their header", logger.Fields{
			"rows": stats.RowsTruncated,
		})
	}
	logger.Debug("Extracted tables", logger.Fields{
		"source":           string(stats.Source),
		"tables":           stats.Tables,
		"comments_scanned": stats.CommentsScanned,
		"comments_skipped": stats.CommentsSkipped,
		"rows_truncated":   stats.RowsTruncated,
	})

	return table.CleanAll(tables), stats, nil
}

// parseFragment parses the text of a single comment as HTML.
func parseFragment(text string) ([]*table.Table, int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, 0, err
	}
	tables, truncated := parseTables(doc.Selection)
	return tables, truncated, nil
}

// comments returns the text of every comment node below roots, in document order.
func comments(roots []*html.Node) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.CommentNode {
			out = append(out, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return out
}

func errString(err error) string {
	if err == nil {
		return "no table rows"
	}
	return err.Error()
}
