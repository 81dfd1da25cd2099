package runner

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/sportsref-scraper/internal/extract"
	"github.com/pfrederiksen/sportsref-scraper/internal/logger"
	"github.com/pfrederiksen/sportsref-scraper/internal/storage"
	"github.com/pfrederiksen/sportsref-scraper/internal/table"
)

const PollsPrefix = "polls"

// Fetcher downloads a page
type Fetcher interface {
	Fetch(url string) (string, error)
}

// Config is what a run needs to know
type Config struct {
	PollsURL     string
	StandingsURL string
	OutputRoot   string
	// Now supplies the date stamped into file names. Defaults to time.Now.
	Now func() time.Time
	// GroupStandings writes standings to standings_by_conf/ plus a combined
	// file; otherwise they are written like polls with prefix "standings".
	GroupStandings bool
	// Workbook additionally exports every table to one XLSX file.
	Workbook bool
}

// Summary reports what a run produced
type Summary struct {
	Date             time.Time
	PollsFiles       []string
	PollsStats       extract.Stats
	StandingsFiles   []string
	StandingsStats   extract.Stats
	StandingsSkipped bool
	WorkbookFile     string
}

// Files returns every file written, in write order
func (s *Summary) Files() []string {
	files := append([]string(nil), s.PollsFiles...)
	files = append(files, s.StandingsFiles...)
	if s.WorkbookFile != "" {
		files = append(files, s.WorkbookFile)
	}
	return files
}

// Runner executes the polls and standings pipelines
type Runner struct {
	cfg       Config
	fetcher   Fetcher
	extractor *extract.Extractor
	writer    *storage.Writer
	metrics   *logger.Metrics
}

// New prepares a run: output directories are created here, once.
// Progress lines ("Saved: ...") are written to out.
func New(cfg Config, fetcher Fetcher, out io.Writer, metrics *logger.Metrics) (*Runner, error) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if metrics == nil {
		metrics = logger.DefaultMetrics()
	}

	writer, err := storage.New(cfg.OutputRoot, out)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	writer.SetMetrics(metrics)

	return &Runner{
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: extract.New(metrics),
		writer:    writer,
		metrics:   metrics,
	}, nil
}

// Run fetches, extracts and writes polls, then standings.
//
// Standings pages without any table are reported as a warning and the run
// still succeeds; every other failure, and any polls failure, is returned.
func (r *Runner) Run() (*Summary, error) {
	start := time.Now()
	summary := &Summary{Date: r.cfg.Now()}

	logger.Info("Fetching polls data", logger.Fields{"url": r.cfg.PollsURL})
	polls, stats, err := r.tables(r.cfg.PollsURL)
	if err != nil {
		return summary, fmt.Errorf("polls: %w", err)
	}
	summary.PollsStats = stats
	r.metrics.SetGauge(tablesGauge(PollsPrefix), float64(len(polls)))

	summary.PollsFiles, err = r.writer.WriteTables(polls, PollsPrefix, summary.Date)
	if err != nil {
		return summary, fmt.Errorf("polls: %w", err)
	}

	logger.Info("Fetching standings data", logger.Fields{"url": r.cfg.StandingsURL})
	standings, stats, err := r.tables(r.cfg.StandingsURL)
	summary.StandingsStats = stats
	r.metrics.SetGauge(tablesGauge(storage.StandingsPrefix), float64(len(standings)))
	switch {
	case errors.Is(err, extract.ErrNoTablesFound):
		summary.StandingsSkipped = true
		logger.Warn("Could not parse standings tables", logger.Fields{
			"url":              r.cfg.StandingsURL,
			"comments_scanned": stats.CommentsScanned,
			"comments_skipped": stats.CommentsSkipped,
			"reason":           err.Error(),
		})
	case err != nil:
		return summary, fmt.Errorf("standings: %w", err)
	default:
		if summary.StandingsFiles, err = r.writeStandings(standings, summary.Date); err != nil {
			return summary, fmt.Errorf("standings: %w", err)
		}
	}

	if r.cfg.Workbook {
		groups := map[string][]*table.Table{
			PollsPrefix:             polls,
			storage.StandingsPrefix: standings,
		}
		summary.WorkbookFile, err = r.writer.WriteWorkbook(groups, summary.Date)
		if err != nil {
			return summary, fmt.Errorf("workbook: %w", err)
		}
	}

	r.metrics.RecordTiming("run.duration", time.Since(start))
	logger.Info("Run complete", logger.Fields{
		"files":             len(summary.Files()),
		"standings_skipped": summary.StandingsSkipped,
	})
	logger.Debug("Run metrics", logger.Fields(r.metrics.GetSnapshot()))

	return summary, nil
}

// tablesGauge names the gauge holding the table count of one pipeline
func tablesGauge(prefix string) string {
	return "extract.tables." + prefix
}

func (r *Runner) tables(url string) ([]*table.Table, extract.Stats, error) {
	markup, err := r.fetcher.Fetch(url)
	if err != nil {
		return nil, extract.Stats{}, err
	}

	tables, stats, err := r.extractor.ExtractWithStats(markup)
	if err != nil {
		return nil, stats, err
	}

	logger.Info("Extracted tables", logger.Fields{
		"url":    url,
		"tables": len(tables),
		"source": string(stats.Source),
	})
	return tables, stats, nil
}

func (r *Runner) writeStandings(tables []*table.Table, date time.Time) ([]string, error) {
	if !r.cfg.GroupStandings {
		return r.writer.WriteTables(tables, storage.StandingsPrefix, date)
	}
	result, err := r.writer.WriteStandingsGroup(tables, date)
	if err != nil {
		return nil, err
	}
	return result.Files(), nil
}
