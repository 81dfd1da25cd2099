package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/sportsref-scraper/internal/config"
	"github.com/pfrederiksen/sportsref-scraper/internal/logger"
	"github.com/pfrederiksen/sportsref-scraper/internal/runner"
	"github.com/pfrederiksen/sportsref-scraper/internal/scraper"
	"github.com/pfrederiksen/sportsref-scraper/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

type options struct {
	configFile    string
	outputDir     string
	pollsURL      string
	standingsURL  string
	date          string
	format        string
	workbook      bool
	flatStandings bool
	verbose       bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "sportsref-scraper",
		Short: "Download women's college basketball polls and standings as CSV",
		Long: `Fetches the season polls and conference standings pages from
sports-reference.com, extracts every table (including the ones the site hides
inside HTML comments) and writes them as dated CSV files.

A standings page without tables is reported as a warning; the run still
succeeds. Any other failure exits with status 1.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configFile, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Directory for CSV output (default \"data\")")
	cmd.Flags().StringVar(&opts.pollsURL, "polls-url", "", "Polls page URL")
	cmd.Flags().StringVar(&opts.standingsURL, "standings-url", "", "Standings page URL")
	cmd.Flags().StringVar(&opts.date, "date", "", "Date stamped into file names, YYYYMMDD (default today)")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Summary format: text or json")
	cmd.Flags().BoolVar(&opts.workbook, "workbook", false, "Also write all tables to one XLSX workbook")
	cmd.Flags().BoolVar(&opts.flatStandings, "flat-standings", false, "Write standings like polls, without the by-conference split and combined file")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")

	return cmd
}

// runScrape is the main command logic
func runScrape(cmd *cobra.Command, opts *options) error {
	format := OutputFormat(strings.ToLower(opts.format))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", opts.format)
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	applyFlags(cmd, opts, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))

	now := time.Now
	if opts.date != "" {
		date, err := time.ParseInLocation(storage.DateLayout, opts.date, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --date %q: must be YYYYMMDD", opts.date)
		}
		now = func() time.Time { return date }
	}

	// Keep stdout clean for the JSON summary
	var progress io.Writer = cmd.OutOrStdout()
	if format == FormatJSON {
		progress = cmd.ErrOrStderr()
	}

	fetcher := scraper.New(
		scraper.WithUserAgent(cfg.UserAgent),
		scraper.WithTimeout(cfg.Timeout),
	)

	r, err := runner.New(runner.Config{
		PollsURL:       cfg.PollsURL,
		StandingsURL:   cfg.StandingsURL,
		OutputRoot:     cfg.OutputDir,
		Now:            now,
		GroupStandings: cfg.GroupStandings,
		Workbook:       cfg.Workbook,
	}, fetcher, progress, nil)
	if err != nil {
		return err
	}

	summary, err := r.Run()
	if err != nil {
		return err
	}

	return WriteOutput(cmd.OutOrStdout(), NewOutputResult(summary), format)
}

// applyFlags overrides cfg with every flag given on the command line
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.OutputDir = opts.outputDir
	}
	if flags.Changed("polls-url") {
		cfg.PollsURL = opts.pollsURL
	}
	if flags.Changed("standings-url") {
		cfg.StandingsURL = opts.standingsURL
	}
	if flags.Changed("workbook") {
		cfg.Workbook = opts.workbook
	}
	if flags.Changed("flat-standings") {
		cfg.GroupStandings = !opts.flatStandings
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}
}

// Execute runs the CLI
func Execute() {
	os.Exit(run(NewRootCmd()))
}

// run executes cmd and maps its outcome to an exit code
func run(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		logger.Error("Run failed", logger.Fields{"command": cmd.Name()}, err)
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}
