package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/classroom-emails/internal/config"
	"github.com/pfrederiksen/classroom-emails/internal/logger"
	"github.com/pfrederiksen/classroom-emails/internal/roster"
	"github.com/pfrederiksen/classroom-emails/internal/scraper"
	"github.com/pfrederiksen/classroom-emails/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig   string
	flagFormat   string
	flagDryRun   bool
	flagVerbose  bool
	flagSelector string
	flagXLSX     string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classroom-emails",
		Short: "Build a classmates email list from classroom rosters",
		Long: `A CLI tool that scrapes student names and registration numbers from
classroom People pages and generates first.reg@domain email addresses.
Entries already present in the output file are kept as they are; only new
registration numbers are appended.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", config.DefaultPath, "Path to the YAML config file")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "Do not write the output file")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newScrapeCmd(), newGenerateCmd(), newExportCmd())
	return cmd
}

func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Scrape the configured classrooms in a browser and update the output file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSource(cmd, func(cfg *config.Config) scraper.Source {
				return scraper.NewBrowserSource(cfg.Classrooms, cfg.Browser)
			})
		},
	}
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate FILE...",
		Short: "Generate emails from saved People pages (.html) or text files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithSource(cmd, func(cfg *config.Config) scraper.Source {
				selector := cfg.Browser.Selector
				if flagSelector != "" {
					selector = flagSelector
				}
				return scraper.NewFileSource(args, selector)
			})
		},
	}
	cmd.Flags().StringVar(&flagSelector, "selector", "", "CSS selector for roster entries in HTML files (default from config)")
	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the output file to an Excel workbook",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}
	cmd.Flags().StringVar(&flagXLSX, "xlsx", "", "Workbook path (default output.xlsx from config)")
	return cmd
}

// setup loads the config and points the default logger at it.
func setup() (*config.Config, func() error, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	level := logger.ParseLevel(cfg.Log.Level)
	if flagVerbose {
		level = logger.LevelDebug
	}
	closeLog, err := logger.Setup(level, cfg.Log.File)
	if err != nil {
		return nil, nil, err
	}
	return cfg, closeLog, nil
}

func runWithSource(cmd *cobra.Command, newSource func(*config.Config) scraper.Source) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	cfg, closeLog, err := setup()
	if err != nil {
		return err
	}
	defer closeLog()

	logger.Info("Starting roster email generation", logger.Fields{
		"config":  flagConfig,
		"output":  cfg.Output.CSV,
		"dry_run": flagDryRun,
	})

	result, err := Run(cmd.Context(), cfg, newSource(cfg), flagDryRun)
	if err != nil {
		logger.Error("Run failed", nil, err)
		return err
	}

	if err := WriteOutput(cmd.OutOrStdout(), result, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	logger.Info("Roster email generation completed", nil)
	return nil
}

// Run loads the existing output, collects lines from src, transforms them and
// (unless dryRun) writes the merged records back. Any read or write failure
// of the output file aborts the run before anything is written. Counters
// and timings recorded by src during the run land in the run summary.
func Run(ctx context.Context, cfg *config.Config, src scraper.Source, dryRun bool) (*OutputResult, error) {
	metrics := logger.DefaultMetrics()
	metrics.Reset()

	store, err := storage.New(cfg.Output.CSV)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	rows, found, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading existing records: %w", err)
	}
	existing := roster.LoadExisting(rows)
	if found {
		logger.Info("Loaded existing entries", logger.Fields{"path": store.Path(), "entries": existing.Len()})
		warnMalformedKeys(existing)
	} else {
		logger.Info("No existing output found, starting fresh", logger.Fields{"path": store.Path()})
	}

	lines, err := src.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting roster entries: %w", err)
	}
	logger.AddCounter("lines.seen", int64(len(lines)))

	res := roster.Transform(lines, existing, cfg.EmailDomain)
	logOutcomes(res.Outcomes, existing)
	logger.Info("Generated new entries", logger.Fields{
		"new":   len(res.New),
		"total": len(res.Records),
	})

	if !dryRun {
		if err := store.Save(res.Records); err != nil {
			return nil, fmt.Errorf("saving records: %w", err)
		}
		logger.Info("Wrote output file", logger.Fields{"path": store.Path(), "rows": len(res.Records)})

		if cfg.Output.XLSX != "" {
			if err := storage.ExportXLSX(res.Records, cfg.Output.XLSX); err != nil {
				return nil, fmt.Errorf("exporting workbook: %w", err)
			}
			logger.Info("Wrote workbook", logger.Fields{"path": cfg.Output.XLSX})
		}
	}

	logger.Info("Run summary", metrics.Fields())

	return &OutputResult{
		CheckedAt:    time.Now().UTC(),
		OutputPath:   store.Path(),
		DryRun:       dryRun,
		Lines:        len(lines),
		Existing:     existing.Len(),
		Generated:    res.Count(roster.KindGenerated),
		NoMatch:      res.Count(roster.KindNoMatch),
		MissingField: res.Count(roster.KindMissingField),
		Duplicates:   res.Count(roster.KindDuplicate),
		Total:        len(res.Records),
		NewRecords:   res.New,
	}, nil
}

// warnMalformedKeys flags existing rows whose Name does not end in a
// registration number. They are kept, but no scraped line can ever match
// them.
func warnMalformedKeys(existing *roster.Existing) {
	for _, reg := range existing.Keys() {
		if roster.IsRegistrationNumber(reg) {
			continue
		}
		rec, _ := existing.Get(reg)
		logger.Warn("Existing entry does not end in a registration number", logger.Fields{
			"name":  rec.Name,
			"email": rec.Email,
		})
		logger.IncrCounter("existing.malformed")
	}
}

// logOutcomes reports every line at the level its kind warrants and counts
// the outcomes.
func logOutcomes(outcomes []roster.Outcome, existing *roster.Existing) {
	for _, o := range outcomes {
		fields := logger.Fields{
			"classroom": o.Line.Batch,
			"element":   o.Line.Index,
		}
		if o.Skipped() {
			fields["text"] = o.Line.Text
		}

		switch o.Kind {
		case roster.KindNoMatch:
			logger.IncrCounter("lines.no_match")
			logger.Warn("Element does not match pattern", fields)
		case roster.KindMissingField:
			logger.IncrCounter("records.missing_field")
			fields["error"] = o.Err.Error()
			logger.Warn("Missing First or Registration number", fields)
		case roster.KindDuplicate:
			logger.IncrCounter("records.duplicate")
			fields["reg"] = o.Student.Reg
			if rec, ok := existing.Get(o.Student.Reg); ok {
				fields["kept_email"] = rec.Email
			}
			logger.Info("Duplicate registration number, skipping", fields)
		case roster.KindGenerated:
			logger.IncrCounter("records.generated")
			fields["name"] = o.Record.Name
			fields["email"] = o.Record.Email
			logger.Debug("Generated entry", fields)
		}
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, closeLog, err := setup()
	if err != nil {
		return err
	}
	defer closeLog()

	path := flagXLSX
	if path == "" {
		path = cfg.Output.XLSX
	}
	if path == "" {
		return fmt.Errorf("no workbook path: pass --xlsx or set output.xlsx")
	}

	store, err := storage.New(cfg.Output.CSV)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	records, found, err := store.Load()
	if err != nil {
		return fmt.Errorf("loading records: %w", err)
	}
	if !found {
		return fmt.Errorf("no output file at %s", store.Path())
	}
	if err := storage.ExportXLSX(records, path); err != nil {
		return fmt.Errorf("exporting workbook: %w", err)
	}

	logger.Info("Exported workbook", logger.Fields{"path": path, "rows": len(records)})
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", len(records), path)
	return nil
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}
