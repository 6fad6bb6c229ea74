package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"clubscraper/internal/components/chrono"
	"clubscraper/internal/components/telemetry"
	"clubscraper/internal/config"
	"clubscraper/internal/export"
	"clubscraper/internal/runner"
	"clubscraper/internal/scrapers/clubsma"
	"clubscraper/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

const perfStatsInterval = 15 * time.Second

func init() {
	RootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrapes every listing page and writes the clubs to the configured outputs.",
	Args:  cobra.NoArgs,
	Run:   runScrape,
}

func runScrape(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	cfg, err := config.Load(configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	tel := telemetry.SlogAPI{}

	otel, err := telemetry.Setup(ctx, "clubscraper", cfg.Telemetry.Otlp)
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	if otel.MeterProvider != nil {
		telemetry.InstrumentPerfStats(ctx, perfStatsInterval, tel)
	}

	summary, err := scrape(ctx, cfg, chrono.NewStandardImpl(), tel)

	shutdownErr := otel.Shutdown(context.Background())
	if shutdownErr != nil {
		slog.Warn("failed to flush telemetry", "err", shutdownErr)
	}
	if err != nil {
		serviceutil.Fatal("failed to scrape clubs", err)
	}

	slog.Info(
		"scraping finished",
		"pages", summary.Pages,
		"clubs", summary.Listings,
		"seconds", summary.Elapsed.Seconds(),
	)
}

func sinks(ctx context.Context, output config.OutputConfig, time chrono.API) ([]runner.Sink, func(), error) {
	out := []runner.Sink{}
	if output.Csv != "" {
		out = append(out, export.CSVFile{Path: output.Csv})
	}
	if output.Json != "" {
		out = append(out, export.JSONFile{Path: output.Json})
	}
	if !output.Database.Enabled() {
		return out, func() {}, nil
	}

	db, dialect, err := output.Database.OpenDB()
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	store, err := export.NewSQLStore(ctx, db, dialect, time)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	out = append(out, store)

	return out, func() { db.Close() }, nil
}

func scrape(ctx context.Context, cfg config.Config, time chrono.API, tel telemetry.API) (runner.Summary, error) {
	client, err := clubsma.NewClient(clubsma.ClientOptions{
		BaseUrl:   cfg.Scraper.BaseUrl,
		UserAgent: cfg.Scraper.UserAgent,
		Timeout:   cfg.Scraper.Timeout(),
		Delay: chrono.Jitter{
			Min: cfg.Scraper.DelayMin(),
			Max: cfg.Scraper.DelayMax(),
		},
		RequestsPerSecond: cfg.Scraper.RequestsPerSecond,
		CloudflareBypass:  cfg.Scraper.CloudflareBypass,
		RespectRobots:     cfg.Scraper.RespectRobots,
		DumpDir:           cfg.Scraper.DumpDir,
	}, time, tel)
	if err != nil {
		return runner.Summary{}, err
	}
	scraper := clubsma.NewScraper(client, cfg.Scraper.SiteOrigin, tel)

	outputs, closeOutputs, err := sinks(ctx, cfg.Output, time)
	if err != nil {
		return runner.Summary{}, err
	}
	defer closeOutputs()

	r := runner.NewRunner(scraper, outputs, cfg.Scraper.MaxPages, time, tel)
	return r.Run(ctx)
}
