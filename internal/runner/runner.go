package runner

import (
	"context"
	"fmt"
	"time"

	"clubscraper/internal/components/assert"
	"clubscraper/internal/components/chrono"
	"clubscraper/internal/components/telemetry"
	"clubscraper/internal/scrapers/clubsma"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("clubscraper/runner")
	meter  = otel.Meter("clubscraper/runner")
)

const (
	report_runner_page  = "runner.page"
	report_runner_total = "runner.total"
	report_runner_sink  = "runner.sink"
)

// PageSource yields the listings of a page, an empty result means there are no more pages.
type PageSource interface {
	ScrapePage(ctx context.Context, page int) []clubsma.Listing
}

// Sink persists the listings of a whole run.
type Sink interface {
	Name() string
	Write(ctx context.Context, listings []clubsma.Listing) error
}

type Summary struct {
	// Pages is the number of pages that yielded listings.
	Pages    int
	Listings int
	Elapsed  time.Duration
}

// Runner pages through a PageSource from page 1 and writes everything it
// accumulated to its sinks once paging stops.
type Runner struct {
	source   PageSource
	sinks    []Sink
	maxPages int

	time chrono.API
	tel  telemetry.API

	pageCounter    metric.Int64Counter
	listingCounter metric.Int64Counter
}

func NewRunner(source PageSource, sinks []Sink, maxPages int, time chrono.API, tel telemetry.API) Runner {
	assert.NotNil(source)
	assert.NotNil(time)
	assert.NotNil(tel)
	assert.Positive(maxPages)

	pageCounter, _ := meter.Int64Counter("clubs.pages")
	listingCounter, _ := meter.Int64Counter("clubs.listings")

	return Runner{
		source:         source,
		sinks:          sinks,
		maxPages:       maxPages,
		time:           time,
		tel:            telemetry.NewScopedAPI("runner", tel),
		pageCounter:    pageCounter,
		listingCounter: listingCounter,
	}
}

// Collect fetches pages 1..maxPages in order and stops at the first page that
// yields nothing. Listings are returned in the order they were scraped.
func (r Runner) Collect(ctx context.Context) ([]clubsma.Listing, int) {
	all := []clubsma.Listing{}
	pages := 0

	for page := 1; page <= r.maxPages; page++ {
		listings := r.source.ScrapePage(ctx, page)
		if len(listings) == 0 {
			r.tel.ReportInfo("no more clubs found, stopping", page)
			break
		}

		all = append(all, listings...)
		pages++

		r.tel.ReportCount(report_runner_page, int64(len(listings)))
		r.pageCounter.Add(ctx, 1)
		r.listingCounter.Add(ctx, int64(len(listings)))
	}

	return all, pages
}

// Run collects every page then writes the result to each sink in order, the
// first sink that fails stops the run.
func (r Runner) Run(ctx context.Context) (Summary, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	start := r.time.Now()

	listings, pages := r.Collect(ctx)
	r.tel.ReportCount(report_runner_total, int64(len(listings)))

	// sinks still run when ctx was cancelled mid-run so that the pages that
	// did come in are not lost.
	writeCtx := context.WithoutCancel(ctx)
	for _, sink := range r.sinks {
		err := sink.Write(writeCtx, listings)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to write output")
			r.tel.ReportBroken(report_runner_sink, err, sink.Name())
			return Summary{}, fmt.Errorf("write %s: %w", sink.Name(), err)
		}
		r.tel.ReportInfo("saved clubs", sink.Name(), len(listings))
	}

	summary := Summary{
		Pages:    pages,
		Listings: len(listings),
		Elapsed:  r.time.Now().Sub(start),
	}
	span.SetAttributes(
		attribute.Int("pages", summary.Pages),
		attribute.Int("listings", summary.Listings),
	)
	return summary, nil
}
