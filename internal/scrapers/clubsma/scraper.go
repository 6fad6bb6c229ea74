package clubsma

import (
	"context"

	"clubscraper/internal/components/assert"
	"clubscraper/internal/components/telemetry"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("clubscraper/scrapers/clubsma")

const (
	report_scraper_scrape_page = "scraper.scrape-page"
)

type pageFetcher interface {
	FetchPage(ctx context.Context, page int) (*goquery.Document, error)
}

// Scraper fetches listing pages and extracts their listings.
type Scraper struct {
	client    pageFetcher
	extractor Extractor
	tel       telemetry.API
}

func NewScraper(client *Client, siteOrigin string, tel telemetry.API) Scraper {
	assert.NotNil(client)
	assert.NotNil(tel)
	return newScraper(client, siteOrigin, tel)
}

func newScraper(client pageFetcher, siteOrigin string, tel telemetry.API) Scraper {
	return Scraper{
		client:    client,
		extractor: Extractor{SiteOrigin: siteOrigin},
		tel:       telemetry.NewScopedAPI("clubsma", tel),
	}
}

// ScrapePage returns the listings of a page in document order. A page that fails
// to be fetched is reported and yields no listings, the same as a page without any.
func (s Scraper) ScrapePage(ctx context.Context, page int) []Listing {
	ctx, span := tracer.Start(ctx, "ScrapePage")
	defer span.End()
	span.SetAttributes(attribute.Int("page", page))

	s.tel.ReportInfo("scraping page", page)

	doc, err := s.client.FetchPage(ctx, page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch page")
		s.tel.ReportBroken(report_scraper_scrape_page, err, page)
		return nil
	}

	listings := s.extractor.ExtractListings(doc)
	for _, l := range listings {
		s.tel.ReportInfo("scraping club", l.Name)
	}
	span.SetAttributes(attribute.Int("listings", len(listings)))

	return listings
}
