package commands

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"clubscraper/internal/components/telemetry"
	"clubscraper/internal/config"
	"clubscraper/internal/export"

	"github.com/stretchr/testify/require"
)

const testPage = `<html><body><ul>
<li itemprop="itemListElement">
	<a itemprop="url" href="/casablanca/atlas-gym"></a>
	<h3 itemprop="name">Atlas Gym</h3>
	<div class="club-sports"><a class="badge">Boxe</a></div>
</li>
<li itemprop="itemListElement">
	<h3 itemprop="name">Oasis Fitness</h3>
	<input class="rating-input" value="3.5">
</li>
</ul></body></html>`

type instantClock struct{}

func (instantClock) Now() time.Time {
	return time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
}

func (instantClock) Sleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func TestScrape(t *testing.T) {
	var mutex sync.Mutex
	requested := []string{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		mutex.Lock()
		requested = append(requested, page)
		mutex.Unlock()
		if page == "1" || page == "2" {
			w.Write([]byte(testPage))
			return
		}
		w.Write([]byte("<html><body><ul></ul></body></html>"))
	}))
	defer server.Close()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Scraper.BaseUrl = server.URL + "/casablanca?page="
	cfg.Scraper.SiteOrigin = "https://www.clubs.ma"
	cfg.Output.Csv = filepath.Join(dir, "clubs.csv")
	cfg.Output.Json = filepath.Join(dir, "clubs.json")
	cfg.Output.Database.File = filepath.Join(dir, "clubs.db")

	summary, err := scrape(context.Background(), cfg, instantClock{}, &telemetry.Recorder{})
	require.NoError(t, err)
	require.Equal(t, 2, summary.Pages)
	require.Equal(t, 4, summary.Listings)
	mutex.Lock()
	require.Equal(t, []string{"1", "2", "3"}, requested)
	mutex.Unlock()

	listings, err := export.ReadJSONFile(cfg.Output.Json)
	require.NoError(t, err)
	require.Len(t, listings, 4)
	require.Equal(t, "Atlas Gym", listings[0].Name)
	require.Equal(t, "https://www.clubs.ma/casablanca/atlas-gym", listings[0].Url)
	require.Equal(t, []string{"Boxe"}, listings[0].Activities)
	require.Equal(t, 3.5, listings[1].Rating)
	require.FileExists(t, cfg.Output.Csv)
	require.FileExists(t, cfg.Output.Database.File)
}

func TestScrapeWithoutOutputs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Scraper.BaseUrl = server.URL + "/casablanca?page="
	cfg.Output = config.OutputConfig{}

	summary, err := scrape(context.Background(), cfg, instantClock{}, &telemetry.Recorder{})
	require.NoError(t, err)
	require.Zero(t, summary.Listings)
}

func TestScrapeBadDatabase(t *testing.T) {
	cfg := config.Default()
	cfg.Output = config.OutputConfig{
		Database: export.DatabaseConfig{
			File: filepath.Join(t.TempDir(), "clubs.db"),
			Url:  "libsql://clubs.example.com",
		},
	}

	_, err := scrape(context.Background(), cfg, instantClock{}, &telemetry.Recorder{})
	require.ErrorContains(t, err, "open database")
}
