package clubsma

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"clubscraper/internal/components/chrono"
	"clubscraper/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

const testUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

type fakeChrono struct {
	mutex  sync.Mutex
	sleeps []time.Duration
}

func (f *fakeChrono) Now() time.Time {
	return time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
}

func (f *fakeChrono) Sleep(ctx context.Context, d time.Duration) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.sleeps = append(f.sleeps, d)
	return ctx.Err()
}

func (f *fakeChrono) Sleeps() []time.Duration {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]time.Duration{}, f.sleeps...)
}

func newTestClient(t testing.TB, server *httptest.Server, opts ClientOptions) (*Client, *fakeChrono, *telemetry.Recorder) {
	opts.BaseUrl = server.URL + "/casablanca?page="
	opts.UserAgent = testUserAgent
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Delay == (chrono.Jitter{}) {
		opts.Delay = chrono.Jitter{Min: time.Second, Max: 3 * time.Second}
	}

	clock := &fakeChrono{}
	tel := &telemetry.Recorder{}
	client, err := NewClient(opts, clock, tel)
	if err != nil {
		t.Fatal(err)
	}
	return client, clock, tel
}

func TestFetchPage(t *testing.T) {
	var gotPath, gotPage, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotPage = r.URL.Query().Get("page")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(listingPageTest)
	}))
	defer server.Close()

	client, clock, _ := newTestClient(t, server, ClientOptions{})
	require.Equal(t, server.URL+"/casablanca?page=3", client.PageUrl(3))

	doc, err := client.FetchPage(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, 3, doc.Find(selectorListing).Length())

	require.Equal(t, "/casablanca", gotPath)
	require.Equal(t, "3", gotPage)
	require.Equal(t, testUserAgent, gotAgent)

	sleeps := clock.Sleeps()
	require.Len(t, sleeps, 1)
	require.GreaterOrEqual(t, sleeps[0], time.Second)
	require.LessOrEqual(t, sleeps[0], 3*time.Second)
}

func TestFetchPageErrorStatus(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusTooManyRequests} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		client, clock, _ := newTestClient(t, server, ClientOptions{})
		_, err := client.FetchPage(context.Background(), 1)
		require.Error(t, err)
		require.Empty(t, clock.Sleeps(), "no delay after a failed request")

		server.Close()
	}
}

func TestFetchPageTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, _, tel := newTestClient(t, server, ClientOptions{Timeout: 50 * time.Millisecond})
	_, err := client.FetchPage(context.Background(), 5)
	require.Error(t, err)
	require.NotEmpty(t, tel.Reports(telemetry.REPORT_BROKEN), "resty instrumentation reports the failed request")
}

func TestFetchPageRobots(t *testing.T) {
	var pageRequests int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.Write([]byte("User-agent: *\nDisallow: /casablanca\n"))
			return
		}
		atomic.AddInt64(&pageRequests, 1)
		w.Write(listingPageTest)
	}))
	defer server.Close()

	client, _, _ := newTestClient(t, server, ClientOptions{RespectRobots: true})
	_, err := client.FetchPage(context.Background(), 1)
	require.ErrorContains(t, err, "robots.txt")
	require.Equal(t, int64(0), atomic.LoadInt64(&pageRequests))

	unrestricted, _, _ := newTestClient(t, server, ClientOptions{})
	_, err = unrestricted.FetchPage(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), atomic.LoadInt64(&pageRequests))
}

func TestFetchPageMissingRobots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Write(listingPageTest)
	}))
	defer server.Close()

	client, _, _ := newTestClient(t, server, ClientOptions{RespectRobots: true})
	_, err := client.FetchPage(context.Background(), 1)
	require.NoError(t, err)
}

func TestScrapePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			w.Write(listingPageTest)
		case "2":
			w.Write(emptyPageTest)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer server.Close()

	client, _, tel := newTestClient(t, server, ClientOptions{})
	scraper := newScraper(client, "https://www.clubs.ma", tel)

	listings := scraper.ScrapePage(context.Background(), 1)
	require.Len(t, listings, 3)
	require.Equal(t, "City Club Maârif", listings[0].Name)
	require.Equal(t, "Gym Alpha", listings[2].Name)

	require.Empty(t, scraper.ScrapePage(context.Background(), 2))
	require.Empty(t, tel.Reports(telemetry.REPORT_BROKEN))

	require.Empty(t, scraper.ScrapePage(context.Background(), 3))
	broken := tel.Reports(telemetry.REPORT_BROKEN)
	require.NotEmpty(t, broken)
	require.Equal(t, "clubsma: "+report_scraper_scrape_page, broken[len(broken)-1].Id)

	clubs := 0
	for _, report := range tel.Reports(telemetry.REPORT_INFO) {
		if report.Id == "clubsma: scraping club" {
			clubs++
		}
	}
	require.Equal(t, 3, clubs)
}

func TestScrapePageCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(listingPageTest)
	}))
	defer server.Close()

	client, _, tel := newTestClient(t, server, ClientOptions{})
	scraper := newScraper(client, "https://www.clubs.ma", tel)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Empty(t, scraper.ScrapePage(ctx, 1))
}

func TestFetchPageDump(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(listingPageTest)
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "dump")
	client, _, _ := newTestClient(t, server, ClientOptions{DumpDir: dir})
	_, err := client.FetchPage(context.Background(), 2)
	require.NoError(t, err)

	contents, err := os.ReadFile(filepath.Join(dir, "1.txt"))
	require.NoError(t, err)
	require.Contains(t, string(contents), "GET "+server.URL+"/casablanca?page=2")
	require.Contains(t, string(contents), "User-Agent: "+testUserAgent)
	require.Contains(t, string(contents), "City Club Maârif")
}
