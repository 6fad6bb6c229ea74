package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadWithoutFileIsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "clubscraper.json5"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	require.Equal(t, 10*time.Second, cfg.Scraper.Timeout())
	require.Equal(t, time.Second, cfg.Scraper.DelayMin())
	require.Equal(t, 3*time.Second, cfg.Scraper.DelayMax())
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clubscraper.json5")
	err := os.WriteFile(path, []byte(`{
		scraper: { max_pages: 3, respect_robots: true },
		output: { database: { file: "clubs.db" } },
	}`), 0600)
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("CLUBSCRAPER_OUTPUT_CSV", "out/clubs.csv")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Scraper.MaxPages)
	require.True(t, cfg.Scraper.RespectRobots)
	require.Equal(t, "https://www.clubs.ma/casablanca?page=", cfg.Scraper.BaseUrl)
	require.Equal(t, "out/clubs.csv", cfg.Output.Csv)
	require.Equal(t, "clubs.json", cfg.Output.Json)
	require.Equal(t, "clubs.db", cfg.Output.Database.File)
}

func TestLoadIgnoresUnprefixedEnvironment(t *testing.T) {
	t.Setenv("BASE_URL", "http://localhost:3000/")
	t.Setenv("URL", "libsql://somewhere.example")
	t.Setenv("FILE", "elsewhere.db")
	t.Setenv("JSON", "/tmp/elsewhere.json")
	t.Setenv("CSV", "/tmp/elsewhere.csv")
	t.Setenv("USER_AGENT", "curl/8.0")
	t.Setenv("MAX_PAGES", "2")
	t.Setenv("HEADERS", "authorization:secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "clubscraper.json5"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.False(t, cfg.Output.Database.Enabled())
}

func TestLoadPrefixedEnvironment(t *testing.T) {
	t.Setenv("CLUBSCRAPER_SCRAPER_MAX_PAGES", "5")
	t.Setenv("CLUBSCRAPER_SCRAPER_DELAY_MIN_MILLIS", "0")
	t.Setenv("CLUBSCRAPER_SCRAPER_USER_AGENT", "clubscraper-test")
	t.Setenv("CLUBSCRAPER_OUTPUT_DATABASE_POSTGRES_URL", "postgres://localhost/clubs")
	t.Setenv("CLUBSCRAPER_TELEMETRY_OTLP_TRACES_HTTP_ENDPOINT", "http://localhost:4318")

	cfg, err := Load(filepath.Join(t.TempDir(), "clubscraper.json5"))
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Scraper.MaxPages)
	require.Equal(t, time.Duration(0), cfg.Scraper.DelayMin())
	require.Equal(t, "clubscraper-test", cfg.Scraper.UserAgent)
	require.Equal(t, "postgres://localhost/clubs", cfg.Output.Database.PostgresUrl)
	require.Equal(t, "http://localhost:4318", cfg.Telemetry.Otlp.Traces.HttpEndpoint)
}
