package config

import (
	"time"

	"clubscraper/internal/components/telemetry"
	"clubscraper/internal/export"
	"clubscraper/lib/configutil"
)

const EnvPrefix = "clubscraper"

type ScraperConfig struct {
	// BaseUrl is the listing page url, the page number is appended to it verbatim.
	BaseUrl string `json:"base_url" split_words:"true"`
	// SiteOrigin is prepended to the relative link of each listing.
	SiteOrigin string `json:"site_origin" split_words:"true"`
	UserAgent  string `json:"user_agent" split_words:"true"`
	MaxPages   int    `json:"max_pages" split_words:"true"`

	TimeoutSeconds int `json:"timeout_seconds" split_words:"true"`
	DelayMinMillis int `json:"delay_min_ms" split_words:"true"`
	DelayMaxMillis int `json:"delay_max_ms" split_words:"true"`

	// RequestsPerSecond is an upper bound on the request rate on top of the
	// randomized delay, 0 disables it.
	RequestsPerSecond float64 `json:"requests_per_second" split_words:"true"`
	CloudflareBypass  bool    `json:"cloudflare_bypass" split_words:"true"`
	RespectRobots     bool    `json:"respect_robots" split_words:"true"`

	// DumpDir keeps a copy of every http exchange for debugging, empty disables it.
	DumpDir string `json:"dump_dir" split_words:"true"`
}

func (c ScraperConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c ScraperConfig) DelayMin() time.Duration {
	return time.Duration(c.DelayMinMillis) * time.Millisecond
}

func (c ScraperConfig) DelayMax() time.Duration {
	return time.Duration(c.DelayMaxMillis) * time.Millisecond
}

type OutputConfig struct {
	Csv      string                `json:"csv" split_words:"true"`
	Json     string                `json:"json" split_words:"true"`
	Database export.DatabaseConfig `json:"database" split_words:"true"`
}

type TelemetryConfig struct {
	Otlp telemetry.OtlpConfig `json:"otlp" split_words:"true"`
}

type Config struct {
	Scraper   ScraperConfig   `json:"scraper" split_words:"true"`
	Output    OutputConfig    `json:"output" split_words:"true"`
	Telemetry TelemetryConfig `json:"telemetry" split_words:"true"`
}

// Default returns the fixed parameters the scraper was built around,
// running without any config file or environment yields exactly these.
func Default() Config {
	return Config{
		Scraper: ScraperConfig{
			BaseUrl:        "https://www.clubs.ma/casablanca?page=",
			SiteOrigin:     "https://www.clubs.ma",
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			MaxPages:       26,
			TimeoutSeconds: 10,
			DelayMinMillis: 1000,
			DelayMaxMillis: 3000,
		},
		Output: OutputConfig{
			Csv:  "clubs.csv",
			Json: "clubs.json",
		},
	}
}

// Load reads `path` (and its .local override) on top of Default, then applies
// CLUBSCRAPER_* environment overrides.
func Load(path string) (Config, error) {
	return configutil.Load(path, EnvPrefix, Default())
}
