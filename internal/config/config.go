// Package config handles configuration for the back-office daemon,
// including defaults, JSON overlay, command-line flags, and
// environment variables.
package config

import "time"

// Config holds runtime settings for the back-office daemon.
//
// Fields:
//   - HTTPAddr: bind address for the admin HTTP API.
//   - StoreURL: base URL of the realtime database (REST endpoint).
//   - StoreAuthToken: optional auth token appended to store requests.
//   - VertexProjectID / VertexLocation / VertexModel: Vertex AI settings
//     for narrative generation.
//   - CacheDSN: SQLite file holding the analytics cache.
//   - CacheTTL: freshness window for cached narratives.
//   - SweepSchedule: cron expression for the offer-expiry sweep.
//   - Debounce: quiet period between a snapshot arrival and recompute.
type Config struct {
	HTTPAddr        string
	StoreURL        string
	StoreAuthToken  string
	VertexProjectID string
	VertexLocation  string
	VertexModel     string
	CacheDSN        string
	CacheTTL        time.Duration
	SweepSchedule   string
	Debounce        time.Duration
}

// LoadDefaults populates Config with development defaults.
// NOTE: the store URL points at a local emulator and should be
// overridden in any real deployment.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.StoreURL = "http://127.0.0.1:9000"
	c.StoreAuthToken = ""
	c.VertexProjectID = ""
	c.VertexLocation = "us-central1"
	c.VertexModel = "gemini-1.5-flash"
	c.CacheDSN = "backoffice.db"
	c.CacheTTL = 12 * time.Hour
	c.SweepSchedule = "0 * * * *"
	c.Debounce = 50 * time.Millisecond
}

// LoadConfig builds a Config by applying defaults, then overlaying
// values from an optional JSON file, command-line flags, and finally
// environment variables. Later stages win.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	parseEnv(cfg)
	return cfg
}
