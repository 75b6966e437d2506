package config

import (
	"os"
	"time"
)

// parseEnv overlays Config fields from environment variables. It runs
// last, so a set variable beats the JSON file and the flags. Unset
// variables leave the current value alone; a duration variable that
// does not parse panics, like a malformed config file would.
func parseEnv(config *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(err)
			}
			*dst = d
		}
	}

	setString("HTTP_ADDR", &config.HTTPAddr)
	setString("STORE_URL", &config.StoreURL)
	setString("STORE_AUTH_TOKEN", &config.StoreAuthToken)
	setString("VERTEX_PROJECT_ID", &config.VertexProjectID)
	setString("VERTEX_LOCATION", &config.VertexLocation)
	setString("VERTEX_MODEL", &config.VertexModel)
	setString("CACHE_DSN", &config.CacheDSN)
	setDuration("CACHE_TTL", &config.CacheTTL)
	setString("SWEEP_SCHEDULE", &config.SweepSchedule)
	setDuration("DEBOUNCE", &config.Debounce)
}
