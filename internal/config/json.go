package config

import (
	"encoding/json"
	"os"

	"github.com/cancheito/backoffice/internal/flagx"
)

// JsonConfig is the DTO for reading JSON configuration files. It uses
// the local Duration type for interval fields, which allows parsing
// both string values such as "12h" and integer nanoseconds. After
// unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	HTTPAddr        string   `json:"http_addr"`
	StoreURL        string   `json:"store_url"`
	StoreAuthToken  string   `json:"store_auth_token"`
	VertexProjectID string   `json:"vertex_project_id"`
	VertexLocation  string   `json:"vertex_location"`
	VertexModel     string   `json:"vertex_model"`
	CacheDSN        string   `json:"cache_dsn"`
	CacheTTL        Duration `json:"cache_ttl"`
	SweepSchedule   string   `json:"sweep_schedule"`
	Debounce        Duration `json:"debounce"`
}

// parseJson loads configuration values from the JSON file named by the
// -c or -config command-line flags into the provided Config. When no
// file is named, nothing is loaded. Only keys present in the file
// override the current values; if the file cannot be read or contains
// invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.HTTPAddr != "" {
		config.HTTPAddr = c.HTTPAddr
	}
	if c.StoreURL != "" {
		config.StoreURL = c.StoreURL
	}
	if c.StoreAuthToken != "" {
		config.StoreAuthToken = c.StoreAuthToken
	}
	if c.VertexProjectID != "" {
		config.VertexProjectID = c.VertexProjectID
	}
	if c.VertexLocation != "" {
		config.VertexLocation = c.VertexLocation
	}
	if c.VertexModel != "" {
		config.VertexModel = c.VertexModel
	}
	if c.CacheDSN != "" {
		config.CacheDSN = c.CacheDSN
	}
	if c.CacheTTL.Duration != 0 {
		config.CacheTTL = c.CacheTTL.Duration
	}
	if c.SweepSchedule != "" {
		config.SweepSchedule = c.SweepSchedule
	}
	if c.Debounce.Duration != 0 {
		config.Debounce = c.Debounce.Duration
	}
}
