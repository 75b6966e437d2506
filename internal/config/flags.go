package config

import (
	"flag"
	"os"

	"github.com/cancheito/backoffice/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-s string   realtime store base URL
//	-k string   realtime store auth token
//	-p string   Vertex AI project id
//	-l string   Vertex AI location
//	-m string   Vertex AI model name
//	-d string   analytics cache DSN (SQLite file)
//	-w string   cron schedule for the offer-expiry sweep
//
// The function first filters os.Args to only the flags it recognizes
// using flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-k", "-p", "-l", "-m", "-d", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run the admin API")
	fs.StringVar(&config.StoreURL, "s", config.StoreURL, "realtime store base URL")
	fs.StringVar(&config.StoreAuthToken, "k", config.StoreAuthToken, "realtime store auth token")
	fs.StringVar(&config.VertexProjectID, "p", config.VertexProjectID, "Vertex AI project id")
	fs.StringVar(&config.VertexLocation, "l", config.VertexLocation, "Vertex AI location")
	fs.StringVar(&config.VertexModel, "m", config.VertexModel, "Vertex AI model name")
	fs.StringVar(&config.CacheDSN, "d", config.CacheDSN, "analytics cache DSN")
	fs.StringVar(&config.SweepSchedule, "w", config.SweepSchedule, "offer-expiry sweep schedule (cron)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
