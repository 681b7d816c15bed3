// Command crowdqueue runs the party song-request service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/crowdqueue/crowdqueue/internal/config"
	"github.com/crowdqueue/crowdqueue/internal/db"
	"github.com/crowdqueue/crowdqueue/internal/metrics"
	"github.com/crowdqueue/crowdqueue/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a TOML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "crowdqueue",
	})

	if err := db.Migrate(cfg.Database.URL); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	database, err := db.New(context.Background(), cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	server, err := web.NewServer(cfg, database, metrics.NewCollector(), logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run()
}
