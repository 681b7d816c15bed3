// Command seed-classics loads a curated classics reference file into
// the database. The vibe report's "verified bangers" check runs against
// this table.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/crowdqueue/crowdqueue/internal/config"
	"github.com/crowdqueue/crowdqueue/internal/db"
	"github.com/crowdqueue/crowdqueue/internal/insights"
)

type classicsFile struct {
	Classics []classicEntry `toml:"classics"`
}

type classicEntry struct {
	Title    string `toml:"title"`
	Artist   string `toml:"artist"`
	Category string `toml:"category"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a TOML config file (optional)")
	classicsPath := flag.String("classics", "classics.toml", "path to the classics TOML file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "seed-classics"})

	data, err := os.ReadFile(*classicsPath)
	if err != nil {
		return fmt.Errorf("reading classics file: %w", err)
	}
	var file classicsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing classics file: %w", err)
	}
	if len(file.Classics) == 0 {
		return fmt.Errorf("no classics in %s", *classicsPath)
	}

	rows := make([]db.CuratedClassic, len(file.Classics))
	for i, entry := range file.Classics {
		if entry.Title == "" || entry.Artist == "" || entry.Category == "" {
			return fmt.Errorf("classic %d: title, artist, and category are all required", i+1)
		}
		rows[i] = db.CuratedClassic{
			Signature: insights.Signature(entry.Artist, entry.Title),
			Category:  entry.Category,
			Title:     entry.Title,
			Artist:    entry.Artist,
		}
	}

	ctx := context.Background()
	database, err := db.New(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := database.Classics().UpsertBatch(ctx, rows); err != nil {
		return fmt.Errorf("seeding classics: %w", err)
	}

	logger.Info("classics seeded", "count", len(rows))
	return nil
}
