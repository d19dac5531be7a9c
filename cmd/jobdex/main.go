// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/jobdex"
	"github.com/poiesic/jobdex/config"
	"github.com/poiesic/jobdex/core"
	"github.com/poiesic/jobdex/search"
)

func main() {
	app := &cli.App{
		Name:  "jobdex",
		Usage: "Document ingestion and semantic search for job descriptions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides config)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest job description files into the index",
				ArgsUsage: "FILE...",
				Action:    ingestCommand,
			},
			{
				Name:      "search",
				Usage:     "Search indexed job descriptions",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "classification",
						Usage: "Filter by classification code (e.g. EX-01)",
					},
					&cli.StringFlag{
						Name:  "department",
						Usage: "Filter by department",
					},
					&cli.StringFlag{
						Name:  "language",
						Usage: "Filter by language (en, fr)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "text-only",
						Usage: "Skip semantic ranking and match on text only",
					},
				},
			},
			{
				Name:      "suggest",
				Usage:     "Suggest query completions for a prefix",
				ArgsUsage: "PREFIX",
				Action:    suggestCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of suggestions",
						Value: 10,
					},
				},
			},
			{
				Name:      "similar",
				Usage:     "Rank job descriptions by similarity to one job",
				ArgsUsage: "JOB_ID",
				Action:    similarCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Recompute chunk embeddings under the configured model",
				Action: reembedCommand,
			},
			{
				Name:   "jobs",
				Usage:  "List indexed job descriptions",
				Action: jobsCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// openDatabase builds a Database from the --config and --db flags.
func openDatabase(c *cli.Context) (*jobdex.Database, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	dbPath := cfg.Storage.Path
	if override := c.String("db"); override != "" {
		dbPath = override
	}

	return jobdex.NewDatabase(dbPath,
		jobdex.WithConfig(cfg),
		jobdex.WithMetricsRegisterer(prometheus.DefaultRegisterer),
	)
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	docs := make(map[string]string, c.NArg())
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		docs[path] = string(data)
	}

	items := db.IngestBatch(context.Background(), docs)

	failed := 0
	for _, item := range items {
		if item.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAILED %s: %v\n", item.Filename, item.Err)
			continue
		}
		r := item.Result
		status := "ingested"
		if r.Duplicate {
			status = "duplicate"
		}
		fmt.Printf("%s %s (job %d, quality %.0f", status, item.Filename, r.JobId, r.QualityScore)
		if !r.SemanticIndexed {
			fmt.Printf(", text-only")
		}
		fmt.Println(")")
		for _, warning := range r.Warnings {
			fmt.Fprintf(os.Stderr, "  warning: %s\n", warning.Message)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(items))
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	facets := search.Facets{
		Classification: c.String("classification"),
		Department:     c.String("department"),
		Language:       parseLanguage(c.String("language")),
	}

	hits, err := db.Search(context.Background(), query, facets, !c.Bool("text-only"), c.Int("limit"))
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, hit := range hits {
		fmt.Printf("%2d. [%.3f] %s %s (%s)", i+1, hit.Score, hit.JobNumber, hit.Title, hit.Classification)
		if len(hit.MatchedSections) > 0 {
			names := make([]string, len(hit.MatchedSections))
			for j, section := range hit.MatchedSections {
				names[j] = section.String()
			}
			fmt.Printf(" sections: %s", strings.Join(names, ", "))
		}
		if hit.SemanticUnavailable {
			fmt.Printf(" [text match only]")
		}
		fmt.Println()
	}
	return nil
}

func suggestCommand(c *cli.Context) error {
	prefix := strings.TrimSpace(c.Args().First())
	if prefix == "" {
		return fmt.Errorf("a prefix is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	for _, term := range db.Suggest(prefix, c.Int("limit")) {
		fmt.Println(term)
	}
	return nil
}

func similarCommand(c *cli.Context) error {
	raw := c.Args().First()
	jobId, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid job id %q", raw)
	}

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	results, err := db.Similar(context.Background(), core.ID(jobId), c.Int("limit"))
	if err != nil {
		return err
	}

	for i, result := range results {
		fmt.Printf("%2d. [%.3f] %s %s (%s)\n", i+1, result.Result.Overall,
			result.JobNumber, result.Title, result.Classification)
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	report, err := db.Reembed(context.Background(), os.Stderr)
	if err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}

	fmt.Printf("model=%s jobs=%d chunks=%d embedded=%d reused=%d tokens=%d\n",
		report.Model, report.Jobs, report.Chunks, report.Embedded, report.Reused, report.Tokens)
	return nil
}

func jobsCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	jobs, err := db.DocumentRepository().ListJobDescriptions(context.Background())
	if err != nil {
		return err
	}
	for _, job := range jobs {
		indexed := "semantic"
		if !job.SemanticIndexed {
			indexed = "text-only"
		}
		fmt.Printf("%d\t%s\t%s\t%s\t%s\tquality=%.0f\t%s\n",
			job.Id, job.JobNumber, job.Classification, job.Title,
			job.Language, job.QualityScore, indexed)
	}
	return nil
}

// parseLanguage maps a CLI language flag to a core.Language. Empty
// means no filter.
func parseLanguage(value string) core.Language {
	switch strings.ToLower(value) {
	case "en", "english":
		return core.LanguageEnglish
	case "fr", "french":
		return core.LanguageFrench
	default:
		return core.LanguageUnknown
	}
}
