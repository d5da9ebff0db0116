// Copyright 2025 Casavia Labs
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
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/casavia/rentmatch"
	"github.com/casavia/rentmatch/ai"
	"github.com/casavia/rentmatch/ai/openai"
	"github.com/casavia/rentmatch/core"
	"github.com/casavia/rentmatch/embedding"
	"github.com/casavia/rentmatch/ingest"
	"github.com/casavia/rentmatch/storage/badger"
)

func main() {
	// A .env file is optional; system environment always applies.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "rentmatch",
		Usage: "Match sale listings against a corpus of scraped rentals",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Build the rental corpus from a scraper export or database",
				Action: buildCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "from-json",
						Usage: "Path to a scraper JSON export",
					},
					&cli.StringFlag{
						Name:    "from-postgres",
						Usage:   "PostgreSQL DSN of the scraper's listings table",
						EnvVars: []string{"RENTMATCH_POSTGRES_DSN"},
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of listings per embedding and storage batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N listings",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed oracle calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Listings whose images are embedded concurrently",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "fetch-workers",
						Usage: "Concurrent image downloads (0 uses the embedder default)",
					},
					&cli.IntFlag{
						Name:  "max-images",
						Usage: "Photos per listing that contribute to its image vector",
						Value: 3,
					},
					&cli.IntFlag{
						Name:  "image-dims",
						Usage: "Image embedding dimensionality for image-free corpora",
						Value: 512,
					},
					&cli.DurationFlag{
						Name:  "fetch-timeout",
						Usage: "Per-image download timeout",
						Value: 3 * time.Second,
					},
					&cli.Int64Flag{
						Name:  "max-image-bytes",
						Usage: "Per-image download size limit",
						Value: 5 << 20,
					},
				}, aiFlags()...),
			},
			{
				Name:   "reembed",
				Usage:  "Re-embed stored descriptions with a new text model",
				Action: reembedCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of listings per embedding and storage batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N listings",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed oracle calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				}, aiFlags()...),
			},
			{
				Name:   "match",
				Usage:  "Rank corpus rentals against a sale listing",
				Action: matchCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "title",
						Usage: "Sale listing title",
					},
					&cli.StringFlag{
						Name:  "desc",
						Usage: "Sale listing description",
					},
					&cli.StringSliceFlag{
						Name:  "image",
						Usage: "Sale listing image URL (repeatable)",
					},
					&cli.Float64Flag{
						Name:  "price",
						Usage: "Sale price (0 means unknown)",
					},
					&cli.IntFlag{
						Name:  "rooms",
						Usage: "Room count (negative means unknown)",
						Value: -1,
					},
					&cli.StringFlag{
						Name:  "location",
						Usage: "Place name or \"lat,lon\" coordinates",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of matches to return",
						Value: 5,
					},
				}, aiFlags()...),
			},
			{
				Name:   "stats",
				Usage:  "Summarize the built corpus and embedding caches",
				Action: statsCommand,
				Flags:  []cli.Flag{dbFlag()},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to the listing store directory",
		EnvVars:  []string{"RENTMATCH_DB"},
		Required: true,
	}
}

// aiFlags are shared by every command that talks to the embedding services.
func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "text-host",
			Usage:   "Text embedding service host URL",
			EnvVars: []string{"RENTMATCH_TEXT_HOST"},
			Value:   "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:    "image-host",
			Usage:   "Image embedding service host URL (defaults to text-host)",
			EnvVars: []string{"RENTMATCH_IMAGE_HOST"},
		},
		&cli.StringFlag{
			Name:    "text-model",
			Usage:   "Text embedding model name",
			EnvVars: []string{"RENTMATCH_TEXT_MODEL"},
			Value:   "all-MiniLM-L6-v2",
		},
		&cli.StringFlag{
			Name:    "image-model",
			Usage:   "Image embedding model name",
			EnvVars: []string{"RENTMATCH_IMAGE_MODEL"},
			Value:   "clip-ViT-B-32",
		},
	}
}

func aiConfigFromFlags(c *cli.Context) (*ai.Config, error) {
	imageHost := c.String("image-host")
	if imageHost == "" {
		imageHost = c.String("text-host")
	}

	cfg := ai.NewConfig(
		ai.WithTextHost(c.String("text-host")),
		ai.WithImageHost(imageHost),
		ai.WithTextModel(c.String("text-model")),
		ai.WithImageModel(c.String("image-model")),
	)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return cfg, nil
}

func buildCommand(c *cli.Context) error {
	ctx := context.Background()

	var source ingest.Source
	jsonPath := c.String("from-json")
	dsn := c.String("from-postgres")
	switch {
	case jsonPath != "" && dsn != "":
		return fmt.Errorf("use either --from-json or --from-postgres, not both")
	case jsonPath != "":
		source = ingest.NewJSONSource(jsonPath)
	case dsn != "":
		pg, err := ingest.NewPostgresSource(dsn)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		defer pg.Close()
		source = pg
	default:
		return fmt.Errorf("a listing source is required: --from-json or --from-postgres")
	}

	buildConfig := &ingest.Config{
		BatchSize:           c.Int("batch-size"),
		ReportInterval:      c.Int("report-interval"),
		MaxRetries:          c.Int("max-retries"),
		RetryDelay:          c.Duration("retry-delay"),
		Workers:             c.Int("workers"),
		MaxImagesPerListing: c.Int("max-images"),
		ImageDims:           c.Int("image-dims"),
	}
	if buildConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if buildConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if buildConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}
	if buildConfig.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0")
	}

	aiConfig, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	dbPath := c.String("db")
	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open listing store: %w", err)
	}
	defer backend.Close()

	textCache := badger.NewTextCacheRepository(backend)
	imageCache := badger.NewImageCacheRepository(backend)
	corpusRepo := badger.NewCorpusRepository(backend)

	provider, err := openai.NewProvider(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	textEmbedder, err := embedding.NewTextEmbedder(textCache, provider.Embedder(), nil)
	if err != nil {
		return fmt.Errorf("failed to create text embedder: %w", err)
	}

	fetcher := embedding.NewImageFetcher(c.Duration("fetch-timeout"), c.Int64("max-image-bytes"), nil)
	var imageOpts []embedding.Option
	if n := c.Int("fetch-workers"); n > 0 {
		imageOpts = append(imageOpts, embedding.WithPoolSize(n))
	}
	imageEmbedder, err := embedding.NewImageEmbedder(imageCache, provider.ImageEmbedder(), fetcher, imageOpts...)
	if err != nil {
		return fmt.Errorf("failed to create image embedder: %w", err)
	}
	defer imageEmbedder.Release()

	builder, err := ingest.NewBuilder(source, textEmbedder, imageEmbedder, corpusRepo, buildConfig, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create builder: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Listing store: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "Text model: %s @ %s\n", aiConfig.TextModel, aiConfig.TextHost)
	fmt.Fprintf(os.Stderr, "Image model: %s @ %s\n", aiConfig.ImageModel, aiConfig.ImageHost)
	fmt.Fprintln(os.Stderr)

	if err := builder.Run(ctx); err != nil {
		return fmt.Errorf("corpus build failed: %w", err)
	}

	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg := &ingest.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if cfg.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if cfg.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if cfg.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	aiConfig, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	dbPath := c.String("db")
	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open listing store: %w", err)
	}
	defer backend.Close()

	provider, err := openai.NewProvider(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	corpusRepo := badger.NewCorpusRepository(backend)

	// The bare oracle, not a cache-backed embedder: cached vectors belong
	// to the model being replaced.
	reembedder, err := ingest.NewReembedder(corpusRepo, provider.Embedder(), cfg, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create reembedder: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Listing store: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "Text model: %s @ %s\n", aiConfig.TextModel, aiConfig.TextHost)
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembed failed: %w", err)
	}

	textCache := badger.NewTextCacheRepository(backend)
	stale, err := textCache.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count text cache: %w", err)
	}
	if err := textCache.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear text cache: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Cleared %d text cache entries from the previous model\n", stale)

	return nil
}

func matchCommand(c *cli.Context) error {
	ctx := context.Background()

	aiConfig, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	engine, err := rentmatch.NewEngine(ctx, c.String("db"), rentmatch.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	defer engine.Close()

	sale := &core.Listing{
		Title:       c.String("title"),
		Description: c.String("desc"),
		ImageURLs:   c.StringSlice("image"),
		Price:       c.Float64("price"),
		Rooms:       c.Int("rooms"),
		Location:    core.ParseLocation(c.String("location")),
	}

	results, err := engine.Match(ctx, sale, c.Int("top-k"))
	if err != nil {
		return fmt.Errorf("match failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matches found.")
		return nil
	}

	fmt.Println("Top matches:")
	for i, r := range results {
		fmt.Printf("%d. %s | %s | final %.2f (text %.2f, image %.2f, structured %.2f)\n",
			i+1, r.Platform, r.Title, r.FinalScore, r.TextScore, r.ImageScore, r.StructuredScore)
		fmt.Printf("   %s\n", r.URL)
	}

	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open listing store: %w", err)
	}
	defer backend.Close()

	corpusRepo := badger.NewCorpusRepository(backend)
	manifest, err := corpusRepo.GetManifest(ctx)
	if err != nil {
		return fmt.Errorf("no completed corpus build: %w", err)
	}

	listings, err := corpusRepo.LoadListings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load corpus rows: %w", err)
	}

	var minPrice, maxPrice, total float64
	priced := 0
	withPhotos := 0
	platforms := make(map[string]int)
	for _, l := range listings {
		if l.Price > 0 {
			if priced == 0 || l.Price < minPrice {
				minPrice = l.Price
			}
			if l.Price > maxPrice {
				maxPrice = l.Price
			}
			total += l.Price
			priced++
		}
		if len(l.ImageURLs) > 0 {
			withPhotos++
		}
		platforms[l.Platform]++
	}

	fmt.Printf("Corpus built: %s\n", manifest.BuiltAt.Format(time.RFC3339))
	fmt.Printf("Listings: %d (text dims %d, image dims %d)\n",
		manifest.Count, manifest.TextDims, manifest.ImageDims)
	fmt.Printf("With photos: %d\n", withPhotos)
	if priced > 0 {
		fmt.Printf("Price: min %.2f / avg %.2f / max %.2f across %d priced listings\n",
			minPrice, total/float64(priced), maxPrice, priced)
	} else {
		fmt.Println("Price: no data")
	}

	type platformCount struct {
		name  string
		count int
	}
	counts := make([]platformCount, 0, len(platforms))
	for name, count := range platforms {
		counts = append(counts, platformCount{name, count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].name < counts[j].name
	})
	fmt.Println("Platforms:")
	for _, pc := range counts {
		fmt.Printf("  %-24s %d\n", pc.name, pc.count)
	}

	textCount, err := badger.NewTextCacheRepository(backend).Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count text cache: %w", err)
	}
	imageCount, err := badger.NewImageCacheRepository(backend).Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count image cache: %w", err)
	}
	fmt.Printf("Embedding caches: %d text, %d image\n", textCount, imageCount)

	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
