package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"wishlist-extractor/compare"
	"wishlist-extractor/extractor"
	"wishlist-extractor/internal/config"
	"wishlist-extractor/internal/types"
	"wishlist-extractor/store"
)

// output is what the CLI prints: the extraction and, with --list-id, its
// comparison against the saved list.
type output struct {
	Result     *extractor.Result       `json:"result"`
	Comparison *types.ComparisonResult `json:"comparison,omitempty"`
	Saved      bool                    `json:"saved,omitempty"`
}

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Parse command line flags
	var (
		urlFlag      = flag.String("url", "", "Wishlist or registry URL to extract")
		outputFlag   = flag.String("output", "", "Output file path (default: stdout)")
		listIDFlag   = flag.String("list-id", "", "Compare the extracted items against this saved list")
		saveFlag     = flag.Bool("save", false, "Save the extracted items under --list-id")
		requestDelay = flag.Duration("delay", 0, "Delay between requests to the same host")
		maxRetries   = flag.Int("retries", 0, "Maximum direct fetch attempts")
		timeout      = flag.Duration("timeout", 0, "Overall pipeline timeout")
		useBrowser   = flag.Bool("browser", false, "Use the headless browser as the last fetch strategy")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if *urlFlag == "" {
		log.Fatal("--url flag is required")
	}
	if *saveFlag && *listIDFlag == "" {
		log.Fatal("--save requires --list-id")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags win over file and environment, but only when given.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "delay":
			cfg.Extractor.RequestDelay = *requestDelay
		case "retries":
			cfg.Extractor.MaxRetries = *maxRetries
		case "timeout":
			cfg.Extractor.PipelineTimeout = *timeout
		case "browser":
			cfg.Extractor.UseHeadlessBrowser = *useBrowser
		}
	})

	logger := config.NewLogger(cfg.Logging, *verbose)

	ctx := context.Background()
	startTime := time.Now()

	pipeline := extractor.NewExtractor(cfg.Extractor, logger)
	out := output{Result: pipeline.Extract(ctx, *urlFlag)}
	logger.Infof("Extraction finished in %v (success=%t)", time.Since(startTime), out.Result.Success)

	if *listIDFlag != "" {
		listStore, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			logger.Fatalf("Failed to open %s list store: %v", cfg.Store.Driver, err)
		}
		defer listStore.Close()

		existing, err := listStore.Items(ctx, *listIDFlag)
		if err != nil {
			logger.Fatalf("Failed to load list %s: %v", *listIDFlag, err)
		}
		if out.Result.Success {
			comparison := compare.Compare(existing, out.Result.Items)
			out.Comparison = &comparison
			logger.Infof("Compared with list %s: %d unchanged, %d new, %d updated", *listIDFlag,
				comparison.Summary.UnchangedCount, comparison.Summary.AddedCount, comparison.Summary.ChangedCount)
		}

		if *saveFlag && out.Result.Success {
			if err := listStore.ReplaceItems(ctx, *listIDFlag, out.Result.Items); err != nil {
				logger.Fatalf("Failed to save list %s: %v", *listIDFlag, err)
			}
			out.Saved = true
			logger.Infof("Saved %d items to list %s", len(out.Result.Items), *listIDFlag)
		}
	}

	// Marshal results to JSON
	jsonData, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		logger.Fatalf("Failed to marshal results: %v", err)
	}

	// Output results
	if *outputFlag != "" {
		if err := os.WriteFile(*outputFlag, jsonData, 0644); err != nil {
			logger.Fatalf("Failed to write output file: %v", err)
		}
		logger.Infof("Results written to: %s", *outputFlag)
	} else {
		fmt.Println(string(jsonData))
	}

	if !out.Result.Success {
		logger.Warnf("Extraction failed: %s", out.Result.Message)
		os.Exit(1)
	}
}
