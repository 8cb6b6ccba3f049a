// Command inspect fetches one list URL through every available provider and
// reports what each response offers the extraction strategies. It is a
// diagnostic for tuning selectors and thresholds when a retailer changes
// its pages.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"wishlist-extractor/adapters"
	"wishlist-extractor/classifier"
	"wishlist-extractor/fetcher"
	"wishlist-extractor/internal/config"
	"wishlist-extractor/internal/types"
)

type inspector interface {
	Inspect(body string) (adapters.Inspection, error)
}

func main() {
	_ = godotenv.Load()

	var (
		urlFlag      = flag.String("url", "", "Wishlist or registry URL to inspect")
		providerFlag = flag.String("provider", "", "Inspect only this provider (direct, render_proxy, unlocker, browser)")
		timeout      = flag.Duration("timeout", 2*time.Minute, "Overall inspection timeout")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if *urlFlag == "" {
		log.Fatal("--url flag is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := config.NewLogger(cfg.Logging, *verbose)

	list := classifier.ClassifyURL(*urlFlag)
	fmt.Printf("URL:       %s\nCanonical: %s\nRetailer:  %s\n\n", list.Raw, list.Canonical, list.Kind)
	if !list.Kind.Supported() {
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	registry := fetcher.DefaultRegistry(cfg.Extractor, logger)
	judge := classifier.NewJudge(cfg.Extractor)
	adapter, _ := adapters.NewAll(cfg.Extractor, logger).ForKind(list.Kind)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tSTATUS\tBYTES\tVERDICT\tBLOBS\tCONTAINERS\tLINKS\tITEMS\tMETHOD\tTOOK")

	for _, id := range registry.IDs() {
		if *providerFlag != "" && string(id) != *providerFlag {
			continue
		}
		inspectProvider(ctx, w, registry.Get(id), list, judge, adapter)
	}
	w.Flush()
}

func inspectProvider(ctx context.Context, w *tabwriter.Writer, provider fetcher.Provider, list types.ListURL, judge *classifier.Judge, adapter adapters.Adapter) {
	start := time.Now()
	resp, err := provider.Fetch(ctx, list.Canonical)
	took := time.Since(start).Round(time.Millisecond)

	if err != nil {
		var statusErr *fetcher.StatusError
		if errors.As(err, &statusErr) {
			fmt.Fprintf(w, "%s\t%d\t%d\terror\t-\t-\t-\t-\t-\t%v\n", provider.ID(), statusErr.Status, len(statusErr.Body), took)
			return
		}
		fmt.Fprintf(w, "%s\t-\t-\t%s\t-\t-\t-\t-\t-\t%v\n", provider.ID(), oneLine(err.Error()), took)
		return
	}

	verdict := judge.Judge(list.Kind, resp.Body)
	row := fmt.Sprintf("%s\t%d\t%d\t%s", provider.ID(), resp.Status, len(resp.Body), verdict)

	var in adapters.Inspection
	if i, ok := adapter.(inspector); ok {
		in, _ = i.Inspect(resp.Body)
	}

	items, method := 0, "-"
	if extraction, err := adapter.Extract(resp.Body, list); err == nil {
		items = len(extraction.Items)
		if items > 0 {
			method = string(extraction.Method)
		} else {
			method = string(extraction.EmptyReason)
		}
	}

	fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%s\t%v\n", row, in.Blobs, in.Containers, in.ProductLinks, items, method, took)
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}
