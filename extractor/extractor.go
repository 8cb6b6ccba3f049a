package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"wishlist-extractor/adapters"
	"wishlist-extractor/classifier"
	"wishlist-extractor/fetcher"
	"wishlist-extractor/internal/types"
)

// Fetcher fetches the page behind a classified list URL.
type Fetcher interface {
	Fetch(ctx context.Context, list types.ListURL) types.FetchResult
}

// Result is the outcome of one pipeline run, shaped for the extract endpoint.
type Result struct {
	Success              bool                   `json:"success"`
	RunID                string                 `json:"runId,omitempty"`
	Retailer             types.RetailerKind     `json:"retailer,omitempty"`
	Items                []types.NormalizedItem `json:"items,omitempty"`
	Message              string                 `json:"message,omitempty"`
	RequiresManualUpload bool                   `json:"requiresManualUpload,omitempty"`
	Provider             types.ProviderID       `json:"provider,omitempty"`
	Method               types.ExtractMethod    `json:"method,omitempty"`
	Attempts             []types.FetchAttempt   `json:"attempts,omitempty"`

	List types.ListURL `json:"-"`
	// Err carries the ErrorKind of a failed run; test it with errors.Is.
	Err error `json:"-"`
}

// Extractor runs classify, fetch and extract for one list URL at a time.
// It holds only read-only configuration and shared clients, so one
// Extractor serves concurrent requests.
type Extractor struct {
	config   *types.Config
	logger   types.Logger
	fetcher  Fetcher
	adapters adapters.Set
}

// NewExtractor creates an Extractor with the default fetch plans and adapters.
func NewExtractor(config *types.Config, logger types.Logger) *Extractor {
	return NewExtractorWith(config, logger, fetcher.NewOrchestrator(config, logger), adapters.NewAll(config, logger))
}

// NewExtractorWith creates an Extractor with an explicit fetcher and adapters.
func NewExtractorWith(config *types.Config, logger types.Logger, f Fetcher, set adapters.Set) *Extractor {
	return &Extractor{
		config:   config,
		logger:   logger,
		fetcher:  f,
		adapters: set,
	}
}

// Extract runs the whole pipeline under the configured pipeline timeout.
// It always returns a Result; failures are described by Message and Err.
func (e *Extractor) Extract(ctx context.Context, rawURL string) *Result {
	startTime := time.Now()
	result := &Result{RunID: uuid.NewString()}
	log := e.logger.WithField("run", result.RunID)

	if e.config.PipelineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.PipelineTimeout)
		defer cancel()
	}

	list := classifier.ClassifyURL(rawURL)
	result.List = list
	result.Retailer = list.Kind
	log = log.WithField("retailer", list.Kind)

	if !list.Kind.Supported() {
		log.Infof("Unsupported list URL: %q", rawURL)
		return e.fail(result, types.ErrUnsupportedRetailer, nil, "")
	}
	log.Infof("Extracting %s", list.Canonical)

	fetched := e.fetcher.Fetch(ctx, list)
	result.Attempts = fetched.Attempts
	if !fetched.Success {
		kind := fetched.TerminalError
		if kind == "" {
			kind = types.ErrAllProvidersExhausted
		}
		log.Warnf("Fetch failed after %d attempts: %s", len(fetched.Attempts), kind)
		return e.fail(result, kind, fmt.Errorf("%d fetch attempts", len(fetched.Attempts)), "")
	}
	result.Provider = fetched.ProviderUsed
	log = log.WithField("provider", fetched.ProviderUsed)

	adapter, ok := e.adapters.ForKind(list.Kind)
	if !ok {
		return e.fail(result, types.ErrUnsupportedRetailer, fmt.Errorf("no adapter for %s", list.Kind), "")
	}

	extraction, err := adapter.Extract(fetched.Body, list)
	if err != nil {
		log.WithError(err).Warn("Extraction failed")
		return e.fail(result, types.ErrParseFailure, err, "")
	}
	if len(extraction.Items) == 0 {
		log.Warnf("No items found (%s)", extraction.EmptyReason)
		return e.fail(result, types.ErrZeroItemsExtracted, nil, extraction.EmptyReason)
	}

	result.Success = true
	result.Items = extraction.Items
	result.Method = extraction.Method
	log.Infof("Extracted %d items via %s in %v", len(result.Items), result.Method, time.Since(startTime))
	return result
}

func (e *Extractor) fail(result *Result, kind types.ErrorKind, cause error, empty types.EmptyReason) *Result {
	var pipelineErr *types.PipelineError
	if errors.As(cause, &pipelineErr) && pipelineErr.Kind == kind {
		result.Err = pipelineErr
	} else {
		result.Err = types.NewPipelineError(kind, cause)
	}
	result.Success = false
	result.Items = nil
	result.Message, result.RequiresManualUpload = messageFor(kind, result.Retailer, result.Attempts, empty)
	return result
}

// ExtractToJSON runs Extract and saves the result to a JSON file.
func (e *Extractor) ExtractToJSON(ctx context.Context, rawURL, filename string) (*Result, error) {
	result := e.Extract(ctx, rawURL)

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return result, fmt.Errorf("failed to marshal result to JSON: %w", err)
	}
	if err := writeToFile(filename, jsonData); err != nil {
		return result, fmt.Errorf("failed to write result to file: %w", err)
	}

	e.logger.WithFields(logrus.Fields{"run": result.RunID}).Infof("Result saved to %s", filename)
	return result, nil
}

// writeToFile writes data to a file
func writeToFile(filename string, data []byte) error {
	return os.WriteFile(filename, data, 0644)
}
