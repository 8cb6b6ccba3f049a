package fetcher

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"wishlist-extractor/classifier"
	"wishlist-extractor/internal/types"
)

// Orchestrator runs a retailer's fetch plan until one attempt yields a usable
// body or every strategy is exhausted. It keeps no per-run state, so one
// Orchestrator serves concurrent pipeline runs.
type Orchestrator struct {
	config     *types.Config
	logger     types.Logger
	registry   *Registry
	strategies StrategyTable
	judge      *classifier.Judge
}

// NewOrchestrator creates an Orchestrator with the default providers and plans.
func NewOrchestrator(config *types.Config, logger types.Logger) *Orchestrator {
	return NewOrchestratorWith(config, logger, DefaultRegistry(config, logger), DefaultStrategies(config))
}

// NewOrchestratorWith creates an Orchestrator with explicit providers and plans.
func NewOrchestratorWith(config *types.Config, logger types.Logger, registry *Registry, strategies StrategyTable) *Orchestrator {
	return &Orchestrator{
		config:     config,
		logger:     logger,
		registry:   registry,
		strategies: strategies,
		judge:      classifier.NewJudge(config),
	}
}

// Fetch walks the plan for list.Kind strictly in order. Every attempt is
// recorded in the returned trail, including failed ones.
func (o *Orchestrator) Fetch(ctx context.Context, list types.ListURL) types.FetchResult {
	result := types.FetchResult{Attempts: []types.FetchAttempt{}}
	log := o.logger.WithField("retailer", list.Kind)

	if !list.Kind.Supported() {
		result.TerminalError = types.ErrUnsupportedRetailer
		return result
	}

	plan := o.strategies[list.Kind]
	log.Debugf("Fetch state: not started (%d strategies)", len(plan))

	for i, strategy := range plan {
		provider := o.registry.Get(strategy.Provider)
		if provider == nil {
			log.Debugf("Strategy %d (%s) unavailable, skipping", i, strategy.Provider)
			continue
		}
		log.Debugf("Fetch state: trying strategy %d (%s)", i, strategy.Provider)

		for attempt := 1; attempt <= strategy.Backoff.Attempts(); attempt++ {
			if err := strategy.Backoff.Wait(ctx, attempt); err != nil {
				return o.expired(log, result, err)
			}

			record, body := o.try(ctx, provider, list, attempt)
			result.Attempts = append(result.Attempts, record)

			log.WithFields(logrus.Fields{
				"provider": record.Provider,
				"attempt":  attempt,
				"status":   record.HTTPStatus,
				"bytes":    record.BodyLength,
				"verdict":  record.Classification,
			}).Debug("Fetch attempt finished")

			if record.Classification == types.VerdictUsable {
				log.Debugf("Fetch state: success via %s", record.Provider)
				result.Success = true
				result.Body = body
				result.ProviderUsed = record.Provider
				return result
			}
			if record.Error != "" && ctx.Err() != nil {
				return o.expired(log, result, ctx.Err())
			}
			if !retryable(record) {
				break
			}
		}
	}

	log.Debugf("Fetch state: exhausted after %d attempts", len(result.Attempts))
	result.TerminalError = types.ErrAllProvidersExhausted
	return result
}

// try makes one attempt and classifies it. The body is returned only when the
// attempt is usable.
func (o *Orchestrator) try(ctx context.Context, provider Provider, list types.ListURL, attempt int) (types.FetchAttempt, string) {
	record := types.FetchAttempt{Provider: provider.ID(), Attempt: attempt}

	start := time.Now()
	resp, err := provider.Fetch(ctx, list.Canonical)
	record.ElapsedMs = time.Since(start).Milliseconds()

	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			record.HTTPStatus = statusErr.Status
			record.BodyLength = len(statusErr.Body)
		}
		record.Error = err.Error()
		return record, ""
	}
	if resp == nil {
		record.Error = "provider returned empty response"
		return record, ""
	}

	record.HTTPStatus = resp.Status
	record.BodyLength = len(resp.Body)
	record.Classification = o.classify(list.Kind, resp)
	if record.Classification != types.VerdictUsable {
		return record, ""
	}
	return record, resp.Body
}

// classify applies the marker tables, then the status and size floors that
// only make sense once a body looks like a real page.
func (o *Orchestrator) classify(kind types.RetailerKind, resp *Response) types.Verdict {
	verdict := o.judge.Judge(kind, resp.Body)
	if verdict != types.VerdictUsable {
		return verdict
	}

	switch {
	case resp.Status == http.StatusNotFound || resp.Status == http.StatusGone:
		return types.VerdictRestricted
	case resp.Status >= 400:
		return types.VerdictBlockedOrCaptcha
	case len(resp.Body) < o.config.MinUsableBytes:
		return types.VerdictTooSmall
	}
	return types.VerdictUsable
}

func (o *Orchestrator) expired(log types.Logger, result types.FetchResult, err error) types.FetchResult {
	log.Debugf("Fetch state: abandoned (%v)", err)
	result.Success = false
	result.Body = ""
	result.ProviderUsed = ""
	result.TerminalError = types.ErrNetworkFailure
	return result
}

// retryable reports whether the same strategy may be tried again. Private
// and login-walled lists will not change on a retry.
func retryable(record types.FetchAttempt) bool {
	if record.Error != "" {
		return true
	}
	switch record.Classification {
	case types.VerdictBlockedOrCaptcha, types.VerdictTooSmall:
		return true
	}
	return false
}
