package fetcher

import (
	"context"
	"net/http"
	"strings"

	"wishlist-extractor/internal/types"
)

// unlockerProvider fetches through an anti-bot unlocking API that takes a
// JSON request body and a bearer key.
type unlockerProvider struct {
	cfg    types.ProviderConfig
	client *http.Client
	limit  int64
}

func newUnlockerProvider(cfg types.ProviderConfig, limit int64) Provider {
	if !cfg.Configured() {
		return nil
	}
	return &unlockerProvider{cfg: cfg, client: providerClient(cfg.Timeout), limit: limit}
}

func (p *unlockerProvider) ID() types.ProviderID {
	return types.ProviderUnlocker
}

func (p *unlockerProvider) Fetch(ctx context.Context, target string) (*Response, error) {
	payload := map[string]any{
		"url":    target,
		"format": "raw",
	}
	if p.cfg.Zone != "" {
		payload["zone"] = p.cfg.Zone
	}
	headers := map[string]string{
		"Authorization": "Bearer " + p.cfg.APIKey,
	}
	return postJSON(ctx, p.client, strings.TrimSpace(p.cfg.BaseURL), headers, payload, p.limit)
}
