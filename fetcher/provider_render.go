package fetcher

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"wishlist-extractor/internal/types"
)

// renderWaitMs is how long the proxy lets client-side scripts run.
const renderWaitMs = "3000"

// renderProxyProvider fetches through a JavaScript-rendering scraping API
// that takes the key and target as query parameters.
type renderProxyProvider struct {
	cfg    types.ProviderConfig
	client *http.Client
	limit  int64
}

func newRenderProxyProvider(cfg types.ProviderConfig, limit int64) Provider {
	if !cfg.Configured() {
		return nil
	}
	return &renderProxyProvider{cfg: cfg, client: providerClient(cfg.Timeout), limit: limit}
}

func (p *renderProxyProvider) ID() types.ProviderID {
	return types.ProviderRenderProxy
}

func (p *renderProxyProvider) Fetch(ctx context.Context, target string) (*Response, error) {
	return getPage(ctx, p.client, p.endpoint(target), p.limit)
}

func (p *renderProxyProvider) endpoint(target string) string {
	q := url.Values{}
	q.Set("api_key", p.cfg.APIKey)
	q.Set("url", target)
	q.Set("render_js", "true")
	q.Set("wait", renderWaitMs)

	base := strings.TrimSpace(p.cfg.BaseURL)
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q.Encode()
}
