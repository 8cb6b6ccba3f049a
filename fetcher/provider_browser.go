package fetcher

import (
	"context"
	"net/http"

	"wishlist-extractor/internal/types"
	"wishlist-extractor/utils"
)

type browserProvider struct {
	browser    *utils.BrowserClient
	identities *utils.HTTPClient
}

func newBrowserProvider(browser *utils.BrowserClient, identities *utils.HTTPClient) Provider {
	return &browserProvider{browser: browser, identities: identities}
}

func (p *browserProvider) ID() types.ProviderID {
	return types.ProviderBrowser
}

// Fetch renders the page in headless Chrome. The browser does not expose the
// document status, so a rendered page is reported as 200.
func (p *browserProvider) Fetch(ctx context.Context, target string) (*Response, error) {
	html, err := p.browser.GetPageContent(ctx, target, p.identities.NextIdentity().UserAgent)
	if err != nil {
		return nil, err
	}
	return &Response{Status: http.StatusOK, Body: html}, nil
}
