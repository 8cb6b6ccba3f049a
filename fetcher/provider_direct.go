package fetcher

import (
	"context"

	"wishlist-extractor/internal/types"
	"wishlist-extractor/utils"
)

type directProvider struct {
	client *utils.HTTPClient
}

func newDirectProvider(client *utils.HTTPClient) Provider {
	return &directProvider{client: client}
}

func (p *directProvider) ID() types.ProviderID {
	return types.ProviderDirect
}

// Fetch sends a plain browser-like GET. Block pages come back as ordinary
// responses so the classifier can judge them.
func (p *directProvider) Fetch(ctx context.Context, target string) (*Response, error) {
	page, err := p.client.Get(ctx, target)
	if err != nil {
		return nil, err
	}
	return &Response{Status: page.Status, Body: page.Body}, nil
}
