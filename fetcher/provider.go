package fetcher

import (
	"context"
	"fmt"
	"sort"

	"wishlist-extractor/internal/types"
	"wishlist-extractor/utils"
)

// Response is the raw page returned by a provider.
type Response struct {
	Status int
	Body   string
}

// Provider fetches the page for a list URL through one backend.
type Provider interface {
	ID() types.ProviderID
	Fetch(ctx context.Context, target string) (*Response, error)
}

// StatusError is returned by providers whose backend answered with a
// non-2xx status of its own.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("http %d: %s", e.Status, body)
}

// Registry stores providers by ID. A provider that is not registered is
// unavailable and its strategies are skipped.
type Registry struct {
	providers map[types.ProviderID]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[types.ProviderID]Provider)}
}

// Register adds or replaces a provider by ID.
func (r *Registry) Register(provider Provider) {
	if r == nil || provider == nil {
		return
	}
	if r.providers == nil {
		r.providers = make(map[types.ProviderID]Provider)
	}
	r.providers[provider.ID()] = provider
}

// Get returns a provider by ID, or nil.
func (r *Registry) Get(id types.ProviderID) Provider {
	if r == nil {
		return nil
	}
	return r.providers[id]
}

// IDs returns the registered provider IDs in sorted order.
func (r *Registry) IDs() []types.ProviderID {
	if r == nil {
		return nil
	}
	out := make([]types.ProviderID, 0, len(r.providers))
	for id := range r.providers {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DefaultRegistry registers every provider the configuration enables. The
// direct provider is always present; the paid providers need a base URL and
// key, and the browser must be switched on.
func DefaultRegistry(config *types.Config, logger types.Logger) *Registry {
	registry := NewRegistry()
	client := utils.NewHTTPClient(config, logger)

	registry.Register(newDirectProvider(client))
	if p := newRenderProxyProvider(config.RenderProxy, config.MaxBodyBytes); p != nil {
		registry.Register(p)
	}
	if p := newUnlockerProvider(config.Unlocker, config.MaxBodyBytes); p != nil {
		registry.Register(p)
	}
	if config.UseHeadlessBrowser {
		registry.Register(newBrowserProvider(utils.NewBrowserClient(config, logger), client))
	}

	logger.Debugf("Fetch providers available: %v", registry.IDs())
	return registry
}
