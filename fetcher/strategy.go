package fetcher

import (
	"wishlist-extractor/internal/types"
	"wishlist-extractor/utils"
)

// Strategy is one step of a retailer's fetch plan.
type Strategy struct {
	Provider types.ProviderID
	Backoff  utils.Backoff
}

// StrategyTable maps each retailer kind to its ordered fetch plan.
type StrategyTable map[types.RetailerKind][]Strategy

// DefaultStrategies returns the fetch plans tuned per retailer. Paid
// providers and the browser get one attempt each; only direct fetches retry.
func DefaultStrategies(config *types.Config) StrategyTable {
	direct := func(attempts int) Strategy {
		if config.MaxRetries < attempts {
			attempts = config.MaxRetries
		}
		return Strategy{
			Provider: types.ProviderDirect,
			Backoff: utils.Backoff{
				MaxAttempts: attempts,
				BaseDelay:   config.RetryBaseDelay,
				MaxDelay:    config.RetryMaxDelay,
				Jitter:      0.5,
			},
		}
	}
	once := func(id types.ProviderID) Strategy {
		return Strategy{Provider: id, Backoff: utils.NoRetry()}
	}

	return StrategyTable{
		types.AmazonWishlist: {
			direct(3), once(types.ProviderUnlocker), once(types.ProviderRenderProxy), once(types.ProviderBrowser),
		},
		// Registry pages are blocked far more often than wishlists, so the
		// unlocker goes first.
		types.AmazonRegistry: {
			once(types.ProviderUnlocker), direct(3), once(types.ProviderRenderProxy), once(types.ProviderBrowser),
		},
		// Target registries render client-side; a plain GET rarely carries items.
		types.TargetRegistry: {
			once(types.ProviderRenderProxy), direct(2), once(types.ProviderUnlocker), once(types.ProviderBrowser),
		},
		types.WalmartWishlist: {
			direct(3), once(types.ProviderUnlocker), once(types.ProviderBrowser),
		},
		types.WalmartRegistry: {
			direct(3), once(types.ProviderUnlocker), once(types.ProviderBrowser),
		},
	}
}
