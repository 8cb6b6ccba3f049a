package adapters

import (
	"wishlist-extractor/internal/types"
)

// Adapter extracts list items from a fetched page for one retailer.
type Adapter interface {
	Name() string
	Kinds() []types.RetailerKind
	Extract(body string, list types.ListURL) (types.Extraction, error)
}

// Set dispatches retailer kinds to adapters.
type Set map[types.RetailerKind]Adapter

// NewAll creates one adapter per retailer, registered under every kind it
// serves.
func NewAll(config *types.Config, logger types.Logger) Set {
	set := make(Set)
	for _, a := range []Adapter{
		NewAmazonAdapter(config, logger),
		NewTargetAdapter(config, logger),
		NewWalmartAdapter(config, logger),
	} {
		for _, kind := range a.Kinds() {
			set[kind] = a
		}
	}
	return set
}

// ForKind returns the adapter for kind.
func (s Set) ForKind(kind types.RetailerKind) (Adapter, bool) {
	a, ok := s[kind]
	return a, ok
}
