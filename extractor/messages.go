package extractor

import (
	"wishlist-extractor/internal/types"
)

var retailerNames = map[types.RetailerKind]string{
	types.AmazonWishlist:  "Amazon",
	types.AmazonRegistry:  "Amazon",
	types.TargetRegistry:  "Target",
	types.WalmartWishlist: "Walmart",
	types.WalmartRegistry: "Walmart",
}

// messageFor returns the user-facing message for a failed run and whether
// the user should upload the items by hand.
func messageFor(kind types.ErrorKind, retailer types.RetailerKind, attempts []types.FetchAttempt, empty types.EmptyReason) (string, bool) {
	name, ok := retailerNames[retailer]
	if !ok {
		name = "This retailer"
	}

	switch kind {
	case types.ErrUnsupportedRetailer:
		return "This retailer or list URL is not supported. We can import Amazon wishlists and registries, Target registries, and Walmart lists and registries.", false

	case types.ErrAllProvidersExhausted:
		if looksPrivate(attempts) {
			return "This list appears to be private. Make sure it is shared publicly, then try again.", false
		}
		// Every strategy was blocked; no automated path is left.
		return name + " is blocking automated access to this list right now. Please upload your items manually.", true

	case types.ErrZeroItemsExtracted:
		if empty == types.EmptyShellPage {
			return "The list page loaded without any item data, so we couldn't find any items. The list may be empty or may need to be shared publicly.", false
		}
		return "We couldn't find any items on this list.", false

	case types.ErrNetworkFailure:
		return "We couldn't reach the list in time. Please try again.", false

	case types.ErrParseFailure:
		return "We couldn't read this list page.", false
	}
	return "Extraction failed.", false
}

// looksPrivate reports whether every attempt reached the site and was turned
// away as private or login-only.
func looksPrivate(attempts []types.FetchAttempt) bool {
	if len(attempts) == 0 {
		return false
	}
	for _, a := range attempts {
		switch a.Classification {
		case types.VerdictRestricted, types.VerdictLoginRequired:
		default:
			return false
		}
	}
	return true
}
