package classifier

import (
	"strings"

	"wishlist-extractor/internal/types"
)

// markerTable holds lower-case substrings that signal a page state.
// Anchors are structural signals of a real list page; a body carrying one
// is never judged TooSmall.
type markerTable struct {
	blocked    []string
	login      []string
	restricted []string
	anchors    []string
}

// Applied to every retailer.
var genericMarkers = markerTable{
	blocked: []string{
		"attention required! | cloudflare",
		"cf-browser-verification",
		"<title>just a moment...</title>",
		"request unsuccessful. incapsula incident",
		"<title>access denied</title>",
		"verify you are a human",
		"px-captcha",
	},
}

// Retailer tables. Markers for one retailer are never applied to another:
// "sign in" copy on one site is routine header text on another.
var retailerMarkers = map[types.RetailerKind]markerTable{
	types.AmazonWishlist: amazonMarkers,
	types.AmazonRegistry: amazonMarkers,
	types.TargetRegistry: {
		blocked: []string{
			"access to this page has been denied",
			"please verify you are a human",
		},
		login: []string{
			"sign into your target account",
			"<title>sign in : target</title>",
		},
		restricted: []string{
			"registry not found",
			"we can't find that registry",
			"we couldn't find that registry",
			"this registry is private",
			"registry is no longer available",
		},
		anchors: []string{"__tgt_data__", "__next_data__", "registry_items", "registryitems", "data-test=\"registry-item"},
	},
	types.WalmartWishlist: walmartMarkers,
	types.WalmartRegistry: walmartMarkers,
}

var amazonMarkers = markerTable{
	blocked: []string{
		"/errors/validatecaptcha",
		"enter the characters you see below",
		"sorry, we just need to make sure you're not a robot",
		"to discuss automated access to amazon data please contact",
		"<title>robot check</title>",
	},
	login: []string{
		"<title>amazon sign-in</title>",
		"<title>amazon sign in</title>",
		"id=\"ap_email\"",
	},
	restricted: []string{
		"this list is private",
		"this list is no longer available",
		"we couldn't find that registry",
		"this registry is no longer available",
		"this registry is private",
		"<title>page not found</title>",
	},
	anchors: []string{"id=\"g-items\"", "data-itemid=", "id=\"wl-item-view\"", "registryitems", "gr-item", "type=\"a-state\""},
}

var walmartMarkers = markerTable{
	blocked: []string{
		"<title>robot or human?</title>",
		"activate and hold the button to confirm that you're human",
		"press & hold",
		"press &amp; hold",
		"/blocked?url=",
	},
	login: []string{
		"sign in to your account",
		"<title>login | walmart",
		"/account/login?returnurl",
	},
	restricted: []string{
		"this list is private",
		"this list is no longer available",
		"list not found",
		"registry not found",
		"this registry is no longer active",
	},
	anchors: []string{"__next_data__", "data-item-id=", "\"usitemid\""},
}

// Judge classifies fetched bodies using the per-retailer marker tables and
// the configured size thresholds.
type Judge struct {
	config *types.Config
}

// NewJudge creates a Judge. A nil config uses the defaults.
func NewJudge(config *types.Config) *Judge {
	if config == nil {
		config = types.DefaultConfig()
	}
	return &Judge{config: config}
}

// Judge returns the verdict for body fetched for the given retailer.
func (j *Judge) Judge(kind types.RetailerKind, body string) types.Verdict {
	return JudgeResponse(kind, body, j.config.MinBodyFor(kind))
}

// JudgeResponse is the pure classification function behind Judge. It is
// total: every input gets a verdict.
func JudgeResponse(kind types.RetailerKind, body string, minBytes int) types.Verdict {
	if strings.TrimSpace(body) == "" {
		return types.VerdictTooSmall
	}

	lower := strings.ToLower(body)
	specific := retailerMarkers[kind]

	switch {
	case containsAny(lower, genericMarkers.blocked), containsAny(lower, specific.blocked):
		return types.VerdictBlockedOrCaptcha
	case containsAny(lower, specific.login):
		return types.VerdictLoginRequired
	case containsAny(lower, specific.restricted):
		return types.VerdictRestricted
	}

	if len(body) < minBytes && !containsAny(lower, specific.anchors) {
		return types.VerdictTooSmall
	}
	return types.VerdictUsable
}
