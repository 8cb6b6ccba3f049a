package classifier

import (
	"net/url"
	"regexp"
	"strings"

	"wishlist-extractor/internal/types"
)

// urlRule maps a host and a set of path fragments to a retailer kind.
// A domain ending in "." matches that label under any TLD (amazon.co.uk).
type urlRule struct {
	domain string
	paths  []string
	kind   types.RetailerKind
}

// Registry rules come before wishlist rules for the same host.
var urlRules = []urlRule{
	{domain: "amazon.", paths: []string{"/registries/", "/baby-reg/", "/wedding/registry", "/wedding/share", "/gp/registry/registry", "/registry/baby", "/registry/wedding"}, kind: types.AmazonRegistry},
	{domain: "amazon.", paths: []string{"/hz/wishlist/", "/wishlist/", "/gp/registry/wishlist"}, kind: types.AmazonWishlist},
	{domain: "target.com", paths: []string{"/gift-registry/"}, kind: types.TargetRegistry},
	{domain: "walmart.com", paths: []string{"/registry/"}, kind: types.WalmartRegistry},
	{domain: "walmart.com", paths: []string{"/lists/", "/wishlist"}, kind: types.WalmartWishlist},
}

const targetCanonicalBase = "https://www.target.com/gift-registry/gift-giver?registryId="

var targetPathID = regexp.MustCompile(`(?i)/gift-registry/(?:gift|registry|view|giftgiver)/([^/?#]+)`)

// ClassifyURL maps an arbitrary input URL to its retailer kind and canonical
// form. It never fails: anything unrecognised is Unsupported.
func ClassifyURL(raw string) types.ListURL {
	result := types.ListURL{
		Raw:       raw,
		Canonical: strings.TrimSpace(raw),
		Kind:      types.Unsupported,
	}

	u, ok := parseLoose(raw)
	if !ok {
		return result
	}

	host := strings.ToLower(u.Hostname())
	path := strings.ToLower(u.EscapedPath())
	for _, rule := range urlRules {
		if !hostMatches(host, rule.domain) || !containsAny(path, rule.paths) {
			continue
		}
		result.Kind = rule.kind
		result.Canonical = canonicalize(rule.kind, u)
		return result
	}

	return result
}

// Canonicalize returns the canonical form of raw. Applying it to its own
// output returns the same string.
func Canonicalize(raw string) string {
	return ClassifyURL(raw).Canonical
}

func parseLoose(raw string) (*url.URL, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, false
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return nil, false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, false
	}
	return u, true
}

func hostMatches(host, domain string) bool {
	if label, ok := strings.CutSuffix(domain, "."); ok {
		parts := strings.Split(host, ".")
		for _, p := range parts[:len(parts)-1] {
			if p == label {
				return true
			}
		}
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func canonicalize(kind types.RetailerKind, u *url.URL) string {
	if kind == types.TargetRegistry {
		if id := targetRegistryID(u); id != "" {
			return targetCanonicalBase + url.QueryEscape(id)
		}
	}

	c := *u
	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = strings.ToLower(c.Host)
	c.Fragment = ""
	c.RawFragment = ""
	return c.String()
}

// targetRegistryID pulls the registry identifier out of any of the URL
// shapes Target uses for the same registry.
func targetRegistryID(u *url.URL) string {
	q := u.Query()
	for _, key := range []string{"registryId", "registry_id", "registryid"} {
		if id := strings.TrimSpace(q.Get(key)); id != "" {
			return id
		}
	}
	if m := targetPathID.FindStringSubmatch(u.Path); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
