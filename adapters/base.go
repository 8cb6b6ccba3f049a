package adapters

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"wishlist-extractor/internal/types"
)

// domFields are the per-field strings read from one item container or one
// product anchor.
type domFields struct {
	Name  string
	Price string
	Link  string
	Image string
	ID    string
}

// domRule describes one item container and where each field lives inside
// it. Field specs are "selector" for text or "selector@attr" for an
// attribute; an empty selector means the container itself. Specs are tried
// in order and the first non-empty value wins.
type domRule struct {
	Container string
	Name      []string
	Price     []string
	Link      []string
	Image     []string
	ID        []string
}

func (r domRule) read(s *goquery.Selection) domFields {
	return domFields{
		Name:  firstOf(s, r.Name),
		Price: firstOf(s, r.Price),
		Link:  firstOf(s, r.Link),
		Image: firstOf(s, r.Image),
		ID:    firstOf(s, r.ID),
	}
}

func firstOf(s *goquery.Selection, specs []string) string {
	for _, spec := range specs {
		selector, attr, _ := strings.Cut(spec, "@")

		target := s
		if selector != "" {
			target = s.Find(selector).First()
		}
		if target.Length() == 0 {
			continue
		}

		var value string
		if attr != "" {
			value, _ = target.Attr(attr)
		} else {
			value = target.Text()
		}
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}

// profile is everything that differs between retailers. The extraction
// strategies themselves are shared.
type profile struct {
	name   string
	kinds  []types.RetailerKind
	origin string

	scripts    []string
	knownPaths []string
	dom        []domRule

	// productLink matches product page hrefs; group 1 is the product ID.
	productLink *regexp.Regexp

	fromJSON func(gjson.Result) types.RawItem
	fromDOM  func(domFields) types.RawItem
}

// BaseAdapter runs the ordered extraction strategies for one retailer
// profile. It holds no per-page state and is safe for concurrent use.
type BaseAdapter struct {
	config  *types.Config
	logger  types.Logger
	profile profile
}

// NewBaseAdapter creates a base adapter for the given retailer profile.
func NewBaseAdapter(config *types.Config, logger types.Logger, p profile) *BaseAdapter {
	if len(p.scripts) == 0 {
		p.scripts = defaultScriptSelectors
	}
	return &BaseAdapter{config: config, logger: logger, profile: p}
}

// Name returns the retailer name.
func (b *BaseAdapter) Name() string {
	return b.profile.name
}

// Kinds returns the list kinds this adapter extracts.
func (b *BaseAdapter) Kinds() []types.RetailerKind {
	return b.profile.kinds
}

// ParseHTML parses HTML content into a goquery document
func (b *BaseAdapter) ParseHTML(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

type strategy struct {
	method types.ExtractMethod
	run    func() ([]types.RawItem, error)
}

// Extract tries known paths, deep search, DOM selectors and link harvest in
// that order and returns the first non-empty result. A failing strategy is
// logged and skipped. An empty result is not an error; it carries the
// reason instead.
func (b *BaseAdapter) Extract(body string, list types.ListURL) (types.Extraction, error) {
	doc, err := b.ParseHTML(body)
	if err != nil {
		return types.Extraction{}, types.NewPipelineError(types.ErrParseFailure, fmt.Errorf("failed to parse page: %w", err))
	}

	log := b.logger.WithFields(logrus.Fields{
		"retailer": list.Kind,
		"adapter":  b.profile.name,
	})

	base := originOf(list.Canonical)
	if base == "" {
		base = b.profile.origin
	}

	blobs := findBlobs(doc, b.profile.scripts)
	log.Debugf("Found %d embedded JSON blobs", len(blobs))

	strategies := []strategy{
		{types.MethodKnownPath, func() ([]types.RawItem, error) { return b.knownPaths(blobs) }},
		{types.MethodDeepSearch, func() ([]types.RawItem, error) { return b.deepSearch(blobs) }},
		{types.MethodDOM, func() ([]types.RawItem, error) { return b.domItems(doc) }},
		{types.MethodLinks, func() ([]types.RawItem, error) { return b.harvestLinks(doc) }},
	}

	for _, s := range strategies {
		raw, err := runStrategy(s.run)
		if err != nil {
			log.WithError(err).Warnf("Extraction strategy %s failed", s.method)
			continue
		}

		items := normalizeAll(raw, base)
		log.Debugf("Strategy %s: %d raw, %d usable items", s.method, len(raw), len(items))
		if len(items) > 0 {
			return types.Extraction{Items: items, Method: s.method}, nil
		}
	}

	reason := types.EmptyNoMatches
	if len(blobs) == 0 && !b.hasItemMarkup(doc) {
		reason = types.EmptyShellPage
	}
	log.Debugf("No items extracted (%s)", reason)
	return types.Extraction{Items: []types.NormalizedItem{}, EmptyReason: reason}, nil
}

// runStrategy converts errors and panics from a strategy into parse failures.
func runStrategy(run func() ([]types.RawItem, error)) (raw []types.RawItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			raw = nil
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			err = types.NewPipelineError(types.ErrParseFailure, err)
		}
	}()
	return run()
}

func (b *BaseAdapter) knownPaths(blobs []string) ([]types.RawItem, error) {
	for _, raw := range blobs {
		for _, path := range b.profile.knownPaths {
			res := gjson.Get(raw, path)
			if !res.IsArray() {
				continue
			}
			items := b.fromArray(res)
			if !b.anyUsable(items) {
				continue
			}
			b.logger.Debugf("Known path %q matched %d entries", path, len(items))
			return items, nil
		}
	}
	return nil, nil
}

func (b *BaseAdapter) deepSearch(blobs []string) ([]types.RawItem, error) {
	search := newDeepSearch(b.config.DeepSearchMaxDepth, b.config.DeepSearchMaxNodes)

	for _, raw := range blobs {
		dec := json.NewDecoder(strings.NewReader(raw))
		dec.UseNumber()

		var root any
		if err := dec.Decode(&root); err != nil {
			continue
		}

		found, err := search.find(root)
		if err != nil {
			return nil, err
		}
		if found == nil {
			continue
		}

		data, err := json.Marshal(found)
		if err != nil {
			return nil, fmt.Errorf("failed to re-encode search result: %w", err)
		}
		return b.fromArray(gjson.ParseBytes(data)), nil
	}
	return nil, nil
}

func (b *BaseAdapter) fromArray(res gjson.Result) []types.RawItem {
	var items []types.RawItem
	for _, entry := range res.Array() {
		if entry.IsObject() {
			items = append(items, b.profile.fromJSON(entry))
		}
	}
	return items
}

// anyUsable reports whether at least one entry normalizes into an item.
// Paths and containers holding only nameless entries are passed over.
func (b *BaseAdapter) anyUsable(raw []types.RawItem) bool {
	for _, r := range raw {
		if r == nil {
			continue
		}
		if _, ok := r.Normalize(b.profile.origin); ok {
			return true
		}
	}
	return false
}

// domItems returns the entries of the first container selector that
// yields a named entry.
func (b *BaseAdapter) domItems(doc *goquery.Document) ([]types.RawItem, error) {
	for _, rule := range b.profile.dom {
		var items []types.RawItem
		doc.Find(rule.Container).Each(func(i int, s *goquery.Selection) {
			items = append(items, b.profile.fromDOM(rule.read(s)))
		})
		if b.anyUsable(items) {
			b.logger.Debugf("Container %q matched %d entries", rule.Container, len(items))
			return items, nil
		}
	}
	return nil, nil
}

// harvestLinks builds entries from product anchors anywhere in the page.
func (b *BaseAdapter) harvestLinks(doc *goquery.Document) ([]types.RawItem, error) {
	if b.profile.productLink == nil {
		return nil, nil
	}

	var items []types.RawItem
	doc.Find("a[href]").Each(func(i int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		m := b.profile.productLink.FindStringSubmatch(href)
		if m == nil {
			return
		}

		fields := domFields{Link: href, Name: strings.TrimSpace(a.Text())}
		if len(m) > 1 {
			fields.ID = m[1]
		}
		if fields.Name == "" {
			fields.Name, _ = a.Attr("title")
		}
		img := a.Find("img").First()
		if fields.Name == "" {
			fields.Name, _ = img.Attr("alt")
		}
		fields.Image, _ = img.Attr("src")

		items = append(items, b.profile.fromDOM(fields))
	})
	return items, nil
}

// hasItemMarkup reports whether the page carries any item container or
// product anchor, matched or not.
func (b *BaseAdapter) hasItemMarkup(doc *goquery.Document) bool {
	for _, rule := range b.profile.dom {
		if doc.Find(rule.Container).Length() > 0 {
			return true
		}
	}
	if b.profile.productLink == nil {
		return false
	}

	found := false
	doc.Find("a[href]").EachWithBreak(func(i int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		found = b.profile.productLink.MatchString(href)
		return !found
	})
	return found
}

// normalizeAll drops nameless entries and keeps the first of each ItemKey.
func normalizeAll(raw []types.RawItem, base string) []types.NormalizedItem {
	items := make([]types.NormalizedItem, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for _, r := range raw {
		if r == nil {
			continue
		}
		item, ok := r.Normalize(base)
		if !ok {
			continue
		}
		key := types.ItemKey(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, item)
	}
	return items
}

// Inspection summarizes what a page offers each extraction strategy.
type Inspection struct {
	Blobs        int `json:"blobs"`
	Containers   int `json:"containers"`
	ProductLinks int `json:"productLinks"`
}

// Inspect counts embedded blobs, item containers and product anchors
// without extracting anything.
func (b *BaseAdapter) Inspect(body string) (Inspection, error) {
	doc, err := b.ParseHTML(body)
	if err != nil {
		return Inspection{}, fmt.Errorf("failed to parse page: %w", err)
	}

	var in Inspection
	in.Blobs = len(findBlobs(doc, b.profile.scripts))
	for _, rule := range b.profile.dom {
		in.Containers += doc.Find(rule.Container).Length()
	}
	if b.profile.productLink != nil {
		doc.Find("a[href]").Each(func(i int, a *goquery.Selection) {
			if href, _ := a.Attr("href"); b.profile.productLink.MatchString(href) {
				in.ProductLinks++
			}
		})
	}
	return in, nil
}
