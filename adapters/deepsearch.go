package adapters

import (
	"errors"
	"reflect"
	"sort"
	"strings"
)

var errNodeBudget = errors.New("deep search node budget exhausted")

// Field groups that make a JSON object look like a list entry. Keys are
// compared lower-cased.
var productFieldGroups = map[string][]string{
	"title": {"name", "title", "productname", "producttitle", "product_name", "displayname", "itemname", "item_title"},
	"price": {"price", "pricestring", "currentprice", "formattedprice", "priceinfo", "offerprice", "current_retail", "listprice"},
	"image": {"image", "imageurl", "image_url", "images", "thumbnail", "thumbnailurl", "primaryimage", "imageinfo"},
	"url":   {"url", "link", "href", "producturl", "canonicalurl", "detailpageurl", "buy_url"},
}

// deepSearch walks decoded JSON looking for the first array whose first
// element is product-shaped. The walk is an explicit depth-first worklist
// with keys visited in sorted order, so results are deterministic.
type deepSearch struct {
	maxDepth int
	maxNodes int
	nodes    int
}

type frame struct {
	value any
	depth int
}

type nodeID struct {
	ptr uintptr
	n   int
}

func newDeepSearch(maxDepth, maxNodes int) *deepSearch {
	if maxDepth <= 0 {
		maxDepth = 12
	}
	return &deepSearch{maxDepth: maxDepth, maxNodes: maxNodes}
}

// find returns the first product-shaped array under root, or nil. The node
// budget is shared across calls on the same deepSearch.
func (d *deepSearch) find(root any) ([]any, error) {
	stack := []frame{{value: root}}
	visited := make(map[nodeID]bool)

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		d.nodes++
		if d.maxNodes > 0 && d.nodes > d.maxNodes {
			return nil, errNodeBudget
		}

		switch v := f.value.(type) {
		case map[string]any:
			id := nodeID{ptr: reflect.ValueOf(v).Pointer(), n: -1}
			if visited[id] || f.depth >= d.maxDepth {
				continue
			}
			visited[id] = true

			keys := make([]string, 0, len(v))
			for k, child := range v {
				if isContainer(child) {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)
			for i := len(keys) - 1; i >= 0; i-- {
				stack = append(stack, frame{value: v[keys[i]], depth: f.depth + 1})
			}

		case []any:
			if len(v) == 0 {
				continue
			}
			id := nodeID{ptr: reflect.ValueOf(v).Pointer(), n: len(v)}
			if visited[id] {
				continue
			}
			visited[id] = true

			if looksLikeProduct(v[0]) {
				return v, nil
			}
			if f.depth >= d.maxDepth {
				continue
			}
			for i := len(v) - 1; i >= 0; i-- {
				if isContainer(v[i]) {
					stack = append(stack, frame{value: v[i], depth: f.depth + 1})
				}
			}
		}
	}
	return nil, nil
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

// looksLikeProduct requires a title plus a price or an image, looking one
// level into product and item wrappers. Name and url alone describe
// navigation entries such as breadcrumbs.
func looksLikeProduct(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}

	groups := make(map[string]bool)
	collectGroups(m, groups)
	for key, inner := range m {
		switch strings.ToLower(key) {
		case "product", "item":
			if wrapped, ok := inner.(map[string]any); ok {
				collectGroups(wrapped, groups)
			}
		}
	}

	return groups["title"] && (groups["price"] || groups["image"])
}

func collectGroups(m map[string]any, groups map[string]bool) {
	for key, value := range m {
		if value == nil {
			continue
		}
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		lower := strings.ToLower(key)
		for group, names := range productFieldGroups {
			for _, name := range names {
				if lower == name {
					groups[group] = true
				}
			}
		}
	}
}
