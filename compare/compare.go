// Package compare partitions a freshly extracted list against the stored one.
package compare

import (
	"sort"

	"wishlist-extractor/internal/types"
)

// Compare matches existing and fresh items by types.ItemKey. Every key lands
// in exactly one bucket:
//
//   - only in existing, or in both with equal fields: Unchanged (existing copy)
//   - in both with different fields: Changed
//   - only in fresh: Added
//
// The result does not depend on input order. When one side repeats a key,
// the smallest of its items by (name, price, link, image) represents it.
// Buckets are sorted by key.
func Compare(existing, fresh []types.NormalizedItem) types.ComparisonResult {
	old := index(existing)
	cur := index(fresh)

	result := types.ComparisonResult{
		Unchanged: []types.NormalizedItem{},
		Added:     []types.NormalizedItem{},
		Changed:   []types.ChangedPair{},
	}

	for _, key := range sortedKeys(old) {
		before := old[key]
		after, ok := cur[key]
		switch {
		case !ok, after == before:
			result.Unchanged = append(result.Unchanged, before)
		default:
			result.Changed = append(result.Changed, types.ChangedPair{Existing: before, Fresh: after})
		}
	}

	for _, key := range sortedKeys(cur) {
		if _, ok := old[key]; !ok {
			result.Added = append(result.Added, cur[key])
		}
	}

	result.Summary = types.ComparisonSummary{
		UnchangedCount: len(result.Unchanged),
		AddedCount:     len(result.Added),
		ChangedCount:   len(result.Changed),
	}
	return result
}

func index(items []types.NormalizedItem) map[string]types.NormalizedItem {
	out := make(map[string]types.NormalizedItem, len(items))
	for _, item := range items {
		key := types.ItemKey(item)
		if prev, ok := out[key]; ok && !less(item, prev) {
			continue
		}
		out[key] = item
	}
	return out
}

func less(a, b types.NormalizedItem) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	if a.Link != b.Link {
		return a.Link < b.Link
	}
	return a.Image < b.Image
}

func sortedKeys(m map[string]types.NormalizedItem) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
