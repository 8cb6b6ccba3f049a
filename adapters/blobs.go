package adapters

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

// defaultScriptSelectors locate script tags whose whole body is JSON.
var defaultScriptSelectors = []string{
	"script#__NEXT_DATA__",
	"script[type='application/json']",
	"script[type='a-state']",
}

var windowAssignment = regexp.MustCompile(`window\.__[A-Za-z0-9_]+__\s*=\s*|window\[["']__[A-Za-z0-9_]+__["']\]\s*=\s*`)

// findBlobs returns every embedded JSON document in the page, script-tag
// bodies first, then window.__X__ assignments. Invalid JSON is skipped.
func findBlobs(doc *goquery.Document, selectors []string) []string {
	var blobs []string
	seen := make(map[string]bool)

	add := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" || seen[raw] || !gjson.Valid(raw) {
			return
		}
		seen[raw] = true
		blobs = append(blobs, raw)
	}

	for _, selector := range selectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			add(s.Text())
		})
	}

	doc.Find("script").Each(func(i int, s *goquery.Selection) {
		for _, raw := range windowAssignments(s.Text()) {
			add(raw)
		}
	})

	return blobs
}

// windowAssignments extracts the JSON values assigned to window.__X__
// globals in a script body.
func windowAssignments(src string) []string {
	var out []string
	for _, loc := range windowAssignment.FindAllStringIndex(src, -1) {
		if raw, ok := assignedJSON(src[loc[1]:]); ok {
			out = append(out, raw)
		}
	}
	return out
}

// assignedJSON reads the first value of rest, unwrapping JSON.parse("...")
// string literals. Only double-quoted literals are understood.
func assignedJSON(rest string) (string, bool) {
	rest = strings.TrimLeft(rest, " \t\r\n")

	if after, ok := strings.CutPrefix(rest, "JSON.parse("); ok {
		var inner string
		if err := json.NewDecoder(strings.NewReader(after)).Decode(&inner); err != nil {
			return "", false
		}
		return inner, gjson.Valid(inner)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(strings.NewReader(rest)).Decode(&raw); err != nil {
		return "", false
	}
	return string(raw), true
}
