package adapters

import (
	"fmt"
	"html"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Retailers wrap the interesting fields of an entry in one of these objects
// about as often as they put them at the top level.
var wrapperPrefixes = []string{"", "product.", "item.", "productDetails."}

// pick returns the first present value at any of the paths, trying the entry
// itself before its wrapper objects.
func pick(r gjson.Result, paths ...string) gjson.Result {
	for _, prefix := range wrapperPrefixes {
		for _, path := range paths {
			if v := r.Get(prefix + path); present(v) {
				return v
			}
		}
	}
	return gjson.Result{}
}

func present(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null:
		return false
	case gjson.String:
		return strings.TrimSpace(v.Str) != ""
	case gjson.JSON:
		raw := strings.TrimSpace(v.Raw)
		return raw != "{}" && raw != "[]"
	}
	return true
}

// textOf flattens a value to a string. Arrays yield their first element and
// objects their first url-like or text-like member, which covers image lists
// and {"url": ...} image objects.
func textOf(v gjson.Result) string {
	switch {
	case v.IsArray():
		arr := v.Array()
		if len(arr) == 0 {
			return ""
		}
		return textOf(arr[0])
	case v.IsObject():
		for _, key := range []string{"url", "src", "href", "value", "text", "displayString"} {
			if s := textOf(v.Get(key)); s != "" {
				return s
			}
		}
		return ""
	case v.Type == gjson.String, v.Type == gjson.Number:
		return strings.TrimSpace(v.String())
	}
	return ""
}

// priceOf reads a price that may be a display string, a bare number, or an
// object holding either.
func priceOf(v gjson.Result) (string, *float64) {
	switch {
	case v.Type == gjson.Number:
		f := v.Float()
		return "", &f
	case v.Type == gjson.String:
		return strings.TrimSpace(v.Str), nil
	case v.IsObject():
		for _, key := range []string{"priceString", "displayString", "formattedPrice", "formatted_current_price", "formatted", "text"} {
			if s := v.Get(key); s.Type == gjson.String && strings.TrimSpace(s.Str) != "" {
				return strings.TrimSpace(s.Str), nil
			}
		}
		for _, key := range []string{"amount", "value", "price", "current_retail", "currentPrice"} {
			if n := v.Get(key); n.Type == gjson.Number {
				f := n.Float()
				return "", &f
			}
		}
		for _, key := range []string{"currentPrice", "current"} {
			if inner := v.Get(key); inner.IsObject() {
				return priceOf(inner)
			}
		}
	}
	return "", nil
}

// formatPrice prefers the retailer's own display text. Bare numbers, whether
// given as text or as an amount, are rendered as dollars. Amazon marks
// unavailable items with an infinite price; those get no price.
func formatPrice(text string, amount *float64) string {
	text = strings.Join(strings.Fields(text), " ")
	if text != "" {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return text
		}
		amount = &f
	}
	if amount == nil || math.IsInf(*amount, 0) || math.IsNaN(*amount) || *amount < 0 {
		return ""
	}
	return fmt.Sprintf("$%.2f", *amount)
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}

// absolute resolves href against base and drops the fragment. Script and
// data links resolve to nothing.
func absolute(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "data:") {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if b, err := url.Parse(base); err == nil {
		ref = b.ResolveReference(ref)
	}
	ref.Fragment = ""
	return ref.String()
}

// originOf returns scheme://host of a canonical list URL.
func originOf(canonical string) string {
	u, err := url.Parse(canonical)
	if err != nil || u.Host == "" {
		return ""
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return scheme + "://" + u.Host
}

func join(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
