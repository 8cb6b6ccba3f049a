package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestFormatPrice(t *testing.T) {
	amount := 12.0

	assert.Equal(t, "$5.00", formatPrice(" $5.00 ", nil))
	assert.Equal(t, "$24.50", formatPrice("24.5", nil))
	assert.Equal(t, "$12.00", formatPrice("", &amount))
	assert.Equal(t, "", formatPrice("-Infinity", nil))
	assert.Equal(t, "", formatPrice("", nil))
	assert.Equal(t, "$10.00 - $20.00", formatPrice("$10.00  -\n$20.00", nil))
}

func TestPick_TriesWrappers(t *testing.T) {
	entry := gjson.Parse(`{"id":1,"product":{"title":"Crib"},"item":{"title":"ignored","image":{"url":"/i.jpg"}}}`)

	assert.Equal(t, "Crib", textOf(pick(entry, "title")))
	assert.Equal(t, "/i.jpg", textOf(pick(entry, "image")))
	assert.False(t, pick(entry, "missing").Exists())
}

func TestPriceOf(t *testing.T) {
	text, amount := priceOf(gjson.Parse(`{"priceString":"$3.99","price":3.99}`))
	assert.Equal(t, "$3.99", text)
	assert.Nil(t, amount)

	text, amount = priceOf(gjson.Parse(`{"amount":7}`))
	assert.Empty(t, text)
	if assert.NotNil(t, amount) {
		assert.Equal(t, 7.0, *amount)
	}
}

func TestAbsolute(t *testing.T) {
	base := "https://www.walmart.com"

	assert.Equal(t, "https://www.walmart.com/ip/1", absolute(base, "/ip/1#top"))
	assert.Equal(t, "https://cdn.example.com/a.jpg", absolute(base, "//cdn.example.com/a.jpg"))
	assert.Equal(t, "", absolute(base, "javascript:void(0)"))
	assert.Equal(t, "", absolute(base, "  "))
}

func TestRawItems_NormalizeRequiresName(t *testing.T) {
	_, ok := AmazonRawItem{ASIN: "B000000001"}.Normalize("https://www.amazon.com")
	assert.False(t, ok)
	_, ok = TargetRawItem{Title: " \n "}.Normalize("https://www.target.com")
	assert.False(t, ok)
	_, ok = WalmartRawItem{}.Normalize("https://www.walmart.com")
	assert.False(t, ok)
}

func TestRawItems_CanonicalLinks(t *testing.T) {
	item, ok := AmazonRawItem{Title: "A", URL: "https://www.amazon.com/Some-Thing/dp/B0ABCDEFGH?ref=wl"}.Normalize("https://www.amazon.com")
	assert.True(t, ok)
	assert.Equal(t, "https://www.amazon.com/dp/B0ABCDEFGH", item.Link)

	item, _ = TargetRawItem{Title: "T", URL: "/p/towel/-/A-555?preselect=1"}.Normalize("https://www.target.com")
	assert.Equal(t, "https://www.target.com/p/-/A-555", item.Link)

	item, _ = WalmartRawItem{Name: "W", CanonicalURL: "/ip/Thing/789?athbdg=L1"}.Normalize("https://www.walmart.com")
	assert.Equal(t, "https://www.walmart.com/ip/789", item.Link)

	item, _ = WalmartRawItem{Name: "W", CanonicalURL: "/browse/thing"}.Normalize("https://www.walmart.com")
	assert.Equal(t, "https://www.walmart.com/browse/thing", item.Link)
}
