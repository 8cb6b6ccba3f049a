package adapters

import (
	"regexp"

	"github.com/tidwall/gjson"

	"wishlist-extractor/internal/types"
)

var (
	amazonProductLink = regexp.MustCompile(`/(?:dp|gp/product)/([A-Z0-9]{10})`)
	amazonASIN        = regexp.MustCompile(`^[A-Z0-9]{10}$`)
)

// AmazonRawItem is a wishlist or registry entry as Amazon renders it.
type AmazonRawItem struct {
	Title       string
	ASIN        string
	PriceText   string
	PriceAmount *float64
	ImageURL    string
	URL         string
}

// Normalize links to the bare /dp/{ASIN} page when the ASIN is known, which
// strips the list tracking parameters Amazon appends.
func (r AmazonRawItem) Normalize(base string) (types.NormalizedItem, bool) {
	name := normalizeName(r.Title)
	if name == "" {
		return types.NormalizedItem{}, false
	}

	asin := r.ASIN
	if !amazonASIN.MatchString(asin) {
		asin = ""
		if m := amazonProductLink.FindStringSubmatch(r.URL); m != nil {
			asin = m[1]
		}
	}

	link := absolute(base, r.URL)
	if asin != "" {
		link = join(base, "/dp/"+asin)
	}

	return types.NormalizedItem{
		Name:  name,
		Price: formatPrice(r.PriceText, r.PriceAmount),
		Link:  link,
		Image: absolute(base, r.ImageURL),
	}, true
}

func amazonFromJSON(r gjson.Result) types.RawItem {
	text, amount := priceOf(pick(r, "price", "itemPrice", "displayPrice", "priceInfo"))
	return AmazonRawItem{
		Title:       textOf(pick(r, "title", "productTitle", "itemName", "name")),
		ASIN:        textOf(pick(r, "asin", "ASIN")),
		PriceText:   text,
		PriceAmount: amount,
		ImageURL:    textOf(pick(r, "imageUrl", "imageURL", "image", "productImage", "images")),
		URL:         textOf(pick(r, "detailPageURL", "url", "link", "productUrl")),
	}
}

func amazonFromDOM(f domFields) types.RawItem {
	return AmazonRawItem{
		Title:     f.Name,
		ASIN:      f.ID,
		PriceText: f.Price,
		ImageURL:  f.Image,
		URL:       f.Link,
	}
}

// AmazonAdapter handles extraction for Amazon wishlists and registries
type AmazonAdapter struct {
	*BaseAdapter
}

// NewAmazonAdapter creates a new Amazon adapter
func NewAmazonAdapter(config *types.Config, logger types.Logger) *AmazonAdapter {
	return &AmazonAdapter{
		BaseAdapter: NewBaseAdapter(config, logger, profile{
			name:   "amazon.com",
			kinds:  []types.RetailerKind{types.AmazonWishlist, types.AmazonRegistry},
			origin: "https://www.amazon.com",
			knownPaths: []string{
				"registryItems",
				"registry.items",
				"props.pageProps.registryItems",
				"itemList.items",
				"wishlist.items",
				"items",
			},
			dom: []domRule{
				{
					// Wishlist rows.
					Container: "li[data-itemid]",
					Name:      []string{"a[id^='itemName_']@title", "a[id^='itemName_']", "h2 a", "h3 a"},
					Price:     []string{"span.a-price span.a-offscreen", "@data-price"},
					Link:      []string{"a[id^='itemName_']@href", "a[href*='/dp/']@href"},
					Image:     []string{"div[id^='itemImage_'] img@src", "img@src"},
				},
				{
					// Registry tiles.
					Container: "div[data-asin]",
					Name:      []string{"[class*='item-title']", "a[href*='/dp/']@title", "img@alt"},
					Price:     []string{"span.a-price span.a-offscreen", "[class*='price']"},
					Link:      []string{"a[href*='/dp/']@href"},
					Image:     []string{"img@src"},
					ID:        []string{"@data-asin"},
				},
			},
			productLink: amazonProductLink,
			fromJSON:    amazonFromJSON,
			fromDOM:     amazonFromDOM,
		}),
	}
}
