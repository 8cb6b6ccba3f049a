package adapters

import (
	"regexp"

	"github.com/tidwall/gjson"

	"wishlist-extractor/internal/types"
)

var (
	walmartProductLink = regexp.MustCompile(`/ip/(?:[^/?#]+/)?(\d+)`)
	walmartItemID      = regexp.MustCompile(`^\d+$`)
)

// WalmartRawItem is a list or registry entry from Walmart's page data.
type WalmartRawItem struct {
	Name         string
	USItemID     string
	PriceText    string
	PriceAmount  *float64
	ImageURL     string
	CanonicalURL string
}

func (r WalmartRawItem) Normalize(base string) (types.NormalizedItem, bool) {
	name := normalizeName(r.Name)
	if name == "" {
		return types.NormalizedItem{}, false
	}

	id := r.USItemID
	if !walmartItemID.MatchString(id) {
		id = ""
		if m := walmartProductLink.FindStringSubmatch(r.CanonicalURL); m != nil {
			id = m[1]
		}
	}

	link := absolute(base, r.CanonicalURL)
	if id != "" {
		link = join(base, "/ip/"+id)
	}

	return types.NormalizedItem{
		Name:  name,
		Price: formatPrice(r.PriceText, r.PriceAmount),
		Link:  link,
		Image: absolute(base, r.ImageURL),
	}, true
}

func walmartFromJSON(r gjson.Result) types.RawItem {
	text, amount := priceOf(pick(r, "priceInfo.currentPrice", "priceInfo", "price", "currentPrice"))
	return WalmartRawItem{
		Name:         textOf(pick(r, "name", "productName", "title")),
		USItemID:     textOf(pick(r, "usItemId", "itemId", "productId")),
		PriceText:    text,
		PriceAmount:  amount,
		ImageURL:     textOf(pick(r, "imageInfo.thumbnailUrl", "thumbnailUrl", "imageUrl", "image")),
		CanonicalURL: textOf(pick(r, "canonicalUrl", "productUrl", "url")),
	}
}

func walmartFromDOM(f domFields) types.RawItem {
	return WalmartRawItem{
		Name:         f.Name,
		USItemID:     f.ID,
		PriceText:    f.Price,
		ImageURL:     f.Image,
		CanonicalURL: f.Link,
	}
}

// WalmartAdapter handles extraction for Walmart lists and registries
type WalmartAdapter struct {
	*BaseAdapter
}

// NewWalmartAdapter creates a new Walmart adapter
func NewWalmartAdapter(config *types.Config, logger types.Logger) *WalmartAdapter {
	return &WalmartAdapter{
		BaseAdapter: NewBaseAdapter(config, logger, profile{
			name:   "walmart.com",
			kinds:  []types.RetailerKind{types.WalmartWishlist, types.WalmartRegistry},
			origin: "https://www.walmart.com",
			knownPaths: []string{
				"props.pageProps.initialData.data.list.items",
				"props.pageProps.initialData.data.list.listItems",
				"props.pageProps.initialData.data.registry.items",
				"props.pageProps.initialData.data.registry.registryItems",
				"data.list.items",
				"list.items",
			},
			dom: []domRule{
				{
					Container: "[data-item-id]",
					Name:      []string{"[data-automation-id='product-title']", "a[href*='/ip/']", "img@alt"},
					Price:     []string{"[data-automation-id='product-price'] span.f2", "[itemprop='price']", "[data-automation-id='product-price']"},
					Link:      []string{"a[href*='/ip/']@href"},
					Image:     []string{"img@src"},
					ID:        []string{"@data-item-id"},
				},
				{
					Container: "[data-testid='list-item']",
					Name:      []string{"[data-automation-id='product-title']", "a[href*='/ip/']"},
					Price:     []string{"[data-automation-id='product-price']"},
					Link:      []string{"a[href*='/ip/']@href"},
					Image:     []string{"img@src"},
				},
			},
			productLink: walmartProductLink,
			fromJSON:    walmartFromJSON,
			fromDOM:     walmartFromDOM,
		}),
	}
}
