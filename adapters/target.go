package adapters

import (
	"regexp"

	"github.com/tidwall/gjson"

	"wishlist-extractor/internal/types"
)

var (
	targetProductLink = regexp.MustCompile(`/p/(?:[^/?#]+/)?-/A-(\d+)`)
	targetTCIN        = regexp.MustCompile(`^\d+$`)
)

// TargetRawItem is a registry entry as Target's registry API shapes it.
type TargetRawItem struct {
	Title       string
	TCIN        string
	PriceText   string
	PriceAmount *float64
	ImageURL    string
	URL         string
}

func (r TargetRawItem) Normalize(base string) (types.NormalizedItem, bool) {
	name := normalizeName(r.Title)
	if name == "" {
		return types.NormalizedItem{}, false
	}

	tcin := r.TCIN
	if !targetTCIN.MatchString(tcin) {
		tcin = ""
		if m := targetProductLink.FindStringSubmatch(r.URL); m != nil {
			tcin = m[1]
		}
	}

	link := absolute(base, r.URL)
	if tcin != "" {
		link = join(base, "/p/-/A-"+tcin)
	}

	return types.NormalizedItem{
		Name:  name,
		Price: formatPrice(r.PriceText, r.PriceAmount),
		Link:  link,
		Image: absolute(base, r.ImageURL),
	}, true
}

func targetFromJSON(r gjson.Result) types.RawItem {
	text, amount := priceOf(pick(r, "price", "formatted_price", "current_price"))
	return TargetRawItem{
		Title:       textOf(pick(r, "product_description.title", "title", "item_title", "name")),
		TCIN:        textOf(pick(r, "tcin", "item_id")),
		PriceText:   text,
		PriceAmount: amount,
		ImageURL:    textOf(pick(r, "enrichment.images.primary_image_url", "primary_image_url", "image_url", "imageUrl", "image")),
		URL:         textOf(pick(r, "enrichment.buy_url", "buy_url", "url")),
	}
}

func targetFromDOM(f domFields) types.RawItem {
	return TargetRawItem{
		Title:     f.Name,
		TCIN:      f.ID,
		PriceText: f.Price,
		ImageURL:  f.Image,
		URL:       f.Link,
	}
}

// TargetAdapter handles extraction for Target gift registries
type TargetAdapter struct {
	*BaseAdapter
}

// NewTargetAdapter creates a new Target adapter
func NewTargetAdapter(config *types.Config, logger types.Logger) *TargetAdapter {
	return &TargetAdapter{
		BaseAdapter: NewBaseAdapter(config, logger, profile{
			name:    "target.com",
			kinds:   []types.RetailerKind{types.TargetRegistry},
			origin:  "https://www.target.com",
			scripts: append([]string{"script#__TGT_DATA__"}, defaultScriptSelectors...),
			knownPaths: []string{
				"props.pageProps.registryItems",
				"props.pageProps.registry.items",
				"data.registry.registry_items",
				"data.registry_items",
				"registry_items",
				"registryItems",
				"registry.items",
			},
			dom: []domRule{
				{
					Container: "[data-test='registry-item']",
					Name:      []string{"[data-test='registry-item-title']", "a[href*='/p/']@aria-label", "a[href*='/p/']"},
					Price:     []string{"[data-test='current-price']", "[data-test*='price']"},
					Link:      []string{"a[href*='/p/']@href"},
					Image:     []string{"img@src"},
					ID:        []string{"@data-tcin"},
				},
				{
					Container: "[data-test*='registryItem']",
					Name:      []string{"[data-test*='title']", "a[href*='/p/']"},
					Price:     []string{"[data-test*='price']"},
					Link:      []string{"a[href*='/p/']@href"},
					Image:     []string{"img@src"},
				},
			},
			productLink: targetProductLink,
			fromJSON:    targetFromJSON,
			fromDOM:     targetFromDOM,
		}),
	}
}
