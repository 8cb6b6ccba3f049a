package types

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// RetailerKind identifies which retailer list format a URL points at.
// It is derived from the URL shape only, never from page content.
type RetailerKind string

const (
	AmazonWishlist  RetailerKind = "amazon_wishlist"
	AmazonRegistry  RetailerKind = "amazon_registry"
	TargetRegistry  RetailerKind = "target_registry"
	WalmartWishlist RetailerKind = "walmart_wishlist"
	WalmartRegistry RetailerKind = "walmart_registry"
	Unsupported     RetailerKind = "unsupported"
)

// AllKinds returns every supported retailer kind (Unsupported excluded).
func AllKinds() []RetailerKind {
	return []RetailerKind{AmazonWishlist, AmazonRegistry, TargetRegistry, WalmartWishlist, WalmartRegistry}
}

// Supported reports whether the kind can be fetched and extracted.
func (k RetailerKind) Supported() bool {
	switch k {
	case AmazonWishlist, AmazonRegistry, TargetRegistry, WalmartWishlist, WalmartRegistry:
		return true
	}
	return false
}

// ListURL is a classified list URL
type ListURL struct {
	Raw       string       `json:"raw"`
	Canonical string       `json:"canonical"`
	Kind      RetailerKind `json:"kind"`
}

// Verdict is the Response Classifier's judgement of a fetched body.
type Verdict string

const (
	VerdictUsable           Verdict = "usable"
	VerdictBlockedOrCaptcha Verdict = "blocked_or_captcha"
	VerdictLoginRequired    Verdict = "login_required"
	VerdictRestricted       Verdict = "restricted"
	VerdictTooSmall         Verdict = "too_small"
)

// ProviderID names a fetch provider.
type ProviderID string

const (
	ProviderDirect      ProviderID = "direct"
	ProviderRenderProxy ProviderID = "render_proxy"
	ProviderUnlocker    ProviderID = "unlocker"
	ProviderBrowser     ProviderID = "browser"
)

// FetchAttempt records a single try against one provider.
type FetchAttempt struct {
	Provider       ProviderID `json:"provider"`
	Attempt        int        `json:"attempt"`
	HTTPStatus     int        `json:"httpStatus"`
	BodyLength     int        `json:"bodyLength"`
	Classification Verdict    `json:"classification,omitempty"`
	ElapsedMs      int64      `json:"elapsedMs"`
	Error          string     `json:"error,omitempty"`
}

// FetchResult is the outcome of the Fetch Orchestrator for one list URL.
type FetchResult struct {
	Success       bool           `json:"success"`
	Body          string         `json:"-"`
	ProviderUsed  ProviderID     `json:"providerUsed,omitempty"`
	Attempts      []FetchAttempt `json:"attempts"`
	TerminalError ErrorKind      `json:"terminalError,omitempty"`
}

// NormalizedItem is a list item in its canonical shape.
type NormalizedItem struct {
	Name  string `json:"name"`
	Price string `json:"price,omitempty"`
	Link  string `json:"link,omitempty"`
	Image string `json:"image,omitempty"`
}

// RawItem is a retailer-specific record as found in the source page.
// Normalize maps it into a NormalizedItem; ok is false when the record has
// no usable name.
type RawItem interface {
	Normalize(base string) (item NormalizedItem, ok bool)
}

// ItemKey returns the identity used to match items across two lists.
func ItemKey(item NormalizedItem) string {
	if link := strings.TrimSpace(item.Link); link != "" {
		return strings.ToLower(link)
	}
	return strings.ToLower(strings.Join(strings.Fields(item.Name), " "))
}

// ChangedPair holds the stored and freshly extracted versions of one item.
type ChangedPair struct {
	Existing NormalizedItem `json:"existing"`
	Fresh    NormalizedItem `json:"fresh"`
}

// ComparisonSummary holds bucket sizes of a ComparisonResult.
type ComparisonSummary struct {
	UnchangedCount int `json:"unchangedCount"`
	AddedCount     int `json:"addedCount"`
	ChangedCount   int `json:"changedCount"`
}

// ComparisonResult partitions two item lists by ItemKey.
type ComparisonResult struct {
	Unchanged []NormalizedItem  `json:"unchanged"`
	Added     []NormalizedItem  `json:"added"`
	Changed   []ChangedPair     `json:"changed"`
	Summary   ComparisonSummary `json:"summary"`
}

// ExtractMethod names the extraction strategy that produced items.
type ExtractMethod string

const (
	MethodKnownPath  ExtractMethod = "known_path"
	MethodDeepSearch ExtractMethod = "deep_search"
	MethodDOM        ExtractMethod = "dom"
	MethodLinks      ExtractMethod = "links"
)

// EmptyReason explains why an extraction found nothing.
type EmptyReason string

const (
	// EmptyShellPage means the page carried neither item data nor item markup.
	EmptyShellPage EmptyReason = "shell_page"
	// EmptyNoMatches means item data or markup was present but nothing matched.
	EmptyNoMatches EmptyReason = "no_matches"
)

// Extraction is the output of the Extraction Engine.
type Extraction struct {
	Items       []NormalizedItem `json:"items"`
	Method      ExtractMethod    `json:"method,omitempty"`
	EmptyReason EmptyReason      `json:"emptyReason,omitempty"`
}

// ProviderConfig holds credentials and endpoint for an external fetch provider.
type ProviderConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	APIKey  string        `yaml:"apiKey"`
	Zone    string        `yaml:"zone"`
	Timeout time.Duration `yaml:"timeout"`
}

// Configured reports whether the provider has enough settings to be used.
func (p ProviderConfig) Configured() bool {
	return strings.TrimSpace(p.BaseURL) != "" && strings.TrimSpace(p.APIKey) != ""
}

// Config holds the configuration for the extraction pipeline
type Config struct {
	RequestDelay       time.Duration `yaml:"requestDelay"`
	MaxRetries         int           `yaml:"maxRetries"`
	RetryBaseDelay     time.Duration `yaml:"retryBaseDelay"`
	RetryMaxDelay      time.Duration `yaml:"retryMaxDelay"`
	Timeout            time.Duration `yaml:"timeout"`
	PipelineTimeout    time.Duration `yaml:"pipelineTimeout"`
	MaxBodyBytes       int64         `yaml:"maxBodyBytes"`
	MinUsableBytes     int           `yaml:"minUsableBytes"`
	UseHeadlessBrowser bool          `yaml:"useHeadlessBrowser"`
	UserAgents         []string      `yaml:"userAgents"`
	DeepSearchMaxDepth int           `yaml:"deepSearchMaxDepth"`
	DeepSearchMaxNodes int           `yaml:"deepSearchMaxNodes"`

	// MinBodyBytes is the per-retailer size under which a body without
	// structural anchors is judged too small to be a real list page.
	MinBodyBytes map[RetailerKind]int `yaml:"minBodyBytes"`

	RenderProxy ProviderConfig `yaml:"renderProxy"`
	Unlocker    ProviderConfig `yaml:"unlocker"`
}

// DefaultUserAgents are rotated by the direct provider.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4_1) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.0.0",
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		RequestDelay:       500 * time.Millisecond,
		MaxRetries:         3,
		RetryBaseDelay:     750 * time.Millisecond,
		RetryMaxDelay:      4 * time.Second,
		Timeout:            30 * time.Second,
		PipelineTimeout:    90 * time.Second,
		MaxBodyBytes:       8 << 20,
		MinUsableBytes:     2048,
		UseHeadlessBrowser: false,
		UserAgents:         append([]string(nil), DefaultUserAgents...),
		DeepSearchMaxDepth: 12,
		DeepSearchMaxNodes: 250_000,
		MinBodyBytes: map[RetailerKind]int{
			AmazonWishlist:  20_000,
			AmazonRegistry:  15_000,
			TargetRegistry:  10_000,
			WalmartWishlist: 15_000,
			WalmartRegistry: 15_000,
		},
		RenderProxy: ProviderConfig{Timeout: 60 * time.Second},
		Unlocker:    ProviderConfig{Timeout: 60 * time.Second},
	}
}

// MinBodyFor returns the configured size threshold for a retailer.
func (c *Config) MinBodyFor(kind RetailerKind) int {
	if c == nil {
		return 0
	}
	if n, ok := c.MinBodyBytes[kind]; ok {
		return n
	}
	return 4096
}

// Logger is the structured logger used across the pipeline.
type Logger = logrus.FieldLogger
