package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wishlist-extractor/adapters"
	"wishlist-extractor/internal/types"
)

type stubFetcher struct {
	result types.FetchResult
	calls  int
	block  bool
}

func (s *stubFetcher) Fetch(ctx context.Context, list types.ListURL) types.FetchResult {
	s.calls++
	if s.block {
		<-ctx.Done()
		return types.FetchResult{Attempts: []types.FetchAttempt{}, TerminalError: types.ErrNetworkFailure}
	}
	return s.result
}

func blockedTrail(n int) []types.FetchAttempt {
	out := make([]types.FetchAttempt, n)
	for i := range out {
		out[i] = types.FetchAttempt{Provider: types.ProviderDirect, Attempt: i + 1, HTTPStatus: 503, Classification: types.VerdictBlockedOrCaptcha}
	}
	return out
}

func newTestExtractor(f Fetcher) *Extractor {
	config := types.DefaultConfig()
	logger := logrus.New()
	return NewExtractorWith(config, logger, f, adapters.NewAll(config, logger))
}

const amazonURL = "https://www.amazon.com/hz/wishlist/ls/3ABCDEF"

func TestNewExtractor(t *testing.T) {
	config := types.DefaultConfig()
	logger := logrus.New()

	extractor := NewExtractor(config, logger)

	assert.NotNil(t, extractor)
	assert.Equal(t, config, extractor.config)
	assert.Equal(t, logger, extractor.logger)
	assert.NotNil(t, extractor.fetcher)
	for _, kind := range types.AllKinds() {
		_, exists := extractor.adapters[kind]
		assert.True(t, exists, kind)
	}
}

func TestExtract_Success(t *testing.T) {
	page := `<html><body><ul id="g-items">
<li data-itemid="I1"><a id="itemName_I1" title="Echo Dot" href="/dp/B000000001?coliid=I1">Echo Dot</a>
<span class="a-price"><span class="a-offscreen">$49.99</span></span></li>
</ul></body></html>`
	f := &stubFetcher{result: types.FetchResult{
		Success:      true,
		Body:         page,
		ProviderUsed: types.ProviderDirect,
		Attempts:     []types.FetchAttempt{{Provider: types.ProviderDirect, Attempt: 1, HTTPStatus: 200, Classification: types.VerdictUsable}},
	}}

	result := newTestExtractor(f).Extract(context.Background(), amazonURL)

	require.True(t, result.Success, result.Message)
	assert.NoError(t, result.Err)
	assert.Equal(t, types.AmazonWishlist, result.Retailer)
	assert.Equal(t, types.ProviderDirect, result.Provider)
	assert.Equal(t, types.MethodDOM, result.Method)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, []types.NormalizedItem{
		{Name: "Echo Dot", Price: "$49.99", Link: "https://www.amazon.com/dp/B000000001"},
	}, result.Items)
}

// Every strategy blocked: the caller is told to upload manually.
func TestExtract_AllStrategiesBlocked(t *testing.T) {
	f := &stubFetcher{result: types.FetchResult{Attempts: blockedTrail(6), TerminalError: types.ErrAllProvidersExhausted}}

	result := newTestExtractor(f).Extract(context.Background(), amazonURL)

	assert.False(t, result.Success)
	assert.True(t, result.RequiresManualUpload)
	assert.True(t, errors.Is(result.Err, types.ErrAllProvidersExhausted))
	assert.Contains(t, result.Message, "Amazon")
	assert.Len(t, result.Attempts, 6)
	assert.Empty(t, result.Items)
}

func TestExtract_BlockedEverywhereRequiresManualUpload(t *testing.T) {
	urls := map[types.RetailerKind]string{
		types.AmazonWishlist:  amazonURL,
		types.AmazonRegistry:  "https://www.amazon.com/baby-reg/jane-doe/1A2B3C",
		types.TargetRegistry:  "https://www.target.com/gift-registry/gift/abc123",
		types.WalmartWishlist: "https://www.walmart.com/lists/shared/xyz",
		types.WalmartRegistry: "https://www.walmart.com/registry/WR/abc",
	}

	for _, kind := range types.AllKinds() {
		t.Run(string(kind), func(t *testing.T) {
			rawURL, ok := urls[kind]
			require.True(t, ok, "no test URL for %s", kind)
			f := &stubFetcher{result: types.FetchResult{Attempts: blockedTrail(4), TerminalError: types.ErrAllProvidersExhausted}}

			result := newTestExtractor(f).Extract(context.Background(), rawURL)

			assert.Equal(t, kind, result.Retailer)
			assert.False(t, result.Success)
			assert.True(t, result.RequiresManualUpload)
			assert.True(t, errors.Is(result.Err, types.ErrAllProvidersExhausted))
			assert.Contains(t, result.Message, "upload your items manually")
		})
	}
}

func TestExtract_PrivateList(t *testing.T) {
	f := &stubFetcher{result: types.FetchResult{
		Attempts: []types.FetchAttempt{
			{Provider: types.ProviderDirect, Attempt: 1, Classification: types.VerdictRestricted},
			{Provider: types.ProviderUnlocker, Attempt: 1, Classification: types.VerdictLoginRequired},
		},
		TerminalError: types.ErrAllProvidersExhausted,
	}}

	result := newTestExtractor(f).Extract(context.Background(), "https://www.walmart.com/lists/shared/xyz")

	assert.False(t, result.Success)
	assert.False(t, result.RequiresManualUpload)
	assert.Contains(t, result.Message, "private")
}

func TestExtract_UnsupportedURL(t *testing.T) {
	f := &stubFetcher{}

	result := newTestExtractor(f).Extract(context.Background(), "https://www.etsy.com/people/me/favorites")

	assert.False(t, result.Success)
	assert.Equal(t, types.Unsupported, result.Retailer)
	assert.True(t, errors.Is(result.Err, types.ErrUnsupportedRetailer))
	assert.Contains(t, result.Message, "not supported")
	assert.Equal(t, 0, f.calls)
}

func TestExtract_ZeroItems(t *testing.T) {
	f := &stubFetcher{result: types.FetchResult{
		Success:      true,
		Body:         `<html><body><div id="app"></div></body></html>`,
		ProviderUsed: types.ProviderRenderProxy,
	}}

	result := newTestExtractor(f).Extract(context.Background(), "https://www.target.com/gift-registry/gift-giver?registryId=abc")

	assert.False(t, result.Success)
	assert.True(t, errors.Is(result.Err, types.ErrZeroItemsExtracted))
	assert.Contains(t, result.Message, "without any item data")
}

func TestExtract_PipelineTimeout(t *testing.T) {
	config := types.DefaultConfig()
	config.PipelineTimeout = 20 * time.Millisecond
	logger := logrus.New()
	f := &stubFetcher{block: true}

	start := time.Now()
	result := NewExtractorWith(config, logger, f, adapters.NewAll(config, logger)).Extract(context.Background(), amazonURL)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.False(t, result.Success)
	assert.True(t, errors.Is(result.Err, types.ErrNetworkFailure))
	assert.Empty(t, result.Items)
}

func TestExtractToJSON(t *testing.T) {
	f := &stubFetcher{result: types.FetchResult{Attempts: blockedTrail(1), TerminalError: types.ErrAllProvidersExhausted}}
	filename := filepath.Join(t.TempDir(), "result.json")

	result, err := newTestExtractor(f).ExtractToJSON(context.Background(), amazonURL, filename)
	require.NoError(t, err)
	assert.False(t, result.Success)

	data, err := os.ReadFile(filename)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.Equal(t, true, decoded["requiresManualUpload"])
	assert.Equal(t, "amazon_wishlist", decoded["retailer"])
	assert.False(t, strings.Contains(string(data), `"Err"`))
}

func TestMessageFor_EveryKindHasAMessage(t *testing.T) {
	kinds := []types.ErrorKind{
		types.ErrUnsupportedRetailer, types.ErrAllProvidersExhausted, types.ErrZeroItemsExtracted,
		types.ErrNetworkFailure, types.ErrParseFailure,
	}
	for _, kind := range kinds {
		for _, retailer := range types.AllKinds() {
			msg, _ := messageFor(kind, retailer, nil, "")
			assert.NotEmpty(t, msg, "%s/%s", kind, retailer)
		}
	}
}
