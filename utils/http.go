package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"wishlist-extractor/internal/types"
)

// Page is a fetched HTTP response body with its status.
type Page struct {
	Status   int
	Body     string
	FinalURL string
}

// Identity is the browser-like header set sent with one direct request.
type Identity struct {
	UserAgent      string
	AcceptLanguage string
	ClientHints    string
	Platform       string
}

var acceptLanguages = []string{
	"en-US,en;q=0.9",
	"en-US,en;q=0.8",
	"en-GB,en;q=0.9,en-US;q=0.8",
	"en-US,en;q=0.9,es;q=0.7",
}

// HTTPClient provides HTTP functionality with per-host rate limiting and
// rotating client identity. It holds no cookies or cached bodies, so one
// client is safe to share across concurrent pipeline runs.
type HTTPClient struct {
	client   *http.Client
	config   *types.Config
	logger   types.Logger
	rotation atomic.Uint64

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPClient creates a new HTTP client with the given configuration
func NewHTTPClient(config *types.Config, logger types.Logger) *HTTPClient {
	client := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &HTTPClient{
		client:   client,
		config:   config,
		logger:   logger,
		limiters: make(map[string]*rate.Limiter),
	}
}

// NextIdentity returns the next identity in the rotation. Consecutive calls
// never return the same user agent unless only one is configured.
func (h *HTTPClient) NextIdentity() Identity {
	agents := h.config.UserAgents
	if len(agents) == 0 {
		agents = types.DefaultUserAgents
	}
	n := h.rotation.Add(1) - 1

	ua := agents[n%uint64(len(agents))]
	return Identity{
		UserAgent:      ua,
		AcceptLanguage: acceptLanguages[n%uint64(len(acceptLanguages))],
		ClientHints:    clientHintsOf(ua),
		Platform:       platformOf(ua),
	}
}

// Get performs a single browser-like GET. Non-2xx statuses are returned as a
// Page rather than an error so the caller can inspect block pages.
func (h *HTTPClient) Get(ctx context.Context, target string) (*Page, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}

	if err := h.limiterFor(u.Hostname()).Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	id := h.NextIdentity()
	req.Header.Set("User-Agent", id.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", id.AcceptLanguage)
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Sec-Fetch-User", "?1")
	if id.ClientHints != "" {
		req.Header.Set("Sec-CH-UA", id.ClientHints)
		req.Header.Set("Sec-CH-UA-Mobile", "?0")
		req.Header.Set("Sec-CH-UA-Platform", `"`+id.Platform+`"`)
	}

	h.logger.Debugf("GET %s as %q", target, id.UserAgent)
	return h.Do(req)
}

// Do sends req and reads at most MaxBodyBytes of the response.
func (h *HTTPClient) Do(req *http.Request) (*Page, error) {
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	limit := h.config.MaxBodyBytes
	if limit <= 0 {
		limit = types.DefaultConfig().MaxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	finalURL := req.URL.String()
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	h.logger.Debugf("Retrieved %d bytes (status %d) from %s", len(body), resp.StatusCode, req.URL.Host)
	return &Page{Status: resp.StatusCode, Body: string(body), FinalURL: finalURL}, nil
}

// limiterFor returns the per-host limiter, creating it on first use.
func (h *HTTPClient) limiterFor(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()

	if l, ok := h.limiters[host]; ok {
		return l
	}

	limit := rate.Inf
	if h.config.RequestDelay > 0 {
		limit = rate.Every(h.config.RequestDelay)
	}
	l := rate.NewLimiter(limit, 2)
	h.limiters[host] = l
	return l
}

func clientHintsOf(ua string) string {
	version := between(ua, "Chrome/", ".")
	if version == "" || strings.Contains(ua, "Firefox/") {
		return ""
	}
	brand := "Google Chrome"
	if strings.Contains(ua, "Edg/") {
		brand = "Microsoft Edge"
	}
	return fmt.Sprintf(`"Chromium";v="%s", "%s";v="%s", "Not-A.Brand";v="99"`, version, brand, version)
}

func platformOf(ua string) string {
	switch {
	case strings.Contains(ua, "Windows"):
		return "Windows"
	case strings.Contains(ua, "Macintosh"):
		return "macOS"
	default:
		return "Linux"
	}
}

func between(s, start, end string) string {
	_, rest, ok := strings.Cut(s, start)
	if !ok {
		return ""
	}
	v, _, _ := strings.Cut(rest, end)
	return v
}
