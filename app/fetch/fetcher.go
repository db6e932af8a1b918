package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrDisallowed means the publisher's robots.txt forbids fetching the URL.
var ErrDisallowed = errors.New("fetch disallowed by robots.txt")

// maxBodySize caps page downloads; article pages beyond this are suspect.
const maxBodySize = 10 << 20 // 10 MB

// Client fetches publisher pages politely: per-domain token-bucket rate
// limiting, robots.txt compliance, and an identifying user agent. It is safe
// for concurrent use by the worker pool.
type Client struct {
	httpClient   *http.Client
	userAgent    string
	robots       *robotsCache
	mu           sync.RWMutex
	limiters     map[string]*rate.Limiter
	defaultRate  rate.Limit
	defaultBurst int
}

func NewClient(httpClient *http.Client, userAgent string, requestsPerSecond float64, burst int) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		httpClient:   httpClient,
		userAgent:    userAgent,
		robots:       newRobotsCache(httpClient, userAgent),
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// SetDomainLimit overrides the request rate for one domain, e.g. from a
// source's rate_limit setting.
func (c *Client) SetDomainLimit(host string, requestsPerSecond float64) {
	if host == "" || requestsPerSecond <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.limiters[host] = rate.NewLimiter(rate.Limit(requestsPerSecond), c.defaultBurst)
}

// Get fetches one URL and returns the response body. The caller owns the
// timeout via ctx.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	allowed, err := c.robots.Allowed(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("robots check failed: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
	}

	if err := c.limiter(u.Host).Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.RLock()
	limiter, ok := c.limiters[host]
	c.mu.RUnlock()
	if ok {
		return limiter
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if limiter, ok = c.limiters[host]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(c.defaultRate, c.defaultBurst)
	c.limiters[host] = limiter
	return limiter
}

// DefaultHTTPClient is the client used when main does not supply one.
func DefaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
