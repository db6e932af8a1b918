package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
)

// robotsCache fetches and caches per-host robots.txt rules. Rules expire so
// publisher policy changes are eventually picked up. An unreachable or
// unparseable robots.txt allows fetching by default.
type robotsCache struct {
	httpClient *http.Client
	userAgent  string
	cache      *gocache.Cache
}

func newRobotsCache(httpClient *http.Client, userAgent string) *robotsCache {
	return &robotsCache{
		httpClient: httpClient,
		userAgent:  normalizeAgent(userAgent),
		cache:      gocache.New(1*time.Hour, 10*time.Minute),
	}
}

func (rc *robotsCache) Allowed(ctx context.Context, u *url.URL) (bool, error) {
	data, err := rc.rules(ctx, u)
	if err != nil {
		// Missing robots.txt is not a reason to stop crawling
		return true, nil
	}
	return data.TestAgent(u.Path, rc.userAgent), nil
}

func (rc *robotsCache) rules(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	if cached, ok := rc.cache.Get(u.Host); ok {
		return cached.(*robotstxt.RobotsData), nil
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", rc.userAgent)

	resp, err := rc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse robots.txt: %w", err)
	}

	rc.cache.Set(u.Host, data, gocache.DefaultExpiration)
	return data, nil
}

// normalizeAgent reduces a full user agent string to the product token used
// for robots.txt group matching, e.g. "OpenLearn Colombia/1.0" -> "OpenLearn".
func normalizeAgent(ua string) string {
	parts := strings.Fields(ua)
	if len(parts) == 0 {
		return ua
	}
	return strings.Split(parts[0], "/")[0]
}
