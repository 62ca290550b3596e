package feed

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// limiter keeps one token bucket per feed host, so the jobs and groups
// exports of the same spreadsheet draw from one budget.
type limiter struct {
	perSecond rate.Limit
	burst     int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

func newLimiter(perSecond float64, burst int) *limiter {
	return &limiter{
		perSecond: rate.Limit(perSecond),
		burst:     burst,
		buckets:   make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a request to feedURL may go out or ctx ends. URLs
// without a host share a single bucket.
func (l *limiter) Wait(ctx context.Context, feedURL string) error {
	return l.bucket(feedHost(feedURL)).Wait(ctx)
}

func (l *limiter) bucket(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[host]
	if !ok {
		b = rate.NewLimiter(l.perSecond, l.burst)
		l.buckets[host] = b
	}
	return b
}

func feedHost(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
