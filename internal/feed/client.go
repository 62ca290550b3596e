package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrStatus = errors.New("unexpected feed response status")
	ErrFormat = errors.New("malformed feed payload")
)

const maxBody = 32 << 20

// TokenSource yields the bearer token for feed requests; "" sends none.
type TokenSource func() (string, error)

type ClientOptions struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Token             TokenSource
	HTTPClient        *http.Client
}

type Client struct {
	hc      *http.Client
	limiter *limiter
	token   TokenSource
}

func NewClient(opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 1
	}
	if opts.Burst <= 0 {
		opts.Burst = 2
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		hc:      hc,
		limiter: newLimiter(opts.RequestsPerSecond, opts.Burst),
		token:   opts.Token,
	}
}

// Get fetches url and returns the raw body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx, url); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "livesched-engine/1.0 (+local)")
	req.Header.Set("Accept", "application/json, text/csv, text/html;q=0.9, */*;q=0.5")

	if c.token != nil {
		tok, err := c.token()
		if err != nil {
			return nil, fmt.Errorf("feed token: %w", err)
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		return nil, fmt.Errorf("get %s: %w: %d", url, ErrStatus, res.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return b, nil
}
