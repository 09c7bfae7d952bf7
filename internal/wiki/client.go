// Package wiki fetches and queries encyclopedia pages. It is the pipeline's
// document collaborator: a rate-limited HTTP fetcher returning parsed
// documents, plus the handful of selector helpers the extractors need
// (infoboxes, hatnotes, cell text with newline separators).
package wiki

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client fetches pages with a shared rate limit. Safe for concurrent use.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// ClientConfig tunes the fetcher.
type ClientConfig struct {
	TimeoutSecs int
	RatePerSec  float64
	UserAgent   string
}

// NewClient creates a Client with sensible defaults for unset fields.
func NewClient(cfg ClientConfig) *Client {
	timeout := 15 * time.Second
	if cfg.TimeoutSecs > 0 {
		timeout = time.Duration(cfg.TimeoutSecs) * time.Second
	}
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 4
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "Mozilla/5.0 (compatible; AwardsBot/1.0)"
	}
	return &Client{
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		limiter:   rate.NewLimiter(rate.Limit(perSec), 1),
		userAgent: ua,
	}
}

// Fetch retrieves a page and parses it into a queryable document. Any
// non-2xx status is an error; callers treat fetch errors as "page absent"
// and continue.
func (c *Client) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "wiki: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "wiki: create request for %s", url)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "wiki: fetch %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, eris.Errorf("wiki: fetch %s: status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "wiki: parse %s", url)
	}
	return doc, nil
}
