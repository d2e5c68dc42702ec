package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// DefaultUserAgent mimics a current desktop Chrome build. Target sites
// serve stripped or blocked pages to anything that looks automated.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Request describes a single page fetch.
type Request struct {
	URL     string
	Headers map[string]string
	Referer string
	Timeout time.Duration
}

// Response is the raw outcome of a fetch. Body is always populated on
// a 2xx response; FinalURL reflects any redirects that were followed.
type Response struct {
	Body     string
	Status   int
	FinalURL string
}

// StatusError is returned for non-2xx responses so that callers can
// inspect the status code (403 and 999 carry meaning for tier
// fallthrough decisions).
type StatusError struct {
	Status int
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
}

// Client performs page fetches with browser-mimicking headers and an
// optional robots.txt gate.
type Client struct {
	http          *http.Client
	userAgent     string
	respectRobots bool

	mu     sync.Mutex
	robots map[string]*robotstxt.RobotsData
}

// NewClient builds a Client with the given default timeout. When
// respectRobots is set, each host's robots.txt is fetched once and
// consulted before every page fetch.
func NewClient(timeout time.Duration, userAgent string, respectRobots bool) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		http:          &http.Client{Timeout: timeout},
		userAgent:     userAgent,
		respectRobots: respectRobots,
		robots:        make(map[string]*robotstxt.RobotsData),
	}
}

// BrowserHeaders returns the full set of headers a desktop browser
// sends on a top-level navigation. Referer is included when non-empty.
func BrowserHeaders(referer string) map[string]string {
	h := map[string]string{
		// Accept-Encoding is left to the transport so response bodies
		// are transparently decompressed.
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"Cache-Control":             "no-cache",
		"Pragma":                    "no-cache",
		"DNT":                       "1",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-User":            "?1",
	}
	if referer != "" {
		h["Referer"] = referer
	}
	return h
}

// Fetch retrieves the page at req.URL. Non-2xx responses produce a
// *StatusError; network failures and timeouts surface as-is.
func (c *Client) Fetch(ctx context.Context, req Request) (*Response, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}

	if c.respectRobots {
		if allowed, err := c.robotsAllowed(ctx, u); err == nil && !allowed {
			return nil, fmt.Errorf("fetch %s: disallowed by robots.txt", u.String())
		}
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("User-Agent", c.userAgent)
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if req.Referer != "" {
		httpReq.Header.Set("Referer", req.Referer)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	finalURL := u.String()
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Status: resp.StatusCode, URL: req.URL}
	}

	return &Response{
		Body:     string(bodyBytes),
		Status:   resp.StatusCode,
		FinalURL: finalURL,
	}, nil
}

// robotsAllowed fetches and caches robots.txt for the host, then tests
// the request path against it.
func (c *Client) robotsAllowed(ctx context.Context, u *url.URL) (bool, error) {
	host := u.Hostname()

	c.mu.Lock()
	data, ok := c.robots[host]
	c.mu.Unlock()

	if !ok {
		robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
		if err != nil {
			return true, err
		}
		httpReq.Header.Set("User-Agent", c.userAgent)

		resp, err := c.http.Do(httpReq)
		if err != nil {
			return true, err
		}
		defer resp.Body.Close()

		data, err = robotstxt.FromResponse(resp)
		if err != nil {
			return true, err
		}

		c.mu.Lock()
		c.robots[host] = data
		c.mu.Unlock()
	}

	group := data.FindGroup(c.userAgent)
	if group == nil {
		return true, nil
	}
	return group.Test(u.Path), nil
}
