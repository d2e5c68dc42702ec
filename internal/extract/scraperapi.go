package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"jobfetch/internal/model"
)

const scraperAPIEndpoint = "https://api.scraperapi.com/"

// ScraperAPI is the paid rendering-proxy tier. As a cascade tier it is
// dedicated to Indeed, where the direct viewjob page needs JavaScript
// execution; FetchRendered is also reused by the language-model
// fallback for arbitrary URLs. Without an API key the tier reports
// unavailable and is skipped, never failed.
type ScraperAPI struct {
	apiKey  string
	http    *http.Client
	timeout time.Duration

	// endpoint is overridable in tests.
	endpoint string
}

func NewScraperAPI(apiKey string, timeout time.Duration) *ScraperAPI {
	return &ScraperAPI{
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
		timeout:  timeout,
		endpoint: scraperAPIEndpoint,
	}
}

func (s *ScraperAPI) Name() string         { return "indeed-scraperapi" }
func (s *ScraperAPI) Method() model.Method { return model.MethodIndeedScraperAPI }

func (s *ScraperAPI) Available() bool { return s.apiKey != "" }

// FetchRendered fetches a URL through the proxy with JavaScript
// rendering enabled and returns the raw HTML.
func (s *ScraperAPI) FetchRendered(ctx context.Context, target string) (string, error) {
	if !s.Available() {
		return "", fmt.Errorf("scraperapi: no API key configured")
	}

	q := url.Values{}
	q.Set("api_key", s.apiKey)
	q.Set("url", target)
	q.Set("render", "true")
	q.Set("premium", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("scraperapi request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("scraperapi returned status %d", resp.StatusCode)
	}
	return string(body), nil
}

// Extract builds the direct Indeed viewjob URL from the job key and
// runs the shared selector extraction over the rendered HTML.
func (s *ScraperAPI) Extract(ctx context.Context, rawURL string) (*Result, error) {
	jobKey, ok := IndeedJobKey(rawURL)
	if !ok {
		return nil, errNoJobID("Indeed", rawURL)
	}

	target := fmt.Sprintf("https://%s/viewjob?jk=%s", indeedHost(rawURL), url.QueryEscape(jobKey))
	page, err := s.FetchRendered(ctx, target)
	if err != nil {
		return nil, err
	}

	content, err := ParsePage(page, target)
	if err != nil {
		return nil, err
	}
	return requireContent(content, s.Method())
}
