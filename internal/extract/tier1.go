package extract

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobfetch/internal/fetch"
	"jobfetch/internal/model"
)

// Tier1 is the generic enhanced-fetch strategy: browser-mimicking
// headers, noise stripping, and ordered selector candidates with
// site-specific lists tried before generic ones. It handles any
// domain and is the first tier after the free site-specific
// extractors.
type Tier1 struct {
	client  *fetch.Client
	timeout time.Duration
}

func NewTier1(client *fetch.Client, timeout time.Duration) *Tier1 {
	return &Tier1{client: client, timeout: timeout}
}

func (t *Tier1) Name() string         { return "tier1-basic-fetch" }
func (t *Tier1) Method() model.Method { return model.MethodTier1BasicFetch }

// RewriteIndeedURL converts search-page URLs carrying a vjk parameter
// into the canonical direct viewjob URL, keeping the Canadian domain
// for ca.indeed.com links. Non-Indeed URLs pass through untouched.
func RewriteIndeedURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	host := strings.ToLower(u.Hostname())
	if !strings.Contains(host, "indeed.com") {
		return rawURL
	}
	vjk := u.Query().Get("vjk")
	if vjk == "" {
		return rawURL
	}

	domain := "www.indeed.com"
	if strings.Contains(host, "ca.indeed.com") {
		domain = "ca.indeed.com"
	}
	return fmt.Sprintf("https://%s/viewjob?jk=%s", domain, url.QueryEscape(vjk))
}

// refererFor picks a plausible referer for the target site so the
// fetch looks like a click-through rather than a direct hit.
func refererFor(rawURL string) string {
	lower := strings.ToLower(rawURL)
	switch {
	case strings.Contains(lower, "indeed.com"):
		return "https://www.indeed.com/"
	case strings.Contains(lower, "linkedin.com"):
		return "https://www.linkedin.com/jobs/"
	case strings.Contains(lower, "glassdoor"):
		return "https://www.glassdoor.com/"
	default:
		return "https://www.google.com/"
	}
}

func (t *Tier1) Extract(ctx context.Context, rawURL string) (*Result, error) {
	target := RewriteIndeedURL(rawURL)

	resp, err := t.client.Fetch(ctx, fetch.Request{
		URL:     target,
		Headers: fetch.BrowserHeaders(refererFor(target)),
		Timeout: t.timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("tier1 fetch: %w", err)
	}

	content, err := ParsePage(resp.Body, target)
	if err != nil {
		return nil, err
	}
	return requireContent(content, t.Method())
}

// ParsePage runs the shared selector-candidate extraction over a page
// body: noise removal, site-specific then generic selectors, full-body
// fallback under the 200-character description threshold, and
// boilerplate filtering. The paid tiers reuse it on proxied HTML.
func ParsePage(page, pageURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", WrapError(KindParseFailure, err, "page is unparseable HTML")
	}

	host := ""
	if u, err := url.Parse(pageURL); err == nil {
		host = u.Hostname()
	}

	var title, company, description string
	if sels, ok := selectorsForHost(host); ok {
		title = firstMatch(doc, sels.Title, 2)
		company = firstMatch(doc, sels.Company, 2)
		description = firstMatchHTML(doc, sels.Description, 200)
	}
	if title == "" {
		title = firstMatch(doc, genericSelectors.Title, 2)
	}
	if company == "" {
		company = firstMatch(doc, genericSelectors.Company, 2)
	}
	if len(description) < 200 {
		if d := firstMatchHTML(doc, genericSelectors.Description, 200); len(d) > len(description) {
			description = d
		}
	}
	if len(description) < 200 {
		description = FullPageText(doc)
	}

	description = CleanBoilerplate(description)
	return FormatPosting(title, company, description), nil
}
