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

// Glassdoor extracts postings from the embedded client-side state
// (Apollo cache, appCache, or __NEXT_DATA__), falling back to direct
// HTML parsing when no embedded state ships at all.
type Glassdoor struct {
	client  *fetch.Client
	timeout time.Duration
}

func NewGlassdoor(client *fetch.Client, timeout time.Duration) *Glassdoor {
	return &Glassdoor{client: client, timeout: timeout}
}

func (g *Glassdoor) Name() string         { return "glassdoor-apollo" }
func (g *Glassdoor) Method() model.Method { return model.MethodGlassdoorApollo }

// canonicalGlassdoorURL rebuilds a job-listing URL from the
// jobListingId query parameter when present, keeping the Canadian
// domain for Canadian listings. Without the parameter the original URL
// is fetched as-is.
func canonicalGlassdoorURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	listingID := u.Query().Get("jobListingId")
	if listingID == "" {
		return rawURL
	}

	domain := "www.glassdoor.com"
	if strings.Contains(strings.ToLower(u.Hostname()), "glassdoor.ca") {
		domain = "www.glassdoor.ca"
	}
	return fmt.Sprintf("https://%s/job-listing/j?jobListingId=%s", domain, url.QueryEscape(listingID))
}

func (g *Glassdoor) Extract(ctx context.Context, rawURL string) (*Result, error) {
	target := canonicalGlassdoorURL(rawURL)

	resp, err := g.client.Fetch(ctx, fetch.Request{
		URL:     target,
		Headers: fetch.BrowserHeaders("https://www.google.com/"),
		Timeout: g.timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("glassdoor fetch: %w", err)
	}

	state, _, err := parseEmbeddedState(resp.Body)
	if err != nil {
		return nil, err
	}

	if state != nil {
		title, employer, description := scanApolloCache(state)
		if description != "" {
			return requireContent(
				FormatPosting(title, employer, StripHTML(description)),
				model.MethodGlassdoorApollo,
			)
		}
		// Embedded state was present but held no posting; treat like a
		// missing marker and try the rendered HTML.
	}

	return g.extractFromHTML(resp.Body)
}

// extractFromHTML is the selector-based fallback used when no
// embedded-state marker is found.
func (g *Glassdoor) extractFromHTML(page string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, WrapError(KindParseFailure, err, "glassdoor page is unparseable HTML")
	}

	title := firstMatch(doc, glassdoorSelectors.Title, 2)
	company := firstMatch(doc, glassdoorSelectors.Company, 2)
	description := firstMatchHTML(doc, glassdoorSelectors.Description, 200)
	if len(description) < 200 {
		description = FullPageText(doc)
	}

	return requireContent(
		FormatPosting(title, company, description),
		model.MethodGlassdoorHTMLFallback,
	)
}
