package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"jobfetch/internal/fetch"
	"jobfetch/internal/model"
)

const indeedInitialDataMarker = "_initialData"

// IndeedJobKey derives the job key from an Indeed URL. Both the
// search-page vjk parameter and the direct viewjob jk parameter carry
// the same key.
func IndeedJobKey(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	q := u.Query()
	if key := q.Get("vjk"); key != "" {
		return key, true
	}
	if key := q.Get("jk"); key != "" {
		return key, true
	}
	return "", false
}

// indeedHost selects the country-appropriate Indeed host based on the
// host of the original URL.
func indeedHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err == nil && strings.Contains(strings.ToLower(u.Hostname()), "ca.indeed.com") {
		return "ca.indeed.com"
	}
	return "www.indeed.com"
}

// Indeed extracts postings from the lightweight embedded view
// endpoint, which inlines the posting as a JSON assignment instead of
// rendering it client-side.
type Indeed struct {
	client  *fetch.Client
	timeout time.Duration

	// baseURL, when set, replaces the country-aware scheme+host in
	// tests. Empty means pick the host from the input URL.
	baseURL string
}

func NewIndeed(client *fetch.Client, timeout time.Duration) *Indeed {
	return &Indeed{client: client, timeout: timeout}
}

func (i *Indeed) Name() string         { return "indeed-embedded" }
func (i *Indeed) Method() model.Method { return model.MethodIndeedEmbedded }

func (i *Indeed) Extract(ctx context.Context, rawURL string) (*Result, error) {
	jobKey, ok := IndeedJobKey(rawURL)
	if !ok {
		return nil, errNoJobID("Indeed", rawURL)
	}

	base := i.baseURL
	if base == "" {
		base = "https://" + indeedHost(rawURL)
	}
	embeddedURL := fmt.Sprintf("%s/viewjob?viewtype=embedded&jk=%s", base, url.QueryEscape(jobKey))
	resp, err := i.client.Fetch(ctx, fetch.Request{
		URL:     embeddedURL,
		Headers: fetch.BrowserHeaders(base + "/"),
		Timeout: i.timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("indeed embedded view: %w", err)
	}

	raw, ok := extractJSONAfter(resp.Body, indeedInitialDataMarker)
	if !ok {
		// No HTML fallback here: the orchestrator owns fallthrough to
		// the generic tier.
		return nil, NewError(KindParseFailure, "no %s marker in Indeed embedded view for job %s", indeedInitialDataMarker, jobKey)
	}

	var initial map[string]any
	if err := json.Unmarshal([]byte(raw), &initial); err != nil {
		return nil, WrapError(KindParseFailure, err, "indeed %s is not valid JSON", indeedInitialDataMarker)
	}

	title, company, descriptionHTML := indeedPostingFields(initial)
	if descriptionHTML == "" {
		return nil, NewError(KindParseFailure, "indeed %s carried no job description for job %s", indeedInitialDataMarker, jobKey)
	}

	return requireContent(FormatPosting(title, company, StripHTML(descriptionHTML)), i.Method())
}

// indeedPostingFields navigates the fixed _initialData path to the
// title, company name, and HTML-bearing description.
func indeedPostingFields(initial map[string]any) (title, company, descriptionHTML string) {
	wrapper, _ := initial["jobInfoWrapperModel"].(map[string]any)
	info, _ := wrapper["jobInfoModel"].(map[string]any)

	if header, ok := info["jobInfoHeaderModel"].(map[string]any); ok {
		title, _ = header["jobTitle"].(string)
		company, _ = header["companyName"].(string)
	}
	if desc, ok := info["sanitizedJobDescription"].(map[string]any); ok {
		descriptionHTML, _ = desc["content"].(string)
	}
	if descriptionHTML == "" {
		descriptionHTML, _ = info["sanitizedJobDescription"].(string)
	}
	return title, company, descriptionHTML
}
