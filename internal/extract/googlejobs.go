package extract

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobfetch/internal/fetch"
)

// GoogleJobsResolver translates Google Jobs aggregator URLs into the
// underlying source-site URL. It is a redirect-following translator,
// not a content extractor: the orchestrator re-dispatches the resolved
// URL through the normal cascade.
type GoogleJobsResolver struct {
	client  *fetch.Client
	timeout time.Duration
}

func NewGoogleJobsResolver(client *fetch.Client, timeout time.Duration) *GoogleJobsResolver {
	return &GoogleJobsResolver{client: client, timeout: timeout}
}

// docidPatterns match the URL-encoded docid carried in the hash
// fragment of a Google Jobs detail link. Several encodings are in the
// wild.
var docidPatterns = []string{
	"htidocid=",
	"htidocid%3D",
	"docid=",
	"docid%3D",
}

// IsGoogleJobsURL reports whether the URL looks like a Google Jobs
// page: a Google host carrying one of the jobs-view signals.
func IsGoogleJobsURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if !strings.Contains(host, "google.") {
		return false
	}

	lower := strings.ToLower(rawURL)
	if strings.Contains(lower, "/jobs") || strings.Contains(lower, "udm=8") || strings.Contains(lower, "htidocid") {
		return true
	}
	return u.Fragment != "" && strings.Contains(strings.ToLower(u.Fragment), "docid")
}

// googleJobsDocID pulls the docid out of the hash fragment, trying
// each known encoding and URL-decoding the value.
func googleJobsDocID(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	fragment := u.Fragment
	if fragment == "" {
		// Some shapes keep the docid in the query instead.
		fragment = u.RawQuery
	}

	for _, prefix := range docidPatterns {
		idx := strings.Index(strings.ToLower(fragment), strings.ToLower(prefix))
		if idx < 0 {
			continue
		}
		value := fragment[idx+len(prefix):]
		if amp := strings.IndexAny(value, "&#"); amp >= 0 {
			value = value[:amp]
		}
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		if value != "" {
			return value, true
		}
	}
	return "", false
}

// linkBuckets classify outbound links by destination. Selection is
// strict priority: LinkedIn, then Indeed, then Glassdoor, then any
// other external site.
type linkBuckets struct {
	LinkedIn  []string
	Indeed    []string
	Glassdoor []string
	Other     []string
}

func (b *linkBuckets) pick() (string, bool) {
	switch {
	case len(b.LinkedIn) > 0:
		return b.LinkedIn[0], true
	case len(b.Indeed) > 0:
		return b.Indeed[0], true
	case len(b.Glassdoor) > 0:
		return b.Glassdoor[0], true
	case len(b.Other) > 0:
		return b.Other[0], true
	}
	return "", false
}

// Resolve reconstructs the canonical Google Jobs detail page for the
// URL's docid, then picks the best outbound source link from it. When
// nothing resolvable is found the error is terminal: Google Jobs
// itself cannot be scraped, so fallthrough is pointless.
func (r *GoogleJobsResolver) Resolve(ctx context.Context, rawURL string) (string, error) {
	docid, ok := googleJobsDocID(rawURL)
	if !ok {
		return "", NewError(KindUnscrapableAggregator,
			"cannot scrape Google Jobs directly: no job document ID in URL; please enter the job details manually")
	}

	detailURL := fmt.Sprintf("https://www.google.com/search?udm=8&htidocid=%s", url.QueryEscape(docid))
	resp, err := r.client.Fetch(ctx, fetch.Request{
		URL:     detailURL,
		Headers: fetch.BrowserHeaders("https://www.google.com/"),
		Timeout: r.timeout,
	})
	if err != nil {
		return "", WrapError(KindUnscrapableAggregator, err,
			"cannot scrape Google Jobs directly: job detail page unavailable; please enter the job details manually")
	}

	buckets := classifyLinks(resp.Body)
	resolved, ok := buckets.pick()
	if !ok {
		return "", NewError(KindUnscrapableAggregator,
			"cannot scrape Google Jobs directly: no source-site link found; please enter the job details manually")
	}
	return resolved, nil
}

// classifyLinks enumerates hyperlinks on the detail page, unwraps
// Google's /url?q= redirect wrapper, and sorts targets into buckets.
func classifyLinks(page string) *linkBuckets {
	buckets := &linkBuckets{}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return buckets
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}

		href = unwrapGoogleRedirect(href)

		u, err := url.Parse(href)
		if err != nil || !u.IsAbs() {
			return
		}
		host := strings.ToLower(u.Hostname())

		switch {
		case strings.Contains(host, "linkedin.com") && strings.Contains(u.Path, "/jobs/view"):
			buckets.LinkedIn = append(buckets.LinkedIn, href)
		case strings.Contains(host, "indeed.com") && (strings.Contains(u.Path, "/viewjob") || u.Query().Get("vjk") != ""):
			buckets.Indeed = append(buckets.Indeed, href)
		case strings.Contains(host, "glassdoor"):
			buckets.Glassdoor = append(buckets.Glassdoor, href)
		case strings.Contains(host, "google.") || strings.Contains(host, "youtube.") || strings.Contains(host, "gstatic."):
			// Self-referential, not a source site.
		default:
			buckets.Other = append(buckets.Other, href)
		}
	})

	return buckets
}

// unwrapGoogleRedirect resolves /url?q=<target> wrappers to the
// underlying URL.
func unwrapGoogleRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if !strings.HasSuffix(u.Path, "/url") && u.Path != "/url" {
		return href
	}
	if target := u.Query().Get("q"); target != "" {
		return target
	}
	if target := u.Query().Get("url"); target != "" {
		return target
	}
	return href
}
