package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobfetch/internal/fetch"
	"jobfetch/internal/model"
)

const (
	linkedinJobsReferer = "https://www.linkedin.com/jobs/search"
	linkedinGuestBase   = "https://www.linkedin.com/jobs-guest/jobs/api/jobPosting"
)

// linkedinIDPatterns cover the four URL shapes that carry a numeric
// job ID. Order matters only for readability; a URL matches at most
// one shape in practice.
var linkedinIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/jobs/view/(\d+)`),
	regexp.MustCompile(`/jobs/collections/[^?#]*?(\d{8,})`),
	regexp.MustCompile(`[?&]currentJobId=(\d+)`),
	regexp.MustCompile(`/jobPosting/(\d+)`),
}

// LinkedInJobID derives the numeric job ID from a LinkedIn URL.
// Derivation is pure: the same URL always yields the same ID.
func LinkedInJobID(rawURL string) (string, bool) {
	for _, re := range linkedinIDPatterns {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// LinkedIn extracts postings through the unauthenticated guest API
// endpoint, which serves the posting body without a session.
type LinkedIn struct {
	client  *fetch.Client
	timeout time.Duration

	// guestBase is overridable in tests.
	guestBase string
}

func NewLinkedIn(client *fetch.Client, timeout time.Duration) *LinkedIn {
	return &LinkedIn{client: client, timeout: timeout, guestBase: linkedinGuestBase}
}

func (l *LinkedIn) Name() string         { return "linkedin-guest-api" }
func (l *LinkedIn) Method() model.Method { return model.MethodLinkedInGuestAPI }

func (l *LinkedIn) Extract(ctx context.Context, rawURL string) (*Result, error) {
	jobID, ok := LinkedInJobID(rawURL)
	if !ok {
		return nil, errNoJobID("LinkedIn", rawURL)
	}

	guestURL := fmt.Sprintf("%s/%s", l.guestBase, jobID)
	resp, err := l.client.Fetch(ctx, fetch.Request{
		URL:     guestURL,
		Headers: fetch.BrowserHeaders(linkedinJobsReferer),
		Timeout: l.timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("linkedin guest api: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Body))
	if err != nil {
		return nil, WrapError(KindParseFailure, err, "linkedin guest api returned unparseable HTML")
	}

	title := firstMatch(doc, linkedinSelectors.Title, 2)
	company := firstMatch(doc, linkedinSelectors.Company, 2)
	description := firstMatchHTML(doc, linkedinSelectors.Description, 200)
	if description == "" {
		// None of the candidates held real posting text; take the
		// whole page minus chrome instead.
		description = FullPageText(doc)
	}

	return requireContent(FormatPosting(title, company, description), l.Method())
}
