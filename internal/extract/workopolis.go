package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobfetch/internal/fetch"
	"jobfetch/internal/model"
)

// Workopolis is a single-shot JSON-LD strategy. The site reliably
// ships a schema.org JobPosting block, so there is no selector
// fallback; incomplete structured data is an error and the
// orchestrator moves on.
type Workopolis struct {
	client  *fetch.Client
	timeout time.Duration
}

func NewWorkopolis(client *fetch.Client, timeout time.Duration) *Workopolis {
	return &Workopolis{client: client, timeout: timeout}
}

func (w *Workopolis) Name() string         { return "workopolis-jsonld" }
func (w *Workopolis) Method() model.Method { return model.MethodWorkopolisJSONLD }

func (w *Workopolis) Extract(ctx context.Context, rawURL string) (*Result, error) {
	resp, err := w.client.Fetch(ctx, fetch.Request{
		URL:     rawURL,
		Headers: fetch.BrowserHeaders("https://www.google.com/"),
		Timeout: w.timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("workopolis fetch: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Body))
	if err != nil {
		return nil, WrapError(KindParseFailure, err, "workopolis page is unparseable HTML")
	}

	title, company, description, found := jsonLDJobPosting(doc)
	if !found {
		return nil, NewError(KindParseFailure, "no JSON-LD job posting block on %s", rawURL)
	}

	description = StripHTML(description)
	if title == "" || company == "" || len(description) < 200 {
		return nil, NewError(KindParseFailure, "incomplete JSON-LD job data on %s", rawURL)
	}

	return requireContent(FormatPosting(title, company, description), w.Method())
}

// jsonLDJobPosting scans every ld+json script block for a JobPosting
// object, tolerating both bare objects and arrays.
func jsonLDJobPosting(doc *goquery.Document) (title, company, description string, found bool) {
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var raw any
		if err := json.Unmarshal([]byte(sel.Text()), &raw); err != nil {
			return true
		}

		candidates := []any{raw}
		if arr, ok := raw.([]any); ok {
			candidates = arr
		}

		for _, cand := range candidates {
			obj, ok := cand.(map[string]any)
			if !ok {
				continue
			}
			if t, _ := obj["@type"].(string); t != "" && !strings.EqualFold(t, "JobPosting") {
				continue
			}

			title, _ = obj["title"].(string)
			description, _ = obj["description"].(string)
			if org, ok := obj["hiringOrganization"].(map[string]any); ok {
				company, _ = org["name"].(string)
			}
			if title != "" || description != "" {
				found = true
				return false
			}
		}
		return true
	})
	return title, company, description, found
}
