package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func docFrom(t *testing.T, page string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestJSONLDJobPosting(t *testing.T) {
	page := `<html><head>
	<script type="application/ld+json">{"@type":"BreadcrumbList","itemListElement":[]}</script>
	<script type="application/ld+json">{
		"@context": "https://schema.org/",
		"@type": "JobPosting",
		"title": "Site Reliability Engineer",
		"description": "<p>Operate production systems.</p>",
		"hiringOrganization": {"@type": "Organization", "name": "Example Inc"}
	}</script>
	</head></html>`

	title, company, description, found := jsonLDJobPosting(docFrom(t, page))
	if !found {
		t.Fatalf("JobPosting block not found")
	}
	if title != "Site Reliability Engineer" {
		t.Errorf("title = %q", title)
	}
	if company != "Example Inc" {
		t.Errorf("company = %q", company)
	}
	if !strings.Contains(description, "Operate production systems.") {
		t.Errorf("description = %q", description)
	}
}

func TestJSONLDJobPostingArrayShape(t *testing.T) {
	page := `<html><head>
	<script type="application/ld+json">[
		{"@type": "WebSite", "name": "Workopolis"},
		{"@type": "JobPosting", "title": "Welder", "description": "Weld.", "hiringOrganization": {"name": "Shop"}}
	]</script>
	</head></html>`

	title, company, _, found := jsonLDJobPosting(docFrom(t, page))
	if !found || title != "Welder" || company != "Shop" {
		t.Errorf("array shape: found=%v title=%q company=%q", found, title, company)
	}
}

func TestJSONLDJobPostingAbsent(t *testing.T) {
	page := `<html><head><script type="application/ld+json">{"@type":"WebSite"}</script></head></html>`
	if _, _, _, found := jsonLDJobPosting(docFrom(t, page)); found {
		t.Errorf("found a posting in a page without one")
	}
}
