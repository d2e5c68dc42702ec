package extract

import "testing"

func TestIsGoogleJobsURL(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://www.google.com/search?udm=8&htidocid=abc123", true},
		{"https://www.google.com/search?q=jobs#htidocid=abc123", true},
		{"https://www.google.ca/search?q=golang+developer&udm=8", true},
		{"https://www.google.com/search?q=weather", false},
		// A jobs path on a non-Google host is not an aggregator URL.
		{"https://www.linkedin.com/jobs/view/123", false},
		{"https://careers.example.com/jobs/42", false},
	}

	for _, tc := range cases {
		if got := IsGoogleJobsURL(tc.url); got != tc.want {
			t.Errorf("IsGoogleJobsURL(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestGoogleJobsDocID(t *testing.T) {
	cases := []struct {
		url    string
		wantID string
		wantOK bool
	}{
		{"https://www.google.com/search?q=jobs#htidocid=AbC-123_xyz", "AbC-123_xyz", true},
		{"https://www.google.com/search?udm=8&htidocid=AbC-123_xyz", "AbC-123_xyz", true},
		{"https://www.google.com/search?q=jobs#fragment-docid%3DQQ11", "QQ11", true},
		{"https://www.google.com/search?q=jobs#htidocid=first&foo=bar", "first", true},
		{"https://www.google.com/search?q=jobs", "", false},
	}

	for _, tc := range cases {
		id, ok := googleJobsDocID(tc.url)
		if ok != tc.wantOK || id != tc.wantID {
			t.Errorf("googleJobsDocID(%q) = %q, %v; want %q, %v", tc.url, id, ok, tc.wantID, tc.wantOK)
		}
	}
}

func TestClassifyLinksPriority(t *testing.T) {
	page := `<html><body>
		<a href="#local">skip</a>
		<a href="https://www.youtube.com/watch?v=1">video</a>
		<a href="https://careers.example.com/postings/9">apply here</a>
		<a href="https://www.glassdoor.com/job-listing/j?jobListingId=7">glassdoor</a>
		<a href="https://www.google.com/url?q=https://www.indeed.com/viewjob%3Fjk%3Dabc">indeed</a>
		<a href="https://www.linkedin.com/jobs/view/42">linkedin</a>
	</body></html>`

	buckets := classifyLinks(page)
	if len(buckets.LinkedIn) != 1 || len(buckets.Indeed) != 1 || len(buckets.Glassdoor) != 1 || len(buckets.Other) != 1 {
		t.Fatalf("bucket sizes = %d/%d/%d/%d, want 1/1/1/1",
			len(buckets.LinkedIn), len(buckets.Indeed), len(buckets.Glassdoor), len(buckets.Other))
	}

	picked, ok := buckets.pick()
	if !ok || picked != "https://www.linkedin.com/jobs/view/42" {
		t.Errorf("pick() = %q, %v; want the LinkedIn link", picked, ok)
	}
}

func TestClassifyLinksFallsBackToOther(t *testing.T) {
	page := `<html><body>
		<a href="https://www.google.com/search?q=more">more results</a>
		<a href="https://careers.example.com/postings/9">apply here</a>
	</body></html>`

	picked, ok := classifyLinks(page).pick()
	if !ok || picked != "https://careers.example.com/postings/9" {
		t.Errorf("pick() = %q, %v; want the external career link", picked, ok)
	}
}

func TestUnwrapGoogleRedirect(t *testing.T) {
	got := unwrapGoogleRedirect("https://www.google.com/url?q=https://example.com/job&sa=D")
	if got != "https://example.com/job" {
		t.Errorf("unwrapGoogleRedirect = %q", got)
	}
	passthrough := "https://example.com/other"
	if got := unwrapGoogleRedirect(passthrough); got != passthrough {
		t.Errorf("non-redirect URL altered: %q", got)
	}
}
