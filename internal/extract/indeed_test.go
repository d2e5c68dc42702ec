package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"jobfetch/internal/fetch"
	"jobfetch/internal/model"
)

func TestIndeedJobKey(t *testing.T) {
	cases := []struct {
		url     string
		wantKey string
		wantOK  bool
	}{
		{"https://www.indeed.com/jobs?q=golang&vjk=abc123def456", "abc123def456", true},
		{"https://ca.indeed.com/viewjob?jk=deadbeef0001", "deadbeef0001", true},
		{"https://www.indeed.com/viewjob?viewtype=embedded&jk=deadbeef0001", "deadbeef0001", true},
		{"https://www.indeed.com/jobs?q=golang", "", false},
		{"://bad", "", false},
	}

	for _, tc := range cases {
		key, ok := IndeedJobKey(tc.url)
		if ok != tc.wantOK || key != tc.wantKey {
			t.Errorf("IndeedJobKey(%q) = %q, %v; want %q, %v", tc.url, key, ok, tc.wantKey, tc.wantOK)
		}
	}
}

func TestIndeedHost(t *testing.T) {
	if got := indeedHost("https://ca.indeed.com/jobs?vjk=a"); got != "ca.indeed.com" {
		t.Errorf("indeedHost = %q, want ca.indeed.com", got)
	}
	if got := indeedHost("https://www.indeed.com/jobs?vjk=a"); got != "www.indeed.com" {
		t.Errorf("indeedHost = %q, want www.indeed.com", got)
	}
}

func TestRewriteIndeedURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{
			"https://www.indeed.com/jobs?q=golang&l=Toronto&vjk=abc123",
			"https://www.indeed.com/viewjob?jk=abc123",
		},
		{
			"https://ca.indeed.com/jobs?q=golang&vjk=abc123",
			"https://ca.indeed.com/viewjob?jk=abc123",
		},
		{
			"https://www.indeed.com/viewjob?jk=abc123",
			"https://www.indeed.com/viewjob?jk=abc123",
		},
		{
			"https://www.linkedin.com/jobs/view/1?vjk=abc123",
			"https://www.linkedin.com/jobs/view/1?vjk=abc123",
		},
	}

	for _, tc := range cases {
		if got := RewriteIndeedURL(tc.in); got != tc.want {
			t.Errorf("RewriteIndeedURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIndeedPostingFields(t *testing.T) {
	raw := `{
		"jobInfoWrapperModel": {
			"jobInfoModel": {
				"jobInfoHeaderModel": {
					"jobTitle": "Backend Developer",
					"companyName": "Acme Corp"
				},
				"sanitizedJobDescription": {
					"content": "<p>Build services in Go.</p>"
				}
			}
		}
	}`
	var initial map[string]any
	if err := json.Unmarshal([]byte(raw), &initial); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	title, company, descHTML := indeedPostingFields(initial)
	if title != "Backend Developer" {
		t.Errorf("title = %q", title)
	}
	if company != "Acme Corp" {
		t.Errorf("company = %q", company)
	}
	if descHTML != "<p>Build services in Go.</p>" {
		t.Errorf("description = %q", descHTML)
	}
}

func TestIndeedPostingFieldsMissingBranches(t *testing.T) {
	title, company, desc := indeedPostingFields(map[string]any{})
	if title != "" || company != "" || desc != "" {
		t.Errorf("empty model should yield empty fields, got %q/%q/%q", title, company, desc)
	}
}

func embeddedViewPage(initialData string) string {
	return `<html><body><script>window._initialData = ` + initialData + `;</script></body></html>`
}

func TestIndeedExtractFromEmbeddedView(t *testing.T) {
	descHTML := "<p>" + strings.Repeat("Ship the matching engine that pairs candidates with roles. ", 10) + "</p>"
	initial := map[string]any{
		"jobInfoWrapperModel": map[string]any{
			"jobInfoModel": map[string]any{
				"jobInfoHeaderModel": map[string]any{
					"jobTitle":    "Search Engineer",
					"companyName": "Example Corp",
				},
				"sanitizedJobDescription": map[string]any{
					"content": descHTML,
				},
			},
		},
	}
	payload, err := json.Marshal(initial)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		fmt.Fprint(w, embeddedViewPage(string(payload)))
	}))
	defer srv.Close()

	in := NewIndeed(fetch.NewClient(5*time.Second, "", false), 5*time.Second)
	in.baseURL = srv.URL

	res, err := in.Extract(context.Background(), "https://www.indeed.com/jobs?q=golang&vjk=abc123def456")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if gotQuery.Get("viewtype") != "embedded" || gotQuery.Get("jk") != "abc123def456" {
		t.Errorf("embedded view query = %v", gotQuery)
	}
	if res.Method != model.MethodIndeedEmbedded {
		t.Errorf("method = %q", res.Method)
	}
	if !strings.Contains(res.Content, "Job Title: Search Engineer") {
		t.Errorf("title missing from content:\n%s", res.Content)
	}
	if !strings.Contains(res.Content, "Company: Example Corp") {
		t.Errorf("company missing from content:\n%s", res.Content)
	}
	if strings.Contains(res.Content, "<p>") {
		t.Errorf("description HTML survived stripping:\n%s", res.Content)
	}
	if !strings.Contains(res.Content, "matching engine") {
		t.Errorf("description missing from content")
	}
}

func TestIndeedExtractMissingMarkerIsParseFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><div id="viewJobSSRRoot">client rendered</div></body></html>`)
	}))
	defer srv.Close()

	in := NewIndeed(fetch.NewClient(5*time.Second, "", false), 5*time.Second)
	in.baseURL = srv.URL

	_, err := in.Extract(context.Background(), "https://www.indeed.com/viewjob?jk=abc123")
	if err == nil {
		t.Fatalf("expected error when _initialData marker is absent")
	}
	if !IsKind(err, KindParseFailure) {
		t.Errorf("err = %v, want ParseFailure", err)
	}
}

func TestIndeedExtractRejectsURLWithoutJobKey(t *testing.T) {
	in := NewIndeed(fetch.NewClient(time.Second, "", false), time.Second)
	_, err := in.Extract(context.Background(), "https://www.indeed.com/jobs?q=golang")
	if err == nil {
		t.Fatalf("expected error for URL without a job key")
	}
	if !IsKind(err, KindNotExtractable) {
		t.Errorf("err = %v, want NotExtractable", err)
	}
}
