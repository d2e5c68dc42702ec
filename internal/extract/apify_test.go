package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jobfetch/internal/model"
)

func TestApifyAvailability(t *testing.T) {
	if NewApify("", "", true, time.Second).Available() {
		t.Errorf("tier with no token reports available")
	}
	if NewApify("tok", "", false, time.Second).Available() {
		t.Errorf("disabled tier reports available")
	}
	if !NewApify("tok", "", true, time.Second).Available() {
		t.Errorf("configured tier reports unavailable")
	}
}

func TestApifyExtract(t *testing.T) {
	desc := strings.Repeat("Operate the rendering farm and keep extraction selectors current. ", 8)
	var polls int

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/acts/apify~web-scraper/runs", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "tok" {
			t.Errorf("token = %q", r.URL.Query().Get("token"))
		}
		fmt.Fprint(w, `{"data":{"id":"run1","status":"RUNNING","defaultDatasetId":"ds1"}}`)
	})
	mux.HandleFunc("GET /v2/actor-runs/run1", func(w http.ResponseWriter, _ *http.Request) {
		polls++
		status := "RUNNING"
		if polls >= 2 {
			status = "SUCCEEDED"
		}
		fmt.Fprintf(w, `{"data":{"id":"run1","status":%q,"defaultDatasetId":"ds1"}}`, status)
	})
	mux.HandleFunc("GET /v2/datasets/ds1/items", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `[{"title":"Render Engineer","company":"Example Corp","description":%q}]`, desc)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	a := NewApify("tok", "", true, 5*time.Second)
	a.baseURL = srv.URL + "/v2"
	a.pollInterval = time.Millisecond

	res, err := a.Extract(context.Background(), "https://careers.example.com/7")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Method != model.MethodTier2ApifyGeneric {
		t.Errorf("method = %q, want %q", res.Method, model.MethodTier2ApifyGeneric)
	}
	if !strings.Contains(res.Content, "Job Title: Render Engineer") {
		t.Errorf("content = %q", res.Content)
	}
	if polls < 2 {
		t.Errorf("polls = %d, want the run to be observed running first", polls)
	}
}

func TestApifyExtractIndeedMethodTag(t *testing.T) {
	a := NewApify("tok", "", true, time.Second)
	if got := a.methodFor("https://www.indeed.com/viewjob?jk=a"); got != model.MethodIndeedApify {
		t.Errorf("methodFor(indeed) = %q", got)
	}
	if got := a.methodFor("https://careers.example.com/7"); got != model.MethodTier2ApifyGeneric {
		t.Errorf("methodFor(other) = %q", got)
	}
}

func TestApifyExtractFailedRun(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/acts/apify~web-scraper/runs", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data":{"id":"run1","status":"FAILED","defaultDatasetId":""}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	a := NewApify("tok", "", true, time.Second)
	a.baseURL = srv.URL + "/v2"
	a.pollInterval = time.Millisecond

	if _, err := a.Extract(context.Background(), "https://careers.example.com/7"); err == nil {
		t.Errorf("expected error for failed run")
	}
}
