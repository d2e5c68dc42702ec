package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetchSendsBrowserHeaders(t *testing.T) {
	var gotUA, gotAccept, gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotReferer = r.Header.Get("Referer")
		fmt.Fprint(w, "<html>ok</html>")
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "", false)
	resp, err := c.Fetch(context.Background(), Request{
		URL:     srv.URL + "/page",
		Headers: BrowserHeaders("https://www.google.com/"),
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if resp.Body != "<html>ok</html>" {
		t.Errorf("body = %q", resp.Body)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("user agent = %q", gotUA)
	}
	if !strings.Contains(gotAccept, "text/html") {
		t.Errorf("accept = %q", gotAccept)
	}
	if gotReferer != "https://www.google.com/" {
		t.Errorf("referer = %q", gotReferer)
	}
}

func TestFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(999)
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "", false)
	_, err := c.Fetch(context.Background(), Request{URL: srv.URL})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if statusErr.Status != 999 {
		t.Errorf("status = %d, want 999", statusErr.Status)
	}
}

func TestFetchFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "landed")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(5*time.Second, "", false)
	resp, err := c.Fetch(context.Background(), Request{URL: srv.URL + "/start"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if resp.Body != "landed" {
		t.Errorf("body = %q", resp.Body)
	}
	if !strings.HasSuffix(resp.FinalURL, "/final") {
		t.Errorf("final URL = %q, want the redirect target", resp.FinalURL)
	}
}

func TestFetchRespectsRobots(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "open")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(5*time.Second, "", true)

	if _, err := c.Fetch(context.Background(), Request{URL: srv.URL + "/public/page"}); err != nil {
		t.Errorf("allowed path blocked: %v", err)
	}
	if _, err := c.Fetch(context.Background(), Request{URL: srv.URL + "/private/page"}); err == nil {
		t.Errorf("disallowed path fetched")
	}
}

func TestFetchPerRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := NewClient(10*time.Second, "", false)
	start := time.Now()
	_, err := c.Fetch(context.Background(), Request{URL: srv.URL, Timeout: 50 * time.Millisecond})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Errorf("per-request timeout not enforced")
	}
}
