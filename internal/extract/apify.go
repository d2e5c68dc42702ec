package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobfetch/internal/model"
)

const apifyBaseURL = "https://api.apify.com/v2"

// Apify is the browser-farm actor tier: the last-resort generic
// strategy that delegates the page fetch and DOM extraction to a
// remote headless-browser run and polls for the single result record.
// It needs both an API token and an explicit enablement flag; absent
// either, the tier reports unavailable.
type Apify struct {
	token   string
	actorID string
	enabled bool
	http    *http.Client
	timeout time.Duration

	// baseURL and pollInterval are overridable in tests.
	baseURL      string
	pollInterval time.Duration
}

func NewApify(token, actorID string, enabled bool, timeout time.Duration) *Apify {
	if actorID == "" {
		actorID = "apify~web-scraper"
	}
	return &Apify{
		token:        token,
		actorID:      actorID,
		enabled:      enabled,
		http:         &http.Client{Timeout: 30 * time.Second},
		timeout:      timeout,
		baseURL:      apifyBaseURL,
		pollInterval: 2 * time.Second,
	}
}

func (a *Apify) Name() string { return "apify-actor" }

func (a *Apify) Method() model.Method { return model.MethodTier2ApifyGeneric }

// methodFor tags Indeed runs distinctly so reporting can separate the
// dedicated Indeed path from the generic last resort.
func (a *Apify) methodFor(rawURL string) model.Method {
	if strings.Contains(strings.ToLower(rawURL), "indeed.com") {
		return model.MethodIndeedApify
	}
	return model.MethodTier2ApifyGeneric
}

func (a *Apify) Available() bool { return a.enabled && a.token != "" }

type apifyRun struct {
	Data struct {
		ID               string `json:"id"`
		Status           string `json:"status"`
		DefaultDatasetID string `json:"defaultDatasetId"`
	} `json:"data"`
}

// actorInput is the web-scraper actor's standard input: start URL plus
// a page function applying the same selector-candidate pattern used by
// the local tiers, executed in the remote browser.
func (a *Apify) actorInput(target string) map[string]any {
	return map[string]any{
		"startUrls": []map[string]string{{"url": target}},
		"pageFunction": `async function pageFunction(context) {
	const pick = (sels) => {
		for (const sel of sels) {
			const el = document.querySelector(sel);
			if (el && el.innerText.trim().length > 0) return el.innerText.trim();
		}
		return '';
	};
	return {
		title: pick(['h1[class*="job"]', '[class*="job-title"]', '[class*="jobTitle"]', 'h1']),
		company: pick(['[class*="company-name"]', '[class*="companyName"]', '[class*="employer"]']),
		description: pick(['#jobDescriptionText', '[class*="job-description"]', '[class*="jobDescription"]', '[class*="description"]', 'article', 'main', 'body']),
	};
}`,
		"proxyConfiguration": map[string]any{"useApifyProxy": true},
		"maxPagesPerCrawl":   1,
	}
}

func (a *Apify) Extract(ctx context.Context, rawURL string) (*Result, error) {
	if !a.Available() {
		return nil, fmt.Errorf("apify: tier not configured")
	}

	run, err := a.startRun(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	datasetID, err := a.waitForRun(ctx, run)
	if err != nil {
		return nil, err
	}

	record, err := a.firstRecord(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	description := StripHTML(record.Description)
	if description == "" {
		return nil, NewError(KindParseFailure, "apify run for %s returned no description", rawURL)
	}

	return requireContent(
		FormatPosting(record.Title, record.Company, description),
		a.methodFor(rawURL),
	)
}

func (a *Apify) startRun(ctx context.Context, target string) (*apifyRun, error) {
	payload, err := json.Marshal(a.actorInput(target))
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/acts/%s/runs?token=%s", a.baseURL, url.PathEscape(a.actorID), url.QueryEscape(a.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apify start run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("apify start run returned status %d", resp.StatusCode)
	}

	var run apifyRun
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		return nil, fmt.Errorf("apify start run: %w", err)
	}
	return &run, nil
}

// waitForRun polls the run until it finishes or the tier timeout
// elapses, returning the dataset that holds the extracted record.
func (a *Apify) waitForRun(ctx context.Context, run *apifyRun) (string, error) {
	deadline := time.Now().Add(a.timeout)
	runID := run.Data.ID
	datasetID := run.Data.DefaultDatasetID

	for {
		switch run.Data.Status {
		case "SUCCEEDED":
			if run.Data.DefaultDatasetID != "" {
				datasetID = run.Data.DefaultDatasetID
			}
			return datasetID, nil
		case "FAILED", "ABORTED", "TIMED-OUT":
			return "", fmt.Errorf("apify run %s ended with status %s", runID, run.Data.Status)
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf("apify run %s did not finish within %s", runID, a.timeout)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(a.pollInterval):
		}

		endpoint := fmt.Sprintf("%s/actor-runs/%s?token=%s", a.baseURL, url.PathEscape(runID), url.QueryEscape(a.token))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return "", err
		}
		resp, err := a.http.Do(req)
		if err != nil {
			return "", fmt.Errorf("apify poll run: %w", err)
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return "", readErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return "", fmt.Errorf("apify poll run returned status %d", resp.StatusCode)
		}
		if err := json.Unmarshal(body, run); err != nil {
			return "", fmt.Errorf("apify poll run: %w", err)
		}
	}
}

type apifyRecord struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
}

func (a *Apify) firstRecord(ctx context.Context, datasetID string) (*apifyRecord, error) {
	if datasetID == "" {
		return nil, fmt.Errorf("apify run produced no dataset")
	}

	endpoint := fmt.Sprintf("%s/datasets/%s/items?token=%s", a.baseURL, url.PathEscape(datasetID), url.QueryEscape(a.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apify dataset items: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("apify dataset items returned status %d", resp.StatusCode)
	}

	var records []apifyRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("apify dataset items: %w", err)
	}
	if len(records) == 0 {
		return nil, NewError(KindParseFailure, "apify dataset is empty")
	}
	return &records[0], nil
}
