package model

import "time"

// Method identifies which extraction strategy produced a result.
type Method string

const (
	MethodLinkedInGuestAPI      Method = "linkedin-guest-api"
	MethodIndeedEmbedded        Method = "indeed-embedded"
	MethodIndeedScraperAPI      Method = "indeed-scraperapi"
	MethodIndeedApify           Method = "indeed-apify"
	MethodGlassdoorApollo       Method = "glassdoor-apollo"
	MethodGlassdoorHTMLFallback Method = "glassdoor-html-fallback"
	MethodWorkopolisJSONLD      Method = "workopolis-jsonld"
	MethodGoogleJobsRedirect    Method = "google-jobs-redirect"
	MethodTier1BasicFetch       Method = "tier1-basic-fetch"
	MethodTier2ApifyGeneric     Method = "tier2-apify-generic"
	MethodAIExtraction          Method = "ai-extraction"
	MethodCached                Method = "cached"
)

// JobPosting is the canonical output of the extraction pipeline.
// Title and Company may be empty when unrecoverable; Description must
// not be empty for a success result.
type JobPosting struct {
	Title            string `json:"title"`
	Company          string `json:"company"`
	Description      string `json:"description"`
	SourceURL        string `json:"sourceUrl"`
	ExtractionMethod Method `json:"extractionMethod"`
}

// ExtractionAttempt records a single strategy invocation. It is
// produced by the orchestrator and consumed by the analytics recorder;
// the pipeline itself never reads it back.
type ExtractionAttempt struct {
	URL          string    `json:"url"`
	Method       Method    `json:"method"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	DurationMs   int64     `json:"durationMs"`
	At           time.Time `json:"at"`
}

// ExtractResult is what the orchestration layer hands back to callers:
// the marker-formatted content blob plus the strategy that produced it.
type ExtractResult struct {
	Content string `json:"content"`
	Method  Method `json:"method"`
}

// BatchItem associates one batch result with its input index so that
// callers can rely on position, not completion order.
type BatchItem struct {
	Index   int            `json:"index"`
	URL     string         `json:"url"`
	Result  *ExtractResult `json:"result,omitempty"`
	Posting *JobPosting    `json:"posting,omitempty"`
	Error   string         `json:"error,omitempty"`
}
