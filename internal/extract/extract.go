package extract

import (
	"context"
	"regexp"
	"strings"

	"jobfetch/internal/model"
)

// Result is the outcome of one successful strategy invocation: the
// marker-formatted content blob plus the method that produced it. An
// extractor may tag different methods for different internal paths
// (for example Glassdoor's embedded-state parse versus its HTML
// fallback).
type Result struct {
	Content string
	Method  model.Method
}

// Extractor is one strategy in the orchestrator's priority cascade.
// Extract either returns usable content or an error; partial data is
// never signalled as a distinct state.
type Extractor interface {
	// Name identifies the strategy in logs and attempt records.
	Name() string
	// Method is the primary tag for attempt records when the strategy
	// fails before producing a Result.
	Method() model.Method
	Extract(ctx context.Context, rawURL string) (*Result, error)
}

// Availability is implemented by paid tiers whose credentials may be
// absent. An unavailable tier is skipped, not failed.
type Availability interface {
	Available() bool
}

// FormatPosting renders extracted fields into the marker-formatted
// blob consumed by the validator and the structured parser.
func FormatPosting(title, company, description string) string {
	var b strings.Builder
	b.WriteString("Job Title: ")
	b.WriteString(strings.TrimSpace(title))
	b.WriteString("\nCompany: ")
	b.WriteString(strings.TrimSpace(company))
	b.WriteString("\nJob Description:\n")
	b.WriteString(strings.TrimSpace(description))
	return b.String()
}

var (
	titleBlockRe   = regexp.MustCompile(`(?s)Job Title:\s*(.*?)\s*(?:\n|$)`)
	companyBlockRe = regexp.MustCompile(`(?s)Company:\s*(.*?)\s*(?:\n|$)`)
	descBlockRe    = regexp.MustCompile(`(?s)Job Description:\s*(.*)\s*$`)
)

// ParseStructured attempts to recover a JobPosting from a
// marker-formatted blob. It reports false when the markers are absent
// or the description block is too thin to be the real posting text;
// callers then escalate to the language-model fallback.
func ParseStructured(content string, minDescriptionLen int) (*model.JobPosting, bool) {
	tm := titleBlockRe.FindStringSubmatch(content)
	cm := companyBlockRe.FindStringSubmatch(content)
	dm := descBlockRe.FindStringSubmatch(content)
	if dm == nil {
		return nil, false
	}

	desc := strings.TrimSpace(dm[1])
	if len(desc) < minDescriptionLen {
		return nil, false
	}

	posting := &model.JobPosting{Description: desc}
	if tm != nil {
		posting.Title = strings.TrimSpace(tm[1])
	}
	if cm != nil {
		posting.Company = strings.TrimSpace(cm[1])
	}
	return posting, true
}

// requireContent is a shared guard: extractors never return an empty
// or whitespace-only blob as success.
func requireContent(content string, method model.Method) (*Result, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewError(KindParseFailure, "%s produced no content", method)
	}
	return &Result{Content: content, Method: method}, nil
}

// errNoJobID is a helper for the common NotExtractable message shape.
func errNoJobID(site, rawURL string) *Error {
	return NewError(KindNotExtractable, "no %s job ID found in URL %s", site, rawURL)
}
