// Package hybrid sequences extraction strategies for a URL: cache
// check, Google Jobs redirect resolution, the site-specific extractor
// for the domain, the generic fetch tier, and finally the paid tiers.
// Free strategies always run before anything with a monetary cost.
package hybrid

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"jobfetch/internal/analytics"
	"jobfetch/internal/cache"
	"jobfetch/internal/extract"
	"jobfetch/internal/fetch"
	"jobfetch/internal/metrics"
	"jobfetch/internal/model"
	"jobfetch/internal/validate"
)

// Route pairs a URL predicate with a dedicated extractor. Routes are
// evaluated in order and at most one runs per URL, which keeps the
// fallthrough policy data-driven and testable per predicate.
type Route struct {
	Name      string
	Match     func(rawURL string) bool
	Extractor extract.Extractor
}

// Resolver translates aggregator URLs to source-site URLs. Resolution
// failure is terminal by design: Google Jobs pages themselves cannot
// be scraped, so running more tiers would only waste cost and latency.
type Resolver interface {
	Resolve(ctx context.Context, rawURL string) (string, error)
}

// PaidTier is an extractor that may be unavailable when its credential
// or enablement flag is absent. Unavailable tiers are skipped, never
// failed.
type PaidTier interface {
	extract.Extractor
	Available() bool
}

// Options wires an Orchestrator. Cache and Tier1 are required; every
// other dependency degrades gracefully when nil.
type Options struct {
	Cache          cache.Cache
	Resolver       Resolver
	Routes         []Route
	Tier1          extract.Extractor
	IndeedProxy    PaidTier
	Actor          PaidTier
	BlockedDomains []string
	Recorder       analytics.Recorder
	Logger         *slog.Logger
}

// Orchestrator is the hybrid dispatcher behind
// FetchJobDescription: one call, many strategies.
type Orchestrator struct {
	cache          cache.Cache
	resolver       Resolver
	routes         []Route
	tier1          extract.Extractor
	indeedProxy    PaidTier
	actor          PaidTier
	blockedDomains []string
	recorder       analytics.Recorder
	logger         *slog.Logger
}

func New(opts Options) *Orchestrator {
	rec := opts.Recorder
	if rec == nil {
		rec = analytics.Noop{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cache:          opts.Cache,
		resolver:       opts.Resolver,
		routes:         opts.Routes,
		tier1:          opts.Tier1,
		indeedProxy:    opts.IndeedProxy,
		actor:          opts.Actor,
		blockedDomains: opts.BlockedDomains,
		recorder:       rec,
		logger:         logger,
	}
}

// hostContains reports whether the URL's host carries the fragment.
func hostContains(rawURL, fragment string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(u.Hostname()), fragment)
}

// DefaultRoutes builds the site-specific dispatch table. Structured
// sources (guest API, embedded JSON, JSON-LD) are preferred over
// generic HTML scraping because they survive presentational changes.
func DefaultRoutes(client *fetch.Client, timeout time.Duration) []Route {
	return []Route{
		{
			Name:      "linkedin",
			Match:     func(u string) bool { return hostContains(u, "linkedin.com") },
			Extractor: extract.NewLinkedIn(client, timeout),
		},
		{
			Name:      "indeed",
			Match:     func(u string) bool { return hostContains(u, "indeed.com") },
			Extractor: extract.NewIndeed(client, timeout),
		},
		{
			Name:      "glassdoor",
			Match:     func(u string) bool { return hostContains(u, "glassdoor") },
			Extractor: extract.NewGlassdoor(client, timeout),
		},
		{
			Name:      "workopolis",
			Match:     func(u string) bool { return hostContains(u, "workopolis.com") },
			Extractor: extract.NewWorkopolis(client, timeout),
		},
	}
}

// FetchJobDescription runs the cascade for one URL. Within a call the
// tiers are strictly sequential; the outcome of each decides whether
// the next runs at all.
func (o *Orchestrator) FetchJobDescription(ctx context.Context, rawURL string) (*model.ExtractResult, error) {
	inputURL := strings.TrimSpace(rawURL)
	if inputURL == "" {
		return nil, extract.NewError(extract.KindNotExtractable, "no URL provided")
	}

	if cached, ok := o.cache.Get(ctx, inputURL); ok {
		metrics.RecordCacheLookup(true)
		o.logger.Info("cache hit", "url", inputURL)
		return &model.ExtractResult{Content: cached, Method: model.MethodCached}, nil
	}
	metrics.RecordCacheLookup(false)

	workingURL := inputURL

	// Google Jobs URLs must be translated first; failure here is the
	// one place fallthrough is intentionally disabled.
	if o.resolver != nil && extract.IsGoogleJobsURL(workingURL) {
		resolved, err := o.resolveGoogleJobs(ctx, workingURL)
		if err != nil {
			return nil, err
		}
		workingURL = resolved
	}

	// Dedicated free extractor for known domains. Failures fall
	// through; they are logged, never propagated.
	for _, route := range o.routes {
		if !route.Match(workingURL) {
			continue
		}
		if res, err := o.attempt(ctx, route.Extractor, workingURL); err == nil {
			return o.accept(ctx, inputURL, res), nil
		}
		break
	}

	// Generic enhanced fetch.
	res, err := o.attempt(ctx, o.tier1, workingURL)
	if err == nil {
		return o.accept(ctx, inputURL, res), nil
	}
	if blockErr := o.checkBlockedSite(workingURL, err); blockErr != nil {
		return nil, blockErr
	}

	// Paid tiers, routed by domain: Indeed goes proxy-first with the
	// actor as backup, everything else goes straight to the actor.
	var paid []PaidTier
	if hostContains(workingURL, "indeed.com") {
		paid = []PaidTier{o.indeedProxy, o.actor}
	} else {
		paid = []PaidTier{o.actor}
	}
	for _, tier := range paid {
		if tier == nil || !tier.Available() {
			continue
		}
		if res, err := o.attempt(ctx, tier, workingURL); err == nil {
			return o.accept(ctx, inputURL, res), nil
		}
	}

	return nil, extract.NewError(extract.KindAllTiersExhausted,
		"could not extract meaningful job description from URL; please enter the job details manually")
}

// resolveGoogleJobs runs the redirect resolver and records the attempt.
func (o *Orchestrator) resolveGoogleJobs(ctx context.Context, rawURL string) (string, error) {
	start := time.Now()
	resolved, err := o.resolver.Resolve(ctx, rawURL)

	attempt := model.ExtractionAttempt{
		URL:        rawURL,
		Method:     model.MethodGoogleJobsRedirect,
		Success:    err == nil,
		DurationMs: time.Since(start).Milliseconds(),
		At:         time.Now().UTC(),
	}
	if err != nil {
		attempt.ErrorMessage = err.Error()
	}
	o.recorder.Record(ctx, attempt)
	metrics.RecordExtraction(string(model.MethodGoogleJobsRedirect), err == nil)

	if err != nil {
		o.logger.Warn("google jobs resolution failed", "url", rawURL, "error", err)
		return "", err
	}
	o.logger.Info("google jobs resolved", "url", rawURL, "resolved", resolved)
	return resolved, nil
}

// attempt runs one strategy, validates its output, and records the
// outcome. Validation rejection counts as failure for fallthrough.
func (o *Orchestrator) attempt(ctx context.Context, ex extract.Extractor, rawURL string) (*extract.Result, error) {
	start := time.Now()
	res, err := ex.Extract(ctx, rawURL)
	method := ex.Method()

	if err == nil {
		method = res.Method
		if reason := validate.Check(res.Content); reason != validate.ReasonOK {
			err = extract.NewError(extract.KindValidationRejected, "content rejected: %s", reason)
		}
	}

	attempt := model.ExtractionAttempt{
		URL:        rawURL,
		Method:     method,
		Success:    err == nil,
		DurationMs: time.Since(start).Milliseconds(),
		At:         time.Now().UTC(),
	}
	if err != nil {
		attempt.ErrorMessage = err.Error()
	}
	o.recorder.Record(ctx, attempt)
	metrics.RecordExtraction(string(method), err == nil)

	if err != nil {
		o.logger.Warn("extraction strategy failed",
			"strategy", ex.Name(),
			"url", rawURL,
			"error", err,
		)
		return nil, err
	}

	o.logger.Info("extraction strategy succeeded",
		"strategy", ex.Name(),
		"method", method,
		"url", rawURL,
		"content_len", len(res.Content),
		"duration_ms", attempt.DurationMs,
	)
	return res, nil
}

// accept caches validated content under the original input URL and
// builds the caller-facing result.
func (o *Orchestrator) accept(ctx context.Context, inputURL string, res *extract.Result) *model.ExtractResult {
	o.cache.Set(ctx, inputURL, res.Content)
	return &model.ExtractResult{Content: res.Content, Method: res.Method}
}

// checkBlockedSite turns a 403/999 from a curated dead-end domain into
// a terminal error. The same status from an unlisted domain is not
// conclusive: the paid tiers may still get through.
func (o *Orchestrator) checkBlockedSite(rawURL string, err error) error {
	var statusErr *fetch.StatusError
	if !errors.As(err, &statusErr) {
		return nil
	}
	if statusErr.Status != 403 && statusErr.Status != 999 {
		return nil
	}

	u, parseErr := url.Parse(rawURL)
	if parseErr != nil {
		return nil
	}
	host := strings.ToLower(u.Hostname())
	for _, domain := range o.blockedDomains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain == "" {
			continue
		}
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return extract.NewError(extract.KindKnownBlockedSite,
				"%s blocks automated extraction; please enter the job details manually", domain)
		}
	}
	return nil
}
