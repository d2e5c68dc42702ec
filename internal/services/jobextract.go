// Package services holds the business logic between the HTTP layer
// and the extraction machinery, so handlers stay thin and the logic
// is testable without Fiber.
package services

import (
	"context"
	"log/slog"
	"strings"

	"jobfetch/internal/extract"
	"jobfetch/internal/model"
)

// minStructuredDescription is the shortest description a structured
// parse may return before the content is handed to the language model
// instead.
const minStructuredDescription = 500

// Fetcher is the orchestration entry point: one URL in, a validated
// content blob out.
type Fetcher interface {
	FetchJobDescription(ctx context.Context, rawURL string) (*model.ExtractResult, error)
}

// Coercer turns unstructured content (or a bare URL, for cascade
// failures) into a structured posting via a language model.
type Coercer interface {
	Coerce(ctx context.Context, sourceURL, content string) (*model.JobPosting, error)
	ExtractFromURL(ctx context.Context, sourceURL string) (*model.JobPosting, error)
}

// JobExtractService is the full pipeline behind the extract endpoint:
// orchestrated fetch, structured parse, AI coercion when parsing
// falls short.
type JobExtractService interface {
	Extract(ctx context.Context, rawURL string) (*model.JobPosting, error)
}

type jobExtractService struct {
	fetcher Fetcher
	coercer Coercer
	logger  *slog.Logger
}

// NewJobExtractService constructs the pipeline service. A nil coercer
// disables the AI stage; parse failures then surface as errors.
func NewJobExtractService(fetcher Fetcher, coercer Coercer, logger *slog.Logger) JobExtractService {
	if logger == nil {
		logger = slog.Default()
	}
	return &jobExtractService{fetcher: fetcher, coercer: coercer, logger: logger}
}

func (s *jobExtractService) Extract(ctx context.Context, rawURL string) (*model.JobPosting, error) {
	sourceURL := strings.TrimSpace(rawURL)

	res, err := s.fetcher.FetchJobDescription(ctx, sourceURL)
	if err != nil {
		// Terminal failures carry user-facing advice and must not be
		// papered over by another fetch.
		if extract.IsTerminal(err) && !extract.IsKind(err, extract.KindAllTiersExhausted) {
			return nil, err
		}
		if s.coercer == nil {
			return nil, err
		}
		s.logger.Info("cascade failed, trying rendered refetch", "url", sourceURL, "error", err)
		return s.coercer.ExtractFromURL(ctx, sourceURL)
	}

	if posting, ok := extract.ParseStructured(res.Content, minStructuredDescription); ok {
		posting.SourceURL = sourceURL
		posting.ExtractionMethod = res.Method
		return posting, nil
	}

	if s.coercer == nil {
		return nil, extract.NewError(extract.KindParseFailure,
			"extracted content is not in a recognizable structure")
	}
	s.logger.Info("structured parse fell short, coercing via language model",
		"url", sourceURL, "method", res.Method, "content_len", len(res.Content))
	return s.coercer.Coerce(ctx, sourceURL, res.Content)
}
