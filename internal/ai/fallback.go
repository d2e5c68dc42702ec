// Package ai is the last line of defense: when the tier cascade
// produces unstructured content or fails outright, a language model
// coerces whatever raw content exists into the posting schema.
package ai

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"jobfetch/internal/extract"
	"jobfetch/internal/llm"
	"jobfetch/internal/metrics"
	"jobfetch/internal/model"
)

// MinDescriptionLen is the acceptance floor for a model-produced
// description. Deliberately lower than the validator's threshold: the
// model has already distilled the page, so a shorter description can
// still be the real posting.
const MinDescriptionLen = 100

const manualEntryAdvice = "please enter the job details manually"

// RenderFetcher refetches a page through a rendering-capable proxy.
// Used once when the cascade failed before producing any content.
type RenderFetcher interface {
	Available() bool
	FetchRendered(ctx context.Context, url string) (string, error)
}

// Service runs the language-model coercion. Single-shot: there is no
// retry loop on validation failure.
type Service struct {
	clientFactory func() (llm.Client, llm.Provider, string, error)
	renderer      RenderFetcher
	logger        *slog.Logger
	timeout       time.Duration
}

func NewService(factory func() (llm.Client, llm.Provider, string, error), renderer RenderFetcher, logger *slog.Logger, timeout time.Duration) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		clientFactory: factory,
		renderer:      renderer,
		logger:        logger,
		timeout:       timeout,
	}
}

// Coerce sends raw content to the model and validates the structured
// response. The content is capped inside the llm package.
func (s *Service) Coerce(ctx context.Context, sourceURL, content string) (*model.JobPosting, error) {
	client, provider, modelName, err := s.clientFactory()
	if err != nil {
		return nil, extract.WrapError(extract.KindAllTiersExhausted, err,
			"no language model available to recover the posting; %s", manualEntryAdvice)
	}

	res, err := client.CoerceJobPosting(ctx, llm.CoerceRequest{
		URL:     sourceURL,
		Content: content,
		Timeout: s.timeout,
	})
	if err != nil {
		metrics.RecordLLMCoerce(string(provider), modelName, false)
		return nil, extract.WrapError(extract.KindAllTiersExhausted, err,
			"language-model extraction failed; %s", manualEntryAdvice)
	}

	if res.Title == "" || res.Company == "" || len(res.Description) < MinDescriptionLen {
		metrics.RecordLLMCoerce(string(provider), modelName, false)
		return nil, extract.NewError(extract.KindAllTiersExhausted,
			"language model could not recover a complete posting; %s", manualEntryAdvice)
	}

	metrics.RecordLLMCoerce(string(provider), modelName, true)
	s.logger.Info("ai coercion succeeded",
		"url", sourceURL,
		"provider", provider,
		"model", modelName,
		"description_len", len(res.Description),
	)

	return &model.JobPosting{
		Title:            res.Title,
		Company:          res.Company,
		Description:      res.Description,
		SourceURL:        sourceURL,
		ExtractionMethod: model.MethodAIExtraction,
	}, nil
}

// ExtractFromURL is the recovery path for a cascade that failed before
// producing any content: one rendering-proxy refetch, then coercion.
// Without a proxy credential the terminal error stands.
func (s *Service) ExtractFromURL(ctx context.Context, sourceURL string) (*model.JobPosting, error) {
	if s.renderer == nil || !s.renderer.Available() {
		return nil, extract.NewError(extract.KindAllTiersExhausted,
			"could not extract meaningful job description from URL; %s", manualEntryAdvice)
	}

	page, err := s.renderer.FetchRendered(ctx, sourceURL)
	if err != nil || strings.TrimSpace(page) == "" {
		return nil, extract.WrapError(extract.KindAllTiersExhausted, err,
			"could not extract meaningful job description from URL; %s", manualEntryAdvice)
	}

	return s.Coerce(ctx, sourceURL, page)
}
