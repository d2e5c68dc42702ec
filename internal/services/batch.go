package services

import (
	"context"
	"sync"

	"jobfetch/internal/model"
)

// DefaultBatchConcurrency bounds how many URLs a batch request
// processes at once when no limit is configured.
const DefaultBatchConcurrency = 10

// BatchExtractService fans a list of URLs out over the extraction
// pipeline with bounded concurrency. One URL failing never aborts the
// rest; each slot in the returned slice reports its own outcome.
type BatchExtractService interface {
	ExtractBatch(ctx context.Context, urls []string) []model.BatchItem
}

type batchExtractService struct {
	extractor     JobExtractService
	maxConcurrent int
}

func NewBatchExtractService(extractor JobExtractService, maxConcurrent int) BatchExtractService {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultBatchConcurrency
	}
	return &batchExtractService{extractor: extractor, maxConcurrent: maxConcurrent}
}

func (s *batchExtractService) ExtractBatch(ctx context.Context, urls []string) []model.BatchItem {
	items := make([]model.BatchItem, len(urls))

	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup
	for i, rawURL := range urls {
		items[i] = model.BatchItem{Index: i, URL: rawURL}

		wg.Add(1)
		go func(i int, rawURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				items[i].Error = err.Error()
				return
			}

			posting, err := s.extractor.Extract(ctx, rawURL)
			if err != nil {
				items[i].Error = err.Error()
				return
			}
			items[i].Posting = posting
			items[i].Result = &model.ExtractResult{
				Content: posting.Description,
				Method:  posting.ExtractionMethod,
			}
		}(i, rawURL)
	}
	wg.Wait()

	return items
}
