package services

import (
	"context"

	"jobfetch/internal/model"
)

// AttemptLister is the read side of the analytics store.
type AttemptLister interface {
	ListRecent(ctx context.Context, limit int) ([]model.ExtractionAttempt, error)
}

// AttemptsService exposes recent extraction attempts for the
// diagnostics endpoint.
type AttemptsService interface {
	Recent(ctx context.Context, limit int) ([]model.ExtractionAttempt, error)
}

type attemptsService struct {
	lister AttemptLister
}

// NewAttemptsService wraps the store's attempt log. A nil lister
// yields an always-empty service, for deployments without a database.
func NewAttemptsService(lister AttemptLister) AttemptsService {
	return &attemptsService{lister: lister}
}

func (s *attemptsService) Recent(ctx context.Context, limit int) ([]model.ExtractionAttempt, error) {
	if s.lister == nil {
		return []model.ExtractionAttempt{}, nil
	}
	return s.lister.ListRecent(ctx, limit)
}
