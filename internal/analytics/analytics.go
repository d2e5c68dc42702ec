// Package analytics defines the usage-tracking collaborator contract.
// The pipeline writes one attempt record per strategy invocation and
// never reads the data back.
package analytics

import (
	"context"

	"jobfetch/internal/model"
)

// Recorder receives attempt records for later aggregation. Recording
// is best-effort: implementations must not fail the extraction path.
type Recorder interface {
	Record(ctx context.Context, attempt model.ExtractionAttempt)
}

// Noop discards attempt records. Used when no database is configured.
type Noop struct{}

func (Noop) Record(context.Context, model.ExtractionAttempt) {}
