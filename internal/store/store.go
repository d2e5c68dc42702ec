package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sqlc-dev/pqtype"

	"jobfetch/internal/model"
)

// Store persists extraction attempts for reporting. It implements
// analytics.Recorder; recording is best-effort and never fails the
// extraction path.
type Store struct {
	DB     *sql.DB
	logger *slog.Logger
}

// New creates a Store on a shared *sql.DB with pooling.
func New(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{DB: db, logger: logger}
}

// newID prefers time-ordered UUIDs so attempt rows sort naturally.
func newID() uuid.UUID {
	if id, err := uuid.NewV7(); err == nil {
		return id
	}
	return uuid.New()
}

// Record inserts one attempt row. The full record also lands in the
// detail JSONB column so reporting queries can evolve without schema
// changes.
func (s *Store) Record(ctx context.Context, attempt model.ExtractionAttempt) {
	detail := pqtype.NullRawMessage{}
	if raw, err := json.Marshal(attempt); err == nil {
		detail = pqtype.NullRawMessage{RawMessage: raw, Valid: true}
	}

	errMsg := sql.NullString{}
	if attempt.ErrorMessage != "" {
		errMsg = sql.NullString{String: attempt.ErrorMessage, Valid: true}
	}

	at := attempt.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO extraction_attempts (id, url, method, success, error_message, duration_ms, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		newID(), attempt.URL, string(attempt.Method), attempt.Success, errMsg, attempt.DurationMs, detail, at,
	)
	if err != nil {
		s.logger.Warn("failed to record extraction attempt", "url", attempt.URL, "error", err)
	}
}

// ListRecent returns the newest attempt rows, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]model.ExtractionAttempt, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT url, method, success, error_message, duration_ms, created_at
		FROM extraction_attempts
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.ExtractionAttempt
	for rows.Next() {
		var (
			a      model.ExtractionAttempt
			method string
			errMsg sql.NullString
		)
		if err := rows.Scan(&a.URL, &method, &a.Success, &errMsg, &a.DurationMs, &a.At); err != nil {
			return nil, err
		}
		a.Method = model.Method(method)
		if errMsg.Valid {
			a.ErrorMessage = errMsg.String
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// DeleteOlderThan removes attempt rows created before the cutoff and
// reports how many were deleted.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM extraction_attempts WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
