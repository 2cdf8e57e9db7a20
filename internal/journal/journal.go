// internal/journal/journal.go
package journal

import (
	"context"
	"database/sql"
	"time"

	apperrors "github.com/Dr-Musa/najah-realestate/internal/common/errors"
	"github.com/Dr-Musa/najah-realestate/internal/common/logger"
	"github.com/Dr-Musa/najah-realestate/internal/listing"
)

const schema = `
CREATE TABLE IF NOT EXISTS search_runs (
	run_id         UUID PRIMARY KEY,
	query          TEXT NOT NULL,
	mode           TEXT NOT NULL,
	target_phone   TEXT,
	fragments      INTEGER NOT NULL,
	listings       INTEGER NOT NULL,
	skipped        INTEGER NOT NULL,
	dropped        INTEGER NOT NULL,
	duplicates     INTEGER NOT NULL,
	provider_error TEXT,
	duration_ms    BIGINT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const insertRun = `
INSERT INTO search_runs (run_id, query, mode, target_phone, fragments, listings, skipped, dropped, duplicates, provider_error, duration_ms)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const selectRecent = `
SELECT run_id, query, mode, fragments, listings, dropped, duplicates, provider_error, duration_ms, created_at
FROM search_runs
ORDER BY created_at DESC
LIMIT $1`

// Entry is one journaled run. Listings themselves are never stored.
type Entry struct {
	RunID         string    `json:"runId"`
	Query         string    `json:"query"`
	Mode          string    `json:"mode"`
	Fragments     int       `json:"fragments"`
	Listings      int       `json:"listings"`
	Dropped       int       `json:"dropped"`
	Duplicates    int       `json:"duplicates"`
	ProviderError string    `json:"providerError,omitempty"`
	DurationMs    int64     `json:"durationMs"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Journal struct {
	db     *sql.DB
	logger logger.Logger
}

func New(db *sql.DB, log logger.Logger) *Journal {
	return &Journal{
		db:     db,
		logger: log.With(map[string]interface{}{"component": "search-journal"}),
	}
}

func (j *Journal) EnsureSchema(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, schema); err != nil {
		return apperrors.NewJournalWriteFailedError(err)
	}
	return nil
}

// Record writes one row for a finished run.
func (j *Journal) Record(ctx context.Context, res listing.Result) error {
	var providerErr, targetPhone sql.NullString
	if res.ProviderErr != nil {
		providerErr = sql.NullString{String: res.ProviderErr.Error(), Valid: true}
	}
	if res.Mode.IsPhone() {
		targetPhone = sql.NullString{String: res.Mode.TargetPhone, Valid: true}
	}

	_, err := j.db.ExecContext(ctx, insertRun,
		res.RunID,
		res.Query,
		res.Mode.String(),
		targetPhone,
		res.Fragments,
		len(res.Listings),
		res.Skipped,
		res.Dropped,
		res.Duplicates,
		providerErr,
		res.Duration.Milliseconds(),
	)
	if err != nil {
		j.logger.Error("Failed to journal search run", map[string]interface{}{
			"run_id": res.RunID,
			"error":  err.Error(),
		})
		return apperrors.NewJournalWriteFailedError(err).WithMetadata("runId", res.RunID)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := j.db.QueryContext(ctx, selectRecent, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var providerErr sql.NullString
		if err := rows.Scan(&e.RunID, &e.Query, &e.Mode, &e.Fragments, &e.Listings,
			&e.Dropped, &e.Duplicates, &providerErr, &e.DurationMs, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ProviderError = providerErr.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
