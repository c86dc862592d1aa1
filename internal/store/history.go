package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"venture-builder/internal/common/errors"
)

const (
	HistorySucceeded = "succeeded"
	HistoryFailed    = "failed"

	defaultHistoryLimit = 20
)

const createHistoryTable = `
CREATE TABLE IF NOT EXISTS publish_history (
	id           UUID PRIMARY KEY,
	project_id   TEXT NOT NULL,
	target       TEXT NOT NULL,
	status       TEXT NOT NULL,
	url          TEXT NOT NULL DEFAULT '',
	failed_files TEXT[] NOT NULL DEFAULT '{}',
	message      TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_publish_history_project ON publish_history (project_id, created_at DESC);`

const insertHistory = `INSERT INTO publish_history (id, project_id, target, status, url, failed_files, message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const selectHistory = `SELECT id, project_id, target, status, url, failed_files, message, created_at
FROM publish_history WHERE project_id = $1 ORDER BY created_at DESC LIMIT $2`

// PublishRecord is one publish attempt against a remote target.
type PublishRecord struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	Target      string    `json:"target"`
	Status      string    `json:"status"`
	URL         string    `json:"url"`
	FailedFiles []string  `json:"failedFiles"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"createdAt"`
}

type HistoryStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db, now: time.Now}
}

func (s *HistoryStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createHistoryTable); err != nil {
		return fmt.Errorf("create publish_history: %w", err)
	}
	return nil
}

// Record inserts rec, filling ID and CreatedAt when unset.
func (s *HistoryStore) Record(ctx context.Context, rec PublishRecord) (*PublishRecord, error) {
	if rec.ProjectID == "" || rec.Target == "" {
		return nil, errors.NewInvalidRequestError("projectId and target are required")
	}
	if rec.Status != HistorySucceeded && rec.Status != HistoryFailed {
		return nil, errors.NewInvalidRequestError(fmt.Sprintf("invalid status %q", rec.Status))
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}
	if rec.FailedFiles == nil {
		rec.FailedFiles = []string{}
	}

	_, err := s.db.ExecContext(ctx, insertHistory,
		rec.ID, rec.ProjectID, rec.Target, rec.Status, rec.URL, pq.Array(rec.FailedFiles), rec.Message, rec.CreatedAt)
	if err != nil {
		return nil, errors.NewStoreUnavailableError("publish_history", err)
	}
	return &rec, nil
}

// ListByProject returns the newest records first. limit <= 0 uses a default of 20.
func (s *HistoryStore) ListByProject(ctx context.Context, projectID string, limit int) ([]PublishRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx, selectHistory, projectID, limit)
	if err != nil {
		return nil, errors.NewStoreUnavailableError("publish_history", err)
	}
	defer rows.Close()

	records := []PublishRecord{}
	for rows.Next() {
		var rec PublishRecord
		var failed pq.StringArray
		if err := rows.Scan(&rec.ID, &rec.ProjectID, &rec.Target, &rec.Status, &rec.URL, &failed, &rec.Message, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan publish_history: %w", err)
		}
		rec.FailedFiles = []string(failed)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreUnavailableError("publish_history", err)
	}
	return records, nil
}
