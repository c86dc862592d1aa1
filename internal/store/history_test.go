package store

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venture-builder/internal/common/errors"
)

var historyColumns = []string{"id", "project_id", "target", "status", "url", "failed_files", "message", "created_at"}

func newTestHistoryStore(t *testing.T) (*HistoryStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewHistoryStore(db), mock
}

func TestHistoryStore_Record(t *testing.T) {
	s, mock := newTestHistoryStore(t)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO publish_history")).
		WithArgs(sqlmock.AnyArg(), "proj-1", "repository", HistorySucceeded, "https://github.com/octo/acme", sqlmock.AnyArg(), "", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec, err := s.Record(context.Background(), PublishRecord{
		ProjectID:   "proj-1",
		Target:      "repository",
		Status:      HistorySucceeded,
		URL:         "https://github.com/octo/acme",
		FailedFiles: []string{"styles.css"},
	})
	require.NoError(t, err)
	assert.Len(t, rec.ID, 36)
	assert.Equal(t, now, rec.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStore_RecordValidation(t *testing.T) {
	s, _ := newTestHistoryStore(t)

	tests := []struct {
		name string
		rec  PublishRecord
	}{
		{"missing project", PublishRecord{Target: "repository", Status: HistorySucceeded}},
		{"missing target", PublishRecord{ProjectID: "p", Status: HistorySucceeded}},
		{"bad status", PublishRecord{ProjectID: "p", Target: "deployment", Status: "pending"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Record(context.Background(), tt.rec)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
		})
	}
}

func TestHistoryStore_RecordDatabaseError(t *testing.T) {
	s, mock := newTestHistoryStore(t)

	mock.ExpectExec("INSERT INTO publish_history").WillReturnError(fmt.Errorf("connection reset"))

	_, err := s.Record(context.Background(), PublishRecord{ProjectID: "p", Target: "deployment", Status: HistoryFailed, Message: "Deployment failed"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeStoreUnavailable))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStore_ListByProject(t *testing.T) {
	s, mock := newTestHistoryStore(t)
	t1 := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(historyColumns).
		AddRow("id-2", "proj-1", "deployment", HistorySucceeded, "https://acme.vercel.app", "{}", "", t1).
		AddRow("id-1", "proj-1", "repository", HistorySucceeded, "https://github.com/octo/acme", "{styles.css,robots.txt}", "", t2)
	mock.ExpectQuery(regexp.QuoteMeta("FROM publish_history WHERE project_id = $1")).
		WithArgs("proj-1", defaultHistoryLimit).
		WillReturnRows(rows)

	records, err := s.ListByProject(context.Background(), "proj-1", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "deployment", records[0].Target)
	assert.Empty(t, records[0].FailedFiles)
	assert.Equal(t, []string{"styles.css", "robots.txt"}, records[1].FailedFiles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStore_EnsureSchema(t *testing.T) {
	s, mock := newTestHistoryStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS publish_history").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
