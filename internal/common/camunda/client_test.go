package camunda

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venture-builder/internal/common/errors"
	"venture-builder/internal/common/metrics"
)

var fastRetry = &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func TestExecuteWithRetry_RecoversFromTransientError(t *testing.T) {
	calls := 0
	err := executeWithRetry(context.Background(), fastRetry, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("rpc error: code = Unavailable desc = connection refused")
		}
		return nil
	}, "topology")

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_GivesUp(t *testing.T) {
	calls := 0
	err := executeWithRetry(context.Background(), fastRetry, func(ctx context.Context) error {
		calls++
		return fmt.Errorf("context deadline exceeded")
	}, "topology")

	assert.Equal(t, 3, calls)
	assert.True(t, errors.HasCode(err, errors.ErrCodeServiceUnavailable))
}

func TestExecuteWithRetry_PermanentErrorNotRetried(t *testing.T) {
	calls := 0
	err := executeWithRetry(context.Background(), fastRetry, func(ctx context.Context) error {
		calls++
		return fmt.Errorf("permission denied")
	}, "complete job")

	assert.Equal(t, 1, calls)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnauthorized))
}

func TestExecuteWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	slow := &RetryConfig{MaxRetries: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}
	err := executeWithRetry(ctx, slow, func(ctx context.Context) error {
		return fmt.Errorf("connection reset by peer")
	}, "topology")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestInstrument(t *testing.T) {
	const taskType = "instrument-test"
	called := false

	handler := Instrument(taskType, func(client worker.JobClient, job entities.Job) {
		called = true
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(taskType)))
	})
	handler(nil, entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1, Type: taskType}})

	assert.True(t, called)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(taskType)))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.WorkerJobDuration, "worker_job_duration_seconds"))
}

type fakeJobClient struct{}

func (fakeJobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 { return nil }
func (fakeJobClient) NewFailJobCommand() commands.FailJobCommandStep1 { return nil }
func (fakeJobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 { return nil }

type recordedJob struct {
	taskType string
	status   string
}

type fakeRecorder struct {
	processed []recordedJob
	durations int
}

func (r *fakeRecorder) RecordJobProcessed(ctx context.Context, taskType, status string) {
	r.processed = append(r.processed, recordedJob{taskType, status})
}

func (r *fakeRecorder) RecordJobDuration(ctx context.Context, taskType string, d time.Duration, status string) {
	r.durations++
}

func TestObserve(t *testing.T) {
	tests := []struct {
		name   string
		handle HandlerFunc
		status string
	}{
		{"completed", func(c worker.JobClient, j entities.Job) { c.NewCompleteJobCommand() }, JobStatusCompleted},
		{"failed", func(c worker.JobClient, j entities.Job) { c.NewFailJobCommand() }, JobStatusFailed},
		{"thrown", func(c worker.JobClient, j entities.Job) { c.NewThrowErrorCommand() }, JobStatusThrown},
		{"no command", func(c worker.JobClient, j entities.Job) {}, JobStatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			Observe("export-archive", rec, tt.handle)(fakeJobClient{}, entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 1}})

			require.Len(t, rec.processed, 1)
			assert.Equal(t, recordedJob{"export-archive", tt.status}, rec.processed[0])
			assert.Equal(t, 1, rec.durations)
		})
	}
}
