package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"venture-builder/internal/common/config"
	"venture-builder/internal/common/metrics"
)

// HandlerFunc is the signature every job handler exposes as Handle.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// Worker is an opened job worker for one task type.
type Worker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

// Instrument tracks active jobs and handler duration for taskType.
func Instrument(taskType string, handler HandlerFunc) HandlerFunc {
	return func(client worker.JobClient, job entities.Job) {
		active := metrics.WorkerJobsActive.WithLabelValues(taskType)
		active.Inc()
		start := time.Now()
		defer func() {
			active.Dec()
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
		}()
		handler(client, job)
	}
}

// JobRecorder receives one record per handled job.
type JobRecorder interface {
	RecordJobProcessed(ctx context.Context, taskType, status string)
	RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string)
}

const (
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
	JobStatusThrown    = "error_thrown"
	JobStatusUnknown   = "unknown"
)

// outcomeClient remembers which terminal command the handler issued.
type outcomeClient struct {
	worker.JobClient
	status string
}

func (c *outcomeClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	c.status = JobStatusCompleted
	return c.JobClient.NewCompleteJobCommand()
}

func (c *outcomeClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	c.status = JobStatusFailed
	return c.JobClient.NewFailJobCommand()
}

func (c *outcomeClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	c.status = JobStatusThrown
	return c.JobClient.NewThrowErrorCommand()
}

// Observe reports each job to rec, labelled with the command the handler ended with.
func Observe(taskType string, rec JobRecorder, handler HandlerFunc) HandlerFunc {
	return func(client worker.JobClient, job entities.Job) {
		oc := &outcomeClient{JobClient: client, status: JobStatusUnknown}
		start := time.Now()
		handler(oc, job)

		ctx := context.Background()
		rec.RecordJobProcessed(ctx, taskType, oc.status)
		rec.RecordJobDuration(ctx, taskType, time.Since(start), oc.status)
	}
}

// StartWorker opens a job worker, or returns nil when the worker is disabled.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler HandlerFunc, log *zap.Logger) *Worker {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return nil
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(Instrument(taskType, handler))).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)

	return &Worker{worker: jobWorker, logger: log, taskType: taskType}
}

// Stop closes the worker and waits for in-flight jobs.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
	w.worker.AwaitClose()
}
