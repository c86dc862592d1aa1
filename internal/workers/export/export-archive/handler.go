package exportarchive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"venture-builder/internal/bundle"
	"venture-builder/internal/common/errors"
	"venture-builder/internal/common/logger"
	"venture-builder/internal/common/metrics"
	"venture-builder/internal/workers/shared"
)

const (
	TaskType = "export-archive"
)

type Handler struct {
	config     *Config
	projects   shared.ProjectSource
	assembler  *bundle.Assembler
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, projects shared.ProjectSource, assembler *bundle.Assembler, log logger.Logger) *Handler {
	if assembler == nil {
		assembler = bundle.NewAssembler(nil)
	}
	return &Handler{
		config:     config,
		projects:   projects,
		assembler:  assembler,
		logger:     log.With(map[string]interface{}{"taskType": TaskType}),
		errHandler: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, errors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	c, project, err := shared.LoadContent(ctx, h.projects, input.ProjectID, input.Content)
	if err != nil {
		return nil, err
	}

	name := input.ProjectName
	if name == "" && project != nil {
		name = project.Name
	}

	b, err := h.assembler.Assemble(c, name)
	if err != nil {
		return nil, err
	}
	metrics.BundleSizeBytes.Observe(float64(b.Size()))

	path, err := bundle.SaveArchive(b, h.config.Directory)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.NewArchiveGenerationFailedError(err)
	}

	h.logger.Info("Archive exported", map[string]interface{}{
		"path":      path,
		"sizeBytes": info.Size(),
		"files":     b.Len(),
	})

	return &Output{
		FileName:  b.ArchiveFileName(),
		Path:      path,
		SizeBytes: info.Size(),
		FileCount: b.Len(),
		Files:     b.Paths(),
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	stdErr := errors.AsStandardError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
