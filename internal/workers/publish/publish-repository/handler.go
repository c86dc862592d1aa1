package publishrepository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"venture-builder/internal/bundle"
	"venture-builder/internal/common/errors"
	"venture-builder/internal/common/logger"
	"venture-builder/internal/common/metrics"
	"venture-builder/internal/publish/repository"
	"venture-builder/internal/workers/shared"
)

const (
	TaskType = "publish-repository"
)

// Dependencies are the collaborators of the handler. Only API is required.
type Dependencies struct {
	API         repository.API
	Projects    shared.ProjectSource
	Credentials shared.CredentialSource
	Authorizer  shared.Authorizer
	History     shared.HistoryRecorder
	Assembler   *bundle.Assembler
	Recorder    shared.PublishRecorder
}

type Handler struct {
	config     *Config
	flow       *shared.Flow
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		flow: &shared.Flow{
			Publisher:   repository.New(deps.API, log),
			Provider:    Provider,
			Projects:    deps.Projects,
			Credentials: deps.Credentials,
			Authorizer:  deps.Authorizer,
			History:     deps.History,
			Assembler:   deps.Assembler,
			Recorder:    deps.Recorder,
			Logger:      log,
		},
		logger:     log,
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
	out, err := h.flow.Run(ctx, shared.Request{
		ProjectID:    input.ProjectID,
		OwnerID:      input.OwnerID,
		Name:         input.RepositoryName,
		SessionToken: input.SessionToken,
		Credential:   input.Credential,
		Content:      input.Content,
	})
	if err != nil {
		return nil, err
	}

	output := &Output{
		URL:        out.Result.URL,
		Repository: out.Result.Repository,
		Push:       out.Result.Push,
		Complete:   out.Result.Push.Complete(),
		FileCount:  out.Files,
	}
	if out.History != nil {
		output.HistoryID = out.History.ID
	}
	return output, nil
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
