package generateventure

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"venture-builder/internal/common/errors"
	httpclient "venture-builder/internal/common/http"
	"venture-builder/internal/common/logger"
	"venture-builder/internal/common/metrics"
	"venture-builder/internal/content"
	"venture-builder/internal/store"
)

const (
	TaskType = "generate-venture"
)

// ProjectSaver persists generated content.
type ProjectSaver interface {
	Save(ctx context.Context, p store.Project) (*store.Project, error)
}

type Handler struct {
	config     *Config
	client     *httpclient.Client
	projects   ProjectSaver
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

// NewHandler builds the handler. projects may be nil, in which case content is only returned.
func NewHandler(config *Config, projects ProjectSaver, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		// The job context carries the deadline.
		client:   httpclient.NewClientWith(&http.Client{}),
		projects: projects,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
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
	if strings.TrimSpace(input.Brief) == "" {
		return nil, errors.NewInvalidRequestError("brief is required")
	}
	kind := content.Kind(input.Kind)
	if kind == "" {
		kind = content.KindBuildPackage
	}
	if kind != content.KindBuildPackage && kind != content.KindAdvisoryReport {
		return nil, errors.NewInvalidRequestError(fmt.Sprintf("unsupported kind %q", input.Kind))
	}

	resp, err := h.generate(ctx, generateRequest{
		Prompt: buildPrompt(input, kind),
		Context: map[string]interface{}{
			"kind":        string(kind),
			"projectName": input.ProjectName,
		},
		MaxTokens:   h.config.MaxTokens,
		Temperature: h.config.Temperature,
	})
	if err != nil {
		return nil, err
	}

	c, err := content.ParseString(resp.Text)
	if err != nil {
		return nil, err
	}
	if c.Kind != kind {
		return nil, errors.NewMalformedContentError([]string{
			fmt.Sprintf("(root): expected %s, generator returned %s", kind, c.Kind),
		})
	}

	output := &Output{
		ProjectID:   input.ProjectID,
		ProjectName: input.ProjectName,
		ContentKind: string(c.Kind),
		Confidence:  clampConfidence(resp.Confidence),
		Content:     c.Raw,
	}

	if h.projects != nil && input.OwnerID != "" {
		saved, err := h.projects.Save(ctx, store.Project{
			ID:      input.ProjectID,
			OwnerID: input.OwnerID,
			Name:    input.ProjectName,
			Kind:    c.Kind,
			Content: c.Raw,
		})
		if err != nil {
			return nil, err
		}
		output.ProjectID = saved.ID
	}

	h.logger.Info("Venture content generated", map[string]interface{}{
		"projectId":  output.ProjectID,
		"kind":       output.ContentKind,
		"confidence": output.Confidence,
	})

	return output, nil
}

// generate calls the GenAI endpoint, retrying transport errors and non-2xx responses with
// exponential backoff until MaxRetries is exhausted or ctx ends.
func (h *Handler) generate(ctx context.Context, body generateRequest) (*generateResponse, error) {
	headers := map[string]string{}
	if h.config.APIKey != "" {
		headers["Authorization"] = "Bearer " + h.config.APIKey
	}
	url := strings.TrimRight(h.config.GenAIBaseURL, "/") + "/api/ai/generate"

	var lastErr error
	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, errors.NewContentGenerationTimeoutError()
			}
		}

		resp, err := h.client.DoJSON(ctx, http.MethodPost, url, headers, body)
		if err == nil {
			if resp.OK() {
				var out generateResponse
				if err := resp.Decode(&out); err != nil {
					return nil, errors.NewContentGenerationFailedError(err)
				}
				return &out, nil
			}
			err = fmt.Errorf("status %d", resp.StatusCode)
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, errors.NewContentGenerationTimeoutError()
		}
		h.logger.Warn("Generation attempt failed", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}

	if stderrors.Is(lastErr, context.DeadlineExceeded) {
		return nil, errors.NewContentGenerationTimeoutError()
	}
	return nil, errors.NewContentGenerationFailedError(lastErr)
}

func buildPrompt(input *Input, kind content.Kind) string {
	var parts []string

	parts = append(parts, "You are a startup venture builder. Respond with a single JSON object and nothing else.")
	if input.ProjectName != "" {
		parts = append(parts, fmt.Sprintf("\nVenture name: %s", input.ProjectName))
	}
	parts = append(parts, fmt.Sprintf("Brief: %s", strings.TrimSpace(input.Brief)))

	parts = append(parts, "\nRequired shape:")
	if kind == content.KindAdvisoryReport {
		parts = append(parts, "- reportTitle, executiveSummary (string)")
		parts = append(parts, "- swot: strengths, weaknesses, opportunities, threats (string arrays)")
		parts = append(parts, "- risks: [{risk, mitigation}], recommendations, nextSteps (string arrays)")
	} else {
		parts = append(parts, "- copy: valueProposition, missionStatement (string)")
		parts = append(parts, "- copy.callsToAction: [{location, text}]")
		parts = append(parts, "- copy.pricingTiers: [{tierName, price, features}]")
		parts = append(parts, "- copy.featureBenefits: [{featureName, benefitCopy}]")
		parts = append(parts, "- brandAssets: colorPalette [{role, hex}], fontPairings, imageBriefs [{section, brief}]")
	}

	return strings.Join(parts, "\n")
}

func clampConfidence(c float64) float64 {
	if c < 0.0 || c > 1.0 {
		return 0.5
	}
	return c
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

// Execute runs the generation without a job, for tools and tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
