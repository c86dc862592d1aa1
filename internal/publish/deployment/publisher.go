// Package deployment publishes a bundle to a static hosting platform in a single request.
package deployment

import (
	"context"
	stderrors "errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"venture-builder/internal/common/errors"
	"venture-builder/internal/common/logger"
	"venture-builder/internal/common/metrics"
	"venture-builder/internal/common/vercel"
	"venture-builder/internal/publish"
)

// API is the subset of the Vercel client used for publishing.
type API interface {
	CreateDeployment(ctx context.Context, token string, req vercel.CreateDeploymentRequest) (*vercel.Deployment, error)
	GetDeployment(ctx context.Context, token, id string) (*vercel.Deployment, error)
}

type Publisher struct {
	api    API
	poller *Poller
	logger logger.Logger
}

type Option func(*Publisher)

// WithPoller makes Publish wait for a terminal build state before returning.
func WithPoller(p *Poller) Option {
	return func(pub *Publisher) { pub.poller = p }
}

func New(api API, log logger.Logger, opts ...Option) *Publisher {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	p := &Publisher{api: api, logger: log}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Target() string { return publish.TargetDeployment }

// Publish submits all files in one request. Success means the deployment was accepted unless
// a poller is configured.
func (p *Publisher) Publish(ctx context.Context, req publish.Request) (*publish.Result, error) {
	name := SanitizeName(req.Name)

	ctx, span := otel.Tracer("venture-builder/publish").Start(ctx, "publish.deployment")
	defer span.End()
	span.SetAttributes(
		attribute.String("deployment.name", name),
		attribute.Int("files.count", len(req.Files)),
	)

	files := make([]vercel.DeploymentFile, 0, len(req.Files))
	for _, f := range req.Files {
		files = append(files, vercel.DeploymentFile{File: f.Path, Data: f.Content})
	}

	create := vercel.CreateDeploymentRequest{Name: name, Files: files}
	if hint := FrameworkHint(req.Files); hint != "" {
		create.ProjectSettings = &vercel.ProjectSettings{Framework: hint}
		span.SetAttributes(attribute.String("deployment.framework", hint))
	}

	remote, err := p.api.CreateDeployment(ctx, req.Credential, create)
	if err != nil {
		rejected := errors.NewDeploymentRejectedError(remoteMessage(err))
		p.logger.Error("Deployment rejected", map[string]interface{}{
			"name":  name,
			"error": rejected.Message,
		})
		metrics.PublishOperations.WithLabelValues(publish.TargetDeployment, metrics.OutcomeFailed).Inc()
		span.SetStatus(codes.Error, rejected.Message)
		return nil, rejected
	}

	dep := normalize(remote)
	if p.poller != nil {
		dep, err = p.poller.Wait(ctx, req.Credential, dep)
		if err != nil {
			metrics.PublishOperations.WithLabelValues(publish.TargetDeployment, metrics.OutcomeFailed).Inc()
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	span.SetAttributes(attribute.String("deployment.status", string(dep.Status)))
	metrics.PublishOperations.WithLabelValues(publish.TargetDeployment, metrics.OutcomeSucceeded).Inc()

	p.logger.Info("Deployment submitted", map[string]interface{}{
		"deploymentId": dep.ID,
		"url":          dep.URL,
		"status":       string(dep.Status),
	})

	return &publish.Result{
		Target:     publish.TargetDeployment,
		URL:        dep.URL,
		Deployment: dep,
	}, nil
}

// normalize reshapes the platform response: host gets a scheme, readyState maps onto the
// five known statuses.
func normalize(d *vercel.Deployment) *publish.DeploymentResult {
	res := &publish.DeploymentResult{
		ID:           d.ID,
		Name:         d.Name,
		URL:          withScheme(d.URL),
		InspectorURL: d.InspectorURL,
		Status:       MapStatus(d.ReadyState),
	}
	if d.ErrorMessage != "" || d.ErrorCode != "" {
		res.Error = &publish.DeploymentError{Code: d.ErrorCode, Message: d.ErrorMessage}
	}
	return res
}

// MapStatus lowercases and folds the platform readyState. Unknown values are reported as queued.
func MapStatus(readyState string) publish.DeploymentStatus {
	switch strings.ToUpper(readyState) {
	case "INITIALIZING", "BUILDING":
		return publish.StatusBuilding
	case "READY":
		return publish.StatusReady
	case "ERROR":
		return publish.StatusError
	case "CANCELED":
		return publish.StatusCanceled
	default:
		return publish.StatusQueued
	}
}

func withScheme(host string) string {
	if host == "" || strings.HasPrefix(host, "https://") || strings.HasPrefix(host, "http://") {
		return host
	}
	return "https://" + host
}

func remoteMessage(err error) string {
	var apiErr *vercel.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
