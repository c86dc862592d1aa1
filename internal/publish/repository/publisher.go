// Package repository publishes a bundle as a new private repository, one file at a time.
package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"venture-builder/internal/bundle"
	"venture-builder/internal/common/errors"
	"venture-builder/internal/common/github"
	"venture-builder/internal/common/logger"
	"venture-builder/internal/common/metrics"
	"venture-builder/internal/publish"
)

const DefaultBranch = "main"

// API is the subset of the GitHub client used for publishing.
type API interface {
	CreateRepository(ctx context.Context, token string, req github.CreateRepositoryRequest) (*github.Repository, error)
	GetRepository(ctx context.Context, token, owner, repo string) (*github.Repository, error)
	GetContent(ctx context.Context, token, owner, repo, path, ref string) (*github.Content, error)
	PutContent(ctx context.Context, token, owner, repo, path string, req github.PutContentRequest) (*github.PutContentResponse, error)
}

type Publisher struct {
	api    API
	logger logger.Logger
}

func New(api API, log logger.Logger) *Publisher {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Publisher{api: api, logger: log}
}

func (p *Publisher) Target() string { return publish.TargetRepository }

// Publish provisions the repository and pushes every file in order. Per-file failures are
// collected in Result.Push; only a provisioning failure fails the operation.
func (p *Publisher) Publish(ctx context.Context, req publish.Request) (*publish.Result, error) {
	ctx, span := otel.Tracer("venture-builder/publish").Start(ctx, "publish.repository")
	defer span.End()
	span.SetAttributes(
		attribute.String("repository.name", req.Name),
		attribute.Int("files.count", len(req.Files)),
	)

	if req.Name == "" {
		err := errors.NewInvalidRequestError("repository name is required")
		span.SetStatus(codes.Error, err.Message)
		return nil, err
	}

	repo, err := p.api.CreateRepository(ctx, req.Credential, github.CreateRepositoryRequest{
		Name:     req.Name,
		Private:  true,
		AutoInit: true,
	})
	if err != nil {
		provisionErr := errors.NewProvisionFailedError(remoteMessage(err))
		p.logger.Error("Repository provisioning failed", map[string]interface{}{
			"repository": req.Name,
			"error":      provisionErr.Message,
		})
		metrics.PublishOperations.WithLabelValues(publish.TargetRepository, metrics.OutcomeFailed).Inc()
		span.SetStatus(codes.Error, provisionErr.Message)
		return nil, provisionErr
	}

	owner, name := repoCoordinates(repo, req.Name)
	if owner == "" {
		provisionErr := errors.NewProvisionFailedError("repository owner missing from create response")
		p.logger.Error("Repository provisioning failed", map[string]interface{}{
			"repository": req.Name,
			"error":      provisionErr.Message,
		})
		metrics.PublishOperations.WithLabelValues(publish.TargetRepository, metrics.OutcomeFailed).Inc()
		span.SetStatus(codes.Error, provisionErr.Message)
		return nil, provisionErr
	}
	fullName := owner + "/" + name
	branch := p.resolveBranch(ctx, req.Credential, owner, name)
	span.SetAttributes(attribute.String("repository.branch", branch))

	report := &publish.PushReport{Succeeded: []string{}, Failed: []publish.FileFailure{}}
	for _, f := range req.Files {
		if err := p.pushFile(ctx, req.Credential, owner, name, branch, f); err != nil {
			pushErr := errors.NewFilePushFailedError(f.Path, remoteMessage(err))
			p.logger.Warn("File push failed", map[string]interface{}{
				"repository": fullName,
				"path":       f.Path,
				"reason":     pushErr.Details,
			})
			report.Failed = append(report.Failed, publish.FileFailure{Path: f.Path, Reason: pushErr.Details})
			metrics.FilePushes.WithLabelValues(metrics.OutcomeFailed).Inc()
			continue
		}
		report.Succeeded = append(report.Succeeded, f.Path)
		metrics.FilePushes.WithLabelValues(metrics.OutcomeSucceeded).Inc()
	}

	span.SetAttributes(
		attribute.Int("files.succeeded", len(report.Succeeded)),
		attribute.Int("files.failed", len(report.Failed)),
	)
	metrics.PublishOperations.WithLabelValues(publish.TargetRepository, metrics.OutcomeSucceeded).Inc()

	p.logger.Info("Repository published", map[string]interface{}{
		"repository": fullName,
		"branch":     branch,
		"succeeded":  len(report.Succeeded),
		"failed":     len(report.Failed),
	})

	return &publish.Result{
		Target: publish.TargetRepository,
		URL:    repo.HTMLURL,
		Repository: &publish.RepositoryRef{
			Name:          name,
			FullName:      fullName,
			HTMLURL:       repo.HTMLURL,
			DefaultBranch: branch,
		},
		Push: report,
	}, nil
}

// repoCoordinates returns the owner and name for follow-up calls. The create response may
// carry only full_name ("owner/name"), so that is used when owner.login is absent.
func repoCoordinates(repo *github.Repository, requested string) (owner, name string) {
	owner, name = repo.Owner.Login, repo.Name
	if parts := strings.SplitN(repo.FullName, "/", 2); len(parts) == 2 {
		if owner == "" {
			owner = parts[0]
		}
		if parts[1] != "" {
			name = parts[1]
		}
	}
	if name == "" {
		name = requested
	}
	return owner, name
}

func (p *Publisher) resolveBranch(ctx context.Context, token, owner, name string) string {
	meta, err := p.api.GetRepository(ctx, token, owner, name)
	if err != nil {
		p.logger.Warn("Could not read repository metadata, using default branch", map[string]interface{}{
			"repository": owner + "/" + name,
			"error":      err.Error(),
		})
		return DefaultBranch
	}
	if meta.DefaultBranch == "" {
		return DefaultBranch
	}
	return meta.DefaultBranch
}

func (p *Publisher) pushFile(ctx context.Context, token, owner, repo, branch string, f bundle.FileRecord) error {
	var sha string
	existing, err := p.api.GetContent(ctx, token, owner, repo, f.Path, branch)
	switch {
	case err == nil:
		sha = existing.SHA
	case stderrors.Is(err, github.ErrNotFound):
	default:
		return fmt.Errorf("read %s: %w", f.Path, err)
	}

	message := "Add " + f.Path
	if sha != "" {
		message = "Update " + f.Path
	}

	_, err = p.api.PutContent(ctx, token, owner, repo, f.Path, github.PutContentRequest{
		Message: message,
		Content: EncodeContent(f.Content),
		Branch:  branch,
		SHA:     sha,
	})
	return err
}

func remoteMessage(err error) string {
	var apiErr *github.APIError
	if stderrors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
