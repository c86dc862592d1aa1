// Package publish defines the capability shared by the remote publishing targets and the
// result shapes they report.
package publish

import (
	"context"
	"errors"
	"sync"

	"venture-builder/internal/bundle"
)

const (
	TargetRepository = "repository"
	TargetDeployment = "deployment"
)

// Publisher pushes a file set to one remote target.
type Publisher interface {
	Target() string
	Publish(ctx context.Context, req Request) (*Result, error)
}

// Request is one publish invocation. Credential is used for authorization only and must not
// be logged or persisted by a publisher.
type Request struct {
	Credential string
	Name       string
	Files      []bundle.FileRecord
}

type Result struct {
	Target     string            `json:"target"`
	URL        string            `json:"url"`
	Repository *RepositoryRef    `json:"repository,omitempty"`
	Push       *PushReport       `json:"push,omitempty"`
	Deployment *DeploymentResult `json:"deployment,omitempty"`
}

type RepositoryRef struct {
	Name          string `json:"name"`
	FullName      string `json:"fullName"`
	HTMLURL       string `json:"htmlUrl"`
	DefaultBranch string `json:"defaultBranch"`
}

type FileFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// PushReport lists per-file outcomes of a repository push.
type PushReport struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []FileFailure `json:"failed"`
}

func (r *PushReport) Complete() bool {
	return r != nil && len(r.Failed) == 0
}

type DeploymentStatus string

const (
	StatusQueued   DeploymentStatus = "queued"
	StatusBuilding DeploymentStatus = "building"
	StatusReady    DeploymentStatus = "ready"
	StatusError    DeploymentStatus = "error"
	StatusCanceled DeploymentStatus = "canceled"
)

// Terminal reports whether the deployment will not change state any more.
func (s DeploymentStatus) Terminal() bool {
	return s == StatusReady || s == StatusError || s == StatusCanceled
}

type DeploymentError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type DeploymentResult struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	URL          string           `json:"url"`
	InspectorURL string           `json:"inspectorUrl,omitempty"`
	Status       DeploymentStatus `json:"status"`
	Error        *DeploymentError `json:"error,omitempty"`
}

// State is the lifecycle of one publish operation as seen by a caller.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

var ErrInFlight = errors.New("publish already in progress")

// Tracker guards a single target against overlapping operations.
type Tracker struct {
	mu    sync.Mutex
	state State
	last  *Result
	err   error
}

func NewTracker() *Tracker {
	return &Tracker{state: StateIdle}
}

// Begin moves to submitting. It fails with ErrInFlight if an operation is already running.
func (t *Tracker) Begin() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateSubmitting {
		return ErrInFlight
	}
	t.state = StateSubmitting
	t.last, t.err = nil, nil
	return nil
}

// Finish records the outcome. A non-nil err means the operation failed terminally.
func (t *Tracker) Finish(res *Result, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last, t.err = res, err
	if err != nil {
		t.state = StateFailed
		return
	}
	t.state = StateSucceeded
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Tracker) Last() (*Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last, t.err
}

// Run wraps p.Publish with Begin/Finish.
func Run(ctx context.Context, t *Tracker, p Publisher, req Request) (*Result, error) {
	if err := t.Begin(); err != nil {
		return nil, err
	}
	res, err := p.Publish(ctx, req)
	t.Finish(res, err)
	return res, err
}
