package shared

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"venture-builder/internal/common/auth"
	"venture-builder/internal/common/errors"
	"venture-builder/internal/common/logger"
	"venture-builder/internal/content"
	"venture-builder/internal/publish"
	"venture-builder/internal/store"
)

const buildPackageJSON = `{
  "copy": {
    "valueProposition": "Ship faster",
    "missionStatement": "Help small teams launch",
    "callsToAction": [{"location": "hero", "text": "Start Now"}],
    "pricingTiers": [],
    "featureBenefits": []
  },
  "brandAssets": {
    "colorPalette": [{"role": "Primary Brand", "hex": "#112233"}]
  }
}`

// ==========================
// Mocks
// ==========================

type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) Authorize(ctx context.Context, token string) (*auth.TokenInfo, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.TokenInfo), args.Error(1)
}

type MockCredentials struct {
	mock.Mock
}

func (m *MockCredentials) Get(ctx context.Context, ownerID, provider string) (string, error) {
	args := m.Called(ctx, ownerID, provider)
	return args.String(0), args.Error(1)
}

type fakeProjects map[string]*store.Project

func (f fakeProjects) Get(ctx context.Context, id string) (*store.Project, error) {
	p, ok := f[id]
	if !ok {
		return nil, errors.NewProjectNotFoundError(id)
	}
	return p, nil
}

type fakeHistory struct {
	mu      sync.Mutex
	records []store.PublishRecord
	err     error
}

func (f *fakeHistory) Record(ctx context.Context, rec store.PublishRecord) (*store.PublishRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	rec.ID = "rec-1"
	f.records = append(f.records, rec)
	return &rec, nil
}

type fakeRecorder struct {
	outcomes []string
}

func (f *fakeRecorder) RecordPublish(ctx context.Context, target, outcome string) {
	f.outcomes = append(f.outcomes, target+":"+outcome)
}

type stubPublisher struct {
	target  string
	result  *publish.Result
	err     error
	gotReq  publish.Request
	block   chan struct{}
	started chan struct{}
}

func (s *stubPublisher) Target() string { return s.target }

func (s *stubPublisher) Publish(ctx context.Context, req publish.Request) (*publish.Result, error) {
	s.gotReq = req
	if s.started != nil {
		close(s.started)
	}
	if s.block != nil {
		<-s.block
	}
	return s.result, s.err
}

func savedProject() fakeProjects {
	return fakeProjects{"p-1": {
		ID:      "p-1",
		OwnerID: "owner-1",
		Name:    "Acme",
		Kind:    content.KindBuildPackage,
		Content: json.RawMessage(buildPackageJSON),
	}}
}

// ==========================
// LoadContent / ResolveCredential
// ==========================

func TestLoadContent(t *testing.T) {
	ctx := context.Background()

	t.Run("inline object wins over project", func(t *testing.T) {
		c, project, err := LoadContent(ctx, savedProject(), "p-1", json.RawMessage(buildPackageJSON))
		require.NoError(t, err)
		assert.Nil(t, project)
		assert.True(t, c.IsBuildPackage())
	})

	t.Run("inline generator text", func(t *testing.T) {
		text, _ := json.Marshal("```json\n" + buildPackageJSON + "\n```")
		c, _, err := LoadContent(ctx, nil, "", text)
		require.NoError(t, err)
		assert.Equal(t, content.KindBuildPackage, c.Kind)
	})

	t.Run("saved project", func(t *testing.T) {
		c, project, err := LoadContent(ctx, savedProject(), "p-1", json.RawMessage("null"))
		require.NoError(t, err)
		assert.Equal(t, "Acme", project.Name)
		assert.True(t, c.IsBuildPackage())
	})

	t.Run("unknown project", func(t *testing.T) {
		_, _, err := LoadContent(ctx, savedProject(), "missing", nil)
		assert.ErrorIs(t, err, store.ErrProjectNotFound)
	})

	t.Run("nothing to load", func(t *testing.T) {
		_, _, err := LoadContent(ctx, savedProject(), "", nil)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
	})

	t.Run("malformed inline content", func(t *testing.T) {
		_, _, err := LoadContent(ctx, nil, "", json.RawMessage(`{"unrelated":true}`))
		assert.True(t, errors.HasCode(err, errors.ErrCodeMalformedContent))
	})
}

func TestResolveCredential(t *testing.T) {
	ctx := context.Background()

	creds := new(MockCredentials)
	creds.On("Get", ctx, "owner-1", "github").Return("ghp_stored", nil)

	token, err := ResolveCredential(ctx, creds, "owner-1", "github", "")
	require.NoError(t, err)
	assert.Equal(t, "ghp_stored", token)

	token, err = ResolveCredential(ctx, creds, "owner-1", "github", "ghp_explicit")
	require.NoError(t, err)
	assert.Equal(t, "ghp_explicit", token)

	_, err = ResolveCredential(ctx, nil, "owner-1", "github", "")
	assert.True(t, errors.HasCode(err, errors.ErrCodeCredentialMissing))

	creds.AssertNumberOfCalls(t, "Get", 1)
}

// ==========================
// Flow
// ==========================

func TestFlow_PublishesSavedProject(t *testing.T) {
	ctx := context.Background()

	authz := new(MockAuthorizer)
	authz.On("Authorize", mock.Anything, "session").Return(&auth.TokenInfo{Active: true, Sub: "owner-1"}, nil)
	creds := new(MockCredentials)
	creds.On("Get", mock.Anything, "owner-1", "github").Return("ghp_stored", nil)

	pub := &stubPublisher{target: publish.TargetRepository, result: &publish.Result{
		Target: publish.TargetRepository,
		URL:    "https://github.com/octo/acme",
		Push:   &publish.PushReport{Succeeded: []string{"README.md"}, Failed: []publish.FileFailure{}},
	}}
	history := &fakeHistory{}

	flow := &Flow{
		Publisher:   pub,
		Provider:    "github",
		Projects:    savedProject(),
		Credentials: creds,
		Authorizer:  authz,
		History:     history,
		Logger:      logger.NewTestLogger(t),
	}

	out, err := flow.Run(ctx, Request{ProjectID: "p-1", SessionToken: "session"})
	require.NoError(t, err)

	assert.Equal(t, "Acme", out.Name)
	assert.Equal(t, "ghp_stored", pub.gotReq.Credential)
	assert.Equal(t, "Acme", pub.gotReq.Name)
	assert.Equal(t, out.Files, len(pub.gotReq.Files))
	assert.NotZero(t, out.Files)
	require.NotNil(t, out.History)
	assert.Equal(t, store.HistorySucceeded, out.History.Status)
	assert.Equal(t, "https://github.com/octo/acme", out.History.URL)

	authz.AssertExpectations(t)
	creds.AssertExpectations(t)
}

func TestFlow_UnauthorizedStopsEarly(t *testing.T) {
	authz := new(MockAuthorizer)
	authz.On("Authorize", mock.Anything, "expired").Return(nil, errors.NewUnauthorizedError("token is not active"))
	pub := &stubPublisher{target: publish.TargetDeployment}
	history := &fakeHistory{}

	flow := &Flow{Publisher: pub, Provider: "vercel", Projects: savedProject(), Authorizer: authz, History: history}
	_, err := flow.Run(context.Background(), Request{ProjectID: "p-1", SessionToken: "expired", Credential: "vc"})

	assert.True(t, errors.HasCode(err, errors.ErrCodeUnauthorized))
	assert.Empty(t, pub.gotReq.Name)
	assert.Empty(t, history.records)
}

func TestFlow_FailureIsRecorded(t *testing.T) {
	pub := &stubPublisher{target: publish.TargetRepository, err: errors.NewProvisionFailedError("name already exists on this account")}
	history := &fakeHistory{}
	recorder := &fakeRecorder{}

	flow := &Flow{Publisher: pub, Provider: "github", Projects: savedProject(), History: history, Recorder: recorder}
	_, err := flow.Run(context.Background(), Request{ProjectID: "p-1", Credential: "ghp_explicit"})

	assert.True(t, errors.HasCode(err, errors.ErrCodeProvisionFailed))
	assert.Equal(t, []string{"repository:failed"}, recorder.outcomes)
	require.Len(t, history.records, 1)
	assert.Equal(t, store.HistoryFailed, history.records[0].Status)
	assert.Equal(t, "Repository creation failed: name already exists on this account", history.records[0].Message)
	assert.NotContains(t, history.records[0].Message, "ghp_explicit")
}

func TestFlow_HistoryFailureDoesNotFailPublish(t *testing.T) {
	pub := &stubPublisher{target: publish.TargetDeployment, result: &publish.Result{Target: publish.TargetDeployment, URL: "https://acme.vercel.app"}}
	history := &fakeHistory{err: errors.NewStoreUnavailableError("publish_history", assert.AnError)}

	flow := &Flow{Publisher: pub, Provider: "vercel", Projects: savedProject(), History: history}
	out, err := flow.Run(context.Background(), Request{ProjectID: "p-1", Credential: "vc"})

	require.NoError(t, err)
	assert.Nil(t, out.History)
	assert.Equal(t, "https://acme.vercel.app", out.Result.URL)
}

func TestFlow_RejectsOverlappingPublish(t *testing.T) {
	pub := &stubPublisher{
		target:  publish.TargetDeployment,
		result:  &publish.Result{Target: publish.TargetDeployment},
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	flow := &Flow{Publisher: pub, Provider: "vercel", Projects: savedProject()}
	req := Request{ProjectID: "p-1", Credential: "vc"}

	done := make(chan error, 1)
	go func() {
		_, err := flow.Run(context.Background(), req)
		done <- err
	}()
	<-pub.started

	_, err := flow.Run(context.Background(), req)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))

	close(pub.block)
	require.NoError(t, <-done)
	assert.Zero(t, flow.inFlight())

	pub.block, pub.started = nil, nil
	_, err = flow.Run(context.Background(), req)
	require.NoError(t, err)
}

func TestFlow_TrackersAreDroppedAfterEachRun(t *testing.T) {
	pub := &stubPublisher{target: publish.TargetDeployment, result: &publish.Result{Target: publish.TargetDeployment}}
	flow := &Flow{Publisher: pub, Provider: "vercel"}

	for _, name := range []string{"alpha", "beta", "gamma"} {
		_, err := flow.Run(context.Background(), Request{
			Name:       name,
			Credential: "vc",
			Content:    json.RawMessage(buildPackageJSON),
		})
		require.NoError(t, err)
	}
	assert.Zero(t, flow.inFlight())

	pub.err = errors.NewDeploymentRejectedError("nope")
	_, err := flow.Run(context.Background(), Request{Name: "delta", Credential: "vc", Content: json.RawMessage(buildPackageJSON)})
	require.Error(t, err)
	assert.Zero(t, flow.inFlight())
}

func TestHistoryRecord(t *testing.T) {
	partial := HistoryRecord("p-1", publish.TargetRepository, &publish.Result{
		URL: "https://github.com/octo/acme",
		Push: &publish.PushReport{
			Succeeded: []string{"README.md"},
			Failed:    []publish.FileFailure{{Path: "index.html", Reason: "conflict"}},
		},
	}, nil)
	assert.Equal(t, store.HistoryFailed, partial.Status)
	assert.Equal(t, []string{"index.html"}, partial.FailedFiles)

	errored := HistoryRecord("p-1", publish.TargetDeployment, &publish.Result{
		Deployment: &publish.DeploymentResult{Status: publish.StatusError, Error: &publish.DeploymentError{Message: "Command failed"}},
	}, nil)
	assert.Equal(t, store.HistoryFailed, errored.Status)
	assert.Equal(t, "Command failed", errored.Message)

	ready := HistoryRecord("p-1", publish.TargetDeployment, &publish.Result{
		URL:        "https://acme.vercel.app",
		Deployment: &publish.DeploymentResult{Status: publish.StatusReady},
	}, nil)
	assert.Equal(t, store.HistorySucceeded, ready.Status)
	assert.Empty(t, ready.FailedFiles)
}
