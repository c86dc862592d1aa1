package shared

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"

	"venture-builder/internal/bundle"
	"venture-builder/internal/common/errors"
	"venture-builder/internal/common/logger"
	"venture-builder/internal/common/metrics"
	"venture-builder/internal/publish"
	"venture-builder/internal/store"
)

// PublishRecorder counts publish outcomes per target.
type PublishRecorder interface {
	RecordPublish(ctx context.Context, target, outcome string)
}

// Flow runs one publish target end to end: authorize, resolve the credential, load and
// assemble content, publish, record history.
type Flow struct {
	Publisher   publish.Publisher
	Provider    string
	Projects    ProjectSource
	Credentials CredentialSource
	Authorizer  Authorizer
	History     HistoryRecorder
	Assembler   *bundle.Assembler
	Recorder    PublishRecorder
	Logger      logger.Logger

	mu       sync.Mutex
	trackers map[string]*trackerRef
}

// trackerRef counts the runs holding a tracker so an idle entry can be dropped.
type trackerRef struct {
	tracker *publish.Tracker
	users   int
}

type Request struct {
	ProjectID    string
	OwnerID      string
	Name         string
	SessionToken string
	Credential   string
	Content      json.RawMessage
}

type Outcome struct {
	ProjectID string
	Name      string
	Files     int
	Result    *publish.Result
	History   *store.PublishRecord
}

func (f *Flow) Run(ctx context.Context, req Request) (*Outcome, error) {
	log := f.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.With(map[string]interface{}{
		"target":    f.Publisher.Target(),
		"projectId": req.ProjectID,
	})

	owner := req.OwnerID
	if f.Authorizer != nil {
		info, err := f.Authorizer.Authorize(ctx, req.SessionToken)
		if err != nil {
			return nil, err
		}
		if info.Sub != "" {
			owner = info.Sub
		}
	}

	credential, err := ResolveCredential(ctx, f.Credentials, owner, f.Provider, req.Credential)
	if err != nil {
		return nil, err
	}

	c, project, err := LoadContent(ctx, f.Projects, req.ProjectID, req.Content)
	if err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" && project != nil {
		name = project.Name
	}

	assembler := f.Assembler
	if assembler == nil {
		assembler = bundle.NewAssembler(nil)
	}
	b, err := assembler.Assemble(c, name)
	if err != nil {
		return nil, err
	}
	metrics.BundleSizeBytes.Observe(float64(b.Size()))

	trackerKey := req.ProjectID
	if trackerKey == "" {
		trackerKey = name
	}
	tracker := f.acquire(trackerKey)
	res, err := publish.Run(ctx, tracker, f.Publisher, publish.Request{
		Credential: credential,
		Name:       name,
		Files:      b.Files(),
	})
	f.release(trackerKey)
	if stderrors.Is(err, publish.ErrInFlight) {
		return nil, errors.NewInvalidRequestError("a publish to " + f.Publisher.Target() + " is already in progress for " + trackerKey)
	}

	if f.Recorder != nil {
		outcome := metrics.OutcomeSucceeded
		if err != nil {
			outcome = metrics.OutcomeFailed
		}
		f.Recorder.RecordPublish(ctx, f.Publisher.Target(), outcome)
	}

	out := &Outcome{ProjectID: req.ProjectID, Name: name, Files: b.Len(), Result: res}
	out.History = f.record(ctx, log, req.ProjectID, res, err)
	if err != nil {
		return nil, err
	}

	log.Info("Publish finished", map[string]interface{}{
		"name":  name,
		"url":   res.URL,
		"files": b.Len(),
	})
	return out, nil
}

func (f *Flow) acquire(key string) *publish.Tracker {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.trackers == nil {
		f.trackers = make(map[string]*trackerRef)
	}
	ref, ok := f.trackers[key]
	if !ok {
		ref = &trackerRef{tracker: publish.NewTracker()}
		f.trackers[key] = ref
	}
	ref.users++
	return ref.tracker
}

// release drops the entry once no run holds it and nothing is submitting.
func (f *Flow) release(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ref, ok := f.trackers[key]
	if !ok {
		return
	}
	ref.users--
	if ref.users <= 0 && ref.tracker.State() != publish.StateSubmitting {
		delete(f.trackers, key)
	}
}

// inFlight reports how many keys currently hold a tracker.
func (f *Flow) inFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.trackers)
}

// record stores the attempt when a project is known. A history failure never fails the publish.
func (f *Flow) record(ctx context.Context, log logger.Logger, projectID string, res *publish.Result, publishErr error) *store.PublishRecord {
	if f.History == nil || projectID == "" {
		return nil
	}

	rec := HistoryRecord(projectID, f.Publisher.Target(), res, publishErr)
	saved, err := f.History.Record(ctx, rec)
	if err != nil {
		log.Warn("Failed to record publish history", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	return saved
}

// HistoryRecord summarizes a publish outcome. Incomplete pushes and errored deployments are
// recorded as failed even though the operation itself returned a result.
func HistoryRecord(projectID, target string, res *publish.Result, publishErr error) store.PublishRecord {
	rec := store.PublishRecord{
		ProjectID:   projectID,
		Target:      target,
		Status:      store.HistorySucceeded,
		FailedFiles: []string{},
	}

	if publishErr != nil {
		rec.Status = store.HistoryFailed
		rec.Message = errors.UserMessage(publishErr)
		return rec
	}
	if res == nil {
		return rec
	}

	rec.URL = res.URL
	if res.Push != nil && !res.Push.Complete() {
		rec.Status = store.HistoryFailed
		for _, failure := range res.Push.Failed {
			rec.FailedFiles = append(rec.FailedFiles, failure.Path)
		}
		rec.Message = "Some files failed to upload"
	}
	if d := res.Deployment; d != nil {
		switch d.Status {
		case publish.StatusError, publish.StatusCanceled:
			rec.Status = store.HistoryFailed
			rec.Message = "Deployment " + string(d.Status)
			if d.Error != nil && d.Error.Message != "" {
				rec.Message = d.Error.Message
			}
		}
	}
	return rec
}
