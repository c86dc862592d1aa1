// Package store persists saved projects and provider credentials in Redis and the publish
// history in PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"venture-builder/internal/common/errors"
	"venture-builder/internal/content"
)

// ErrProjectNotFound matches any PROJECT_NOT_FOUND error via errors.Is.
var ErrProjectNotFound = &errors.StandardError{Code: errors.ErrCodeProjectNotFound}

// Project is a saved generation result.
type Project struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"ownerId"`
	Name      string          `json:"name"`
	Kind      content.Kind    `json:"kind"`
	Content   json.RawMessage `json:"content"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ProjectStore keeps one JSON document per project plus a per-owner index set.
type ProjectStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewProjectStore(client *redis.Client, ttl time.Duration) *ProjectStore {
	return &ProjectStore{client: client, ttl: ttl, now: time.Now}
}

func projectKey(id string) string       { return "project:" + id }
func ownerIndexKey(owner string) string { return "owner:" + owner + ":projects" }

// Save inserts or updates p. A new project gets a uuid and CreatedAt. The stored copy is returned.
func (s *ProjectStore) Save(ctx context.Context, p Project) (*Project, error) {
	now := s.now().UTC()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode project: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, projectKey(p.ID), data, s.ttl)
	if p.OwnerID != "" {
		pipe.SAdd(ctx, ownerIndexKey(p.OwnerID), p.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.NewStoreUnavailableError("projects", err)
	}
	return &p, nil
}

func (s *ProjectStore) Get(ctx context.Context, id string) (*Project, error) {
	data, err := s.client.Get(ctx, projectKey(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, errors.NewProjectNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewStoreUnavailableError("projects", err)
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode project %s: %w", id, err)
	}
	return &p, nil
}

// List returns the owner's projects, most recently updated first. Index entries whose
// project has expired are pruned.
func (s *ProjectStore) List(ctx context.Context, ownerID string) ([]Project, error) {
	ids, err := s.client.SMembers(ctx, ownerIndexKey(ownerID)).Result()
	if err != nil {
		return nil, errors.NewStoreUnavailableError("projects", err)
	}
	if len(ids) == 0 {
		return []Project{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = projectKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.NewStoreUnavailableError("projects", err)
	}

	projects := make([]Project, 0, len(values))
	var stale []interface{}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var p Project
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			continue
		}
		projects = append(projects, p)
	}
	if len(stale) > 0 {
		s.client.SRem(ctx, ownerIndexKey(ownerID), stale...)
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].UpdatedAt.After(projects[j].UpdatedAt)
	})
	return projects, nil
}

func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, projectKey(id))
	if p.OwnerID != "" {
		pipe.SRem(ctx, ownerIndexKey(p.OwnerID), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.NewStoreUnavailableError("projects", err)
	}
	return nil
}
