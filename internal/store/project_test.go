package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venture-builder/internal/common/errors"
	"venture-builder/internal/content"
)

func newTestProjectStore(t *testing.T, ttl time.Duration) (*ProjectStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewProjectStore(client, ttl), mr
}

func TestProjectStore_SaveAndGet(t *testing.T) {
	s, _ := newTestProjectStore(t, 0)
	ctx := context.Background()

	saved, err := s.Save(ctx, Project{
		OwnerID: "user-1",
		Name:    "Acme",
		Kind:    content.KindBuildPackage,
		Content: json.RawMessage(`{"copy":{"valueProposition":"Ship faster"}}`),
	})
	require.NoError(t, err)
	assert.Len(t, saved.ID, 36)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, content.KindBuildPackage, got.Kind)
	assert.JSONEq(t, `{"copy":{"valueProposition":"Ship faster"}}`, string(got.Content))
}

func TestProjectStore_UpdateKeepsCreatedAt(t *testing.T) {
	s, _ := newTestProjectStore(t, 0)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	first, err := s.Save(ctx, Project{OwnerID: "user-1", Name: "v1", Content: json.RawMessage(`{}`)})
	require.NoError(t, err)

	s.now = func() time.Time { return base.Add(time.Hour) }
	first.Name = "v2"
	second, err := s.Save(ctx, *first)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, base, second.CreatedAt)
	assert.Equal(t, base.Add(time.Hour), second.UpdatedAt)
}

func TestProjectStore_GetMissing(t *testing.T) {
	s, _ := newTestProjectStore(t, 0)

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrProjectNotFound)
	assert.True(t, errors.HasCode(err, errors.ErrCodeProjectNotFound))
}

func TestProjectStore_ListNewestFirstAndPrunesExpired(t *testing.T) {
	s, mr := newTestProjectStore(t, time.Hour)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	var ids []string
	for i, name := range []string{"old", "mid", "new"} {
		s.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		p, err := s.Save(ctx, Project{OwnerID: "user-1", Name: name, Content: json.RawMessage(`{}`)})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	_, err := s.Save(ctx, Project{OwnerID: "user-2", Name: "other", Content: json.RawMessage(`{}`)})
	require.NoError(t, err)

	list, err := s.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{list[0].Name, list[1].Name, list[2].Name})

	mr.Del(projectKey(ids[0]))
	list, err = s.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	members, err := mr.Members(ownerIndexKey("user-1"))
	require.NoError(t, err)
	assert.Len(t, members, 2)

	assert.Equal(t, time.Hour, mr.TTL(projectKey(ids[1])))
}

func TestProjectStore_ListEmpty(t *testing.T) {
	s, _ := newTestProjectStore(t, 0)

	list, err := s.List(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProjectStore_Delete(t *testing.T) {
	s, mr := newTestProjectStore(t, 0)
	ctx := context.Background()

	p, err := s.Save(ctx, Project{OwnerID: "user-1", Name: "Acme", Content: json.RawMessage(`{}`)})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, p.ID))
	assert.False(t, mr.Exists(projectKey(p.ID)))

	_, err = s.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
	assert.ErrorIs(t, s.Delete(ctx, p.ID), ErrProjectNotFound)
}

func TestProjectStore_Unavailable(t *testing.T) {
	s, mr := newTestProjectStore(t, 0)
	mr.Close()

	_, err := s.Get(context.Background(), "x")
	assert.True(t, errors.HasCode(err, errors.ErrCodeStoreUnavailable))
}
