package store

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"venture-builder/internal/common/errors"
)

// CredentialStore holds provider access tokens per owner. Values are never logged.
type CredentialStore struct {
	client *redis.Client
}

func NewCredentialStore(client *redis.Client) *CredentialStore {
	return &CredentialStore{client: client}
}

func credentialKey(ownerID, provider string) string {
	return "credential:" + ownerID + ":" + provider
}

// Put stores token; ttl 0 keeps it until deleted.
func (s *CredentialStore) Put(ctx context.Context, ownerID, provider, token string, ttl time.Duration) error {
	if ownerID == "" || provider == "" || token == "" {
		return errors.NewInvalidRequestError("ownerId, provider and token are required")
	}
	if err := s.client.Set(ctx, credentialKey(ownerID, provider), token, ttl).Err(); err != nil {
		return errors.NewStoreUnavailableError("credentials", err)
	}
	return nil
}

// Get returns CREDENTIAL_MISSING when nothing is stored.
func (s *CredentialStore) Get(ctx context.Context, ownerID, provider string) (string, error) {
	token, err := s.client.Get(ctx, credentialKey(ownerID, provider)).Result()
	if stderrors.Is(err, redis.Nil) {
		return "", errors.NewCredentialMissingError(provider)
	}
	if err != nil {
		return "", errors.NewStoreUnavailableError("credentials", err)
	}
	return token, nil
}

func (s *CredentialStore) Delete(ctx context.Context, ownerID, provider string) error {
	if err := s.client.Del(ctx, credentialKey(ownerID, provider)).Err(); err != nil {
		return errors.NewStoreUnavailableError("credentials", err)
	}
	return nil
}
