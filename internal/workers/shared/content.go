// Package shared holds the content loading and publish flow used by the export and publish workers.
package shared

import (
	"bytes"
	"context"
	"encoding/json"

	"venture-builder/internal/common/auth"
	"venture-builder/internal/common/errors"
	"venture-builder/internal/content"
	"venture-builder/internal/store"
)

// ProjectSource loads saved projects.
type ProjectSource interface {
	Get(ctx context.Context, id string) (*store.Project, error)
}

// CredentialSource resolves a stored provider token for an owner.
type CredentialSource interface {
	Get(ctx context.Context, ownerID, provider string) (string, error)
}

// Authorizer validates a caller session token.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*auth.TokenInfo, error)
}

// HistoryRecorder persists publish attempts.
type HistoryRecorder interface {
	Record(ctx context.Context, rec store.PublishRecord) (*store.PublishRecord, error)
}

// LoadContent prefers inline content over a saved project. The project is returned when one
// was loaded so callers can fall back to its name.
func LoadContent(ctx context.Context, projects ProjectSource, projectID string, inline json.RawMessage) (*content.Content, *store.Project, error) {
	if hasInline(inline) {
		c, err := parseInline(inline)
		return c, nil, err
	}

	if projectID == "" {
		return nil, nil, errors.NewInvalidRequestError("either content or projectId is required")
	}
	if projects == nil {
		return nil, nil, errors.NewInvalidRequestError("project store is not configured")
	}

	project, err := projects.Get(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	c, err := content.Parse(project.Content)
	if err != nil {
		return nil, nil, err
	}
	return c, project, nil
}

func hasInline(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// parseInline accepts either a JSON object or the generator's text output as a JSON string.
func parseInline(raw json.RawMessage) (*content.Content, error) {
	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, errors.NewMalformedContentError([]string{err.Error()})
		}
		return content.ParseString(text)
	}
	return content.Parse(trimmed)
}

// ResolveCredential returns the explicit credential when given, otherwise the stored one.
func ResolveCredential(ctx context.Context, creds CredentialSource, ownerID, provider, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if creds == nil || ownerID == "" {
		return "", errors.NewCredentialMissingError(provider)
	}
	return creds.Get(ctx, ownerID, provider)
}
