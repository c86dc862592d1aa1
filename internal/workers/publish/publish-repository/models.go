package publishrepository

import (
	"encoding/json"

	"venture-builder/internal/publish"
)

// Input carries either a saved project or inline content. Credential, when present, overrides
// the stored GitHub token and is never echoed back.
type Input struct {
	ProjectID      string          `json:"projectId,omitempty"`
	OwnerID        string          `json:"ownerId,omitempty"`
	RepositoryName string          `json:"repositoryName,omitempty"`
	SessionToken   string          `json:"sessionToken,omitempty"`
	Credential     string          `json:"githubToken,omitempty"`
	Content        json.RawMessage `json:"content,omitempty"`
}

type Output struct {
	URL        string                 `json:"repositoryUrl"`
	Repository *publish.RepositoryRef `json:"repository"`
	Push       *publish.PushReport    `json:"push"`
	Complete   bool                   `json:"pushComplete"`
	FileCount  int                    `json:"fileCount"`
	HistoryID  string                 `json:"historyId,omitempty"`
}
