package publishdeployment

import (
	"encoding/json"

	"venture-builder/internal/publish"
)

// Input mirrors the repository worker input. Credential overrides the stored Vercel token.
type Input struct {
	ProjectID    string          `json:"projectId,omitempty"`
	OwnerID      string          `json:"ownerId,omitempty"`
	ProjectName  string          `json:"projectName,omitempty"`
	SessionToken string          `json:"sessionToken,omitempty"`
	Credential   string          `json:"vercelToken,omitempty"`
	Content      json.RawMessage `json:"content,omitempty"`
}

type Output struct {
	URL        string                    `json:"deploymentUrl"`
	Status     publish.DeploymentStatus  `json:"deploymentStatus"`
	Deployment *publish.DeploymentResult `json:"deployment"`
	FileCount  int                       `json:"fileCount"`
	HistoryID  string                    `json:"historyId,omitempty"`
}
