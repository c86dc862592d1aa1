package generateventure

import "encoding/json"

type Input struct {
	Brief       string `json:"brief"`
	Kind        string `json:"kind"` // "build_package" (default) or "advisory_report"
	ProjectName string `json:"projectName"`
	OwnerID     string `json:"ownerId"`
	ProjectID   string `json:"projectId,omitempty"`
}

type Output struct {
	ProjectID   string          `json:"projectId,omitempty"`
	ProjectName string          `json:"projectName"`
	ContentKind string          `json:"contentKind"`
	Confidence  float64         `json:"confidence"`
	Content     json.RawMessage `json:"content"`
}

type generateRequest struct {
	Prompt      string                 `json:"prompt"`
	Context     map[string]interface{} `json:"context"`
	MaxTokens   int                    `json:"max_tokens"`
	Temperature float64                `json:"temperature"`
}

type generateResponse struct {
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources"`
}
