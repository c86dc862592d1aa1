package exportarchive

import "encoding/json"

type Input struct {
	ProjectID   string          `json:"projectId,omitempty"`
	ProjectName string          `json:"projectName,omitempty"`
	Content     json.RawMessage `json:"content,omitempty"`
}

type Output struct {
	FileName  string   `json:"fileName"`
	Path      string   `json:"path"`
	SizeBytes int64    `json:"sizeBytes"`
	FileCount int      `json:"fileCount"`
	Files     []string `json:"files"`
}
