// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse activity registry %s: %w", path, err)
	}
	return &reg, nil
}

// Find returns the activity registered for a Zeebe task type.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// Missing lists the task types that have no registry entry, sorted.
func (r *ActivityRegistry) Missing(taskTypes []string) []string {
	var missing []string
	for _, tt := range taskTypes {
		if _, ok := r.Find(tt); !ok {
			missing = append(missing, tt)
		}
	}
	sort.Strings(missing)
	return missing
}

// Unimplemented lists activities that are registered but not served by this process.
func (r *ActivityRegistry) Unimplemented(taskTypes []string) []string {
	served := make(map[string]bool, len(taskTypes))
	for _, tt := range taskTypes {
		served[tt] = true
	}
	var out []string
	for _, a := range r.Activities {
		if !served[a.TaskType] {
			out = append(out, a.TaskType)
		}
	}
	sort.Strings(out)
	return out
}
