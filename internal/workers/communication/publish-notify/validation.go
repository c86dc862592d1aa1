package publishnotify

import "venture-builder/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"projectName", "target", "outcome"},
		Properties: map[string]validation.Property{
			"email": {
				Type:      "string",
				MaxLength: validation.IntPtr(255),
			},
			"phone": {
				Type:      "string",
				MaxLength: validation.IntPtr(16),
			},
			"projectName": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
				MaxLength: validation.IntPtr(200),
			},
			"target": {
				Type: "string",
				Enum: []string{"repository", "deployment"},
			},
			"outcome": {
				Type: "string",
				Enum: []string{OutcomeSucceeded, OutcomeFailed},
			},
			"url": {
				Type:      "string",
				MaxLength: validation.IntPtr(2048),
			},
			"message": {
				Type:      "string",
				MaxLength: validation.IntPtr(1000),
			},
		},
	}
}
