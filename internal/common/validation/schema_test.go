package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectSchema() JSONSchema {
	return JSONSchema{
		Type:     "object",
		Required: []string{"projectName"},
		Properties: map[string]Property{
			"projectName": {Type: "string", MinLength: IntPtr(1)},
			"target":      {Type: "string", Enum: []string{"repository", "deployment"}},
			"files": {
				Type:  "array",
				Items: &Property{Type: "object", Required: []string{"path"}},
			},
		},
		AdditionalProperties: Closed(),
	}
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name       string
		input      map[string]interface{}
		valid      bool
		errorField string
	}{
		{
			name:  "valid",
			input: map[string]interface{}{"projectName": "Acme", "target": "repository"},
			valid: true,
		},
		{
			name:       "missing required",
			input:      map[string]interface{}{"target": "repository"},
			errorField: "(root)",
		},
		{
			name:       "enum violation",
			input:      map[string]interface{}{"projectName": "Acme", "target": "ftp"},
			errorField: "target",
		},
		{
			name:       "unknown field rejected",
			input:      map[string]interface{}{"projectName": "Acme", "extra": true},
			errorField: "(root)",
		},
		{
			name: "nested item missing path",
			input: map[string]interface{}{
				"projectName": "Acme",
				"files":       []interface{}{map[string]interface{}{"content": "x"}},
			},
			errorField: "files.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateInput(tt.input, projectSchema())
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				assert.True(t, result.HasErrors(tt.errorField), "errors: %v", result.GetErrorMessages())
			}
		})
	}
}

func TestValidateDocument_RejectsNonObject(t *testing.T) {
	result, err := ValidateDocument([]byte(`[1,2,3]`), projectSchema())
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.GetErrorMessages())
}

func TestValidateDocument_InvalidJSON(t *testing.T) {
	_, err := ValidateDocument([]byte(`{"projectName":`), projectSchema())
	assert.Error(t, err)
}

func TestValidateEmailAndPhone(t *testing.T) {
	assert.True(t, ValidateEmail("founder@acme.io"))
	assert.False(t, ValidateEmail("founder@"))
	assert.True(t, ValidatePhone("+14155550123"))
	assert.False(t, ValidatePhone("415-555-0123"))
}
