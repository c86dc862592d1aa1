package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("publish: %w", NewProvisionFailedError("name already exists on this account"))

	assert.True(t, stderrors.Is(err, &StandardError{Code: ErrCodeProvisionFailed}))
	assert.False(t, stderrors.Is(err, &StandardError{Code: ErrCodeDeploymentRejected}))
	assert.True(t, HasCode(err, ErrCodeProvisionFailed))
}

func TestNewMalformedContentError(t *testing.T) {
	err := NewMalformedContentError([]string{"copy: is required", "brandAssets: is required"})

	assert.Equal(t, ErrCodeMalformedContent, err.Code)
	assert.Equal(t, "copy: is required; brandAssets: is required", err.Details)
	assert.False(t, err.Retryable)
	assert.Len(t, err.Metadata["violations"], 2)
}

func TestNewDeploymentRejectedError_Fallback(t *testing.T) {
	assert.Equal(t, "Deployment failed", NewDeploymentRejectedError("  ").Message)
	assert.Equal(t, "Invalid token", NewDeploymentRejectedError("Invalid token").Message)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"provision", NewProvisionFailedError("name already exists on this account"), "Repository creation failed: name already exists on this account"},
		{"deployment", NewDeploymentRejectedError("Invalid token"), "Deployment failed: Invalid token"},
		{"archive is generic", NewArchiveGenerationFailedError(stderrors.New("disk full")), "Could not generate the download archive. Please try again."},
		{"plain error", stderrors.New("boom"), "Something went wrong. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("publish errors are not retried", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewDeploymentRejectedError("quota exceeded"))
		assert.Equal(t, "DEPLOYMENT_REJECTED", bpmn.Code)
		assert.Equal(t, 0, bpmn.Retries)
	})

	t.Run("generation failures retry once", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewContentGenerationFailedError(stderrors.New("status 502")))
		assert.Equal(t, "CONTENT_GENERATION_FAILED", bpmn.Code)
		assert.Equal(t, 1, bpmn.Retries)
	})

	t.Run("unmapped code falls back to itself", func(t *testing.T) {
		bpmn := ConvertToBPMNError(&StandardError{Code: "SOMETHING_ELSE", Message: "x"})
		assert.Equal(t, "SOMETHING_ELSE", bpmn.Code)
	})

	t.Run("variables carry original code", func(t *testing.T) {
		vars := ConvertToBPMNError(NewCredentialMissingError("github")).ToErrorVariables()
		require.Equal(t, "UNAUTHORIZED", vars["errorCode"])
		assert.Equal(t, "CREDENTIAL_MISSING", vars["originalErrorCode"])
	})
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "REPOSITORY", GetErrorCategory(ErrCodeProvisionFailed))
	assert.Equal(t, "REPOSITORY", GetErrorCategory(ErrCodeFilePushFailed))
	assert.Equal(t, "DEPLOYMENT", GetErrorCategory(ErrCodeDeploymentRejected))
	assert.Equal(t, "ARCHIVE", GetErrorCategory(ErrCodeArchiveGenerationFailed))
	assert.Equal(t, "CONTENT", GetErrorCategory(ErrCodeMalformedContent))
	assert.Equal(t, "AUTH", GetErrorCategory(ErrCodeCredentialMissing))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
