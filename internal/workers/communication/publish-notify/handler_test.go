package publishnotify

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venture-builder/internal/common/errors"
	"venture-builder/internal/common/logger"
	"venture-builder/internal/common/validation"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	calls         []*ses.SendEmailInput
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.calls = append(m.calls, params)
	if m.SendEmailFunc == nil {
		return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
	}
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	calls       []*sns.PublishInput
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.calls = append(m.calls, params)
	if m.PublishFunc == nil {
		return &sns.PublishOutput{MessageId: aws.String("sms-1")}, nil
	}
	return m.PublishFunc(ctx, params, optFns...)
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		EmailEnabled: true,
		SMSEnabled:   true,
		FromEmail:    "noreply@venture.dev",
		SenderID:     "Venture",
		Timeout:      30 * time.Second,
	}
}

func createTestInput() *Input {
	return &Input{
		Email:       "founder@example.com",
		Phone:       "+14155550100",
		ProjectName: "Bean There",
		Target:      "deployment",
		Outcome:     OutcomeSucceeded,
		URL:         "https://bean-there.vercel.app",
	}
}

func newTestHandler(t *testing.T, cfg *Config, sesMock *MockSESService, snsMock *MockSNSService) *Handler {
	h := NewHandler(cfg, sesMock, snsMock, logger.NewTestLogger(t))
	h.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return h
}

// ==========================
// Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	sesMock, snsMock := &MockSESService{}, &MockSNSService{}
	h := newTestHandler(t, createTestConfig(), sesMock, snsMock)

	out, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	assert.Equal(t, StatusSent, out.Status)
	assert.Equal(t, []string{ChannelEmail, ChannelSMS}, out.Channels)
	assert.Equal(t, "2026-03-01T12:00:00Z", out.SentAt)
	assert.Len(t, out.NotificationID, 36)

	require.Len(t, sesMock.calls, 1)
	email := sesMock.calls[0]
	assert.Equal(t, "noreply@venture.dev", aws.ToString(email.Source))
	assert.Equal(t, []string{"founder@example.com"}, email.Destination.ToAddresses)
	assert.Equal(t, "Bean There is live", aws.ToString(email.Message.Subject.Data))
	assert.Contains(t, aws.ToString(email.Message.Body.Text.Data), "https://bean-there.vercel.app")

	require.Len(t, snsMock.calls, 1)
	sms := snsMock.calls[0]
	assert.Equal(t, "+14155550100", aws.ToString(sms.PhoneNumber))
	assert.Equal(t, "Bean There is live: https://bean-there.vercel.app", aws.ToString(sms.Message))
	assert.Equal(t, "Venture", aws.ToString(sms.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))
}

func TestHandler_Execute_Disabled(t *testing.T) {
	cfg := createTestConfig()
	cfg.EmailEnabled = false
	cfg.SMSEnabled = false
	sesMock, snsMock := &MockSESService{}, &MockSNSService{}

	out, err := newTestHandler(t, cfg, sesMock, snsMock).Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, out.Status)
	assert.Empty(t, out.Channels)
	assert.Empty(t, sesMock.calls)
	assert.Empty(t, snsMock.calls)
}

func TestHandler_Execute_PartialFailureStillSent(t *testing.T) {
	sesMock := &MockSESService{SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
		return nil, fmt.Errorf("MessageRejected: Email address is not verified")
	}}
	out, err := newTestHandler(t, createTestConfig(), sesMock, &MockSNSService{}).Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, StatusSent, out.Status)
	assert.Equal(t, []string{ChannelSMS}, out.Channels)
}

func TestHandler_Execute_AllChannelsFail(t *testing.T) {
	sesMock := &MockSESService{SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
		return nil, fmt.Errorf("throttled")
	}}
	input := createTestInput()
	input.Phone = ""

	_, err := newTestHandler(t, createTestConfig(), sesMock, &MockSNSService{}).Execute(context.Background(), input)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotificationSendFailed))
	assert.Equal(t, 3, errors.ConvertToBPMNError(errors.AsStandardError(err)).Retries)
}

func TestHandler_Execute_InvalidRecipients(t *testing.T) {
	tests := []struct {
		name  string
		email string
		phone string
	}{
		{"bad email", "not-an-email", ""},
		{"local phone", "", "4155550100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := createTestInput()
			input.Email, input.Phone = tt.email, tt.phone
			_, err := newTestHandler(t, createTestConfig(), &MockSESService{}, &MockSNSService{}).Execute(context.Background(), input)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
		})
	}
}

func TestRenderMessage_Failure(t *testing.T) {
	subject, body := renderMessage(&Input{
		ProjectName: "Bean There",
		Target:      "repository",
		Outcome:     OutcomeFailed,
		Message:     "Repository creation failed: name already exists on this account",
	})
	assert.Equal(t, "Publishing Bean There failed", subject)
	assert.Contains(t, body, "GitHub repository")
	assert.Contains(t, body, "name already exists")
}

func TestInputSchema(t *testing.T) {
	valid := validation.ValidateInput(map[string]interface{}{
		"projectName": "Bean There",
		"target":      "deployment",
		"outcome":     "succeeded",
	}, GetInputSchema())
	assert.True(t, valid.Valid)

	invalid := validation.ValidateInput(map[string]interface{}{
		"projectName": "Bean There",
		"target":      "ftp",
	}, GetInputSchema())
	assert.False(t, invalid.Valid)
	assert.True(t, invalid.HasErrors("target"))
}
