package publishnotify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"venture-builder/internal/common/errors"
	"venture-builder/internal/common/logger"
	"venture-builder/internal/common/metrics"
	"venture-builder/internal/common/validation"
)

const (
	TaskType = "publish-notify"
)

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config     *Config
	logger     logger.Logger
	sesClient  SESService
	snsClient  SNSService
	errHandler *errors.ErrorHandler
	now        func() time.Time
}

// NewHandler wires the AWS clients. A nil client disables its channel.
func NewHandler(config *Config, sesClient SESService, snsClient SNSService, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		logger:     log.WithFields(map[string]interface{}{"taskType": TaskType}),
		sesClient:  sesClient,
		snsClient:  snsClient,
		errHandler: errors.NewErrorHandler(log),
		now:        time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var vars map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &vars); err != nil {
		h.failJob(client, job, errors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err)))
		return
	}
	if result := validation.ValidateInput(vars, GetInputSchema()); !result.Valid {
		h.failJob(client, job, errors.NewInvalidRequestError(strings.Join(result.GetErrorMessages(), "; ")))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, errors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Email != "" && !validation.ValidateEmail(input.Email) {
		return nil, errors.NewInvalidRequestError(fmt.Sprintf("invalid email address: %s", input.Email))
	}
	if input.Phone != "" && !validation.ValidatePhone(input.Phone) {
		return nil, errors.NewInvalidRequestError("phone must be in E.164 format")
	}

	output := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		Channels:       []string{},
		SentAt:         h.now().UTC().Format(time.RFC3339),
	}

	subject, body := renderMessage(input)
	attempted := 0
	var lastErr error

	if h.config.EmailEnabled && h.sesClient != nil && input.Email != "" {
		attempted++
		if err := h.sendEmail(ctx, input.Email, subject, body); err != nil {
			lastErr = errors.NewNotificationSendFailedError(ChannelEmail, err)
			h.logger.Error("email send failed", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			output.Channels = append(output.Channels, ChannelEmail)
		}
	}

	if h.config.SMSEnabled && h.snsClient != nil && input.Phone != "" {
		attempted++
		if err := h.sendSMS(ctx, input.Phone, subject+": "+shortBody(input)); err != nil {
			lastErr = errors.NewNotificationSendFailedError(ChannelSMS, err)
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			output.Channels = append(output.Channels, ChannelSMS)
		}
	}

	switch {
	case attempted == 0:
		output.Status = StatusDisabled
	case len(output.Channels) > 0:
		output.Status = StatusSent
	default:
		// Nothing was delivered, so a retry cannot duplicate a message.
		return nil, lastErr
	}

	h.logger.Info("Publish notification processed", map[string]interface{}{
		"notificationId": output.NotificationID,
		"status":         output.Status,
		"channels":       output.Channels,
	})
	return output, nil
}

func renderMessage(input *Input) (string, string) {
	where := "GitHub repository"
	if input.Target == "deployment" {
		where = "Vercel deployment"
	}

	if input.Outcome == OutcomeSucceeded {
		subject := fmt.Sprintf("%s is live", input.ProjectName)
		body := fmt.Sprintf("Your %s for %s was published successfully.", where, input.ProjectName)
		if input.URL != "" {
			body += "\n\n" + input.URL
		}
		if input.Message != "" {
			body += "\n\nNote: " + input.Message
		}
		return subject, body
	}

	subject := fmt.Sprintf("Publishing %s failed", input.ProjectName)
	body := fmt.Sprintf("We could not publish the %s for %s.", where, input.ProjectName)
	if input.Message != "" {
		body += "\n\n" + input.Message
	}
	return subject, body
}

func shortBody(input *Input) string {
	if input.Outcome == OutcomeSucceeded && input.URL != "" {
		return input.URL
	}
	if input.Message != "" {
		return input.Message
	}
	return input.Outcome
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, to, message string) error {
	in := &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	}
	if h.config.SenderID != "" {
		in.MessageAttributes = map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(h.config.SenderID),
			},
		}
	}
	_, err := h.snsClient.Publish(ctx, in)
	return err
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	stdErr := errors.AsStandardError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
