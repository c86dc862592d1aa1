package publishnotify

type Input struct {
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	ProjectName string `json:"projectName"`
	Target      string `json:"target"` // "repository" or "deployment"
	Outcome     string `json:"outcome"`
	URL         string `json:"url,omitempty"`
	Message     string `json:"message,omitempty"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"` // "sent", "failed", "disabled"
	Channels       []string `json:"channels"`
	SentAt         string   `json:"sentAt"` // ISO 8601
}

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// Outcomes
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)
