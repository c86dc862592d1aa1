package publishnotify

import (
	"time"

	"venture-builder/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	SenderID     string
	Timeout      time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		EmailEnabled: cfg.Notifications.Email.Enabled,
		SMSEnabled:   cfg.Notifications.SMS.Enabled,
		FromEmail:    cfg.Notifications.Email.FromEmail,
		SenderID:     cfg.Notifications.SMS.SenderID,
		Timeout:      30 * time.Second,
	}
}
