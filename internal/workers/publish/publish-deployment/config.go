package publishdeployment

import (
	"time"

	"venture-builder/internal/common/config"
	"venture-builder/internal/publish/deployment"
)

// Provider keys stored credentials.
const Provider = "vercel"

type Config struct {
	Timeout time.Duration
	// Poll is nil unless waiting for a terminal build state is enabled.
	Poll *deployment.PollConfig
}

func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	c := &Config{Timeout: time.Duration(wc.Timeout) * time.Millisecond}
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Minute
	}

	poll := cfg.Publishing.Vercel.Poll
	if poll.Enabled {
		c.Poll = &deployment.PollConfig{
			MaxAttempts:  poll.MaxAttempts,
			InitialDelay: config.GetDuration(poll.InitialDelay),
			MaxDelay:     config.GetDuration(poll.MaxDelay),
		}
	}
	return c
}
