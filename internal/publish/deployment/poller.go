package deployment

import (
	"context"
	"time"

	"venture-builder/internal/common/errors"
	"venture-builder/internal/common/logger"
	"venture-builder/internal/publish"
)

type PollConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// Poller waits for a submitted deployment to reach a terminal state.
type Poller struct {
	api    API
	config PollConfig
	logger logger.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewPoller(api API, cfg PollConfig, log logger.Logger) *Poller {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = 2 * time.Second
	}
	if cfg.MaxDelay < cfg.InitialDelay {
		cfg.MaxDelay = cfg.InitialDelay
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Poller{api: api, config: cfg, logger: log, sleep: sleepContext}
}

// Wait polls until the deployment is ready, errored or canceled. The delay starts at
// InitialDelay and doubles up to MaxDelay. Exhausting MaxAttempts yields DeploymentPollTimeout.
func (p *Poller) Wait(ctx context.Context, token string, dep *publish.DeploymentResult) (*publish.DeploymentResult, error) {
	if dep.Status.Terminal() {
		return dep, nil
	}

	delay := p.config.InitialDelay
	for attempt := 1; attempt <= p.config.MaxAttempts; attempt++ {
		if err := p.sleep(ctx, delay); err != nil {
			return dep, err
		}

		remote, err := p.api.GetDeployment(ctx, token, dep.ID)
		if err != nil {
			p.logger.Warn("Deployment status check failed", map[string]interface{}{
				"deploymentId": dep.ID,
				"attempt":      attempt,
				"error":        err.Error(),
			})
		} else {
			dep = normalize(remote)
			p.logger.Debug("Deployment status", map[string]interface{}{
				"deploymentId": dep.ID,
				"status":       string(dep.Status),
				"attempt":      attempt,
			})
			if dep.Status.Terminal() {
				return dep, nil
			}
		}

		delay *= 2
		if delay > p.config.MaxDelay {
			delay = p.config.MaxDelay
		}
	}

	return dep, errors.NewDeploymentPollTimeoutError(dep.ID, p.config.MaxAttempts)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
