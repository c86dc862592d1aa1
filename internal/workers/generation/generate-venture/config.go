package generateventure

import (
	"time"

	"venture-builder/internal/common/config"
)

type Config struct {
	GenAIBaseURL string
	APIKey       string
	Timeout      time.Duration
	MaxRetries   int
	MaxTokens    int
	Temperature  float64
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		GenAIBaseURL: cfg.APIs.GenAI.BaseURL,
		APIKey:       cfg.APIs.GenAI.APIKey,
		Timeout:      time.Duration(cfg.APIs.GenAI.Timeout) * time.Millisecond,
		MaxRetries:   cfg.APIs.GenAI.MaxRetries,
		MaxTokens:    cfg.APIs.GenAI.MaxTokens,
		Temperature:  cfg.APIs.GenAI.Temperature,
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 4096
	}
	return c
}
