package exportarchive

import (
	"os"
	"path/filepath"
	"time"

	"venture-builder/internal/common/config"
)

type Config struct {
	Directory string
	Timeout   time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	dir := cfg.Export.Directory
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "venture-exports")
	}
	return &Config{
		Directory: dir,
		Timeout:   30 * time.Second,
	}
}
