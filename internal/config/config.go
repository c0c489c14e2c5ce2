// Package config loads the application configuration and the optional .env file.
package config

import (
	"os"
	"path/filepath"
	"sync"

	"fjacquet/rabbit/internal/logging"

	"github.com/joho/godotenv"
)

var once sync.Once

// LoadEnv loads environment variables from a .env file in the current or parent
// directory, if one exists. Variables already set in the environment win.
func LoadEnv() {
	once.Do(func() {
		for _, candidate := range []string{".env", filepath.Join("..", ".env")} {
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			_ = godotenv.Load(candidate)
			return
		}
	})
}

// NewLogger builds the application logger described by the configuration.
func NewLogger(cfg *Config) logging.Logger {
	if cfg == nil {
		return logging.NewLogrusAdapter("info", "text")
	}
	return logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
}
