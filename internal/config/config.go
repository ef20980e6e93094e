package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultModel   = "openai/gpt-4o-mini"
	DefaultAPIBase = "https://openrouter.ai/api/v1"
)

// Config holds everything read from the environment for one invocation.
type Config struct {
	APIKey    string // OPENROUTER_API_KEY, fallback when no key is stored
	Model     string
	APIBase   string
	ConfigDir string // empty means the per-user default
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using system environment variables")
	}

	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() Config {
	return Config{
		APIKey:    strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY")),
		Model:     envOr("JOBSEARCH_MODEL", DefaultModel),
		APIBase:   envOr("JOBSEARCH_API_BASE", DefaultAPIBase),
		ConfigDir: strings.TrimSpace(os.Getenv("JOBSEARCH_CONFIG_DIR")),
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
