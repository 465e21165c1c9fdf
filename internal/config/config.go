// Package config centralises runtime configuration: an explicit struct
// parsed once from the environment and passed into constructors.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config holds the paths and endpoints the catalog stack needs.
type Config struct {
	// DataDir is where intermediates (the cone cache) live.
	DataDir string `env:"STARFIELD_DATA_DIR" envDefault:"."`
	// CachePath overrides the cone cache location; empty means
	// DataDir/intermediates/cones.db.
	CachePath string `env:"STARFIELD_CACHE_PATH"`

	SurveyURL   string `env:"STARFIELD_SURVEY_URL"`
	ResolverURL string `env:"STARFIELD_RESOLVER_URL"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// FromEnv parses configuration from environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// ConeCachePath returns the resolved location of the cone cache database.
func (c Config) ConeCachePath() string {
	if c.CachePath != "" {
		return c.CachePath
	}
	return filepath.Join(c.DataDir, "intermediates", "cones.db")
}
