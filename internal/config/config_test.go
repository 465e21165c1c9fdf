package config

import (
	"path/filepath"
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STARFIELD_DATA_DIR", "/var/lib/starfield")
	t.Setenv("STARFIELD_SURVEY_URL", "http://localhost:9999")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.DataDir != "/var/lib/starfield" {
		t.Fatalf("DataDir = %q", cfg.DataDir)
	}
	if cfg.SurveyURL != "http://localhost:9999" {
		t.Fatalf("SurveyURL = %q", cfg.SurveyURL)
	}
	want := filepath.Join("/var/lib/starfield", "intermediates", "cones.db")
	if got := cfg.ConeCachePath(); got != want {
		t.Fatalf("ConeCachePath = %q, want %q", got, want)
	}
}

func TestCachePathOverride(t *testing.T) {
	cfg := Config{DataDir: "/data", CachePath: "/tmp/c.db"}
	if got := cfg.ConeCachePath(); got != "/tmp/c.db" {
		t.Fatalf("ConeCachePath = %q", got)
	}
}
