// Package config loads studio settings from defaults, an optional YAML file
// and the environment.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds studio settings.
type Config struct {
	Driver        string        `yaml:"driver"`
	DSN           string        `yaml:"dsn"`
	MediaDir      string        `yaml:"media_dir"`
	MediaBaseURL  string        `yaml:"media_base_url"`
	GCSBucket     string        `yaml:"gcs_bucket"`
	GCSPrefix     string        `yaml:"gcs_prefix"`
	GCSEmulator   string        `yaml:"gcs_emulator_host"`
	SeekTolerance time.Duration `yaml:"seek_tolerance"`
	UserID        string        `yaml:"user"`
	Role          string        `yaml:"role"`
	Debug         bool          `yaml:"debug"`
}

// DefaultConfig provides defaults for a local single-editor setup.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".lesson-studio")
	return Config{
		Driver:        "sqlite",
		DSN:           filepath.Join(base, "studio.db"),
		MediaDir:      filepath.Join(base, "media"),
		MediaBaseURL:  "file://" + filepath.Join(base, "media"),
		GCSPrefix:     "videos",
		SeekTolerance: 500 * time.Millisecond,
		UserID:        "local",
		Role:          "admin",
	}
}
