package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load starts from DefaultConfig, overlays the YAML file at path (if path is
// non-empty) and then environment variables.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("LESSON_STUDIO_DRIVER"); v != "" {
		cfg.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DSN = v
	}
	if v := os.Getenv("LESSON_STUDIO_DSN"); v != "" {
		cfg.DSN = v
	}
	if v := os.Getenv("LESSON_STUDIO_MEDIA_DIR"); v != "" {
		cfg.MediaDir = v
	}
	if v := os.Getenv("LESSON_STUDIO_MEDIA_BASE_URL"); v != "" {
		cfg.MediaBaseURL = v
	}
	if v := os.Getenv("LESSON_STUDIO_GCS_BUCKET"); v != "" {
		cfg.GCSBucket = v
	}
	if v := os.Getenv("LESSON_STUDIO_GCS_PREFIX"); v != "" {
		cfg.GCSPrefix = v
	}
	if v := os.Getenv("STORAGE_EMULATOR_HOST"); v != "" {
		cfg.GCSEmulator = v
	}
	if v := os.Getenv("LESSON_STUDIO_SEEK_TOLERANCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.SeekTolerance = d
		}
	}
	if v := os.Getenv("LESSON_STUDIO_USER"); v != "" {
		cfg.UserID = v
	}
	if v := os.Getenv("LESSON_STUDIO_ROLE"); v != "" {
		cfg.Role = v
	}
	if v := strings.ToLower(os.Getenv("DEBUG")); v == "1" || v == "true" || v == "yes" {
		cfg.Debug = true
	}

	return cfg, nil
}
