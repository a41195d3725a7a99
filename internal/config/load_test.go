package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LESSON_STUDIO_DRIVER", "")
	t.Setenv("LESSON_STUDIO_DSN", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %q", cfg.Driver)
	}
	if cfg.SeekTolerance != 500*time.Millisecond {
		t.Errorf("expected 500ms tolerance, got %v", cfg.SeekTolerance)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studio.yaml")
	body := "driver: postgres\ndsn: postgres://file\nseek_tolerance: 1s\nrole: teacher\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LESSON_STUDIO_DSN", "postgres://env")
	t.Setenv("LESSON_STUDIO_ROLE", "")
	t.Setenv("DEBUG", "yes")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Driver != "postgres" || cfg.Role != "teacher" || cfg.SeekTolerance != time.Second {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.DSN != "postgres://env" {
		t.Errorf("expected env to win over file, got %q", cfg.DSN)
	}
	if !cfg.Debug {
		t.Error("expected debug from env")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
