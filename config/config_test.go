package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/veligo/galleria/config"
)

func TestLoad_missingFile(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing config file should fall back to defaults; got %v", err)
	}

	want := config.Default()

	if cfg.Gallery.MaxImages != want.Gallery.MaxImages {
		t.Fatalf("max images should default to %d; got %d", want.Gallery.MaxImages, cfg.Gallery.MaxImages)
	}

	if cfg.Storage.Backend != want.Storage.Backend {
		t.Fatalf("storage backend should default to %q; got %q", want.Storage.Backend, cfg.Storage.Backend)
	}

	// The watch pipeline only writes to storage when an owner is configured,
	// so the defaults must provide one.
	if cfg.Watch.Owner == "" {
		t.Fatalf("watch owner should have a non-empty default")
	}
}

func TestLoad_overlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "galleria.yaml")

	raw := `
gallery:
  max_images: 5
storage:
  backend: sqlite
  database_path: /tmp/test.db
watch:
  debounce: 250ms
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Gallery.MaxImages != 5 {
		t.Fatalf("max images should be 5; got %d", cfg.Gallery.MaxImages)
	}

	if cfg.Storage.Backend != "sqlite" {
		t.Fatalf("storage backend should be sqlite; got %q", cfg.Storage.Backend)
	}

	if cfg.Watch.Debounce != config.Duration(250*time.Millisecond) {
		t.Fatalf("debounce should be 250ms; got %s", cfg.Watch.Debounce)
	}

	// Unset values keep their defaults.
	if cfg.Optimizer.Quality != config.Default().Optimizer.Quality {
		t.Fatalf("unset quality should keep its default; got %f", cfg.Optimizer.Quality)
	}
}

func TestLoad_invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "galleria.yaml")

	raw := `
storage:
  backend: s3
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	if _, err := config.Load(path); err == nil {
		t.Fatalf("unsupported storage backend should fail validation")
	}
}

func TestValidate_quality(t *testing.T) {
	cfg := config.Default()
	cfg.Optimizer.Quality = 1.5

	if err := cfg.Validate(); err == nil {
		t.Fatalf("quality above 1 should fail validation")
	}
}

func TestGalleryConfig_ShowDefaultBackgroundEnabled(t *testing.T) {
	cfg := config.Default()

	if !cfg.Gallery.ShowDefaultBackgroundEnabled() {
		t.Fatalf("default background should be enabled when unset")
	}

	disabled := false
	cfg.Gallery.ShowDefaultBackground = &disabled

	if cfg.Gallery.ShowDefaultBackgroundEnabled() {
		t.Fatalf("default background should be disabled when set to false")
	}
}
