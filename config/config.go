// Package config loads the configuration of the galleria CLI.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Gallery   GalleryConfig   `yaml:"gallery"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Storage   StorageConfig   `yaml:"storage"`
	Watch     WatchConfig     `yaml:"watch"`
}

// GalleryConfig configures gallery behavior.
type GalleryConfig struct {
	MaxImages             int   `yaml:"max_images"`
	ShowDefaultBackground *bool `yaml:"show_default_background"`
}

// OptimizerConfig configures the image optimizer.
type OptimizerConfig struct {
	MaxWidth  int     `yaml:"max_width"`
	MaxHeight int     `yaml:"max_height"`
	Quality   float64 `yaml:"quality"`
	Format    string  `yaml:"format"`
	MaxBytes  int     `yaml:"max_bytes"`
}

// StorageConfig selects and configures the durable image store.
type StorageConfig struct {
	// Backend is one of "memory", "fs", "sqlite".
	Backend      string `yaml:"backend"`
	BaseDir      string `yaml:"base_dir"`
	DatabasePath string `yaml:"database_path"`
}

// WatchConfig configures the drop-folder watcher.
type WatchConfig struct {
	Dir      string   `yaml:"dir"`
	Owner    string   `yaml:"owner"`
	Debounce Duration `yaml:"debounce"`
}

// Duration is a [time.Duration] that unmarshals from strings like "250ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// String returns the duration in [time.Duration] notation.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// Default returns the default configuration.
func Default() *Config {
	enabled := true
	return &Config{
		Gallery: GalleryConfig{
			MaxImages:             10,
			ShowDefaultBackground: &enabled,
		},
		Optimizer: OptimizerConfig{},
		Storage: StorageConfig{
			Backend:      "fs",
			BaseDir:      "var/storage/images",
			DatabasePath: "var/storage/galleria.db",
		},
		Watch: WatchConfig{
			Dir:      "var/dropbox",
			Owner:    "dropbox",
			Debounce: Duration(500 * time.Millisecond),
		},
	}
}

// Load reads and parses the configuration file at path, overlaying it on top
// of [Default]. A missing file is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Gallery.MaxImages < 0 {
		return fmt.Errorf("gallery.max_images must not be negative")
	}
	if c.Optimizer.Quality < 0 || c.Optimizer.Quality > 1 {
		return fmt.Errorf("optimizer.quality must be in (0,1]")
	}
	switch c.Storage.Backend {
	case "", "memory", "fs", "sqlite":
	default:
		return fmt.Errorf("storage.backend %q is not supported", c.Storage.Backend)
	}
	return nil
}

// ShowDefaultBackgroundEnabled reports whether the default background
// fallback is enabled. It defaults to true when unset.
func (c *GalleryConfig) ShowDefaultBackgroundEnabled() bool {
	if c.ShowDefaultBackground == nil {
		return true
	}
	return *c.ShowDefaultBackground
}
