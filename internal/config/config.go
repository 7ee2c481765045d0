// Package config handles meshforge configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshforge/internal/logger"
	"github.com/Faultbox/meshforge/pkg/meshfile"
)

// Config holds all meshforge settings.
type Config struct {
	Compile CompileConfig `yaml:"compile"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

// CompileConfig controls how source meshes are turned into vertex buffers.
type CompileConfig struct {
	Scale          float32 `yaml:"scale"`           // fit radius; 0 keeps source units
	ReverseWinding bool    `yaml:"reverse_winding"` // flip triangle order while parsing
	Half           bool    `yaml:"half"`            // also pack a float16 buffer
	Group          int     `yaml:"group"`           // fragment group to extract; -1 for all
}

// CacheConfig holds compiled-mesh cache settings.
type CacheConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Dir           string `yaml:"dir"`
	Compression   string `yaml:"compression"` // none, lz4, zstd or bg4_lz4
	MemoryEntries int    `yaml:"memory_entries"` // 0 uses the asset manager default
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Compile: CompileConfig{
			Scale:          1,
			ReverseWinding: false,
			Half:           false,
			Group:          -1,
		},
		Cache: CacheConfig{
			Enabled:       true,
			Dir:           CacheDir(),
			Compression:   "lz4",
			MemoryEntries: 64,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if c.Compile.Scale < 0 {
		errs = append(errs, fmt.Errorf("compile.scale must not be negative, got %v", c.Compile.Scale))
	}
	if _, err := meshfile.ParseCompression(c.Cache.Compression); err != nil {
		errs = append(errs, fmt.Errorf("cache.compression: %w", err))
	}
	if c.Cache.MemoryEntries < 0 {
		errs = append(errs, fmt.Errorf("cache.memory_entries must not be negative, got %d", c.Cache.MemoryEntries))
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	return errors.Join(errs...)
}
