package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Compile.Scale != 1 {
		t.Errorf("expected scale 1, got %v", cfg.Compile.Scale)
	}
	if cfg.Compile.ReverseWinding {
		t.Error("expected reverse_winding to be false by default")
	}
	if cfg.Compile.Group != -1 {
		t.Errorf("expected group -1, got %d", cfg.Compile.Group)
	}

	if !cfg.Cache.Enabled {
		t.Error("expected cache to be enabled by default")
	}
	if cfg.Cache.Compression != "lz4" {
		t.Errorf("expected compression lz4, got %s", cfg.Cache.Compression)
	}
	if cfg.Cache.Dir == "" {
		t.Error("expected a default cache dir")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
compile:
  scale: 2.5
  reverse_winding: true
  half: true
  group: 3

cache:
  enabled: false
  dir: "/var/cache/meshes"
  compression: "zstd"
  memory_entries: 8

logging:
  level: "debug"
  log_file: "meshtool.log"
  json: true
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Compile.Scale != 2.5 {
		t.Errorf("expected scale 2.5, got %v", cfg.Compile.Scale)
	}
	if !cfg.Compile.ReverseWinding || !cfg.Compile.Half {
		t.Error("expected reverse_winding and half to be true")
	}
	if cfg.Compile.Group != 3 {
		t.Errorf("expected group 3, got %d", cfg.Compile.Group)
	}

	if cfg.Cache.Enabled {
		t.Error("expected cache to be disabled")
	}
	if cfg.Cache.Dir != "/var/cache/meshes" {
		t.Errorf("expected cache dir /var/cache/meshes, got %s", cfg.Cache.Dir)
	}
	if cfg.Cache.Compression != "zstd" {
		t.Errorf("expected compression zstd, got %s", cfg.Cache.Compression)
	}
	if cfg.Cache.MemoryEntries != 8 {
		t.Errorf("expected 8 memory entries, got %d", cfg.Cache.MemoryEntries)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "meshtool.log" || !cfg.Logging.JSON {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("cache:\n  compression: bg4_lz4\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Cache.Compression != "bg4_lz4" {
		t.Errorf("expected compression bg4_lz4, got %s", cfg.Cache.Compression)
	}
	// Unset keys keep their defaults.
	if cfg.Compile.Scale != 1 || !cfg.Cache.Enabled {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
compile:
  scale: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"zero scale", func(c *Config) { c.Compile.Scale = 0 }, false},
		{"negative scale", func(c *Config) { c.Compile.Scale = -1 }, true},
		{"unknown compression", func(c *Config) { c.Cache.Compression = "gzip" }, true},
		{"negative memory entries", func(c *Config) { c.Cache.MemoryEntries = -1 }, true},
		{"unknown log level", func(c *Config) { c.Logging.Level = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte("compile:\n  scale: 3\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Errorf("expected to find %s in current directory", FileName)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(*testing.T, *Config)
	}{
		{
			name: "debug flag",
			args: []string{"--debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "scale flag",
			args: []string{"--scale", "0"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Compile.Scale != 0 {
					t.Errorf("expected scale 0, got %v", cfg.Compile.Scale)
				}
			},
		},
		{
			name: "winding and half flags",
			args: []string{"--reverse-winding", "--half"},
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Compile.ReverseWinding || !cfg.Compile.Half {
					t.Errorf("unexpected compile config %+v", cfg.Compile)
				}
			},
		},
		{
			name: "cache flags",
			args: []string{"--compression=zstd", "--cache-dir", "/tmp/meshes", "--no-cache"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Cache.Compression != "zstd" || cfg.Cache.Dir != "/tmp/meshes" || cfg.Cache.Enabled {
					t.Errorf("unexpected cache config %+v", cfg.Cache)
				}
			},
		},
		{
			name: "group flag",
			args: []string{"--group", "2"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Compile.Group != 2 {
					t.Errorf("expected group 2, got %d", cfg.Compile.Group)
				}
			},
		},
		{
			name: "no flags",
			args: nil,
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Compile.Scale != 1 || cfg.Compile.Group != -1 {
					t.Errorf("defaults changed without flags: %+v", cfg.Compile)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			defer resetFlags()

			if err := ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags() error = %v", err)
			}

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestParseFlagsPositional(t *testing.T) {
	resetFlags()
	defer resetFlags()

	out := Flags().StringP("output", "o", "", "output path")
	if err := ParseFlags([]string{"compile", "model.obj", "-o", "model.mesh", "--half"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	args := Args()
	if len(args) != 2 || args[0] != "compile" || args[1] != "model.obj" {
		t.Errorf("Args() = %v", args)
	}
	if *out != "model.mesh" || !*flagHalf {
		t.Errorf("output = %q, half = %v", *out, *flagHalf)
	}
}

func TestLoadPriority(t *testing.T) {
	resetFlags()
	defer resetFlags()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
compile:
  scale: 4
  group: 1
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := ParseFlags([]string{"--config", configPath, "--scale", "8"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Scale comes from the flag, group from the file.
	if cfg.Compile.Scale != 8 {
		t.Errorf("expected scale 8 from flag, got %v", cfg.Compile.Scale)
	}
	if cfg.Compile.Group != 1 {
		t.Errorf("expected group 1 from file, got %d", cfg.Compile.Group)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	resetFlags()
	defer resetFlags()

	if err := ParseFlags([]string{"--compression", "brotli"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if _, err := Load(); err == nil {
		t.Error("Load() accepted an unknown compression")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Compile.Scale = 0.5
	cfg.Cache.Compression = "zstd"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if loaded.Compile.Scale != 0.5 || loaded.Cache.Compression != "zstd" {
		t.Errorf("reloaded config %+v", loaded)
	}
}
