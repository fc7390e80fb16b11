package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/nao1215/metrodemo/internal/config"
)

// TestNewInitCmd tests the init command creation.
func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	cmd := NewInitCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "init" {
			t.Errorf("expected use 'init', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
		if flag.DefValue != configFileName {
			t.Errorf("expected default %q, got %q", configFileName, flag.DefValue)
		}
	})

	t.Run("has force flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("force")
		if flag == nil {
			t.Fatal("expected force flag")
		}
		if flag.Shorthand != "f" {
			t.Errorf("expected shorthand 'f', got %q", flag.Shorthand)
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})
}

// runInit executes init with args and returns its output.
func runInit(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewInitCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// loadInitConfig reads a written .metrodemo into a Config.
func loadInitConfig(t *testing.T, path string) *config.Config {
	t.Helper()

	file, err := config.LoadConfigFile(path)
	if err != nil {
		t.Fatalf("failed to load %s: %v", path, err)
	}
	cfg := config.NewConfig()
	file.Apply(cfg)
	return cfg
}

// TestRunInitCmd tests the init command execution.
func TestRunInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("writes a loadable configuration", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), configFileName)
		out, err := runInit(t, "-o", path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Created configuration file: "+path) {
			t.Errorf("unexpected output: %s", out)
		}

		cfg := loadInitConfig(t, path)
		if cfg.ImageCount != config.DefaultImageCount || cfg.Version != config.DefaultVersion {
			t.Errorf("expected defaults, got images=%d version=%q", cfg.ImageCount, cfg.Version)
		}
	})

	t.Run("keeps an existing configuration without force", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), configFileName)
		if err := os.WriteFile(path, []byte("images: 2\n"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		_, err := runInit(t, "-o", path)
		if err == nil || !strings.Contains(err.Error(), "already exists") {
			t.Fatalf("expected 'already exists' error, got %v", err)
		}
		if cfg := loadInitConfig(t, path); cfg.ImageCount != 2 {
			t.Errorf("existing configuration changed: images=%d", cfg.ImageCount)
		}
	})

	t.Run("force resets a customised configuration", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), configFileName)
		custom := "images: 2\nversion: \"1.0.0\"\nbinDir: dist\n"
		if err := os.WriteFile(path, []byte(custom), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := runInit(t, "-o", path, "--force"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := loadInitConfig(t, path)
		if cfg.ImageCount != config.DefaultImageCount {
			t.Errorf("expected images reset to %d, got %d", config.DefaultImageCount, cfg.ImageCount)
		}
		if cfg.Version != config.DefaultVersion {
			t.Errorf("expected version reset to %q, got %q", config.DefaultVersion, cfg.Version)
		}
		if cfg.BinDir != config.DefaultBinDir {
			t.Errorf("expected bin dir reset to %q, got %q", config.DefaultBinDir, cfg.BinDir)
		}
	})

	t.Run("written file configures generate", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", configFileName)
		if _, err := runInit(t, "-o", path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		gen := NewGenerateCmd()
		if err := gen.ParseFlags([]string{"--config", path, "--images", "3"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		cfg, err := buildConfig(gen, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ImageCount != 3 {
			t.Errorf("expected flag to override file, got images=%d", cfg.ImageCount)
		}
		if cfg.ConfigFilePath != path {
			t.Errorf("expected config path %q, got %q", path, cfg.ConfigFilePath)
		}
	})

	t.Run("file is private", func(t *testing.T) {
		t.Parallel()

		if runtime.GOOS == "windows" {
			t.Skip("no Unix permissions on Windows")
		}

		path := filepath.Join(t.TempDir(), configFileName)
		if _, err := runInit(t, "-o", path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("failed to stat file: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("expected permissions 0600, got %o", perm)
		}
	})
}

// TestConfigTemplate tests the embedded config template.
func TestConfigTemplate(t *testing.T) {
	t.Parallel()

	content, err := configTemplate.ReadFile("templates/metrodemo.yaml")
	if err != nil {
		t.Fatalf("failed to read template: %v", err)
	}

	t.Run("template is not empty", func(t *testing.T) {
		t.Parallel()
		if len(content) == 0 {
			t.Error("expected non-empty template")
		}
	})

	t.Run("template loads as configuration", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), configFileName)
		if err := os.WriteFile(path, content, 0600); err != nil {
			t.Fatalf("failed to write template: %v", err)
		}

		file, err := config.LoadConfigFile(path)
		if err != nil {
			t.Fatalf("template is not valid YAML: %v", err)
		}

		cfg := config.NewConfig()
		file.Apply(cfg)
		if err := cfg.Validate(); err != nil {
			t.Errorf("template produces invalid configuration: %v", err)
		}
		if cfg.Version != config.DefaultVersion {
			t.Errorf("expected version %q, got %q", config.DefaultVersion, cfg.Version)
		}
		if cfg.ImageCount != config.DefaultImageCount {
			t.Errorf("expected %d images, got %d", config.DefaultImageCount, cfg.ImageCount)
		}
	})

	t.Run("template contains documentation comments", func(t *testing.T) {
		t.Parallel()
		if !strings.Contains(string(content), "#") {
			t.Error("expected template to contain documentation comments")
		}
	})
}
