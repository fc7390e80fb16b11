package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changing a default must be intentional, so each one is pinned here.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default target is the current directory", func(t *testing.T) {
		t.Parallel()
		if diff := cmp.Diff([]string{"."}, cfg.Targets); diff != "" {
			t.Errorf("targets mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("default directories", func(t *testing.T) {
		t.Parallel()
		if cfg.ImagesDir != "images" || cfg.DataDir != "data" || cfg.BinDir != "bin" {
			t.Errorf("unexpected directories: %q %q %q", cfg.ImagesDir, cfg.DataDir, cfg.BinDir)
		}
	})

	t.Run("default version is 2.0.5", func(t *testing.T) {
		t.Parallel()
		if cfg.Version != "2.0.5" {
			t.Errorf("expected Version to be '2.0.5', got %q", cfg.Version)
		}
	})

	t.Run("default image count is 4", func(t *testing.T) {
		t.Parallel()
		if cfg.ImageCount != 4 {
			t.Errorf("expected ImageCount to be 4, got %d", cfg.ImageCount)
		}
	})

	t.Run("saves to XDG data directory by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})

	t.Run("markdown summary is off by default", func(t *testing.T) {
		t.Parallel()
		if cfg.MarkdownSummary {
			t.Error("expected MarkdownSummary to be false")
		}
	})

	t.Run("default config is valid", func(t *testing.T) {
		t.Parallel()
		if err := NewConfig().Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each case breaks exactly one rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"no targets", func(c *Config) { c.Targets = nil }, ErrNoTarget},
		{"empty target", func(c *Config) { c.Targets = []string{"a", ""} }, ErrNoTarget},
		{"empty images dir", func(c *Config) { c.ImagesDir = "" }, ErrEmptyDirectory},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, ErrEmptyDirectory},
		{"empty bin dir", func(c *Config) { c.BinDir = "" }, ErrEmptyDirectory},
		{"empty version", func(c *Config) { c.Version = "" }, ErrEmptyVersion},
		{"zero image count", func(c *Config) { c.ImageCount = 0 }, ErrInvalidImageCount},
		{"negative image count", func(c *Config) { c.ImageCount = -1 }, ErrInvalidImageCount},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, ErrInvalidConcurrency},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }, ErrInvalidBatchSize},
		{"markdown without file", func(c *Config) {
			c.MarkdownSummary = true
			c.SummaryFile = ""
		}, ErrEmptySummaryFile},
		{"db without dir", func(c *Config) { c.DBDir = "" }, ErrEmptyDBDir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.mutate(cfg)

			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("empty db dir is fine when not saving", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.SaveToDB = false
		cfg.DBDir = ""
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

// TestConfigPaths tests path resolution against a work directory.
func TestConfigPaths(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if got := cfg.ImagesPath("/srv/demo"); got != filepath.Join("/srv/demo", "images") {
		t.Errorf("unexpected images path %q", got)
	}
	if got := cfg.DataPath("demo"); got != filepath.Join("demo", "data") {
		t.Errorf("unexpected data path %q", got)
	}
	if got := cfg.SummaryPath("demo"); got != filepath.Join("demo", "bin", "SUMMARY.md") {
		t.Errorf("unexpected summary path %q", got)
	}

	abs := filepath.Join(t.TempDir(), "out")
	cfg.BinDir = abs
	if got := cfg.BinPath("demo"); got != abs {
		t.Errorf("absolute bin dir must be kept, got %q", got)
	}
}

// TestFileApply tests merging file values onto a config.
func TestFileApply(t *testing.T) {
	t.Parallel()

	t.Run("set values override defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		f := &File{
			WorkDirs:  []string{"linha4", "linha5"},
			ImagesDir: "fotos",
			Version:   "3.0.0",
			Images:    6,
			BatchSize: 3,
			Markdown:  true,
			DBDir:     "/tmp/store",
		}
		f.Apply(cfg)

		if diff := cmp.Diff([]string{"linha4", "linha5"}, cfg.Targets); diff != "" {
			t.Errorf("targets mismatch (-want +got):\n%s", diff)
		}
		if cfg.ImagesDir != "fotos" || cfg.Version != "3.0.0" || cfg.ImageCount != 6 || cfg.BatchSize != 3 {
			t.Errorf("values not applied: %+v", cfg)
		}
		if !cfg.MarkdownSummary || cfg.DBDir != "/tmp/store" {
			t.Errorf("markdown/db not applied: %+v", cfg)
		}
	})

	t.Run("zero values keep defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		(&File{}).Apply(cfg)

		if diff := cmp.Diff(NewConfig(), cfg); diff != "" {
			t.Errorf("empty file changed config (-want +got):\n%s", diff)
		}
	})

	t.Run("work dirs are copied", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		f := &File{WorkDirs: []string{"a"}}
		f.Apply(cfg)
		f.WorkDirs[0] = "changed"

		if cfg.Targets[0] != "a" {
			t.Error("config shares the file's slice")
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.metrodemo")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("parses yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".metrodemo")
		content := strings.Join([]string{
			"workDirs:",
			"  - /home/ubuntu/demo_metro_sp",
			"version: 2.0.6",
			"images: 5",
			"markdown: true",
			"summaryFile: RESUMO.md",
		}, "\n")
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := &File{
			WorkDirs:    []string{"/home/ubuntu/demo_metro_sp"},
			Version:     "2.0.6",
			Images:      5,
			Markdown:    true,
			SummaryFile: "RESUMO.md",
		}
		if diff := cmp.Diff(want, f); diff != "" {
			t.Errorf("file mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("invalid yaml returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".metrodemo")
		if err := os.WriteFile(path, []byte("images: [not, an, int"), 0600); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid yaml")
		}
	})
}

// TestFindConfigFile tests explicit path handling.
// The cwd/home search depends on the environment and is covered by the CLI tests.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("images: 4\n"), 0600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); got != "" {
			t.Errorf("expected empty result, got %q", got)
		}
	})
}
