package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultWorkDir is the directory holding images/, data/ and bin/.
	// The demo project is normally generated from its own checkout, so the
	// current directory is the natural default.
	DefaultWorkDir = "."

	// DefaultImagesDir is the photo directory relative to the work directory.
	DefaultImagesDir = "images"

	// DefaultDataDir is the fixture directory relative to the work directory.
	DefaultDataDir = "data"

	// DefaultBinDir is the output directory relative to the work directory.
	DefaultBinDir = "bin"

	// DefaultVersion is the dataset version written into the metadata.
	// The demo app checks this value to decide whether to reload its cache.
	DefaultVersion = "2.0.5"

	// DefaultImageCount is the number of obra{N}_*.jpg photos embedded.
	DefaultImageCount = 4

	// DefaultConcurrency is the number of photos read in parallel.
	DefaultConcurrency = 4

	// DefaultBatchSize is the number of work directories built in parallel.
	DefaultBatchSize = 2

	// DefaultSummaryFile is the Markdown summary file name inside bin/.
	DefaultSummaryFile = "SUMMARY.md"

	// AppName is the application name used for XDG directory paths.
	AppName = "metrodemo"
)

// Config holds all configuration options for metrodemo.
// It is populated from defaults, then the .metrodemo file, then CLI flags,
// and passed down explicitly rather than kept in global state.
type Config struct {
	// Targets are the work directories to build. Each must contain the
	// images and data directories.
	Targets []string

	// ImagesDir, DataDir and BinDir are relative to each work directory
	// unless absolute.
	ImagesDir string
	DataDir   string
	BinDir    string

	// Version is written to metadata.version.
	Version string

	// ImageCount is the number of photos and placeholders.
	ImageCount int

	// Concurrency is the number of photos loaded in parallel.
	Concurrency int

	// BatchSize is the number of work directories built in parallel.
	BatchSize int

	// MarkdownSummary enables writing a Markdown summary next to the outputs.
	MarkdownSummary bool

	// SummaryFile is the Markdown summary file name, relative to BinDir
	// unless absolute.
	SummaryFile string

	// ConfigFilePath is the explicit configuration file path, if any.
	ConfigFilePath string

	// DBDir is the directory holding the SQLite store.
	// Defaults to the XDG data directory (~/.local/share/metrodemo on Linux).
	DBDir string

	// SaveToDB records each build in the store.
	SaveToDB bool

	// Verbose enables debug logging.
	Verbose bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Targets:     []string{DefaultWorkDir},
		ImagesDir:   DefaultImagesDir,
		DataDir:     DefaultDataDir,
		BinDir:      DefaultBinDir,
		Version:     DefaultVersion,
		ImageCount:  DefaultImageCount,
		Concurrency: DefaultConcurrency,
		BatchSize:   DefaultBatchSize,
		SummaryFile: DefaultSummaryFile,
		DBDir:       XDGDataDir(),
		SaveToDB:    true,
	}
}

// XDGDataDir returns the XDG data directory for metrodemo.
// On Linux: ~/.local/share/metrodemo
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for metrodemo.
// On Linux: ~/.config/metrodemo
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Resolve joins dir onto workDir unless dir is absolute.
func Resolve(workDir, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(workDir, dir)
}

// ImagesPath returns the images directory of a work directory.
func (c *Config) ImagesPath(workDir string) string {
	return Resolve(workDir, c.ImagesDir)
}

// DataPath returns the data directory of a work directory.
func (c *Config) DataPath(workDir string) string {
	return Resolve(workDir, c.DataDir)
}

// BinPath returns the output directory of a work directory.
func (c *Config) BinPath(workDir string) string {
	return Resolve(workDir, c.BinDir)
}

// SummaryPath returns the Markdown summary path of a work directory.
func (c *Config) SummaryPath(workDir string) string {
	return Resolve(c.BinPath(workDir), c.SummaryFile)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	for _, t := range c.Targets {
		if t == "" {
			return ErrNoTarget
		}
	}

	if c.ImagesDir == "" || c.DataDir == "" || c.BinDir == "" {
		return ErrEmptyDirectory
	}

	if c.Version == "" {
		return ErrEmptyVersion
	}

	if c.ImageCount <= 0 {
		return ErrInvalidImageCount
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.MarkdownSummary && c.SummaryFile == "" {
		return ErrEmptySummaryFile
	}

	if c.SaveToDB && c.DBDir == "" {
		return ErrEmptyDBDir
	}

	return nil
}
