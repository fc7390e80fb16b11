package config

// File represents the structure of the .metrodemo configuration file.
// Zero values mean "not set" and leave the current configuration alone.
type File struct {
	// WorkDirs replaces the default work directory list.
	WorkDirs []string `yaml:"workDirs,omitempty"`

	ImagesDir string `yaml:"imagesDir,omitempty"`
	DataDir   string `yaml:"dataDir,omitempty"`
	BinDir    string `yaml:"binDir,omitempty"`

	// Version is the dataset version written to metadata.
	Version string `yaml:"version,omitempty"`

	// Images is the number of photos to embed.
	Images int `yaml:"images,omitempty"`

	Concurrency int `yaml:"concurrency,omitempty"`
	BatchSize   int `yaml:"batch,omitempty"`

	// Markdown enables the Markdown summary. Only true has an effect;
	// the CLI flag can still switch it off.
	Markdown    bool   `yaml:"markdown,omitempty"`
	SummaryFile string `yaml:"summaryFile,omitempty"`

	// DBDir overrides the XDG data directory for the store.
	DBDir string `yaml:"dbDir,omitempty"`
}

// Apply copies every set value of the file onto cfg.
func (f *File) Apply(cfg *Config) {
	if len(f.WorkDirs) > 0 {
		cfg.Targets = append([]string(nil), f.WorkDirs...)
	}
	if f.ImagesDir != "" {
		cfg.ImagesDir = f.ImagesDir
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	if f.BinDir != "" {
		cfg.BinDir = f.BinDir
	}
	if f.Version != "" {
		cfg.Version = f.Version
	}
	if f.Images != 0 {
		cfg.ImageCount = f.Images
	}
	if f.Concurrency != 0 {
		cfg.Concurrency = f.Concurrency
	}
	if f.BatchSize != 0 {
		cfg.BatchSize = f.BatchSize
	}
	if f.Markdown {
		cfg.MarkdownSummary = true
	}
	if f.SummaryFile != "" {
		cfg.SummaryFile = f.SummaryFile
	}
	if f.DBDir != "" {
		cfg.DBDir = f.DBDir
	}
}
