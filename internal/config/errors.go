package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers match them with errors.Is.
var (
	// ErrNoTarget is returned when no work directory is given.
	ErrNoTarget = errors.New("no work directory specified")

	// ErrEmptyDirectory is returned when the images, data or bin directory is empty.
	ErrEmptyDirectory = errors.New("images, data and bin directories must not be empty")

	// ErrEmptyVersion is returned when the dataset version is empty.
	ErrEmptyVersion = errors.New("dataset version must not be empty")

	// ErrInvalidImageCount is returned when the photo count is not positive.
	ErrInvalidImageCount = errors.New("invalid image count: must be positive")

	// ErrInvalidConcurrency is returned when photo concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrEmptySummaryFile is returned when a Markdown summary is requested without a file name.
	ErrEmptySummaryFile = errors.New("summary file must not be empty when --markdown is set")

	// ErrEmptyDBDir is returned when saving to the store without a directory.
	ErrEmptyDBDir = errors.New("database directory must not be empty")
)
