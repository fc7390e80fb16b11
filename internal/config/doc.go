// Package config provides configuration structures and utilities for metrodemo.
// It defines where fixtures and photos are read from, where outputs are
// written, and how the optional .metrodemo YAML file is located and merged.
package config
