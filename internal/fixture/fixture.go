package fixture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nao1215/metrodemo/internal/model"
)

// Fixture file names inside the data directory.
const (
	ProjectsFile     = "projects.json"
	ImageRecordsFile = "image_records.json"
	AnalysesFile     = "analyses.json"
)

var (
	// ErrNotArray is returned when a fixture is not a JSON array of objects.
	ErrNotArray = errors.New("fixture is not a JSON array of objects")

	// ErrMissingPhoto is returned when a placeholder has no loaded photo.
	ErrMissingPhoto = errors.New("no photo loaded for placeholder")

	// ErrNegativeCount is returned when the placeholder count is below zero.
	ErrNegativeCount = errors.New("placeholder count must not be negative")
)

// Set holds the parsed fixtures of one data directory.
type Set struct {
	Projects []*model.Document

	// Template is the unparsed image_records.json text.
	Template string

	Analyses []*model.Document
}

// LoadSet reads all three fixtures from dataDir.
func LoadSet(dataDir string) (*Set, error) {
	projects, err := LoadCollection(filepath.Join(dataDir, ProjectsFile))
	if err != nil {
		return nil, err
	}

	template, err := LoadTemplate(filepath.Join(dataDir, ImageRecordsFile))
	if err != nil {
		return nil, err
	}

	analyses, err := LoadCollection(filepath.Join(dataDir, AnalysesFile))
	if err != nil {
		return nil, err
	}

	return &Set{
		Projects: projects,
		Template: template,
		Analyses: analyses,
	}, nil
}

// LoadCollection reads a fixture file holding a JSON array of objects.
func LoadCollection(path string) ([]*model.Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from configured data directory
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", filepath.Base(path), err)
	}

	docs, err := ParseCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", filepath.Base(path), err)
	}
	return docs, nil
}

// ParseCollection decodes a JSON array of objects. An empty array yields
// an empty, non-nil slice.
func ParseCollection(data []byte) ([]*model.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotArray
	}

	docs := make([]*model.Document, 0)
	if err := json.Unmarshal(trimmed, &docs); err != nil {
		if errors.Is(err, model.ErrNotObject) {
			return nil, ErrNotArray
		}
		return nil, err
	}

	for i, doc := range docs {
		if doc == nil {
			return nil, fmt.Errorf("%w: element %d is null", ErrNotArray, i)
		}
	}
	return docs, nil
}

// LoadTemplate reads the image records template as text.
func LoadTemplate(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from configured data directory
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", filepath.Base(path), err)
	}
	return string(data), nil
}

// Substitute replaces <BASE64_OBRA1>..<BASE64_OBRA{count}> in template with
// the base64 data of the matching photo. Every index up to count must have
// a photo, and no placeholder of any index may remain afterwards.
func Substitute(template string, photos []*model.Photo, count int) (string, error) {
	if count < 0 {
		return "", fmt.Errorf("%w: %d", ErrNegativeCount, count)
	}

	byIndex := make(map[int]*model.Photo, len(photos))
	for _, p := range photos {
		if p != nil {
			byIndex[p.Index] = p
		}
	}

	pairs := make([]string, 0, 2*count)
	for i := 1; i <= count; i++ {
		photo, ok := byIndex[i]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrMissingPhoto, model.PlaceholderToken(i))
		}
		pairs = append(pairs, model.PlaceholderToken(i), photo.Base64)
	}

	out := strings.NewReplacer(pairs...).Replace(template)

	if token := model.FindPlaceholder(out); token != "" {
		return "", fmt.Errorf("%w: %s", model.ErrPlaceholderRemaining, token)
	}
	return out, nil
}

// AbsentTokens returns the placeholders 1..count that do not occur in the
// template. Their photos are loaded but never embedded.
func AbsentTokens(template string, count int) []string {
	absent := make([]string, 0)
	for i := 1; i <= count; i++ {
		token := model.PlaceholderToken(i)
		if !strings.Contains(template, token) {
			absent = append(absent, token)
		}
	}
	return absent
}

// Assemble combines the collections into the demo dataset. The metadata
// counts are the collection lengths.
func Assemble(projects, records, analyses []*model.Document, version string, now time.Time) *model.DemoData {
	return &model.DemoData{
		Projects:     nonNil(projects),
		ImageRecords: nonNil(records),
		Analyses:     nonNil(analyses),
		Metadata: model.Metadata{
			GeneratedAt:   model.FormatGeneratedAt(now),
			Version:       version,
			TotalProjects: len(projects),
			TotalImages:   len(records),
			TotalAnalyses: len(analyses),
		},
	}
}

// nonNil makes empty collections serialize as [] rather than null.
func nonNil(docs []*model.Document) []*model.Document {
	if docs == nil {
		return make([]*model.Document, 0)
	}
	return docs
}
