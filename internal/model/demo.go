package model

import "time"

// Collection names as they appear in demo_data_complete.json and in the
// import store.
const (
	CollectionProjects     = "projects"
	CollectionImageRecords = "image_records"
	CollectionAnalyses     = "analyses"
)

// Collections lists the collection names in output order.
func Collections() []string {
	return []string{CollectionProjects, CollectionImageRecords, CollectionAnalyses}
}

// DemoData is the combined dataset written to demo_data_complete.json.
type DemoData struct {
	// Projects are the inspected construction sites.
	Projects []*Document `json:"projects"`

	// ImageRecords carry the photographs inline as base64.
	ImageRecords []*Document `json:"image_records"` //nolint:tagliatelle // consumed by the demo app

	// Analyses are the inspection results per image.
	Analyses []*Document `json:"analyses"`

	// Metadata describes the generation run.
	Metadata Metadata `json:"metadata"`
}

// Metadata is the generation summary embedded in DemoData.
type Metadata struct {
	GeneratedAt   string `json:"generated_at"`   //nolint:tagliatelle // consumed by the demo app
	Version       string `json:"version"`        //nolint:tagliatelle
	TotalProjects int    `json:"total_projects"` //nolint:tagliatelle
	TotalImages   int    `json:"total_images"`   //nolint:tagliatelle
	TotalAnalyses int    `json:"total_analyses"` //nolint:tagliatelle
}

// Collection returns the documents of a named collection.
func (d *DemoData) Collection(name string) ([]*Document, bool) {
	switch name {
	case CollectionProjects:
		return d.Projects, true
	case CollectionImageRecords:
		return d.ImageRecords, true
	case CollectionAnalyses:
		return d.Analyses, true
	default:
		return nil, false
	}
}

// FormatGeneratedAt renders t as a local ISO-8601 timestamp without zone.
// Microseconds are included only when non-zero, which is what the demo
// app's date parser has always been fed.
func FormatGeneratedAt(t time.Time) string {
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format("2006-01-02T15:04:05")
	}
	return t.Format("2006-01-02T15:04:05.000000")
}
