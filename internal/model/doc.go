// Package model defines the data structures shared by the metrodemo packages.
//
// The main types are:
//   - Document: a fixture JSON object that keeps its member order
//   - Photo: a loaded photograph with its base64 payload and EXIF summary
//   - DemoData: the merged bundle written to demo_data_complete.json
//   - Build: the state of one work directory as it moves through the pipeline
//
// The models live in their own package so that fixture, imagery, pipeline,
// report and database can share them without import cycles.
package model
