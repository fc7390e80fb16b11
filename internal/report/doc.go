// Package report writes the generated demo data and summarizes builds.
//
// OutputSet writes the JSON files the demo app consumes and Verify checks
// them after writing. The summary writers render a finished build:
//   - SimpleWriter: human-readable text output for terminal display
//   - JSONWriter: structured JSON output for scripts
//   - MarkdownWriter: SUMMARY.md with tables and a mermaid chart
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed with MultiWriter.
package report
