// Package main provides the entry point for the metrodemo CLI.
//
// metrodemo builds the offline dataset of the subway inspection demo app:
// it embeds the construction site photographs into the image record
// fixtures and writes the JSON bundle the app loads.
//
// Usage:
//
//	metrodemo generate [workdir...]
//	metrodemo import [file]
//
// See --help for all available options.
package main

// main is the entry point for metrodemo.
func main() {
	Execute()
}
