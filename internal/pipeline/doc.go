// Package pipeline runs the generation of one demo bundle as a sequence
// of steps: load photos, load fixtures, substitute placeholders, assemble,
// write outputs and verify them.
//
// Each step receives the shared model.Build and adds its results to it.
// BatchProcessor runs one pipeline per work directory with a concurrency
// limit, so several demo bundles can be regenerated in one invocation.
package pipeline
