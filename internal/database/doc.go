// Package database provides SQLite-based storage for metrodemo.
//
// The Store holds:
//   - imported demo documents, keyed by collection and document id
//   - the history of generated bundles
//
// It replaces the hosted document database the demo app reads in
// production, so a generated bundle can be imported and inspected offline.
// SQLite is used via modernc.org/sqlite, which needs no CGO.
package database
