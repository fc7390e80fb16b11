package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/metrodemo/internal/model"
)

// DBFileName is the database file created inside the database directory.
const DBFileName = "metrodemo.db"

// ErrDatabaseNotFound is returned when opening a missing database without
// CreateIfNotExists.
var ErrDatabaseNotFound = errors.New("database not found")

// Store provides SQLite-based storage for imported demo collections and
// the history of generated bundles.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	logger *slog.Logger
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool

	// Logger receives import progress. slog.Default() when nil.
	Logger *slog.Logger
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a Store in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist,
// ErrDatabaseNotFound is returned.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		db:     db,
		dbPath: dbPath,
		logger: logger,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Imported documents, one row per (collection, document id)
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		collection TEXT NOT NULL,
		doc_id TEXT NOT NULL,
		data TEXT NOT NULL,
		imported_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(collection, doc_id)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);

	-- Generated bundles
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		work_dir TEXT NOT NULL,
		version TEXT,
		generated_at TEXT,
		total_projects INTEGER,
		total_images INTEGER,
		total_analyses INTEGER,
		size_bytes INTEGER,
		photo_digests TEXT,
		verified INTEGER,
		error TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_builds_work_dir ON builds(work_dir);
	CREATE INDEX IF NOT EXISTS idx_builds_timestamp ON builds(timestamp);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// isoMillisPattern matches the ISO timestamps the demo app writes,
// e.g. "2024-03-01T12:00:00.000Z".
var isoMillisPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`)

// Timestamp is a point in time as stored for imported documents.
type Timestamp struct {
	Seconds int64 `json:"seconds"`
	Nanos   int32 `json:"nanos"`
}

// ConvertTimestamps returns a copy of doc in which every top-level string
// holding an ISO timestamp with milliseconds and a Z suffix is replaced by
// a Timestamp object. Nested values are left alone.
func ConvertTimestamps(doc *model.Document) (*model.Document, error) {
	out := doc.Clone()
	for _, key := range doc.Keys() {
		s, ok := doc.GetString(key)
		if !ok || !isoMillisPattern.MatchString(s) {
			continue
		}

		t, err := time.Parse("2006-01-02T15:04:05.000Z", s)
		if err != nil {
			// matches the pattern but is not a real date, e.g. month 13
			continue
		}

		ts := Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())} //nolint:gosec // nanoseconds fit in int32
		if err := out.Set(key, ts); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// documentID returns the id member of a document. String ids are used as
// is, other JSON values by their text. Documents without an id get a
// random UUID.
func documentID(doc *model.Document) string {
	if id, ok := doc.GetString("id"); ok && id != "" {
		return id
	}
	if raw, ok := doc.Get("id"); ok && string(raw) != "null" && string(raw) != `""` {
		return string(raw)
	}
	return uuid.NewString()
}

// ImportCollection stores docs in one transaction. Documents are upserted
// by (collection, id), so importing the same data twice updates rows
// instead of duplicating them. Returns the number of documents written.
func (s *Store) ImportCollection(ctx context.Context, collection string, docs []*model.Document) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO documents (collection, doc_id, data)
	VALUES (?, ?, ?)
	ON CONFLICT(collection, doc_id) DO UPDATE SET
		data = excluded.data,
		imported_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, doc := range docs {
		if doc == nil {
			return 0, fmt.Errorf("%s[%d]: document is null", collection, i)
		}

		converted, err := ConvertTimestamps(doc)
		if err != nil {
			return 0, fmt.Errorf("%s[%d]: %w", collection, i, err)
		}

		data, err := json.Marshal(converted)
		if err != nil {
			return 0, fmt.Errorf("%s[%d]: failed to serialize: %w", collection, i, err)
		}

		if _, err := stmt.ExecContext(ctx, collection, documentID(doc), string(data)); err != nil {
			return 0, fmt.Errorf("%s[%d]: failed to insert: %w", collection, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit %s: %w", collection, err)
	}
	return len(docs), nil
}

// ImportResult is the outcome of importing one collection.
type ImportResult struct {
	Collection string
	Imported   int
	Err        error
}

// ImportDemoData imports projects, image_records and analyses. A failing
// collection is logged and does not stop the others; all failures are
// returned joined.
func (s *Store) ImportDemoData(ctx context.Context, data *model.DemoData) ([]ImportResult, error) {
	results := make([]ImportResult, 0, len(model.Collections()))
	var errs []error

	for _, name := range model.Collections() {
		docs, _ := data.Collection(name)

		s.logger.Info("importing collection", "collection", name, "documents", len(docs))
		n, err := s.ImportCollection(ctx, name, docs)
		if err != nil {
			s.logger.Error("collection import failed", "collection", name, "error", err)
			errs = append(errs, err)
		}
		results = append(results, ImportResult{Collection: name, Imported: n, Err: err})
	}

	return results, errors.Join(errs...)
}

// GetDocument retrieves one imported document.
// Returns nil without error when it does not exist.
func (s *Store) GetDocument(ctx context.Context, collection, id string) (*model.Document, error) {
	query := `
	SELECT data FROM documents
	WHERE collection = ? AND doc_id = ?
	`

	var data string
	err := s.db.QueryRowContext(ctx, query, collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // absence is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc := model.NewDocument()
	if err := json.Unmarshal([]byte(data), doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return doc, nil
}

// CountDocuments returns the number of documents in a collection.
func (s *Store) CountDocuments(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = ?`, collection,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

// ListCollections returns the names of collections holding documents.
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT DISTINCT collection FROM documents
	ORDER BY collection
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var collections []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		collections = append(collections, name)
	}

	return collections, rows.Err()
}

// BuildRecord is one generated bundle in the build history.
type BuildRecord struct {
	// ID is the unique identifier of the build in the database.
	ID int64

	WorkDir       string
	Version       string
	GeneratedAt   string
	TotalProjects int
	TotalImages   int
	TotalAnalyses int

	// SizeBytes is the combined size of the written outputs.
	SizeBytes int64

	// PhotoDigests are the SHA3-256 digests of the embedded photos.
	PhotoDigests []string

	Verified bool
	Error    string

	// Timestamp is when the build was recorded.
	Timestamp time.Time
}

// SaveBuild records a finished build, successful or not.
func (s *Store) SaveBuild(ctx context.Context, build *model.Build) error {
	digests := make([]string, 0, len(build.Photos))
	for _, p := range build.Photos {
		if p != nil {
			digests = append(digests, p.Digest)
		}
	}
	digestsJSON, _ := json.Marshal(digests) //nolint:errcheck,errchkjson // a string slice always marshals

	var meta model.Metadata
	if build.Data != nil {
		meta = build.Data.Metadata
	}

	errText := build.ErrorMessage
	if errText == "" && build.Error != nil {
		errText = build.Error.Error()
	}

	query := `
	INSERT INTO builds (work_dir, version, generated_at, total_projects, total_images,
		total_analyses, size_bytes, photo_digests, verified, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		build.WorkDir,
		meta.Version,
		meta.GeneratedAt,
		meta.TotalProjects,
		meta.TotalImages,
		meta.TotalAnalyses,
		build.TotalOutputSize(),
		string(digestsJSON),
		build.Verified,
		errText,
	)
	if err != nil {
		return fmt.Errorf("failed to save build: %w", err)
	}

	return nil
}

// GetBuildHistory returns recorded builds, newest first. An empty workDir
// returns the builds of every work directory.
func (s *Store) GetBuildHistory(ctx context.Context, workDir string) ([]BuildRecord, error) {
	query := `
	SELECT id, work_dir, version, generated_at, total_projects, total_images,
		total_analyses, size_bytes, photo_digests, verified, error, timestamp
	FROM builds
	WHERE ? = '' OR work_dir = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, workDir, workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get build history: %w", err)
	}
	defer rows.Close()

	var records []BuildRecord
	for rows.Next() {
		var (
			rec       BuildRecord
			version   sql.NullString
			generated sql.NullString
			digests   sql.NullString
			errText   sql.NullString
			timestamp string
		)

		if err := rows.Scan(&rec.ID, &rec.WorkDir, &version, &generated,
			&rec.TotalProjects, &rec.TotalImages, &rec.TotalAnalyses, &rec.SizeBytes,
			&digests, &rec.Verified, &errText, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}

		rec.Version = version.String
		rec.GeneratedAt = generated.String
		rec.Error = errText.String
		rec.Timestamp = parseTimestamp(timestamp)

		if digests.Valid && digests.String != "" {
			if err := json.Unmarshal([]byte(digests.String), &rec.PhotoDigests); err != nil {
				rec.PhotoDigests = nil
			}
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
