package imagery

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/crypto/sha3"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/metrodemo/internal/model"
)

// DefaultConcurrency is the number of photos read at the same time.
const DefaultConcurrency = 4

// Loader reads numbered photos from an images directory.
type Loader struct {
	// concurrency limits parallel file reads.
	concurrency int

	// logger for structured logging.
	logger *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithConcurrency sets the number of photos loaded in parallel.
// Values below 1 are ignored.
func WithConcurrency(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads photos 1..count from dir. The result is ordered by index.
// The first missing or unreadable photo aborts the load.
func (l *Loader) Load(ctx context.Context, dir string, count int) ([]*model.Photo, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeCount, count)
	}
	photos := make([]*model.Photo, count)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for i := range count {
		index := i + 1
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			path, err := Find(dir, index)
			if err != nil {
				return err
			}

			photo, err := LoadPhoto(path, index)
			if err != nil {
				return err
			}

			l.logger.Info("photo loaded",
				"index", index,
				"file", photo.Name,
				"base64_len", photo.Base64Len(),
				"digest", photo.Digest,
			)

			photos[i] = photo
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return photos, nil
}

// LoadPhoto reads a single photo file.
func LoadPhoto(path string, index int) (*model.Photo, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the configured images directory
	if err != nil {
		return nil, fmt.Errorf("failed to read photo %d: %w", index, err)
	}

	digest := sha3.Sum256(data)
	photo := &model.Photo{
		Index:  index,
		Name:   filepath.Base(path),
		Path:   path,
		Base64: base64.StdEncoding.EncodeToString(data),
		Size:   int64(len(data)),
		Digest: hex.EncodeToString(digest[:]),
		EXIF:   ReadEXIF(data),
	}

	// Dimensions are informational; a photo with a damaged header is still
	// embedded as-is.
	if w, h, err := Dimensions(data); err == nil {
		photo.Width, photo.Height = w, h
	}

	return photo, nil
}
