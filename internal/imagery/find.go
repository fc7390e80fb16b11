package imagery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPhotoNotFound is returned when no file matches obra{N}_*.jpg.
var ErrPhotoNotFound = errors.New("photo not found")

// ErrNegativeCount is returned by Load when asked for fewer than zero photos.
var ErrNegativeCount = errors.New("photo count must not be negative")

// photoExt is the only extension considered. Matching is case-sensitive,
// the fixtures have always used lowercase ".jpg".
const photoExt = ".jpg"

// Find returns the path of the first obra{index}_*.jpg file in dir.
// Directory entries are visited in file name order, so the result is
// stable when several files share a prefix.
func Find(dir string, index int) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read images directory: %w", err)
	}

	prefix := fmt.Sprintf("obra%d_", index)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, photoExt) {
			return filepath.Join(dir, name), nil
		}
	}

	return "", fmt.Errorf("%w: %s*%s in %s", ErrPhotoNotFound, prefix, photoExt, dir)
}
