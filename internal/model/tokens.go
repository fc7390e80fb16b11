package model

import (
	"errors"
	"fmt"
	"regexp"
)

// Keys of an image record that carry photograph data.
const (
	KeyImageBase64  = "imageBase64"
	KeyImageURL     = "imageUrl"
	KeyThumbnailURL = "thumbnailUrl"
)

// DataURLPrefix prefixes inline JPEG data URLs.
const DataURLPrefix = "data:image/jpeg;base64,"

// ErrPlaceholderRemaining is returned when a placeholder token is still
// present after substitution.
var ErrPlaceholderRemaining = errors.New("placeholder token left unreplaced")

// placeholderPattern matches any photo placeholder, including indexes
// beyond the configured photo count.
var placeholderPattern = regexp.MustCompile(`<BASE64_OBRA\d+>`)

// PlaceholderToken returns the template token replaced by photo index (1-based).
func PlaceholderToken(index int) string {
	return fmt.Sprintf("<BASE64_OBRA%d>", index)
}

// ReferenceToken returns the stand-in written instead of base64 data in
// the reference image records file.
func ReferenceToken(index int) string {
	return fmt.Sprintf("[BASE64_DATA_%d]", index)
}

// FindPlaceholder returns the first placeholder token in s, or "".
func FindPlaceholder(s string) string {
	return placeholderPattern.FindString(s)
}

// FindPlaceholderBytes is FindPlaceholder for byte slices.
func FindPlaceholderBytes(b []byte) string {
	return string(placeholderPattern.Find(b))
}

// ReferenceRecords returns copies of the image records with their photo
// data replaced by reference tokens. Record i (1-based) gets
// ReferenceToken(i) in imageBase64 and a data URL around it in imageUrl
// and thumbnailUrl. The input records are not modified.
func ReferenceRecords(records []*Document) []*Document {
	refs := make([]*Document, 0, len(records))
	for i, record := range records {
		token := ReferenceToken(i + 1)
		ref := record.Clone()
		ref.SetString(KeyImageBase64, token)
		ref.SetString(KeyImageURL, DataURLPrefix+token)
		ref.SetString(KeyThumbnailURL, DataURLPrefix+token)
		refs = append(refs, ref)
	}
	return refs
}
