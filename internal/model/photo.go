package model

// Photo is a construction site photograph loaded from the images directory.
type Photo struct {
	// Index is the 1-based photo number taken from the obra{N}_ file prefix.
	Index int `json:"index"`

	// Name is the file name without directory.
	Name string `json:"name"`

	// Path is the path the photo was read from.
	Path string `json:"path"`

	// Base64 is the standard base64 encoding of the file contents.
	// Excluded from JSON so photos can be logged and stored as metadata.
	Base64 string `json:"-"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// Digest is the hex SHA3-256 of the file contents.
	Digest string `json:"digest"`

	// Width and Height are the pixel dimensions, zero when the JPEG
	// header could not be decoded.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// EXIF holds the camera metadata found in the file.
	EXIF PhotoEXIF `json:"exif"`
}

// PhotoEXIF is the subset of EXIF tags reported in summaries.
type PhotoEXIF struct {
	Make             string `json:"make,omitempty"`
	Model            string `json:"model,omitempty"`
	Software         string `json:"software,omitempty"`
	DateTimeOriginal string `json:"date_time_original,omitempty"` //nolint:tagliatelle
	HasGPS           bool   `json:"has_gps"`                      //nolint:tagliatelle
}

// Camera returns "Make Model" or "" when neither is known.
func (e PhotoEXIF) Camera() string {
	switch {
	case e.Make != "" && e.Model != "":
		return e.Make + " " + e.Model
	case e.Model != "":
		return e.Model
	default:
		return e.Make
	}
}

// Base64Len returns the length of the encoded photo.
func (p *Photo) Base64Len() int {
	return len(p.Base64)
}
