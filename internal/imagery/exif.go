package imagery

import (
	"bytes"
	"image"
	_ "image/jpeg" // JPEG header decoding for dimensions
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/nao1215/metrodemo/internal/model"
)

// ReadEXIF extracts the reported EXIF tags from image bytes.
// Images without EXIF, or with EXIF that fails to parse, yield a zero value.
func ReadEXIF(data []byte) model.PhotoEXIF {
	var info model.PhotoEXIF

	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return info
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return info
	}

	for _, entry := range entries {
		value := strings.TrimSpace(entry.Formatted)

		switch entry.TagName {
		case "Make":
			info.Make = value
		case "Model":
			info.Model = value
		case "Software":
			info.Software = value
		case "DateTimeOriginal":
			info.DateTimeOriginal = value
		case "DateTime":
			// DateTimeOriginal wins when both are present
			if info.DateTimeOriginal == "" {
				info.DateTimeOriginal = value
			}
		case "GPSLatitude", "GPSLongitude":
			info.HasGPS = true
		}
	}

	return info
}

// Dimensions returns the pixel size from the image header.
func Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
