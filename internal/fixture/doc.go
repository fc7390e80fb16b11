// Package fixture reads the static JSON fixtures and turns them into the
// combined demo dataset.
//
// Three fixtures live in the data directory:
//   - projects.json: construction sites along the subway lines
//   - image_records.json: photo metadata, with <BASE64_OBRA{N}> placeholders
//     where the photograph data belongs
//   - analyses.json: inspection results per photo
//
// image_records.json is read as text because placeholders are substituted
// before the file is parsed. The substituted text must still be valid JSON,
// which holds because base64 uses no characters that need escaping in a
// JSON string.
package fixture
