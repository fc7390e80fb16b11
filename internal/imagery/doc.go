// Package imagery loads the construction site photographs that are
// embedded into the demo data.
//
// Photos live in the images directory and are named obra{N}_<anything>.jpg,
// where N is the 1-based photo number referenced by the <BASE64_OBRA{N}>
// placeholders in the image records template. Each photo is read once,
// base64 encoded, digested with SHA3-256 and inspected for EXIF metadata.
// EXIF is only reported, never stripped: the demo photographs are shipped
// byte for byte.
package imagery
