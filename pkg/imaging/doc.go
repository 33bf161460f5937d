// Package imaging implements the raster operations behind the upload
// pipeline: probing image dimensions, lossy re-encoding with bounded
// dimensions, and thumbnail generation at the standard preview sizes.
//
// All output is JPEG. Decoding supports JPEG, PNG, GIF, BMP and WebP,
// matching the formats accepted by upload validation. Scaling uses
// Catmull-Rom interpolation and never upscales.
package imaging
