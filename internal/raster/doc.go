// Package raster loads uploaded images, computes bounding-box constrained
// resizes that preserve aspect ratio and never upscale, and re-encodes the
// result per target extension.
//
// JPEG and WebP encode with a configurable quality; PNG encodes lossless.
// WebP encoding goes through libvips when available and falls back to JPEG
// bytes otherwise. Unrecognized extensions encode as JPEG.
package raster
