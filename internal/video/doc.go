// Package video extracts a single representative frame from an uploaded
// video container using ffprobe and ffmpeg.
//
// The frame at the temporal midpoint (totalFrames / 2, integer division)
// is decoded, piped out of ffmpeg as RGB PNG, and returned as an in-memory
// image ready for the raster resize path. The video itself is never
// re-encoded.
package video
