// Package pipeline derives the stored variant set for one media upload.
//
// A photo run writes a byte-identical copy of the source plus one resized
// variant per configured bounding box. A video run stores the container
// unchanged and derives JPEG thumbnails from its temporal mid frame. Every
// file written is recorded by a Tracker; if any step fails, the tracker
// removes everything it recorded (reverse creation order, best effort)
// before the error is returned, so a failed run leaves no trace on disk.
//
// The tracker is handed back on success as well: the caller is expected to
// invoke its cleanup if the subsequent database write fails, extending the
// failure domain over persistence.
package pipeline
