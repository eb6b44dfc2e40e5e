package mediatypes

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the declared classification of an upload.
type Kind string

const (
	// KindPhoto is a raster image upload.
	KindPhoto Kind = "photo"
	// KindVideo is a video container upload.
	KindVideo Kind = "video"
)

// ErrDisallowedType indicates the declared content type is not accepted.
var ErrDisallowedType = errors.New("disallowed content type")

// MaxUploadSize is the largest accepted upload in bytes.
const MaxUploadSize = 100 * 1024 * 1024 // 100MB

// AllowedImageTypes maps accepted image content types.
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// AllowedVideoTypes maps accepted video content types.
var AllowedVideoTypes = map[string]bool{
	"video/mp4":  true,
	"video/avi":  true,
	"video/mov":  true,
	"video/wmv":  true,
	"video/webm": true,
}

// KindFromString parses a kind name as used in API filters.
func KindFromString(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(KindPhoto):
		return KindPhoto, nil
	case string(KindVideo):
		return KindVideo, nil
	default:
		return "", fmt.Errorf("unknown media kind %q", s)
	}
}

// Classify maps a declared content type to an upload kind. Content type
// parameters (e.g. "; charset=...") are ignored.
func Classify(contentType string) (Kind, error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = strings.TrimSpace(ct[:idx])
	}

	switch {
	case AllowedImageTypes[ct]:
		return KindPhoto, nil
	case AllowedVideoTypes[ct]:
		return KindVideo, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrDisallowedType, contentType)
	}
}
