package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidUpload indicates the declared upload filename is unusable,
// typically because it carries no extension.
var ErrInvalidUpload = errors.New("invalid upload filename")

// NewBaseID returns a fresh 128-bit random identifier rendered as 32 hex
// characters. Uniqueness is probabilistic; there is no persistent state
// and no coordination between concurrent uploads.
func NewBaseID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")
}

// ExtensionOf extracts the lowercased file extension (including the
// leading dot) from the declared original filename.
func ExtensionOf(originalName string) (string, error) {
	if originalName == "" {
		return "", fmt.Errorf("%w: empty filename", ErrInvalidUpload)
	}

	ext := filepath.Ext(originalName)
	// A name like ".gitignore" or "photo." has no usable extension.
	if ext == "" || ext == "." || ext == originalName {
		return "", fmt.Errorf("%w: %q has no extension", ErrInvalidUpload, originalName)
	}

	return strings.ToLower(ext), nil
}

// VariantFilename formats the stored filename for one sized variant of a
// photo: {baseID}_{variant}{ext}.
func VariantFilename(baseID, variant, ext string) string {
	return fmt.Sprintf("%s_%s%s", baseID, variant, ext)
}

// VideoFilename formats the stored filename for the re-saved video
// container: {baseID}{ext}.
func VideoFilename(baseID, ext string) string {
	return baseID + ext
}

// VideoThumbFilename formats the stored filename for one thumbnail
// derived from a video frame. Derived rasters are always JPEG regardless
// of the source container.
func VideoThumbFilename(baseID, size string) string {
	return fmt.Sprintf("%s_thumbnail_%s.jpg", baseID, size)
}
