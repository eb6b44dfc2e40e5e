package database

import (
	"time"

	"product-media/internal/mediatypes"
)

// Media is one stored upload for a product. Filename is the primary file
// (medium variant for photos, the container for videos); the per-variant
// filenames are populated for photos and video thumbnails.
type Media struct {
	ID               int64           `json:"id"`
	ProductID        int64           `json:"productId"`
	Type             mediatypes.Kind `json:"type"`
	Filename         string          `json:"filename"`
	OriginalFilename string          `json:"originalFilename,omitempty"`
	FileSize         int64           `json:"fileSize,omitempty"`
	MimeType         string          `json:"mimeType,omitempty"`
	AltText          string          `json:"altText,omitempty"`
	SortOrder        int             `json:"sortOrder"`
	IsMain           bool            `json:"isMain"`
	FilenameThumb    string          `json:"filenameThumb,omitempty"`
	FilenameMedium   string          `json:"filenameMedium,omitempty"`
	FilenameLarge    string          `json:"filenameLarge,omitempty"`
	FilenameOriginal string          `json:"filenameOriginal,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// StoredFilenames returns every distinct file on disk belonging to this
// row, primary file included. Used when deleting a media record.
func (m *Media) StoredFilenames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, name := range []string{
		m.Filename,
		m.FilenameThumb,
		m.FilenameMedium,
		m.FilenameLarge,
		m.FilenameOriginal,
	} {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// MediaPatch lists the mutable fields of a media row. Nil fields are left
// unchanged; updates are applied explicitly rather than via reflection.
type MediaPatch struct {
	AltText *string
	IsMain  *bool
}

// User represents the single admin account in the system.
type User struct {
	ID           int64     `json:"id"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Session represents an authenticated admin session.
type Session struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionDuration is the length of time a session remains valid.
const SessionDuration = 7 * 24 * time.Hour // 7 days
