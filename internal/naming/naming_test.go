package naming

import (
	"errors"
	"regexp"
	"testing"
)

func TestNewBaseID(t *testing.T) {
	hexPattern := regexp.MustCompile(`^[0-9a-f]{32}$`)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewBaseID()
		if !hexPattern.MatchString(id) {
			t.Fatalf("NewBaseID() = %q, want 32 lowercase hex characters", id)
		}
		if seen[id] {
			t.Fatalf("NewBaseID() produced duplicate %q", id)
		}
		seen[id] = true
	}
}

func TestExtensionOf(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{"Simple JPEG", "photo.jpg", ".jpg", false},
		{"Uppercase extension lowered", "PHOTO.JPG", ".jpg", false},
		{"Mixed case", "Sofa-Catalog.PnG", ".png", false},
		{"Multiple dots", "archive.tar.mp4", ".mp4", false},
		{"Path components ignored", "dir/sub/clip.webm", ".webm", false},
		{"Empty name", "", "", true},
		{"No extension", "photo", "", true},
		{"Trailing dot only", "photo.", "", true},
		{"Dotfile", ".gitignore", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtensionOf(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ExtensionOf(%q) = %q, want error", tt.input, got)
				}
				if !errors.Is(err, ErrInvalidUpload) {
					t.Errorf("ExtensionOf(%q) error = %v, want ErrInvalidUpload", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtensionOf(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ExtensionOf(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestVariantFilenameDeterministic(t *testing.T) {
	a := VariantFilename("abc123", "thumb", ".jpg")
	b := VariantFilename("abc123", "thumb", ".jpg")
	if a != b {
		t.Errorf("VariantFilename not deterministic: %q != %q", a, b)
	}
	if a != "abc123_thumb.jpg" {
		t.Errorf("VariantFilename = %q, want %q", a, "abc123_thumb.jpg")
	}
}

func TestVariantFilenameInjective(t *testing.T) {
	// Distinct (baseID, variant) pairs must never collide.
	base := "0123456789abcdef0123456789abcdef"
	variants := []string{"thumb", "medium", "large", "original"}

	seen := make(map[string]string)
	for _, v := range variants {
		name := VariantFilename(base, v, ".png")
		if prev, ok := seen[name]; ok {
			t.Fatalf("variant %q collides with %q on filename %q", v, prev, name)
		}
		seen[name] = v
	}

	other := VariantFilename("fedcba9876543210fedcba9876543210", "thumb", ".png")
	if _, ok := seen[other]; ok {
		t.Fatalf("different baseID produced colliding filename %q", other)
	}
}

func TestVideoFilenames(t *testing.T) {
	if got := VideoFilename("abc", ".mp4"); got != "abc.mp4" {
		t.Errorf("VideoFilename = %q, want %q", got, "abc.mp4")
	}

	// Video thumbnails are always JPEG, whatever the container was.
	if got := VideoThumbFilename("abc", "medium"); got != "abc_thumbnail_medium.jpg" {
		t.Errorf("VideoThumbFilename = %q, want %q", got, "abc_thumbnail_medium.jpg")
	}
}
