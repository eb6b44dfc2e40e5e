package mediatypes

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		expected    Kind
		wantErr     bool
	}{
		{"JPEG", "image/jpeg", KindPhoto, false},
		{"PNG", "image/png", KindPhoto, false},
		{"WebP", "image/webp", KindPhoto, false},
		{"GIF", "image/gif", KindPhoto, false},
		{"MP4", "video/mp4", KindVideo, false},
		{"WebM", "video/webm", KindVideo, false},
		{"Uppercase", "IMAGE/JPEG", KindPhoto, false},
		{"With parameters", "image/png; charset=binary", KindPhoto, false},
		{"Surrounding whitespace", "  video/mp4  ", KindVideo, false},
		{"PDF rejected", "application/pdf", "", true},
		{"SVG rejected", "image/svg+xml", "", true},
		{"Empty rejected", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := Classify(tt.contentType)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Classify(%q) = %q, want error", tt.contentType, kind)
				}
				if !errors.Is(err, ErrDisallowedType) {
					t.Errorf("Classify(%q) error = %v, want ErrDisallowedType", tt.contentType, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify(%q) unexpected error: %v", tt.contentType, err)
			}
			if kind != tt.expected {
				t.Errorf("Classify(%q) = %q, want %q", tt.contentType, kind, tt.expected)
			}
		})
	}
}

func TestKindFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
		wantErr  bool
	}{
		{"photo", KindPhoto, false},
		{"video", KindVideo, false},
		{"PHOTO", KindPhoto, false},
		{" video ", KindVideo, false},
		{"audio", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		kind, err := KindFromString(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("KindFromString(%q) = %q, want error", tt.input, kind)
			}
			continue
		}
		if err != nil {
			t.Errorf("KindFromString(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if kind != tt.expected {
			t.Errorf("KindFromString(%q) = %q, want %q", tt.input, kind, tt.expected)
		}
	}
}
