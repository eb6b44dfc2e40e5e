package video

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// mockTool installs a fake executable named name into a PATH-prepended
// temp dir so exec.Command resolves it instead of the real tool.
func mockTool(t *testing.T, dir, name, script string) {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("Failed to create mock %s: %v", name, err)
	}
}

func withMockPath(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))
	return dir
}

func TestMidFrameIndex(t *testing.T) {
	tests := []struct {
		total    int
		expected int
	}{
		{300, 150},
		{301, 150},
		{2, 1},
		{1, 0}, // single-frame video returns its only frame
		{0, 0},
		{-5, 0},
	}

	for _, tt := range tests {
		if got := MidFrameIndex(tt.total); got != tt.expected {
			t.Errorf("MidFrameIndex(%d) = %d, want %d", tt.total, got, tt.expected)
		}
	}
}

func TestCountFramesFromNBFrames(t *testing.T) {
	dir := withMockPath(t)
	mockTool(t, dir, "ffprobe",
		`echo '{"streams":[{"codec_type":"video","nb_frames":"300","avg_frame_rate":"30/1","duration":"10.0"}],"format":{"duration":"10.0"}}'`)

	total, err := CountFrames("/fake/video.mp4")
	if err != nil {
		t.Fatalf("CountFrames failed: %v", err)
	}
	if total != 300 {
		t.Errorf("CountFrames = %d, want 300", total)
	}
}

func TestCountFramesEstimatesFromDuration(t *testing.T) {
	dir := withMockPath(t)
	mockTool(t, dir, "ffprobe",
		`echo '{"streams":[{"codec_type":"video","nb_frames":"N/A","avg_frame_rate":"30000/1001","duration":"10.01"}],"format":{"duration":"10.01"}}'`)

	total, err := CountFrames("/fake/video.mp4")
	if err != nil {
		t.Fatalf("CountFrames failed: %v", err)
	}
	// 10.01s at 29.97fps is 300 frames
	if total != 300 {
		t.Errorf("CountFrames = %d, want 300", total)
	}
}

func TestCountFramesAudioOnly(t *testing.T) {
	dir := withMockPath(t)
	mockTool(t, dir, "ffprobe",
		`echo '{"streams":[{"codec_type":"audio"}],"format":{"duration":"10.0"}}'`)

	_, err := CountFrames("/fake/audio.mp4")
	if !errors.Is(err, ErrUnreadableVideo) {
		t.Errorf("CountFrames error = %v, want ErrUnreadableVideo", err)
	}
}

func TestCountFramesProbeFailure(t *testing.T) {
	dir := withMockPath(t)
	mockTool(t, dir, "ffprobe", `exit 1`)

	_, err := CountFrames("/fake/video.mp4")
	if !errors.Is(err, ErrUnreadableVideo) {
		t.Errorf("CountFrames error = %v, want ErrUnreadableVideo", err)
	}
}

func TestExtractMidFrameSeeksToMiddle(t *testing.T) {
	dir := withMockPath(t)
	mockTool(t, dir, "ffprobe",
		`echo '{"streams":[{"codec_type":"video","nb_frames":"300","avg_frame_rate":"30/1","duration":"10.0"}],"format":{"duration":"10.0"}}'`)

	// The mock ffmpeg records its arguments and emits a tiny valid PNG.
	argsFile := filepath.Join(dir, "ffmpeg-args")
	pngFile := filepath.Join(dir, "frame.png")
	writeTinyPNG(t, pngFile)
	mockTool(t, dir, "ffmpeg", fmt.Sprintf(`echo "$@" > %s
cat %s`, argsFile, pngFile))

	img, err := ExtractMidFrame("/fake/video.mp4")
	if err != nil {
		t.Fatalf("ExtractMidFrame failed: %v", err)
	}
	if img == nil {
		t.Fatal("ExtractMidFrame returned nil image")
	}

	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("mock ffmpeg was not invoked: %v", err)
	}
	// 300 total frames means the selected frame index is 150.
	if want := `select=eq(n\,150)`; !strings.Contains(string(args), want) {
		t.Errorf("ffmpeg args = %q, want filter %q", string(args), want)
	}
}

func TestExtractMidFrameZeroFrames(t *testing.T) {
	dir := withMockPath(t)
	mockTool(t, dir, "ffprobe",
		`echo '{"streams":[{"codec_type":"video","nb_frames":"0","avg_frame_rate":"0/0","duration":"0"}],"format":{"duration":"0"}}'`)

	_, err := ExtractMidFrame("/fake/video.mp4")
	if !errors.Is(err, ErrUnreadableVideo) {
		t.Errorf("ExtractMidFrame error = %v, want ErrUnreadableVideo", err)
	}
}

func TestExtractMidFrameEmptyOutput(t *testing.T) {
	dir := withMockPath(t)
	mockTool(t, dir, "ffprobe",
		`echo '{"streams":[{"codec_type":"video","nb_frames":"2","avg_frame_rate":"1/1","duration":"2.0"}],"format":{"duration":"2.0"}}'`)
	mockTool(t, dir, "ffmpeg", `exit 0`)

	_, err := ExtractMidFrame("/fake/video.mp4")
	if !errors.Is(err, ErrUnreadableVideo) {
		t.Errorf("ExtractMidFrame error = %v, want ErrUnreadableVideo", err)
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"30/1", 30},
		{"30000/1001", 29.97002997002997},
		{"25", 25},
		{"0/0", 0},
		{"", 0},
		{"garbage", 0},
	}

	for _, tt := range tests {
		if got := parseFrameRate(tt.input); got != tt.expected {
			t.Errorf("parseFrameRate(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

// writeTinyPNG writes a minimal valid PNG for mock ffmpeg output.
func writeTinyPNG(t *testing.T, path string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create PNG fixture: %v", err)
	}
	defer f.Close()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode PNG fixture: %v", err)
	}
}
