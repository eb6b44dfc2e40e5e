package video

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"product-media/internal/logging"

	_ "image/png" // ffmpeg frames are piped out as PNG
)

// ErrUnreadableVideo indicates the container could not be opened, probed,
// or decoded, or that it reports no decodable frames.
var ErrUnreadableVideo = errors.New("unreadable video")

// probeInfo is the subset of ffprobe -show_streams/-show_format output we
// care about. ffprobe reports numeric fields as JSON strings.
type probeInfo struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		NBFrames     string `json:"nb_frames"`
		AvgFrameRate string `json:"avg_frame_rate"`
		Duration     string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// CountFrames probes videoPath and returns the total frame count of its
// first video stream. Containers that do not carry nb_frames fall back to
// a duration x frame-rate estimate.
func CountFrames(videoPath string) (int, error) {
	cmd := exec.Command("ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		videoPath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("%w: ffprobe failed: %v - %s", ErrUnreadableVideo, err, stderr.String())
	}

	var info probeInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return 0, fmt.Errorf("%w: ffprobe output unparseable: %v", ErrUnreadableVideo, err)
	}

	for _, stream := range info.Streams {
		if stream.CodecType != "video" {
			continue
		}

		if n, err := strconv.Atoi(stream.NBFrames); err == nil && n > 0 {
			return n, nil
		}

		// nb_frames is often absent for streamed containers; estimate
		// from duration and average frame rate instead.
		duration := parseFloat(stream.Duration)
		if duration <= 0 {
			duration = parseFloat(info.Format.Duration)
		}
		rate := parseFrameRate(stream.AvgFrameRate)
		if duration > 0 && rate > 0 {
			return int(math.Round(duration * rate)), nil
		}
	}

	return 0, fmt.Errorf("%w: no decodable video stream in %s", ErrUnreadableVideo, videoPath)
}

// MidFrameIndex returns the index of the temporal midpoint frame. A
// single-frame video yields index 0, which is the intended behavior.
func MidFrameIndex(totalFrames int) int {
	if totalFrames < 0 {
		return 0
	}
	return totalFrames / 2
}

// ExtractMidFrame decodes exactly one frame at the video's temporal
// midpoint and returns it as an in-memory RGB image.
func ExtractMidFrame(videoPath string) (image.Image, error) {
	total, err := CountFrames(videoPath)
	if err != nil {
		return nil, err
	}
	if total < 1 {
		return nil, fmt.Errorf("%w: %s reports zero frames", ErrUnreadableVideo, videoPath)
	}

	index := MidFrameIndex(total)
	logging.Debug("Extracting frame %d of %d from %s", index, total, videoPath)

	img, err := extractFrameAt(videoPath, index)
	if err != nil && index > 0 {
		// Some containers mis-report frame counts; fall back to the
		// first frame rather than failing a well-formed video.
		logging.Debug("Mid-frame extraction failed for %s (%v), retrying with first frame", videoPath, err)
		img, err = extractFrameAt(videoPath, 0)
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}

// extractFrameAt decodes the frame at the given index, piping it out of
// ffmpeg as PNG with rgb24 pixel format.
func extractFrameAt(videoPath string, index int) (image.Image, error) {
	cmd := exec.Command("ffmpeg",
		"-i", videoPath,
		"-vf", fmt.Sprintf("select=eq(n\\,%d)", index),
		"-vframes", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-pix_fmt", "rgb24",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg failed: %v - %s", ErrUnreadableVideo, err, stderr.String())
	}

	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: ffmpeg produced no output for frame %d of %s", ErrUnreadableVideo, index, videoPath)
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode extracted frame: %v", ErrUnreadableVideo, err)
	}
	return img, nil
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// parseFrameRate parses ffprobe's rational frame rate form ("30000/1001").
func parseFrameRate(s string) float64 {
	parts := strings.SplitN(strings.TrimSpace(s), "/", 2)
	if len(parts) == 1 {
		return parseFloat(parts[0])
	}
	num := parseFloat(parts[0])
	den := parseFloat(parts[1])
	if den == 0 {
		return 0
	}
	return num / den
}
