package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"product-media/internal/logging"
	"product-media/internal/mediatypes"
	"product-media/internal/metrics"
	"product-media/internal/naming"
	"product-media/internal/raster"
	"product-media/internal/video"
)

// Variant names for photo uploads.
const (
	VariantOriginal = "original"
	VariantThumb    = "thumb"
	VariantMedium   = "medium"
	VariantLarge    = "large"
)

// Size is one bounding box in a size profile.
type Size struct {
	Name      string
	MaxWidth  int
	MaxHeight int
}

// SizeProfile is an ordered list of bounding boxes. Order matters: sizes
// are processed in declaration order so a failed run always leaves a
// deterministic subset of files for the tracker to clean up.
type SizeProfile []Size

// DefaultSizes is the product catalog size profile: thumbnail for listing
// pages, medium as the primary product image, large for detail zoom.
func DefaultSizes() SizeProfile {
	return SizeProfile{
		{Name: VariantThumb, MaxWidth: 300, MaxHeight: 300},
		{Name: VariantMedium, MaxWidth: 800, MaxHeight: 800},
		{Name: VariantLarge, MaxWidth: 1200, MaxHeight: 1200},
	}
}

// Asset is the result of one successful pipeline run.
type Asset struct {
	Kind            mediatypes.Kind
	BaseID          string
	Ext             string
	Variants        map[string]string
	PrimaryFilename string
}

// Pipeline derives variant sets into a flat upload directory.
type Pipeline struct {
	uploadDir string
	sizes     SizeProfile
	quality   int
}

// New creates a pipeline writing into uploadDir. A nil or empty profile
// falls back to DefaultSizes.
func New(uploadDir string, sizes SizeProfile) *Pipeline {
	if len(sizes) == 0 {
		sizes = DefaultSizes()
	}
	return &Pipeline{
		uploadDir: uploadDir,
		sizes:     sizes,
		quality:   raster.DefaultQuality,
	}
}

// Run processes one upload: sourcePath is a readable temporary file,
// originalName the declared upload filename, kind the externally derived
// classification. On success it returns the asset and the tracker holding
// every file the run created; the caller must Discard the tracker once
// its own persistence step commits, or Cleanup it if that step fails. On
// failure all created files are already removed and the returned error
// carries the cleaned list when the run aborted mid-sequence.
func (p *Pipeline) Run(sourcePath, originalName string, kind mediatypes.Kind) (asset *Asset, tracker *Tracker, err error) {
	tracker = NewTracker()
	start := time.Now()

	// Cleanup must run on every failing exit path, including panics
	// thrown deep inside resize or encode.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("variant generation panicked: %v", r)
		}
		if err != nil {
			cleaned := tracker.Cleanup()
			if len(cleaned) > 0 {
				err = &PartialError{Err: err, Cleaned: cleaned}
			}
			asset = nil
			metrics.UploadsTotal.WithLabelValues(string(kind), "error").Inc()
			return
		}
		metrics.UploadsTotal.WithLabelValues(string(kind), "success").Inc()
		metrics.PipelineDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	}()

	ext, err := naming.ExtensionOf(originalName)
	if err != nil {
		return nil, tracker, err
	}
	baseID := naming.NewBaseID()

	switch kind {
	case mediatypes.KindPhoto:
		asset, err = p.runPhoto(tracker, sourcePath, baseID, ext)
	case mediatypes.KindVideo:
		asset, err = p.runVideo(tracker, sourcePath, baseID, ext)
	default:
		err = fmt.Errorf("%w: unknown media kind %q", naming.ErrInvalidUpload, kind)
	}
	return asset, tracker, err
}

// runPhoto writes the byte-identical original first, then one resized
// variant per size in declaration order.
func (p *Pipeline) runPhoto(tracker *Tracker, sourcePath, baseID, ext string) (*Asset, error) {
	variants := make(map[string]string, len(p.sizes)+1)

	originalName := naming.VariantFilename(baseID, VariantOriginal, ext)
	if err := p.copyFile(sourcePath, originalName, tracker); err != nil {
		return nil, err
	}
	variants[VariantOriginal] = originalName
	metrics.VariantsGenerated.WithLabelValues(string(mediatypes.KindPhoto), VariantOriginal).Inc()

	for _, size := range p.sizes {
		img, err := raster.Resize(sourcePath, size.MaxWidth, size.MaxHeight)
		if err != nil {
			return nil, err
		}
		data, err := raster.Encode(img, ext, p.quality)
		if err != nil {
			return nil, err
		}

		name := naming.VariantFilename(baseID, size.Name, ext)
		if err := p.writeFile(name, data, tracker); err != nil {
			return nil, err
		}
		variants[size.Name] = name
		metrics.VariantsGenerated.WithLabelValues(string(mediatypes.KindPhoto), size.Name).Inc()
	}

	return &Asset{
		Kind:            mediatypes.KindPhoto,
		BaseID:          baseID,
		Ext:             ext,
		Variants:        variants,
		PrimaryFilename: photoPrimary(variants, p.sizes),
	}, nil
}

// runVideo stores the container unchanged, then derives JPEG thumbnails
// from the mid frame, one per size in declaration order.
func (p *Pipeline) runVideo(tracker *Tracker, sourcePath, baseID, ext string) (*Asset, error) {
	storedName := naming.VideoFilename(baseID, ext)
	if err := p.copyFile(sourcePath, storedName, tracker); err != nil {
		return nil, err
	}
	metrics.VariantsGenerated.WithLabelValues(string(mediatypes.KindVideo), "video").Inc()

	frameStart := time.Now()
	frame, err := video.ExtractMidFrame(filepath.Join(p.uploadDir, storedName))
	if err != nil {
		return nil, err
	}
	metrics.FrameExtractionDuration.Observe(time.Since(frameStart).Seconds())

	variants := make(map[string]string, len(p.sizes)+1)
	for _, size := range p.sizes {
		thumb := raster.ResizeImage(frame, size.MaxWidth, size.MaxHeight)
		// Derived rasters are always JPEG regardless of the container.
		data, err := raster.Encode(thumb, ".jpg", p.quality)
		if err != nil {
			return nil, err
		}

		name := naming.VideoThumbFilename(baseID, size.Name)
		if err := p.writeFile(name, data, tracker); err != nil {
			return nil, err
		}
		variants[size.Name] = name
		metrics.VariantsGenerated.WithLabelValues(string(mediatypes.KindVideo), size.Name).Inc()
	}

	// The unbounded frame is stored last as the "original" thumbnail.
	data, err := raster.Encode(frame, ".jpg", p.quality)
	if err != nil {
		return nil, err
	}
	originalThumb := naming.VideoThumbFilename(baseID, VariantOriginal)
	if err := p.writeFile(originalThumb, data, tracker); err != nil {
		return nil, err
	}
	variants[VariantOriginal] = originalThumb
	metrics.VariantsGenerated.WithLabelValues(string(mediatypes.KindVideo), VariantOriginal).Inc()

	return &Asset{
		Kind:            mediatypes.KindVideo,
		BaseID:          baseID,
		Ext:             ext,
		Variants:        variants,
		PrimaryFilename: storedName,
	}, nil
}

// photoPrimary picks the primary filename for a photo: the medium variant
// when the profile has one, otherwise the last (largest) generated size,
// otherwise the original copy.
func photoPrimary(variants map[string]string, sizes SizeProfile) string {
	if name, ok := variants[VariantMedium]; ok {
		return name
	}
	if len(sizes) > 0 {
		if name, ok := variants[sizes[len(sizes)-1].Name]; ok {
			return name
		}
	}
	return variants[VariantOriginal]
}

// copyFile copies src byte-for-byte into the upload directory under name,
// tracking the destination as soon as it exists.
func (p *Pipeline) copyFile(src, name string, tracker *Tracker) error {
	dst := filepath.Join(p.uploadDir, name)

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: open source: %v", ErrIO, err)
	}
	defer func() {
		if err := in.Close(); err != nil {
			logging.Warn("failed to close source file %s: %v", src, err)
		}
	}()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrIO, name, err)
	}
	tracker.Track(dst)

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("%w: copy to %s: %v", ErrIO, name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrIO, name, err)
	}
	return nil
}

// writeVariant is swappable in tests to inject disk faults mid-sequence.
var writeVariant = os.WriteFile

// writeFile writes encoded variant bytes into the upload directory,
// tracking the destination before the write so a partial write is still
// cleaned up.
func (p *Pipeline) writeFile(name string, data []byte, tracker *Tracker) error {
	dst := filepath.Join(p.uploadDir, name)
	tracker.Track(dst)

	if err := writeVariant(dst, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrIO, name, err)
	}
	return nil
}
