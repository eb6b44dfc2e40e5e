package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	"product-media/internal/logging"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	vipsInitialized bool
	vipsInitMutex   sync.Mutex
	vipsAvailable   bool
)

// InitVips initializes the libvips library. Call once at startup; WebP
// encoding falls back to JPEG when this has not run or libvips is missing.
func InitVips() error {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		return nil
	}

	// Route vips log lines through our leveled logger, suppressing
	// anything below the configured level.
	vipsLevel := vips.LogLevelWarning
	if logging.IsDebugEnabled() {
		vipsLevel = vips.LogLevelInfo
	}
	vips.LoggingSettings(func(domain string, level vips.LogLevel, msg string) {
		switch {
		case level <= vips.LogLevelError:
			logging.Error("[%s] %s", domain, msg)
		case level == vips.LogLevelWarning:
			logging.Warn("[%s] %s", domain, msg)
		default:
			logging.Debug("[%s] %s", domain, msg)
		}
	}, vipsLevel)

	// Conservative memory settings: variants are encoded one at a time.
	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	})

	vipsInitialized = true
	vipsAvailable = true
	logging.Info("libvips initialized (version: %s)", vips.Version)
	return nil
}

// ShutdownVips cleans up libvips resources.
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		vipsAvailable = false
		logging.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable reports whether libvips is initialized and usable.
func IsVipsAvailable() bool {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()
	return vipsAvailable
}

// encodeWebpWithVips encodes img as WebP at the given quality. The frame
// round-trips through lossless PNG into vips, which is the supported path
// for handing an in-memory image.Image to libvips.
func encodeWebpWithVips(img image.Image, quality int) ([]byte, error) {
	if !IsVipsAvailable() {
		return nil, fmt.Errorf("libvips not available")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("intermediate png encode: %w", err)
	}

	ref, err := vips.NewImageFromBuffer(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("vips load: %w", err)
	}
	defer ref.Close()

	params := vips.NewWebpExportParams()
	params.Quality = quality
	params.StripMetadata = true

	data, _, err := ref.ExportWebp(params)
	if err != nil {
		return nil, fmt.Errorf("vips webp export: %w", err)
	}
	return data, nil
}
