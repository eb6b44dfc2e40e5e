package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"product-media/internal/logging"
)

// DefaultMemoryRatio is the fraction of container memory given to the Go
// heap. The rest is reserved for ffmpeg, libvips, and goroutine stacks.
const DefaultMemoryRatio = 0.85

// ConfigResult holds the result of memory configuration.
type ConfigResult struct {
	// Configured indicates whether GOMEMLIMIT was set
	Configured bool

	// Source indicates where the configuration came from:
	// "GOMEMLIMIT", "MEMORY_LIMIT", or "none"
	Source string

	// ContainerLimit is the container memory limit in bytes (0 if not set)
	ContainerLimit int64

	// GoMemLimit is the configured GOMEMLIMIT in bytes (0 if not set)
	GoMemLimit int64

	// Ratio is the memory ratio used (0 if not applicable)
	Ratio float64
}

// ConfigureFromEnv sets GOMEMLIMIT based on the container memory limit.
// Call this early in main() before significant allocations.
//
// Environment variables:
//   - GOMEMLIMIT: If set, this takes precedence (standard Go env var)
//   - MEMORY_LIMIT: Container memory limit in bytes (Kubernetes Downward API)
//   - MEMORY_RATIO: Optional fraction of memory for the Go heap (default: 0.85)
func ConfigureFromEnv() ConfigResult {
	result := ConfigResult{}

	if goMemLimitEnv := os.Getenv("GOMEMLIMIT"); goMemLimitEnv != "" {
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			result.Configured = true
			result.Source = "GOMEMLIMIT"
			result.GoMemLimit = limit
		}
		logging.Info("GOMEMLIMIT set via environment: %s", goMemLimitEnv)
		return result
	}

	memLimitStr := os.Getenv("MEMORY_LIMIT")
	if memLimitStr == "" {
		logging.Debug("MEMORY_LIMIT not set, GOMEMLIMIT will not be configured automatically")
		result.Source = "none"
		return result
	}

	memLimit, err := strconv.ParseInt(memLimitStr, 10, 64)
	if err != nil || memLimit <= 0 {
		logging.Warn("Failed to parse MEMORY_LIMIT %q", memLimitStr)
		result.Source = "none"
		return result
	}

	result.ContainerLimit = memLimit

	ratio := DefaultMemoryRatio
	if ratioStr := os.Getenv("MEMORY_RATIO"); ratioStr != "" {
		if parsedRatio, err := strconv.ParseFloat(ratioStr, 64); err == nil && parsedRatio > 0 && parsedRatio <= 1.0 {
			ratio = parsedRatio
		} else {
			logging.Warn("Invalid MEMORY_RATIO %q, using default %.2f", ratioStr, DefaultMemoryRatio)
		}
	}

	goMemLimit := int64(float64(memLimit) * ratio)
	debug.SetMemoryLimit(goMemLimit)

	result.Configured = true
	result.Source = "MEMORY_LIMIT"
	result.GoMemLimit = goMemLimit
	result.Ratio = ratio

	logging.Info("GOMEMLIMIT set to %d bytes (%.1f MB, %.0f%% of container limit)",
		goMemLimit, float64(goMemLimit)/(1024*1024), ratio*100)
	return result
}
