package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns the worker count for a given task type. It respects
// container CPU limits via GOMAXPROCS (Go 1.19+).
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks
//   - 2.0 for I/O-bound tasks
//   - 1.5 for mixed tasks
//
// The limit parameter caps the result; use 0 for no cap. The
// UPLOAD_WORKERS environment variable overrides the calculation.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv("UPLOAD_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForCPU returns the worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO returns the worker count for I/O-bound tasks (2 per CPU).
func ForIO(limit int) int {
	return Count(2.0, limit)
}

// ForMixed returns the worker count for mixed tasks (1.5 per CPU).
// Variant generation reads a file, resizes in memory, and writes the
// results, so it sits between the CPU and I/O profiles.
func ForMixed(limit int) int {
	return Count(1.5, limit)
}
