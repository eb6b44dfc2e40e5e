package memory

import (
	"math"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"product-media/internal/logging"
	"product-media/internal/metrics"
)

// Config holds memory backpressure configuration.
type Config struct {
	// MemoryLimitBytes is the soft memory limit (0 = use GOMEMLIMIT or no limit)
	MemoryLimitBytes int64

	// HighWaterMark is the fraction of the limit below which paused
	// processing resumes (0.0-1.0)
	HighWaterMark float64

	// CriticalWaterMark is the fraction at which new uploads pause (0.0-1.0)
	CriticalWaterMark float64

	// CheckInterval is how often heap usage is sampled
	CheckInterval time.Duration
}

// DefaultConfig returns sensible defaults for upload backpressure.
func DefaultConfig() Config {
	return Config{
		MemoryLimitBytes:  0, // Use GOMEMLIMIT if set
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     5 * time.Second,
	}
}

// Monitor tracks heap usage and provides backpressure signals to the
// upload handlers.
type Monitor struct {
	config    Config
	limit     int64
	stopChan  chan struct{}
	mu        sync.RWMutex
	current   uint64
	isPaused  bool
	pauseChan chan struct{}
}

// NewMonitor creates a memory monitor. Without an explicit limit it
// falls back to GOMEMLIMIT; with neither, backpressure is disabled.
func NewMonitor(config Config) *Monitor {
	defaults := DefaultConfig()
	if config.CheckInterval <= 0 {
		config.CheckInterval = defaults.CheckInterval
	}
	if config.HighWaterMark <= 0 {
		config.HighWaterMark = defaults.HighWaterMark
	}
	if config.CriticalWaterMark <= 0 {
		config.CriticalWaterMark = defaults.CriticalWaterMark
	}

	limit := config.MemoryLimitBytes

	if limit == 0 {
		if goMemLimit := debug.SetMemoryLimit(-1); goMemLimit > 0 && goMemLimit < 1<<62 {
			limit = goMemLimit
			logging.Info("Memory monitor using GOMEMLIMIT: %d bytes (%.1f MB)", limit, float64(limit)/(1024*1024))
		}
	}

	if limit == 0 {
		logging.Warn("Memory monitor: no memory limit configured, backpressure disabled")
	}

	return &Monitor{
		config:    config,
		limit:     limit,
		stopChan:  make(chan struct{}),
		pauseChan: make(chan struct{}),
	}
}

// Start begins monitoring memory usage.
func (m *Monitor) Start() {
	if m.limit == 0 {
		return
	}

	go m.monitorLoop()
}

// Stop stops the memory monitor and releases any blocked waiters.
func (m *Monitor) Stop() {
	close(m.stopChan)
}

func (m *Monitor) monitorLoop() {
	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.checkMemory()
		case <-m.stopChan:
			return
		}
	}
}

func (m *Monitor) checkMemory() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	m.mu.Lock()
	m.current = stats.Alloc

	if m.limit > 0 {
		usage := float64(stats.Alloc) / float64(m.limit)
		metrics.MemoryUsageRatio.Set(usage)

		if usage >= m.config.CriticalWaterMark {
			if !m.isPaused {
				logging.Warn("Memory critical (%.1f%% of limit), pausing uploads", usage*100)
				m.isPaused = true
				metrics.MemoryPaused.Set(1)
				metrics.MemoryGCPauses.Inc()
				go runtime.GC()
			}
		} else if usage < m.config.HighWaterMark {
			if m.isPaused {
				logging.Info("Memory recovered (%.1f%% of limit), resuming uploads", usage*100)
				m.isPaused = false
				metrics.MemoryPaused.Set(0)
				close(m.pauseChan)
				m.pauseChan = make(chan struct{})
			}
		}
	}
	m.mu.Unlock()
}

// WaitIfPaused blocks while memory usage is critical and returns once it
// is safe to proceed. Returns false if the monitor was stopped.
func (m *Monitor) WaitIfPaused() bool {
	m.mu.RLock()
	if !m.isPaused {
		m.mu.RUnlock()
		return true
	}
	pauseChan := m.pauseChan
	m.mu.RUnlock()

	select {
	case <-pauseChan:
		return true
	case <-m.stopChan:
		return false
	}
}

// IsPaused reports whether upload processing is currently paused.
func (m *Monitor) IsPaused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isPaused
}

// GetStats returns current memory statistics: heap in use, the limit,
// and usage as a fraction of the limit (0 when no limit is set).
func (m *Monitor) GetStats() (current, limit int64, usage float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var currentInt64 int64
	if m.current > math.MaxInt64 {
		currentInt64 = math.MaxInt64
	} else {
		currentInt64 = int64(m.current)
	}

	var usageRatio float64
	if m.limit > 0 {
		usageRatio = float64(m.current) / float64(m.limit)
	}

	return currentInt64, m.limit, usageRatio
}
