package pipeline

import (
	"os"
	"sync"

	"product-media/internal/logging"
	"product-media/internal/metrics"
)

// Tracker records every file one pipeline run creates, in creation order.
// It is the single source of truth for what exists because of the run: on
// failure, cleanup walks its own list rather than globbing the upload
// directory, so files from unrelated concurrent runs are never touched.
type Tracker struct {
	mu    sync.Mutex
	paths []string
	done  bool
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Track records a newly created file path.
func (t *Tracker) Track(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paths = append(t.paths, path)
}

// Created returns the tracked paths in creation order.
func (t *Tracker) Created() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.paths))
	copy(out, t.paths)
	return out
}

// Cleanup deletes every tracked file in reverse creation order and
// returns the paths that were removed. Deletion is best-effort: a target
// that no longer exists is silently skipped, and other deletion errors
// are logged and do not stop cleanup of the remaining files. Calling
// Cleanup after Discard, or a second time, is a no-op.
func (t *Tracker) Cleanup() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return nil
	}
	t.done = true

	if len(t.paths) > 0 {
		metrics.CleanupRunsTotal.Inc()
	}

	var removed []string
	for i := len(t.paths) - 1; i >= 0; i-- {
		path := t.paths[i]
		err := os.Remove(path)
		switch {
		case err == nil:
			removed = append(removed, path)
			metrics.CleanupFilesRemoved.Inc()
		case os.IsNotExist(err):
			// Never written (e.g. crash mid-write); nothing to do.
		default:
			logging.Warn("cleanup: failed to remove %s: %v", path, err)
		}
	}

	if len(removed) > 0 {
		logging.Info("cleanup removed %d file(s) from failed upload", len(removed))
	}
	t.paths = nil
	return removed
}

// Discard forgets the tracked files without deleting them. Call once the
// upload is fully committed (files written and database row persisted).
func (t *Tracker) Discard() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done = true
	t.paths = nil
}
