// Package memory provides memory-aware backpressure for upload processing.
//
// Decoding a large product photo can briefly need several times the file
// size in heap. When many uploads arrive at once in a memory-limited
// container, that burst can take the process over its limit. The Monitor
// watches heap usage against the configured limit and pauses new pipeline
// runs while usage is critical, resuming once a forced GC brings it back
// under the high water mark.
//
// ConfigureFromEnv additionally sets GOMEMLIMIT from the container's
// memory limit (Kubernetes Downward API) so the Go runtime itself starts
// collecting earlier under pressure.
package memory
