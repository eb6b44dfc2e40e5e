// Package metrics defines the Prometheus metrics exported by the product
// media service: HTTP traffic, upload pipeline outcomes, variant
// generation timing, cleanup activity, and database query health.
package metrics
