// Package middleware provides HTTP middleware for the product media service.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics with route-template path labels
//   - Response compression (gzip) for API responses
package middleware
