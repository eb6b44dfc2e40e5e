// Package handlers provides HTTP request handlers for the product media API.
//
// It includes handlers for:
//   - Single and multi-file media upload with variant generation
//   - Media metadata CRUD and gallery ordering
//   - Admin authentication and sessions
//   - Health checks and build info
package handlers
