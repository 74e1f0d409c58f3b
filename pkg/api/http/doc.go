// Package http provides the HTTP REST API implementation.
//
// The HTTP server exposes endpoints for:
//   - The landing page
//   - Message listing and creation
//   - Service info
//   - Health checks
//   - Prometheus metrics
package http
