// Package storage provides message store implementations.
//
// Implementations:
//   - file: a single JSON array on local disk (default)
//   - redis: the same JSON array under one Redis key
//   - memory: in-memory for testing
package storage
