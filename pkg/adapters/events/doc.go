// Package events provides event bus implementations.
//
// Implementations:
//   - memory: in-process fan-out (default)
//   - redis: Redis Streams, shared by every instance pointed at the same server
package events
