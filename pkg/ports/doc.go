// Package ports defines the interfaces between the message service and its
// adapters.
//
// Adapters live under pkg/adapters:
//   - storage: file, redis and memory message stores
//   - events: memory and redis streams event buses
//   - metrics: Prometheus collector
package ports
