// Package grpc exposes the standard grpc.health.v1 service so orchestrators
// can probe the process over gRPC.
package grpc
