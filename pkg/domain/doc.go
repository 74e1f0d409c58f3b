// Package domain holds the message board's core types.
package domain
