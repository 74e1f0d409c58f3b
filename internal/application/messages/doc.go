// Package messages implements the message board use-cases.
//
// The service coordinates message handling by:
//   - Validating client input (presence of the text field)
//   - Assigning ids, default authors, timestamps and the instance hostname
//   - Persisting through a locked load-modify-save cycle on the store
//   - Publishing message.created events and recording metrics
package messages
