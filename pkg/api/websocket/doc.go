// Package websocket provides the live message feed.
//
// Clients connect to /api/messages/stream and receive every message created
// after the connection was established.
package websocket
