// Package server implements the HTTP and WebSocket transport shell of the chatroom.
//
// The chat core in internal/chat knows nothing about WebSockets. This package
// upgrades requests, runs one read pump and one write pump per connection,
// and adapts each socket to chat.Connection so the hub can address it.
package server
