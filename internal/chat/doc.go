// Package chat implements the presence-and-broadcast core of the chatroom.
//
// The package is transport agnostic. A transport shell hands it live
// connections through the Connection interface and feeds it raw inbound text
// frames; the core keeps the membership Registry, fans messages out through the
// Broadcaster and drives each connection through the Session Protocol
// implemented by Hub.
package chat
