package chat

import "github.com/google/uuid"

// ConnID identifies one live connection for its whole lifetime. IDs are random
// and never reused after the connection closes.
type ConnID string

// NewConnID returns a fresh connection identifier.
func NewConnID() ConnID {
	return ConnID(uuid.NewString())
}

// String returns the identifier as text.
func (id ConnID) String() string {
	return string(id)
}

// Connection is the handle the transport shell gives the core for one
// bidirectional text channel. The core references connections but never owns
// them; their lifetime belongs to the transport.
type Connection interface {
	// ID returns the identity of the connection.
	ID() ConnID
	// Send enqueues an outbound text payload. It must not block on a slow peer.
	Send(payload []byte) error
	// Close asks the transport to tear the channel down. The transport reports
	// the teardown back through Hub.OnDisconnect from its own goroutine, never
	// from inside Close.
	Close() error
}
