package chat

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when a registry mutation targets a
	// connection that is not (or no longer) registered.
	ErrNotConnected = errors.New("chat: connection not registered")

	// ErrSendQueueFull is returned by a Connection whose outbound queue has
	// no room left for another payload.
	ErrSendQueueFull = errors.New("chat: send queue full")

	// ErrConnectionClosed is returned by a Connection that has already been
	// torn down.
	ErrConnectionClosed = errors.New("chat: connection closed")
)

// DecodeError reports an inbound payload that could not be turned into an
// event, either because it is not valid JSON or because a required field is
// missing.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("chat: decode inbound message: %s: %v", e.Reason, e.Err)
	}
	return "chat: decode inbound message: " + e.Reason
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
