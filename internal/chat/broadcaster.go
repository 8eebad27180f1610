package chat

import (
	"errors"
	"log"
)

// Delivery summarizes one fan-out.
type Delivery struct {
	Targets   int
	Delivered int
	Failed    int
}

// Broadcaster fans messages out to a snapshot of the registry. It never holds
// the registry lock while sending, so a slow recipient cannot stall
// membership changes.
type Broadcaster struct {
	registry *Registry
	logger   *log.Logger
}

// NewBroadcaster returns a Broadcaster delivering to the members of registry.
// A nil logger falls back to the standard logger.
func NewBroadcaster(registry *Registry, logger *log.Logger) *Broadcaster {
	if logger == nil {
		logger = log.Default()
	}
	return &Broadcaster{registry: registry, logger: logger}
}

// BroadcastAll encodes msg once and sends it to every registered connection,
// joined or not.
func (b *Broadcaster) BroadcastAll(msg Message) Delivery {
	return b.broadcast(msg, false)
}

// BroadcastJoined encodes msg once and sends it to every joined connection.
func (b *Broadcaster) BroadcastJoined(msg Message) Delivery {
	return b.broadcast(msg, true)
}

func (b *Broadcaster) broadcast(msg Message, joinedOnly bool) Delivery {
	payload, err := Encode(msg)
	if err != nil {
		b.logger.Printf("[broadcast] dropping message: %v", err)
		return Delivery{}
	}

	targets := b.registry.Snapshot(joinedOnly)
	delivery := Delivery{Targets: len(targets)}
	for _, conn := range targets {
		if err := conn.Send(payload); err != nil {
			delivery.Failed++
			b.handleSendFailure(conn, err)
			continue
		}
		delivery.Delivered++
	}
	return delivery
}

// handleSendFailure logs a failed send and disconnects recipients whose
// queue overflowed.
func (b *Broadcaster) handleSendFailure(conn Connection, err error) {
	b.logger.Printf("[broadcast] send to %s failed: %v", conn.ID(), err)

	if !errors.Is(err, ErrSendQueueFull) {
		return
	}
	if closeErr := conn.Close(); closeErr != nil && !errors.Is(closeErr, ErrConnectionClosed) {
		b.logger.Printf("[broadcast] closing slow connection %s: %v", conn.ID(), closeErr)
	}
}
