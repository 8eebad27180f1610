package chat

import (
	"errors"
	"log"
	"sync"
	"time"
)

// SessionHandler is the capability contract the transport shell drives. The
// shell calls OnConnect exactly once before any OnMessage for a connection and
// OnDisconnect exactly once after its last OnMessage.
type SessionHandler interface {
	OnConnect(conn Connection)
	OnMessage(id ConnID, raw []byte)
	OnDisconnect(id ConnID)
}

// State is the protocol state of one connection.
type State int

const (
	StateClosed State = iota
	StateConnected
	StateJoined
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateJoined:
		return "joined"
	default:
		return "closed"
	}
}

// Option configures a Hub.
type Option func(*Hub)

// WithClock replaces the time source used to stamp outbound messages.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) {
		if now != nil {
			h.now = now
		}
	}
}

// WithLogger replaces the logger used by the hub and its broadcaster.
func WithLogger(logger *log.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Hub runs the session protocol for every connection sharing one Registry.
type Hub struct {
	registry    *Registry
	broadcaster *Broadcaster
	logger      *log.Logger
	now         func() time.Time

	// membership serializes join and leave transitions together with the
	// notices they publish, so every recipient sees online counts in the
	// order the registry changed.
	membership sync.Mutex
}

var _ SessionHandler = (*Hub)(nil)

// NewHub returns a Hub over registry. A nil registry gets a fresh one.
func NewHub(registry *Registry, opts ...Option) *Hub {
	if registry == nil {
		registry = NewRegistry()
	}
	h := &Hub{
		registry: registry,
		logger:   log.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.broadcaster = NewBroadcaster(registry, h.logger)
	return h
}

// Registry returns the membership table the hub mutates.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// State reports the protocol state of id.
func (h *Hub) State(id ConnID) State {
	registered, joined := h.registry.status(id)
	switch {
	case joined:
		return StateJoined
	case registered:
		return StateConnected
	default:
		return StateClosed
	}
}

// OnConnect registers a freshly established connection in the Connected
// state.
func (h *Hub) OnConnect(conn Connection) {
	if conn == nil {
		return
	}
	h.registry.AddConnection(conn)
	h.logger.Printf("[hub] connection %s opened. Connected: %d", conn.ID(), h.registry.Len())
}

// OnMessage decodes one inbound frame from id and applies it. Undecodable
// frames are logged and dropped; the connection stays in its current state.
func (h *Hub) OnMessage(id ConnID, raw []byte) {
	event, err := DecodeEvent(raw)
	if err != nil {
		h.logger.Printf("[hub] dropping frame from %s: %v", id, err)
		return
	}
	h.HandleEvent(id, event)
}

// HandleEvent applies an already decoded event from id.
func (h *Hub) HandleEvent(id ConnID, event Event) {
	switch e := event.(type) {
	case JoinEvent:
		h.join(id, e.Username)
	case ChatEvent:
		h.chat(id, e.Content)
	case UnknownEvent:
		h.logger.Printf("[hub] ignoring unknown message type %q from %s", e.Type, id)
	default:
		h.logger.Printf("[hub] ignoring unsupported event %T from %s", event, id)
	}
}

// OnDisconnect moves id to Closed. If it had joined, the departure is
// announced. Repeated calls are no-ops.
func (h *Hub) OnDisconnect(id ConnID) {
	h.membership.Lock()
	defer h.membership.Unlock()

	name, joined := h.registry.RemoveConnection(id)
	if !joined {
		h.logger.Printf("[hub] connection %s closed. Connected: %d", id, h.registry.Len())
		return
	}

	h.logger.Printf("[hub] %s left (%s). Online: %d", name, id, h.registry.OnlineCount())
	h.announce(LeaveNotice(name))
}

// Shutdown closes every registered connection and returns how many were
// asked to close. Each closure is reported back through OnDisconnect by the
// transport.
func (h *Hub) Shutdown() int {
	conns := h.registry.Snapshot(false)
	for _, conn := range conns {
		if err := conn.Close(); err != nil && !errors.Is(err, ErrConnectionClosed) {
			h.logger.Printf("[hub] closing connection %s: %v", conn.ID(), err)
		}
	}
	h.logger.Printf("[hub] closed %d connections", len(conns))
	return len(conns)
}

// join names id and announces it. A repeated join renames the connection in
// place: it announces "<new> 加入了聊天室" and the unchanged online count again,
// with no leave notice for the old name.
func (h *Hub) join(id ConnID, username string) {
	h.membership.Lock()
	defer h.membership.Unlock()

	if err := h.registry.SetDisplayName(id, username); err != nil {
		h.logger.Printf("[hub] join as %q from %s aborted: %v", username, id, err)
		return
	}

	h.logger.Printf("[hub] %s joined (%s). Online: %d", username, id, h.registry.OnlineCount())
	h.announce(JoinNotice(username))
}

func (h *Hub) chat(id ConnID, content string) {
	username, joined := h.registry.DisplayName(id)
	if !joined {
		h.logger.Printf("[hub] dropping message from %s: not joined", id)
		return
	}

	h.broadcaster.BroadcastAll(NewChatMessage(username, content, h.now()))
	h.logger.Printf("[%s]: %s", username, content)
}

// announce publishes a system notice followed by the online count. Callers
// hold h.membership.
func (h *Hub) announce(text string) {
	h.broadcaster.BroadcastAll(NewSystemMessage(text, h.now()))
	h.broadcaster.BroadcastAll(UserCountMessage{Count: h.registry.OnlineCount()})
}
