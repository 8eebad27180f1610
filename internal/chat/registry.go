package chat

import "sync"

type registryEntry struct {
	conn   Connection
	name   string
	joined bool
}

// Registry is the authoritative table of live connections and their display
// names. A registered connection is connected; a connection with a name is
// joined. All methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[ConnID]*registryEntry
	online  int
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[ConnID]*registryEntry),
	}
}

// AddConnection registers conn as connected with no display name. Adding an
// already registered connection is a no-op.
func (r *Registry) AddConnection(conn Connection) {
	if conn == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[conn.ID()]; exists {
		return
	}
	r.entries[conn.ID()] = &registryEntry{conn: conn}
}

// RemoveConnection unregisters id and returns the display name it held, with
// joined reporting whether it had one. Unknown ids return ("", false).
func (r *Registry) RemoveConnection(id ConnID) (name string, joined bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[id]
	if !exists {
		return "", false
	}
	delete(r.entries, id)
	if entry.joined {
		r.online--
	}
	return entry.name, entry.joined
}

// SetDisplayName names a registered connection, overwriting any previous
// name. It returns ErrNotConnected if id is not registered.
func (r *Registry) SetDisplayName(id ConnID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[id]
	if !exists {
		return ErrNotConnected
	}
	if !entry.joined {
		entry.joined = true
		r.online++
	}
	entry.name = name
	return nil
}

// DisplayName returns the name of id if it is registered and joined.
func (r *Registry) DisplayName(id ConnID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[id]
	if !exists || !entry.joined {
		return "", false
	}
	return entry.name, true
}

// Contains reports whether id is registered.
func (r *Registry) Contains(id ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.entries[id]
	return exists
}

// Len returns the number of registered connections, joined or not.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// OnlineCount returns the number of joined connections.
func (r *Registry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.online
}

// Snapshot returns a point-in-time copy of the registered connections,
// restricted to joined ones when joinedOnly is set. The slice is owned by the
// caller and may be iterated without holding any registry lock.
func (r *Registry) Snapshot(joinedOnly bool) []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]Connection, 0, len(r.entries))
	for _, entry := range r.entries {
		if joinedOnly && !entry.joined {
			continue
		}
		conns = append(conns, entry.conn)
	}
	return conns
}

// status reports registration and joined state of id under one lock.
func (r *Registry) status(id ConnID) (registered, joined bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[id]
	if !exists {
		return false, false
	}
	return true, entry.joined
}
