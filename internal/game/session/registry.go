package session

import "sync"

// Conn is one live transport session tracked by the Registry.
type Conn struct {
	// ID is the connection's unique identifier, minted at upgrade time.
	ID string
	// Entity is the connection's outbound event queue.
	Entity *Entity

	room string
}

// Registry tracks live connections and the room (if any) each belongs to.
// The room back-reference is a lookup key only; room and player deletion
// always flows through the room store, never from here.
// All methods are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]*Conn),
	}
}

// Register adds a connection and allocates its outbound event queue.
//
// Precondition: id must be non-empty and not already registered.
// Postcondition: Returns the tracked Conn with an open Entity.
func (reg *Registry) Register(id string, bufferSize int) *Conn {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	c := &Conn{
		ID:     id,
		Entity: NewEntity(id, bufferSize),
	}
	reg.conns[id] = c
	return c
}

// Unregister removes a connection and closes its Entity.
//
// Postcondition: Returns the room code the connection belonged to, or ""
// if none. Room state is not touched; the caller runs cleanup.
// Unregistering an unknown id is a no-op returning "".
func (reg *Registry) Unregister(id string) string {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	c, ok := reg.conns[id]
	if !ok {
		return ""
	}
	_ = c.Entity.Close()
	delete(reg.conns, id)
	return c.room
}

// CurrentRoom returns the room code the connection belongs to, or "" if
// it is not in a room or not registered.
func (reg *Registry) CurrentRoom(id string) string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	c, ok := reg.conns[id]
	if !ok {
		return ""
	}
	return c.room
}

// SetRoom records the connection's current room. Pass "" to clear.
// Setting the room of an unknown id is a no-op.
func (reg *Registry) SetRoom(id, code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if c, ok := reg.conns[id]; ok {
		c.room = code
	}
}

// Get returns the tracked connection for the given id.
//
// Postcondition: Returns (conn, true) if registered, or (nil, false) otherwise.
func (reg *Registry) Get(id string) (*Conn, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	c, ok := reg.conns[id]
	return c, ok
}

// Count returns the number of registered connections.
func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.conns)
}
