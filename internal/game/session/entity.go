// Package session provides connection tracking and per-connection outbound
// event queues for the session coordinator.
package session

import (
	"fmt"
	"sync"
)

// Entity is a connection's outbound event queue, bridging the coordinator
// to the websocket write pump. Push never blocks, so broadcasts may run
// while the room store lock is held.
type Entity struct {
	id     string
	events chan []byte
	mu     sync.Mutex
	closed bool
}

// NewEntity creates an Entity for the given connection id.
//
// Precondition: id must be non-empty.
// Postcondition: Returns an Entity with an open events channel.
func NewEntity(id string, bufferSize int) *Entity {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Entity{
		id:     id,
		events: make(chan []byte, bufferSize),
	}
}

// ID returns the connection's unique identifier.
func (e *Entity) ID() string {
	return e.id
}

// Push enqueues an outbound frame without blocking.
//
// Postcondition: The frame is enqueued, or an error if the entity is
// closed or the buffer is full. A full buffer drops the frame; a client
// that slow is about to be reaped by the read deadline anyway.
func (e *Entity) Push(data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return fmt.Errorf("entity %s is closed", e.id)
	}
	select {
	case e.events <- data:
		return nil
	default:
		return fmt.Errorf("entity %s event buffer full", e.id)
	}
}

// Events returns the read-only events channel.
// The websocket write pump drains this channel.
func (e *Entity) Events() <-chan []byte {
	return e.events
}

// Close marks the entity as closed and closes the events channel.
//
// Postcondition: The events channel is closed. Further Push calls return an error.
func (e *Entity) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.closed {
		e.closed = true
		close(e.events)
	}
	return nil
}

// IsClosed reports whether the entity has been closed.
func (e *Entity) IsClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
