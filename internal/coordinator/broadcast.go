package coordinator

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/cory-johannsen/snakebattle/internal/game/room"
	"github.com/cory-johannsen/snakebattle/internal/game/session"
	"github.com/cory-johannsen/snakebattle/internal/protocol"
)

// notifier pushes encoded frames to connection entities. Pushes never
// block, so notifier methods may run inside room.Store.Update critical
// sections; that is what makes a mutation and its broadcast observable
// as one step.
type notifier struct {
	registry *session.Registry
	logger   *zap.Logger
}

// pushTo sends one event to a single connection.
func (n *notifier) pushTo(connID string, event protocol.EventType, data any) {
	frame, err := protocol.Encode(event, data)
	if err != nil {
		n.logger.Error("encoding event",
			zap.String("event", string(event)),
			zap.Error(err),
		)
		return
	}
	n.pushFrame(connID, event, frame)
}

// broadcast sends one event to every member of the room except those in
// exclude. Member order follows roster insertion order.
func (n *notifier) broadcast(r *room.Room, event protocol.EventType, data any, exclude ...string) {
	frame, err := protocol.Encode(event, data)
	if err != nil {
		n.logger.Error("encoding event",
			zap.String("event", string(event)),
			zap.Error(err),
		)
		return
	}
	n.broadcastFrame(r, event, frame, exclude...)
}

// broadcastRaw forwards an opaque client payload verbatim under the given
// event name. A nil payload produces a bare event.
func (n *notifier) broadcastRaw(r *room.Room, event protocol.EventType, payload json.RawMessage, exclude ...string) {
	var data any
	if len(payload) > 0 {
		data = payload
	}
	n.broadcast(r, event, data, exclude...)
}

func (n *notifier) broadcastFrame(r *room.Room, event protocol.EventType, frame []byte, exclude ...string) {
members:
	for _, id := range r.MemberIDs() {
		for _, ex := range exclude {
			if id == ex {
				continue members
			}
		}
		n.pushFrame(id, event, frame)
	}
}

func (n *notifier) pushFrame(connID string, event protocol.EventType, frame []byte) {
	conn, ok := n.registry.Get(connID)
	if !ok {
		// Member raced its own disconnect; the roster cleanup is already
		// on its way.
		n.logger.Debug("dropping event for unregistered connection",
			zap.String("conn", connID),
			zap.String("event", string(event)),
		)
		return
	}
	if err := conn.Entity.Push(frame); err != nil {
		n.logger.Warn("dropping event",
			zap.String("conn", connID),
			zap.String("event", string(event)),
			zap.Error(err),
		)
	}
}
