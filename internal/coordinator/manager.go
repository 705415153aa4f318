// Package coordinator implements the room lifecycle manager and the
// gameplay event relay: the authoritative state transitions of a match
// and the broadcasts that keep both peers convergent.
package coordinator

import (
	"errors"

	"go.uber.org/zap"

	"github.com/cory-johannsen/snakebattle/internal/game/room"
	"github.com/cory-johannsen/snakebattle/internal/game/session"
	"github.com/cory-johannsen/snakebattle/internal/protocol"
)

// Manager handles room membership: creation, joins, leaves, and
// disconnect cleanup including host migration. Every membership or host
// change is followed by a full roster broadcast so all peers converge
// within one message delay.
type Manager struct {
	notifier
	store    *room.Store
	capacity int
}

// NewManager creates a Manager.
//
// Precondition: store, registry, and logger must be non-nil; capacity must be >= 2.
func NewManager(store *room.Store, registry *session.Registry, capacity int, logger *zap.Logger) *Manager {
	return &Manager{
		notifier: notifier{registry: registry, logger: logger},
		store:    store,
		capacity: capacity,
	}
}

func roomData(v room.View) protocol.RoomData {
	return protocol.RoomData{RoomCode: v.Code, Players: v.Players}
}

// CreateRoom allocates a fresh room in Waiting phase with the connection
// as its host. Always succeeds.
//
// Postcondition: The creator receives room_created followed by
// room_updated (the whole-room broadcast is kept even for a solo room:
// clients rely on room_updated after every membership change). The
// connection is a member of exactly one room: the new one.
func (m *Manager) CreateRoom(connID, name string) room.View {
	// Creating while already roomed is an implicit leave; the old room
	// gets the normal departure cleanup. This keeps the at-most-one-room
	// invariant HandleDisconnect relies on.
	if prev := m.registry.CurrentRoom(connID); prev != "" {
		m.removeFromRoom(connID, prev)
	}

	view := m.store.Create(&room.Player{ID: connID, Name: name})
	m.registry.SetRoom(connID, view.Code)

	// A disconnect can slip in between Create and SetRoom; its Unregister
	// would then return no room and skip cleanup. Re-checking here closes
	// the window: either Unregister saw the back-reference, or we see the
	// connection gone and clean up ourselves.
	if _, ok := m.registry.Get(connID); !ok {
		m.removeFromRoom(connID, view.Code)
		return view
	}

	data := roomData(view)
	m.pushTo(connID, protocol.EventRoomCreated, data)
	m.pushTo(connID, protocol.EventRoomUpdated, data)

	m.logger.Info("room created",
		zap.String("room", view.Code),
		zap.String("host", name),
		zap.String("conn", connID),
	)
	return view
}

// JoinRoom adds the connection to the room as a non-host player.
//
// Postcondition: On success, the joiner receives room_joined and the whole
// room (joiner included) receives player_joined and room_updated; if the
// joiner was a member of another room, it has left that room with the
// normal departure cleanup. On failure, returns ErrRoomNotFound,
// ErrRoomFull, or ErrAlreadyJoined and no state changes.
func (m *Manager) JoinRoom(connID, code, name string) (room.View, error) {
	var view room.View
	err := m.store.Update(code, func(r *room.Room) error {
		if r.Has(connID) {
			return ErrAlreadyJoined
		}
		if r.Size() >= m.capacity {
			return ErrRoomFull
		}

		r.Add(&room.Player{ID: connID, Name: name})
		view = r.Snapshot()

		data := roomData(view)
		m.pushTo(connID, protocol.EventRoomJoined, data)
		m.broadcast(r, protocol.EventPlayerJoined, protocol.PlayerJoinedData{ID: connID, Name: name})
		m.broadcast(r, protocol.EventRoomUpdated, data)
		return nil
	})
	if errors.Is(err, room.ErrNotFound) {
		return room.View{}, ErrRoomNotFound
	}
	if err != nil {
		return room.View{}, err
	}

	// A successful join supersedes any previous membership; the old room
	// gets the normal departure cleanup. A failed join above left it
	// untouched.
	if prev := m.registry.CurrentRoom(connID); prev != "" && prev != code {
		m.removeFromRoom(connID, prev)
	}

	m.registry.SetRoom(connID, code)

	// Same disconnect window as in CreateRoom: removeFromRoom is a no-op
	// when the disconnect cleanup got there first.
	if _, ok := m.registry.Get(connID); !ok {
		m.removeFromRoom(connID, code)
		return view, nil
	}

	m.logger.Info("player joined room",
		zap.String("room", code),
		zap.String("player", name),
		zap.String("conn", connID),
	)
	return view, nil
}

// LeaveRoom removes the connection from the room if it is a member, and
// is a no-op otherwise. An emptied room is deleted; a host-less remainder
// gets a new host.
func (m *Manager) LeaveRoom(connID, code string) {
	m.removeFromRoom(connID, code)
	if m.registry.CurrentRoom(connID) == code {
		m.registry.SetRoom(connID, "")
	}
}

// HandleDisconnect unregisters the connection and runs the same cleanup
// as LeaveRoom for the room it belonged to, if any. A connection belongs
// to at most one room by construction.
func (m *Manager) HandleDisconnect(connID string) {
	code := m.registry.Unregister(connID)
	m.logger.Info("client disconnected",
		zap.String("conn", connID),
		zap.String("room", code),
	)
	if code == "" {
		return
	}
	m.removeFromRoom(connID, code)
}

// removeFromRoom removes the player and restores the room invariants:
// remaining peers learn of the departure, an emptied room disappears from
// the store (via Update), and exactly one remaining member holds host.
// Host migration runs on every removal, voluntary or not.
func (m *Manager) removeFromRoom(connID, code string) {
	err := m.store.Update(code, func(r *room.Room) error {
		p, ok := r.Remove(connID)
		if !ok {
			return nil
		}

		m.logger.Info("player left room",
			zap.String("room", code),
			zap.String("player", p.Name),
			zap.String("conn", connID),
		)

		if r.Size() == 0 {
			m.logger.Info("room deleted", zap.String("room", code))
			return nil
		}

		m.broadcast(r, protocol.EventPlayerLeft, protocol.PlayerLeftData{PlayerID: p.ID, Name: p.Name})
		m.broadcast(r, protocol.EventRoomUpdated, roomData(r.Snapshot()))

		if promoted, ok := r.EnsureHost(); ok {
			m.logger.Info("host migrated",
				zap.String("room", code),
				zap.String("new_host", promoted),
			)
			m.broadcast(r, protocol.EventRoomUpdated, roomData(r.Snapshot()))
		}
		return nil
	})
	if errors.Is(err, room.ErrNotFound) {
		// The peer's cleanup got there first.
		m.logger.Debug("leave for vanished room",
			zap.String("room", code),
			zap.String("conn", connID),
		)
	}
}
