package coordinator

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/cory-johannsen/snakebattle/internal/game/session"
	"github.com/cory-johannsen/snakebattle/internal/protocol"
)

// Dispatcher routes decoded inbound events to the Manager and Relay and
// maps join failures to structured error events. It is the transport
// layer's single entry point into the coordinator.
type Dispatcher struct {
	notifier
	manager *Manager
	relay   *Relay
	// foodPoints substitutes a missing points field in game_food_eaten.
	foodPoints int
}

// NewDispatcher creates a Dispatcher.
//
// Precondition: manager, relay, registry, and logger must be non-nil;
// foodPoints must be positive.
func NewDispatcher(manager *Manager, relay *Relay, registry *session.Registry, foodPoints int, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		notifier:   notifier{registry: registry, logger: logger},
		manager:    manager,
		relay:      relay,
		foodPoints: foodPoints,
	}
}

// HandleOpen greets a newly registered connection.
func (d *Dispatcher) HandleOpen(connID string) {
	d.pushTo(connID, protocol.EventConnected, protocol.ConnectedData{Status: "connected"})
}

// HandleEvent dispatches one decoded envelope. Unknown event names are
// logged and dropped; malformed payload fields fall back to their
// documented defaults rather than failing the request.
func (d *Dispatcher) HandleEvent(connID string, env protocol.Envelope) {
	switch env.Event {
	case protocol.EventCreateRoom:
		var req protocol.CreateRoomRequest
		d.decode(connID, env, &req)
		d.manager.CreateRoom(connID, req.Name())

	case protocol.EventJoinRoom:
		var req protocol.JoinRoomRequest
		d.decode(connID, env, &req)
		if _, err := d.manager.JoinRoom(connID, req.RoomCode, req.Name()); err != nil {
			d.pushError(connID, err)
		}

	case protocol.EventLeaveRoom:
		var ref protocol.RoomRef
		d.decode(connID, env, &ref)
		d.manager.LeaveRoom(connID, ref.RoomCode)

	case protocol.EventStartGame:
		var ref protocol.RoomRef
		d.decode(connID, env, &ref)
		d.relay.StartGame(ref.RoomCode)

	case protocol.EventGameMove:
		var ref protocol.RoomRef
		d.decode(connID, env, &ref)
		d.relay.RelayMove(ref.RoomCode, connID, env.Data)

	case protocol.EventFoodEaten:
		var req protocol.FoodEatenRequest
		d.decode(connID, env, &req)
		d.relay.FoodEaten(req.RoomCode, connID, req.PointsOrDefault(d.foodPoints), env.Data)

	case protocol.EventGameOver:
		var ref protocol.RoomRef
		d.decode(connID, env, &ref)
		d.relay.GameOver(ref.RoomCode, env.Data)

	default:
		d.logger.Warn("unknown event",
			zap.String("conn", connID),
			zap.String("event", string(env.Event)),
		)
	}
}

// HandleClose runs disconnect cleanup for a closed transport.
func (d *Dispatcher) HandleClose(connID string) {
	d.manager.HandleDisconnect(connID)
}

// decode unmarshals the envelope payload into dst. A malformed or absent
// payload leaves dst at its zero value so field defaults apply.
func (d *Dispatcher) decode(connID string, env protocol.Envelope, dst any) {
	if len(env.Data) == 0 {
		return
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		d.logger.Debug("malformed payload, using defaults",
			zap.String("conn", connID),
			zap.String("event", string(env.Event)),
			zap.Error(err),
		)
	}
}

// pushError surfaces a join failure to the requesting connection.
func (d *Dispatcher) pushError(connID string, err error) {
	data := protocol.ErrorData{}
	switch {
	case errors.Is(err, ErrRoomNotFound):
		data.Code = protocol.ErrCodeRoomNotFound
		data.Message = "Room not found"
	case errors.Is(err, ErrRoomFull):
		data.Code = protocol.ErrCodeRoomFull
		data.Message = "Room is full"
	case errors.Is(err, ErrAlreadyJoined):
		data.Code = protocol.ErrCodeAlreadyJoined
		data.Message = "Already in room"
	default:
		data.Code = "internal"
		data.Message = err.Error()
	}
	d.pushTo(connID, protocol.EventError, data)
}
