// Package protocol defines the JSON-over-websocket message surface between
// the coordinator and game clients: event names, the frame envelope, and
// typed payloads with their documented defaults.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/cory-johannsen/snakebattle/internal/game/room"
)

// EventType enumerates every event name on the wire. Inbound frames with
// a name outside this set are dropped.
type EventType string

// Inbound events (client → coordinator).
const (
	EventCreateRoom EventType = "create_room"
	EventJoinRoom   EventType = "join_room"
	EventLeaveRoom  EventType = "leave_room"
	EventStartGame  EventType = "start_game"
	EventGameMove   EventType = "game_move"
	EventFoodEaten  EventType = "game_food_eaten"
	EventGameOver   EventType = "game_over"
)

// Outbound events (coordinator → client).
const (
	EventConnected    EventType = "connected"
	EventRoomCreated  EventType = "room_created"
	EventRoomJoined   EventType = "room_joined"
	EventRoomUpdated  EventType = "room_updated"
	EventPlayerJoined EventType = "player_joined"
	EventPlayerLeft   EventType = "player_left"
	EventGameStarted  EventType = "game_started"
	EventError        EventType = "error"
)

// Defaults for absent payload fields.
const (
	// DefaultPlayerName substitutes a missing or empty playerName.
	DefaultPlayerName = "Player"
)

// Envelope is the frame structure in both directions.
type Envelope struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Decode parses a raw frame into an Envelope.
//
// Postcondition: Returns a non-nil error on malformed JSON or a missing
// event name; the Data field may be nil for events without a payload.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("decoding frame: %w", err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("frame missing event name")
	}
	return env, nil
}

// Encode builds a wire frame for the given event and payload.
//
// Precondition: data must be JSON-marshallable, or nil for a bare event.
func Encode(event EventType, data any) ([]byte, error) {
	env := Envelope{Event: event}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encoding %s payload: %w", event, err)
		}
		env.Data = raw
	}
	frame, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encoding %s frame: %w", event, err)
	}
	return frame, nil
}

// CreateRoomRequest is the create_room payload.
type CreateRoomRequest struct {
	PlayerName string `json:"playerName"`
}

// Name returns the requested display name, defaulting when absent.
func (r CreateRoomRequest) Name() string {
	if r.PlayerName == "" {
		return DefaultPlayerName
	}
	return r.PlayerName
}

// JoinRoomRequest is the join_room payload.
type JoinRoomRequest struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

// Name returns the requested display name, defaulting when absent.
func (r JoinRoomRequest) Name() string {
	if r.PlayerName == "" {
		return DefaultPlayerName
	}
	return r.PlayerName
}

// RoomRef is the shared shape of payloads that only address a room:
// leave_room, start_game, and the opaque relay events. The rest of the
// relay payload stays raw and is forwarded verbatim.
type RoomRef struct {
	RoomCode string `json:"roomCode"`
}

// FoodEatenRequest is the game_food_eaten payload.
type FoodEatenRequest struct {
	RoomCode string `json:"roomCode"`
	Points   int    `json:"points"`
}

// PointsOrDefault returns the score delta, substituting def when the
// client omitted points or sent a non-positive value.
func (r FoodEatenRequest) PointsOrDefault(def int) int {
	if r.Points <= 0 {
		return def
	}
	return r.Points
}

// RoomData is the roster payload carried by room_created, room_joined,
// and room_updated.
type RoomData struct {
	RoomCode string            `json:"roomCode"`
	Players  []room.PlayerView `json:"players"`
}

// PlayerJoinedData announces a new member to the room.
type PlayerJoinedData struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PlayerLeftData announces a departed member to the room.
type PlayerLeftData struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

// GameStartedData carries the match duration in seconds.
type GameStartedData struct {
	StartTime int `json:"startTime"`
}

// ConnectedData is the greeting sent on websocket open.
type ConnectedData struct {
	Status string `json:"status"`
}

// Error codes surfaced to the requesting connection.
const (
	ErrCodeRoomNotFound  = "room_not_found"
	ErrCodeRoomFull      = "room_full"
	ErrCodeAlreadyJoined = "already_joined"
)

// ErrorData is a structured rejection of one specific request.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
