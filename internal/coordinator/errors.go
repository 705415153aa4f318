package coordinator

import "errors"

// Join failures surfaced synchronously to the requesting connection.
// None of them mutate room state.
var (
	// ErrRoomNotFound means the join code matches no live room.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomFull means the room already holds its maximum players.
	ErrRoomFull = errors.New("room is full")
	// ErrAlreadyJoined means the connection is already a member of the room.
	ErrAlreadyJoined = errors.New("already in room")
)
