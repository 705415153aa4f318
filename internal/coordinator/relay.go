package coordinator

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/cory-johannsen/snakebattle/internal/game/room"
	"github.com/cory-johannsen/snakebattle/internal/game/session"
	"github.com/cory-johannsen/snakebattle/internal/protocol"
)

// Relay dispatches gameplay events to a room's peers and applies the
// score and phase mutations they imply. Events addressed to a room that
// no longer exists are dropped silently: the room vanishing is a benign
// race with the peer's own disconnect, not a client error.
type Relay struct {
	notifier
	store *room.Store
	// matchDurationSecs is announced in every game_started broadcast.
	matchDurationSecs int
}

// NewRelay creates a Relay.
//
// Precondition: store, registry, and logger must be non-nil;
// matchDurationSecs must be positive.
func NewRelay(store *room.Store, registry *session.Registry, matchDurationSecs int, logger *zap.Logger) *Relay {
	return &Relay{
		notifier:          notifier{registry: registry, logger: logger},
		store:             store,
		matchDurationSecs: matchDurationSecs,
	}
}

// StartGame transitions the room Waiting → Playing and broadcasts the
// match duration. Idempotent when the room is already Playing (the
// broadcast repeats); dropped when the match is already Finished.
func (rl *Relay) StartGame(code string) {
	err := rl.store.Update(code, func(r *room.Room) error {
		if !r.AdvanceTo(room.PhasePlaying) {
			rl.logger.Debug("start_game after game over",
				zap.String("room", code),
			)
			return nil
		}
		rl.broadcast(r, protocol.EventGameStarted, protocol.GameStartedData{
			StartTime: rl.matchDurationSecs,
		})
		rl.logger.Info("game started",
			zap.String("room", code),
			zap.Int("duration_secs", rl.matchDurationSecs),
		)
		return nil
	})
	rl.logVanished(code, "start_game", err)
}

// RelayMove forwards an opaque movement payload to every member of the
// room except the sender. The payload is never validated; movement
// legality is the client's concern.
func (rl *Relay) RelayMove(code, senderID string, payload json.RawMessage) {
	err := rl.store.Update(code, func(r *room.Room) error {
		rl.broadcastRaw(r, protocol.EventGameMove, payload, senderID)
		return nil
	})
	rl.logVanished(code, "game_move", err)
}

// FoodEaten increments the sender's score by points, then broadcasts the
// raw event followed by a fresh roster snapshot. Both broadcasts run in
// the same store critical section as the increment, so no member can see
// a later event for this room before the score update.
func (rl *Relay) FoodEaten(code, senderID string, points int, payload json.RawMessage) {
	err := rl.store.Update(code, func(r *room.Room) error {
		if p, ok := r.Player(senderID); ok {
			p.Score += points
		}
		rl.broadcastRaw(r, protocol.EventFoodEaten, payload)
		rl.broadcast(r, protocol.EventRoomUpdated, roomData(r.Snapshot()))
		return nil
	})
	rl.logVanished(code, "game_food_eaten", err)
}

// GameOver transitions the room to Finished and broadcasts the summary
// payload verbatim. The room is not deleted; members leave on their own,
// which triggers the usual lifecycle cleanup.
func (rl *Relay) GameOver(code string, payload json.RawMessage) {
	err := rl.store.Update(code, func(r *room.Room) error {
		r.AdvanceTo(room.PhaseFinished)
		rl.broadcastRaw(r, protocol.EventGameOver, payload)
		rl.logger.Info("game over", zap.String("room", code))
		return nil
	})
	rl.logVanished(code, "game_over", err)
}

func (rl *Relay) logVanished(code, event string, err error) {
	if errors.Is(err, room.ErrNotFound) {
		rl.logger.Debug("event for vanished room",
			zap.String("room", code),
			zap.String("event", event),
		)
	}
}
