// Package room provides the room state model and the in-memory room store
// for the session coordinator.
package room

// Phase is the lifecycle stage of a match within a room.
// Transitions are strictly forward: Waiting → Playing → Finished.
type Phase int

const (
	// PhaseWaiting is the initial phase: the room exists but the match
	// has not started.
	PhaseWaiting Phase = iota
	// PhasePlaying means the match is in progress.
	PhasePlaying
	// PhaseFinished means the match ended. Terminal.
	PhaseFinished
)

// String returns the wire name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhasePlaying:
		return "playing"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Player is one participant in a room, keyed by connection id.
type Player struct {
	// ID is the owning connection's unique id.
	ID string
	// Name is the display name shown to peers.
	Name string
	// Host marks the room's host. At most one player per room is host
	// while the room is non-empty.
	Host bool
	// Score is the player's accumulated score. Never negative.
	Score int
}

// PlayerView is the wire representation of a Player in roster broadcasts.
type PlayerView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Host  bool   `json:"isHost"`
	Score int    `json:"score"`
}

// Room holds the authoritative shared state of one match.
// A Room is owned by the Store and must only be mutated inside
// Store.Update, which holds the store lock.
type Room struct {
	// Code is the room's unique join code.
	Code string

	players map[string]*Player
	order   []string // connection ids in insertion order
	phase   Phase
}

func newRoom(code string) *Room {
	return &Room{
		Code:    code,
		players: make(map[string]*Player),
		phase:   PhaseWaiting,
	}
}

// Phase returns the room's current phase.
func (r *Room) Phase() Phase {
	return r.phase
}

// AdvanceTo moves the phase forward to target.
//
// Postcondition: Returns true if the phase is now target (including the
// no-op case where it already was); returns false if target is behind the
// current phase, in which case nothing changes.
func (r *Room) AdvanceTo(target Phase) bool {
	if target < r.phase {
		return false
	}
	r.phase = target
	return true
}

// Size returns the number of players in the room.
func (r *Room) Size() int {
	return len(r.players)
}

// Has reports whether the given connection is a member of the room.
func (r *Room) Has(connID string) bool {
	_, ok := r.players[connID]
	return ok
}

// Player returns the member with the given connection id.
//
// Postcondition: Returns (player, true) if found, or (nil, false) otherwise.
func (r *Room) Player(connID string) (*Player, bool) {
	p, ok := r.players[connID]
	return p, ok
}

// Add inserts a player, preserving insertion order for host migration
// and roster serialization.
//
// Precondition: p.ID must not already be a member; capacity checks are
// the caller's responsibility.
func (r *Room) Add(p *Player) {
	r.players[p.ID] = p
	r.order = append(r.order, p.ID)
}

// Remove deletes the member with the given connection id.
//
// Postcondition: Returns the removed player, or (nil, false) if the
// connection was not a member.
func (r *Room) Remove(connID string) (*Player, bool) {
	p, ok := r.players[connID]
	if !ok {
		return nil, false
	}
	delete(r.players, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return p, true
}

// EnsureHost promotes the insertion-earliest remaining member to host if
// the room is non-empty and no member currently holds host.
//
// Postcondition: Exactly one member is host whenever the room is non-empty.
// Returns the promoted player's id and true if a promotion happened.
func (r *Room) EnsureHost() (string, bool) {
	if len(r.players) == 0 {
		return "", false
	}
	for _, p := range r.players {
		if p.Host {
			return "", false
		}
	}
	next := r.players[r.order[0]]
	next.Host = true
	return next.ID, true
}

// MemberIDs returns the member connection ids in insertion order.
//
// Postcondition: Returns a fresh slice; mutating it does not affect the room.
func (r *Room) MemberIDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Roster derives a fresh ordered roster snapshot. It is rebuilt on every
// call so broadcasts never carry stale state.
func (r *Room) Roster() []PlayerView {
	roster := make([]PlayerView, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		roster = append(roster, PlayerView{
			ID:    p.ID,
			Name:  p.Name,
			Host:  p.Host,
			Score: p.Score,
		})
	}
	return roster
}

// View is an immutable snapshot of a room, safe to use outside the
// store lock.
type View struct {
	Code    string
	Phase   Phase
	Players []PlayerView
}

// Snapshot captures the room as a View.
func (r *Room) Snapshot() View {
	return View{
		Code:    r.Code,
		Phase:   r.phase,
		Players: r.Roster(),
	}
}
