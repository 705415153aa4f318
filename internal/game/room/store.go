package room

import (
	"errors"
	"sync"

	"github.com/cory-johannsen/snakebattle/internal/game/rng"
)

// ErrNotFound is returned by Store operations when no live room has the
// requested code.
var ErrNotFound = errors.New("room not found")

// codeAlphabet is the character set for room codes: uppercase A–Z and 0–9.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Store owns the mapping from room code to live Room. It is the single
// piece of shared mutable state in the coordinator; every compound
// read-modify-write runs under its mutex via Update.
//
// Invariant: no two live rooms share a code.
// Invariant: the store never holds an empty room.
type Store struct {
	mu      sync.Mutex
	rooms   map[string]*Room
	src     rng.Source
	codeLen int
}

// NewStore creates an empty Store.
//
// Precondition: src must be non-nil; codeLen must be > 0.
func NewStore(src rng.Source, codeLen int) *Store {
	return &Store{
		rooms:   make(map[string]*Room),
		src:     src,
		codeLen: codeLen,
	}
}

// generateCode draws a fresh code, resampling until it does not collide
// with any live room. Caller must hold s.mu.
func (s *Store) generateCode() string {
	buf := make([]byte, s.codeLen)
	for {
		for i := range buf {
			buf[i] = codeAlphabet[s.src.Intn(len(codeAlphabet))]
		}
		code := string(buf)
		if _, exists := s.rooms[code]; !exists {
			return code
		}
	}
}

// Create allocates a unique code and inserts a new Waiting room containing
// only the given host player. Code generation and insertion happen under
// one critical section, so a generated code can never race with another
// creation.
//
// Precondition: host must be non-nil with a non-empty ID.
// Postcondition: The returned view describes a live room with one host member.
func (s *Store) Create(host *Player) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := s.generateCode()
	r := newRoom(code)
	host.Host = true
	r.Add(host)
	s.rooms[code] = r
	return r.Snapshot()
}

// Get returns a snapshot of the room with the given code.
//
// Postcondition: Returns (view, true) if the room is live, or (zero, false)
// otherwise.
func (s *Store) Get(code string) (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[code]
	if !ok {
		return View{}, false
	}
	return r.Snapshot(), true
}

// Update runs fn on the live room with the given code while holding the
// store mutex. This is the atomicity primitive for join capacity checks,
// leave plus host migration, and score increments: concurrent callers
// serialize here.
//
// If fn leaves the room empty, the room is deleted before Update returns —
// an empty room is never observable.
//
// Precondition: fn must not block on network I/O and must not call back
// into the Store.
// Postcondition: Returns ErrNotFound if no room has the code, otherwise
// fn's error.
func (s *Store) Update(code string, fn func(r *Room) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[code]
	if !ok {
		return ErrNotFound
	}
	err := fn(r)
	if r.Size() == 0 {
		delete(s.rooms, code)
	}
	return err
}

// Len returns the number of live rooms.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// Codes returns the codes of all live rooms, in no particular order.
func (s *Store) Codes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	codes := make([]string, 0, len(s.rooms))
	for code := range s.rooms {
		codes = append(codes, code)
	}
	return codes
}
