// Package web serves the mock guest-profile HTTP endpoints. The real
// profile service lives elsewhere; these handlers return canned,
// stateless responses so the client's offline/guest flows work against a
// lone coordinator.
package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/cory-johannsen/snakebattle/internal/game/rng"
)

// Profile is the canned guest-profile response shape.
type Profile struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	HighScore       int    `json:"high_score"`
	GamesPlayed     int    `json:"games_played"`
	LevelsCompleted int    `json:"levels_completed"`
}

// ProfileAPI implements the mock endpoints. It holds no state between
// requests.
type ProfileAPI struct {
	src    rng.Source
	logger *zap.Logger
}

// NewProfileAPI creates the mock profile handlers.
//
// Precondition: src and logger must be non-nil.
func NewProfileAPI(src rng.Source, logger *zap.Logger) *ProfileAPI {
	return &ProfileAPI{src: src, logger: logger}
}

type createPlayerRequest struct {
	Name string `json:"name"`
}

// CreatePlayer handles POST /api/players: a guest profile with a random
// id and zeroed stats. Nothing is stored.
func (api *ProfileAPI) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req createPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		req.Name = "Player"
	}

	api.writeJSON(w, Profile{
		ID:   1000 + api.src.Intn(9000),
		Name: req.Name,
	})
}

// GetPlayer handles GET /api/players/{id}: a canned profile for any
// numeric id.
func (api *ProfileAPI) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	api.writeJSON(w, Profile{
		ID:   id,
		Name: "Player" + strconv.Itoa(id),
	})
}

func (api *ProfileAPI) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		api.logger.Error("encoding profile response", zap.Error(err))
	}
}
