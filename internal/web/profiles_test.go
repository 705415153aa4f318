package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/snakebattle/internal/game/rng"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	api := NewProfileAPI(rng.NewCryptoSource(), zaptest.NewLogger(t))
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/players", api.CreatePlayer)
	mux.HandleFunc("GET /api/players/{id}", api.GetPlayer)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCreatePlayer(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/players", "application/json", strings.NewReader(`{"name":"Alice"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p Profile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.Equal(t, "Alice", p.Name)
	assert.GreaterOrEqual(t, p.ID, 1000)
	assert.Less(t, p.ID, 10000)
	assert.Equal(t, 0, p.HighScore)
	assert.Equal(t, 0, p.GamesPlayed)
	assert.Equal(t, 0, p.LevelsCompleted)
}

func TestCreatePlayerDefaultsName(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/players", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	var p Profile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.Equal(t, "Player", p.Name)
}

func TestCreatePlayerMalformedBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/players", "application/json", strings.NewReader(`{not json`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p Profile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.Equal(t, "Player", p.Name)
}

func TestGetPlayer(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/players/4242")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p Profile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.Equal(t, 4242, p.ID)
	assert.Equal(t, "Player4242", p.Name)
	assert.Equal(t, 0, p.HighScore)
}

func TestGetPlayerNonNumericID(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/players/bob")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStateless(t *testing.T) {
	// Two fetches of the same id return identical canned data; nothing is
	// recorded between requests.
	srv := newTestServer(t)

	for i := 0; i < 2; i++ {
		resp, err := http.Get(srv.URL + "/api/players/7")
		require.NoError(t, err)
		var p Profile
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
		resp.Body.Close()
		assert.Equal(t, Profile{ID: 7, Name: "Player7"}, p)
	}
}
