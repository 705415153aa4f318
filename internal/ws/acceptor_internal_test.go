package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/snakebattle/internal/config"
	"github.com/cory-johannsen/snakebattle/internal/game/session"
	"github.com/cory-johannsen/snakebattle/internal/protocol"
)

type discardHandler struct{}

func (discardHandler) HandleOpen(string)                     {}
func (discardHandler) HandleEvent(string, protocol.Envelope) {}
func (discardHandler) HandleClose(string)                    {}

// A stopped acceptor must refuse to register late upgrades: Stop's close
// loop has already run, so a client slipping in afterward would never be
// closed by it.
func TestServeWSRejectsWhenNotRunning(t *testing.T) {
	registry := session.NewRegistry()
	a := NewAcceptor(config.Default().Server, registry, discardHandler{}, zaptest.NewLogger(t))

	// Never started: running is false, exactly the post-Stop state the
	// registration check guards against.
	srv := httptest.NewServer(http.HandlerFunc(a.serveWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	sock, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer sock.Close()

	// The server side closed immediately after the upgrade, so the first
	// read fails and nothing was registered or tracked.
	_, _, err = sock.ReadMessage()
	require.Error(t, err)

	assert.Equal(t, 0, registry.Count())
	a.mu.Lock()
	assert.Empty(t, a.clients)
	a.mu.Unlock()
}
