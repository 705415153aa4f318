// Package ws provides the websocket transport: an HTTP acceptor that
// upgrades connections, binds each one to the connection registry, and
// forwards decoded events into the coordinator.
package ws

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/snakebattle/internal/config"
	"github.com/cory-johannsen/snakebattle/internal/game/session"
	"github.com/cory-johannsen/snakebattle/internal/protocol"
)

// Handler receives the lifecycle of every websocket connection: an open
// notification, each decoded inbound event in arrival order, and a close
// notification when the transport drops.
type Handler interface {
	HandleOpen(connID string)
	HandleEvent(connID string, env protocol.Envelope)
	HandleClose(connID string)
}

// Acceptor serves the /ws endpoint, upgrades each request, and runs a
// client pump pair per connection until Stop.
type Acceptor struct {
	cfg      config.ServerConfig
	registry *session.Registry
	handler  Handler
	logger   *zap.Logger

	mux      *http.ServeMux
	upgrader websocket.Upgrader

	server   *http.Server
	listener net.Listener
	wg       sync.WaitGroup
	quit     chan struct{}
	mu       sync.Mutex
	running  bool
	clients  map[*client]struct{}
}

// NewAcceptor creates a websocket acceptor with the given configuration.
//
// Precondition: registry, handler, and logger must be non-nil.
// Postcondition: Returns an Acceptor ready to be started with ListenAndServe.
func NewAcceptor(cfg config.ServerConfig, registry *session.Registry, handler Handler, logger *zap.Logger) *Acceptor {
	a := &Acceptor{
		cfg:      cfg,
		registry: registry,
		handler:  handler,
		logger:   logger,
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  maxFrameSize,
			WriteBufferSize: maxFrameSize,
			// The game client is served from arbitrary origins (the
			// original backend ran with CORS wide open).
			CheckOrigin: func(*http.Request) bool { return true },
		},
		quit:    make(chan struct{}),
		clients: make(map[*client]struct{}),
	}
	a.mux.HandleFunc("GET /ws", a.serveWS)
	return a
}

// Handle registers an additional HTTP route on the acceptor's mux, e.g.
// the mock profile API.
//
// Precondition: Must be called before ListenAndServe.
func (a *Acceptor) Handle(pattern string, h http.Handler) {
	a.mux.Handle(pattern, h)
}

// ListenAndServe starts the HTTP listener and serves websocket upgrades
// until Stop is called. This method blocks until the acceptor is stopped.
//
// Precondition: The acceptor must not already be running.
// Postcondition: The listener is closed when this method returns.
func (a *Acceptor) ListenAndServe() error {
	start := time.Now()

	listener, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}

	server := &http.Server{Handler: a.mux}

	a.mu.Lock()
	a.listener = listener
	a.server = server
	a.running = true
	a.mu.Unlock()

	a.logger.Info("websocket acceptor listening",
		zap.String("addr", listener.Addr().String()),
		zap.Duration("startup", time.Since(start)),
	)

	if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
		select {
		case <-a.quit:
			return nil
		default:
			return fmt.Errorf("serving: %w", err)
		}
	}
	return nil
}

// serveWS upgrades one HTTP request, registers the connection, and runs
// its pumps until the transport closes.
func (a *Acceptor) serveWS(w http.ResponseWriter, r *http.Request) {
	sock, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Error("upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	id := uuid.NewString()

	// Registration happens under the acceptor lock so an upgrade racing
	// with Stop cannot slip a client past Stop's close loop.
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		_ = sock.Close()
		return
	}
	conn := a.registry.Register(id, a.cfg.EventBuffer)
	c := newClient(id, sock, conn.Entity, a.handler, a.cfg, a.logger)
	a.clients[c] = struct{}{}
	a.wg.Add(1)
	a.mu.Unlock()

	a.logger.Info("client connected",
		zap.String("conn", id),
		zap.String("remote_addr", r.RemoteAddr),
	)
	go func() {
		defer a.wg.Done()
		c.run()

		a.mu.Lock()
		delete(a.clients, c)
		a.mu.Unlock()
	}()
}

// Stop gracefully stops the acceptor, closing the listener and every
// live connection, and waits for all pumps to finish.
//
// Postcondition: All connections are closed and goroutines have exited.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	close(a.quit)
	if a.server != nil {
		_ = a.server.Close()
	}
	for c := range a.clients {
		c.close()
	}
	a.mu.Unlock()

	a.wg.Wait()
	a.logger.Info("websocket acceptor stopped")
}

// Addr returns the actual listening address, or empty string if not yet listening.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return ""
}

// IsRunning returns whether the acceptor is currently accepting connections.
func (a *Acceptor) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}
