package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/snakebattle/internal/config"
	"github.com/cory-johannsen/snakebattle/internal/game/session"
	"github.com/cory-johannsen/snakebattle/internal/protocol"
)

// maxFrameSize bounds inbound frames; gameplay events are tiny.
const maxFrameSize = 8192

// client runs the read and write pumps for one websocket connection.
// The read pump decodes envelopes and dispatches them to the Handler in
// arrival order, which is what preserves per-sender event ordering. The
// write pump drains the connection's Entity queue.
type client struct {
	id      string
	sock    *websocket.Conn
	entity  *session.Entity
	handler Handler
	cfg     config.ServerConfig
	logger  *zap.Logger

	closeOnce sync.Once
}

func newClient(id string, sock *websocket.Conn, entity *session.Entity, handler Handler, cfg config.ServerConfig, logger *zap.Logger) *client {
	return &client{
		id:      id,
		sock:    sock,
		entity:  entity,
		handler: handler,
		cfg:     cfg,
		logger:  logger,
	}
}

// run services the connection until the transport closes, then triggers
// disconnect cleanup. A dropped connection is terminal; there is no retry.
func (c *client) run() {
	start := time.Now()

	c.handler.HandleOpen(c.id)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writePump()
	}()

	c.readPump()

	// HandleClose unregisters the connection, which closes the entity and
	// lets the write pump drain out.
	c.handler.HandleClose(c.id)
	c.close()
	wg.Wait()

	c.logger.Debug("session ended",
		zap.String("conn", c.id),
		zap.Duration("duration", time.Since(start)),
	)
}

func (c *client) readPump() {
	c.sock.SetReadLimit(maxFrameSize)
	_ = c.sock.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	c.sock.SetPongHandler(func(string) error {
		return c.sock.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	})

	for {
		_, frame, err := c.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("read failed",
					zap.String("conn", c.id),
					zap.Error(err),
				)
			}
			return
		}

		env, err := protocol.Decode(frame)
		if err != nil {
			// One bad frame does not cost the client its connection.
			c.logger.Debug("dropping malformed frame",
				zap.String("conn", c.id),
				zap.Error(err),
			)
			continue
		}
		c.handler.HandleEvent(c.id, env)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-c.entity.Events():
			_ = c.sock.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if !ok {
				_ = c.sock.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.sock.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug("write failed",
					zap.String("conn", c.id),
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			_ = c.sock.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close shuts the underlying socket. Safe to call from multiple
// goroutines; the acceptor also calls it during Stop.
func (c *client) close() {
	c.closeOnce.Do(func() {
		_ = c.sock.Close()
	})
}
