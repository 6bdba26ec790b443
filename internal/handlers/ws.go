// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const outChanSize = 32

// WSHandler upgrades the HTTP connection to WebSocket and runs the
// connection's read loop. Each connection is assigned a fresh player id; the
// id lives exactly as long as the connection. When the read loop exits for
// any reason the player is removed from whatever room they occupied.
func WSHandler(logger *logrus.Logger, srv *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"uno"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer ws.Close(websocket.StatusInternalError, "handler finished")

		if ws.Subprotocol() != "uno" {
			ws.Close(BadSubprotocolError, "client must speak the uno subprotocol")
			return
		}

		c := &conn{
			id:  uuid.New(),
			out: make(chan any, outChanSize),
		}
		logger.Infof("connection %s established from %s", c.id, r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		go writePump(ctx, ws, c, logger)
		readPump(ctx, ws, srv, c, logger)

		// Read loop exited: the player is gone, whatever the cause.
		srv.HandleDisconnect(c)
		logger.Infof("connection %s cleanup complete", c.id)
	}
}

// readPump reads client requests until the connection dies, dispatching each
// one to the server.
func readPump(ctx context.Context, ws *websocket.Conn, srv *Server, c *conn, logger *logrus.Logger) {
	for {
		typ, data, err := ws.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("connection %s closed normally", c.id)
			} else if strings.Contains(err.Error(), "context canceled") {
				logger.Infof("connection %s context canceled", c.id)
			} else {
				logger.Warnf("read error on connection %s: %v (status %d)", c.id, err, status)
			}
			return
		}
		if typ != websocket.MessageText {
			logger.Warnf("connection %s sent non-text message type %d, ignoring", c.id, typ)
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("invalid json from connection %s: %v", c.id, err)
			c.send(errEvent("invalid JSON format"))
			continue
		}
		srv.Handle(c, msg)
	}
}

// writePump drains the connection's out channel onto the wire and keeps the
// connection alive with periodic pings.
func writePump(ctx context.Context, ws *websocket.Conn, c *conn, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.out:
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("failed to marshal outgoing message for %s: %v", c.id, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = ws.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("write failed for connection %s: %v", c.id, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := ws.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("ping failed for connection %s, assuming disconnect: %v", c.id, err)
				return
			}
		}
	}
}
