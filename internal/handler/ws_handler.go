package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/roshambo/internal/auth"
	"github.com/freeeve/roshambo/internal/logger"
	"github.com/freeeve/roshambo/internal/service"
	"github.com/freeeve/roshambo/pkg/rpsls"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = 54 * time.Second // Must be less than pongWait
	maxMsgSize  = 4096
	sendBufSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS handled by middleware
	},
}

// WSHandler handles WebSocket connections: spectators on /ws and players on
// /play.
type WSHandler struct {
	hub    *Hub
	jwtMgr *auth.JWTManager
	svc    *service.MatchService
}

// NewWSHandler creates a WSHandler.
func NewWSHandler(hub *Hub, jwtMgr *auth.JWTManager, svc *service.MatchService) *WSHandler {
	return &WSHandler{hub: hub, jwtMgr: jwtMgr, svc: svc}
}

// connect authenticates via the ?token= query parameter (WebSocket can't
// send headers), upgrades, and starts the write pump.
func (h *WSHandler) connect(w http.ResponseWriter, r *http.Request) *WSConn {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, `{"error":"missing token parameter"}`, http.StatusUnauthorized)
		return nil
	}
	claims, err := h.jwtMgr.ValidateAccessToken(tokenStr)
	if err != nil {
		http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
		return nil
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return nil
	}

	c := &WSConn{
		conn:     conn,
		playerID: claims.PlayerID,
		send:     make(chan []byte, sendBufSize),
	}
	h.hub.Register(c)
	go h.writePump(c)
	log.Info().Str("playerId", c.playerID).Int("total", h.hub.ConnectionCount()).Msg("WebSocket client connected")
	return c
}

// ServeWS handles GET /api/v1/ws, a spectator socket that follows matches
// by subscribing to their IDs.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	c := h.connect(w, r)
	if c == nil {
		return
	}
	c.sendEvent(WSEvent{Type: EventConnected, Data: map[string]any{}})

	go h.readPump(c, func(msg ClientMessage) bool {
		switch msg.Action {
		case "subscribe":
			if msg.MatchID != "" {
				h.hub.Subscribe(c, msg.MatchID)
			}
		case "unsubscribe":
			if msg.MatchID != "" {
				h.hub.Unsubscribe(c, msg.MatchID)
			}
		}
		return true
	})
}

// ServePlay handles GET /api/v1/play. The socket owns one new match: every
// {"move":...} frame plays a round and {"action":"finish"} ends the match
// and closes the socket.
func (h *WSHandler) ServePlay(w http.ResponseWriter, r *http.Request) {
	c := h.connect(w, r)
	if c == nil {
		return
	}
	// The request context ends when this handler returns; the socket lives on.
	ctx := context.WithoutCancel(r.Context())

	m, err := h.svc.CreateMatch(ctx, c.playerID)
	if err != nil {
		c.sendEvent(WSEvent{Type: EventError, Data: map[string]string{"error": err.Error()}})
		h.hub.Unregister(c)
		return
	}
	c.sendEvent(WSEvent{Type: service.EventMatchCreated, MatchID: m.ID, Data: m})

	matchLog := logger.ForMatch(ctx, m.ID, c.playerID)
	go h.readPump(c, func(msg ClientMessage) bool {
		if msg.Action == "finish" {
			done, err := h.svc.Finish(ctx, m.ID, c.playerID)
			if err != nil {
				c.sendEvent(WSEvent{Type: EventError, MatchID: m.ID, Data: map[string]string{"error": err.Error()}})
				return false
			}
			c.sendEvent(WSEvent{Type: service.EventMatchFinished, MatchID: m.ID, Data: done})
			return false
		}

		move, err := rpsls.ParseMove(msg.Move)
		if err != nil {
			c.sendEvent(WSEvent{Type: EventError, MatchID: m.ID, Data: map[string]string{"error": err.Error()}})
			return true
		}
		round, err := h.svc.Play(ctx, m.ID, c.playerID, move)
		if round != nil {
			c.sendEvent(WSEvent{Type: EventRound, MatchID: m.ID, Data: round})
		}
		if err != nil {
			matchLog.Warn().Err(err).Msg("Play over WebSocket failed")
			c.sendEvent(WSEvent{Type: EventError, MatchID: m.ID, Data: map[string]string{"error": err.Error()}})
			return statusFor(err) == http.StatusBadRequest
		}
		if round.MatchOver {
			if done, err := h.svc.GetMatch(ctx, m.ID); err == nil {
				c.sendEvent(WSEvent{Type: service.EventMatchFinished, MatchID: m.ID, Data: done})
			}
			return false
		}
		return true
	})
}

// readPump reads client frames until the connection fails or handle returns
// false. Unregistering closes the send queue, which lets the write pump
// flush and close the connection.
func (h *WSHandler) readPump(c *WSConn, handle func(ClientMessage) bool) {
	defer func() {
		h.hub.Unregister(c)
		log.Info().Str("playerId", c.playerID).Msg("WebSocket client disconnected")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("playerId", c.playerID).Msg("WebSocket unexpected close")
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendEvent(WSEvent{Type: EventError, Data: map[string]string{"error": "invalid message"}})
			continue
		}
		if !handle(msg) {
			return
		}
	}
}

// writePump writes queued messages, one frame each, and pings the client.
func (h *WSHandler) writePump(c *WSConn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
