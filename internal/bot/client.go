package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/roshambo/internal/model"
	"github.com/freeeve/roshambo/pkg/rpsls"
)

// WSEvent mirrors handler.WSEvent for client-side decoding.
type WSEvent struct {
	Type    string          `json:"type"`
	MatchID string          `json:"match_id"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to a running server as one guest player.
type Client struct {
	baseURL  string
	token    string
	playerID string
	httpC    *http.Client

	mu       sync.Mutex
	wsConn   *websocket.Conn
	events   chan WSEvent
	closedWS bool
}

// NewClient creates a client targeting the given server URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		events:  make(chan WSEvent, 64),
		httpC:   &http.Client{Timeout: 30 * time.Second},
	}
}

// PlayerID returns the guest ID assigned at login.
func (c *Client) PlayerID() string { return c.playerID }

// Login obtains a guest token pair.
func (c *Client) Login(ctx context.Context) error {
	var tokens struct {
		PlayerID    string `json:"player_id"`
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/guest", nil, &tokens); err != nil {
		return fmt.Errorf("guest login: %w", err)
	}
	c.token = tokens.AccessToken
	c.playerID = tokens.PlayerID
	log.Debug().Str("playerId", c.playerID).Msg("Client logged in")
	return nil
}

// CreateMatch starts a match against the server's engine.
func (c *Client) CreateMatch(ctx context.Context) (*model.Match, error) {
	var m model.Match
	if err := c.do(ctx, http.MethodPost, "/api/v1/matches", nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Play submits one move and returns the resolved round.
func (c *Client) Play(ctx context.Context, matchID string, move rpsls.Move) (*model.Round, error) {
	var round model.Round
	body := map[string]string{"move": move.String()}
	if err := c.do(ctx, http.MethodPost, "/api/v1/matches/"+matchID+"/moves", body, &round); err != nil {
		return nil, err
	}
	return &round, nil
}

// Finish ends a match and returns the final tallies.
func (c *Client) Finish(ctx context.Context, matchID string) (*model.Match, error) {
	var m model.Match
	if err := c.do(ctx, http.MethodPost, "/api/v1/matches/"+matchID+"/finish", nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMatch fetches a match summary.
func (c *Client) GetMatch(ctx context.Context, matchID string) (*model.Match, error) {
	var m model.Match
	if err := c.do(ctx, http.MethodGet, "/api/v1/matches/"+matchID, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ConnectWS opens the spectator socket and starts reading events.
func (c *Client) ConnectWS(ctx context.Context) error {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/api/v1/ws?token=" + url.QueryEscape(c.token)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("ws dial: %w", err)
	}
	c.wsConn = conn
	go c.readWSLoop()
	return nil
}

// Subscribe asks for the events of one match.
func (c *Client) Subscribe(matchID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wsConn.WriteJSON(map[string]string{"action": "subscribe", "match_id": matchID})
}

// Events returns the channel of incoming WebSocket events. It is closed
// when the socket goes away.
func (c *Client) Events() <-chan WSEvent { return c.events }

// CloseWS closes the WebSocket connection.
func (c *Client) CloseWS() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wsConn != nil && !c.closedWS {
		c.closedWS = true
		c.wsConn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.wsConn.Close()
	}
}

func (c *Client) readWSLoop() {
	defer close(c.events)
	for {
		_, msg, err := c.wsConn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closedWS
			c.mu.Unlock()
			if !closed {
				log.Debug().Err(err).Str("playerId", c.playerID).Msg("WS read error")
			}
			return
		}
		var event WSEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			continue
		}
		c.events <- event
	}
}

// do sends a JSON request and decodes the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpC.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(body))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
