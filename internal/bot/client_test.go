package bot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/freeeve/roshambo/internal/model"
	"github.com/freeeve/roshambo/pkg/rpsls"
)

// fakeServer serves the subset of the match API the client uses, backed by
// a real engine.
type fakeServer struct {
	mu        sync.Mutex
	maxRounds int
	match     model.Match
	engine    *Engine
	pending   rpsls.Move
	conns     []*websocket.Conn
	finished  bool
}

func newFakeServer(t *testing.T, maxRounds int) (*fakeServer, *httptest.Server) {
	t.Helper()
	fs := &fakeServer{maxRounds: maxRounds}
	upgrader := websocket.Upgrader{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/guest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"player_id": "guest-1", "access_token": "tok"})
	})
	mux.HandleFunc("POST /api/v1/matches", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		fs.mu.Lock()
		fs.match = model.Match{ID: "m1", PlayerID: "guest-1", Opponent: "human", Status: model.MatchActive}
		fs.engine = NewEngine(EngineConfig{Seed: 1})
		fs.pending = rpsls.None
		m := fs.match
		fs.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(m)
	})
	mux.HandleFunc("POST /api/v1/matches/{id}/moves", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Move string `json:"move"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		move, err := rpsls.ParseMove(req.Move)
		if err != nil {
			http.Error(w, `{"error":"bad move"}`, http.StatusBadRequest)
			return
		}
		fs.mu.Lock()
		defer fs.mu.Unlock()
		if fs.finished {
			http.Error(w, `{"error":"match is finished"}`, http.StatusConflict)
			return
		}
		em, _ := fs.engine.NextMove(fs.pending)
		outcome := fs.match.Record(em, move)
		fs.pending = move
		round := model.Round{MatchID: "m1", Number: fs.match.Rounds - 1, EngineMove: em, OpponentMove: move, Outcome: outcome.String()}
		if fs.maxRounds > 0 && fs.match.Rounds >= fs.maxRounds {
			fs.finished = true
			fs.match.Status = model.MatchFinished
			round.MatchOver = true
		}
		for _, c := range fs.conns {
			c.WriteJSON(map[string]any{"type": "round_played", "match_id": "m1", "data": round})
		}
		json.NewEncoder(w).Encode(round)
	})
	mux.HandleFunc("POST /api/v1/matches/{id}/finish", func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		defer fs.mu.Unlock()
		fs.finished = true
		fs.match.Status = model.MatchFinished
		json.NewEncoder(w).Encode(fs.match)
	})
	mux.HandleFunc("GET /api/v1/matches/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "m1" {
			http.Error(w, `{"error":"match not found"}`, http.StatusNotFound)
			return
		}
		fs.mu.Lock()
		defer fs.mu.Unlock()
		json.NewEncoder(w).Encode(fs.match)
	})
	mux.HandleFunc("GET /api/v1/ws", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "tok" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// Wait for the subscribe message before delivering events.
		var msg map[string]string
		if err := conn.ReadJSON(&msg); err != nil || msg["action"] != "subscribe" {
			conn.Close()
			return
		}
		fs.mu.Lock()
		fs.conns = append(fs.conns, conn)
		fs.mu.Unlock()
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		fs.mu.Lock()
		for _, c := range fs.conns {
			c.Close()
		}
		fs.mu.Unlock()
		srv.Close()
	})
	return fs, srv
}

func TestClient_MatchLifecycle(t *testing.T) {
	_, srv := newFakeServer(t, 0)
	ctx := context.Background()
	c := NewClient(srv.URL + "/")

	if err := c.Login(ctx); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if c.PlayerID() != "guest-1" {
		t.Fatalf("expected guest-1, got %s", c.PlayerID())
	}
	m, err := c.CreateMatch(ctx)
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}
	for i := 0; i < 3; i++ {
		round, err := c.Play(ctx, m.ID, rpsls.Spock)
		if err != nil {
			t.Fatalf("Play %d: %v", i, err)
		}
		if round.Number != i || round.OpponentMove != rpsls.Spock || !round.EngineMove.Valid() {
			t.Fatalf("round %d: unexpected %+v", i, round)
		}
	}
	final, err := c.Finish(ctx, m.ID)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if final.Rounds != 3 || final.Status != model.MatchFinished {
		t.Fatalf("unexpected final match %+v", final)
	}
	if final.EngineWins+final.OpponentWins+final.Draws != 3 {
		t.Fatalf("tallies do not add up: %+v", final)
	}
}

func TestClient_ErrorStatus(t *testing.T) {
	_, srv := newFakeServer(t, 0)
	ctx := context.Background()
	c := NewClient(srv.URL)

	if _, err := c.CreateMatch(ctx); err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401 before login, got %v", err)
	}
	if err := c.Login(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetMatch(ctx, "nope"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestOrchestrator_PlaysRounds(t *testing.T) {
	_, srv := newFakeServer(t, 0)
	o := NewOrchestrator(srv.URL, ConstantPlayer{Move: rpsls.Rock}, 60, 0, false)

	m, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.Rounds != 60 || m.Status != model.MatchFinished {
		t.Fatalf("unexpected result %+v", m)
	}
	// The engine learns a constant opponent quickly.
	if m.EngineWins <= m.OpponentWins {
		t.Errorf("engine did not beat constant rock: %+v", m)
	}
}

func TestOrchestrator_StopsWhenServerEndsMatch(t *testing.T) {
	_, srv := newFakeServer(t, 7)
	o := NewOrchestrator(srv.URL, NewCyclePlayer(rpsls.AllMoves()...), 100, 0, false)

	m, err := o.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.Rounds != 7 || m.Status != model.MatchFinished {
		t.Fatalf("expected server to stop the match at 7 rounds, got %+v", m)
	}
}

func TestOrchestrator_Cancelled(t *testing.T) {
	_, srv := newFakeServer(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o := NewOrchestrator(srv.URL, ConstantPlayer{Move: rpsls.Rock}, 10, 0, false)
	if _, err := o.Run(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestClient_WatchReceivesRounds(t *testing.T) {
	fs, srv := newFakeServer(t, 0)
	ctx := context.Background()
	c := NewClient(srv.URL)
	if err := c.Login(ctx); err != nil {
		t.Fatal(err)
	}
	m, err := c.CreateMatch(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.ConnectWS(ctx); err != nil {
		t.Fatalf("ConnectWS: %v", err)
	}
	defer c.CloseWS()
	if err := c.Subscribe(m.ID); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		fs.mu.Lock()
		n := len(fs.conns)
		fs.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("subscription never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, err := c.Play(ctx, m.ID, rpsls.Lizard); err != nil {
		t.Fatal(err)
	}
	select {
	case ev := <-c.Events():
		if ev.Type != "round_played" || ev.MatchID != "m1" {
			t.Fatalf("unexpected event %+v", ev)
		}
		var round model.Round
		if err := json.Unmarshal(ev.Data, &round); err != nil {
			t.Fatalf("decode round: %v", err)
		}
		if round.OpponentMove != rpsls.Lizard {
			t.Fatalf("expected lizard, got %s", round.OpponentMove)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}
