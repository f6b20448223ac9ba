package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tomz197/raindrops/internal/game"
	"github.com/tomz197/raindrops/internal/logger"
	"github.com/tomz197/raindrops/internal/loop/server"
)

type message struct {
	Type        string    `json:"type"`
	Difficulty  string    `json:"difficulty"`
	Message     string    `json:"message"`
	Score       int       `json:"score"`
	Seconds     int       `json:"seconds"`
	Lives       int       `json:"lives"`
	Drop        *dropInfo `json:"drop"`
	FallSeconds float64   `json:"fallSeconds"`
	DropID      uint64    `json:"dropId"`
	Removal     string    `json:"removal"`
	Outcome     string    `json:"outcome"`
	Reason      string    `json:"reason"`
}

type dropInfo struct {
	ID   uint64  `json:"id"`
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
}

func newTestServer(t *testing.T, weights game.Weights) (*server.Server, *httptest.Server) {
	t.Helper()
	gs := server.NewServer(logger.Discard())
	h := New(gs, Options{Weights: weights, Logger: logger.Discard(), SSHHost: "rain.example.com"})
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return gs, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func send(t *testing.T, ws *websocket.Conn, cmd Command) {
	t.Helper()
	if err := ws.WriteJSON(cmd); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// next reads messages until one of the given type arrives.
func next(t *testing.T, ws *websocket.Conn, queue *[]message, typ string) message {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		for i, m := range *queue {
			if m.Type == typ {
				*queue = (*queue)[i+1:]
				return m
			}
		}
		*queue = (*queue)[:0]

		_ = ws.SetReadDeadline(deadline)
		_, data, err := ws.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q: %v", typ, err)
		}
		for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
			var m message
			if err := json.Unmarshal([]byte(line), &m); err != nil {
				t.Fatalf("decode %q: %v", line, err)
			}
			*queue = append(*queue, m)
		}
	}
}

func TestIndexShowsSSHHost(t *testing.T) {
	_, srv := newTestServer(t, game.DefaultWeights)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "ssh -p 2222 rain.example.com") {
		t.Fatal("expected SSH host on the page")
	}
	if strings.Contains(string(body), "{{.SSHHost}}") {
		t.Fatal("placeholder not replaced")
	}
}

func TestUnknownPathIsNotFound(t *testing.T) {
	_, srv := newTestServer(t, game.DefaultWeights)

	resp, err := http.Get(srv.URL + "/missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestStartSendsInitialState(t *testing.T) {
	_, srv := newTestServer(t, game.DefaultWeights)
	ws := dial(t, srv)
	var queue []message

	send(t, ws, Command{Type: "start", Difficulty: "easy"})

	if m := next(t, ws, &queue, "started"); m.Difficulty != "easy" {
		t.Fatalf("expected easy, got %q", m.Difficulty)
	}
	if m := next(t, ws, &queue, "score"); m.Score != 0 {
		t.Fatalf("expected score 0, got %d", m.Score)
	}
	if m := next(t, ws, &queue, "timer"); m.Seconds != 45 {
		t.Fatalf("expected 45 seconds, got %d", m.Seconds)
	}
	if m := next(t, ws, &queue, "lives"); m.Lives != 3 {
		t.Fatalf("expected 3 lives, got %d", m.Lives)
	}
}

func TestUnknownDifficultyReportsError(t *testing.T) {
	_, srv := newTestServer(t, game.DefaultWeights)
	ws := dial(t, srv)
	var queue []message

	send(t, ws, Command{Type: "start", Difficulty: "extreme"})

	if m := next(t, ws, &queue, "error"); !strings.Contains(m.Message, "unknown difficulty") {
		t.Fatalf("unexpected error message %q", m.Message)
	}
}

func TestClickingDropScores(t *testing.T) {
	_, srv := newTestServer(t, game.Weights{Bonus: 1})
	ws := dial(t, srv)
	var queue []message

	send(t, ws, Command{Type: "resize", Width: 400})
	send(t, ws, Command{Type: "start", Difficulty: "hard"})

	spawned := next(t, ws, &queue, "drop_spawned")
	if spawned.Drop == nil || spawned.Drop.Kind != "bonus" {
		t.Fatalf("expected a bonus drop, got %+v", spawned.Drop)
	}
	if spawned.Drop.X < 0 || spawned.Drop.X > 350 {
		t.Fatalf("drop outside resized field: %v", spawned.Drop.X)
	}
	if spawned.FallSeconds != 2.5 {
		t.Fatalf("expected 2.5s fall, got %v", spawned.FallSeconds)
	}

	send(t, ws, Command{Type: "click", ID: game.DropID(spawned.Drop.ID)})

	removed := next(t, ws, &queue, "drop_removed")
	if removed.DropID != spawned.Drop.ID || removed.Removal != "clicked" {
		t.Fatalf("unexpected removal %+v", removed)
	}
	if m := next(t, ws, &queue, "score"); m.Score != 10 {
		t.Fatalf("expected score 10, got %d", m.Score)
	}
}

func TestShutdownNotifiesPage(t *testing.T) {
	gs, srv := newTestServer(t, game.DefaultWeights)
	ws := dial(t, srv)
	var queue []message

	// The socket registers after the handshake completes.
	for i := 0; gs.Players() == 0; i++ {
		if i == 100 {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	done := make(chan struct{})
	go func() {
		gs.Shutdown(5 * time.Second)
		close(done)
	}()

	next(t, ws, &queue, "shutdown")

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not complete")
	}
	if gs.Players() != 0 {
		t.Fatalf("expected no players after shutdown, got %d", gs.Players())
	}
}

func TestHealth(t *testing.T) {
	_, srv := newTestServer(t, game.DefaultWeights)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Status  string `json:"status"`
		Players int    `json:"players"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Players != 0 {
		t.Fatalf("unexpected health %+v", body)
	}
}

func TestExpireCommandRemovesDrop(t *testing.T) {
	_, srv := newTestServer(t, game.Weights{Regular: 1})
	ws := dial(t, srv)
	var queue []message

	send(t, ws, Command{Type: "start", Difficulty: "easy"})
	spawned := next(t, ws, &queue, "drop_spawned")

	send(t, ws, Command{Type: "expire", ID: game.DropID(spawned.Drop.ID)})

	removed := next(t, ws, &queue, "drop_removed")
	if removed.DropID != spawned.Drop.ID || removed.Removal != "expired" {
		t.Fatalf("unexpected removal %+v", removed)
	}
}

func TestResetAfterGameEnded(t *testing.T) {
	_, srv := newTestServer(t, game.Weights{Bad: 1})
	ws := dial(t, srv)
	var queue []message

	send(t, ws, Command{Type: "start", Difficulty: "hard"})
	for i := 0; i < game.InitialLives; i++ {
		spawned := next(t, ws, &queue, "drop_spawned")
		send(t, ws, Command{Type: "click", ID: game.DropID(spawned.Drop.ID)})
		if m := next(t, ws, &queue, "lives"); m.Lives != game.InitialLives-1-i {
			t.Fatalf("expected %d lives, got %d", game.InitialLives-1-i, m.Lives)
		}
	}

	ended := next(t, ws, &queue, "game_ended")
	if ended.Outcome != "lose" || ended.Reason != "lives_lost" {
		t.Fatalf("unexpected end %+v", ended)
	}

	send(t, ws, Command{Type: "reset"})
	next(t, ws, &queue, "reset")
}

func TestResizeNarrowsField(t *testing.T) {
	_, srv := newTestServer(t, game.DefaultWeights)
	ws := dial(t, srv)
	var queue []message

	// A field as wide as one drop leaves a single column.
	send(t, ws, Command{Type: "resize", Width: game.DefaultField.DropWidth})
	send(t, ws, Command{Type: "start", Difficulty: "hard"})

	for i := 0; i < 3; i++ {
		if m := next(t, ws, &queue, "drop_spawned"); m.Drop.X != 0 {
			t.Fatalf("expected drop at x=0, got %v", m.Drop.X)
		}
	}
}
