package client

import (
	"bufio"
	"bytes"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/tomz197/raindrops/internal/draw"
	"github.com/tomz197/raindrops/internal/game"
	"github.com/tomz197/raindrops/internal/input"
	"github.com/tomz197/raindrops/internal/logger"
	"github.com/tomz197/raindrops/internal/loop/server"
	"github.com/tomz197/raindrops/internal/object"
)

type recordingAudio struct {
	clicks, wins int
}

func (a *recordingAudio) Click() { a.clicks++ }
func (a *recordingAudio) Win()   { a.wins++ }
func (a *recordingAudio) Close() {}

func newTestClient(t *testing.T, weights game.Weights) (*Client, *recordingAudio, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	sounds := &recordingAudio{}
	c := NewClient(server.NewServer(logger.Discard()), bufio.NewReader(strings.NewReader("")), &out, ClientOptions{
		TermSizeFunc: func() (int, int, error) { return 130, 44, nil },
		Username:     "tester",
		Audio:        sounds,
		Weights:      weights,
		Rand:         rand.New(rand.NewSource(3)),
	})
	c.updateScreen()
	return c, sounds, &out
}

func keys(s string) input.Input {
	in, _ := input.Parse([]byte(s), true)
	return in
}

// clickDrop clicks the center of the given sprite through the terminal.
func clickDrop(c *Client, d *object.Drop) {
	cx, cy := d.Bounds().Center()
	col, row := c.canvas.LogicalToTerminal(cx, cy)
	c.handleInput(input.Input{Number: -1, Clicks: []input.Click{{
		Col: col + c.canvas.OffsetCol(),
		Row: row + c.canvas.OffsetRow(),
	}}})
}

// waitForDrop advances until a drop is on screen and returns it.
func waitForDrop(t *testing.T, c *Client) *object.Drop {
	t.Helper()
	for i := 0; i < 200; i++ {
		c.update(20 * time.Millisecond)
		for _, obj := range c.scene.Objects {
			if d, ok := obj.(*object.Drop); ok {
				return d
			}
		}
	}
	t.Fatal("no drop spawned")
	return nil
}

func TestDifficultyKeyStartsRound(t *testing.T) {
	c, _, _ := newTestClient(t, game.DefaultWeights)

	c.handleInput(keys("3"))

	if c.state.GameState != GameStatePlaying {
		t.Fatalf("expected playing, got %v", c.state.GameState)
	}
	if c.state.Difficulty != game.Hard || c.state.TimeLeft != 20 || c.state.Lives != 3 || c.state.Score != 0 {
		t.Fatalf("unexpected state %+v", c.state)
	}
}

func TestClickingBonusDropsWins(t *testing.T) {
	c, sounds, _ := newTestClient(t, game.Weights{Bonus: 1})
	c.handleInput(keys("e"))

	for i := 0; i < 10; i++ {
		d := waitForDrop(t, c)
		clickDrop(c, d)
		if _, ok := c.scene.Drop(d.ID); ok {
			t.Fatalf("click %d: drop still on screen", i)
		}
	}
	c.update(16 * time.Millisecond)

	if c.state.GameState != GameStateWon {
		t.Fatalf("expected win, got %v", c.state.GameState)
	}
	if c.state.Score != 100 || c.state.Reason != game.EndReasonScoreReached {
		t.Fatalf("unexpected end state score=%d reason=%v", c.state.Score, c.state.Reason)
	}
	if sounds.clicks != 10 || sounds.wins != 1 {
		t.Fatalf("expected 10 clicks and 1 win sound, got %d and %d", sounds.clicks, sounds.wins)
	}
	if c.scene.Drops() != 0 {
		t.Fatalf("expected no drops after win, got %d", c.scene.Drops())
	}
	particles := 0
	for _, obj := range c.scene.Objects {
		if _, ok := obj.(*object.Particle); ok {
			particles++
		}
	}
	if particles == 0 {
		t.Fatal("expected confetti on win")
	}
}

func TestClickingBadDropsLoses(t *testing.T) {
	c, sounds, _ := newTestClient(t, game.Weights{Bad: 1})
	c.handleInput(keys("n"))

	for want := 2; want >= 0; want-- {
		clickDrop(c, waitForDrop(t, c))
		if c.state.Lives != want {
			t.Fatalf("expected %d lives, got %d", want, c.state.Lives)
		}
	}

	if c.state.GameState != GameStateOver || c.state.Reason != game.EndReasonLivesLost {
		t.Fatalf("expected game over by lives, got %v %v", c.state.GameState, c.state.Reason)
	}
	if sounds.clicks != 0 || sounds.wins != 0 {
		t.Fatalf("expected no sounds for bad drops, got %+v", sounds)
	}

	c.handleInput(keys(" "))
	if c.state.GameState != GameStateSelect {
		t.Fatalf("expected selection after play again, got %v", c.state.GameState)
	}
}

func TestMissedClickDoesNothing(t *testing.T) {
	c, _, _ := newTestClient(t, game.Weights{Bonus: 1})
	c.handleInput(keys("1"))
	d := waitForDrop(t, c)

	// A click on the HUD row never hits a drop.
	c.handleInput(input.Input{Number: -1, Clicks: []input.Click{{Col: 1 + c.canvas.OffsetCol(), Row: 1 + c.canvas.OffsetRow()}}})
	if _, ok := c.scene.Drop(d.ID); !ok || c.state.Score != 0 {
		t.Fatal("expected drop untouched")
	}
}

func TestDropsExpireAtTheFloor(t *testing.T) {
	c, _, _ := newTestClient(t, game.Weights{Regular: 1})
	c.handleInput(keys("3"))
	d := waitForDrop(t, c)

	for i := 0; i < 200; i++ {
		c.update(20 * time.Millisecond)
		if _, ok := c.scene.Drop(d.ID); !ok {
			break
		}
	}
	if _, ok := c.scene.Drop(d.ID); ok {
		t.Fatal("expected drop to expire")
	}
	if c.state.Score != 0 || c.state.Lives != 3 {
		t.Fatalf("expected expiry without effect, score=%d lives=%d", c.state.Score, c.state.Lives)
	}
}

func TestTimeoutLoses(t *testing.T) {
	c, _, _ := newTestClient(t, game.DefaultWeights)
	c.handleInput(keys("h"))

	for i := 0; i < 21; i++ {
		c.update(time.Second)
	}
	if c.state.GameState != GameStateOver || c.state.Reason != game.EndReasonTimeout {
		t.Fatalf("expected timeout, got %v %v", c.state.GameState, c.state.Reason)
	}
	if c.state.TimeLeft != 0 {
		t.Fatalf("expected timer at 0, got %d", c.state.TimeLeft)
	}
}

func TestSelectScreenButtons(t *testing.T) {
	c, _, out := newTestClient(t, game.DefaultWeights)

	if err := c.drawFrame(); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if !strings.Contains(out.String(), "Choose a difficulty") {
		t.Fatal("expected difficulty selection screen")
	}
	if len(c.buttons) != len(game.Difficulties) {
		t.Fatalf("expected %d buttons, got %d", len(game.Difficulties), len(c.buttons))
	}

	b := c.buttons[1]
	c.handleInput(input.Input{Number: -1, Clicks: []input.Click{{
		Col: b.col + 1 + c.canvas.OffsetCol(),
		Row: b.row + c.canvas.OffsetRow(),
	}}})
	if c.state.GameState != GameStatePlaying || c.state.Difficulty != game.Normal {
		t.Fatalf("expected normal round, got %v %v", c.state.GameState, c.state.Difficulty)
	}

	out.Reset()
	if err := c.drawFrame(); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if !strings.Contains(out.String(), "Score: 0") || !strings.Contains(out.String(), "Time:  30s") {
		t.Fatalf("expected HUD, got %q", out.String())
	}
	if !strings.Contains(out.String(), draw.ColorGray.FG()) {
		t.Fatal("expected the floor drawn in gray")
	}
}

func TestShutdownEventShowsScreenAndDisconnects(t *testing.T) {
	c, _, out := newTestClient(t, game.DefaultWeights)
	c.handle.EventsCh <- server.ClientEvent{Type: server.EventServerShutdown}

	c.processServerEvents()
	if c.state.GameState != GameStateShutdown {
		t.Fatalf("expected shutdown screen, got %v", c.state.GameState)
	}
	if err := c.drawFrame(); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if !strings.Contains(out.String(), "SERVER SHUTTING DOWN") {
		t.Fatal("expected shutdown message")
	}

	c.update(11 * time.Second)
	if c.state.Running {
		t.Fatal("expected client to stop after the shutdown countdown")
	}
}

func TestQuitStopsClient(t *testing.T) {
	c, _, _ := newTestClient(t, game.DefaultWeights)
	c.handleInput(keys("q"))
	if c.state.Running {
		t.Fatal("expected quit")
	}
}

func TestClampTermSize(t *testing.T) {
	w, h, col, row := clampTermSize(200, 60)
	if w != 120 || h != 40 || col != 40 || row != 10 {
		t.Fatalf("unexpected clamp %d %d %d %d", w, h, col, row)
	}
	w, h, col, row = clampTermSize(80, 24)
	if w != 80 || h != 24 || col != 0 || row != 0 {
		t.Fatalf("unexpected clamp %d %d %d %d", w, h, col, row)
	}
}
