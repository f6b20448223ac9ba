// Package client runs one player's game in a terminal: it owns the player's
// session, turns keys and mouse clicks into session commands, and renders
// the session's events.
package client

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/raindrops/internal/audio"
	"github.com/tomz197/raindrops/internal/draw"
	"github.com/tomz197/raindrops/internal/game"
	"github.com/tomz197/raindrops/internal/input"
	"github.com/tomz197/raindrops/internal/loop/config"
	"github.com/tomz197/raindrops/internal/loop/server"
	"github.com/tomz197/raindrops/internal/object"
	"github.com/tomz197/raindrops/internal/schedule"
)

// field is the logical area drops fall through.
var field = object.Field{
	Width:  config.ViewWidth,
	Top:    config.FieldTop,
	Bottom: config.FieldBottom,
}

// Client handles rendering and input for a single connection.
type Client struct {
	server       server.GameServer
	handle       *server.ClientHandle
	state        *ClientState
	session      *game.Session
	timers       *schedule.Timers
	scene        *Scene
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates output for one flush per frame
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	username     string
	termSizeFunc draw.TermSizeFunc
	audio        audio.Player
	rng          *rand.Rand
	log          *log.Logger
	buttons      []button // Clickable areas drawn in the last frame
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Audio        audio.Player
	Weights      game.Weights
	Logger       *log.Logger
	Rand         *rand.Rand
}

// NewClient creates a new client registered with the given server.
func NewClient(gs server.GameServer, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	player := opts.Audio
	if player == nil {
		player = audio.Nop{}
	}
	l := opts.Logger
	if l == nil {
		l = log.New(io.Discard)
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	username := opts.Username
	if len(username) > config.MaxUsernameLength {
		username = username[:config.MaxUsernameLength]
	}

	handle := gs.RegisterClient(username)
	state := NewClientState()
	state.termSizeFunc = termSizeFunc

	// Create canvas with clamped dimensions for max render resolution
	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, config.ViewWidth, config.ViewHeight)
	canvas.SetOffset(offsetCol, offsetRow)
	chunkWriter := draw.NewChunkWriter(w, offsetCol, offsetRow)

	c := &Client{
		server:       gs,
		handle:       handle,
		state:        state,
		timers:       schedule.NewTimers(),
		scene:        newScene(),
		canvas:       canvas,
		chunkWriter:  chunkWriter,
		writer:       w,
		lastInput:    time.Now(),
		inputStream:  input.StartStream(r),
		username:     username,
		termSizeFunc: termSizeFunc,
		audio:        player,
		rng:          rng,
		log:          l.With("client", handle.ID),
	}

	c.session = game.NewSession(c.timers,
		game.WithObserver(c),
		game.WithWeights(opts.Weights),
		game.WithField(game.Field{Width: config.ViewWidth, DropWidth: object.DropWidth}),
		game.WithRand(rng),
		game.WithLogger(c.log),
	)

	return c
}

// Run starts the client loop. Blocks until the client disconnects or server stops.
func (c *Client) Run() error {
	draw.HideCursor(c.writer)
	draw.EnableMouse(c.writer)
	defer draw.ShowCursor(c.writer)
	defer draw.DisableMouse(c.writer)
	draw.ClearScreen(c.writer)

	defer c.audio.Close()

	lastTime := time.Now()

	for c.state.Running {
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		c.processInput()
		c.processServerEvents()
		c.updateScreen()
		c.update(c.state.delta)

		if err := c.drawFrame(); err != nil {
			c.server.UnregisterClient(c.handle.ID)
			return fmt.Errorf("draw frame: %w", err)
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	c.server.UnregisterClient(c.handle.ID)

	draw.ClearScreen(c.writer)
	return nil
}

// processInput reads this frame's input and tracks inactivity.
func (c *Client) processInput() {
	in := input.ReadInput(c.inputStream)

	if len(in.Pressed) > 0 {
		c.lastInput = time.Now()
		c.state.isInactive = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityDisconnectUser {
		c.log.Info("disconnecting inactive player")
		c.state.Running = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityWarnUser {
		c.state.isInactive = true
	}

	if in.Closed {
		c.state.Running = false
	}

	c.handleInput(in)
}

// handleInput applies keys and clicks to the current screen.
func (c *Client) handleInput(in input.Input) {
	c.state.Input = in

	if in.Quit {
		c.state.Running = false
		return
	}

	switch c.state.GameState {
	case GameStateSelect:
		if d, ok := difficultyKey(in.Keys); ok {
			c.startGame(d)
			return
		}
		c.clickButtons(in.Clicks)
	case GameStatePlaying:
		for _, click := range in.Clicks {
			c.clickAt(click.Col, click.Row)
		}
	case GameStateOver, GameStateWon:
		if d, ok := difficultyKey(in.Keys); ok {
			c.startGame(d)
			return
		}
		if in.Space || in.Enter {
			c.playAgain()
			return
		}
		c.clickButtons(in.Clicks)
	}
}

// difficultyKey returns the first difficulty shortcut among keys.
func difficultyKey(keys []byte) (game.Difficulty, bool) {
	for _, k := range keys {
		if d, err := game.ParseDifficulty(string(k)); err == nil {
			return d, true
		}
	}
	return 0, false
}

// clickAt clicks the drop under an absolute terminal position.
func (c *Client) clickAt(col, row int) {
	x, y, ok := c.canvas.TerminalToLogical(col, row)
	if !ok {
		return
	}
	sprite, ok := c.scene.DropAt(x, y, config.ClickMargin)
	if !ok {
		return
	}
	cx, cy := sprite.Bounds().Center()

	d, ok := c.session.ClickDrop(sprite.ID)
	if !ok {
		return
	}
	if d.Kind.IsGood() {
		c.audio.Click()
		c.scene.Spawn(object.NewPopup(cx, cy, fmt.Sprintf("+%d", d.Kind.Points()), object.KindColor(d.Kind)))
	} else {
		c.scene.Spawn(object.NewPopup(cx, cy, "-1 life", draw.ColorRed))
	}
}

// clickButtons triggers the button under each click.
func (c *Client) clickButtons(clicks []input.Click) {
	for _, click := range clicks {
		col := click.Col - c.canvas.OffsetCol()
		row := click.Row - c.canvas.OffsetRow()
		for _, b := range c.buttons {
			if !b.contains(col, row) {
				continue
			}
			if b.playAgain {
				c.playAgain()
			} else {
				c.startGame(b.difficulty)
			}
			return
		}
	}
}

// startGame starts a round at the given difficulty.
func (c *Client) startGame(d game.Difficulty) {
	if !c.session.Start(d) {
		return
	}
	c.scene.Clear()
	c.state.Difficulty = d
	c.state.GameState = GameStatePlaying
	c.log.Info("round started", "user", c.username, "difficulty", d)
}

// playAgain returns to the difficulty selection.
func (c *Client) playAgain() {
	c.session.Reset()
}

// processServerEvents handles events from the server.
func (c *Client) processServerEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				// Server closed the channel
				c.state.Running = false
				return
			}
			if event.Type == server.EventServerShutdown && c.state.GameState != GameStateShutdown {
				c.state.GameState = GameStateShutdown
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
			}
		default:
			return
		}
	}
}

// update advances the session clock and every sprite by delta.
func (c *Client) update(delta time.Duration) {
	c.timers.Advance(delta)

	ctx := object.UpdateContext{
		Delta:   delta,
		Now:     c.timers.Now(),
		Field:   field,
		Spawner: c.scene,
	}
	for _, id := range c.scene.Update(ctx) {
		c.session.ExpireDrop(id)
	}

	if c.state.celebrate {
		c.state.celebrate = false
		c.audio.Win()
		object.SpawnConfetti(c.canvas.LogicalWidth()/2, config.FieldBottom, config.ConfettiCount, c.rng, c.scene)
		c.scene.FlushSpawned()
	}

	if c.state.GameState == GameStateShutdown {
		c.state.shutdownTimer -= delta.Seconds()
		if c.state.shutdownTimer <= 0 {
			c.state.Running = false
		}
	}
}

// OnEvent applies a session event. Implements game.Observer.
func (c *Client) OnEvent(e game.Event) {
	switch e.Type {
	case game.EventScoreChanged:
		c.state.Score = e.Score
	case game.EventTimerChanged:
		c.state.TimeLeft = e.Seconds
	case game.EventLivesChanged:
		c.state.Lives = e.Lives
	case game.EventDropSpawned:
		if e.Drop != nil {
			c.scene.AddDrop(object.NewDrop(*e.Drop, field))
		}
	case game.EventDropRemoved:
		c.scene.RemoveDrop(e.DropID)
	case game.EventGameEnded:
		c.state.Score = e.Score
		c.state.Reason = e.Reason
		if c.state.GameState == GameStateShutdown {
			break
		}
		if e.Outcome == game.OutcomeWin {
			c.state.GameState = GameStateWon
			c.state.celebrate = true
		} else {
			c.state.GameState = GameStateOver
		}
		c.log.Info("round ended", "user", c.username, "outcome", e.Outcome, "reason", e.Reason, "score", e.Score)
	case game.EventSessionReset:
		c.scene.Clear()
		if c.state.GameState != GameStateShutdown {
			c.state.GameState = GameStateSelect
		}
	}
}

// Compile-time check that Client observes sessions.
var _ game.Observer = (*Client)(nil)

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area (e.g. old borders or offset content).
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = termWidth
	renderHeight = termHeight
	if renderWidth > config.MaxTermWidth {
		renderWidth = config.MaxTermWidth
	}
	if renderHeight > config.MaxTermHeight {
		renderHeight = config.MaxTermHeight
	}
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}
