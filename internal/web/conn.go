package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/tomz197/raindrops/internal/game"
	"github.com/tomz197/raindrops/internal/loop/server"
	"github.com/tomz197/raindrops/internal/schedule"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
	// Session clock resolution.
	tickInterval = 50 * time.Millisecond
)

// Command is a message from the page.
type Command struct {
	Type       string      `json:"type"` // start, click, expire, reset, resize
	Difficulty string      `json:"difficulty,omitempty"`
	ID         game.DropID `json:"id,omitempty"`
	Width      float64     `json:"width,omitempty"`
}

// notice is a message to the page that is not a session event.
type notice struct {
	Type       string `json:"type"` // started, shutdown, error
	Difficulty string `json:"difficulty,omitempty"`
	Message    string `json:"message,omitempty"`
}

// conn runs one browser session. Everything but the read pump happens on the
// goroutine calling run, so the session needs no locking.
type conn struct {
	ws      *websocket.Conn
	handle  *server.ClientHandle
	timers  *schedule.Timers
	session *game.Session
	pending []any
	log     *log.Logger
}

func newConn(ws *websocket.Conn, handle *server.ClientHandle, weights game.Weights, l *log.Logger) *conn {
	c := &conn{
		ws:     ws,
		handle: handle,
		timers: schedule.NewTimers(),
		log:    l,
	}
	c.session = game.NewSession(c.timers,
		game.WithObserver(c),
		game.WithWeights(weights),
		game.WithField(game.DefaultField),
		game.WithLogger(l),
	)
	return c
}

// OnEvent queues session events for the next flush.
func (c *conn) OnEvent(e game.Event) {
	c.pending = append(c.pending, e)
}

// run drives the session until the peer leaves, the server shuts down or ctx
// is cancelled.
func (c *conn) run(ctx context.Context) error {
	defer c.ws.Close()

	done := make(chan struct{})
	defer close(done)
	cmds := make(chan Command)
	readErr := make(chan error, 1)
	go c.readPump(cmds, readErr, done)

	tick := time.NewTicker(tickInterval)
	defer tick.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return err
		case cmd := <-cmds:
			c.handleCommand(cmd)
		case now := <-tick.C:
			c.timers.Advance(now.Sub(last))
			last = now
		case ev, ok := <-c.handle.EventsCh:
			if !ok || ev.Type == server.EventServerShutdown {
				return c.shutdown()
			}
		case <-ping.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		}

		if err := c.flush(); err != nil {
			return err
		}
	}
}

// readPump pumps commands from the websocket connection to run.
func (c *conn) readPump(cmds chan<- Command, readErr chan<- error, done <-chan struct{}) {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				readErr <- fmt.Errorf("read: %w", err)
			} else {
				readErr <- nil
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.log.Warn("malformed command", "err", err)
			continue
		}

		select {
		case cmds <- cmd:
		case <-done:
			return
		}
	}
}

func (c *conn) handleCommand(cmd Command) {
	switch cmd.Type {
	case "start":
		d, err := game.ParseDifficulty(cmd.Difficulty)
		if err != nil {
			c.pending = append(c.pending, notice{Type: "error", Message: err.Error()})
			return
		}
		n := len(c.pending)
		if c.session.Start(d) {
			c.pending = slices.Insert(c.pending, n, any(notice{Type: "started", Difficulty: d.String()}))
		}
	case "click":
		c.session.ClickDrop(cmd.ID)
	case "expire":
		c.session.ExpireDrop(cmd.ID)
	case "reset":
		c.session.Reset()
	case "resize":
		if cmd.Width > 0 {
			c.session.SetField(game.Field{Width: cmd.Width, DropWidth: game.DefaultField.DropWidth})
		}
	default:
		c.log.Warn("unknown command", "type", cmd.Type)
	}
}

// flush writes every queued message as one newline-delimited frame.
func (c *conn) flush() error {
	if len(c.pending) == 0 {
		return nil
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	w, err := c.ws.NextWriter(websocket.TextMessage)
	if err != nil {
		return fmt.Errorf("next writer: %w", err)
	}
	enc := json.NewEncoder(w)
	for _, msg := range c.pending {
		if err := enc.Encode(msg); err != nil {
			_ = w.Close()
			return fmt.Errorf("encode: %w", err)
		}
	}
	clear(c.pending)
	c.pending = c.pending[:0]
	return w.Close()
}

// shutdown tells the page the server is going away and closes the socket.
func (c *conn) shutdown() error {
	c.pending = append(c.pending, notice{Type: "shutdown"})
	if err := c.flush(); err != nil {
		return err
	}
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	err := c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}
