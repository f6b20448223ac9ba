// Package web serves the browser version of the game. Each WebSocket
// connection owns one game session; the page renders the events it receives.
package web

import (
	_ "embed"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/tomz197/raindrops/internal/game"
	"github.com/tomz197/raindrops/internal/loop/server"
)

//go:embed static/index.html
var indexHTML string

// Options configures a Handler.
type Options struct {
	Weights game.Weights
	Logger  *log.Logger
	SSHHost string // Shown on the page as the terminal alternative
}

// Handler serves the page and the game WebSocket.
type Handler struct {
	server   server.GameServer
	weights  game.Weights
	log      *log.Logger
	page     string
	upgrader websocket.Upgrader
}

// New creates a handler whose connections register with gs.
func New(gs server.GameServer, opts Options) *Handler {
	l := opts.Logger
	if l == nil {
		l = log.New(io.Discard)
	}
	return &Handler{
		server:  gs,
		weights: opts.Weights,
		log:     l,
		page:    strings.ReplaceAll(indexHTML, "{{.SSHHost}}", opts.SSHHost),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Routes returns the HTTP routes of the browser host.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.serveIndex)
	mux.HandleFunc("GET /ws", h.serveWS)
	mux.HandleFunc("GET /healthz", h.serveHealth)
	return mux
}

func (h *Handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := io.WriteString(w, h.page); err != nil {
		h.log.Debug("write page", "err", err)
	}
}

func (h *Handler) serveHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"players": h.server.Players(),
	})
}

func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	handle := h.server.RegisterClient("")
	defer h.server.UnregisterClient(handle.ID)

	l := h.log.With("client", handle.ID)
	l.Info("browser session started", "remote", r.RemoteAddr)

	c := newConn(ws, handle, h.weights, l)
	if err := c.run(r.Context()); err != nil {
		l.Warn("browser session error", "err", err)
	}
	l.Info("browser session ended")
}
