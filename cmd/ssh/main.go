package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/tomz197/raindrops/internal/audio"
	"github.com/tomz197/raindrops/internal/config"
	"github.com/tomz197/raindrops/internal/draw"
	"github.com/tomz197/raindrops/internal/game"
	"github.com/tomz197/raindrops/internal/logger"
	"github.com/tomz197/raindrops/internal/loop/client"
	"github.com/tomz197/raindrops/internal/loop/server"
)

func main() {
	gameCfg, err := config.LoadGame()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	l := logger.Stderr(gameCfg.LogLevel, "ssh")

	cfg, err := config.LoadSSH()
	if err != nil {
		l.Fatal("load ssh config", "err", err)
	}
	workingDir, workErr := os.Getwd()
	if workErr != nil {
		l.Warn("failed to get working directory", "err", workErr)
	}
	l.Info("ssh config", "host", cfg.Host, "port", cfg.Port, "hostKeyPath", cfg.HostKeyPath, "workingDir", workingDir)

	// Shared registry: sessions are independent, it only tracks who is online.
	gameServer := server.NewServer(l.WithPrefix("registry"))
	h := &sessionHandler{
		server:  gameServer,
		weights: gameCfg.Weights(),
		sound:   gameCfg.Sound,
		log:     l,
	}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(cfg.Host, cfg.Port)),
		wish.WithMiddleware(
			h.middleware,
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(l),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if cfg.HostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(cfg.HostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		l.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	l.Info("starting ssh server", "addr", net.JoinHostPort(cfg.Host, cfg.Port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			l.Fatal("server error", "err", err)
		}
	}()

	<-done
	l.Info("shutting down server")

	// Notify players and wait for them to disconnect
	gameServer.Shutdown(cfg.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		l.Fatal("shutdown error", "err", err)
	}
}

// sessionHandler runs one game client per SSH session.
type sessionHandler struct {
	server  *server.Server
	weights game.Weights
	sound   bool
	log     *log.Logger
}

func (h *sessionHandler) middleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		l := h.log.With("user", sess.User())
		l.Info("new game session", "terminal", pty.Term, "width", pty.Window.Width, "height", pty.Window.Height)

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

		// Listen for window size changes in a goroutine
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		var player audio.Player = audio.Nop{}
		if h.sound {
			player = audio.NewBell(sess, l)
		}

		c := client.NewClient(h.server, bufio.NewReader(sess), sess, client.ClientOptions{
			TermSizeFunc: sizeTracker.getSize,
			Username:     sess.User(),
			Audio:        player,
			Weights:      h.weights,
			Logger:       l,
		})
		if err := c.Run(); err != nil {
			l.Error("game error", "err", err)
		}

		l.Info("session ended")
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
