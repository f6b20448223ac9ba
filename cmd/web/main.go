package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomz197/raindrops/internal/config"
	"github.com/tomz197/raindrops/internal/logger"
	"github.com/tomz197/raindrops/internal/loop/server"
	"github.com/tomz197/raindrops/internal/web"
)

func main() {
	gameCfg, err := config.LoadGame()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	l := logger.Stderr(gameCfg.LogLevel, "web")

	cfg, err := config.LoadWeb()
	if err != nil {
		l.Fatal("load web config", "err", err)
	}

	registry := server.NewServer(l.WithPrefix("registry"))
	handler := web.New(registry, web.Options{
		Weights: gameCfg.Weights(),
		Logger:  l,
		SSHHost: cfg.SSHDisplayHost,
	})

	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	l.Info("starting web server", "url", "http://"+addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("server error", "err", err)
		}
	}()

	<-done
	l.Info("shutting down server")

	// Browser sessions are hijacked connections, so tell them first.
	registry.Shutdown(cfg.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		l.Fatal("shutdown error", "err", err)
	}
}
