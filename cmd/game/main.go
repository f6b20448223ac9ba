package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/tomz197/raindrops/internal/audio"
	"github.com/tomz197/raindrops/internal/config"
	"github.com/tomz197/raindrops/internal/logger"
	"github.com/tomz197/raindrops/internal/loop/client"
	"github.com/tomz197/raindrops/internal/loop/server"
	"golang.org/x/term"
)

func main() {
	cfg, err := config.LoadGame()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the game, so logs go to a file when asked for.
	l := logger.Discard()
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		l = logger.New(f, cfg.LogLevel, "raindrops")
	}

	var player audio.Player = audio.Nop{}
	if cfg.Sound {
		sm := audio.NewSoundManager(l)
		if err := sm.Initialize(); err != nil {
			l.Warn("sound disabled", "err", err)
		} else {
			player = sm
		}
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	username := os.Getenv("USER")
	c := client.NewClient(server.NewServer(l), bufio.NewReader(os.Stdin), os.Stdout, client.ClientOptions{
		Username: username,
		Audio:    player,
		Weights:  cfg.Weights(),
		Logger:   l,
	})
	if err := c.Run(); err != nil {
		_ = term.Restore(fd, oldState)
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}
