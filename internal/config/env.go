// Package config loads host configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/tomz197/raindrops/internal/game"
)

// SSH configures the SSH host.
type SSH struct {
	Host            string        `env:"SSH_HOST"             envDefault:"::"`
	Port            string        `env:"SSH_PORT"             envDefault:"2222"`
	HostKeyPath     string        `env:"SSH_HOST_KEY"         envDefault:"/app/keys/host_key"`
	ShutdownTimeout time.Duration `env:"SSH_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// Web configures the browser host.
type Web struct {
	Host            string        `env:"WEB_HOST"             envDefault:"0.0.0.0"`
	Port            string        `env:"WEB_PORT"             envDefault:"8080"`
	SSHDisplayHost  string        `env:"SSH_DISPLAY_HOST"     envDefault:"your-server.com"`
	ShutdownTimeout time.Duration `env:"WEB_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Game configures gameplay and ambient behaviour shared by every host.
type Game struct {
	WeightBad     float64 `env:"RAINDROPS_WEIGHT_BAD"     envDefault:"0.15"`
	WeightBonus   float64 `env:"RAINDROPS_WEIGHT_BONUS"   envDefault:"0.25"`
	WeightRegular float64 `env:"RAINDROPS_WEIGHT_REGULAR" envDefault:"0.60"`
	Sound         bool    `env:"RAINDROPS_SOUND"          envDefault:"true"`
	LogLevel      string  `env:"RAINDROPS_LOG_LEVEL"      envDefault:"info"`
	LogFile       string  `env:"RAINDROPS_LOG_FILE"`
}

// Weights returns the configured spawn weights.
func (g Game) Weights() game.Weights {
	return game.Weights{Bad: g.WeightBad, Bonus: g.WeightBonus, Regular: g.WeightRegular}
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadGame parses and validates the gameplay configuration.
func LoadGame() (Game, error) {
	var cfg Game
	if err := ParseEnv(&cfg); err != nil {
		return Game{}, err
	}
	if err := cfg.Weights().Validate(); err != nil {
		return Game{}, fmt.Errorf("load game config: %w", err)
	}
	return cfg, nil
}

// LoadSSH parses the SSH host configuration.
func LoadSSH() (SSH, error) {
	var cfg SSH
	if err := ParseEnv(&cfg); err != nil {
		return SSH{}, err
	}
	return cfg, nil
}

// LoadWeb parses the browser host configuration.
func LoadWeb() (Web, error) {
	var cfg Web
	if err := ParseEnv(&cfg); err != nil {
		return Web{}, err
	}
	return cfg, nil
}
