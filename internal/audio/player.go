// Package audio plays the click and win sound effects.
package audio

import (
	"io"

	"github.com/charmbracelet/log"
)

// Player plays game sound effects. Implementations never block the frame
// loop and never fail it: playback problems are logged and dropped.
type Player interface {
	Click()
	Win()
	Close()
}

// Nop is a silent Player.
type Nop struct{}

func (Nop) Click() {}
func (Nop) Win()   {}
func (Nop) Close() {}

// Bell rings the terminal bell. Used for remote terminals where the game
// host cannot reach the player's speakers.
type Bell struct {
	w   io.Writer
	log *log.Logger
}

// NewBell creates a Bell writing to the player's terminal.
func NewBell(w io.Writer, l *log.Logger) *Bell {
	return &Bell{w: w, log: l}
}

// Click rings once.
func (b *Bell) Click() {
	b.ring("\a")
}

// Win rings twice.
func (b *Bell) Win() {
	b.ring("\a\a")
}

// Close is a no-op.
func (b *Bell) Close() {}

func (b *Bell) ring(s string) {
	if _, err := io.WriteString(b.w, s); err != nil && b.log != nil {
		b.log.Warn("bell failed", "err", err)
	}
}
