package client

import (
	"time"

	"github.com/tomz197/raindrops/internal/draw"
	"github.com/tomz197/raindrops/internal/game"
	"github.com/tomz197/raindrops/internal/input"
)

// GameState represents the current screen for a client.
type GameState int

const (
	GameStateSelect   GameState = iota // Difficulty selection
	GameStatePlaying                   // Drops falling
	GameStateOver                      // Lost: timer ran out or lives gone
	GameStateWon                       // Reached the winning score
	GameStateShutdown                  // Server is shutting down
)

// ClientState holds what the client shows: the session's last reported
// values and the screen state. It is only touched on the client goroutine.
type ClientState struct {
	Input         input.Input
	GameState     GameState
	prevGameState GameState
	Difficulty    game.Difficulty
	Score         int
	Lives         int
	TimeLeft      int
	Reason        game.EndReason
	termSizeFunc  draw.TermSizeFunc // Function to get terminal size
	Running       bool              // Client loop running
	delta         time.Duration     // Frame delta time
	shutdownTimer float64           // Countdown before auto-disconnect on shutdown
	isInactive    bool              // Whether the client is in inactive warning state
	wasInactive   bool
	celebrate     bool // Win effects pending for the next update
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		GameState:     GameStateSelect,
		prevGameState: GameStateSelect,
		Lives:         game.InitialLives,
		Running:       true,
	}
}
