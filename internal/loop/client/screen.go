package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomz197/raindrops/internal/draw"
	"github.com/tomz197/raindrops/internal/game"
	"github.com/tomz197/raindrops/internal/loop/config"
	"github.com/tomz197/raindrops/internal/object"
)

// button is a clickable text area in canvas coordinates (1-based).
type button struct {
	col, row, width int
	difficulty      game.Difficulty
	playAgain       bool
}

func (b button) contains(col, row int) bool {
	return row == b.row && col >= b.col && col < b.col+b.width
}

var titleArt = []string{
	` ___    _   ___ _  _ ___  ___  ___  ___  ___ `,
	`| _ \  /_\ |_ _| \| |   \| _ \/ _ \| _ \/ __|`,
	`|   / / _ \ | || .' | |) |   / (_) |  _/\__ \`,
	`|_|_\/_/ \_\___|_|\_|___/|_|_\\___/|_|  |___/`,
}

var gameOverArt = []string{
	`  ___   _   __  __ ___    _____   _____ ___ `,
	` / __| /_\ |  \/  | __|  / _ \ \ / / __| _ \`,
	`| (_ |/ _ \| |\/| | _|  | (_) \ V /| _||   /`,
	` \___/_/ \_\_|  |_|___|  \___/ \_/ |___|_|_\`,
}

var winArt = []string{
	`__   _____  _   _  __      _____ _  _ _ `,
	`\ \ / / _ \| | | | \ \    / /_ _| \| | |`,
	` \ V / (_) | |_| |  \ \/\/ / | || .' |_|`,
	`  |_| \___/ \___/    \_/\_/ |___|_|\_(_)`,
}

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	// On game state or inactivity transitions, do a full terminal clear
	// so UI elements from the previous state don't persist on screen.
	stateChanged := c.state.GameState != c.state.prevGameState
	inactiveChanged := c.state.isInactive != c.state.wasInactive
	if stateChanged || inactiveChanged {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevGameState = c.state.GameState
		c.state.wasInactive = c.state.isInactive
	}

	c.canvas.Clear()
	c.buttons = c.buttons[:0]

	ctx := object.DrawContext{
		Canvas: c.canvas,
		Writer: c.chunkWriter,
		Field:  field,
	}

	if c.state.GameState == GameStatePlaying && !c.state.isInactive {
		// The floor fills the rows under the field.
		c.canvas.FillRect(0, config.FieldBottom, c.canvas.LogicalWidth(), c.canvas.LogicalHeight()-config.FieldBottom, draw.ColorGray)
	}
	if c.state.GameState != GameStateShutdown && !c.state.isInactive {
		if err := c.scene.Draw(ctx); err != nil {
			return err
		}
	}

	// Render canvas to terminal
	c.canvas.Render(c.chunkWriter)

	// Draw border when terminal exceeds max render resolution
	c.canvas.RenderBorder(c.chunkWriter)

	// Text effects go on top of the canvas
	if c.state.GameState != GameStateShutdown && !c.state.isInactive {
		if err := c.scene.DrawText(ctx); err != nil {
			return err
		}
	}

	c.drawUI()

	return c.chunkWriter.Flush()
}

// drawUI draws the game UI overlay.
func (c *Client) drawUI() {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	if c.state.GameState == GameStateShutdown {
		c.drawShutdownScreen(centerX, centerY)
		return
	}

	if c.state.isInactive {
		c.drawInactivityScreen(centerX, centerY)
		return
	}

	switch c.state.GameState {
	case GameStateSelect:
		c.drawSelectScreen(centerX, centerY)
	case GameStatePlaying:
		c.drawPlayingHUD(termWidth, termHeight)
	case GameStateOver:
		c.drawEndScreen(centerX, centerY, gameOverArt)
	case GameStateWon:
		c.drawEndScreen(centerX, centerY, winArt)
	}
}

// writeText writes s at a canvas position and marks the cells so the
// canvas repaints them once the text is gone.
func (c *Client) writeText(col, row int, s string) {
	c.chunkWriter.WriteAt(col, row, s)
	c.canvas.MarkTextDirty(col, row, len([]rune(s)))
}

// writeCentered writes s centered on centerX.
func (c *Client) writeCentered(centerX, row int, s string) {
	c.writeText(centerX-len([]rune(s))/2, row, s)
}

// drawArt draws lines of ASCII art centered on centerX starting at row.
func (c *Client) drawArt(centerX, row int, art []string) {
	width := 0
	for _, line := range art {
		if len(line) > width {
			width = len(line)
		}
	}
	for i, line := range art {
		c.writeText(centerX-width/2, row+i, line)
	}
}

// addButton draws a clickable label centered on centerX.
func (c *Client) addButton(centerX, row int, label string, b button) {
	b.width = len([]rune(label))
	b.col = centerX - b.width/2
	b.row = row
	c.writeText(b.col, b.row, label)
	c.buttons = append(c.buttons, b)
}

// drawLegend draws the drop color key centered on centerX.
func (c *Client) drawLegend(centerX, row int) {
	items := []struct {
		kind  game.DropKind
		label string
	}{
		{game.DropRegular, " 5 pts"},
		{game.DropBonus, " 10 pts"},
		{game.DropBad, " -1 life"},
	}

	width := 0
	for i, it := range items {
		width += 2 + len(it.label)
		if i > 0 {
			width += 4
		}
	}

	col := centerX - width/2
	for _, it := range items {
		c.chunkWriter.WriteColorAt(col, row, object.KindColor(it.kind), "██")
		c.writeText(col+2, row, it.label)
		c.canvas.MarkTextDirty(col, row, 2)
		col += 2 + len(it.label) + 4
	}
}

// drawSelectScreen draws the title and difficulty buttons.
func (c *Client) drawSelectScreen(centerX, centerY int) {
	top := centerY - 10
	c.drawArt(centerX, top, titleArt)

	row := top + len(titleArt) + 1
	c.writeCentered(centerX, row, "~ Catch the good drops, dodge the bad ones ~")
	if c.username != "" {
		c.writeCentered(centerX, row+1, "Welcome, "+c.username)
	}

	c.drawLegend(centerX, row+3)
	c.writeCentered(centerX, row+5, fmt.Sprintf("Reach %d points before the time runs out.", game.WinScore))

	row += 7
	c.writeCentered(centerX, row, "Choose a difficulty")
	for i, d := range game.Difficulties {
		s := d.Settings()
		label := fmt.Sprintf("[ %d  %-6s %2ds ]", i+1, titleCase(d.String()), s.StartingTime)
		c.addButton(centerX, row+2+i*2, label, button{difficulty: d})
	}

	row += 2 + len(game.Difficulties)*2
	c.writeCentered(centerX, row, "Click a drop to catch it.  Q . . Quit")
}

// drawPlayingHUD draws the in-game HUD.
// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen.
func (c *Client) drawPlayingHUD(termWidth, termHeight int) {
	scoreText := fmt.Sprintf("Score: %-4d", c.state.Score)
	c.writeText(2, 1, scoreText)

	timeText := fmt.Sprintf("Time: %3ds", c.state.TimeLeft)
	c.writeCentered(termWidth/2, 1, timeText)

	livesText := "Lives: " + strings.Repeat("♥", c.state.Lives) + strings.Repeat(" ", game.InitialLives-c.state.Lives)
	c.writeText(termWidth-len([]rune(livesText)), 1, livesText)

	c.drawLegend(termWidth/2, 2)

	playersText := fmt.Sprintf("Players online: %-4d", c.server.Players())
	c.writeText(termWidth-len(playersText)-1, termHeight, playersText)

	diffText := fmt.Sprintf("%-6s", titleCase(c.state.Difficulty.String()))
	c.writeText(2, termHeight, diffText)
}

// drawEndScreen draws the game over or win screen.
func (c *Client) drawEndScreen(centerX, centerY int, art []string) {
	top := centerY - 7
	c.drawArt(centerX, top, art)

	row := top + len(art) + 1
	if msg := reasonText(c.state.Reason); msg != "" {
		c.writeCentered(centerX, row, msg)
	}
	c.writeCentered(centerX, row+2, fmt.Sprintf("Final score: %d", c.state.Score))

	c.addButton(centerX, row+4, "[ Play again ]", button{playAgain: true})

	if time.Now().UnixMilli()/600%2 == 0 {
		c.writeCentered(centerX, row+6, ">>  Press SPACE to play again  <<")
	} else {
		c.writeCentered(centerX, row+6, strings.Repeat(" ", 33))
	}
	c.writeCentered(centerX, row+7, "or 1 / 2 / 3 to start right away")
}

func reasonText(r game.EndReason) string {
	switch r {
	case game.EndReasonTimeout:
		return "Time's up!"
	case game.EndReasonLivesLost:
		return "Out of lives!"
	case game.EndReasonScoreReached:
		return fmt.Sprintf("You caught %d points of rain!", game.WinScore)
	default:
		return ""
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerX, centerY int) {
	c.writeCentered(centerX, centerY-2, "INACTIVITY WARNING")

	msg := fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %3d seconds.",
		int(config.InactivityDisconnectUser-time.Since(c.lastInput).Seconds()),
	)
	c.writeCentered(centerX, centerY, msg)
	c.writeCentered(centerX, centerY+2, "Press any key to continue")
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(centerX, centerY int) {
	c.writeCentered(centerX, centerY-3, "SERVER SHUTTING DOWN")
	c.writeCentered(centerX, centerY-1, "The server is restarting for maintenance.")
	c.writeCentered(centerX, centerY, "Please reconnect in a moment.")

	remaining := int(c.state.shutdownTimer) + 1
	c.writeCentered(centerX, centerY+2, fmt.Sprintf("Disconnecting in %2d seconds...", remaining))
	c.writeCentered(centerX, centerY+4, "Press Q to disconnect now")
}
