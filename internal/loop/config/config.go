// Package config centralizes the terminal presentation's tunable parameters.
package config

import "time"

// View resolution - the visible viewport in logical units.
// Actual rendering scales to fit terminal size.
const (
	ViewWidth  = 120 // Logical viewport width
	ViewHeight = 80  // Logical viewport height (in sub-pixels, so 40 terminal rows)
)

// Max render resolution in terminal cells. Larger terminals get a centered,
// bordered play area.
const (
	MaxTermWidth  = 120
	MaxTermHeight = 40
)

// Drop field, in logical units.
const (
	FieldTop    = 6  // Below the HUD rows
	FieldBottom = 76 // Floor line sits below this
)

// Hit testing
const (
	ClickMargin = 1.5 // Extra logical units around a drop that still count as a hit
)

// Effects
const (
	ConfettiCount     = 80
	MaxUsernameLength = 16 // Maximum display length for player usernames
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)
