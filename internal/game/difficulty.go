package game

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownDifficulty is returned when difficulty text cannot be parsed.
var ErrUnknownDifficulty = errors.New("unknown difficulty")

// Difficulty selects the timer, fall speed and spawn rate of a session.
type Difficulty int

const (
	Easy Difficulty = iota
	Normal
	Hard
)

// Difficulties lists every difficulty in menu order.
var Difficulties = []Difficulty{Easy, Normal, Hard}

// Settings holds the tuning values for one difficulty.
type Settings struct {
	StartingTime  int           // Countdown length in seconds
	FallDuration  time.Duration // Time for a drop to cross the field
	SpawnInterval time.Duration // Time between spawns
}

var settingsTable = [...]Settings{
	Easy:   {StartingTime: 45, FallDuration: 5 * time.Second, SpawnInterval: 1500 * time.Millisecond},
	Normal: {StartingTime: 30, FallDuration: 4 * time.Second, SpawnInterval: 1000 * time.Millisecond},
	Hard:   {StartingTime: 20, FallDuration: 2500 * time.Millisecond, SpawnInterval: 700 * time.Millisecond},
}

// Valid reports whether d is one of the defined difficulties.
func (d Difficulty) Valid() bool {
	return d >= Easy && d <= Hard
}

// Settings returns the tuning values for d. Unknown values fall back to Normal.
func (d Difficulty) Settings() Settings {
	if !d.Valid() {
		return settingsTable[Normal]
	}
	return settingsTable[d]
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Normal:
		return "normal"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("difficulty(%d)", int(d))
	}
}

// ParseDifficulty accepts the difficulty name, its initial, or its menu number.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy", "e", "1":
		return Easy, nil
	case "normal", "n", "2":
		return Normal, nil
	case "hard", "h", "3":
		return Hard, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Difficulty) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownDifficulty, int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
