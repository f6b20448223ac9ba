package game

import "fmt"

// State is the lifecycle phase of a session.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateEnded:
		return "ended"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome is the terminal result of a session.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWin
	OutcomeLose
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeWin:
		return "win"
	case OutcomeLose:
		return "lose"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// EndReason says what ended a session.
type EndReason int

const (
	EndReasonNone EndReason = iota
	EndReasonTimeout
	EndReasonScoreReached
	EndReasonLivesLost
)

func (r EndReason) String() string {
	switch r {
	case EndReasonNone:
		return "none"
	case EndReasonTimeout:
		return "timeout"
	case EndReasonScoreReached:
		return "score_reached"
	case EndReasonLivesLost:
		return "lives_lost"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r EndReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Snapshot is a read-only copy of a session for rendering.
type Snapshot struct {
	State      State
	Outcome    Outcome
	Reason     EndReason
	Difficulty Difficulty
	Score      int
	Lives      int
	TimeLeft   int
	Drops      []Drop // Sorted by ID
}
