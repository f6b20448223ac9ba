package game

import "fmt"

// EventType identifies a session event.
type EventType int

const (
	EventScoreChanged EventType = iota
	EventTimerChanged
	EventLivesChanged
	EventDropSpawned
	EventDropRemoved
	EventGameEnded
	EventSessionReset
)

func (t EventType) String() string {
	switch t {
	case EventScoreChanged:
		return "score"
	case EventTimerChanged:
		return "timer"
	case EventLivesChanged:
		return "lives"
	case EventDropSpawned:
		return "drop_spawned"
	case EventDropRemoved:
		return "drop_removed"
	case EventGameEnded:
		return "game_ended"
	case EventSessionReset:
		return "reset"
	default:
		return fmt.Sprintf("event(%d)", int(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Removal says why a drop left the active set.
type Removal int

const (
	RemovalNone Removal = iota
	RemovalClicked
	RemovalExpired
	RemovalCleared // Swept when the session ended
)

func (r Removal) String() string {
	switch r {
	case RemovalNone:
		return "none"
	case RemovalClicked:
		return "clicked"
	case RemovalExpired:
		return "expired"
	case RemovalCleared:
		return "cleared"
	default:
		return fmt.Sprintf("removal(%d)", int(r))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Removal) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Event is emitted by a Session after each state change. Only the fields
// relevant to Type are set.
type Event struct {
	Type        EventType `json:"type"`
	Score       int       `json:"score,omitempty"`
	Seconds     int       `json:"seconds,omitempty"`
	Lives       int       `json:"lives,omitempty"`
	Drop        *Drop     `json:"drop,omitempty"`
	FallSeconds float64   `json:"fallSeconds,omitempty"`
	DropID      DropID    `json:"dropId,omitempty"`
	Removal     Removal   `json:"removal,omitempty"`
	Outcome     Outcome   `json:"outcome,omitempty"`
	Reason      EndReason `json:"reason,omitempty"`
}

// Observer consumes session events.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// OnEvent calls f(e).
func (f ObserverFunc) OnEvent(e Event) {
	f(e)
}
