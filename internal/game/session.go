// Package game implements the drop-catching game session: the countdown,
// drop spawning, scoring and the Idle → Running → Ended state machine.
package game

import (
	"io"
	"math/rand"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/raindrops/internal/schedule"
)

// Gameplay rules shared by every difficulty.
const (
	WinScore     = 100
	InitialLives = 3
	TickInterval = time.Second
)

// Session owns score, lives, the countdown and the active drops of one
// player. All methods must be called from the goroutine that drives the
// session's Scheduler.
type Session struct {
	sched    schedule.Scheduler
	observer Observer
	weights  Weights
	field    Field
	rng      *rand.Rand
	log      *log.Logger

	state      State
	outcome    Outcome
	reason     EndReason
	difficulty Difficulty
	settings   Settings
	score      int
	lives      int
	timeLeft   int

	drops  map[DropID]*activeDrop
	nextID DropID

	tick  schedule.Task
	spawn schedule.Task
}

type activeDrop struct {
	Drop
	expiry schedule.Task
}

// Option configures a Session.
type Option func(*Session)

// WithObserver sets the receiver of session events.
func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

// WithWeights sets the drop kind weights. Invalid weights are ignored.
func WithWeights(w Weights) Option {
	return func(s *Session) {
		if w.Validate() == nil {
			s.weights = w
		}
	}
}

// WithField sets the container dimensions used for horizontal placement.
func WithField(f Field) Option {
	return func(s *Session) { s.field = f }
}

// WithRand sets the random source for spawn kinds and positions.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rng = r }
}

// WithLogger sets the logger for ignored input and transitions.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.log = l }
}

// NewSession creates an idle session scheduled on sched.
func NewSession(sched schedule.Scheduler, opts ...Option) *Session {
	s := &Session{
		sched:   sched,
		weights: DefaultWeights,
		field:   DefaultField,
		lives:   InitialLives,
		drops:   make(map[DropID]*activeDrop),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.log == nil {
		s.log = log.New(io.Discard)
	}
	if s.observer == nil {
		s.observer = ObserverFunc(func(Event) {})
	}
	return s
}

// Start begins a round at the given difficulty. It returns false, changing
// nothing, while a round is running or when the difficulty is unknown.
// Starting from Ended resets the previous round.
func (s *Session) Start(d Difficulty) bool {
	if s.state == StateRunning {
		s.log.Debug("start ignored: already running", "difficulty", d)
		return false
	}
	if !d.Valid() {
		s.log.Warn("start ignored: unknown difficulty", "difficulty", int(d))
		return false
	}

	s.clearDrops(false)
	s.difficulty = d
	s.settings = d.Settings()
	s.score = 0
	s.lives = InitialLives
	s.timeLeft = s.settings.StartingTime
	s.outcome = OutcomeNone
	s.reason = EndReasonNone
	s.state = StateRunning

	s.emit(Event{Type: EventScoreChanged, Score: s.score})
	s.emit(Event{Type: EventTimerChanged, Seconds: s.timeLeft})
	s.emit(Event{Type: EventLivesChanged, Lives: s.lives})

	s.tick = s.sched.Every(TickInterval, s.onTick)
	s.spawn = s.sched.Every(s.settings.SpawnInterval, s.onSpawn)

	s.log.Info("round started", "difficulty", d, "time", s.timeLeft)
	return true
}

// ClickDrop resolves a click on drop id. Unknown, already removed, or
// late clicks are ignored and return false.
func (s *Session) ClickDrop(id DropID) (Drop, bool) {
	if s.state != StateRunning {
		return Drop{}, false
	}
	d, ok := s.drops[id]
	if !ok {
		s.log.Debug("click ignored: no such drop", "id", id)
		return Drop{}, false
	}
	s.removeDrop(d, RemovalClicked)

	if d.Kind.IsGood() {
		s.score += d.Kind.Points()
		s.emit(Event{Type: EventScoreChanged, Score: s.score})
		if s.score >= WinScore {
			s.end(EndReasonScoreReached)
		}
	} else {
		if s.lives > 0 {
			s.lives--
		}
		s.emit(Event{Type: EventLivesChanged, Lives: s.lives})
		if s.lives <= 0 {
			s.end(EndReasonLivesLost)
		}
	}
	return d.Drop, true
}

// ExpireDrop removes a drop that reached the bottom without being clicked.
// Expiry never changes score or lives. Returns false when nothing was removed.
func (s *Session) ExpireDrop(id DropID) bool {
	if s.state != StateRunning {
		return false
	}
	d, ok := s.drops[id]
	if !ok {
		return false
	}
	s.removeDrop(d, RemovalExpired)
	return true
}

// Reset returns an idle or ended session to Idle. A running round must end
// first; Reset returns false in that case.
func (s *Session) Reset() bool {
	if s.state == StateRunning {
		s.log.Debug("reset ignored: round running")
		return false
	}
	s.state = StateIdle
	s.outcome = OutcomeNone
	s.reason = EndReasonNone
	s.emit(Event{Type: EventSessionReset})
	return true
}

// SetField updates the container dimensions for future spawns.
func (s *Session) SetField(f Field) {
	if f.Width <= 0 {
		return
	}
	s.field = f
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	return s.state
}

// Snapshot returns a copy of the session for rendering.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		State:      s.state,
		Outcome:    s.outcome,
		Reason:     s.reason,
		Difficulty: s.difficulty,
		Score:      s.score,
		Lives:      s.lives,
		TimeLeft:   s.timeLeft,
		Drops:      make([]Drop, 0, len(s.drops)),
	}
	for _, d := range s.drops {
		snap.Drops = append(snap.Drops, d.Drop)
	}
	slices.SortFunc(snap.Drops, func(a, b Drop) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
	return snap
}

// onTick is the countdown producer.
func (s *Session) onTick() {
	if s.state != StateRunning {
		return
	}
	s.timeLeft--
	if s.timeLeft < 0 {
		s.timeLeft = 0
	}
	s.emit(Event{Type: EventTimerChanged, Seconds: s.timeLeft})
	if s.timeLeft <= 0 {
		s.end(EndReasonTimeout)
	}
}

// onSpawn is the drop producer.
func (s *Session) onSpawn() {
	if s.state != StateRunning {
		return
	}
	s.nextID++
	d := &activeDrop{
		Drop: Drop{
			ID:           s.nextID,
			Kind:         s.weights.Draw(s.rng.Float64()),
			X:            s.rng.Float64() * s.field.MaxX(),
			SpawnedAt:    s.sched.Now(),
			FallDuration: s.settings.FallDuration,
		},
	}
	id := d.ID
	d.expiry = s.sched.After(s.settings.FallDuration, func() { s.ExpireDrop(id) })
	s.drops[id] = d

	spawned := d.Drop
	s.emit(Event{
		Type:        EventDropSpawned,
		Drop:        &spawned,
		FallSeconds: s.settings.FallDuration.Seconds(),
	})
}

// end stops both producers and every pending expiry, then reports the outcome.
func (s *Session) end(reason EndReason) {
	if s.state != StateRunning {
		return
	}
	s.state = StateEnded
	s.reason = reason
	if s.score >= WinScore {
		s.outcome = OutcomeWin
	} else {
		s.outcome = OutcomeLose
	}

	if s.tick != nil {
		s.tick.Stop()
	}
	if s.spawn != nil {
		s.spawn.Stop()
	}
	s.clearDrops(true)

	s.emit(Event{Type: EventGameEnded, Outcome: s.outcome, Score: s.score, Reason: reason})
	s.log.Info("round ended", "outcome", s.outcome, "reason", reason, "score", s.score)
}

func (s *Session) removeDrop(d *activeDrop, why Removal) {
	d.expiry.Stop()
	delete(s.drops, d.ID)
	s.emit(Event{Type: EventDropRemoved, DropID: d.ID, Removal: why})
}

// clearDrops removes every active drop in ID order.
func (s *Session) clearDrops(notify bool) {
	ids := make([]DropID, 0, len(s.drops))
	for id := range s.drops {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		d := s.drops[id]
		d.expiry.Stop()
		delete(s.drops, id)
		if notify {
			s.emit(Event{Type: EventDropRemoved, DropID: id, Removal: RemovalCleared})
		}
	}
}

func (s *Session) emit(e Event) {
	s.observer.OnEvent(e)
}
