// Package schedule provides cancellable deferred and periodic callbacks
// driven by an explicit clock, so that all game logic runs on the goroutine
// that owns the frame loop.
package schedule

import "time"

// Task is a handle to a scheduled callback.
type Task interface {
	// Stop cancels the task. Safe to call more than once and from inside
	// the task's own callback.
	Stop()
}

// Scheduler schedules callbacks against a monotonic game clock.
type Scheduler interface {
	// Now returns the elapsed scheduler time.
	Now() time.Duration
	// After runs fn once, d after the current time.
	After(d time.Duration, fn func()) Task
	// Every runs fn every d, starting d after the current time.
	Every(d time.Duration, fn func()) Task
}

// Timers is a Scheduler whose clock only moves when Advance is called.
// Callbacks run synchronously inside Advance, in due-time order; ties run in
// the order they were scheduled. Timers is not safe for concurrent use.
type Timers struct {
	now   time.Duration
	seq   uint64
	tasks []*timerTask
}

// Compile-time check that Timers implements Scheduler.
var _ Scheduler = (*Timers)(nil)

type timerTask struct {
	due     time.Duration
	every   time.Duration
	seq     uint64
	fn      func()
	stopped bool
}

func (t *timerTask) Stop() {
	t.stopped = true
}

// NewTimers creates a clock starting at zero.
func NewTimers() *Timers {
	return &Timers{}
}

// Now returns the elapsed scheduler time.
func (t *Timers) Now() time.Duration {
	return t.now
}

// After schedules fn to run once after d. Non-positive d runs on the next Advance.
func (t *Timers) After(d time.Duration, fn func()) Task {
	if d < 0 {
		d = 0
	}
	return t.add(d, 0, fn)
}

// Every schedules fn to run every d. A non-positive interval yields a
// stopped task because it would never let the clock move forward.
func (t *Timers) Every(d time.Duration, fn func()) Task {
	if d <= 0 {
		return &timerTask{stopped: true}
	}
	return t.add(d, d, fn)
}

func (t *Timers) add(delay, every time.Duration, fn func()) *timerTask {
	t.seq++
	task := &timerTask{
		due:   t.now + delay,
		every: every,
		seq:   t.seq,
		fn:    fn,
	}
	t.tasks = append(t.tasks, task)
	return task
}

// Advance moves the clock forward by d, running every callback that falls
// due on the way. The clock reads the callback's due time while it runs.
func (t *Timers) Advance(d time.Duration) {
	if d < 0 {
		d = 0
	}
	target := t.now + d

	for {
		next := t.nextDue(target)
		if next == nil {
			break
		}
		t.now = next.due

		// Reschedule before running so the callback can stop its own task
		if next.every > 0 {
			next.due += next.every
			t.seq++
			next.seq = t.seq
		} else {
			next.stopped = true
		}
		next.fn()
	}

	t.now = target
	t.compact()
}

// Pending returns the number of live tasks.
func (t *Timers) Pending() int {
	n := 0
	for _, task := range t.tasks {
		if !task.stopped {
			n++
		}
	}
	return n
}

// nextDue returns the earliest live task due at or before target.
func (t *Timers) nextDue(target time.Duration) *timerTask {
	var best *timerTask
	for _, task := range t.tasks {
		if task.stopped || task.due > target {
			continue
		}
		if best == nil || task.due < best.due || (task.due == best.due && task.seq < best.seq) {
			best = task
		}
	}
	return best
}

// compact drops stopped tasks, reusing the backing array.
func (t *Timers) compact() {
	kept := t.tasks[:0]
	for _, task := range t.tasks {
		if !task.stopped {
			kept = append(kept, task)
		}
	}
	for i := len(kept); i < len(t.tasks); i++ {
		t.tasks[i] = nil
	}
	t.tasks = kept
}
