// Package timer implements the shared clock used by the session engines:
// a start/stop/pause/resume tick counter that runs either as a count-up
// stopwatch or a countdown with a one-time completion event.
//
// Advancement is tick-driven: the owner calls Tick once per tick interval
// (the TUI tick loop in production, a plain loop in tests). The only place
// wall-clock time enters is HandleVisibilityChange, which re-syncs elapsed
// time after the process was suspended.
package timer

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultTickInterval is used when Options.TickInterval is zero.
const DefaultTickInterval = 100 * time.Millisecond

// Options configures a Timer.
type Options struct {
	// TickInterval is how much elapsed time one Tick call represents.
	TickInterval time.Duration

	// Countdown switches the timer to countdown mode; Remaining is derived
	// from InitialTime and the timer auto-stops when it reaches zero.
	Countdown   bool
	InitialTime time.Duration

	// OnTick, if set, fires once per Tick while running and not paused,
	// receiving the current elapsed value.
	OnTick func(elapsed time.Duration)

	// OnComplete, if set, fires exactly once when a countdown reaches zero.
	OnComplete func()

	// Clock supplies wall-clock time for drift correction. Defaults to the
	// real clock; tests inject a fake.
	Clock clockwork.Clock
}

// State is a point-in-time view of a timer.
type State struct {
	Elapsed   time.Duration
	Remaining time.Duration
	Running   bool
	Paused    bool
}

// Timer is a tick-driven clock. It is owned by a single goroutine (the
// platform tick loop) and is not safe for concurrent use.
type Timer struct {
	opts      Options
	clock     clockwork.Clock
	elapsed   time.Duration
	running   bool
	paused    bool
	completed bool
	lastWall  time.Time
}

// New creates a timer from the given options.
func New(opts Options) *Timer {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Timer{opts: opts, clock: clock}
}

// Start begins advancing elapsed time from its current value (zero after
// Stop or Reset). Starting an already-running timer is a no-op.
func (t *Timer) Start() {
	if t.running {
		return
	}
	t.running = true
	t.paused = false
	t.lastWall = t.clock.Now()
}

// Stop halts the timer and resets elapsed time to zero. Distinct from Pause.
func (t *Timer) Stop() {
	t.running = false
	t.paused = false
	t.elapsed = 0
	t.completed = false
}

// Reset stops the timer and, in countdown mode, restores the remaining time
// to the initial value.
func (t *Timer) Reset() {
	t.Stop()
}

// Pause freezes tick accumulation without resetting elapsed time.
// Pausing a stopped or already-paused timer is a no-op.
func (t *Timer) Pause() {
	if !t.running || t.paused {
		return
	}
	t.paused = true
}

// Resume unfreezes a paused timer. Resuming a timer that is not paused is a
// no-op.
func (t *Timer) Resume() {
	if !t.running || !t.paused {
		return
	}
	t.paused = false
	t.lastWall = t.clock.Now()
}

// Tick advances the timer by one tick interval. It does nothing unless the
// timer is running and not paused.
func (t *Timer) Tick() {
	if !t.running || t.paused {
		return
	}
	t.advance(t.opts.TickInterval)
}

// HandleVisibilityChange compensates for wall-clock time passed while the
// process was suspended. When visible is true and the timer is running and
// not paused, elapsed time jumps forward to match real time since the last
// observed tick; in every other case the call is a no-op.
func (t *Timer) HandleVisibilityChange(visible bool) {
	if !visible || !t.running || t.paused {
		return
	}
	drift := t.clock.Since(t.lastWall)
	if drift <= 0 {
		return
	}
	t.advance(drift)
}

// advance moves elapsed forward, clamps countdowns at the boundary, and
// fires the tick and completion callbacks.
func (t *Timer) advance(d time.Duration) {
	t.elapsed += d
	t.lastWall = t.clock.Now()

	done := false
	if t.opts.Countdown && t.elapsed >= t.opts.InitialTime {
		t.elapsed = t.opts.InitialTime
		done = true
	}

	if t.opts.OnTick != nil {
		t.opts.OnTick(t.elapsed)
	}

	if done {
		// Auto-stop freezes elapsed at the boundary so Remaining reads zero;
		// an explicit Stop or Reset re-arms the timer.
		t.running = false
		t.paused = false
		if !t.completed {
			t.completed = true
			if t.opts.OnComplete != nil {
				t.opts.OnComplete()
			}
		}
	}
}

// Elapsed returns the accumulated elapsed time.
func (t *Timer) Elapsed() time.Duration { return t.elapsed }

// Remaining returns the time left in countdown mode, zero otherwise.
func (t *Timer) Remaining() time.Duration {
	if !t.opts.Countdown {
		return 0
	}
	if rem := t.opts.InitialTime - t.elapsed; rem > 0 {
		return rem
	}
	return 0
}

// IsRunning reports whether the timer is advancing (or paused mid-run).
func (t *Timer) IsRunning() bool { return t.running }

// IsPaused reports whether the timer is paused.
func (t *Timer) IsPaused() bool { return t.paused }

// State returns a snapshot of the timer.
func (t *Timer) State() State {
	return State{
		Elapsed:   t.elapsed,
		Remaining: t.Remaining(),
		Running:   t.running,
		Paused:    t.paused,
	}
}
