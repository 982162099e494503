// Package activity tracks the single timed occupation a villager can hold.
// This package is PURE and must NOT import any infrastructure packages.
//
// The machine has three states: idle (no activity), busy, and needs-exit.
// Start is refused while busy or needs-exit, which is what stops the decision
// oracle from stacking overlapping "use object" commands.
package activity

import "time"

// State of the current activity.
type State string

const (
	StateIdle      State = "idle"
	StateBusy      State = "busy"
	StateNeedsExit State = "needs_exit"
)

// Kind names a timed occupation.
type Kind string

const (
	Sleeping    Kind = "sleeping"
	Eating      Kind = "eating"
	ToiletUse   Kind = "toilet_use"
	ShowerUse   Kind = "shower_use"
	FridgeUse   Kind = "fridge_use"
	ComputerUse Kind = "computer_use"
	TVWatching  Kind = "tv_watching"
)

// ExitCondition lets an activity end before its duration elapses.
type ExitCondition func(*Activity) bool

// Activity is a running occupation. Owned exclusively by its Manager:
// created by Start, destroyed by Exit.
type Activity struct {
	Kind       Kind
	StartTime  time.Time
	Duration   float64            // seconds
	NeedDeltas map[string]float64 // per second, applied to the caller's needs map
	ExitWhen   ExitCondition
	State      State
}

// Manager enforces the at-most-one-activity invariant for a single villager.
type Manager struct {
	current  *Activity
	now      func() time.Time
	lastTick time.Time
}

// NewManager creates an idle manager using the wall clock.
func NewManager() *Manager {
	return NewManagerWithClock(time.Now)
}

// NewManagerWithClock creates a manager with an injected clock for tests.
func NewManagerWithClock(now func() time.Time) *Manager {
	return &Manager{now: now}
}

// Start begins a new activity. It fails, leaving the running activity
// untouched, if one is busy or waiting to be exited.
func (m *Manager) Start(kind Kind, duration float64, needDeltas map[string]float64, exitWhen ExitCondition) bool {
	if m.current != nil {
		return false
	}
	now := m.now()
	m.current = &Activity{
		Kind:       kind,
		StartTime:  now,
		Duration:   duration,
		NeedDeltas: needDeltas,
		ExitWhen:   exitWhen,
		State:      StateBusy,
	}
	m.lastTick = now
	return true
}

// Exit finishes the current activity. It only succeeds from needs-exit.
func (m *Manager) Exit() bool {
	if m.current == nil || m.current.State != StateNeedsExit {
		return false
	}
	m.current = nil
	return true
}

// Update advances the activity clock and applies the per-second need deltas
// for the elapsed interval to the caller-supplied needs map, returning it.
// The side effect on needs is explicit: the caller owns the map.
//
// A tick that crosses the end of the activity credits only the busy portion
// of the interval: deltas accrue up to the duration, never beyond it.
func (m *Manager) Update(needsMap map[string]float64) map[string]float64 {
	if m.current == nil {
		return needsMap
	}

	now := m.now()
	dt := now.Sub(m.lastTick).Seconds()
	m.lastTick = now

	if m.current.State != StateBusy {
		return needsMap
	}

	elapsed := now.Sub(m.current.StartTime).Seconds()
	busy := dt
	if over := elapsed - m.current.Duration; over > 0 {
		busy = dt - over
		if busy < 0 {
			busy = 0
		}
	}
	for need, perSecond := range m.current.NeedDeltas {
		if _, ok := needsMap[need]; ok {
			needsMap[need] += perSecond * busy
		}
	}

	if elapsed >= m.current.Duration {
		m.current.State = StateNeedsExit
	}
	if m.current.ExitWhen != nil && m.current.ExitWhen(m.current) {
		m.current.State = StateNeedsExit
	}
	return needsMap
}

// Current returns the running activity, nil when idle.
func (m *Manager) Current() *Activity {
	return m.current
}

// State reports the machine state.
func (m *Manager) State() State {
	if m.current == nil {
		return StateIdle
	}
	return m.current.State
}

// IsBusy reports whether an activity is running and not yet finished.
func (m *Manager) IsBusy() bool {
	return m.current != nil && m.current.State == StateBusy
}

// NeedsExit reports whether the current activity is waiting for Exit.
func (m *Manager) NeedsExit() bool {
	return m.current != nil && m.current.State == StateNeedsExit
}
