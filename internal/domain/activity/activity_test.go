package activity

import (
	"testing"
	"time"
)

// fakeClock lets tests advance time by hand.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager() (*Manager, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
	return NewManagerWithClock(clock.now), clock
}

func TestStartWhileBusyFails(t *testing.T) {
	m, _ := newTestManager()

	if !m.Start(Sleeping, 60, nil, nil) {
		t.Fatal("first Start should succeed")
	}
	if m.Start(Eating, 10, nil, nil) {
		t.Error("Start while busy must fail")
	}
	if m.Current().Kind != Sleeping {
		t.Errorf("running activity replaced: got %s", m.Current().Kind)
	}
}

func TestStartWhileNeedsExitFails(t *testing.T) {
	m, clock := newTestManager()

	m.Start(TVWatching, 5, nil, nil)
	clock.advance(6 * time.Second)
	m.Update(map[string]float64{})

	if m.State() != StateNeedsExit {
		t.Fatalf("expected needs_exit, got %s", m.State())
	}
	if m.Start(Eating, 10, nil, nil) {
		t.Error("Start during needs_exit must fail")
	}
}

func TestDurationElapsedTransitions(t *testing.T) {
	m, clock := newTestManager()

	m.Start(ShowerUse, 30, nil, nil)
	clock.advance(29 * time.Second)
	m.Update(map[string]float64{})
	if !m.IsBusy() {
		t.Error("still within duration, should be busy")
	}

	clock.advance(2 * time.Second)
	m.Update(map[string]float64{})
	if !m.NeedsExit() {
		t.Error("duration elapsed, should need exit")
	}
}

func TestExitOnlyFromNeedsExit(t *testing.T) {
	m, clock := newTestManager()

	if m.Exit() {
		t.Error("Exit while idle must fail")
	}

	m.Start(Eating, 10, nil, nil)
	if m.Exit() {
		t.Error("Exit while busy must fail")
	}

	clock.advance(11 * time.Second)
	m.Update(map[string]float64{})
	if !m.Exit() {
		t.Error("Exit from needs_exit must succeed")
	}
	if m.State() != StateIdle {
		t.Errorf("after Exit expected idle, got %s", m.State())
	}
}

func TestUpdateAppliesDeltasScaledByElapsed(t *testing.T) {
	m, clock := newTestManager()

	m.Start(Sleeping, 3600, map[string]float64{"energy": 2.0, "unknown": 9.0}, nil)

	needsMap := map[string]float64{"energy": 40}
	clock.advance(10 * time.Second)
	needsMap = m.Update(needsMap)

	if needsMap["energy"] != 60 {
		t.Errorf("energy: got %f, want 60", needsMap["energy"])
	}
	if _, ok := needsMap["unknown"]; ok {
		t.Error("deltas for needs absent from the map must not create keys")
	}
}

func TestDeltasStopAtDuration(t *testing.T) {
	m, clock := newTestManager()

	// 5s activity, 10s tick: only the 5 busy seconds count.
	m.Start(Eating, 5, map[string]float64{"hunger": 2}, nil)
	needsMap := map[string]float64{"hunger": 50}

	clock.advance(10 * time.Second)
	needsMap = m.Update(needsMap)
	if needsMap["hunger"] != 60 {
		t.Errorf("boundary tick must credit the busy portion only: got %f, want 60", needsMap["hunger"])
	}
	if !m.NeedsExit() {
		t.Fatal("duration elapsed, should need exit")
	}

	// Once in needs-exit, further ticks accrue nothing.
	clock.advance(10 * time.Second)
	needsMap = m.Update(needsMap)
	if needsMap["hunger"] != 60 {
		t.Errorf("deltas applied after needs_exit: %f", needsMap["hunger"])
	}
}

func TestPartialFinalIntervalIsCredited(t *testing.T) {
	m, clock := newTestManager()

	m.Start(ShowerUse, 30, map[string]float64{"hygiene": 1}, nil)
	needsMap := map[string]float64{"hygiene": 10}

	clock.advance(29 * time.Second)
	needsMap = m.Update(needsMap)
	if needsMap["hygiene"] != 39 {
		t.Fatalf("hygiene after 29s: got %f, want 39", needsMap["hygiene"])
	}

	// The tick crossing the end contributes the last second, not the
	// full 5s interval.
	clock.advance(5 * time.Second)
	needsMap = m.Update(needsMap)
	if needsMap["hygiene"] != 40 {
		t.Errorf("hygiene after crossing the end: got %f, want 40", needsMap["hygiene"])
	}
}

func TestExitConditionFires(t *testing.T) {
	m, clock := newTestManager()

	full := false
	m.Start(FridgeUse, 3600, nil, func(*Activity) bool { return full })

	clock.advance(time.Second)
	m.Update(map[string]float64{})
	if !m.IsBusy() {
		t.Fatal("condition false, should stay busy")
	}

	full = true
	clock.advance(time.Second)
	m.Update(map[string]float64{})
	if !m.NeedsExit() {
		t.Error("exit condition true, should need exit")
	}
}
