package events

import (
	"sync"
	"testing"
	"time"
)

func makeEvent(t EventType, actor string, day int) WorldEvent {
	return WorldEvent{
		ID:        NewEventID(),
		Timestamp: time.Now(),
		Type:      t,
		ActorID:   actor,
		GameDay:   day,
	}
}

func TestAppendAndReplay(t *testing.T) {
	el := NewEventLog(nil)
	el.Append(makeEvent(EventTypeAgentRegistered, "Alex", 1))
	el.Append(makeEvent(EventTypeAgentMoved, "Alex", 1))
	el.Append(makeEvent(EventTypeAgentRegistered, "Sam", 2))

	all := el.Replay()
	if len(all) != 3 {
		t.Fatalf("replay: got %d events", len(all))
	}
	// Replay hands out a copy.
	all[0].ActorID = "tampered"
	if el.Replay()[0].ActorID != "Alex" {
		t.Error("replay must not expose the internal slice")
	}
}

func TestFilters(t *testing.T) {
	el := NewEventLog(nil)
	el.Append(makeEvent(EventTypeAgentRegistered, "Alex", 1))
	el.Append(makeEvent(EventTypeAgentMoved, "Sam", 1))
	el.Append(makeEvent(EventTypeAgentMoved, "Alex", 2))

	if got := el.GetByActor("Alex"); len(got) != 2 {
		t.Errorf("by actor: got %d, want 2", len(got))
	}
	if got := el.GetByDay(1); len(got) != 2 {
		t.Errorf("by day: got %d, want 2", len(got))
	}
	if got := el.GetByDay(9); len(got) != 0 {
		t.Errorf("unknown day: got %d, want 0", len(got))
	}
}

func TestListenersSeeEveryAppend(t *testing.T) {
	el := NewEventLog(nil)
	var got []EventType
	el.AddListener(func(ev WorldEvent) { got = append(got, ev.Type) })

	el.Append(makeEvent(EventTypeTimeTick, "world", 1))
	el.Append(makeEvent(EventTypeDayStarted, "world", 2))
	if len(got) != 2 || got[1] != EventTypeDayStarted {
		t.Errorf("listener calls: %v", got)
	}
}

func TestConcurrentAppend(t *testing.T) {
	el := NewEventLog(nil)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				el.Append(makeEvent(EventTypeTimeTick, "world", 1))
			}
		}()
	}
	wg.Wait()
	if got := len(el.Replay()); got != 500 {
		t.Errorf("appends lost: got %d, want 500", got)
	}
}
