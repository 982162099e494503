// Package events provides the append-only log of world events. Every
// mutation the server accepts leaves a trace here, which is what the
// observer feed and the sqlite ledger are built on.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a world event.
type EventType string

const (
	EventTypeTimeTick        EventType = "TIME_TICK"
	EventTypeDayStarted      EventType = "DAY_STARTED"
	EventTypeSeasonChanged   EventType = "SEASON_CHANGED"
	EventTypeWeatherChanged  EventType = "WEATHER_CHANGED"
	EventTypeAgentRegistered EventType = "AGENT_REGISTERED"
	EventTypeAgentUpdated    EventType = "AGENT_UPDATED"
	EventTypeAgentMoved      EventType = "AGENT_MOVED"
	EventTypeAgentStale      EventType = "AGENT_STALE"
	EventTypePlotAssigned    EventType = "PLOT_ASSIGNED"
	EventTypePlotLocked      EventType = "PLOT_LOCKED"
	EventTypePlotUnlocked    EventType = "PLOT_UNLOCKED"
	EventTypeVisitorGranted  EventType = "VISITOR_GRANTED"
	EventTypeVisitorRevoked  EventType = "VISITOR_REVOKED"
)

// WorldEvent represents an immutable record of something that happened.
type WorldEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`            // who performed the action
	TargetID  string      `json:"target_id,omitempty"` // who or what was affected
	Payload   interface{} `json:"payload,omitempty"`
	GameDay   int         `json:"game_day"`
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event WorldEvent) error
}

// EventLog is the in-memory append-only log of world events.
type EventLog struct {
	mu        sync.RWMutex
	events    []WorldEvent
	persister EventPersister
	listeners []func(WorldEvent)
}

// AddListener registers a callback invoked on every append. Listeners run
// on the appender's goroutine and must not block.
func (el *EventLog) AddListener(fn func(WorldEvent)) {
	el.mu.Lock()
	el.listeners = append(el.listeners, fn)
	el.mu.Unlock()
}

// NewEventLog creates a new event log. persister may be nil for tests.
func NewEventLog(persister EventPersister) *EventLog {
	return &EventLog{
		events:    make([]WorldEvent, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
// The durable write happens off the caller's path; a failed write never
// blocks a live mutation.
func (el *EventLog) Append(event WorldEvent) {
	el.mu.Lock()
	el.events = append(el.events, event)
	listeners := el.listeners
	el.mu.Unlock()

	for _, fn := range listeners {
		fn(event)
	}
	if el.persister != nil {
		go func(e WorldEvent) {
			_ = el.persister.Append(e)
		}(event)
	}
}

// GetByActor returns all events performed by a specific actor.
func (el *EventLog) GetByActor(actorID string) []WorldEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []WorldEvent
	for _, e := range el.events {
		if e.ActorID == actorID {
			result = append(result, e)
		}
	}
	return result
}

// GetByDay returns all events that occurred on a specific game day.
func (el *EventLog) GetByDay(day int) []WorldEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []WorldEvent
	for _, e := range el.events {
		if e.GameDay == day {
			result = append(result, e)
		}
	}
	return result
}

// Replay returns the full history of events.
func (el *EventLog) Replay() []WorldEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	out := make([]WorldEvent, len(el.events))
	copy(out, el.events)
	return out
}

// NewEventID creates a unique event identifier.
func NewEventID() string {
	return uuid.NewString()
}
