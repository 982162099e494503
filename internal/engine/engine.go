package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/aldealabs/aldea/internal/domain/world"
	"github.com/aldealabs/aldea/internal/events"
	"github.com/aldealabs/aldea/internal/platform/logger"
	"github.com/aldealabs/aldea/internal/platform/metrics"
	"github.com/aldealabs/aldea/internal/protocol"
)

// Engine orchestrates the world: it owns the state, the map, the weather and
// the clock, validates every inbound mutation, and emits an event for each
// accepted one.
type Engine struct {
	world    *WorldState
	smap     *SpatialMap
	weather  *WeatherSystem
	ticker   *Ticker
	eventLog *events.EventLog
	log      *logger.Logger
}

// NewEngine wires the engine. All collaborators are required except ticker,
// which may be nil when the clock is driven externally (tests).
func NewEngine(ws *WorldState, smap *SpatialMap, weather *WeatherSystem, ticker *Ticker, eventLog *events.EventLog, log *logger.Logger) *Engine {
	return &Engine{
		world:    ws,
		smap:     smap,
		weather:  weather,
		ticker:   ticker,
		eventLog: eventLog,
		log:      log,
	}
}

// World exposes the world state for read paths.
func (e *Engine) World() *WorldState { return e.world }

// Map exposes the spatial map for read paths.
func (e *Engine) Map() *SpatialMap { return e.smap }

// Events exposes the event log.
func (e *Engine) Events() *events.EventLog { return e.eventLog }

// Start runs the world clock until ctx is cancelled.
func (e *Engine) Start(ctx context.Context) {
	if e.ticker == nil {
		return
	}
	go e.ticker.Run(ctx, e.Tick)
}

// Tick advances the game clock by hours and reacts to calendar rollovers:
// a new day rolls weather, a new season and year are announced, stale agents
// are flagged.
func (e *Engine) Tick(hours float64) {
	dayChanged, seasonChanged, yearChanged := e.world.AdvanceClock(hours)
	metrics.Get().RecordTick()

	clock := e.world.Clock()
	e.append(events.WorldEvent{
		Type:    events.EventTypeTimeTick,
		ActorID: "world",
		Payload: clock,
		GameDay: clock.Day,
	})

	if dayChanged {
		condition, temp := e.weather.Roll(Season(clock.Season))
		e.world.SetWeather(condition, temp)
		e.append(events.WorldEvent{
			Type:    events.EventTypeDayStarted,
			ActorID: "world",
			Payload: clock,
			GameDay: clock.Day,
		})
		e.append(events.WorldEvent{
			Type:    events.EventTypeWeatherChanged,
			ActorID: "world",
			Payload: protocol.WeatherInfo{Current: condition, Temperature: temp},
			GameDay: clock.Day,
		})
		e.log.Info(fmt.Sprintf("day %d of %s, year %d: %s at %.1f degrees", clock.Day, clock.Season, clock.Year, condition, temp))
	}
	if seasonChanged {
		e.append(events.WorldEvent{
			Type:    events.EventTypeSeasonChanged,
			ActorID: "world",
			Payload: clock,
			GameDay: clock.Day,
		})
	}
	if yearChanged {
		e.log.Info(fmt.Sprintf("a new year begins: year %d", clock.Year))
	}

	for _, name := range e.world.markExpired() {
		metrics.Get().RecordHeartbeatExpiry()
		e.append(events.WorldEvent{
			Type:     events.EventTypeAgentStale,
			ActorID:  "world",
			TargetID: name,
			GameDay:  clock.Day,
		})
		e.log.Event(string(events.EventTypeAgentStale), name, "agent missed heartbeat window")
	}
}

// RegisterCharacter admits a new character, or refreshes an existing one.
// The position must be a registered plot the character is allowed to occupy;
// registering inside a locked house obeys the same door rules as moving
// into one.
func (e *Engine) RegisterCharacter(snap protocol.AgentSnapshot) error {
	if !e.smap.IsValidMove(snap.Position) {
		return &protocol.StateError{Reason: fmt.Sprintf("position %s is not on the map", snap.Position)}
	}
	if !e.smap.CanEnter(snap.Position, snap.Name) {
		return &protocol.StateError{Reason: fmt.Sprintf("%s may not enter %s", snap.Name, snap.Position)}
	}
	applied, _ := e.world.ApplyAgent(snap)
	if applied {
		e.append(events.WorldEvent{
			Type:    events.EventTypeAgentRegistered,
			ActorID: snap.Name,
			Payload: snap,
			GameDay: e.world.Clock().Day,
		})
		e.log.Event(string(events.EventTypeAgentRegistered), snap.Name, "character registered at "+snap.Position.String())
	}
	return nil
}

// UpdateCharacter applies a character sync. The position must be a
// registered plot the character is allowed to occupy; a refused update
// leaves the stored record untouched.
func (e *Engine) UpdateCharacter(snap protocol.AgentSnapshot) error {
	if !e.smap.IsValidMove(snap.Position) {
		return &protocol.StateError{Reason: fmt.Sprintf("position %s is not on the map", snap.Position)}
	}
	if !e.smap.CanEnter(snap.Position, snap.Name) {
		return &protocol.StateError{Reason: fmt.Sprintf("%s may not enter %s", snap.Name, snap.Position)}
	}
	applied, moved := e.world.ApplyAgent(snap)
	if !applied {
		// Stale stamp lost the write race. Not an error: the newer
		// write already represents this character.
		return nil
	}
	day := e.world.Clock().Day
	e.append(events.WorldEvent{
		Type:    events.EventTypeAgentUpdated,
		ActorID: snap.Name,
		Payload: snap,
		GameDay: day,
	})
	if moved {
		e.append(events.WorldEvent{
			Type:     events.EventTypeAgentMoved,
			ActorID:  snap.Name,
			TargetID: snap.Position.String(),
			GameDay:  day,
		})
	}
	return nil
}

// WorldSnapshot returns the full world view.
func (e *Engine) WorldSnapshot() protocol.WorldStateSnapshot {
	return e.world.Snapshot()
}

// AssignPlot gives the house at pos to agent.
func (e *Engine) AssignPlot(pos world.Position, agent string) error {
	if err := e.smap.Assign(pos, agent); err != nil {
		return err
	}
	e.append(events.WorldEvent{
		Type:     events.EventTypePlotAssigned,
		ActorID:  agent,
		TargetID: pos.String(),
		GameDay:  e.world.Clock().Day,
	})
	return nil
}

// LockPlot locks the house at pos. Owner-only.
func (e *Engine) LockPlot(pos world.Position, agent string) error {
	if err := e.smap.Lock(pos, agent); err != nil {
		return err
	}
	e.append(events.WorldEvent{
		Type:     events.EventTypePlotLocked,
		ActorID:  agent,
		TargetID: pos.String(),
		GameDay:  e.world.Clock().Day,
	})
	return nil
}

// UnlockPlot unlocks the house at pos. Owner-only.
func (e *Engine) UnlockPlot(pos world.Position, agent string) error {
	if err := e.smap.Unlock(pos, agent); err != nil {
		return err
	}
	e.append(events.WorldEvent{
		Type:     events.EventTypePlotUnlocked,
		ActorID:  agent,
		TargetID: pos.String(),
		GameDay:  e.world.Clock().Day,
	})
	return nil
}

// GrantVisitor authorizes visitor on the locked house at pos.
func (e *Engine) GrantVisitor(pos world.Position, owner, visitor string) error {
	if err := e.smap.GrantVisitor(pos, owner, visitor); err != nil {
		return err
	}
	e.append(events.WorldEvent{
		Type:     events.EventTypeVisitorGranted,
		ActorID:  owner,
		TargetID: visitor,
		GameDay:  e.world.Clock().Day,
	})
	return nil
}

// RevokeVisitor removes visitor's access to the house at pos.
func (e *Engine) RevokeVisitor(pos world.Position, owner, visitor string) error {
	if err := e.smap.RevokeVisitor(pos, owner, visitor); err != nil {
		return err
	}
	e.append(events.WorldEvent{
		Type:     events.EventTypeVisitorRevoked,
		ActorID:  owner,
		TargetID: visitor,
		GameDay:  e.world.Clock().Day,
	})
	return nil
}

func (e *Engine) append(ev events.WorldEvent) {
	ev.ID = events.NewEventID()
	ev.Timestamp = time.Now()
	e.eventLog.Append(ev)
}
