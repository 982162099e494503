package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/aldealabs/aldea/internal/domain/world"
	"github.com/aldealabs/aldea/internal/platform/logger"
	"github.com/aldealabs/aldea/internal/platform/metrics"
	"github.com/aldealabs/aldea/internal/protocol"
)

// Season of the game calendar.
type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Fall   Season = "fall"
	Winter Season = "winter"
)

// seasonOrder drives the rollover cycle. Winter wrapping back to spring
// advances the year.
var seasonOrder = []Season{Spring, Summer, Fall, Winter}

func nextSeason(s Season) (Season, bool) {
	for i, cur := range seasonOrder {
		if cur == s {
			next := seasonOrder[(i+1)%len(seasonOrder)]
			return next, i == len(seasonOrder)-1
		}
	}
	return Spring, false
}

const (
	hoursPerDay   = 24.0
	daysPerSeason = 30
)

// AgentRecord is the server-side state of one character.
type AgentRecord struct {
	Name       string
	Position   world.Position
	Online     bool
	LastUpdate time.Time // server receipt time, drives the heartbeat window
	Stamp      float64   // client's last_update, drives write ordering
	Status     string
	Needs      map[string]float64
}

// Persister durably stores a world snapshot. The file store and the sqlite
// ledger both implement it.
type Persister interface {
	Persist(snap protocol.WorldStateSnapshot) error
}

// WorldState is the authoritative shared state: the calendar clock, the
// weather, and every agent ever registered. Agent records are never deleted;
// liveness is inferred from the heartbeat window.
type WorldState struct {
	mu sync.Mutex

	agents      map[string]*AgentRecord
	clock       float64 // hours, [0, 24)
	day         int
	season      Season
	year        int
	weather     string
	temperature float64

	persister       Persister
	log             *logger.Logger
	now             func() time.Time
	heartbeatWindow time.Duration
}

// NewWorldState creates a world at the default starting point: 08:00 on day
// 1 of spring, year 1, sunny at 22 degrees. persister may be nil for tests.
func NewWorldState(persister Persister, log *logger.Logger) *WorldState {
	return &WorldState{
		agents:          make(map[string]*AgentRecord),
		clock:           8.0,
		day:             1,
		season:          Spring,
		year:            1,
		weather:         "sunny",
		temperature:     22.0,
		persister:       persister,
		log:             log,
		now:             time.Now,
		heartbeatWindow: 30 * time.Second,
	}
}

// SetClockSource overrides the wall clock. Tests only.
func (ws *WorldState) SetClockSource(now func() time.Time) {
	ws.mu.Lock()
	ws.now = now
	ws.mu.Unlock()
}

// SetHeartbeatWindow overrides the liveness window.
func (ws *WorldState) SetHeartbeatWindow(d time.Duration) {
	ws.mu.Lock()
	ws.heartbeatWindow = d
	ws.mu.Unlock()
}

// Restore loads a previously persisted snapshot. Unknown agents in the
// snapshot are adopted as offline records so history survives restarts.
func (ws *WorldState) Restore(snap protocol.WorldStateSnapshot) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if snap.Time.Day > 0 {
		ws.clock = snap.Time.CurrentTime
		ws.day = snap.Time.Day
		ws.year = snap.Time.Year
		if snap.Time.Season != "" {
			ws.season = Season(snap.Time.Season)
		}
	}
	if snap.Weather.Current != "" {
		ws.weather = snap.Weather.Current
		ws.temperature = snap.Weather.Temperature
	}
	for name, a := range snap.Characters {
		rec := recordFromSnapshot(a)
		rec.Online = false
		ws.agents[name] = rec
	}
}

func recordFromSnapshot(a protocol.AgentSnapshot) *AgentRecord {
	needs := make(map[string]float64, len(a.Needs))
	for k, v := range a.Needs {
		needs[k] = v
	}
	return &AgentRecord{
		Name:       a.Name,
		Position:   a.Position,
		Online:     a.Online,
		LastUpdate: a.LastUpdateTime(),
		Stamp:      a.LastUpdate,
		Status:     a.Status,
		Needs:      needs,
	}
}

// ApplyAgent upserts a character record. Concurrent writers to the same name
// are ordered by the request's last_update stamp: a write carrying an older
// stamp than the stored one is dropped without error, so the latest write
// wins regardless of arrival order. Returns whether the write was applied
// and whether the position changed.
func (ws *WorldState) ApplyAgent(a protocol.AgentSnapshot) (applied bool, moved bool) {
	ws.mu.Lock()

	now := ws.now()
	stamp := a.LastUpdate
	if stamp == 0 {
		// Stampless writes are ordered by arrival time. They go through
		// the same comparison as stamped ones, so a missing stamp can
		// never clobber a strictly newer record.
		stamp = float64(now.UnixNano()) / 1e9
	}
	existing, ok := ws.agents[a.Name]
	if ok && stamp < existing.Stamp {
		ws.mu.Unlock()
		return false, false
	}

	rec := recordFromSnapshot(a)
	rec.Online = true
	rec.LastUpdate = now
	rec.Stamp = stamp
	moved = ok && existing.Position != rec.Position
	ws.agents[a.Name] = rec
	ws.mu.Unlock()

	ws.persist()
	return true, moved
}

// SetPosition moves an agent server-side, stamping the record with the
// current time.
func (ws *WorldState) SetPosition(name string, pos world.Position) error {
	ws.mu.Lock()
	rec, ok := ws.agents[name]
	if !ok {
		ws.mu.Unlock()
		return &protocol.StateError{Reason: "unknown agent " + name}
	}
	rec.Position = pos
	rec.LastUpdate = ws.now()
	rec.Stamp = float64(rec.LastUpdate.UnixNano()) / 1e9
	ws.mu.Unlock()

	ws.persist()
	return nil
}

// Agent returns a copy of the named record.
func (ws *WorldState) Agent(name string) (AgentRecord, bool) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	rec, ok := ws.agents[name]
	if !ok {
		return AgentRecord{}, false
	}
	out := *rec
	out.Needs = make(map[string]float64, len(rec.Needs))
	for k, v := range rec.Needs {
		out.Needs[k] = v
	}
	return out, true
}

// IsOnline reports whether the named agent is live: the record exists, is
// flagged online, and has checked in within the heartbeat window. A record
// restored from disk starts offline and stays offline until it checks in,
// however fresh its persisted stamp.
func (ws *WorldState) IsOnline(name string) bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	rec, ok := ws.agents[name]
	if !ok {
		return false
	}
	return rec.Online && ws.now().Sub(rec.LastUpdate) < ws.heartbeatWindow
}

// markExpired flips Online on every record whose heartbeat window has
// lapsed. Records stay in the map; only the flag changes. Returns the names
// that expired on this sweep.
func (ws *WorldState) markExpired() []string {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	var expired []string
	now := ws.now()
	for name, rec := range ws.agents {
		if rec.Online && now.Sub(rec.LastUpdate) >= ws.heartbeatWindow {
			rec.Online = false
			expired = append(expired, name)
		}
	}
	return expired
}

// AdvanceClock moves the game clock forward by dh hours, handling day,
// season and year rollovers. Crossing midnight advances the day; a day past
// 30 resets to day 1 and advances the season; winter wrapping to spring
// advances the year. Returns what changed.
func (ws *WorldState) AdvanceClock(dh float64) (dayChanged, seasonChanged, yearChanged bool) {
	ws.mu.Lock()
	ws.clock += dh
	for ws.clock >= hoursPerDay {
		ws.clock -= hoursPerDay
		ws.day++
		dayChanged = true
		if ws.day > daysPerSeason {
			ws.day = 1
			next, wrapped := nextSeason(ws.season)
			ws.season = next
			seasonChanged = true
			if wrapped {
				ws.year++
				yearChanged = true
			}
		}
	}
	ws.mu.Unlock()

	if dayChanged {
		ws.persist()
	}
	return dayChanged, seasonChanged, yearChanged
}

// SetWeather records a new weather roll.
func (ws *WorldState) SetWeather(weather string, temperature float64) {
	ws.mu.Lock()
	ws.weather = weather
	ws.temperature = temperature
	ws.mu.Unlock()
}

// Clock returns the calendar as wire TimeInfo.
func (ws *WorldState) Clock() protocol.TimeInfo {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return protocol.TimeInfo{
		CurrentTime: ws.clock,
		Day:         ws.day,
		Season:      string(ws.season),
		Year:        ws.year,
	}
}

// IsDaytime reports whether the clock is between 06:00 and 20:00.
func (ws *WorldState) IsDaytime() bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.clock >= 6.0 && ws.clock < 20.0
}

// Snapshot returns the full world view. Online flags are computed against
// the heartbeat window at snapshot time, so a stale record reads offline
// even before the next sweep.
func (ws *WorldState) Snapshot() protocol.WorldStateSnapshot {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.snapshotLocked()
}

func (ws *WorldState) snapshotLocked() protocol.WorldStateSnapshot {
	now := ws.now()
	chars := make(map[string]protocol.AgentSnapshot, len(ws.agents))
	for name, rec := range ws.agents {
		needs := make(map[string]float64, len(rec.Needs))
		for k, v := range rec.Needs {
			needs[k] = v
		}
		chars[name] = protocol.AgentSnapshot{
			Name:       rec.Name,
			Position:   rec.Position,
			Online:     rec.Online && now.Sub(rec.LastUpdate) < ws.heartbeatWindow,
			LastUpdate: rec.Stamp,
			Status:     rec.Status,
			Needs:      needs,
		}
	}
	return protocol.WorldStateSnapshot{
		Time: protocol.TimeInfo{
			CurrentTime: ws.clock,
			Day:         ws.day,
			Season:      string(ws.season),
			Year:        ws.year,
		},
		Weather: protocol.WeatherInfo{
			Current:     ws.weather,
			Temperature: ws.temperature,
		},
		Characters: chars,
	}
}

// persist writes the current snapshot through the persister, retrying once.
// A second failure is logged and counted but the in-memory state stands.
func (ws *WorldState) persist() {
	if ws.persister == nil {
		return
	}
	ws.mu.Lock()
	snap := ws.snapshotLocked()
	ws.mu.Unlock()

	start := time.Now()
	err := ws.persister.Persist(snap)
	if err != nil {
		err = ws.persister.Persist(snap)
	}
	metrics.Get().RecordPersist(time.Since(start), err)
	if err != nil && ws.log != nil {
		ws.log.Warn(fmt.Sprintf("persist failed after retry: %v", err))
	}
}
