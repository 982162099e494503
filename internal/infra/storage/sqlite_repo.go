package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aldealabs/aldea/internal/domain/world"
	"github.com/aldealabs/aldea/internal/events"
	"github.com/aldealabs/aldea/internal/platform/metrics"
	"github.com/aldealabs/aldea/internal/protocol"
)

// SQLiteEventRepo persists world events. It satisfies events.EventPersister
// so it can be plugged straight into the event log.
type SQLiteEventRepo struct {
	db *sql.DB
}

func NewSQLiteEventRepo(db *sql.DB) *SQLiteEventRepo {
	return &SQLiteEventRepo{db: db}
}

// Append writes one event row.
func (r *SQLiteEventRepo) Append(ev events.WorldEvent) error {
	var payload []byte
	if ev.Payload != nil {
		var err error
		payload, err = json.Marshal(ev.Payload)
		if err != nil {
			return &protocol.PersistenceError{Op: "marshal event payload", Err: err}
		}
	}
	_, err := r.db.Exec(
		`INSERT OR IGNORE INTO events (id, ts, type, actor_id, target_id, payload, game_day)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.Timestamp.UTC().Format(time.RFC3339Nano), string(ev.Type),
		ev.ActorID, ev.TargetID, string(payload), ev.GameDay,
	)
	if err != nil {
		return &protocol.PersistenceError{Op: "append event", Err: err}
	}
	metrics.Get().RecordEventWrite()
	return nil
}

// ByDay returns all events recorded on the given game day, oldest first.
func (r *SQLiteEventRepo) ByDay(day int) ([]events.WorldEvent, error) {
	rows, err := r.db.Query(
		`SELECT id, ts, type, actor_id, target_id, payload, game_day
		 FROM events WHERE game_day = ? ORDER BY ts`, day)
	if err != nil {
		return nil, &protocol.PersistenceError{Op: "query events by day", Err: err}
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ByActor returns all events performed by actorID, oldest first.
func (r *SQLiteEventRepo) ByActor(actorID string) ([]events.WorldEvent, error) {
	rows, err := r.db.Query(
		`SELECT id, ts, type, actor_id, target_id, payload, game_day
		 FROM events WHERE actor_id = ? ORDER BY ts`, actorID)
	if err != nil {
		return nil, &protocol.PersistenceError{Op: "query events by actor", Err: err}
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]events.WorldEvent, error) {
	var out []events.WorldEvent
	for rows.Next() {
		var ev events.WorldEvent
		var ts, payload string
		var target sql.NullString
		if err := rows.Scan(&ev.ID, &ts, &ev.Type, &ev.ActorID, &target, &payload, &ev.GameDay); err != nil {
			return nil, &protocol.PersistenceError{Op: "scan event", Err: err}
		}
		ev.TargetID = target.String
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			ev.Timestamp = t
		}
		if payload != "" {
			var p interface{}
			if err := json.Unmarshal([]byte(payload), &p); err == nil {
				ev.Payload = p
			}
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// SQLiteAgentRepo stores character rows. The upsert only overwrites a row
// when the incoming stamp is at least as new, so replayed or delayed writes
// cannot roll an agent back.
type SQLiteAgentRepo struct {
	db *sql.DB
}

func NewSQLiteAgentRepo(db *sql.DB) *SQLiteAgentRepo {
	return &SQLiteAgentRepo{db: db}
}

// Upsert inserts or refreshes one agent row, last-write-wins.
func (r *SQLiteAgentRepo) Upsert(snap protocol.AgentSnapshot) error {
	needs, err := json.Marshal(snap.Needs)
	if err != nil {
		return &protocol.PersistenceError{Op: "marshal needs", Err: err}
	}
	online := 0
	if snap.Online {
		online = 1
	}
	_, err = r.db.Exec(
		`INSERT INTO agents (name, x, y, online, last_update, status, needs)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			x = excluded.x,
			y = excluded.y,
			online = excluded.online,
			last_update = excluded.last_update,
			status = excluded.status,
			needs = excluded.needs
		 WHERE excluded.last_update >= agents.last_update`,
		snap.Name, snap.Position.X, snap.Position.Y, online, snap.LastUpdate, snap.Status, string(needs),
	)
	if err != nil {
		return &protocol.PersistenceError{Op: "upsert agent", Err: err}
	}
	return nil
}

// Get reads one agent row.
func (r *SQLiteAgentRepo) Get(name string) (protocol.AgentSnapshot, bool, error) {
	row := r.db.QueryRow(
		`SELECT name, x, y, online, last_update, status, needs FROM agents WHERE name = ?`, name)
	snap, err := scanAgent(row.Scan)
	if err == sql.ErrNoRows {
		return protocol.AgentSnapshot{}, false, nil
	}
	if err != nil {
		return protocol.AgentSnapshot{}, false, &protocol.PersistenceError{Op: "get agent", Err: err}
	}
	return snap, true, nil
}

// All reads every agent row keyed by name.
func (r *SQLiteAgentRepo) All() (map[string]protocol.AgentSnapshot, error) {
	rows, err := r.db.Query(`SELECT name, x, y, online, last_update, status, needs FROM agents`)
	if err != nil {
		return nil, &protocol.PersistenceError{Op: "query agents", Err: err}
	}
	defer rows.Close()

	out := make(map[string]protocol.AgentSnapshot)
	for rows.Next() {
		snap, err := scanAgent(rows.Scan)
		if err != nil {
			return nil, &protocol.PersistenceError{Op: "scan agent", Err: err}
		}
		out[snap.Name] = snap
	}
	return out, rows.Err()
}

func scanAgent(scan func(...interface{}) error) (protocol.AgentSnapshot, error) {
	var snap protocol.AgentSnapshot
	var x, y, online int
	var needs sql.NullString
	var status sql.NullString
	if err := scan(&snap.Name, &x, &y, &online, &snap.LastUpdate, &status, &needs); err != nil {
		return snap, err
	}
	snap.Position = world.Position{X: x, Y: y}
	snap.Online = online != 0
	snap.Status = status.String
	if needs.String != "" {
		if err := json.Unmarshal([]byte(needs.String), &snap.Needs); err != nil {
			return snap, fmt.Errorf("decode needs for %s: %w", snap.Name, err)
		}
	}
	return snap, nil
}
