package storage

import (
	"github.com/aldealabs/aldea/internal/events"
	"github.com/aldealabs/aldea/internal/protocol"
)

// EventRepository is the durable side of the event log.
type EventRepository interface {
	Append(ev events.WorldEvent) error
	ByDay(day int) ([]events.WorldEvent, error)
	ByActor(actorID string) ([]events.WorldEvent, error)
}

// AgentRepository stores the per-character rows of the ledger. Upsert is
// last-write-wins on the stored timestamp, matching the in-memory rule.
type AgentRepository interface {
	Upsert(snap protocol.AgentSnapshot) error
	Get(name string) (protocol.AgentSnapshot, bool, error)
	All() (map[string]protocol.AgentSnapshot, error)
}
