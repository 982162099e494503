package engine

import (
	"fmt"
	"sync"

	"github.com/aldealabs/aldea/internal/domain/world"
	"github.com/aldealabs/aldea/internal/platform/logger"
	"github.com/aldealabs/aldea/internal/protocol"
)

// BuildingKind names what stands on a plot.
type BuildingKind string

const (
	BuildingHouse  BuildingKind = "house"
	BuildingMarket BuildingKind = "market"
	BuildingEmpty  BuildingKind = "empty"
)

// Plot is one cell of the village grid.
type Plot struct {
	Position world.Position
	Kind     BuildingKind
	Owner    string
	House    *House
}

// SpatialMap is the village grid: which positions exist, what stands on
// them, and who may enter. Every check-then-mutate runs under one lock, so
// a refused operation leaves nothing half-applied.
type SpatialMap struct {
	mu    sync.RWMutex
	plots map[world.Position]*Plot
	log   *logger.Logger
}

// NewSpatialMap creates an empty map.
func NewSpatialMap(log *logger.Logger) *SpatialMap {
	return &SpatialMap{
		plots: make(map[world.Position]*Plot),
		log:   log,
	}
}

// DefaultVillage returns the built-in layout: two houses and a market on a
// single row.
func DefaultVillage(log *logger.Logger) *SpatialMap {
	sm := NewSpatialMap(log)
	sm.AddPlot(world.Position{X: 0, Y: 0}, BuildingHouse)
	sm.AddPlot(world.Position{X: 1, Y: 0}, BuildingHouse)
	sm.AddPlot(world.Position{X: 2, Y: 0}, BuildingMarket)
	return sm
}

// AddPlot registers a plot at pos. An existing plot at pos is replaced only
// if it is unowned.
func (sm *SpatialMap) AddPlot(pos world.Position, kind BuildingKind) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if existing, ok := sm.plots[pos]; ok && existing.Owner != "" {
		return
	}
	sm.plots[pos] = &Plot{Position: pos, Kind: kind}
}

// Plot returns a copy of the plot at pos.
func (sm *SpatialMap) Plot(pos world.Position) (Plot, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	p, ok := sm.plots[pos]
	if !ok {
		return Plot{}, false
	}
	return *p, true
}

// Positions returns every plot position, unordered.
func (sm *SpatialMap) Positions() []world.Position {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	out := make([]world.Position, 0, len(sm.plots))
	for pos := range sm.plots {
		out = append(out, pos)
	}
	return out
}

// IsValidMove reports whether pos is a plot on the map at all. Agents may
// only stand on registered plots.
func (sm *SpatialMap) IsValidMove(pos world.Position) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	_, ok := sm.plots[pos]
	return ok
}

// CanEnter reports whether agent may step onto pos. Unregistered positions
// and locked houses the agent is not allowed into both refuse.
func (sm *SpatialMap) CanEnter(pos world.Position, agent string) bool {
	sm.mu.RLock()
	p, ok := sm.plots[pos]
	sm.mu.RUnlock()
	if !ok {
		return false
	}
	if p.House == nil {
		return true
	}
	return p.House.Front.CanPass(agent)
}

// Assign gives the house plot at pos to agent and furnishes it. Assigning
// the same plot to its current owner again is idempotent: the existing house
// is kept, nothing is rebuilt. Assigning an already-owned plot to someone
// else fails.
func (sm *SpatialMap) Assign(pos world.Position, agent string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	p, ok := sm.plots[pos]
	if !ok {
		return &protocol.StateError{Reason: fmt.Sprintf("no plot at %s", pos)}
	}
	if p.Kind != BuildingHouse {
		return &protocol.StateError{Reason: fmt.Sprintf("plot at %s is not a house", pos)}
	}
	if p.Owner == agent {
		return nil
	}
	if p.Owner != "" {
		return &protocol.StateError{Reason: fmt.Sprintf("plot at %s already owned by %s", pos, p.Owner)}
	}
	p.Owner = agent
	p.House = NewHouse(agent)
	if sm.log != nil {
		sm.log.Event("PLOT_ASSIGNED", agent, "plot "+pos.String()+" assigned")
	}
	return nil
}

// Lock locks the house at pos. Only the owner may lock.
func (sm *SpatialMap) Lock(pos world.Position, agent string) error {
	return sm.withHouse(pos, agent, func(h *House) bool { return h.Front.Lock(agent) }, "lock")
}

// Unlock unlocks the house at pos. Only the owner may unlock.
func (sm *SpatialMap) Unlock(pos world.Position, agent string) error {
	return sm.withHouse(pos, agent, func(h *House) bool { return h.Front.Unlock(agent) }, "unlock")
}

// GrantVisitor lets visitor enter the locked house at pos. Owner-only.
func (sm *SpatialMap) GrantVisitor(pos world.Position, owner, visitor string) error {
	return sm.withHouse(pos, owner, func(h *House) bool { return h.Front.Authorize(owner, visitor) }, "grant visitor")
}

// RevokeVisitor removes visitor's access to the house at pos. Owner-only.
func (sm *SpatialMap) RevokeVisitor(pos world.Position, owner, visitor string) error {
	return sm.withHouse(pos, owner, func(h *House) bool { return h.Front.Revoke(owner, visitor) }, "revoke visitor")
}

func (sm *SpatialMap) withHouse(pos world.Position, agent string, op func(*House) bool, what string) error {
	sm.mu.RLock()
	p, ok := sm.plots[pos]
	sm.mu.RUnlock()
	if !ok || p.House == nil {
		return &protocol.StateError{Reason: fmt.Sprintf("no house at %s", pos)}
	}
	if !op(p.House) {
		return &protocol.StateError{Reason: fmt.Sprintf("%s refused at %s: %s is not the owner", what, pos, agent)}
	}
	return nil
}
