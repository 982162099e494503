package engine

import (
	"errors"
	"testing"

	"github.com/aldealabs/aldea/internal/domain/world"
	"github.com/aldealabs/aldea/internal/protocol"
)

func TestDefaultVillageLayout(t *testing.T) {
	sm := DefaultVillage(nil)

	for _, pos := range []world.Position{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}} {
		if !sm.IsValidMove(pos) {
			t.Errorf("default plot %s missing", pos)
		}
	}
	if sm.IsValidMove(world.Position{X: 5, Y: 5}) {
		t.Error("unregistered position must be invalid")
	}
	market, _ := sm.Plot(world.Position{X: 2, Y: 0})
	if market.Kind != BuildingMarket {
		t.Errorf("plot (2,0): got %s, want market", market.Kind)
	}
}

func TestAssignOwnedPlotFails(t *testing.T) {
	sm := DefaultVillage(nil)
	pos := world.Position{X: 0, Y: 0}

	if err := sm.Assign(pos, "Alex"); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	err := sm.Assign(pos, "Sam")
	if err == nil {
		t.Fatal("assigning an owned plot to another agent must fail")
	}
	var serr *protocol.StateError
	if !errors.As(err, &serr) {
		t.Errorf("expected StateError, got %T", err)
	}
	p, _ := sm.Plot(pos)
	if p.Owner != "Alex" {
		t.Errorf("refused assign mutated the plot: owner %s", p.Owner)
	}
}

func TestAssignIsIdempotentForOwner(t *testing.T) {
	sm := DefaultVillage(nil)
	pos := world.Position{X: 0, Y: 0}

	if err := sm.Assign(pos, "Alex"); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	before, _ := sm.Plot(pos)
	if err := sm.Assign(pos, "Alex"); err != nil {
		t.Fatalf("re-assign to owner: %v", err)
	}
	after, _ := sm.Plot(pos)
	if before.House != after.House {
		t.Error("re-assign must keep the existing house, not rebuild it")
	}
}

func TestAssignNonHouseFails(t *testing.T) {
	sm := DefaultVillage(nil)
	if err := sm.Assign(world.Position{X: 2, Y: 0}, "Alex"); err == nil {
		t.Error("market plots must not be assignable")
	}
	if err := sm.Assign(world.Position{X: 9, Y: 9}, "Alex"); err == nil {
		t.Error("assigning an unregistered position must fail")
	}
}

func TestCanEnterLockedHouse(t *testing.T) {
	sm := DefaultVillage(nil)
	pos := world.Position{X: 0, Y: 0}
	if err := sm.Assign(pos, "Alex"); err != nil {
		t.Fatal(err)
	}

	if !sm.CanEnter(pos, "Sam") {
		t.Error("unlocked house must admit anyone")
	}

	if err := sm.Lock(pos, "Alex"); err != nil {
		t.Fatalf("owner lock: %v", err)
	}
	if sm.CanEnter(pos, "Sam") {
		t.Error("locked house must refuse strangers")
	}
	if !sm.CanEnter(pos, "Alex") {
		t.Error("locked house must always admit its owner")
	}

	if err := sm.GrantVisitor(pos, "Alex", "Sam"); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if !sm.CanEnter(pos, "Sam") {
		t.Error("granted visitor must be admitted while locked")
	}

	if err := sm.RevokeVisitor(pos, "Alex", "Sam"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if sm.CanEnter(pos, "Sam") {
		t.Error("revoked visitor must be refused")
	}

	if err := sm.Unlock(pos, "Alex"); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if !sm.CanEnter(pos, "Sam") {
		t.Error("unlocked house must admit anyone again")
	}
}

func TestDoorOpsAreOwnerOnly(t *testing.T) {
	sm := DefaultVillage(nil)
	pos := world.Position{X: 0, Y: 0}
	if err := sm.Assign(pos, "Alex"); err != nil {
		t.Fatal(err)
	}

	if err := sm.Lock(pos, "Sam"); err == nil {
		t.Error("non-owner lock must fail")
	}
	if err := sm.GrantVisitor(pos, "Sam", "Eve"); err == nil {
		t.Error("non-owner grant must fail")
	}
	if err := sm.Lock(pos, "Alex"); err != nil {
		t.Fatal(err)
	}
	if err := sm.Unlock(pos, "Sam"); err == nil {
		t.Error("non-owner unlock must fail")
	}
	// The failed ops changed nothing.
	if sm.CanEnter(pos, "Eve") {
		t.Error("refused grant must not admit the visitor")
	}
}

func TestHouseFurnishing(t *testing.T) {
	h := NewHouse("Alex")

	room, ok := h.Room(world.Position{X: 1, Y: 1})
	if !ok || room != RoomKitchen {
		t.Errorf("room (1,1): got %s, want kitchen", room)
	}
	for _, id := range []string{"bed", "toilet", "shower", "fridge", "stove", "tv", "computer", "couch", "phone", "door"} {
		if !h.HasObject(id) {
			t.Errorf("default house missing %s", id)
		}
	}
	if h.Front.Owner() != "Alex" {
		t.Errorf("front door owner: got %s", h.Front.Owner())
	}
}
