package engine

import (
	"sync"

	"github.com/aldealabs/aldea/internal/domain/world"
)

// RoomKind names a room inside a house.
type RoomKind string

const (
	RoomHallway  RoomKind = "hallway"
	RoomBedroom  RoomKind = "bedroom"
	RoomBathroom RoomKind = "bathroom"
	RoomLiving   RoomKind = "living_room"
	RoomKitchen  RoomKind = "kitchen"
)

// Door guards the entrance of a house. Locking is owner-only; the owner may
// authorize individual visitors who can then pass while locked.
type Door struct {
	mu         sync.RWMutex
	locked     bool
	owner      string
	authorized map[string]struct{}
}

// NewDoor creates an unlocked door owned by owner.
func NewDoor(owner string) *Door {
	return &Door{owner: owner, authorized: make(map[string]struct{})}
}

// Owner returns the door's owner.
func (d *Door) Owner() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.owner
}

// Locked reports whether the door is currently locked.
func (d *Door) Locked() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.locked
}

// Lock locks the door. Only the owner may lock.
func (d *Door) Lock(who string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if who != d.owner {
		return false
	}
	d.locked = true
	return true
}

// Unlock unlocks the door. Only the owner may unlock.
func (d *Door) Unlock(who string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if who != d.owner {
		return false
	}
	d.locked = false
	return true
}

// Authorize lets visitor pass while the door is locked. Owner-only.
func (d *Door) Authorize(who, visitor string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if who != d.owner {
		return false
	}
	d.authorized[visitor] = struct{}{}
	return true
}

// Revoke removes visitor's authorization. Owner-only. Revoking a name that
// was never authorized is a no-op that still succeeds.
func (d *Door) Revoke(who, visitor string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if who != d.owner {
		return false
	}
	delete(d.authorized, visitor)
	return true
}

// CanPass reports whether who may go through the door right now. The owner
// always passes; everyone else passes only while unlocked or authorized.
func (d *Door) CanPass(who string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if who == d.owner {
		return true
	}
	if !d.locked {
		return true
	}
	_, ok := d.authorized[who]
	return ok
}

// House is the interior of a residential plot: a fixed grid of rooms, each
// furnished with objects from the catalog, behind a front door.
//
// Room coordinates are house-local; (0,-1) is the entrance hallway.
type House struct {
	Rooms   map[world.Position]RoomKind
	Objects map[world.Position][]string // object ids per room
	Front   *Door
}

// NewHouse builds the standard village house layout for owner.
func NewHouse(owner string) *House {
	return &House{
		Rooms: map[world.Position]RoomKind{
			{X: 0, Y: -1}: RoomHallway,
			{X: 0, Y: 0}:  RoomBedroom,
			{X: 1, Y: 0}:  RoomBathroom,
			{X: 0, Y: 1}:  RoomLiving,
			{X: 1, Y: 1}:  RoomKitchen,
		},
		Objects: map[world.Position][]string{
			{X: 0, Y: -1}: {"door"},
			{X: 0, Y: 0}:  {"bed"},
			{X: 1, Y: 0}:  {"toilet", "shower"},
			{X: 0, Y: 1}:  {"tv", "computer", "couch", "phone"},
			{X: 1, Y: 1}:  {"fridge", "stove"},
		},
		Front: NewDoor(owner),
	}
}

// Room returns the room kind at a house-local position.
func (h *House) Room(pos world.Position) (RoomKind, bool) {
	k, ok := h.Rooms[pos]
	return k, ok
}

// ObjectsAt returns the object ids placed in the room at pos.
func (h *House) ObjectsAt(pos world.Position) []string {
	return h.Objects[pos]
}

// HasObject reports whether any room of the house contains the object id.
func (h *House) HasObject(id string) bool {
	for _, ids := range h.Objects {
		for _, o := range ids {
			if o == id {
				return true
			}
		}
	}
	return false
}
