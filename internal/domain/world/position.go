// Package world defines the core spatial value types.
// This package is PURE and must NOT import any infrastructure packages.
package world

import "fmt"

// Direction names a cardinal move on the grid.
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// Position is a grid coordinate. It is a value type: comparable, usable as a
// map key, equal when both coordinates match.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// offsets uses screen coordinates: north decreases Y, south increases it.
var offsets = map[Direction]Position{
	North: {0, -1},
	South: {0, 1},
	East:  {1, 0},
	West:  {-1, 0},
}

// Move returns the position one step in the given direction. Unknown
// directions return the position unchanged.
func (p Position) Move(d Direction) Position {
	off, ok := offsets[d]
	if !ok {
		return p
	}
	return Position{p.X + off.X, p.Y + off.Y}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}
