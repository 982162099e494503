// Package engine holds the authoritative world model: the calendar clock and
// agent records (WorldState), the plot/house map with ownership and access
// control (SpatialMap), seasonal weather, and the orchestrator that ties them
// to the event log.
//
// ARCHITECTURAL RULE: all mutation goes through WorldState/SpatialMap
// methods, which are internally synchronized. Network handlers never touch
// the maps directly.
package engine
