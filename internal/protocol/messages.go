// Package protocol defines the wire documents exchanged between character
// processes and the world server, the error taxonomy, and the schema
// validation applied to every inbound request.
package protocol

import (
	"time"

	"github.com/aldealabs/aldea/internal/domain/world"
)

// Commands accepted by the sync endpoint.
const (
	CmdGetWorldState     = "get_world_state"
	CmdRegisterCharacter = "register_character"
	CmdUpdateCharacter   = "update_character"
)

// Response statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Request is a single client command. Character is required for register and
// update commands.
type Request struct {
	Command   string         `json:"command"`
	Character *AgentSnapshot `json:"character,omitempty"`
}

// Response is the server's answer to a Request.
type Response struct {
	Status     string              `json:"status"`
	Message    string              `json:"message,omitempty"`
	WorldState *WorldStateSnapshot `json:"world_state,omitempty"`
}

// AgentSnapshot is the serialized state of one character, both on the wire
// and inside the world snapshot.
type AgentSnapshot struct {
	Name       string             `json:"name"`
	Position   world.Position     `json:"position"`
	Online     bool               `json:"online"`
	LastUpdate float64            `json:"last_update"` // unix seconds
	Status     string             `json:"status"`
	Needs      map[string]float64 `json:"needs,omitempty"`
}

// LastUpdateTime converts the wire timestamp to a time.Time.
func (s AgentSnapshot) LastUpdateTime() time.Time {
	sec := int64(s.LastUpdate)
	nsec := int64((s.LastUpdate - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// TimeInfo carries the world calendar.
type TimeInfo struct {
	CurrentTime float64 `json:"current_time"` // hours, [0,24)
	Day         int     `json:"day"`
	Season      string  `json:"season"`
	Year        int     `json:"year"`
}

// WeatherInfo carries the current weather roll.
type WeatherInfo struct {
	Current     string  `json:"current"`
	Temperature float64 `json:"temperature"`
}

// WorldStateSnapshot is the full world view returned by get_world_state.
type WorldStateSnapshot struct {
	Time       TimeInfo                 `json:"time"`
	Weather    WeatherInfo              `json:"weather"`
	Characters map[string]AgentSnapshot `json:"characters"`
}
