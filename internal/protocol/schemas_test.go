package protocol

import (
	"errors"
	"testing"
)

func TestParseRequestGetWorldState(t *testing.T) {
	req, err := ParseRequest([]byte(`{"command":"get_world_state"}`))
	if err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
	if req.Command != CmdGetWorldState {
		t.Errorf("command: got %q", req.Command)
	}
}

func TestParseRequestRegister(t *testing.T) {
	raw := []byte(`{
		"command": "register_character",
		"character": {
			"name": "Alex",
			"position": {"x": 0, "y": 0},
			"online": true,
			"last_update": 1700000000.5,
			"status": "good",
			"needs": {"energy": 80.5, "hunger": 60}
		}
	}`)
	req, err := ParseRequest(raw)
	if err != nil {
		t.Fatalf("valid register rejected: %v", err)
	}
	if req.Character == nil || req.Character.Name != "Alex" {
		t.Fatalf("character not decoded: %+v", req.Character)
	}
	if req.Character.Needs["energy"] != 80.5 {
		t.Errorf("needs not decoded: %+v", req.Character.Needs)
	}
}

func TestParseRequestRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"truncated JSON", `{"command": "get_world_st`},
		{"unknown command", `{"command": "drop_tables"}`},
		{"register without character", `{"command": "register_character"}`},
		{"update without character", `{"command": "update_character"}`},
		{"character without name", `{"command":"update_character","character":{"position":{"x":0,"y":0}}}`},
		{"empty name", `{"command":"update_character","character":{"name":"","position":{"x":0,"y":0}}}`},
		{"non-integer position", `{"command":"update_character","character":{"name":"A","position":{"x":1.5,"y":0}}}`},
		{"missing command", `{}`},
	}

	for _, tc := range cases {
		_, err := ParseRequest([]byte(tc.raw))
		if err == nil {
			t.Errorf("%s: expected rejection", tc.name)
			continue
		}
		var perr *ProtocolError
		if !errors.As(err, &perr) {
			t.Errorf("%s: expected ProtocolError, got %T", tc.name, err)
		}
	}
}

func TestParseRequestIgnoresUnknownKeys(t *testing.T) {
	raw := []byte(`{"command":"get_world_state","future_field":{"a":1}}`)
	if _, err := ParseRequest(raw); err != nil {
		t.Errorf("unknown top-level keys must be tolerated: %v", err)
	}
}
