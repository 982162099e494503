package protocol

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// requestSchema rejects malformed documents before the handler ever sees
// them, instead of trusting key presence at each call site.
const requestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["command"],
  "properties": {
    "command": {
      "enum": ["get_world_state", "register_character", "update_character"]
    },
    "character": {
      "type": "object",
      "required": ["name", "position"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "position": {
          "type": "object",
          "required": ["x", "y"],
          "properties": {
            "x": {"type": "integer"},
            "y": {"type": "integer"}
          }
        },
        "online": {"type": "boolean"},
        "last_update": {"type": "number"},
        "status": {"type": "string"},
        "needs": {
          "type": "object",
          "additionalProperties": {"type": "number"}
        }
      }
    }
  },
  "if": {
    "properties": {
      "command": {"enum": ["register_character", "update_character"]}
    }
  },
  "then": {"required": ["command", "character"]}
}`

var compiledRequestSchema = func() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("request.json", strings.NewReader(requestSchema)); err != nil {
		panic(err)
	}
	return c.MustCompile("request.json")
}()

// ParseRequest validates a raw message against the request schema and
// decodes it. All failures are ProtocolErrors.
func ParseRequest(raw []byte) (*Request, error) {
	var loose interface{}
	if err := json.Unmarshal(raw, &loose); err != nil {
		return nil, &ProtocolError{Reason: "invalid JSON: " + err.Error()}
	}
	if err := compiledRequestSchema.Validate(loose); err != nil {
		return nil, &ProtocolError{Reason: "schema violation: " + err.Error()}
	}

	var req Request
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&req); err != nil {
		return nil, &ProtocolError{Reason: "decode: " + err.Error()}
	}
	return &req, nil
}
