package control

import (
	"encoding/json"
	"fmt"
)

// Type is the kind of a control command.
type Type string

const (
	TypeSpeed     Type = "speed"
	TypeHeartbeat Type = "heartbeat"
	TypeRoute     Type = "route"
)

// Heartbeat values accepted from the control channel.
const (
	HeartbeatActive   = "ACTIVE"
	HeartbeatInactive = "INACTIVE"
)

// Command is one message of the control channel, e.g.
// {"type":"speed","value":50} or {"type":"heartbeat","value":"ACTIVE"}.
type Command struct {
	Type  Type `json:"type"`
	Value any  `json:"value"`
}

// Decode parses a JSON encoded command.
func Decode(data []byte) (Command, error) {
	var c Command
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("decode command: %w", err)
	}
	if c.Type == "" {
		return c, fmt.Errorf("decode command: missing type")
	}
	return c, nil
}

// String returns the value as text. Non-string values are formatted with %v.
func (c Command) String() string {
	if s, ok := c.Value.(string); ok {
		return s
	}
	if c.Value == nil {
		return ""
	}
	return fmt.Sprintf("%v", c.Value)
}
