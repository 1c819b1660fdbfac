package model

import (
	"encoding/json"
	"time"
)

// ConfigSchema is a versioned pair of JSON-Schema documents tied to a
// connector type: one validating instance-level custom config, one validating
// per-node config. The core stores and references schemas but does not
// evaluate them.
type ConfigSchema struct {
	ID             string          `json:"id"`
	TypeID         string          `json:"type_id"`
	Version        int             `json:"version"`
	InstanceSchema json.RawMessage `json:"instance_schema,omitempty"`
	NodeSchema     json.RawMessage `json:"node_schema,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
