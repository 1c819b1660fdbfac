package events

import (
	"context"
	"time"

	"github.com/alfredjeanlab/tether/internal/model"
)

// Event topic constants
const (
	TopicTypeRegistered = "tether.type.registered"
	TopicTypeUpdated    = "tether.type.updated"

	TopicBindingRegistered = "tether.binding.registered"
	TopicBindingUpdated    = "tether.binding.updated"
	TopicBindingEnabled    = "tether.binding.enabled"
	TopicBindingDisabled   = "tether.binding.disabled"
	TopicBindingRotated    = "tether.binding.rotated"
	TopicBindingDeleted    = "tether.binding.deleted"

	TopicSchemaPublished = "tether.schema.published"
	TopicSchemaDeleted   = "tether.schema.deleted"

	// Account lifecycle events (emitted by the account service, consumed by
	// the status reconciler). The wildcard matches every lifecycle kind.
	TopicAccountLifecycle = "accounts.account.>"
)

// Account lifecycle kinds carried in AccountLifecycle.Kind.
const (
	AccountDeactivated = "deactivated"
	AccountReactivated = "reactivated"
	AccountDeleted     = "deleted"
)

// Event types

type TypeRegistered struct {
	Type *model.ConnectorType `json:"type"`
}

type TypeUpdated struct {
	Type    *model.ConnectorType `json:"type"`
	Changes map[string]any       `json:"changes"` // field name -> new value
}

type BindingRegistered struct {
	Binding *model.DataSourceBinding `json:"binding"`
}

type BindingUpdated struct {
	Binding *model.DataSourceBinding `json:"binding"`
	Changes map[string]any           `json:"changes"`
}

type BindingStatusChanged struct {
	BindingID string `json:"binding_id"`
	Active    bool   `json:"active"`
	Reason    string `json:"reason,omitempty"`
}

type BindingRotated struct {
	BindingID string    `json:"binding_id"`
	RotatedAt time.Time `json:"rotated_at"`
}

type BindingDeleted struct {
	BindingID string `json:"binding_id"`
}

type SchemaPublished struct {
	Schema *model.ConfigSchema `json:"schema"`
}

type SchemaDeleted struct {
	SchemaID string `json:"schema_id"`
	TypeID   string `json:"type_id"`
}

// AccountLifecycle is the payload the account service publishes on
// accounts.account.* subjects.
type AccountLifecycle struct {
	AccountID  string    `json:"account_id"`
	Kind       string    `json:"kind"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
