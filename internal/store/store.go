package store

import (
	"context"
	"time"

	"github.com/alfredjeanlab/tether/internal/model"
)

// Store defines the persistence interface for connector types, data-source
// bindings, and config schemas. Lookups return sql.ErrNoRows when the entity
// is absent; unique-key collisions surface as model.ConflictError.
type Store interface {
	// Connector types (never deleted).
	CreateConnectorType(ctx context.Context, ct *model.ConnectorType) error
	GetConnectorType(ctx context.Context, id string) (*model.ConnectorType, error)
	GetConnectorTypeByName(ctx context.Context, typeName string) (*model.ConnectorType, error)
	ListConnectorTypes(ctx context.Context, filter model.TypeFilter) ([]*model.ConnectorType, int, error) // returns types, total count, error
	UpdateConnectorType(ctx context.Context, ct *model.ConnectorType) error

	// Data-source bindings.
	CreateBinding(ctx context.Context, b *model.DataSourceBinding) error
	GetBinding(ctx context.Context, id string) (*model.DataSourceBinding, error)
	ListBindings(ctx context.Context, filter model.BindingFilter) ([]*model.DataSourceBinding, int, error)
	UpdateBinding(ctx context.Context, b *model.DataSourceBinding) error

	// SetBindingStatus atomically flips a binding's active flag and reason.
	// The update applies only when the stored state actually differs, so
	// redelivered lifecycle events are no-ops; it returns whether a row
	// changed. A missing binding returns (false, nil).
	SetBindingStatus(ctx context.Context, id string, active bool, reason string, at time.Time) (bool, error)

	// SetBindingCredential replaces the credential digest and records the
	// rotation time.
	SetBindingCredential(ctx context.Context, id string, digest string, at time.Time) error

	// SoftDeleteBinding deactivates the binding with the given reason and
	// stamps deleted_at. Returns false when the binding is already deleted
	// or absent.
	SoftDeleteBinding(ctx context.Context, id string, reason string, at time.Time) (bool, error)

	// Config schemas. Deleting a schema still referenced by a binding fails
	// with model.ConflictError.
	CreateConfigSchema(ctx context.Context, cs *model.ConfigSchema) error
	GetConfigSchema(ctx context.Context, id string) (*model.ConfigSchema, error)
	ListConfigSchemas(ctx context.Context, typeID string) ([]*model.ConfigSchema, error)
	DeleteConfigSchema(ctx context.Context, id string) error

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
