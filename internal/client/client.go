// Package client provides a transport-agnostic interface for the tether
// service and an HTTP/JSON implementation that talks to the tether REST API.
package client

import (
	"context"
	"encoding/json"

	"github.com/alfredjeanlab/tether/internal/model"
	"github.com/alfredjeanlab/tether/internal/overlay"
)

// TetherClient is the interface that all tether CLI commands use to
// communicate with the registry server. It is implemented by HTTPClient
// (default) and can be backed by any transport.
type TetherClient interface {
	// Connector types
	RegisterType(ctx context.Context, req *RegisterTypeRequest) (*model.ConnectorType, error)
	GetType(ctx context.Context, id string) (*model.ConnectorType, error)
	ListTypes(ctx context.Context, req *ListTypesRequest) (*ListTypesResponse, error)
	UpdateType(ctx context.Context, id string, req *UpdateTypeRequest) (*model.ConnectorType, error)

	// Bindings
	RegisterBinding(ctx context.Context, req *RegisterBindingRequest) (*BindingWithSecret, error)
	GetBinding(ctx context.Context, id string) (*model.DataSourceBinding, error)
	ListBindings(ctx context.Context, req *ListBindingsRequest) (*ListBindingsResponse, error)
	UpdateBinding(ctx context.Context, id string, req *UpdateBindingRequest) (*model.DataSourceBinding, error)
	DeleteBinding(ctx context.Context, id string) error

	// Credentials and lifecycle
	RotateCredential(ctx context.Context, id string) (*BindingWithSecret, error)
	VerifyCredential(ctx context.Context, id, secret string) (bool, error)
	EnableBinding(ctx context.Context, id string) (*model.DataSourceBinding, error)
	DisableBinding(ctx context.Context, id string) (*model.DataSourceBinding, error)

	// Effective configuration
	EffectiveConfig(ctx context.Context, id string) (*overlay.EffectiveConfig, error)

	// Config schemas
	PublishSchema(ctx context.Context, req *PublishSchemaRequest) (*model.ConfigSchema, error)
	GetSchema(ctx context.Context, id string) (*model.ConfigSchema, error)
	ListSchemas(ctx context.Context, typeID string) ([]*model.ConfigSchema, error)
	DeleteSchema(ctx context.Context, id string) error

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// RegisterTypeRequest holds parameters for registering a connector type.
type RegisterTypeRequest struct {
	TypeName    string `json:"type_name"`
	DisplayName string `json:"display_name,omitempty"`
	Description string `json:"description,omitempty"`
	Mode        string `json:"mode,omitempty"`

	DefaultPersist       *bool          `json:"default_persist,omitempty"`
	DefaultMaxInlineSize *int64         `json:"default_max_inline_size,omitempty"`
	DefaultCustomConfig  map[string]any `json:"default_custom_config,omitempty"`

	OwnerTeam string   `json:"owner_team,omitempty"`
	DocsURL   string   `json:"docs_url,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// ListTypesRequest holds parameters for listing connector types.
type ListTypesRequest struct {
	Mode   string `json:"mode,omitempty"`
	Tag    string `json:"tag,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// ListTypesResponse is the response from ListTypes.
type ListTypesResponse struct {
	ConnectorTypes []*model.ConnectorType `json:"connector_types"`
	Total          int                    `json:"total"`
}

// UpdateTypeRequest holds optional parameters for updating a connector type.
// Nil pointer fields mean "don't change".
type UpdateTypeRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	Description *string `json:"description,omitempty"`
	Mode        *string `json:"mode,omitempty"`

	DefaultPersist       *bool          `json:"default_persist,omitempty"`
	DefaultMaxInlineSize *int64         `json:"default_max_inline_size,omitempty"`
	DefaultCustomConfig  map[string]any `json:"default_custom_config,omitempty"`

	OwnerTeam *string  `json:"owner_team,omitempty"`
	DocsURL   *string  `json:"docs_url,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// RegisterBindingRequest holds parameters for registering a binding.
type RegisterBindingRequest struct {
	AccountID   string `json:"account_id"`
	TypeID      string `json:"type_id"`
	DisplayName string `json:"display_name,omitempty"`

	StorageLocation string            `json:"storage_location,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	MaxFileSize     int64             `json:"max_file_size,omitempty"`
	RateLimit       int64             `json:"rate_limit,omitempty"`

	CustomConfig map[string]any `json:"custom_config,omitempty"`
	OverrideBlob []byte         `json:"override_blob,omitempty"`
	SchemaID     string         `json:"schema_id,omitempty"`
}

// BindingWithSecret pairs a binding with its plaintext secret. The secret is
// only present in register and rotate responses and cannot be retrieved later.
type BindingWithSecret struct {
	Binding *model.DataSourceBinding `json:"binding"`
	Secret  string                   `json:"secret"`
}

// ListBindingsRequest holds parameters for listing bindings.
type ListBindingsRequest struct {
	AccountID       string `json:"account_id,omitempty"`
	TypeID          string `json:"type_id,omitempty"`
	IncludeInactive bool   `json:"include_inactive,omitempty"`
	Limit           int    `json:"limit,omitempty"`
	Offset          int    `json:"offset,omitempty"`
}

// ListBindingsResponse is the response from ListBindings.
type ListBindingsResponse struct {
	Bindings []*model.DataSourceBinding `json:"bindings"`
	Total    int                        `json:"total"`
}

// UpdateBindingRequest holds optional parameters for updating a binding.
// Nil pointer fields mean "don't change".
type UpdateBindingRequest struct {
	DisplayName     *string           `json:"display_name,omitempty"`
	StorageLocation *string           `json:"storage_location,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	MaxFileSize     *int64            `json:"max_file_size,omitempty"`
	RateLimit       *int64            `json:"rate_limit,omitempty"`
	CustomConfig    map[string]any    `json:"custom_config,omitempty"`
	OverrideBlob    []byte            `json:"override_blob,omitempty"`
	SchemaID        *string           `json:"schema_id,omitempty"`
}

// PublishSchemaRequest holds parameters for publishing a config schema.
type PublishSchemaRequest struct {
	TypeID         string          `json:"type_id"`
	Version        int             `json:"version,omitempty"`
	InstanceSchema json.RawMessage `json:"instance_schema"`
	NodeSchema     json.RawMessage `json:"node_schema,omitempty"`
}
