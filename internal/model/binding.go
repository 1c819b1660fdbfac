package model

import "time"

// Status reasons recorded when a binding is deactivated.
const (
	ReasonAccountInactive = "account_inactive"
	ReasonManualDisable   = "manual_disable"
	ReasonDeleted         = "deleted"
)

// DataSourceBinding is one account's instantiation of a connector type, with
// its own credential and configuration overrides. At most one binding exists
// per (account, connector type) pair; the ID is derived from that pair.
type DataSourceBinding struct {
	ID          string `json:"id"`
	AccountID   string `json:"account_id"`
	TypeID      string `json:"type_id"`
	DisplayName string `json:"display_name,omitempty"`

	// CredentialDigest is the one-way hash of the binding's API key. It is
	// never serialized; the plaintext secret exists only in the create and
	// rotate responses.
	CredentialDigest string `json:"-"`

	StorageLocation string            `json:"storage_location,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`

	// Numeric limits; 0 means unlimited.
	MaxFileSize int64 `json:"max_file_size"`
	RateLimit   int64 `json:"rate_limit"`

	Active       bool   `json:"active"`
	StatusReason string `json:"status_reason,omitempty"`

	// Instance-level configuration overrides. CustomConfig deep-merges over
	// the type's default custom config; OverrideBlob is an opaque serialized
	// override applied last (see internal/overlay).
	CustomConfig map[string]any `json:"custom_config,omitempty"`
	OverrideBlob []byte         `json:"override_blob,omitempty"`
	SchemaID     string         `json:"schema_id,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	RotatedAt *time.Time `json:"rotated_at,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// BindingFilter narrows ListBindings results. Inactive bindings (including
// soft-deleted ones) are excluded unless IncludeInactive is set.
type BindingFilter struct {
	AccountID       string
	TypeID          string
	IncludeInactive bool
	Limit           int
	Offset          int
}
