package model

import "time"

// ManagementMode controls who operates instances of a connector type.
type ManagementMode string

const (
	ModeManaged   ManagementMode = "managed"
	ModeUnmanaged ManagementMode = "unmanaged"
)

// String returns the string representation of the mode.
func (m ManagementMode) String() string {
	return string(m)
}

// IsValid checks whether the mode is a known value.
func (m ManagementMode) IsValid() bool {
	switch m {
	case ModeManaged, ModeUnmanaged:
		return true
	}
	return false
}

// ConnectorType is a reusable integration template (e.g. "s3") shared across
// accounts. Its ID is derived deterministically from the type name so that
// independently seeded deployments agree on ids.
type ConnectorType struct {
	ID          string         `json:"id"`
	TypeName    string         `json:"type_name"`
	DisplayName string         `json:"display_name,omitempty"`
	Description string         `json:"description,omitempty"`
	Mode        ManagementMode `json:"mode"`

	// Type-level configuration defaults. Nil means "no opinion" and the
	// system default applies at merge time.
	DefaultPersist       *bool          `json:"default_persist,omitempty"`
	DefaultMaxInlineSize *int64         `json:"default_max_inline_size,omitempty"`
	DefaultCustomConfig  map[string]any `json:"default_custom_config,omitempty"`

	// Display metadata.
	OwnerTeam string   `json:"owner_team,omitempty"`
	DocsURL   string   `json:"docs_url,omitempty"`
	Tags      []string `json:"tags,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TypeFilter narrows ListConnectorTypes results.
type TypeFilter struct {
	Mode   ManagementMode
	Tag    string
	Limit  int
	Offset int
}
