// Package registry orchestrates connector types, bindings, and schemas.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"reflect"
	"time"

	"github.com/alfredjeanlab/tether/internal/credential"
	"github.com/alfredjeanlab/tether/internal/directory"
	"github.com/alfredjeanlab/tether/internal/events"
	"github.com/alfredjeanlab/tether/internal/idgen"
	"github.com/alfredjeanlab/tether/internal/model"
	"github.com/alfredjeanlab/tether/internal/store"
)

// Service implements the registry operations behind the HTTP API and CLI.
type Service struct {
	store     store.Store
	directory directory.Directory
	creds     *credential.Manager
	publisher events.Publisher
	logger    *slog.Logger
}

// NewService returns a Service backed by the given collaborators.
func NewService(s store.Store, d directory.Directory, c *credential.Manager, p events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		store:     s,
		directory: d,
		creds:     c,
		publisher: p,
		logger:    logger,
	}
}

// publish emits a registry event. Best-effort; failures are logged and never
// surfaced to the caller, the write already happened.
func (s *Service) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Warn("failed to publish event", "topic", topic, "error", err)
	}
}

// RegisterTypeInput carries the fields accepted when registering a type.
type RegisterTypeInput struct {
	TypeName    string               `json:"type_name"`
	DisplayName string               `json:"display_name"`
	Description string               `json:"description"`
	Mode        model.ManagementMode `json:"mode"`

	DefaultPersist       *bool          `json:"default_persist"`
	DefaultMaxInlineSize *int64         `json:"default_max_inline_size"`
	DefaultCustomConfig  map[string]any `json:"default_custom_config"`

	OwnerTeam string   `json:"owner_team"`
	DocsURL   string   `json:"docs_url"`
	Tags      []string `json:"tags"`
}

// RegisterType registers a connector type. The ID is derived from the type
// name, so registration is deterministic across deployments. Re-registering
// an identical payload returns the existing record, which lets boot-time
// seeding run unconditionally; a differing payload is a conflict.
func (s *Service) RegisterType(ctx context.Context, in RegisterTypeInput) (*model.ConnectorType, error) {
	if in.TypeName == "" {
		return nil, model.Validationf("type_name is required")
	}
	if in.Mode == "" {
		in.Mode = model.ModeManaged
	}
	if !in.Mode.IsValid() {
		return nil, model.Validationf("invalid mode %q", in.Mode)
	}

	now := time.Now().UTC()
	ct := &model.ConnectorType{
		ID:                   idgen.ConnectorTypeID(in.TypeName),
		TypeName:             in.TypeName,
		DisplayName:          in.DisplayName,
		Description:          in.Description,
		Mode:                 in.Mode,
		DefaultPersist:       in.DefaultPersist,
		DefaultMaxInlineSize: in.DefaultMaxInlineSize,
		DefaultCustomConfig:  in.DefaultCustomConfig,
		OwnerTeam:            in.OwnerTeam,
		DocsURL:              in.DocsURL,
		Tags:                 in.Tags,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	err := s.store.CreateConnectorType(ctx, ct)
	if model.IsConflict(err) {
		existing, getErr := s.store.GetConnectorTypeByName(ctx, in.TypeName)
		if getErr == nil && sameTypePayload(existing, ct) {
			return existing, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicTypeRegistered, events.TypeRegistered{Type: ct})
	return ct, nil
}

// sameTypePayload reports whether a registration carries the same fields as
// an existing record, ignoring timestamps.
func sameTypePayload(existing, in *model.ConnectorType) bool {
	if existing == nil {
		return false
	}
	a, b := *existing, *in
	a.CreatedAt, b.CreatedAt = time.Time{}, time.Time{}
	a.UpdatedAt, b.UpdatedAt = time.Time{}, time.Time{}
	return reflect.DeepEqual(a, b)
}

// GetType returns a connector type by ID.
func (s *Service) GetType(ctx context.Context, id string) (*model.ConnectorType, error) {
	if id == "" {
		return nil, model.Validationf("id is required")
	}
	ct, err := s.store.GetConnectorType(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &model.NotFoundError{Entity: "connector type", ID: id}
	}
	return ct, err
}

// ListTypes returns connector types matching the filter plus the total count.
func (s *Service) ListTypes(ctx context.Context, filter model.TypeFilter) ([]*model.ConnectorType, int, error) {
	if filter.Mode != "" && !filter.Mode.IsValid() {
		return nil, 0, model.Validationf("invalid mode %q", filter.Mode)
	}
	return s.store.ListConnectorTypes(ctx, filter)
}

// UpdateTypeInput carries the patchable connector type fields. Nil pointers
// leave the stored value untouched.
type UpdateTypeInput struct {
	DisplayName *string               `json:"display_name"`
	Description *string               `json:"description"`
	Mode        *model.ManagementMode `json:"mode"`

	DefaultPersist       *bool          `json:"default_persist"`
	DefaultMaxInlineSize *int64         `json:"default_max_inline_size"`
	DefaultCustomConfig  map[string]any `json:"default_custom_config"`

	OwnerTeam *string  `json:"owner_team"`
	DocsURL   *string  `json:"docs_url"`
	Tags      []string `json:"tags"`
}

// UpdateType applies a partial update to a connector type.
func (s *Service) UpdateType(ctx context.Context, id string, in UpdateTypeInput) (*model.ConnectorType, error) {
	ct, err := s.GetType(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]any)
	if in.DisplayName != nil {
		ct.DisplayName = *in.DisplayName
		changes["display_name"] = *in.DisplayName
	}
	if in.Description != nil {
		ct.Description = *in.Description
		changes["description"] = *in.Description
	}
	if in.Mode != nil {
		if !in.Mode.IsValid() {
			return nil, model.Validationf("invalid mode %q", *in.Mode)
		}
		ct.Mode = *in.Mode
		changes["mode"] = in.Mode.String()
	}
	if in.DefaultPersist != nil {
		ct.DefaultPersist = in.DefaultPersist
		changes["default_persist"] = *in.DefaultPersist
	}
	if in.DefaultMaxInlineSize != nil {
		ct.DefaultMaxInlineSize = in.DefaultMaxInlineSize
		changes["default_max_inline_size"] = *in.DefaultMaxInlineSize
	}
	if in.DefaultCustomConfig != nil {
		ct.DefaultCustomConfig = in.DefaultCustomConfig
		changes["default_custom_config"] = in.DefaultCustomConfig
	}
	if in.OwnerTeam != nil {
		ct.OwnerTeam = *in.OwnerTeam
		changes["owner_team"] = *in.OwnerTeam
	}
	if in.DocsURL != nil {
		ct.DocsURL = *in.DocsURL
		changes["docs_url"] = *in.DocsURL
	}
	if in.Tags != nil {
		ct.Tags = in.Tags
		changes["tags"] = in.Tags
	}

	if len(changes) == 0 {
		return ct, nil
	}

	if err := s.store.UpdateConnectorType(ctx, ct); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &model.NotFoundError{Entity: "connector type", ID: id}
		}
		return nil, err
	}

	s.publish(ctx, events.TopicTypeUpdated, events.TypeUpdated{Type: ct, Changes: changes})
	return ct, nil
}
