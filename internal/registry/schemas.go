package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alfredjeanlab/tether/internal/events"
	"github.com/alfredjeanlab/tether/internal/idgen"
	"github.com/alfredjeanlab/tether/internal/model"
)

// PublishSchemaInput carries the fields accepted when publishing a schema.
type PublishSchemaInput struct {
	TypeID         string          `json:"type_id"`
	Version        int             `json:"version"`
	InstanceSchema json.RawMessage `json:"instance_schema"`
	NodeSchema     json.RawMessage `json:"node_schema"`
}

// PublishSchema stores a new config schema version for a connector type.
// When Version is zero the next version number is assigned.
func (s *Service) PublishSchema(ctx context.Context, in PublishSchemaInput) (*model.ConfigSchema, error) {
	if in.TypeID == "" {
		return nil, model.Validationf("type_id is required")
	}
	if in.Version < 0 {
		return nil, model.Validationf("version must be non-negative")
	}
	if len(in.InstanceSchema) == 0 {
		return nil, model.Validationf("instance_schema is required")
	}
	if !json.Valid(in.InstanceSchema) {
		return nil, model.Validationf("instance_schema is not valid JSON")
	}
	if len(in.NodeSchema) > 0 && !json.Valid(in.NodeSchema) {
		return nil, model.Validationf("node_schema is not valid JSON")
	}

	if _, err := s.GetType(ctx, in.TypeID); err != nil {
		return nil, err
	}

	version := in.Version
	if version == 0 {
		existing, err := s.store.ListConfigSchemas(ctx, in.TypeID)
		if err != nil {
			return nil, err
		}
		version = 1
		for _, cs := range existing {
			if cs.Version >= version {
				version = cs.Version + 1
			}
		}
	}

	id, err := idgen.NewSchemaID()
	if err != nil {
		return nil, fmt.Errorf("generate schema id: %w", err)
	}

	now := time.Now().UTC()
	cs := &model.ConfigSchema{
		ID:             id,
		TypeID:         in.TypeID,
		Version:        version,
		InstanceSchema: in.InstanceSchema,
		NodeSchema:     in.NodeSchema,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.CreateConfigSchema(ctx, cs); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicSchemaPublished, events.SchemaPublished{Schema: cs})
	return cs, nil
}

// GetSchema returns a config schema by ID.
func (s *Service) GetSchema(ctx context.Context, id string) (*model.ConfigSchema, error) {
	if id == "" {
		return nil, model.Validationf("id is required")
	}
	cs, err := s.store.GetConfigSchema(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &model.NotFoundError{Entity: "config schema", ID: id}
	}
	return cs, err
}

// ListSchemas returns all schema versions for a connector type.
func (s *Service) ListSchemas(ctx context.Context, typeID string) ([]*model.ConfigSchema, error) {
	if typeID == "" {
		return nil, model.Validationf("type_id is required")
	}
	return s.store.ListConfigSchemas(ctx, typeID)
}

// DeleteSchema removes a schema version. Deletion is rejected with a conflict
// while any binding still references it.
func (s *Service) DeleteSchema(ctx context.Context, id string) error {
	if id == "" {
		return model.Validationf("id is required")
	}
	cs, err := s.GetSchema(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteConfigSchema(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &model.NotFoundError{Entity: "config schema", ID: id}
		}
		return err
	}

	s.publish(ctx, events.TopicSchemaDeleted, events.SchemaDeleted{SchemaID: id, TypeID: cs.TypeID})
	return nil
}
