package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alfredjeanlab/tether/internal/events"
	"github.com/alfredjeanlab/tether/internal/idgen"
	"github.com/alfredjeanlab/tether/internal/model"
	"github.com/alfredjeanlab/tether/internal/overlay"
	"github.com/alfredjeanlab/tether/internal/wire"
)

// RegisterBindingInput carries the fields accepted when registering a binding.
type RegisterBindingInput struct {
	AccountID   string `json:"account_id"`
	TypeID      string `json:"type_id"`
	DisplayName string `json:"display_name"`

	StorageLocation string            `json:"storage_location"`
	Metadata        map[string]string `json:"metadata"`
	MaxFileSize     int64             `json:"max_file_size"`
	RateLimit       int64             `json:"rate_limit"`

	CustomConfig map[string]any `json:"custom_config"`
	OverrideBlob []byte         `json:"override_blob"`
	SchemaID     string         `json:"schema_id"`
}

// RegisterBinding creates a binding and mints its API key. The plaintext
// secret is returned exactly once; only the digest is stored. The account is
// resolved against the directory before anything is written.
func (s *Service) RegisterBinding(ctx context.Context, in RegisterBindingInput) (*model.DataSourceBinding, string, error) {
	if in.AccountID == "" {
		return nil, "", model.Validationf("account_id is required")
	}
	if in.TypeID == "" {
		return nil, "", model.Validationf("type_id is required")
	}
	if in.MaxFileSize < 0 || in.RateLimit < 0 {
		return nil, "", model.Validationf("limits must be non-negative")
	}
	if len(in.OverrideBlob) > 0 {
		if _, err := wire.DecodeOverride(in.OverrideBlob); err != nil {
			return nil, "", model.Validationf("invalid override blob: %v", err)
		}
	}

	if _, err := s.GetType(ctx, in.TypeID); err != nil {
		return nil, "", err
	}
	if in.SchemaID != "" {
		if err := s.checkSchemaRef(ctx, in.SchemaID, in.TypeID); err != nil {
			return nil, "", err
		}
	}

	account, err := s.directory.GetAccount(ctx, in.AccountID)
	if model.IsNotFound(err) {
		return nil, "", model.Validationf("invalid account %s", in.AccountID)
	}
	if err != nil {
		return nil, "", err
	}
	if !account.Active {
		return nil, "", model.Validationf("account %s is inactive", in.AccountID)
	}

	secret, err := s.creds.Generate()
	if err != nil {
		return nil, "", fmt.Errorf("generate credential: %w", err)
	}
	digest, err := s.creds.Hash(secret)
	if err != nil {
		return nil, "", fmt.Errorf("hash credential: %w", err)
	}

	now := time.Now().UTC()
	b := &model.DataSourceBinding{
		ID:               idgen.BindingID(in.AccountID, in.TypeID),
		AccountID:        in.AccountID,
		TypeID:           in.TypeID,
		DisplayName:      in.DisplayName,
		CredentialDigest: digest,
		StorageLocation:  in.StorageLocation,
		Metadata:         in.Metadata,
		MaxFileSize:      in.MaxFileSize,
		RateLimit:        in.RateLimit,
		Active:           true,
		CustomConfig:     in.CustomConfig,
		OverrideBlob:     in.OverrideBlob,
		SchemaID:         in.SchemaID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.store.CreateBinding(ctx, b); err != nil {
		return nil, "", err
	}

	s.publish(ctx, events.TopicBindingRegistered, events.BindingRegistered{Binding: b})
	return b, secret, nil
}

// GetBinding returns a binding by ID. Soft-deleted bindings are reported as
// not found.
func (s *Service) GetBinding(ctx context.Context, id string) (*model.DataSourceBinding, error) {
	if id == "" {
		return nil, model.Validationf("id is required")
	}
	b, err := s.store.GetBinding(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &model.NotFoundError{Entity: "binding", ID: id}
	}
	if err != nil {
		return nil, err
	}
	if b.DeletedAt != nil {
		return nil, &model.NotFoundError{Entity: "binding", ID: id}
	}
	return b, nil
}

// ListBindings returns bindings matching the filter plus the total count.
func (s *Service) ListBindings(ctx context.Context, filter model.BindingFilter) ([]*model.DataSourceBinding, int, error) {
	return s.store.ListBindings(ctx, filter)
}

// UpdateBindingInput carries the patchable binding fields. Nil pointers leave
// the stored value untouched.
type UpdateBindingInput struct {
	DisplayName     *string           `json:"display_name"`
	StorageLocation *string           `json:"storage_location"`
	Metadata        map[string]string `json:"metadata"`
	MaxFileSize     *int64            `json:"max_file_size"`
	RateLimit       *int64            `json:"rate_limit"`
	CustomConfig    map[string]any    `json:"custom_config"`
	OverrideBlob    []byte            `json:"override_blob"`
	SchemaID        *string           `json:"schema_id"`
}

// UpdateBinding applies a partial update to a binding.
func (s *Service) UpdateBinding(ctx context.Context, id string, in UpdateBindingInput) (*model.DataSourceBinding, error) {
	b, err := s.GetBinding(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]any)
	if in.DisplayName != nil {
		b.DisplayName = *in.DisplayName
		changes["display_name"] = *in.DisplayName
	}
	if in.StorageLocation != nil {
		b.StorageLocation = *in.StorageLocation
		changes["storage_location"] = *in.StorageLocation
	}
	if in.Metadata != nil {
		b.Metadata = in.Metadata
		changes["metadata"] = in.Metadata
	}
	if in.MaxFileSize != nil {
		if *in.MaxFileSize < 0 {
			return nil, model.Validationf("max_file_size must be non-negative")
		}
		b.MaxFileSize = *in.MaxFileSize
		changes["max_file_size"] = *in.MaxFileSize
	}
	if in.RateLimit != nil {
		if *in.RateLimit < 0 {
			return nil, model.Validationf("rate_limit must be non-negative")
		}
		b.RateLimit = *in.RateLimit
		changes["rate_limit"] = *in.RateLimit
	}
	if in.CustomConfig != nil {
		b.CustomConfig = in.CustomConfig
		changes["custom_config"] = in.CustomConfig
	}
	if in.OverrideBlob != nil {
		if len(in.OverrideBlob) > 0 {
			if _, err := wire.DecodeOverride(in.OverrideBlob); err != nil {
				return nil, model.Validationf("invalid override blob: %v", err)
			}
		}
		b.OverrideBlob = in.OverrideBlob
		changes["override_blob"] = len(in.OverrideBlob)
	}
	if in.SchemaID != nil {
		if *in.SchemaID != "" {
			if err := s.checkSchemaRef(ctx, *in.SchemaID, b.TypeID); err != nil {
				return nil, err
			}
		}
		b.SchemaID = *in.SchemaID
		changes["schema_id"] = *in.SchemaID
	}

	if len(changes) == 0 {
		return b, nil
	}

	if err := s.store.UpdateBinding(ctx, b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &model.NotFoundError{Entity: "binding", ID: id}
		}
		return nil, err
	}

	s.publish(ctx, events.TopicBindingUpdated, events.BindingUpdated{Binding: b, Changes: changes})
	return b, nil
}

// RotateCredential mints a new API key for the binding and invalidates the
// old one. The new plaintext secret is returned exactly once.
func (s *Service) RotateCredential(ctx context.Context, id string) (*model.DataSourceBinding, string, error) {
	b, err := s.GetBinding(ctx, id)
	if err != nil {
		return nil, "", err
	}

	secret, err := s.creds.Generate()
	if err != nil {
		return nil, "", fmt.Errorf("generate credential: %w", err)
	}
	digest, err := s.creds.Hash(secret)
	if err != nil {
		return nil, "", fmt.Errorf("hash credential: %w", err)
	}

	now := time.Now().UTC()
	if err := s.store.SetBindingCredential(ctx, id, digest, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", &model.NotFoundError{Entity: "binding", ID: id}
		}
		return nil, "", err
	}
	b.CredentialDigest = digest
	b.UpdatedAt = now
	b.RotatedAt = &now

	s.publish(ctx, events.TopicBindingRotated, events.BindingRotated{BindingID: id, RotatedAt: now})
	return b, secret, nil
}

// VerifyCredential checks a presented secret against the binding's digest.
// A disabled binding never verifies.
func (s *Service) VerifyCredential(ctx context.Context, id, secret string) (bool, error) {
	b, err := s.GetBinding(ctx, id)
	if err != nil {
		return false, err
	}
	if !b.Active {
		return false, nil
	}
	return s.creds.Verify(secret, b.CredentialDigest), nil
}

// EnableBinding re-enables a manually disabled binding. The owning account
// must still be active in the directory.
func (s *Service) EnableBinding(ctx context.Context, id string) (*model.DataSourceBinding, error) {
	b, err := s.GetBinding(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Active {
		return b, nil
	}

	account, err := s.directory.GetAccount(ctx, b.AccountID)
	if model.IsNotFound(err) {
		return nil, model.Validationf("invalid account %s", b.AccountID)
	}
	if err != nil {
		return nil, err
	}
	if !account.Active {
		return nil, model.Conflictf("account %s is inactive", b.AccountID)
	}

	now := time.Now().UTC()
	if _, err := s.store.SetBindingStatus(ctx, id, true, "", now); err != nil {
		return nil, err
	}
	b.Active = true
	b.StatusReason = ""
	b.UpdatedAt = now

	s.publish(ctx, events.TopicBindingEnabled, events.BindingStatusChanged{BindingID: id, Active: true})
	return b, nil
}

// DisableBinding turns a binding off with the manual_disable reason, which
// keeps the reconciler from silently re-enabling it later.
func (s *Service) DisableBinding(ctx context.Context, id string) (*model.DataSourceBinding, error) {
	b, err := s.GetBinding(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	changed, err := s.store.SetBindingStatus(ctx, id, false, model.ReasonManualDisable, now)
	if err != nil {
		return nil, err
	}
	b.Active = false
	b.StatusReason = model.ReasonManualDisable
	if changed {
		b.UpdatedAt = now
		s.publish(ctx, events.TopicBindingDisabled, events.BindingStatusChanged{
			BindingID: id, Active: false, Reason: model.ReasonManualDisable,
		})
	}
	return b, nil
}

// DeleteBinding soft-deletes a binding. Deleting an already-deleted binding
// is a no-op so the operation can be retried.
func (s *Service) DeleteBinding(ctx context.Context, id string) error {
	if id == "" {
		return model.Validationf("id is required")
	}
	b, err := s.store.GetBinding(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.NotFoundError{Entity: "binding", ID: id}
	}
	if err != nil {
		return err
	}
	if b.DeletedAt != nil {
		return nil
	}

	deleted, err := s.store.SoftDeleteBinding(ctx, id, model.ReasonDeleted, time.Now().UTC())
	if err != nil {
		return err
	}
	if deleted {
		s.publish(ctx, events.TopicBindingDeleted, events.BindingDeleted{BindingID: id})
	}
	return nil
}

// EffectiveConfig resolves the binding's configuration through the overlay:
// system defaults, then type defaults, then binding overrides, then the
// override blob.
func (s *Service) EffectiveConfig(ctx context.Context, id string) (*overlay.EffectiveConfig, error) {
	b, err := s.GetBinding(ctx, id)
	if err != nil {
		return nil, err
	}
	ct, err := s.GetType(ctx, b.TypeID)
	if err != nil {
		return nil, err
	}
	return overlay.Merge(ct, b)
}

// checkSchemaRef verifies the schema exists and belongs to the given type.
func (s *Service) checkSchemaRef(ctx context.Context, schemaID, typeID string) error {
	cs, err := s.store.GetConfigSchema(ctx, schemaID)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.NotFoundError{Entity: "config schema", ID: schemaID}
	}
	if err != nil {
		return err
	}
	if cs.TypeID != typeID {
		return model.Validationf("schema %s belongs to type %s, not %s", schemaID, cs.TypeID, typeID)
	}
	return nil
}
