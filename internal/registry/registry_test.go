package registry

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alfredjeanlab/tether/internal/credential"
	"github.com/alfredjeanlab/tether/internal/directory"
	"github.com/alfredjeanlab/tether/internal/events"
	"github.com/alfredjeanlab/tether/internal/model"
	"github.com/alfredjeanlab/tether/internal/store"
	"github.com/alfredjeanlab/tether/internal/wire"
)

// memStore is an in-memory store.Store for service tests.
type memStore struct {
	store.Store // embed to satisfy the full interface
	mu          sync.Mutex
	types       map[string]*model.ConnectorType
	bindings    map[string]*model.DataSourceBinding
	schemas     map[string]*model.ConfigSchema
}

func newMemStore() *memStore {
	return &memStore{
		types:    make(map[string]*model.ConnectorType),
		bindings: make(map[string]*model.DataSourceBinding),
		schemas:  make(map[string]*model.ConfigSchema),
	}
}

func (m *memStore) CreateConnectorType(_ context.Context, ct *model.ConnectorType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.types {
		if existing.TypeName == ct.TypeName {
			return model.Conflictf("connector type %q already registered", ct.TypeName)
		}
	}
	cp := *ct
	m.types[ct.ID] = &cp
	return nil
}

func (m *memStore) GetConnectorType(_ context.Context, id string) (*model.ConnectorType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ct, ok := m.types[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *ct
	return &cp, nil
}

func (m *memStore) GetConnectorTypeByName(_ context.Context, typeName string) (*model.ConnectorType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ct := range m.types {
		if ct.TypeName == typeName {
			cp := *ct
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memStore) ListConnectorTypes(_ context.Context, filter model.TypeFilter) ([]*model.ConnectorType, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ConnectorType
	for _, ct := range m.types {
		if filter.Mode != "" && ct.Mode != filter.Mode {
			continue
		}
		cp := *ct
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *memStore) UpdateConnectorType(_ context.Context, ct *model.ConnectorType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.types[ct.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *ct
	m.types[ct.ID] = &cp
	return nil
}

func (m *memStore) CreateBinding(_ context.Context, b *model.DataSourceBinding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bindings[b.ID]; ok {
		return model.Conflictf("binding already exists for account %s and type %s", b.AccountID, b.TypeID)
	}
	cp := *b
	m.bindings[b.ID] = &cp
	return nil
}

func (m *memStore) GetBinding(_ context.Context, id string) (*model.DataSourceBinding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bindings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) ListBindings(_ context.Context, filter model.BindingFilter) ([]*model.DataSourceBinding, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.DataSourceBinding
	for _, b := range m.bindings {
		if filter.AccountID != "" && b.AccountID != filter.AccountID {
			continue
		}
		if filter.TypeID != "" && b.TypeID != filter.TypeID {
			continue
		}
		if !filter.IncludeInactive && !b.Active {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *memStore) UpdateBinding(_ context.Context, b *model.DataSourceBinding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bindings[b.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *b
	m.bindings[b.ID] = &cp
	return nil
}

func (m *memStore) SetBindingStatus(_ context.Context, id string, active bool, reason string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bindings[id]
	if !ok || b.DeletedAt != nil {
		return false, nil
	}
	if b.Active == active && b.StatusReason == reason {
		return false, nil
	}
	b.Active = active
	b.StatusReason = reason
	b.UpdatedAt = at
	return true, nil
}

func (m *memStore) SetBindingCredential(_ context.Context, id string, digest string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bindings[id]
	if !ok || b.DeletedAt != nil {
		return sql.ErrNoRows
	}
	b.CredentialDigest = digest
	b.UpdatedAt = at
	b.RotatedAt = &at
	return nil
}

func (m *memStore) SoftDeleteBinding(_ context.Context, id string, reason string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bindings[id]
	if !ok || b.DeletedAt != nil {
		return false, nil
	}
	b.Active = false
	b.StatusReason = reason
	b.UpdatedAt = at
	b.DeletedAt = &at
	return true, nil
}

func (m *memStore) CreateConfigSchema(_ context.Context, cs *model.ConfigSchema) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.schemas {
		if existing.TypeID == cs.TypeID && existing.Version == cs.Version {
			return model.Conflictf("config schema version %d already exists for type %s", cs.Version, cs.TypeID)
		}
	}
	cp := *cs
	m.schemas[cs.ID] = &cp
	return nil
}

func (m *memStore) GetConfigSchema(_ context.Context, id string) (*model.ConfigSchema, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cs, ok := m.schemas[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *cs
	return &cp, nil
}

func (m *memStore) ListConfigSchemas(_ context.Context, typeID string) ([]*model.ConfigSchema, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ConfigSchema
	for _, cs := range m.schemas {
		if cs.TypeID == typeID {
			cp := *cs
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) DeleteConfigSchema(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schemas[id]; !ok {
		return sql.ErrNoRows
	}
	for _, b := range m.bindings {
		if b.SchemaID == id {
			return model.Conflictf("config schema %s is still referenced by a binding", id)
		}
	}
	delete(m.schemas, id)
	return nil
}

// capturePublisher records published topics.
type capturePublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *capturePublisher) Publish(_ context.Context, topic string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) published(topic string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.topics {
		if t == topic {
			return true
		}
	}
	return false
}

// fastParams keeps argon2 cheap in tests.
var fastParams = credential.Params{Time: 1, Memory: 8 * 1024, Threads: 1, SaltLen: 16, KeyLen: 32}

func newTestService(t *testing.T) (*Service, *memStore, *directory.StaticDirectory, *capturePublisher) {
	t.Helper()
	st := newMemStore()
	dir := directory.NewStaticDirectory(
		directory.Account{ID: "acct-42", Active: true},
		directory.Account{ID: "acct-off", Active: false},
	)
	pub := &capturePublisher{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	svc := NewService(st, dir, credential.New(fastParams), pub, logger)
	return svc, st, dir, pub
}

func registerTestType(t *testing.T, svc *Service) *model.ConnectorType {
	t.Helper()
	persist := true
	size := int64(1 << 20)
	ct, err := svc.RegisterType(context.Background(), RegisterTypeInput{
		TypeName:             "s3",
		DisplayName:          "S3",
		Mode:                 model.ModeManaged,
		DefaultPersist:       &persist,
		DefaultMaxInlineSize: &size,
		DefaultCustomConfig:  map[string]any{"region": "us-east-1"},
	})
	if err != nil {
		t.Fatalf("RegisterType: %v", err)
	}
	return ct
}

func TestRegisterType(t *testing.T) {
	svc, _, _, pub := newTestService(t)
	ct := registerTestType(t, svc)

	if !strings.HasPrefix(ct.ID, "ct-") {
		t.Errorf("expected ct- id, got %q", ct.ID)
	}
	if !pub.published(events.TopicTypeRegistered) {
		t.Error("expected type registered event")
	}

	// Same name, same payload: idempotent.
	again := registerTestType(t, svc)
	if again.ID != ct.ID {
		t.Errorf("expected same id on identical re-registration, got %q and %q", ct.ID, again.ID)
	}

	// Same name, different payload: conflict.
	_, err := svc.RegisterType(context.Background(), RegisterTypeInput{TypeName: "s3", DisplayName: "Other"})
	if !model.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterType_Validation(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.RegisterType(context.Background(), RegisterTypeInput{}); !model.IsValidation(err) {
		t.Errorf("expected validation error for missing name, got %v", err)
	}
	if _, err := svc.RegisterType(context.Background(), RegisterTypeInput{
		TypeName: "s3", Mode: "shared",
	}); !model.IsValidation(err) {
		t.Errorf("expected validation error for bad mode, got %v", err)
	}
}

func TestUpdateType(t *testing.T) {
	svc, _, _, pub := newTestService(t)
	ct := registerTestType(t, svc)

	name := "Amazon S3"
	updated, err := svc.UpdateType(context.Background(), ct.ID, UpdateTypeInput{DisplayName: &name})
	if err != nil {
		t.Fatalf("UpdateType: %v", err)
	}
	if updated.DisplayName != "Amazon S3" {
		t.Errorf("got display name %q", updated.DisplayName)
	}
	if !pub.published(events.TopicTypeUpdated) {
		t.Error("expected type updated event")
	}

	if _, err := svc.UpdateType(context.Background(), "ct-missing", UpdateTypeInput{DisplayName: &name}); !model.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestRegisterBinding(t *testing.T) {
	svc, _, _, pub := newTestService(t)
	ct := registerTestType(t, svc)

	b, secret, err := svc.RegisterBinding(context.Background(), RegisterBindingInput{
		AccountID: "acct-42",
		TypeID:    ct.ID,
	})
	if err != nil {
		t.Fatalf("RegisterBinding: %v", err)
	}
	if !strings.HasPrefix(b.ID, "ds-") {
		t.Errorf("expected ds- id, got %q", b.ID)
	}
	if len(secret) != 43 {
		t.Errorf("expected 43-char secret, got %d chars", len(secret))
	}
	if b.CredentialDigest == "" || b.CredentialDigest == secret {
		t.Error("digest must be set and must not be the plaintext secret")
	}
	if !b.Active {
		t.Error("new bindings start active")
	}
	if !pub.published(events.TopicBindingRegistered) {
		t.Error("expected binding registered event")
	}

	// Second binding for the same (account, type) pair conflicts.
	_, _, err = svc.RegisterBinding(context.Background(), RegisterBindingInput{
		AccountID: "acct-42",
		TypeID:    ct.ID,
	})
	if !model.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterBinding_AccountChecks(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	ct := registerTestType(t, svc)

	_, _, err := svc.RegisterBinding(context.Background(), RegisterBindingInput{
		AccountID: "acct-unknown", TypeID: ct.ID,
	})
	if !model.IsValidation(err) {
		t.Errorf("expected validation error for unknown account, got %v", err)
	}

	_, _, err = svc.RegisterBinding(context.Background(), RegisterBindingInput{
		AccountID: "acct-off", TypeID: ct.ID,
	})
	if !model.IsValidation(err) {
		t.Errorf("expected validation error for inactive account, got %v", err)
	}

	// Failed registrations must not leave a row behind.
	if len(st.bindings) != 0 {
		t.Errorf("expected no bindings written, got %d", len(st.bindings))
	}
}

func TestRegisterBinding_UnknownType(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, _, err := svc.RegisterBinding(context.Background(), RegisterBindingInput{
		AccountID: "acct-42", TypeID: "ct-missing",
	})
	if !model.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestRegisterBinding_BadOverrideBlob(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ct := registerTestType(t, svc)

	_, _, err := svc.RegisterBinding(context.Background(), RegisterBindingInput{
		AccountID:    "acct-42",
		TypeID:       ct.ID,
		OverrideBlob: []byte{0xff, 0x01, 0x02},
	})
	if !model.IsValidation(err) {
		t.Errorf("expected validation error for bad blob, got %v", err)
	}
}

func TestRotateCredential(t *testing.T) {
	svc, _, _, pub := newTestService(t)
	ct := registerTestType(t, svc)
	b, oldSecret, err := svc.RegisterBinding(context.Background(), RegisterBindingInput{
		AccountID: "acct-42", TypeID: ct.ID,
	})
	if err != nil {
		t.Fatalf("RegisterBinding: %v", err)
	}

	rotated, newSecret, err := svc.RotateCredential(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("RotateCredential: %v", err)
	}
	if newSecret == oldSecret {
		t.Error("rotation must mint a fresh secret")
	}
	if rotated.RotatedAt == nil {
		t.Error("expected rotation timestamp")
	}
	if !pub.published(events.TopicBindingRotated) {
		t.Error("expected rotation event")
	}

	ok, err := svc.VerifyCredential(context.Background(), b.ID, newSecret)
	if err != nil || !ok {
		t.Errorf("new secret must verify, got ok=%v err=%v", ok, err)
	}
	ok, err = svc.VerifyCredential(context.Background(), b.ID, oldSecret)
	if err != nil || ok {
		t.Errorf("old secret must stop verifying, got ok=%v err=%v", ok, err)
	}
}

func TestVerifyCredential(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ct := registerTestType(t, svc)
	b, secret, err := svc.RegisterBinding(context.Background(), RegisterBindingInput{
		AccountID: "acct-42", TypeID: ct.ID,
	})
	if err != nil {
		t.Fatalf("RegisterBinding: %v", err)
	}

	ok, err := svc.VerifyCredential(context.Background(), b.ID, secret)
	if err != nil || !ok {
		t.Fatalf("expected secret to verify, got ok=%v err=%v", ok, err)
	}
	ok, err = svc.VerifyCredential(context.Background(), b.ID, "wrong")
	if err != nil || ok {
		t.Fatalf("wrong secret must not verify, got ok=%v err=%v", ok, err)
	}

	// A disabled binding never verifies, even with the right secret.
	if _, err := svc.DisableBinding(context.Background(), b.ID); err != nil {
		t.Fatalf("DisableBinding: %v", err)
	}
	ok, err = svc.VerifyCredential(context.Background(), b.ID, secret)
	if err != nil || ok {
		t.Fatalf("disabled binding must not verify, got ok=%v err=%v", ok, err)
	}

	if _, err := svc.VerifyCredential(context.Background(), "ds-missing", secret); !model.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestEnableDisableBinding(t *testing.T) {
	svc, _, dir, pub := newTestService(t)
	ct := registerTestType(t, svc)
	b, _, err := svc.RegisterBinding(context.Background(), RegisterBindingInput{
		AccountID: "acct-42", TypeID: ct.ID,
	})
	if err != nil {
		t.Fatalf("RegisterBinding: %v", err)
	}

	disabled, err := svc.DisableBinding(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("DisableBinding: %v", err)
	}
	if disabled.Active || disabled.StatusReason != model.ReasonManualDisable {
		t.Fatalf("got active=%v reason=%q", disabled.Active, disabled.StatusReason)
	}
	if !pub.published(events.TopicBindingDisabled) {
		t.Error("expected disabled event")
	}

	enabled, err := svc.EnableBinding(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("EnableBinding: %v", err)
	}
	if !enabled.Active || enabled.StatusReason != "" {
		t.Fatalf("got active=%v reason=%q", enabled.Active, enabled.StatusReason)
	}

	// Enable is refused while the owning account is inactive.
	if _, err := svc.DisableBinding(context.Background(), b.ID); err != nil {
		t.Fatalf("DisableBinding: %v", err)
	}
	dir.SetAccount(directory.Account{ID: "acct-42", Active: false})
	if _, err := svc.EnableBinding(context.Background(), b.ID); !model.IsConflict(err) {
		t.Fatalf("expected conflict enabling under inactive account, got %v", err)
	}
}

func TestDeleteBinding(t *testing.T) {
	svc, _, _, pub := newTestService(t)
	ct := registerTestType(t, svc)
	b, _, err := svc.RegisterBinding(context.Background(), RegisterBindingInput{
		AccountID: "acct-42", TypeID: ct.ID,
	})
	if err != nil {
		t.Fatalf("RegisterBinding: %v", err)
	}

	if err := svc.DeleteBinding(context.Background(), b.ID); err != nil {
		t.Fatalf("DeleteBinding: %v", err)
	}
	if !pub.published(events.TopicBindingDeleted) {
		t.Error("expected delete event")
	}

	if _, err := svc.GetBinding(context.Background(), b.ID); !model.IsNotFound(err) {
		t.Errorf("expected not found after delete, got %v", err)
	}

	// Deleting again is a no-op.
	if err := svc.DeleteBinding(context.Background(), b.ID); err != nil {
		t.Errorf("repeat delete: %v", err)
	}

	if err := svc.DeleteBinding(context.Background(), "ds-missing"); !model.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestEffectiveConfig(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ct := registerTestType(t, svc)

	blob, err := wire.EncodeOverride(&wire.Override{
		Persistence: &wire.Persistence{PersistDocument: false, MaxInlineSize: 2 << 20},
	})
	if err != nil {
		t.Fatalf("EncodeOverride: %v", err)
	}

	b, _, err := svc.RegisterBinding(context.Background(), RegisterBindingInput{
		AccountID:    "acct-42",
		TypeID:       ct.ID,
		CustomConfig: map[string]any{"bucket": "archive"},
		OverrideBlob: blob,
	})
	if err != nil {
		t.Fatalf("RegisterBinding: %v", err)
	}

	cfg, err := svc.EffectiveConfig(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("EffectiveConfig: %v", err)
	}
	if cfg.Persistence.PersistDocument {
		t.Error("blob persistence must win")
	}
	if cfg.Persistence.MaxInlineSize != 2<<20 {
		t.Errorf("got max inline size %d", cfg.Persistence.MaxInlineSize)
	}
	if cfg.CustomConfig["region"] != "us-east-1" || cfg.CustomConfig["bucket"] != "archive" {
		t.Errorf("expected merged custom config, got %v", cfg.CustomConfig)
	}
}

func TestEffectiveConfig_CorruptBlob(t *testing.T) {
	svc, st, _, _ := newTestService(t)
	ct := registerTestType(t, svc)
	b, _, err := svc.RegisterBinding(context.Background(), RegisterBindingInput{
		AccountID: "acct-42", TypeID: ct.ID,
	})
	if err != nil {
		t.Fatalf("RegisterBinding: %v", err)
	}

	// Corrupt the stored blob behind the service's back.
	st.mu.Lock()
	st.bindings[b.ID].OverrideBlob = []byte{0xde, 0xad, 0xbe, 0xef}
	st.mu.Unlock()

	_, err = svc.EffectiveConfig(context.Background(), b.ID)
	var integrity *model.DataIntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("expected data integrity error, got %v", err)
	}
	if integrity.BindingID != b.ID {
		t.Errorf("error must name the binding, got %q", integrity.BindingID)
	}
}

func TestSchemas(t *testing.T) {
	svc, _, _, pub := newTestService(t)
	ct := registerTestType(t, svc)

	cs1, err := svc.PublishSchema(context.Background(), PublishSchemaInput{
		TypeID:         ct.ID,
		InstanceSchema: []byte(`{"type":"object"}`),
	})
	if err != nil {
		t.Fatalf("PublishSchema: %v", err)
	}
	if cs1.Version != 1 {
		t.Errorf("expected auto version 1, got %d", cs1.Version)
	}
	if !pub.published(events.TopicSchemaPublished) {
		t.Error("expected schema published event")
	}

	cs2, err := svc.PublishSchema(context.Background(), PublishSchemaInput{
		TypeID:         ct.ID,
		InstanceSchema: []byte(`{"type":"object","required":["bucket"]}`),
	})
	if err != nil {
		t.Fatalf("PublishSchema: %v", err)
	}
	if cs2.Version != 2 {
		t.Errorf("expected auto version 2, got %d", cs2.Version)
	}

	// Duplicate explicit version conflicts.
	_, err = svc.PublishSchema(context.Background(), PublishSchemaInput{
		TypeID: ct.ID, Version: 1, InstanceSchema: []byte(`{}`),
	})
	if !model.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	schemas, err := svc.ListSchemas(context.Background(), ct.ID)
	if err != nil || len(schemas) != 2 {
		t.Fatalf("got %d schemas, err=%v", len(schemas), err)
	}
}

func TestDeleteSchema_Referenced(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ct := registerTestType(t, svc)
	cs, err := svc.PublishSchema(context.Background(), PublishSchemaInput{
		TypeID:         ct.ID,
		InstanceSchema: []byte(`{"type":"object"}`),
	})
	if err != nil {
		t.Fatalf("PublishSchema: %v", err)
	}

	if _, _, err := svc.RegisterBinding(context.Background(), RegisterBindingInput{
		AccountID: "acct-42", TypeID: ct.ID, SchemaID: cs.ID,
	}); err != nil {
		t.Fatalf("RegisterBinding: %v", err)
	}

	if err := svc.DeleteSchema(context.Background(), cs.ID); !model.IsConflict(err) {
		t.Fatalf("expected conflict deleting referenced schema, got %v", err)
	}
}

func TestSchemaRef_WrongType(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ct := registerTestType(t, svc)
	other, err := svc.RegisterType(context.Background(), RegisterTypeInput{TypeName: "postgres"})
	if err != nil {
		t.Fatalf("RegisterType: %v", err)
	}
	cs, err := svc.PublishSchema(context.Background(), PublishSchemaInput{
		TypeID:         other.ID,
		InstanceSchema: []byte(`{"type":"object"}`),
	})
	if err != nil {
		t.Fatalf("PublishSchema: %v", err)
	}

	_, _, err = svc.RegisterBinding(context.Background(), RegisterBindingInput{
		AccountID: "acct-42", TypeID: ct.ID, SchemaID: cs.ID,
	})
	if !model.IsValidation(err) {
		t.Fatalf("expected validation error for cross-type schema, got %v", err)
	}
}
