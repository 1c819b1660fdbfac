package snapshot

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/alfredjeanlab/tether/internal/model"
	"github.com/alfredjeanlab/tether/internal/store"
)

// mockStore is a minimal in-memory store for snapshot tests.
type mockStore struct {
	types    map[string]*model.ConnectorType
	bindings map[string]*model.DataSourceBinding
	schemas  map[string]*model.ConfigSchema
}

func newMockStore() *mockStore {
	return &mockStore{
		types:    make(map[string]*model.ConnectorType),
		bindings: make(map[string]*model.DataSourceBinding),
		schemas:  make(map[string]*model.ConfigSchema),
	}
}

func (m *mockStore) CreateConnectorType(_ context.Context, ct *model.ConnectorType) error {
	m.types[ct.ID] = ct
	return nil
}

func (m *mockStore) GetConnectorType(_ context.Context, id string) (*model.ConnectorType, error) {
	ct, ok := m.types[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return ct, nil
}

func (m *mockStore) GetConnectorTypeByName(_ context.Context, typeName string) (*model.ConnectorType, error) {
	for _, ct := range m.types {
		if ct.TypeName == typeName {
			return ct, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStore) ListConnectorTypes(_ context.Context, _ model.TypeFilter) ([]*model.ConnectorType, int, error) {
	var result []*model.ConnectorType
	for _, ct := range m.types {
		result = append(result, ct)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, len(result), nil
}

func (m *mockStore) UpdateConnectorType(_ context.Context, ct *model.ConnectorType) error {
	m.types[ct.ID] = ct
	return nil
}

func (m *mockStore) CreateBinding(_ context.Context, b *model.DataSourceBinding) error {
	m.bindings[b.ID] = b
	return nil
}

func (m *mockStore) GetBinding(_ context.Context, id string) (*model.DataSourceBinding, error) {
	b, ok := m.bindings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return b, nil
}

func (m *mockStore) ListBindings(_ context.Context, filter model.BindingFilter) ([]*model.DataSourceBinding, int, error) {
	var result []*model.DataSourceBinding
	for _, b := range m.bindings {
		if !filter.IncludeInactive && !b.Active {
			continue
		}
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, len(result), nil
}

func (m *mockStore) UpdateBinding(_ context.Context, b *model.DataSourceBinding) error {
	m.bindings[b.ID] = b
	return nil
}

func (m *mockStore) SetBindingStatus(_ context.Context, id string, active bool, reason string, at time.Time) (bool, error) {
	b, ok := m.bindings[id]
	if !ok {
		return false, nil
	}
	b.Active = active
	b.StatusReason = reason
	b.UpdatedAt = at
	return true, nil
}

func (m *mockStore) SetBindingCredential(_ context.Context, id string, digest string, at time.Time) error {
	b, ok := m.bindings[id]
	if !ok {
		return sql.ErrNoRows
	}
	b.CredentialDigest = digest
	return nil
}

func (m *mockStore) SoftDeleteBinding(_ context.Context, id string, reason string, at time.Time) (bool, error) {
	b, ok := m.bindings[id]
	if !ok {
		return false, nil
	}
	b.Active = false
	b.StatusReason = reason
	b.DeletedAt = &at
	return true, nil
}

func (m *mockStore) CreateConfigSchema(_ context.Context, cs *model.ConfigSchema) error {
	m.schemas[cs.ID] = cs
	return nil
}

func (m *mockStore) GetConfigSchema(_ context.Context, id string) (*model.ConfigSchema, error) {
	cs, ok := m.schemas[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cs, nil
}

func (m *mockStore) ListConfigSchemas(_ context.Context, typeID string) ([]*model.ConfigSchema, error) {
	var result []*model.ConfigSchema
	for _, cs := range m.schemas {
		if cs.TypeID == typeID {
			result = append(result, cs)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})
	return result, nil
}

func (m *mockStore) DeleteConfigSchema(_ context.Context, id string) error {
	delete(m.schemas, id)
	return nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error {
	return nil
}
