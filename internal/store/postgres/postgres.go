// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/tether/internal/model"
	"github.com/alfredjeanlab/tether/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// queries implements every store.Store data method against an executor,
// which is satisfied by both *sql.DB and *sql.Tx. PostgresStore and txStore
// embed it so the query logic exists once.
type queries struct {
	ex executor
}

func (q queries) CreateConnectorType(ctx context.Context, ct *model.ConnectorType) error {
	return queryCreateConnectorType(ctx, q.ex, ct)
}

func (q queries) GetConnectorType(ctx context.Context, id string) (*model.ConnectorType, error) {
	return queryGetConnectorType(ctx, q.ex, id)
}

func (q queries) GetConnectorTypeByName(ctx context.Context, typeName string) (*model.ConnectorType, error) {
	return queryGetConnectorTypeByName(ctx, q.ex, typeName)
}

func (q queries) ListConnectorTypes(ctx context.Context, filter model.TypeFilter) ([]*model.ConnectorType, int, error) {
	return queryListConnectorTypes(ctx, q.ex, filter)
}

func (q queries) UpdateConnectorType(ctx context.Context, ct *model.ConnectorType) error {
	return queryUpdateConnectorType(ctx, q.ex, ct)
}

func (q queries) CreateBinding(ctx context.Context, b *model.DataSourceBinding) error {
	return queryCreateBinding(ctx, q.ex, b)
}

func (q queries) GetBinding(ctx context.Context, id string) (*model.DataSourceBinding, error) {
	return queryGetBinding(ctx, q.ex, id)
}

func (q queries) ListBindings(ctx context.Context, filter model.BindingFilter) ([]*model.DataSourceBinding, int, error) {
	return queryListBindings(ctx, q.ex, filter)
}

func (q queries) UpdateBinding(ctx context.Context, b *model.DataSourceBinding) error {
	return queryUpdateBinding(ctx, q.ex, b)
}

func (q queries) SetBindingStatus(ctx context.Context, id string, active bool, reason string, at time.Time) (bool, error) {
	return querySetBindingStatus(ctx, q.ex, id, active, reason, at)
}

func (q queries) SetBindingCredential(ctx context.Context, id string, digest string, at time.Time) error {
	return querySetBindingCredential(ctx, q.ex, id, digest, at)
}

func (q queries) SoftDeleteBinding(ctx context.Context, id string, reason string, at time.Time) (bool, error) {
	return querySoftDeleteBinding(ctx, q.ex, id, reason, at)
}

func (q queries) CreateConfigSchema(ctx context.Context, cs *model.ConfigSchema) error {
	return queryCreateConfigSchema(ctx, q.ex, cs)
}

func (q queries) GetConfigSchema(ctx context.Context, id string) (*model.ConfigSchema, error) {
	return queryGetConfigSchema(ctx, q.ex, id)
}

func (q queries) ListConfigSchemas(ctx context.Context, typeID string) ([]*model.ConfigSchema, error) {
	return queryListConfigSchemas(ctx, q.ex, typeID)
}

func (q queries) DeleteConfigSchema(ctx context.Context, id string) error {
	return queryDeleteConfigSchema(ctx, q.ex, id)
}

// PostgresStore is the production store.Store implementation.
type PostgresStore struct {
	queries
	db *sql.DB
}

var _ store.Store = (*PostgresStore)(nil)

// New opens the database, verifies connectivity, and applies any pending
// embedded migrations before returning.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &PostgresStore{queries: queries{ex: db}, db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// RunInTransaction runs fn against a transactional store, committing on nil
// and rolling back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&txStore{queries: queries{ex: tx}}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore scopes the store to one open transaction.
type txStore struct {
	queries
}

var _ store.Store = (*txStore)(nil)

// RunInTransaction inside a transaction reuses it; there is no nesting.
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op; the parent store owns the connection.
func (s *txStore) Close() error { return nil }
