package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/alfredjeanlab/tether/internal/model"
)

// typeColumns is the column list used for SELECT statements on the
// connector_types table.
const typeColumns = `id, type_name, display_name, description, mode,
	default_persist, default_max_inline_size, default_custom_config,
	owner_team, docs_url, tags, created_at, updated_at`

// bindingColumns is the column list used for SELECT statements on the
// data_source_bindings table.
const bindingColumns = `id, account_id, type_id, display_name, credential_digest,
	storage_location, metadata, max_file_size, rate_limit, active, status_reason,
	custom_config, override_blob, schema_id, created_at, updated_at, rotated_at, deleted_at`

// schemaColumns is the column list used for SELECT statements on the
// config_schemas table.
const schemaColumns = `id, type_id, version, instance_schema, node_schema, created_at, updated_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Postgres error codes surfaced as typed errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isPGCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}

// --- connector types ---

func queryCreateConnectorType(ctx context.Context, db executor, ct *model.ConnectorType) error {
	cfg, err := marshalDoc(ct.DefaultCustomConfig)
	if err != nil {
		return fmt.Errorf("marshal default custom config: %w", err)
	}
	tags, err := marshalTags(ct.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO connector_types (
			id, type_name, display_name, description, mode,
			default_persist, default_max_inline_size, default_custom_config,
			owner_team, docs_url, tags, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8,
			$9, $10, $11, $12, $13
		)`,
		ct.ID,
		ct.TypeName,
		nullString(ct.DisplayName),
		nullString(ct.Description),
		string(ct.Mode),
		nullBoolPtr(ct.DefaultPersist),
		nullInt64Ptr(ct.DefaultMaxInlineSize),
		cfg,
		nullString(ct.OwnerTeam),
		nullString(ct.DocsURL),
		tags,
		ct.CreatedAt,
		ct.UpdatedAt,
	)
	if isPGCode(err, pgUniqueViolation) {
		return model.Conflictf("connector type %q already registered", ct.TypeName)
	}
	return err
}

func queryGetConnectorType(ctx context.Context, db executor, id string) (*model.ConnectorType, error) {
	row := db.QueryRowContext(ctx, `SELECT `+typeColumns+` FROM connector_types WHERE id = $1`, id)
	return scanConnectorType(row)
}

func queryGetConnectorTypeByName(ctx context.Context, db executor, typeName string) (*model.ConnectorType, error) {
	row := db.QueryRowContext(ctx, `SELECT `+typeColumns+` FROM connector_types WHERE type_name = $1`, typeName)
	return scanConnectorType(row)
}

func queryListConnectorTypes(ctx context.Context, db executor, filter model.TypeFilter) ([]*model.ConnectorType, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if filter.Mode != "" {
		whereClauses = append(whereClauses, "mode = "+nextArg())
		args = append(args, string(filter.Mode))
	}
	if filter.Tag != "" {
		whereClauses = append(whereClauses, "tags ? "+nextArg())
		args = append(args, filter.Tag)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	// Single query with COUNT(*) OVER() to get total and rows atomically.
	query := "SELECT COUNT(*) OVER() AS total_count, " + typeColumns +
		" FROM connector_types" + whereSQL + " ORDER BY type_name"

	if filter.Limit > 0 {
		query += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list connector types: %w", err)
	}
	defer rows.Close()

	var types []*model.ConnectorType
	var total int
	for rows.Next() {
		ct, t, err := scanConnectorTypeWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan connector types: %w", err)
		}
		total = t
		types = append(types, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan connector types: %w", err)
	}

	return types, total, nil
}

func queryUpdateConnectorType(ctx context.Context, db executor, ct *model.ConnectorType) error {
	cfg, err := marshalDoc(ct.DefaultCustomConfig)
	if err != nil {
		return fmt.Errorf("marshal default custom config: %w", err)
	}
	tags, err := marshalTags(ct.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	return db.QueryRowContext(ctx, `
		UPDATE connector_types SET
			display_name = $2,
			description = $3,
			mode = $4,
			default_persist = $5,
			default_max_inline_size = $6,
			default_custom_config = $7,
			owner_team = $8,
			docs_url = $9,
			tags = $10,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		ct.ID,
		nullString(ct.DisplayName),
		nullString(ct.Description),
		string(ct.Mode),
		nullBoolPtr(ct.DefaultPersist),
		nullInt64Ptr(ct.DefaultMaxInlineSize),
		cfg,
		nullString(ct.OwnerTeam),
		nullString(ct.DocsURL),
		tags,
	).Scan(&ct.UpdatedAt)
}

// --- data-source bindings ---

func queryCreateBinding(ctx context.Context, db executor, b *model.DataSourceBinding) error {
	meta, err := marshalStringMap(b.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	cfg, err := marshalDoc(b.CustomConfig)
	if err != nil {
		return fmt.Errorf("marshal custom config: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO data_source_bindings (
			id, account_id, type_id, display_name, credential_digest,
			storage_location, metadata, max_file_size, rate_limit, active, status_reason,
			custom_config, override_blob, schema_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16
		)`,
		b.ID,
		b.AccountID,
		b.TypeID,
		nullString(b.DisplayName),
		b.CredentialDigest,
		nullString(b.StorageLocation),
		meta,
		b.MaxFileSize,
		b.RateLimit,
		b.Active,
		nullString(b.StatusReason),
		cfg,
		b.OverrideBlob,
		nullString(b.SchemaID),
		b.CreatedAt,
		b.UpdatedAt,
	)
	switch {
	case isPGCode(err, pgUniqueViolation):
		return model.Conflictf("binding already exists for account %s and type %s", b.AccountID, b.TypeID)
	case isPGCode(err, pgForeignKeyViolation):
		return &model.NotFoundError{Entity: "connector type", ID: b.TypeID}
	}
	return err
}

func queryGetBinding(ctx context.Context, db executor, id string) (*model.DataSourceBinding, error) {
	row := db.QueryRowContext(ctx, `SELECT `+bindingColumns+` FROM data_source_bindings WHERE id = $1`, id)
	return scanBinding(row)
}

func queryListBindings(ctx context.Context, db executor, filter model.BindingFilter) ([]*model.DataSourceBinding, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if filter.AccountID != "" {
		whereClauses = append(whereClauses, "account_id = "+nextArg())
		args = append(args, filter.AccountID)
	}
	if filter.TypeID != "" {
		whereClauses = append(whereClauses, "type_id = "+nextArg())
		args = append(args, filter.TypeID)
	}
	if !filter.IncludeInactive {
		whereClauses = append(whereClauses, "active = TRUE")
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	query := "SELECT COUNT(*) OVER() AS total_count, " + bindingColumns +
		" FROM data_source_bindings" + whereSQL + " ORDER BY created_at, id"

	if filter.Limit > 0 {
		query += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bindings: %w", err)
	}
	defer rows.Close()

	var bindings []*model.DataSourceBinding
	var total int
	for rows.Next() {
		b, t, err := scanBindingWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan bindings: %w", err)
		}
		total = t
		bindings = append(bindings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan bindings: %w", err)
	}

	return bindings, total, nil
}

func queryUpdateBinding(ctx context.Context, db executor, b *model.DataSourceBinding) error {
	meta, err := marshalStringMap(b.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	cfg, err := marshalDoc(b.CustomConfig)
	if err != nil {
		return fmt.Errorf("marshal custom config: %w", err)
	}

	err = db.QueryRowContext(ctx, `
		UPDATE data_source_bindings SET
			display_name = $2,
			storage_location = $3,
			metadata = $4,
			max_file_size = $5,
			rate_limit = $6,
			custom_config = $7,
			override_blob = $8,
			schema_id = $9,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		b.ID,
		nullString(b.DisplayName),
		nullString(b.StorageLocation),
		meta,
		b.MaxFileSize,
		b.RateLimit,
		cfg,
		b.OverrideBlob,
		nullString(b.SchemaID),
	).Scan(&b.UpdatedAt)
	if isPGCode(err, pgForeignKeyViolation) {
		return &model.NotFoundError{Entity: "config schema", ID: b.SchemaID}
	}
	return err
}

// querySetBindingStatus updates status only when the stored state differs, so
// a redelivered lifecycle event is a no-op at the database.
func querySetBindingStatus(ctx context.Context, db executor, id string, active bool, reason string, at time.Time) (bool, error) {
	res, err := db.ExecContext(ctx, `
		UPDATE data_source_bindings SET
			active = $2,
			status_reason = $3,
			updated_at = $4
		WHERE id = $1
		  AND deleted_at IS NULL
		  AND (active <> $2 OR status_reason IS DISTINCT FROM $3)`,
		id, active, nullString(reason), at,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func querySetBindingCredential(ctx context.Context, db executor, id string, digest string, at time.Time) error {
	res, err := db.ExecContext(ctx, `
		UPDATE data_source_bindings SET
			credential_digest = $2,
			updated_at = $3,
			rotated_at = $3
		WHERE id = $1 AND deleted_at IS NULL`,
		id, digest, at,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func querySoftDeleteBinding(ctx context.Context, db executor, id string, reason string, at time.Time) (bool, error) {
	res, err := db.ExecContext(ctx, `
		UPDATE data_source_bindings SET
			active = FALSE,
			status_reason = $2,
			updated_at = $3,
			deleted_at = $3
		WHERE id = $1 AND deleted_at IS NULL`,
		id, nullString(reason), at,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- config schemas ---

func queryCreateConfigSchema(ctx context.Context, db executor, cs *model.ConfigSchema) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO config_schemas (
			id, type_id, version, instance_schema, node_schema, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		cs.ID,
		cs.TypeID,
		cs.Version,
		jsonbBytes(cs.InstanceSchema),
		jsonbBytes(cs.NodeSchema),
		cs.CreatedAt,
		cs.UpdatedAt,
	)
	switch {
	case isPGCode(err, pgUniqueViolation):
		return model.Conflictf("config schema version %d already exists for type %s", cs.Version, cs.TypeID)
	case isPGCode(err, pgForeignKeyViolation):
		return &model.NotFoundError{Entity: "connector type", ID: cs.TypeID}
	}
	return err
}

func queryGetConfigSchema(ctx context.Context, db executor, id string) (*model.ConfigSchema, error) {
	row := db.QueryRowContext(ctx, `SELECT `+schemaColumns+` FROM config_schemas WHERE id = $1`, id)
	return scanConfigSchema(row)
}

func queryListConfigSchemas(ctx context.Context, db executor, typeID string) ([]*model.ConfigSchema, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+schemaColumns+` FROM config_schemas WHERE type_id = $1 ORDER BY version`, typeID)
	if err != nil {
		return nil, fmt.Errorf("list config schemas: %w", err)
	}
	defer rows.Close()

	var schemas []*model.ConfigSchema
	for rows.Next() {
		cs, err := scanConfigSchema(rows)
		if err != nil {
			return nil, fmt.Errorf("scan config schemas: %w", err)
		}
		schemas = append(schemas, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan config schemas: %w", err)
	}
	return schemas, nil
}

func queryDeleteConfigSchema(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM config_schemas WHERE id = $1`, id)
	if isPGCode(err, pgForeignKeyViolation) {
		return model.Conflictf("config schema %s is still referenced by a binding", id)
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
