package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alfredjeanlab/tether/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanConnectorType scans a single row into a model.ConnectorType.
// The row must contain columns in the order defined by typeColumns.
func scanConnectorType(row scannable) (*model.ConnectorType, error) {
	var ct model.ConnectorType
	var (
		displayName   sql.NullString
		description   sql.NullString
		persist       sql.NullBool
		maxInlineSize sql.NullInt64
		customConfig  []byte
		ownerTeam     sql.NullString
		docsURL       sql.NullString
		tags          []byte
	)

	err := row.Scan(
		&ct.ID,
		&ct.TypeName,
		&displayName,
		&description,
		&ct.Mode,
		&persist,
		&maxInlineSize,
		&customConfig,
		&ownerTeam,
		&docsURL,
		&tags,
		&ct.CreatedAt,
		&ct.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := fillConnectorType(&ct, displayName, description, persist, maxInlineSize, customConfig, ownerTeam, docsURL, tags); err != nil {
		return nil, err
	}
	return &ct, nil
}

// scanConnectorTypeWithTotal scans a row that has a leading total_count
// column followed by the standard connector type columns. Used by
// queryListConnectorTypes with COUNT(*) OVER().
func scanConnectorTypeWithTotal(row scannable) (*model.ConnectorType, int, error) {
	var total int
	var ct model.ConnectorType
	var (
		displayName   sql.NullString
		description   sql.NullString
		persist       sql.NullBool
		maxInlineSize sql.NullInt64
		customConfig  []byte
		ownerTeam     sql.NullString
		docsURL       sql.NullString
		tags          []byte
	)

	err := row.Scan(
		&total,
		&ct.ID,
		&ct.TypeName,
		&displayName,
		&description,
		&ct.Mode,
		&persist,
		&maxInlineSize,
		&customConfig,
		&ownerTeam,
		&docsURL,
		&tags,
		&ct.CreatedAt,
		&ct.UpdatedAt,
	)
	if err != nil {
		return nil, 0, err
	}

	if err := fillConnectorType(&ct, displayName, description, persist, maxInlineSize, customConfig, ownerTeam, docsURL, tags); err != nil {
		return nil, 0, err
	}
	return &ct, total, nil
}

func fillConnectorType(ct *model.ConnectorType, displayName, description sql.NullString, persist sql.NullBool, maxInlineSize sql.NullInt64, customConfig []byte, ownerTeam, docsURL sql.NullString, tags []byte) error {
	ct.DisplayName = displayName.String
	ct.Description = description.String
	ct.OwnerTeam = ownerTeam.String
	ct.DocsURL = docsURL.String

	if persist.Valid {
		v := persist.Bool
		ct.DefaultPersist = &v
	}
	if maxInlineSize.Valid {
		v := maxInlineSize.Int64
		ct.DefaultMaxInlineSize = &v
	}
	if len(customConfig) > 0 {
		if err := json.Unmarshal(customConfig, &ct.DefaultCustomConfig); err != nil {
			return fmt.Errorf("unmarshal default custom config for %s: %w", ct.ID, err)
		}
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &ct.Tags); err != nil {
			return fmt.Errorf("unmarshal tags for %s: %w", ct.ID, err)
		}
	}
	return nil
}

// scanBinding scans a single row into a model.DataSourceBinding.
// The row must contain columns in the order defined by bindingColumns.
func scanBinding(row scannable) (*model.DataSourceBinding, error) {
	var b model.DataSourceBinding
	var (
		displayName     sql.NullString
		storageLocation sql.NullString
		metadata        []byte
		statusReason    sql.NullString
		customConfig    []byte
		schemaID        sql.NullString
		rotatedAt       sql.NullTime
		deletedAt       sql.NullTime
	)

	err := row.Scan(
		&b.ID,
		&b.AccountID,
		&b.TypeID,
		&displayName,
		&b.CredentialDigest,
		&storageLocation,
		&metadata,
		&b.MaxFileSize,
		&b.RateLimit,
		&b.Active,
		&statusReason,
		&customConfig,
		&b.OverrideBlob,
		&schemaID,
		&b.CreatedAt,
		&b.UpdatedAt,
		&rotatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := fillBinding(&b, displayName, storageLocation, metadata, statusReason, customConfig, schemaID, rotatedAt, deletedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// scanBindingWithTotal scans a row that has a leading total_count column
// followed by the standard binding columns. Used by queryListBindings with
// COUNT(*) OVER().
func scanBindingWithTotal(row scannable) (*model.DataSourceBinding, int, error) {
	var total int
	var b model.DataSourceBinding
	var (
		displayName     sql.NullString
		storageLocation sql.NullString
		metadata        []byte
		statusReason    sql.NullString
		customConfig    []byte
		schemaID        sql.NullString
		rotatedAt       sql.NullTime
		deletedAt       sql.NullTime
	)

	err := row.Scan(
		&total,
		&b.ID,
		&b.AccountID,
		&b.TypeID,
		&displayName,
		&b.CredentialDigest,
		&storageLocation,
		&metadata,
		&b.MaxFileSize,
		&b.RateLimit,
		&b.Active,
		&statusReason,
		&customConfig,
		&b.OverrideBlob,
		&schemaID,
		&b.CreatedAt,
		&b.UpdatedAt,
		&rotatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, 0, err
	}

	if err := fillBinding(&b, displayName, storageLocation, metadata, statusReason, customConfig, schemaID, rotatedAt, deletedAt); err != nil {
		return nil, 0, err
	}
	return &b, total, nil
}

func fillBinding(b *model.DataSourceBinding, displayName, storageLocation sql.NullString, metadata []byte, statusReason sql.NullString, customConfig []byte, schemaID sql.NullString, rotatedAt, deletedAt sql.NullTime) error {
	b.DisplayName = displayName.String
	b.StorageLocation = storageLocation.String
	b.StatusReason = statusReason.String
	b.SchemaID = schemaID.String

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &b.Metadata); err != nil {
			return fmt.Errorf("unmarshal metadata for %s: %w", b.ID, err)
		}
	}
	if len(customConfig) > 0 {
		if err := json.Unmarshal(customConfig, &b.CustomConfig); err != nil {
			return fmt.Errorf("unmarshal custom config for %s: %w", b.ID, err)
		}
	}
	if rotatedAt.Valid {
		t := rotatedAt.Time
		b.RotatedAt = &t
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		b.DeletedAt = &t
	}
	return nil
}

// scanConfigSchema scans a single row into a model.ConfigSchema.
func scanConfigSchema(row scannable) (*model.ConfigSchema, error) {
	var cs model.ConfigSchema
	var (
		instanceSchema []byte
		nodeSchema     []byte
	)
	err := row.Scan(
		&cs.ID,
		&cs.TypeID,
		&cs.Version,
		&instanceSchema,
		&nodeSchema,
		&cs.CreatedAt,
		&cs.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(instanceSchema) > 0 {
		cs.InstanceSchema = json.RawMessage(instanceSchema)
	}
	if len(nodeSchema) > 0 {
		cs.NodeSchema = json.RawMessage(nodeSchema)
	}
	return &cs, nil
}

// nullTimePtr converts a *time.Time to a sql.NullTime.
func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullBoolPtr converts a *bool to a sql.NullBool.
func nullBoolPtr(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

// nullInt64Ptr converts an *int64 to a sql.NullInt64.
func nullInt64Ptr(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// jsonbBytes converts json.RawMessage to a []byte suitable for JSONB columns.
func jsonbBytes(m json.RawMessage) []byte {
	if len(m) == 0 {
		return nil
	}
	return []byte(m)
}

// marshalDoc encodes a free-form config document for a JSONB column.
// An empty document is stored as null.
func marshalDoc(doc map[string]any) ([]byte, error) {
	if len(doc) == 0 {
		return nil, nil
	}
	return json.Marshal(doc)
}

// marshalStringMap encodes a string map for a JSONB column.
func marshalStringMap(m map[string]string) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}

// marshalTags encodes a tag list for a JSONB column.
func marshalTags(tags []string) ([]byte, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	return json.Marshal(tags)
}
