package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/alfredjeanlab/tether/internal/model"
	"github.com/alfredjeanlab/tether/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version      string    `json:"version"`
	Type         string    `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	TypeCount    int       `json:"type_count"`
	BindingCount int       `json:"binding_count"`
	SchemaCount  int       `json:"schema_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ExportJSONL writes all connector types, bindings, and config schemas from
// the store as JSONL to w. Records are sorted by ID within each section.
// Credential digests never appear in the output.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	types, _, err := s.ListConnectorTypes(ctx, model.TypeFilter{})
	if err != nil {
		return fmt.Errorf("list connector types: %w", err)
	}
	sort.Slice(types, func(i, j int) bool {
		return types[i].ID < types[j].ID
	})

	// Inactive and soft-deleted bindings are part of the snapshot.
	bindings, _, err := s.ListBindings(ctx, model.BindingFilter{IncludeInactive: true})
	if err != nil {
		return fmt.Errorf("list bindings: %w", err)
	}
	sort.Slice(bindings, func(i, j int) bool {
		return bindings[i].ID < bindings[j].ID
	})

	var schemas []*model.ConfigSchema
	for _, ct := range types {
		cs, err := s.ListConfigSchemas(ctx, ct.ID)
		if err != nil {
			return fmt.Errorf("list config schemas for %s: %w", ct.ID, err)
		}
		schemas = append(schemas, cs...)
	}
	sort.Slice(schemas, func(i, j int) bool {
		return schemas[i].ID < schemas[j].ID
	})

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:      "1",
		Type:         "header",
		Timestamp:    time.Now().UTC(),
		TypeCount:    len(types),
		BindingCount: len(bindings),
		SchemaCount:  len(schemas),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, ct := range types {
		if err := enc.Encode(record{Type: "connector_type", Data: ct}); err != nil {
			return fmt.Errorf("encode connector type %s: %w", ct.ID, err)
		}
	}
	for _, b := range bindings {
		if err := enc.Encode(record{Type: "binding", Data: b}); err != nil {
			return fmt.Errorf("encode binding %s: %w", b.ID, err)
		}
	}
	for _, cs := range schemas {
		if err := enc.Encode(record{Type: "config_schema", Data: cs}); err != nil {
			return fmt.Errorf("encode config schema %s: %w", cs.ID, err)
		}
	}

	return nil
}
