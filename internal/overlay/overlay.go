// Package overlay computes the effective configuration for a data-source
// binding by layering, in order: system defaults, connector-type defaults,
// the binding's own custom config, and finally the binding's binary override
// blob. The merge is pure: same inputs, same output, no I/O.
package overlay

import (
	"github.com/alfredjeanlab/tether/internal/model"
	"github.com/alfredjeanlab/tether/internal/wire"
)

// System defaults seeded before any layer is applied.
const (
	DefaultPersistDocument = true
	DefaultMaxInlineSize   = int64(1 << 20)
	DefaultHydrationMode   = "auto"
	DefaultEncryptionMode  = "none"
)

// PersistencePolicy controls document persistence.
type PersistencePolicy struct {
	PersistDocument bool  `json:"persist_document"`
	MaxInlineSize   int64 `json:"max_inline_size"`
}

// RetentionPolicy controls how long documents are kept. Zero values mean
// unbounded.
type RetentionPolicy struct {
	TTLSeconds  int64 `json:"ttl_seconds"`
	MaxVersions int32 `json:"max_versions"`
}

// EncryptionPolicy controls at-rest encryption.
type EncryptionPolicy struct {
	Mode   string `json:"mode"`
	KeyRef string `json:"key_ref,omitempty"`
}

// HydrationPolicy controls how documents are fetched.
type HydrationPolicy struct {
	Mode        string `json:"mode"`
	Concurrency int32  `json:"concurrency,omitempty"`
}

// EffectiveConfig is the fully merged configuration applied at runtime.
// Treat it as immutable; Merge returns a fresh value each call.
type EffectiveConfig struct {
	Persistence  PersistencePolicy `json:"persistence"`
	Retention    RetentionPolicy   `json:"retention"`
	Encryption   EncryptionPolicy  `json:"encryption"`
	Hydration    HydrationPolicy   `json:"hydration"`
	CustomConfig map[string]any    `json:"custom_config,omitempty"`
}

// Merge layers ct and b over the system defaults. Either input may be nil,
// which skips that layer entirely.
//
// Custom-config semantics differ by layer: the type's default document
// replaces the (empty) baseline, the binding's document deep-merges over it
// key-wise, and a blob document replaces the result wholesale. The blob's
// sub-structures likewise replace their merged counterparts wholesale.
//
// A binding blob that fails to decode is a data-integrity error naming the
// binding; Merge never falls back to a partially merged result.
func Merge(ct *model.ConnectorType, b *model.DataSourceBinding) (*EffectiveConfig, error) {
	eff := &EffectiveConfig{
		Persistence: PersistencePolicy{
			PersistDocument: DefaultPersistDocument,
			MaxInlineSize:   DefaultMaxInlineSize,
		},
		Encryption: EncryptionPolicy{Mode: DefaultEncryptionMode},
		Hydration:  HydrationPolicy{Mode: DefaultHydrationMode},
	}

	if ct != nil {
		if ct.DefaultPersist != nil {
			eff.Persistence.PersistDocument = *ct.DefaultPersist
		}
		if ct.DefaultMaxInlineSize != nil {
			eff.Persistence.MaxInlineSize = *ct.DefaultMaxInlineSize
		}
		if len(ct.DefaultCustomConfig) > 0 {
			eff.CustomConfig = deepCopy(ct.DefaultCustomConfig)
		}
	}

	if b != nil && len(b.CustomConfig) > 0 {
		eff.CustomConfig = deepMerge(eff.CustomConfig, b.CustomConfig)
	}

	if b != nil && len(b.OverrideBlob) > 0 {
		ov, err := wire.DecodeOverride(b.OverrideBlob)
		if err != nil {
			return nil, &model.DataIntegrityError{BindingID: b.ID, Cause: err}
		}
		applyOverride(eff, ov)
	}

	return eff, nil
}

// applyOverride applies blob sub-structures as whole-structure replacements.
func applyOverride(eff *EffectiveConfig, ov *wire.Override) {
	if ov.Persistence != nil {
		eff.Persistence = PersistencePolicy{
			PersistDocument: ov.Persistence.PersistDocument,
			MaxInlineSize:   ov.Persistence.MaxInlineSize,
		}
	}
	if ov.Retention != nil {
		eff.Retention = RetentionPolicy{
			TTLSeconds:  ov.Retention.TTLSeconds,
			MaxVersions: ov.Retention.MaxVersions,
		}
	}
	if ov.Encryption != nil {
		eff.Encryption = EncryptionPolicy{
			Mode:   ov.Encryption.Mode,
			KeyRef: ov.Encryption.KeyRef,
		}
	}
	if ov.Hydration != nil {
		eff.Hydration = HydrationPolicy{
			Mode:        ov.Hydration.Mode,
			Concurrency: ov.Hydration.Concurrency,
		}
	}
	if ov.CustomConfig != nil {
		eff.CustomConfig = deepCopy(ov.CustomConfig)
	}
}

// deepMerge returns a new document with over merged key-wise onto base.
// Matching sub-documents merge recursively; any other collision takes the
// value from over. Neither input is mutated.
func deepMerge(base, over map[string]any) map[string]any {
	out := deepCopy(base)
	if out == nil {
		out = make(map[string]any, len(over))
	}
	for k, v := range over {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := out[k].(map[string]any); ok {
				out[k] = deepMerge(existing, sub)
				continue
			}
		}
		out[k] = copyValue(v)
	}
	return out
}

// deepCopy clones a document so callers can never alias the inputs.
func deepCopy(doc map[string]any) map[string]any {
	if doc == nil {
		return nil
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopy(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
