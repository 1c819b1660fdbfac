// Package wire implements the binary override blob persisted on data-source
// bindings. The blob is a varint length-prefixed protobuf wire-format message
// with four optional sub-structures plus one optional free-form document:
//
//	1: persistence  { 1: persist_document bool, 2: max_inline_size int64 }
//	2: retention    { 1: ttl_seconds int64, 2: max_versions int32 }
//	3: encryption   { 1: mode string, 2: key_ref string }
//	4: hydration    { 1: mode string, 2: concurrency int32 }
//	5: custom_config (JSON document bytes)
//
// Encoding is hand-rolled over protowire rather than generated code: the
// on-disk contract fixes only field numbers and shapes, and unknown fields
// are skipped on decode so the format can grow.
package wire

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the Override envelope.
const (
	fieldPersistence  = 1
	fieldRetention    = 2
	fieldEncryption   = 3
	fieldHydration    = 4
	fieldCustomConfig = 5
)

// Persistence overrides document persistence behavior.
type Persistence struct {
	PersistDocument bool
	MaxInlineSize   int64
}

// Retention overrides how long and how many versions of a document are kept.
type Retention struct {
	TTLSeconds  int64
	MaxVersions int32
}

// Encryption overrides at-rest encryption for a binding.
type Encryption struct {
	Mode   string
	KeyRef string
}

// Hydration overrides how documents are fetched into the pipeline.
type Hydration struct {
	Mode        string
	Concurrency int32
}

// Override is the decoded blob. Nil sub-structures and a nil CustomConfig
// were absent from the blob; present sub-structures replace the corresponding
// merged structure wholesale.
type Override struct {
	Persistence  *Persistence
	Retention    *Retention
	Encryption   *Encryption
	Hydration    *Hydration
	CustomConfig map[string]any
}

// IsZero reports whether the override carries nothing.
func (o *Override) IsZero() bool {
	return o.Persistence == nil && o.Retention == nil && o.Encryption == nil &&
		o.Hydration == nil && o.CustomConfig == nil
}

// EncodeOverride serializes the override with a leading varint length prefix.
func EncodeOverride(o *Override) ([]byte, error) {
	var body []byte
	if o.Persistence != nil {
		sub := protowire.AppendTag(nil, 1, protowire.VarintType)
		sub = protowire.AppendVarint(sub, protowire.EncodeBool(o.Persistence.PersistDocument))
		sub = protowire.AppendTag(sub, 2, protowire.VarintType)
		sub = protowire.AppendVarint(sub, uint64(o.Persistence.MaxInlineSize))
		body = appendSub(body, fieldPersistence, sub)
	}
	if o.Retention != nil {
		sub := protowire.AppendTag(nil, 1, protowire.VarintType)
		sub = protowire.AppendVarint(sub, uint64(o.Retention.TTLSeconds))
		sub = protowire.AppendTag(sub, 2, protowire.VarintType)
		sub = protowire.AppendVarint(sub, uint64(o.Retention.MaxVersions))
		body = appendSub(body, fieldRetention, sub)
	}
	if o.Encryption != nil {
		sub := protowire.AppendTag(nil, 1, protowire.BytesType)
		sub = protowire.AppendString(sub, o.Encryption.Mode)
		sub = protowire.AppendTag(sub, 2, protowire.BytesType)
		sub = protowire.AppendString(sub, o.Encryption.KeyRef)
		body = appendSub(body, fieldEncryption, sub)
	}
	if o.Hydration != nil {
		sub := protowire.AppendTag(nil, 1, protowire.BytesType)
		sub = protowire.AppendString(sub, o.Hydration.Mode)
		sub = protowire.AppendTag(sub, 2, protowire.VarintType)
		sub = protowire.AppendVarint(sub, uint64(o.Hydration.Concurrency))
		body = appendSub(body, fieldHydration, sub)
	}
	if o.CustomConfig != nil {
		doc, err := json.Marshal(o.CustomConfig)
		if err != nil {
			return nil, fmt.Errorf("marshal custom config: %w", err)
		}
		body = appendSub(body, fieldCustomConfig, doc)
	}

	out := protowire.AppendVarint(nil, uint64(len(body)))
	return append(out, body...), nil
}

func appendSub(b []byte, num protowire.Number, sub []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, sub)
}

// DecodeOverride parses blob bytes produced by EncodeOverride. Any structural
// damage (bad length prefix, truncated field, malformed sub-message or JSON)
// is an error; the caller treats it as a data-integrity failure.
func DecodeOverride(blob []byte) (*Override, error) {
	size, n := protowire.ConsumeVarint(blob)
	if n < 0 {
		return nil, fmt.Errorf("length prefix: %w", protowire.ParseError(n))
	}
	body := blob[n:]
	if uint64(len(body)) != size {
		return nil, fmt.Errorf("length prefix %d does not match body length %d", size, len(body))
	}

	o := &Override{}
	for len(body) > 0 {
		num, typ, n := protowire.ConsumeTag(body)
		if n < 0 {
			return nil, fmt.Errorf("field tag: %w", protowire.ParseError(n))
		}
		body = body[n:]

		if typ != protowire.BytesType {
			// Every envelope field is length-delimited; skip unknown
			// non-bytes fields for forward compatibility.
			if num >= fieldPersistence && num <= fieldCustomConfig {
				return nil, fmt.Errorf("field %d: unexpected wire type %d", num, typ)
			}
			n = protowire.ConsumeFieldValue(num, typ, body)
			if n < 0 {
				return nil, fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
			}
			body = body[n:]
			continue
		}

		val, n := protowire.ConsumeBytes(body)
		if n < 0 {
			return nil, fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
		}
		body = body[n:]

		var err error
		switch num {
		case fieldPersistence:
			o.Persistence = &Persistence{}
			err = decodeSub(val, func(fn protowire.Number, v uint64) {
				switch fn {
				case 1:
					o.Persistence.PersistDocument = protowire.DecodeBool(v)
				case 2:
					o.Persistence.MaxInlineSize = int64(v)
				}
			}, nil)
		case fieldRetention:
			o.Retention = &Retention{}
			err = decodeSub(val, func(fn protowire.Number, v uint64) {
				switch fn {
				case 1:
					o.Retention.TTLSeconds = int64(v)
				case 2:
					o.Retention.MaxVersions = int32(v)
				}
			}, nil)
		case fieldEncryption:
			o.Encryption = &Encryption{}
			err = decodeSub(val, nil, func(fn protowire.Number, s string) {
				switch fn {
				case 1:
					o.Encryption.Mode = s
				case 2:
					o.Encryption.KeyRef = s
				}
			})
		case fieldHydration:
			o.Hydration = &Hydration{}
			err = decodeSub(val, func(fn protowire.Number, v uint64) {
				if fn == 2 {
					o.Hydration.Concurrency = int32(v)
				}
			}, func(fn protowire.Number, s string) {
				if fn == 1 {
					o.Hydration.Mode = s
				}
			})
		case fieldCustomConfig:
			doc := make(map[string]any)
			if err := json.Unmarshal(val, &doc); err != nil {
				return nil, fmt.Errorf("custom config document: %w", err)
			}
			o.CustomConfig = doc
		default:
			// Unknown length-delimited field; skip.
		}
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", num, err)
		}
	}
	return o, nil
}

// decodeSub walks a sub-message, dispatching varint fields to onVarint and
// string fields to onString. Fields of other types are skipped.
func decodeSub(b []byte, onVarint func(protowire.Number, uint64), onString func(protowire.Number, string)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			if onVarint != nil {
				onVarint(num, v)
			}
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
			if onString != nil {
				onString(num, string(v))
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}
